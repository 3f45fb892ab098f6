package flat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
)

// Binary layout (little-endian):
//
//	magic   [4]byte "SVFX"
//	version uint16
//	dims    uint32
//	count   uint32
//	data    count*dims float32
const (
	codecVersion = 1
	headerSize   = 4 + 2 + 4 + 4
)

var codecMagic = [4]byte{'S', 'V', 'F', 'X'}

// MarshalBinary serializes the full vector set.
func (idx *Index) MarshalBinary() ([]byte, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	buf := bytes.NewBuffer(make([]byte, 0, headerSize+len(idx.data)*4))
	buf.Write(codecMagic[:])

	header := make([]byte, headerSize-len(codecMagic))
	binary.LittleEndian.PutUint16(header[0:2], codecVersion)
	binary.LittleEndian.PutUint32(header[2:6], uint32(idx.dimensions))
	binary.LittleEndian.PutUint32(header[6:10], uint32(len(idx.data)/idx.dimensions))
	buf.Write(header)

	word := make([]byte, 4)
	for _, f := range idx.data {
		binary.LittleEndian.PutUint32(word, math.Float32bits(f))
		buf.Write(word)
	}

	return buf.Bytes(), nil
}

// Unmarshal restores an index from MarshalBinary output.
func Unmarshal(data []byte) (*Index, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: index data too short (%d bytes)", domain.ErrValidation, len(data))
	}
	if !bytes.Equal(data[:4], codecMagic[:]) {
		return nil, fmt.Errorf("%w: not a flat index", domain.ErrValidation)
	}

	version := binary.LittleEndian.Uint16(data[4:6])
	if version != codecVersion {
		return nil, fmt.Errorf("%w: unsupported index version %d", domain.ErrValidation, version)
	}

	dims := binary.LittleEndian.Uint32(data[6:10])
	count := binary.LittleEndian.Uint32(data[10:14])

	idx, err := New(int(dims))
	if err != nil {
		return nil, err
	}

	// Header fields are untrusted; compare by division so a huge count*dims
	// cannot wrap around and pass.
	payload := data[headerSize:]
	words := uint64(len(payload) / 4)
	if len(payload)%4 != 0 || words%uint64(dims) != 0 || words/uint64(dims) != uint64(count) {
		return nil, fmt.Errorf("%w: index payload is %d bytes, header promises %d vectors of %d dimensions",
			domain.ErrValidation, len(payload), count, dims)
	}

	idx.data = make([]float32, len(payload)/4)
	for i := range idx.data {
		idx.data[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
	}

	return idx, nil
}

// Factory creates flat indexes.
type Factory struct{}

// Ensure Factory implements the interface.
var _ driven.VectorIndexFactory = Factory{}

// New creates an empty index of the given dimension.
func (Factory) New(dimensions int) (driven.VectorIndex, error) {
	idx, err := New(dimensions)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// Load restores an index from MarshalBinary output.
func (Factory) Load(data []byte) (driven.VectorIndex, error) {
	idx, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

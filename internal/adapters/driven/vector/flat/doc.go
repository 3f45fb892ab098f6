// Package flat provides an exact, in-memory vector index.
//
// Vectors are stored contiguously in insertion order and searched by linear
// scan using squared Euclidean distance. Positions are the 0-based
// insertion offsets and are the key shared with the retriever's chunk table.
package flat

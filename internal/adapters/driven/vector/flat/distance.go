package flat

// SquaredL2 returns the squared Euclidean distance between a and b.
// Accumulation happens in float64 so that results are reproducible across
// serialization round-trips. The caller guarantees equal lengths.
func SquaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return sum
}

package rawvec

// NextCapacity returns the slot capacity a storage block should grow to when the
// current capacity is exhausted. Capacity doubles, with a floor of one slot for a
// block that currently has no storage, which keeps appends amortized O(1).
func NextCapacity(current int) int {
	if current == 0 {
		return 1
	}
	return current * 2
}

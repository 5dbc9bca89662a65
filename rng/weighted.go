package rng

// Weighted draws an index in [0, n) with probability proportional to
// weight(i). When the weights sum to zero or less, index 0 is returned.
// Returns -1 when n is 0.
//
// The draw walks the whole list subtracting each weight from
// roll = Next()*total and returns the first index where roll reaches zero,
// so a zero-weight entry ahead of the first positive one wins a roll of
// exactly 0. Float drift past the end lands on the last entry.
func Weighted(src Source, n int, weight func(i int) float64) int {
	if n == 0 {
		return -1
	}
	total := 0.0
	for i := 0; i < n; i++ {
		total += weight(i)
	}
	if total <= 0 {
		return 0
	}
	roll := src.Next() * total
	for i := 0; i < n; i++ {
		roll -= weight(i)
		if roll <= 0 {
			return i
		}
	}
	return n - 1
}

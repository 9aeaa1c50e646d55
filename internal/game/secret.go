package game

import "math/rand/v2"

// SecretSource draws a secret number in [min, max].
type SecretSource interface {
	Draw(min, max int) int
}

// RandomSource draws uniformly from the runtime's shared generator.
type RandomSource struct{}

func (RandomSource) Draw(min, max int) int {
	return min + rand.IntN(max-min+1)
}

// FixedSecret always returns the same number, clamped into the range.
type FixedSecret int

func (f FixedSecret) Draw(min, max int) int {
	n := int(f)
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

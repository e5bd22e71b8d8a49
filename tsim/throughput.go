package tsim

import "github.com/vharmon/flowsim/graphmodel"

// InfiniteThroughput is the sentinel spec.md §8 requires when every
// actor's execution time is zero: the recurrent cycle closes with zero
// elapsed time, so nFire/Σglbclk is 1/0, returned as a sentinel rather
// than a division by zero.
func InfiniteThroughput() Throughput { return Throughput{Infinite: true} }

// newThroughput reduces num/den to lowest terms. den == 0 yields Infinite.
func newThroughput(num, den int64) Throughput {
	if den == 0 {
		return InfiniteThroughput()
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := graphmodel.Gcd(num, den)
	if g == 0 {
		g = 1
	}
	return Throughput{Num: num / g, Den: den / g}
}

// Compare orders two throughput values: -1 if a < b, 0 if equal, 1 if
// a > b. Infinite compares greater than every finite value.
func Compare(a, b Throughput) int {
	switch {
	case a.Infinite && b.Infinite:
		return 0
	case a.Infinite:
		return 1
	case b.Infinite:
		return -1
	}
	lhs := a.Num * b.Den
	rhs := b.Num * a.Den
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	default:
		return 0
	}
}

package buffer

import "github.com/vharmon/flowsim/tsim"

// Distribution is one storage distribution (spec.md §3): a per-channel
// space allocation, the dep[] bitmask discovered by simulating it, and its
// throughput.
type Distribution struct {
	Sp  []int64
	Dep []bool
	Thr tsim.Throughput
}

func cloneInt64(s []int64) []int64 {
	out := make([]int64, len(s))
	copy(out, s)
	return out
}

func sameSp(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DistributionSet is one point of the Pareto front: every distribution
// sharing the same total size and the throughput discovered for it.
type DistributionSet struct {
	Size          int64
	Throughput    tsim.Throughput
	Distributions []*Distribution
}

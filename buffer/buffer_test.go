package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vharmon/flowsim/graphmodel"
	"github.com/vharmon/flowsim/tsim"
)

func twoActorCycle(t *testing.T) *graphmodel.Graph {
	t.Helper()
	g := graphmodel.NewGraph()
	a, err := g.AddActor("A", graphmodel.Profile{Type: "cpu", ExecTime: 2, Default: true})
	require.NoError(t, err)
	b, err := g.AddActor("B", graphmodel.Profile{Type: "cpu", ExecTime: 3, Default: true})
	require.NoError(t, err)
	_, err = g.AddChannel("AB", a, "out", graphmodel.SDFRate(1), b, "in", graphmodel.SDFRate(1), 1)
	require.NoError(t, err)
	_, err = g.AddChannel("BA", b, "out", graphmodel.SDFRate(1), a, "in", graphmodel.SDFRate(1), 0)
	require.NoError(t, err)
	return g
}

func TestLowerBounds_TwoActorCycle(t *testing.T) {
	g := twoActorCycle(t)
	lb, step, err := lowerBounds(g)
	require.NoError(t, err)
	// Both channels: p=1, c=1, gcd=1. lb = 1+1-1+(t0 mod 1) = 1 regardless
	// of t0, then max(1, t0) keeps it at 1 for both t0=1 and t0=0.
	require.Equal(t, []int64{1, 1}, step)
	require.Equal(t, []int64{1, 1}, lb)
}

func TestExplore_TwoActorCycleReachesBound(t *testing.T) {
	g := twoActorCycle(t)
	front, err := Explore(g, tsim.InfiniteThroughput())
	require.NoError(t, err)
	require.NotEmpty(t, front)

	for i := 1; i < len(front); i++ {
		require.Equal(t, 1, tsim.Compare(front[i].Throughput, front[i-1].Throughput),
			"Pareto front must be strictly increasing in throughput")
		require.Less(t, front[i-1].Size, front[i].Size)
	}
}

func TestExplore_ZeroBoundStopsAtFirstDeadlockFree(t *testing.T) {
	g := twoActorCycle(t)
	front, err := Explore(g, tsim.Throughput{})
	require.NoError(t, err)
	require.NotEmpty(t, front)
	last := front[len(front)-1]
	require.True(t, last.Throughput.Infinite || last.Throughput.Num > 0)
}

func TestExplore_AutoConcurrencyDiscountsSize(t *testing.T) {
	g := twoActorCycle(t)
	without, err := Explore(g, tsim.InfiniteThroughput())
	require.NoError(t, err)
	with, err := Explore(g, tsim.InfiniteThroughput(), WithAutoConcurrency())
	require.NoError(t, err)
	require.NotEmpty(t, without)
	require.NotEmpty(t, with)
	// The discounted first point's size should match the undiscounted
	// exploration's first point (same real channels, same lower bounds).
	require.Equal(t, without[0].Size, with[0].Size)
}

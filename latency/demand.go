package latency

import "github.com/vharmon/flowsim/graphmodel"

// demandList backward-propagates, from target, the number of firings
// every actor must complete before target can fire once — spec.md §4.4's
// "demand list". Propagation is a Bellman-Ford-style relaxation: each
// round may only raise an actor's demand, so it monotonically converges
// within NumActors rounds for any consistent graph.
func demandList(g *graphmodel.Graph, target int) []int64 {
	n := g.NumActors()
	demand := make([]int64, n)
	demand[target] = 1
	chans := g.Channels()

	for round := 0; round < n+2; round++ {
		changed := false
		for _, c := range chans {
			a := c.DstPort.ActorID
			if demand[a] == 0 {
				continue
			}
			b := c.SrcPort.ActorID
			rate := c.DstRate().At(0)
			srcRate := c.SrcRate().At(0)
			if srcRate <= 0 {
				continue
			}
			needed := rate * demand[a]
			req := int64(0)
			if needed > c.InitialTokens {
				req = ceilDiv(needed-c.InitialTokens, srcRate)
			}
			if req > demand[b] {
				demand[b] = req
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return demand
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

package buffer

import "github.com/vharmon/flowsim/graphmodel"

// lowerBounds computes, per spec.md §4.2, the minimum useful growth step
// and minimum space for every channel of an SDF graph.
func lowerBounds(g *graphmodel.Graph) (lb, step []int64, err error) {
	chans := g.Channels()
	lb = make([]int64, len(chans))
	step = make([]int64, len(chans))

	for j, c := range chans {
		p := c.SrcRate().At(0)
		cc := c.DstRate().At(0)
		if p <= 0 || cc <= 0 {
			return nil, nil, graphmodel.NewTaggedError(graphmodel.KindValidation, "buffer.lowerBounds",
				ErrNonPositiveRate)
		}
		gcd := graphmodel.Gcd(p, cc)
		step[j] = gcd

		if c.IsSelfEdge() {
			lb[j] = p + max64(cc, c.InitialTokens)
			continue
		}
		bound := p + cc - gcd + c.InitialTokens%gcd
		lb[j] = max64(bound, c.InitialTokens)
	}
	return lb, step, nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

package graphmodel

import (
	"fmt"
	"math/big"
)

// RepetitionVector computes q, the smallest positive integer vector with
// q[src]/Period(src)·Sum(src) = q[dst]/Period(dst)·Sum(dst) on every channel
// (spec.md §3), where Sum is the total tokens moved per phase period on the
// channel's source and destination ports and Period is that port's phase
// count (1 for SDF, the CSDF sequence length otherwise) — the per-firing
// average rate on each side must balance, not the raw per-period sum, once
// the two ports run their phase sequences at different lengths. The computation
// propagates exact rate fractions through a spanning exploration of each
// weakly-connected component independently — a graph.md §3 caveat upheld
// for the common case of a mapping flow operating on a single connected
// application graph, and extended here (per SPEC_FULL.md §5, following
// original_source's component-wise repetition_vector.cc) to graphs that
// are a disjoint union of several strongly-connected pieces — then reduces
// by gcd after taking the lcm of denominators.
//
// A nil, empty, or all-zero return paired with a non-nil error means the
// graph is inconsistent: some cycle demands two different ratios for the
// same actor, or a channel has a zero rate.
func RepetitionVector(g *Graph) ([]int64, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	n := g.NumActors()
	if n == 0 {
		return nil, nil
	}
	channels := g.Channels()

	adj := make([][]int, n)
	for ci, c := range channels {
		adj[c.SrcPort.ActorID] = append(adj[c.SrcPort.ActorID], ci)
		if c.DstPort.ActorID != c.SrcPort.ActorID {
			adj[c.DstPort.ActorID] = append(adj[c.DstPort.ActorID], ci)
		}
	}

	ratios := make([]*big.Rat, n)
	visited := make([]bool, n)

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		ratios[start] = big.NewRat(1, 1)
		visited[start] = true
		queue := []int{start}

		for len(queue) > 0 {
			a := queue[0]
			queue = queue[1:]

			for _, ci := range adj[a] {
				c := channels[ci]
				p := c.SrcPort.Rate.Sum()
				cc := c.DstPort.Rate.Sum()
				if p <= 0 || cc <= 0 {
					return nil, NewTaggedError(KindValidation, "graphmodel.RepetitionVector",
						fmt.Errorf("channel %q has a non-positive rate (src=%d dst=%d)", c.Name, p, cc))
				}

				srcAvg := new(big.Rat).SetFrac64(p, int64(c.SrcPort.Rate.Period()))
				dstAvg := new(big.Rat).SetFrac64(cc, int64(c.DstPort.Rate.Period()))

				if c.IsSelfEdge() {
					if srcAvg.Cmp(dstAvg) != 0 {
						return nil, NewTaggedError(KindValidation, "graphmodel.RepetitionVector",
							fmt.Errorf("self-edge channel %q requires equal src/dst rate, got %d/%d", c.Name, p, cc))
					}
					continue
				}

				var other int
				var expected *big.Rat
				if c.SrcPort.ActorID == a {
					other = c.DstPort.ActorID
					expected = new(big.Rat).Mul(ratios[a], new(big.Rat).Quo(srcAvg, dstAvg))
				} else {
					other = c.SrcPort.ActorID
					expected = new(big.Rat).Mul(ratios[a], new(big.Rat).Quo(dstAvg, srcAvg))
				}

				if visited[other] {
					if ratios[other].Cmp(expected) != 0 {
						return nil, NewTaggedError(KindValidation, "graphmodel.RepetitionVector",
							fmt.Errorf("channel %q: conflicting repetition ratio for actor %d", c.Name, other))
					}
					continue
				}
				ratios[other] = expected
				visited[other] = true
				queue = append(queue, other)
			}
		}
	}

	lcmDen := big.NewInt(1)
	for _, r := range ratios {
		lcmDen = lcmBig(lcmDen, r.Denom())
	}

	nums := make([]*big.Int, n)
	gcdAll := big.NewInt(0)
	for i, r := range ratios {
		scale := new(big.Int).Div(lcmDen, r.Denom())
		v := new(big.Int).Mul(r.Num(), scale)
		nums[i] = v
		gcdAll.GCD(nil, nil, gcdAll, v)
	}
	if gcdAll.Sign() == 0 {
		gcdAll.SetInt64(1)
	}

	q := make([]int64, n)
	for i, v := range nums {
		q[i] = new(big.Int).Div(v, gcdAll).Int64()
		if q[i] <= 0 {
			return nil, NewTaggedError(KindValidation, "graphmodel.RepetitionVector",
				fmt.Errorf("actor %d: non-positive repetition count", i))
		}
	}
	return q, nil
}

func lcmBig(a, b *big.Int) *big.Int {
	if a.Sign() == 0 || b.Sign() == 0 {
		return big.NewInt(0)
	}
	gcd := new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
	return new(big.Int).Mul(new(big.Int).Div(a, gcd), b)
}

// ConsistencyCheck validates a graph's structural invariants (spec.md §3):
// every port has a non-zero rate, CSDF rate sequences are non-empty, and a
// repetition vector exists with every q[a] > 0. It returns the repetition
// vector on success.
func ConsistencyCheck(g *Graph) ([]int64, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	for _, a := range g.Actors() {
		if len(a.Profiles) == 0 {
			return nil, NewTaggedError(KindValidation, "graphmodel.ConsistencyCheck",
				fmt.Errorf("actor %q: %w", a.Name, ErrNoProfiles))
		}
		if _, err := a.DefaultProfile(); err != nil {
			return nil, NewTaggedError(KindValidation, "graphmodel.ConsistencyCheck", err)
		}
	}
	for _, c := range g.Channels() {
		if len(c.SrcPort.Rate) == 0 || len(c.DstPort.Rate) == 0 {
			return nil, NewTaggedError(KindValidation, "graphmodel.ConsistencyCheck",
				fmt.Errorf("channel %q: empty CSDF rate sequence", c.Name))
		}
		for _, rate := range c.SrcPort.Rate {
			if rate <= 0 {
				return nil, NewTaggedError(KindValidation, "graphmodel.ConsistencyCheck",
					fmt.Errorf("channel %q: non-positive source rate %d", c.Name, rate))
			}
		}
		for _, rate := range c.DstPort.Rate {
			if rate <= 0 {
				return nil, NewTaggedError(KindValidation, "graphmodel.ConsistencyCheck",
					fmt.Errorf("channel %q: non-positive destination rate %d", c.Name, rate))
			}
		}
		if c.InitialTokens < 0 {
			return nil, NewTaggedError(KindValidation, "graphmodel.ConsistencyCheck",
				fmt.Errorf("channel %q: negative initial token count", c.Name))
		}
	}
	return RepetitionVector(g)
}

// Gcd is the textbook non-negative integer greatest common divisor,
// shared by graphmodel, buffer and tsim for rate, phase-length and
// throughput-fraction arithmetic.
func Gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

package graphmodel

import "fmt"

// ToSDF converts a CSDF graph to SDF (spec.md §9's dialect conversion):
// for every actor, every port's phase sequence (input and output) must produce
// the same rate in every phase; the SDF rate is that constant. A phase
// mismatch is NotSupported, not a ValidationError — the graph is a
// perfectly valid CSDF graph, it simply has no SDF representation.
func ToSDF(g *Graph) (*Graph, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	out := g.Clone()
	for _, a := range out.actors {
		for _, p := range a.Ports {
			if p.Rate.IsSDF() {
				continue
			}
			first := p.Rate[0]
			for _, r := range p.Rate[1:] {
				if r != first {
					return nil, NewTaggedError(KindNotSupported, "graphmodel.ToSDF",
						fmt.Errorf("actor %q port %q: phase rates %v are not constant", a.Name, p.Name, p.Rate))
				}
			}
			p.Rate = SDFRate(first)
		}
	}
	return out, nil
}

// IsStronglyConnected reports whether every actor can reach, and be
// reached from, every other actor via channels treated as directed edges
// (src → dst). The latency analyses (spec.md §4.3) require this; graphs
// that fail it return NotStronglyConnected rather than a nonsensical
// latency figure.
func IsStronglyConnected(g *Graph) bool {
	n := g.NumActors()
	if n <= 1 {
		return n == 1
	}
	channels := g.Channels()

	fwd := make([][]int, n)
	bwd := make([][]int, n)
	for _, c := range channels {
		fwd[c.SrcPort.ActorID] = append(fwd[c.SrcPort.ActorID], c.DstPort.ActorID)
		bwd[c.DstPort.ActorID] = append(bwd[c.DstPort.ActorID], c.SrcPort.ActorID)
	}

	reaches := func(adj [][]int) bool {
		seen := make([]bool, n)
		seen[0] = true
		stack := []int{0}
		count := 1
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, w := range adj[v] {
				if !seen[w] {
					seen[w] = true
					count++
					stack = append(stack, w)
				}
			}
		}
		return count == n
	}
	return reaches(fwd) && reaches(bwd)
}

// RequireStronglyConnected is the guard every latency derivation calls
// first (spec.md §4.3: "All four reject graphs that are not strongly
// connected").
func RequireStronglyConnected(g *Graph, op string) error {
	if !IsStronglyConnected(g) {
		return NewTaggedError(KindNotStronglyConnected, op, fmt.Errorf("graph is not strongly connected"))
	}
	return nil
}

package deps

import (
	"github.com/vharmon/flowsim/graphmodel"
	"github.com/vharmon/flowsim/tsim"
)

// edge is one dependency edge: actor `from` could not start because of
// actor `to`, optionally blaming a channel (-1 when the edge comes from an
// in-flight/serialization block, which names no channel).
type edge struct {
	to      int
	channel int
}

// Graph is the abstract dependency graph built on A actor nodes. Build one
// with NewGraph, fold in every blocked-start reason observed during one
// periodic iteration (or a deadlock's final state) with AddReason/AddEvent,
// then call Dependent to get the channel cycle-membership bitmask.
type Graph struct {
	numActors int
	adj       [][]edge
}

// NewGraph allocates an empty dependency graph over numActors nodes.
func NewGraph(numActors int) *Graph {
	return &Graph{numActors: numActors, adj: make([][]edge, numActors)}
}

func (dg *Graph) addEdge(from, to, channel int) {
	dg.adj[from] = append(dg.adj[from], edge{to: to, channel: channel})
}

// AddReason folds one tsim.BlockReason into the graph following spec.md
// §4.3's three edge rules: missing tokens on an in-channel adds an edge to
// that channel's source actor, missing space on an out-channel adds an
// edge to its destination actor, and an unfinished previous firing adds a
// self-edge.
func (dg *Graph) AddReason(g *graphmodel.Graph, r tsim.BlockReason) {
	switch r.Kind {
	case tsim.BlockMissingTokens:
		c, err := g.Channel(r.Channel)
		if err != nil {
			return
		}
		dg.addEdge(r.Actor, c.SrcPort.ActorID, r.Channel)
	case tsim.BlockMissingSpace:
		c, err := g.Channel(r.Channel)
		if err != nil {
			return
		}
		dg.addEdge(r.Actor, c.DstPort.ActorID, r.Channel)
	case tsim.BlockInFlight:
		dg.addEdge(r.Actor, r.Actor, -1)
	}
}

// AddEvent folds every reason of one BlockEvent into the graph.
func (dg *Graph) AddEvent(g *graphmodel.Graph, ev tsim.BlockEvent) {
	for _, r := range ev.Reasons {
		dg.AddReason(g, r)
	}
}

// Dependent runs a white/gray/black DFS over the dependency graph and
// returns, for each of numChannels channels, whether some edge marking it
// lies on a cycle. Per spec.md §4.3's invariant, enlarging a dep[j]==false
// channel can never increase throughput for this distribution.
func (dg *Graph) Dependent(numChannels int) []bool {
	dep := make([]bool, numChannels)

	const (
		white = iota
		gray
		black
	)
	color := make([]int, dg.numActors)

	type stackEdge struct{ channel int }
	var stack []stackEdge
	onStack := make(map[int]int)

	markFrom := func(idx int) {
		for i := idx; i < len(stack); i++ {
			if stack[i].channel >= 0 {
				dep[stack[i].channel] = true
			}
		}
	}

	var visit func(u int)
	visit = func(u int) {
		color[u] = gray
		for _, e := range dg.adj[u] {
			if e.to == u {
				if e.channel >= 0 {
					dep[e.channel] = true
				}
				continue
			}
			switch color[e.to] {
			case white:
				stack = append(stack, stackEdge{channel: e.channel})
				pos := len(stack) - 1
				onStack[e.to] = pos
				visit(e.to)
				stack = stack[:pos]
				delete(onStack, e.to)
			case gray:
				if e.channel >= 0 {
					dep[e.channel] = true
				}
				idx, ok := onStack[e.to]
				if !ok {
					idx = 0
				}
				markFrom(idx)
			case black:
				// cross edge: not on a cycle through u
			}
		}
		color[u] = black
	}

	for a := 0; a < dg.numActors; a++ {
		if color[a] == white {
			visit(a)
		}
	}
	return dep
}

// Analyze builds a dependency graph from a sequence of BlockEvents (the
// periodic-phase slice of a tsim.Result.BlockLog) and returns the dep[]
// bitmask over g's channels.
func Analyze(g *graphmodel.Graph, events []tsim.BlockEvent) []bool {
	dg := NewGraph(g.NumActors())
	for _, ev := range events {
		dg.AddEvent(g, ev)
	}
	return dg.Dependent(g.NumChannels())
}

// AnalyzeDeadlock builds a dependency graph from a deadlock's final
// blocked state, per spec.md §4.3's "on deadlock the same graph is
// constructed from the final state" rule.
func AnalyzeDeadlock(g *graphmodel.Graph, report *tsim.DeadlockReport) []bool {
	dg := NewGraph(g.NumActors())
	if report != nil {
		for _, ba := range report.Blocked {
			for _, r := range ba.Reasons {
				dg.AddReason(g, r)
			}
		}
	}
	return dg.Dependent(g.NumChannels())
}

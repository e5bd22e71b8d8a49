package deps

import (
	"testing"

	"github.com/vharmon/flowsim/graphmodel"
	"github.com/vharmon/flowsim/tsim"
)

func TestDependent_SimpleCycleMarksBothChannels(t *testing.T) {
	g := graphmodel.NewGraph()
	a, _ := g.AddActor("A", graphmodel.Profile{Type: "cpu", ExecTime: 2, Default: true})
	b, _ := g.AddActor("B", graphmodel.Profile{Type: "cpu", ExecTime: 3, Default: true})
	ab, _ := g.AddChannel("AB", a, "out", graphmodel.SDFRate(1), b, "in", graphmodel.SDFRate(1), 1)
	ba, _ := g.AddChannel("BA", b, "out", graphmodel.SDFRate(1), a, "in", graphmodel.SDFRate(1), 0)

	events := []tsim.BlockEvent{
		{Iteration: 0, Reasons: []tsim.BlockReason{
			{Actor: b, Kind: tsim.BlockMissingTokens, Channel: ab},
		}},
		{Iteration: 1, Reasons: []tsim.BlockReason{
			{Actor: a, Kind: tsim.BlockMissingTokens, Channel: ba},
		}},
	}
	dep := Analyze(g, events)
	if !dep[ab] || !dep[ba] {
		t.Fatalf("expected both channels marked dependent, got %v", dep)
	}
}

func TestDependent_InFlightSelfEdgeMarksNoChannel(t *testing.T) {
	g := graphmodel.NewGraph()
	a, _ := g.AddActor("A", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	_ = a
	dg := NewGraph(1)
	dg.addEdge(0, 0, -1)
	dep := dg.Dependent(0)
	if len(dep) != 0 {
		t.Fatalf("expected empty dep slice, got %v", dep)
	}
}

func TestDependent_UnrelatedChannelNotMarked(t *testing.T) {
	g := graphmodel.NewGraph()
	a, _ := g.AddActor("A", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	b, _ := g.AddActor("B", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	c, _ := g.AddActor("C", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	ab, _ := g.AddChannel("AB", a, "out", graphmodel.SDFRate(1), b, "in", graphmodel.SDFRate(1), 1)
	ba, _ := g.AddChannel("BA", b, "out", graphmodel.SDFRate(1), a, "in", graphmodel.SDFRate(1), 0)
	bc, _ := g.AddChannel("BC", b, "out2", graphmodel.SDFRate(1), c, "in", graphmodel.SDFRate(1), 1)

	events := []tsim.BlockEvent{
		{Iteration: 0, Reasons: []tsim.BlockReason{
			{Actor: b, Kind: tsim.BlockMissingTokens, Channel: ab},
			{Actor: a, Kind: tsim.BlockMissingTokens, Channel: ba},
		}},
	}
	dep := Analyze(g, events)
	if !dep[ab] || !dep[ba] {
		t.Fatalf("expected cycle channels marked, got %v", dep)
	}
	if dep[bc] {
		t.Fatalf("channel BC is not on any cycle, should not be marked")
	}
}

func TestAnalyzeDeadlock(t *testing.T) {
	g := graphmodel.NewGraph()
	a, _ := g.AddActor("A", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	b, _ := g.AddActor("B", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	ab, _ := g.AddChannel("AB", a, "out", graphmodel.SDFRate(1), b, "in", graphmodel.SDFRate(1), 0)
	ba, _ := g.AddChannel("BA", b, "out", graphmodel.SDFRate(1), a, "in", graphmodel.SDFRate(1), 0)

	report := &tsim.DeadlockReport{Blocked: []tsim.BlockedActor{
		{Actor: a, Reasons: []tsim.BlockReason{{Actor: a, Kind: tsim.BlockMissingTokens, Channel: ba}}},
		{Actor: b, Reasons: []tsim.BlockReason{{Actor: b, Kind: tsim.BlockMissingTokens, Channel: ab}}},
	}}
	dep := AnalyzeDeadlock(g, report)
	if !dep[ab] || !dep[ba] {
		t.Fatalf("expected both channels marked, got %v", dep)
	}
}

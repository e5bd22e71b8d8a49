package latency

import (
	"testing"

	"github.com/vharmon/flowsim/graphmodel"
)

func twoActorCycle(t *testing.T) (*graphmodel.Graph, int, int) {
	t.Helper()
	g := graphmodel.NewGraph()
	a, err := g.AddActor("A", graphmodel.Profile{Type: "cpu", ExecTime: 2, Default: true})
	if err != nil {
		t.Fatalf("AddActor A: %v", err)
	}
	b, err := g.AddActor("B", graphmodel.Profile{Type: "cpu", ExecTime: 3, Default: true})
	if err != nil {
		t.Fatalf("AddActor B: %v", err)
	}
	if _, err := g.AddChannel("AB", a, "out", graphmodel.SDFRate(1), b, "in", graphmodel.SDFRate(1), 1); err != nil {
		t.Fatalf("AddChannel AB: %v", err)
	}
	if _, err := g.AddChannel("BA", b, "out", graphmodel.SDFRate(1), a, "in", graphmodel.SDFRate(1), 0); err != nil {
		t.Fatalf("AddChannel BA: %v", err)
	}
	return g, a, b
}

func TestAnalyze_RejectsNotStronglyConnected(t *testing.T) {
	g := graphmodel.NewGraph()
	a, _ := g.AddActor("A", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	b, _ := g.AddActor("B", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	if _, err := g.AddChannel("AB", a, "out", graphmodel.SDFRate(1), b, "in", graphmodel.SDFRate(1), 1); err != nil {
		t.Fatalf("AddChannel: %v", err)
	}
	if _, err := Analyze(g, a, b, SingleProcessor); err == nil {
		t.Fatal("expected NotStronglyConnected error")
	}
}

func TestAnalyze_SingleProcessor(t *testing.T) {
	g, a, b := twoActorCycle(t)
	res, err := Analyze(g, a, b, SingleProcessor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Latency <= 0 {
		t.Fatalf("expected positive latency, got %d", res.Latency)
	}
}

func TestAnalyze_MinimalUnboundedConcurrency(t *testing.T) {
	g, a, b := twoActorCycle(t)
	res, err := Analyze(g, a, b, MinimalUnboundedConcurrency)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Latency <= 0 {
		t.Fatalf("expected positive latency, got %d", res.Latency)
	}
}

func TestAnalyze_SelfTimed(t *testing.T) {
	g, a, b := twoActorCycle(t)
	res, err := Analyze(g, a, b, SelfTimed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Latency <= 0 {
		t.Fatalf("expected positive latency, got %d", res.Latency)
	}
}

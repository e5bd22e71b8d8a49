package tsim

import (
	"testing"

	"github.com/vharmon/flowsim/graphmodel"
)

func twoActorCycle(t *testing.T, execA, execB graphmodel.Clock) *graphmodel.Graph {
	t.Helper()
	g := graphmodel.NewGraph()
	a, err := g.AddActor("A", graphmodel.Profile{Type: "cpu", ExecTime: execA, Default: true})
	if err != nil {
		t.Fatalf("AddActor A: %v", err)
	}
	b, err := g.AddActor("B", graphmodel.Profile{Type: "cpu", ExecTime: execB, Default: true})
	if err != nil {
		t.Fatalf("AddActor B: %v", err)
	}
	if _, err := g.AddChannel("AB", a, "out", graphmodel.SDFRate(1), b, "in", graphmodel.SDFRate(1), 1); err != nil {
		t.Fatalf("AddChannel AB: %v", err)
	}
	if _, err := g.AddChannel("BA", b, "out", graphmodel.SDFRate(1), a, "in", graphmodel.SDFRate(1), 0); err != nil {
		t.Fatalf("AddChannel BA: %v", err)
	}
	return g
}

// seed scenario 1 (spec.md §8): two-actor cycle, exec(A)=2, exec(B)=3, one
// initial token on A->B, throughput 1/5.
func TestRun_TwoActorCycle(t *testing.T) {
	g := twoActorCycle(t, 2, 3)
	res, err := Run(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != ResultRecurrent {
		t.Fatalf("expected recurrent, got %v", res.Kind)
	}
	if res.Throughput.Num != 1 || res.Throughput.Den != 5 {
		t.Fatalf("expected throughput 1/5, got %d/%d", res.Throughput.Num, res.Throughput.Den)
	}
}

func triangleBottleneck(t *testing.T) *graphmodel.Graph {
	t.Helper()
	g := graphmodel.NewGraph()
	a, _ := g.AddActor("A", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	b, _ := g.AddActor("B", graphmodel.Profile{Type: "cpu", ExecTime: 2, Default: true})
	c, _ := g.AddActor("C", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	if _, err := g.AddChannel("AB", a, "out", graphmodel.SDFRate(1), b, "in", graphmodel.SDFRate(2), 0); err != nil {
		t.Fatalf("AddChannel AB: %v", err)
	}
	if _, err := g.AddChannel("BC", b, "out", graphmodel.SDFRate(2), c, "in", graphmodel.SDFRate(1), 0); err != nil {
		t.Fatalf("AddChannel BC: %v", err)
	}
	if _, err := g.AddChannel("CA", c, "out", graphmodel.SDFRate(1), a, "in", graphmodel.SDFRate(1), 2); err != nil {
		t.Fatalf("AddChannel CA: %v", err)
	}
	return g
}

// after seed scenario 2 (spec.md §8): SDF triangle with bottleneck actor B,
// A --1:2--> B --2:1--> C --1:1--> A (t0=2), q=(2,1,2). One iteration
// (A, A, B, then C, C overlapping the next A) repeats every 5 time units,
// so throughput is 1/5.
func TestRun_TriangleBottleneck(t *testing.T) {
	g := triangleBottleneck(t)
	res, err := Run(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != ResultRecurrent {
		t.Fatalf("expected recurrent, got %v", res.Kind)
	}
	if res.Throughput.Num != 1 || res.Throughput.Den != 5 {
		t.Fatalf("expected throughput 1/5, got %d/%d", res.Throughput.Num, res.Throughput.Den)
	}
}

// seed scenario 3 (spec.md §8): a self-edge with a single initial token
// forces serialization of consecutive firings, giving exact throughput 1/4.
func TestRun_SelfEdgeSerializes(t *testing.T) {
	g := graphmodel.NewGraph()
	a, _ := g.AddActor("A", graphmodel.Profile{Type: "cpu", ExecTime: 4, Default: true})
	if _, err := g.AddChannel("AA", a, "out", graphmodel.SDFRate(1), a, "in", graphmodel.SDFRate(1), 1); err != nil {
		t.Fatalf("AddChannel AA: %v", err)
	}
	res, err := Run(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != ResultRecurrent {
		t.Fatalf("expected recurrent, got %v", res.Kind)
	}
	if res.Throughput.Num != 1 || res.Throughput.Den != 4 {
		t.Fatalf("expected throughput 1/4, got %d/%d", res.Throughput.Num, res.Throughput.Den)
	}
}

// seed scenario 4 (spec.md §8): A's CSDF out-rates [1,2,1] feed B's
// constant in-rate 4, giving q=(3,1); throughput is half of the
// constant-rate equivalent (q=(1,1)) built with the same per-firing
// execution times, since one graph iteration now costs three A firings
// instead of one.
func TestRun_CSDFPhaseHalvesThroughput(t *testing.T) {
	csdf := graphmodel.NewGraph()
	a, _ := csdf.AddActor("A", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	b, _ := csdf.AddActor("B", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	if _, err := csdf.AddChannel("AB", a, "out", graphmodel.CSDFRate(1, 2, 1), b, "in", graphmodel.SDFRate(4), 0); err != nil {
		t.Fatalf("AddChannel AB: %v", err)
	}
	if _, err := csdf.AddChannel("BA", b, "out", graphmodel.SDFRate(3), a, "in", graphmodel.SDFRate(1), 3); err != nil {
		t.Fatalf("AddChannel BA: %v", err)
	}
	r1, err := Run(csdf)
	if err != nil {
		t.Fatalf("run csdf: %v", err)
	}
	if r1.Kind != ResultRecurrent {
		t.Fatalf("expected recurrent, got %v", r1.Kind)
	}
	if r1.Throughput.Num != 1 || r1.Throughput.Den != 4 {
		t.Fatalf("expected throughput 1/4, got %d/%d", r1.Throughput.Num, r1.Throughput.Den)
	}

	equivalent := twoActorCycle(t, 1, 1)
	r2, err := Run(equivalent)
	if err != nil {
		t.Fatalf("run equivalent: %v", err)
	}
	if r2.Throughput.Num != 1 || r2.Throughput.Den != 2 {
		t.Fatalf("expected constant-rate equivalent throughput 1/2, got %d/%d", r2.Throughput.Num, r2.Throughput.Den)
	}
	if got := r2.Throughput.Float64() / r1.Throughput.Float64(); got < 1.999999 || got > 2.000001 {
		t.Fatalf("expected CSDF throughput to be half the constant-rate equivalent, ratio=%v", got)
	}
}

// spec.md §8 law: execTime ≡ 0 everywhere yields infinite throughput.
func TestRun_ZeroExecTimeIsInfinite(t *testing.T) {
	g := twoActorCycle(t, 0, 0)
	res, err := Run(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != ResultRecurrent {
		t.Fatalf("expected recurrent, got %v", res.Kind)
	}
	if !res.Throughput.Infinite {
		t.Fatalf("expected infinite throughput, got %d/%d", res.Throughput.Num, res.Throughput.Den)
	}
}

// spec.md §8 law: doubling every actor's execution time exactly halves
// throughput.
func TestRun_DoublingExecTimeHalvesThroughput(t *testing.T) {
	g1 := twoActorCycle(t, 2, 3)
	g2 := twoActorCycle(t, 4, 6)

	r1, err := Run(g1)
	if err != nil {
		t.Fatalf("run g1: %v", err)
	}
	r2, err := Run(g2)
	if err != nil {
		t.Fatalf("run g2: %v", err)
	}
	got := r1.Throughput.Float64() / r2.Throughput.Float64()
	if got < 1.999999 || got > 2.000001 {
		t.Fatalf("expected throughput ratio 2, got %v", got)
	}
}

// spec.md §8 law: adding a bounded self-loop to an actor can only decrease
// (never increase) throughput relative to the unconstrained graph.
func TestRun_SelfLoopCannotIncreaseThroughput(t *testing.T) {
	without := twoActorCycle(t, 2, 3)
	r1, err := Run(without)
	if err != nil {
		t.Fatalf("run without: %v", err)
	}

	with := graphmodel.NewGraph()
	a, _ := with.AddActor("A", graphmodel.Profile{Type: "cpu", ExecTime: 2, Default: true})
	b, _ := with.AddActor("B", graphmodel.Profile{Type: "cpu", ExecTime: 3, Default: true})
	if _, err := with.AddChannel("AB", a, "out", graphmodel.SDFRate(1), b, "in", graphmodel.SDFRate(1), 1); err != nil {
		t.Fatalf("AddChannel AB: %v", err)
	}
	if _, err := with.AddChannel("BA", b, "out", graphmodel.SDFRate(1), a, "in", graphmodel.SDFRate(1), 0); err != nil {
		t.Fatalf("AddChannel BA: %v", err)
	}
	if _, err := with.AddChannel("BB", b, "self-out", graphmodel.SDFRate(1), b, "self-in", graphmodel.SDFRate(1), 1); err != nil {
		t.Fatalf("AddChannel BB: %v", err)
	}
	r2, err := Run(with)
	if err != nil {
		t.Fatalf("run with: %v", err)
	}
	if r2.Throughput.Float64() > r1.Throughput.Float64() {
		t.Fatalf("self-loop increased throughput: without=%v with=%v", r1.Throughput.Float64(), r2.Throughput.Float64())
	}
}

func TestRun_Deadlock(t *testing.T) {
	g := graphmodel.NewGraph()
	a, _ := g.AddActor("A", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	b, _ := g.AddActor("B", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	// No initial tokens on a cycle: nothing can ever fire.
	if _, err := g.AddChannel("AB", a, "out", graphmodel.SDFRate(1), b, "in", graphmodel.SDFRate(1), 0); err != nil {
		t.Fatalf("AddChannel AB: %v", err)
	}
	if _, err := g.AddChannel("BA", b, "out", graphmodel.SDFRate(1), a, "in", graphmodel.SDFRate(1), 0); err != nil {
		t.Fatalf("AddChannel BA: %v", err)
	}
	res, err := Run(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != ResultDeadlock {
		t.Fatalf("expected deadlock, got %v", res.Kind)
	}
	if res.Deadlock == nil || len(res.Deadlock.Blocked) == 0 {
		t.Fatal("expected non-empty deadlock report")
	}
}

func TestRun_BufferAnalyserShortCircuitsOnTooSmallCapacity(t *testing.T) {
	g := twoActorCycle(t, 2, 3)
	res, err := Run(g, WithBufferAnalyser([]int64{0, 0}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != ResultDeadlock {
		t.Fatalf("expected deadlock from undersized capacity, got %v", res.Kind)
	}
	if res.Throughput.Num != 0 {
		t.Fatalf("expected zero throughput, got %d/%d", res.Throughput.Num, res.Throughput.Den)
	}
}

func TestRun_BufferAnalyserSufficientCapacityMatchesUnbounded(t *testing.T) {
	g := twoActorCycle(t, 2, 3)
	unbounded, err := Run(g)
	if err != nil {
		t.Fatalf("unbounded run: %v", err)
	}
	bounded, err := Run(g, WithBufferAnalyser([]int64{10, 10}))
	if err != nil {
		t.Fatalf("bounded run: %v", err)
	}
	if bounded.Throughput.Num != unbounded.Throughput.Num || bounded.Throughput.Den != unbounded.Throughput.Den {
		t.Fatalf("expected matching throughput, got %v vs %v", bounded.Throughput, unbounded.Throughput)
	}
}

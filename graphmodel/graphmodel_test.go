package graphmodel

import "testing"

func twoActorCycle(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	a, err := g.AddActor("A", Profile{Type: "cpu", ExecTime: 2, Default: true})
	if err != nil {
		t.Fatalf("AddActor A: %v", err)
	}
	b, err := g.AddActor("B", Profile{Type: "cpu", ExecTime: 3, Default: true})
	if err != nil {
		t.Fatalf("AddActor B: %v", err)
	}
	if _, err := g.AddChannel("AB", a, "out", SDFRate(1), b, "in", SDFRate(1), 1); err != nil {
		t.Fatalf("AddChannel AB: %v", err)
	}
	if _, err := g.AddChannel("BA", b, "out", SDFRate(1), a, "in", SDFRate(1), 0); err != nil {
		t.Fatalf("AddChannel BA: %v", err)
	}
	return g
}

func TestRepetitionVector_TwoActorCycle(t *testing.T) {
	g := twoActorCycle(t)
	q, err := RepetitionVector(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q) != 2 || q[0] != 1 || q[1] != 1 {
		t.Fatalf("expected q=[1,1], got %v", q)
	}
}

// SDF triangle with bottleneck (spec.md §8 seed scenario 2):
// A(exec=1) --1:2--> B(exec=2) --2:1--> C(exec=1), C --1:1--> A with t0=2.
func triangleBottleneck(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	a, _ := g.AddActor("A", Profile{Type: "cpu", ExecTime: 1, Default: true})
	b, _ := g.AddActor("B", Profile{Type: "cpu", ExecTime: 2, Default: true})
	c, _ := g.AddActor("C", Profile{Type: "cpu", ExecTime: 1, Default: true})
	if _, err := g.AddChannel("AB", a, "out", SDFRate(1), b, "in", SDFRate(2), 0); err != nil {
		t.Fatalf("AddChannel AB: %v", err)
	}
	if _, err := g.AddChannel("BC", b, "out", SDFRate(2), c, "in", SDFRate(1), 0); err != nil {
		t.Fatalf("AddChannel BC: %v", err)
	}
	if _, err := g.AddChannel("CA", c, "out", SDFRate(1), a, "in", SDFRate(1), 2); err != nil {
		t.Fatalf("AddChannel CA: %v", err)
	}
	return g
}

func TestRepetitionVector_Triangle(t *testing.T) {
	g := triangleBottleneck(t)
	q, err := RepetitionVector(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{2, 1, 2}
	if len(q) != len(want) {
		t.Fatalf("expected len %d, got %v", len(want), q)
	}
	for i := range want {
		if q[i] != want[i] {
			t.Fatalf("expected q=%v, got %v", want, q)
		}
	}
}

func TestRepetitionVector_InconsistentCycle(t *testing.T) {
	g := NewGraph()
	a, _ := g.AddActor("A", Profile{Type: "cpu", ExecTime: 1, Default: true})
	b, _ := g.AddActor("B", Profile{Type: "cpu", ExecTime: 1, Default: true})
	// Two independent constraints that cannot be satisfied by one ratio.
	if _, err := g.AddChannel("AB1", a, "out1", SDFRate(1), b, "in1", SDFRate(1), 0); err != nil {
		t.Fatalf("AddChannel AB1: %v", err)
	}
	if _, err := g.AddChannel("AB2", a, "out2", SDFRate(1), b, "in2", SDFRate(2), 0); err != nil {
		t.Fatalf("AddChannel AB2: %v", err)
	}
	if _, err := RepetitionVector(g); err == nil {
		t.Fatal("expected inconsistency error")
	}
}

// seed scenario 4 (spec.md §8): A's CSDF out-rates [1,2,1] sum to 4 tokens
// over a 3-phase period; B consumes a constant rate of 4. The two ports'
// per-firing averages must balance (4/3 on A's side), not their raw
// per-period sums, giving q=(3,1) rather than the naively-summed (1,1).
func TestRepetitionVector_CSDFPhaseSequence(t *testing.T) {
	g := NewGraph()
	a, _ := g.AddActor("A", Profile{Type: "cpu", ExecTime: 1, Default: true})
	b, _ := g.AddActor("B", Profile{Type: "cpu", ExecTime: 1, Default: true})
	if _, err := g.AddChannel("AB", a, "out", CSDFRate(1, 2, 1), b, "in", SDFRate(4), 0); err != nil {
		t.Fatalf("AddChannel AB: %v", err)
	}
	q, err := RepetitionVector(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{3, 1}
	if len(q) != len(want) {
		t.Fatalf("expected len %d, got %v", len(want), q)
	}
	for i := range want {
		if q[i] != want[i] {
			t.Fatalf("expected q=%v, got %v", want, q)
		}
	}
}

func TestDefaultProfile_Missing(t *testing.T) {
	g := NewGraph()
	if _, err := g.AddActor("A", Profile{Type: "cpu", ExecTime: 1}); err == nil {
		t.Fatal("expected ErrNoDefaultProfile")
	}
}

func TestIsStronglyConnected(t *testing.T) {
	g := twoActorCycle(t)
	if !IsStronglyConnected(g) {
		t.Fatal("two-actor cycle should be strongly connected")
	}

	g2 := NewGraph()
	a, _ := g2.AddActor("A", Profile{Type: "cpu", ExecTime: 1, Default: true})
	b, _ := g2.AddActor("B", Profile{Type: "cpu", ExecTime: 1, Default: true})
	if _, err := g2.AddChannel("AB", a, "out", SDFRate(1), b, "in", SDFRate(1), 0); err != nil {
		t.Fatalf("AddChannel: %v", err)
	}
	if IsStronglyConnected(g2) {
		t.Fatal("one-way A->B should not be strongly connected")
	}
}

func TestToSDF_ConstantPhases(t *testing.T) {
	g := NewGraph()
	a, _ := g.AddActor("A", Profile{Type: "cpu", ExecTime: 1, Default: true})
	b, _ := g.AddActor("B", Profile{Type: "cpu", ExecTime: 1, Default: true})
	if _, err := g.AddChannel("AB", a, "out", CSDFRate(2, 2, 2), b, "in", SDFRate(6), 0); err != nil {
		t.Fatalf("AddChannel: %v", err)
	}
	sdf, err := ToSDF(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ch, _ := sdf.Channel(0)
	if !ch.SrcRate().IsSDF() || ch.SrcRate().At(0) != 2 {
		t.Fatalf("expected constant SDF rate 2, got %v", ch.SrcRate())
	}
}

func TestToSDF_VaryingPhasesNotSupported(t *testing.T) {
	g := NewGraph()
	a, _ := g.AddActor("A", Profile{Type: "cpu", ExecTime: 1, Default: true})
	b, _ := g.AddActor("B", Profile{Type: "cpu", ExecTime: 1, Default: true})
	if _, err := g.AddChannel("AB", a, "out", CSDFRate(1, 2, 1), b, "in", SDFRate(4), 0); err != nil {
		t.Fatalf("AddChannel: %v", err)
	}
	if _, err := ToSDF(g); err == nil {
		t.Fatal("expected NotSupported error")
	}
}

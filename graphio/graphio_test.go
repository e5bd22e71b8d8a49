package graphio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vharmon/flowsim/graphmodel"
	"github.com/vharmon/flowsim/mapping"
)

func taggedKind(t *testing.T, err error) graphmodel.ErrorKind {
	t.Helper()
	var te *graphmodel.TaggedError
	require.True(t, errors.As(err, &te), "expected a *graphmodel.TaggedError, got %T", err)
	return te.Kind
}

func twoActorCycle(t *testing.T) *graphmodel.Graph {
	t.Helper()
	g := graphmodel.NewGraph()
	a, err := g.AddActor("A", graphmodel.Profile{Type: "cpu", ExecTime: 2, Default: true})
	require.NoError(t, err)
	b, err := g.AddActor("B", graphmodel.Profile{Type: "cpu", ExecTime: 3, Default: true})
	require.NoError(t, err)
	_, err = g.AddChannel("AB", a, "out", graphmodel.SDFRate(1), b, "in", graphmodel.SDFRate(1), 1,
		graphmodel.WithTokenSize(4))
	require.NoError(t, err)
	_, err = g.AddChannel("BA", b, "out", graphmodel.SDFRate(1), a, "in", graphmodel.SDFRate(1), 0)
	require.NoError(t, err)
	return g
}

func TestWriteGraph_ThenParseGraph_RoundTrips(t *testing.T) {
	g := twoActorCycle(t)
	platform := &mapping.Platform{
		Tiles:       []mapping.TileSpec{{ID: 0, W: 10, S: 3, MemoryBytes: 1024}},
		Connections: nil,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteGraph(&buf, g, platform))

	g2, p2, err := ParseGraph(&buf)
	require.NoError(t, err)
	require.Equal(t, g.NumActors(), g2.NumActors())
	require.Len(t, g2.Channels(), 2)
	require.NotNil(t, p2)
	require.Len(t, p2.Tiles, 1)
	require.Equal(t, int64(1024), p2.Tiles[0].MemoryBytes)
}

func TestParseGraph_RejectsUnknownActor(t *testing.T) {
	doc := `<?xml version="1.0"?>
<flowsim>
  <applicationGraph>
    <actor name="A"><processor type="cpu" execTime="1" default="true"/></actor>
    <channel name="AB" srcActor="A" srcPort="out" srcRate="1" dstActor="B" dstPort="in" dstRate="1" initialTokens="0"/>
  </applicationGraph>
</flowsim>`
	_, _, err := ParseGraph(strings.NewReader(doc))
	require.Error(t, err)
	require.Equal(t, graphmodel.KindValidation, taggedKind(t, err))
}

func TestParseGraph_ParsesCSDFRateSequence(t *testing.T) {
	doc := `<?xml version="1.0"?>
<flowsim>
  <applicationGraph>
    <actor name="A"><processor type="cpu" execTime="1" default="true"/></actor>
    <actor name="B"><processor type="cpu" execTime="1" default="true"/></actor>
    <channel name="AB" srcActor="A" srcPort="out" srcRate="1,2,1" dstActor="B" dstPort="in" dstRate="4" initialTokens="0"/>
  </applicationGraph>
</flowsim>`
	g, _, err := ParseGraph(strings.NewReader(doc))
	require.NoError(t, err)
	ch := g.Channels()[0]
	require.False(t, ch.SrcPort.Rate.IsSDF())
	require.Equal(t, 3, ch.SrcPort.Rate.Period())
}

func TestWriteDOT_EmitsDiamondForInitialTokens(t *testing.T) {
	g := twoActorCycle(t)
	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, g, "cycle"))
	out := buf.String()
	require.Contains(t, out, "digraph cycle")
	require.Contains(t, out, "shape=diamond")
}

func TestWriteHTML_ProducesNonEmptyDocument(t *testing.T) {
	g := twoActorCycle(t)
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, g, Report{GraphName: "cycle"}))
	out := buf.String()
	require.Contains(t, out, "<html")
	require.Contains(t, out, "AB")
}

func TestExportCSDF_AcceptsValidCSDFGraph(t *testing.T) {
	// Seed scenario 4 (spec.md §8): A's out-rate period exactly divides
	// its firings per iteration, so export must succeed.
	g := graphmodel.NewGraph()
	a, err := g.AddActor("A", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	require.NoError(t, err)
	b, err := g.AddActor("B", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	require.NoError(t, err)
	_, err = g.AddChannel("AB", a, "out", graphmodel.CSDFRate(1, 2, 1), b, "in", graphmodel.SDFRate(4), 0)
	require.NoError(t, err)
	// q(A)=3, q(B)=1 (spec.md §8 seed scenario 4); balance the return edge
	// the same way: q[B]*3 = q[A]*1.
	_, err = g.AddChannel("BA", b, "out", graphmodel.SDFRate(3), a, "in", graphmodel.SDFRate(1), 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportCSDF(&buf, g))
	require.Contains(t, buf.String(), "AB")
}

func TestCheckWholeIterations_RejectsLengthThatDoesNotDivide(t *testing.T) {
	g := graphmodel.NewGraph()
	a, err := g.AddActor("A", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	require.NoError(t, err)
	b, err := g.AddActor("B", graphmodel.Profile{Type: "cpu", ExecTime: 1, Default: true})
	require.NoError(t, err)
	_, err = g.AddChannel("AB", a, "out", graphmodel.CSDFRate(1, 2, 1), b, "in", graphmodel.SDFRate(4), 0)
	require.NoError(t, err)
	c := g.Channels()[0]

	require.NoError(t, checkWholeIterations(c, 3, 1))
	require.Error(t, checkWholeIterations(c, 2, 1))
}

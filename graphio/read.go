package graphio

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vharmon/flowsim/graphmodel"
	"github.com/vharmon/flowsim/mapping"
)

// ParseGraph reads a flowsim XML document from r and returns its
// application graph, plus the platform description if the document
// carries one. Every structural problem — an undeclared port, a
// malformed rate string, a non-integer attribute — is wrapped as a
// graphmodel ValidationError per spec.md §7.
func ParseGraph(r io.Reader) (*graphmodel.Graph, *mapping.Platform, error) {
	var doc Document
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, graphmodel.NewTaggedError(graphmodel.KindValidation, "graphio.ParseGraph", err)
	}
	if len(doc.Graph.Actors) == 0 {
		return nil, nil, graphmodel.NewTaggedError(graphmodel.KindValidation, "graphio.ParseGraph", ErrEmptyDocument)
	}

	g, err := buildGraph(doc.Graph)
	if err != nil {
		return nil, nil, err
	}

	var platform *mapping.Platform
	if doc.Platform != nil {
		p, err := buildPlatform(*doc.Platform)
		if err != nil {
			return nil, nil, err
		}
		platform = p
	}
	return g, platform, nil
}

func buildGraph(xg xmlGraph) (*graphmodel.Graph, error) {
	g := graphmodel.NewGraph()
	actorID := make(map[string]int, len(xg.Actors))

	for _, xa := range xg.Actors {
		if len(xa.Processors) == 0 {
			return nil, graphmodel.NewTaggedError(graphmodel.KindValidation, "graphio.buildGraph",
				fmt.Errorf("actor %q: no processor profile", xa.Name))
		}
		profiles := make([]graphmodel.Profile, len(xa.Processors))
		for i, p := range xa.Processors {
			profiles[i] = graphmodel.Profile{
				Type:      p.Type,
				ExecTime:  graphmodel.Clock(p.ExecTime),
				StateSize: p.StateSize,
				Weight:    p.Weight,
				Default:   p.Default,
			}
		}
		if len(profiles) == 1 {
			profiles[0].Default = true
		}
		id, err := g.AddActor(xa.Name, profiles...)
		if err != nil {
			return nil, graphmodel.NewTaggedError(graphmodel.KindValidation, "graphio.buildGraph", err)
		}
		actorID[xa.Name] = id
	}

	for _, xc := range xg.Channels {
		srcID, ok := actorID[xc.SrcActor]
		if !ok {
			return nil, graphmodel.NewTaggedError(graphmodel.KindValidation, "graphio.buildGraph",
				fmt.Errorf("%w: channel %q src actor %q", ErrUnknownPort, xc.Name, xc.SrcActor))
		}
		dstID, ok := actorID[xc.DstActor]
		if !ok {
			return nil, graphmodel.NewTaggedError(graphmodel.KindValidation, "graphio.buildGraph",
				fmt.Errorf("%w: channel %q dst actor %q", ErrUnknownPort, xc.Name, xc.DstActor))
		}
		srcRate, err := parseRate(xc.SrcRate)
		if err != nil {
			return nil, graphmodel.NewTaggedError(graphmodel.KindValidation, "graphio.buildGraph",
				fmt.Errorf("channel %q src rate: %w", xc.Name, err))
		}
		dstRate, err := parseRate(xc.DstRate)
		if err != nil {
			return nil, graphmodel.NewTaggedError(graphmodel.KindValidation, "graphio.buildGraph",
				fmt.Errorf("channel %q dst rate: %w", xc.Name, err))
		}

		var opts []graphmodel.ChannelOption
		if xc.TokenSize > 0 {
			opts = append(opts, graphmodel.WithTokenSize(xc.TokenSize))
		}
		if xc.BufferSize != "" && xc.BufferSize != "unbounded" {
			n, err := strconv.ParseInt(xc.BufferSize, 10, 64)
			if err != nil {
				return nil, graphmodel.NewTaggedError(graphmodel.KindValidation, "graphio.buildGraph",
					fmt.Errorf("channel %q buffer size: %w", xc.Name, err))
			}
			opts = append(opts, graphmodel.WithBufferSize(n))
		}

		if _, err := g.AddChannel(xc.Name, srcID, xc.SrcPort, srcRate, dstID, xc.DstPort, dstRate, xc.InitialTokens, opts...); err != nil {
			return nil, graphmodel.NewTaggedError(graphmodel.KindValidation, "graphio.buildGraph", err)
		}
	}
	return g, nil
}

// parseRate accepts either a single integer (SDF) or a comma-separated
// sequence (CSDF), per spec.md §6: "CSDF uses rate sequences."
func parseRate(s string) (graphmodel.Rate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty rate", ErrRateMismatch)
	}
	parts := strings.Split(s, ",")
	if len(parts) == 1 {
		n, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return nil, err
		}
		return graphmodel.SDFRate(n), nil
	}
	phases := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		phases[i] = n
	}
	return graphmodel.CSDFRate(phases...), nil
}

func buildPlatform(xp xmlPlatform) (*mapping.Platform, error) {
	p := &mapping.Platform{}
	tileIDs := make(map[int]bool, len(xp.Tiles))
	for _, xt := range xp.Tiles {
		p.Tiles = append(p.Tiles, mapping.TileSpec{
			ID:            xt.ID,
			W:             xt.W,
			S:             xt.S,
			MemoryBytes:   xt.MemoryBytes,
			NIInBw:        xt.NIInBw,
			NIOutBw:       xt.NIOutBw,
			SlotTableSize: xt.SlotTableSize,
		})
		tileIDs[xt.ID] = true
	}
	for _, xc := range xp.Connections {
		if !tileIDs[xc.From] || !tileIDs[xc.To] {
			return nil, graphmodel.NewTaggedError(graphmodel.KindValidation, "graphio.buildPlatform",
				fmt.Errorf("%w: %d -> %d", ErrUnknownTile, xc.From, xc.To))
		}
		p.Connections = append(p.Connections, mapping.ConnectionSpec{From: xc.From, To: xc.To})
	}
	if xp.Network != nil {
		p.Network = mapping.NetworkSpec{
			SlotTableSize:   xp.Network.SlotTableSize,
			FlitSize:        xp.Network.FlitSize,
			HeaderSize:      xp.Network.HeaderSize,
			ReconfigLatency: xp.Network.ReconfigLatency,
		}
	}
	return p, nil
}

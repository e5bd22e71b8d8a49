package graphio

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/vharmon/flowsim/graphmodel"
	"github.com/vharmon/flowsim/mapping"
)

// WriteGraph serializes g (and, if non-nil, platform) back into the same
// XML shape ParseGraph reads, so a graph built in code can be round
// tripped to disk and re-loaded.
func WriteGraph(w io.Writer, g *graphmodel.Graph, platform *mapping.Platform) error {
	doc := Document{XMLName: xml.Name{Local: "flowsim"}, Graph: graphFromModel(g)}
	if platform != nil {
		xp := platformToXML(*platform)
		doc.Platform = &xp
	}
	return encodeDocument(w, doc)
}

// encodeDocument writes doc as an indented XML document preceded by the
// standard XML declaration.
func encodeDocument(w io.Writer, doc Document) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func graphFromModel(g *graphmodel.Graph) xmlGraph {
	var xg xmlGraph
	actorName := make(map[int]string)
	for _, a := range g.Actors() {
		actorName[a.ID] = a.Name
		xa := xmlActor{Name: a.Name}
		for _, p := range a.Profiles {
			xa.Processors = append(xa.Processors, xmlProcessor{
				Type:      p.Type,
				ExecTime:  int64(p.ExecTime),
				StateSize: p.StateSize,
				Weight:    p.Weight,
				Default:   p.Default,
			})
		}
		xg.Actors = append(xg.Actors, xa)
	}
	for _, c := range g.Channels() {
		bufferSize := "unbounded"
		if c.IsBounded() {
			bufferSize = strconv.FormatInt(c.BufferSize, 10)
		}
		xg.Channels = append(xg.Channels, xmlChannel{
			Name:          c.Name,
			SrcActor:      actorName[c.SrcPort.ActorID],
			SrcPort:       c.SrcPort.Name,
			SrcRate:       formatRate(c.SrcPort.Rate),
			DstActor:      actorName[c.DstPort.ActorID],
			DstPort:       c.DstPort.Name,
			DstRate:       formatRate(c.DstPort.Rate),
			InitialTokens: c.InitialTokens,
			TokenSize:     c.TokenSize,
			BufferSize:    bufferSize,
		})
	}
	return xg
}

func formatRate(r graphmodel.Rate) string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

func platformToXML(p mapping.Platform) xmlPlatform {
	var xp xmlPlatform
	for _, t := range p.Tiles {
		xp.Tiles = append(xp.Tiles, xmlTile{
			ID: t.ID, W: t.W, S: t.S, MemoryBytes: t.MemoryBytes,
			NIInBw: t.NIInBw, NIOutBw: t.NIOutBw, SlotTableSize: t.SlotTableSize,
		})
	}
	for _, c := range p.Connections {
		xp.Connections = append(xp.Connections, xmlConnection{From: c.From, To: c.To})
	}
	if p.Network.SlotTableSize > 0 {
		xp.Network = &xmlNetwork{
			SlotTableSize:   p.Network.SlotTableSize,
			FlitSize:        p.Network.FlitSize,
			HeaderSize:      p.Network.HeaderSize,
			ReconfigLatency: p.Network.ReconfigLatency,
		}
	}
	return xp
}

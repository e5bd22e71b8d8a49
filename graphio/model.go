package graphio

import "encoding/xml"

// The XML schema below mirrors spec.md §6's description of the graph
// input document almost literally: a root holding one application graph
// and, optionally, a platform description. The field names follow the
// prose ("processor profiles with type, execution time, optional state
// size"; "slot-table size, flit size, packet header size, reconfiguration
// time") rather than any one dialect's tag names, since the spec gives a
// shape, not a wire format, and the pack carries no off-the-shelf XML
// schema to match.

// Document is the root element of a flowsim graph file.
type Document struct {
	XMLName  xml.Name     `xml:"flowsim"`
	Graph    xmlGraph     `xml:"applicationGraph"`
	Platform *xmlPlatform `xml:"platformGraph,omitempty"`
}

type xmlGraph struct {
	Name     string       `xml:"name,attr,omitempty"`
	Actors   []xmlActor   `xml:"actor"`
	Channels []xmlChannel `xml:"channel"`
}

type xmlActor struct {
	Name       string         `xml:"name,attr"`
	Processors []xmlProcessor `xml:"processor"`
}

type xmlProcessor struct {
	Type      string  `xml:"type,attr"`
	ExecTime  int64   `xml:"execTime,attr"`
	StateSize int64   `xml:"stateSize,attr,omitempty"`
	Weight    float64 `xml:"weight,attr,omitempty"`
	Default   bool    `xml:"default,attr,omitempty"`
}

type xmlChannel struct {
	Name          string `xml:"name,attr"`
	SrcActor      string `xml:"srcActor,attr"`
	SrcPort       string `xml:"srcPort,attr"`
	SrcRate       string `xml:"srcRate,attr"` // "2" (SDF) or "1,2,1" (CSDF)
	DstActor      string `xml:"dstActor,attr"`
	DstPort       string `xml:"dstPort,attr"`
	DstRate       string `xml:"dstRate,attr"`
	InitialTokens int64  `xml:"initialTokens,attr"`
	TokenSize     int64  `xml:"tokenSize,attr,omitempty"`
	BufferSize    string `xml:"bufferSize,attr,omitempty"` // integer or "unbounded"
}

type xmlPlatform struct {
	Name        string          `xml:"name,attr,omitempty"`
	Tiles       []xmlTile       `xml:"tile"`
	Connections []xmlConnection `xml:"connection"`
	Network     *xmlNetwork     `xml:"network,omitempty"`
}

type xmlTile struct {
	ID            int   `xml:"id,attr"`
	W             int64 `xml:"w,attr"`
	S             int64 `xml:"s,attr"`
	MemoryBytes   int64 `xml:"memoryBytes,attr,omitempty"`
	NIInBw        int64 `xml:"niInBw,attr,omitempty"`
	NIOutBw       int64 `xml:"niOutBw,attr,omitempty"`
	SlotTableSize int64 `xml:"slotTableSize,attr,omitempty"`
}

type xmlConnection struct {
	From int `xml:"from,attr"`
	To   int `xml:"to,attr"`
}

type xmlNetwork struct {
	SlotTableSize   int64 `xml:"slotTableSize,attr"`
	FlitSize        int64 `xml:"flitSize,attr"`
	HeaderSize      int64 `xml:"headerSize,attr"`
	ReconfigLatency int64 `xml:"reconfigLatency,attr"`
}

package noc

import "github.com/google/uuid"

// NodeID names a router in the interconnect graph.
type NodeID int

// LinkID names a directed link in the interconnect graph.
type LinkID int

// Message is one communication to schedule: a fixed amount of data from
// src to dst, requested no earlier than StartTime, nominally lasting
// Duration time units, tagged with the stream it belongs to. Schedule does
// not read the stream tag: each message's route is chosen on its own.
type Message struct {
	ID        uuid.UUID
	Src, Dst  NodeID
	Size      int64
	StartTime int64
	Duration  int64
	StreamID  string
}

// slot is one reservation unit inside a link's slot table.
type slot struct {
	owner      *SchedulingEntity
	frozen     bool
	preference int
}

// Link is a directed edge of the interconnect graph with a slot table of
// size T, repeated identically every rotation: N names the number of
// distinct tables the spec's slot-table period P = N*T allows for, but
// this package schedules only within one such table (N > 1 is accepted
// and carried for fidelity with graphio's platform description, and
// documented in DESIGN.md as an unscheduled dimension).
type Link struct {
	ID       LinkID
	From, To NodeID
	T        int64
	N        int
	slots    []slot // length T
}

func newLink(id LinkID, from, to NodeID, t int64, n int) *Link {
	if n <= 0 {
		n = 1
	}
	return &Link{ID: id, From: from, To: to, T: t, N: n, slots: make([]slot, t)}
}

// wrap reduces i into [0, T).
func (l *Link) wrap(i int64) int64 {
	m := i % l.T
	if m < 0 {
		m += l.T
	}
	return m
}

// InterconnectGraph is the platform's network: nodes and directed,
// slot-tabled links. Read-only once built except through the
// reserve/release protocol exercised by package noc itself.
type InterconnectGraph struct {
	F int64 // flit size
	H int64 // packet header size, in flits
	R int64 // NI reconfiguration latency

	nodes map[NodeID]bool
	links []*Link
	out   map[NodeID][]*Link
}

// NewInterconnectGraph builds an empty interconnect graph with the given
// network-wide flit size, header size, and reconfiguration latency.
func NewInterconnectGraph(flitSize, headerSize, reconfigLatency int64) *InterconnectGraph {
	return &InterconnectGraph{
		F:     flitSize,
		H:     headerSize,
		R:     reconfigLatency,
		nodes: make(map[NodeID]bool),
		out:   make(map[NodeID][]*Link),
	}
}

// AddNode registers a node. Adding an already-known node is a no-op.
func (g *InterconnectGraph) AddNode(n NodeID) { g.nodes[n] = true }

// AddLink adds a directed link from -> to with a slot table of size T
// (and, optionally, N distinct tables per super-period — see Link's
// doc). Both endpoints must already be registered with AddNode.
func (g *InterconnectGraph) AddLink(from, to NodeID, slotTableSize int64, numTables int) (*Link, error) {
	if !g.nodes[from] || !g.nodes[to] {
		return nil, ErrUnknownNode
	}
	l := newLink(LinkID(len(g.links)), from, to, slotTableSize, numTables)
	g.links = append(g.links, l)
	g.out[from] = append(g.out[from], l)
	return l, nil
}

// Link returns the link with the given ID.
func (g *InterconnectGraph) Link(id LinkID) *Link { return g.links[id] }

// Route is an ordered path of links from a message's source to its
// destination.
type Route []LinkID

// resolve resolves a Route's LinkIDs against the graph.
func (g *InterconnectGraph) resolve(r Route) []*Link {
	out := make([]*Link, len(r))
	for i, id := range r {
		out[i] = g.links[id]
	}
	return out
}

// phaseBlock is one contiguous run of reserved table phases — one
// wormhole "packet" worth of slots.
type phaseBlock struct {
	start, length int64
}

// SchedulingEntity is one scheduled message: its chosen route and the
// phase blocks reserved for it on every link of that route.
type SchedulingEntity struct {
	ID        uuid.UUID
	Message   *Message
	Route     Route
	StartTime int64
	Duration  int64
	blocks    []phaseBlock
}

// newSchedulingEntity constructs an unscheduled entity for m on route r;
// Schedule (or a strategy's internal reservation call) fills in blocks.
func newSchedulingEntity(m *Message, r Route, startTime int64) *SchedulingEntity {
	return &SchedulingEntity{ID: uuid.New(), Message: m, Route: r, StartTime: startTime, Duration: m.Duration}
}

// Slots returns the reserved phase indices, flattened, in reservation
// order — the report format spec.md §6 calls "slots-as-index-list".
func (e *SchedulingEntity) Slots() []int64 {
	var out []int64
	for _, b := range e.blocks {
		for j := int64(0); j < b.length; j++ {
			out = append(out, b.start+j)
		}
	}
	return out
}

// nrReservedSlots is |slots(e)| in spec.md §4.6's severity formula.
func (e *SchedulingEntity) nrReservedSlots() int64 {
	var n int64
	for _, b := range e.blocks {
		n += b.length
	}
	return n
}

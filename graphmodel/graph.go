package graphmodel

import (
	"fmt"
	"sync"
)

// Graph is the central, arena-allocated timed dataflow graph. Actors and
// Channels are addressed by stable integer identity (their index in the
// backing slices); names exist for diagnostics only. Mutation is guarded
// by a single RWMutex — build the graph on one goroutine, then treat it
// as read-only and share it freely across concurrent analyses, mirroring
// the teacher library's locking discipline.
type Graph struct {
	mu sync.RWMutex

	actors   []*Actor
	channels []*Channel

	// OutputActor, if set, names the actor spec.md §4.1 calls A_out — the
	// one whose repetition-boundary completions drive recurrence
	// detection. Zero value means "pick automatically" (smallest entry of
	// the repetition vector, per spec.md §4.1).
	OutputActor int
	hasOutput   bool
}

// NewGraph constructs an empty Graph.
func NewGraph() *Graph {
	return &Graph{}
}

// AddActor appends a new Actor with the given name and profiles, and
// returns its stable ID. Exactly one profile must be marked Default;
// at least one profile must be given.
func (g *Graph) AddActor(name string, profiles ...Profile) (int, error) {
	if name == "" {
		return 0, ErrEmptyActorName
	}
	if len(profiles) == 0 {
		return 0, fmt.Errorf("actor %q: %w", name, ErrNoProfiles)
	}
	hasDefault := false
	for _, p := range profiles {
		if p.Default {
			hasDefault = true
			break
		}
	}
	if !hasDefault {
		return 0, fmt.Errorf("actor %q: %w", name, ErrNoDefaultProfile)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	id := len(g.actors)
	a := &Actor{ID: id, Name: name, Profiles: append([]Profile(nil), profiles...)}
	g.actors = append(g.actors, a)
	return id, nil
}

// ChannelOption configures optional Channel fields.
type ChannelOption func(*Channel)

// WithTokenSize sets the per-token size in bytes (default 0).
func WithTokenSize(bytes int64) ChannelOption {
	return func(c *Channel) { c.TokenSize = bytes }
}

// WithBufferSize bounds the channel's buffer to the given number of
// tokens. Channels default to Unbounded.
func WithBufferSize(tokens int64) ChannelOption {
	return func(c *Channel) { c.BufferSize = tokens }
}

// AddChannel creates a new Channel from an Out-port named srcPortName on
// srcActorID (rate srcRate) to an In-port named dstPortName on dstActorID
// (rate dstRate), with t0 initial tokens. Both ports are created fresh and
// appended to their owning Actor — a Port belongs to exactly one Channel.
// srcActorID == dstActorID is permitted (a self-edge).
func (g *Graph) AddChannel(
	name string,
	srcActorID int, srcPortName string, srcRate Rate,
	dstActorID int, dstPortName string, dstRate Rate,
	t0 int64,
	opts ...ChannelOption,
) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	src, err := g.actorLocked(srcActorID)
	if err != nil {
		return 0, err
	}
	dst, err := g.actorLocked(dstActorID)
	if err != nil {
		return 0, err
	}

	chID := len(g.channels)
	srcPort := &Port{ID: len(src.Ports), ActorID: srcActorID, Name: srcPortName, Dir: Out, Rate: srcRate, ChannelID: chID}
	dstPort := &Port{ID: len(dst.Ports), ActorID: dstActorID, Name: dstPortName, Dir: In, Rate: dstRate, ChannelID: chID}
	src.Ports = append(src.Ports, srcPort)
	dst.Ports = append(dst.Ports, dstPort)

	c := &Channel{
		ID:            chID,
		Name:          name,
		SrcPort:       srcPort,
		DstPort:       dstPort,
		InitialTokens: t0,
		BufferSize:    Unbounded,
	}
	for _, opt := range opts {
		opt(c)
	}
	g.channels = append(g.channels, c)
	return chID, nil
}

// SetOutputActor pins the actor spec.md §4.1 selects automatically
// otherwise. Mapping-flow callers that need a stable iteration boundary
// across re-runs (e.g. while retrying with a larger storage distribution)
// use this to avoid the automatic choice shifting between runs.
func (g *Graph) SetOutputActor(actorID int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, err := g.actorLocked(actorID); err != nil {
		return err
	}
	g.OutputActor = actorID
	g.hasOutput = true
	return nil
}

// HasExplicitOutputActor reports whether SetOutputActor was ever called.
func (g *Graph) HasExplicitOutputActor() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hasOutput
}

func (g *Graph) actorLocked(id int) (*Actor, error) {
	if id < 0 || id >= len(g.actors) {
		return nil, fmt.Errorf("actor id %d: %w", id, ErrActorNotFound)
	}
	return g.actors[id], nil
}

// Actor returns the actor with the given ID.
func (g *Graph) Actor(id int) (*Actor, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.actorLocked(id)
}

// Channel returns the channel with the given ID.
func (g *Graph) Channel(id int) (*Channel, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if id < 0 || id >= len(g.channels) {
		return nil, fmt.Errorf("channel id %d: %w", id, ErrChannelNotFound)
	}
	return g.channels[id], nil
}

// Actors returns a stable-ordered snapshot of every actor.
func (g *Graph) Actors() []*Actor {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Actor, len(g.actors))
	copy(out, g.actors)
	return out
}

// Channels returns a stable-ordered snapshot of every channel.
func (g *Graph) Channels() []*Channel {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Channel, len(g.channels))
	copy(out, g.channels)
	return out
}

// NumActors and NumChannels report graph size without copying.
func (g *Graph) NumActors() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.actors)
}

func (g *Graph) NumChannels() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.channels)
}

// InChannels returns the channels whose destination port belongs to actorID.
func (g *Graph) InChannels(actorID int) []*Channel {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []*Channel
	for _, c := range g.channels {
		if c.DstPort.ActorID == actorID {
			out = append(out, c)
		}
	}
	return out
}

// OutChannels returns the channels whose source port belongs to actorID.
func (g *Graph) OutChannels(actorID int) []*Channel {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []*Channel
	for _, c := range g.channels {
		if c.SrcPort.ActorID == actorID {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep copy of g, safe to mutate independently. Analyses
// that inject auxiliary channels (buffer's auto-concurrency self-loops)
// always clone first.
func (g *Graph) Clone() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := &Graph{OutputActor: g.OutputActor, hasOutput: g.hasOutput}
	out.actors = make([]*Actor, len(g.actors))
	for i, a := range g.actors {
		na := &Actor{ID: a.ID, Name: a.Name, Profiles: append([]Profile(nil), a.Profiles...)}
		na.Ports = make([]*Port, len(a.Ports))
		for j, p := range a.Ports {
			np := *p
			na.Ports[j] = &np
		}
		out.actors[i] = na
	}
	out.channels = make([]*Channel, len(g.channels))
	for i, c := range g.channels {
		nc := *c
		nc.SrcPort = out.actors[c.SrcPort.ActorID].Ports[c.SrcPort.ID]
		nc.DstPort = out.actors[c.DstPort.ActorID].Ports[c.DstPort.ID]
		out.channels[i] = &nc
	}
	return out
}

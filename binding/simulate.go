package binding

import (
	"fmt"
	"sort"

	"github.com/vharmon/flowsim/graphmodel"
	"github.com/vharmon/flowsim/tsim"
)

// wheelState is the mutable TDMA state of one tile: its position is
// derived from the inner simulator's absolute elapsed clock, so only the
// static-order cursor needs to be carried between steps.
type wheelState struct {
	schedulePos int
}

// Simulator drives a tsim.Simulator with every tile-bound actor's
// execution time replaced by its TDMA completion time (spec.md §4.6) and
// gated by its tile's static firing order.
type Simulator struct {
	g       *graphmodel.Graph
	tiles   map[int]Tile
	tileIDs []int // sorted, for deterministic iteration
	tileOf  map[int]int
	wheels  map[int]*wheelState
	inner   *tsim.Simulator
}

// NewSimulator builds a binding-aware simulator. tileOf maps actor ID to
// the tile ID it is bound to; actors absent from tileOf run unbound, at
// their plain execution time with no schedule gating.
func NewSimulator(g *graphmodel.Graph, tiles []Tile, tileOf map[int]int, opts ...tsim.Option) (*Simulator, error) {
	tileMap := make(map[int]Tile, len(tiles))
	boundToTile := make(map[int][]int, len(tiles))
	for _, t := range tiles {
		tileMap[t.ID] = t
	}
	for actorID, tileID := range tileOf {
		if _, ok := tileMap[tileID]; !ok {
			return nil, fmt.Errorf("actor %d: tile %d: %w", actorID, tileID, ErrUnknownTile)
		}
		boundToTile[tileID] = append(boundToTile[tileID], actorID)
	}
	for _, t := range tiles {
		bound := boundToTile[t.ID]
		if len(bound) == 0 {
			continue
		}
		if len(t.Order) == 0 {
			return nil, fmt.Errorf("tile %d: %w", t.ID, ErrEmptyOrder)
		}
		onTile := make(map[int]bool, len(bound))
		for _, a := range bound {
			onTile[a] = true
		}
		for _, a := range t.Order {
			if !onTile[a] {
				return nil, fmt.Errorf("tile %d: actor %d: %w", t.ID, a, ErrOrderReferencesUnboundActor)
			}
		}
	}

	s := &Simulator{
		g:      g,
		tiles:  tileMap,
		tileOf: tileOf,
		wheels: make(map[int]*wheelState, len(tiles)),
	}
	for _, t := range tiles {
		s.tileIDs = append(s.tileIDs, t.ID)
		s.wheels[t.ID] = &wheelState{}
	}
	sort.Ints(s.tileIDs)

	execFn := func(actorID int, phase int64, base tsim.Clock, elapsed tsim.Clock) tsim.Clock {
		tileID, ok := s.tileOf[actorID]
		if !ok {
			return base
		}
		t := s.tiles[tileID]
		tdmaPos := elapsed % t.W
		return tsim.Clock(completionTime(t, tdmaPos, base))
	}

	gateFn := func(actorID int, phase int64, elapsed tsim.Clock) bool {
		tileID, ok := s.tileOf[actorID]
		if !ok {
			return true
		}
		t := s.tiles[tileID]
		w := s.wheels[tileID]
		return t.Order[w.schedulePos%len(t.Order)] == actorID
	}

	allOpts := append([]tsim.Option{
		tsim.WithExecTimeFunc(execFn),
		tsim.WithStartGate(gateFn),
	}, opts...)
	for actorID := range tileOf {
		allOpts = append(allOpts, tsim.WithSerializedActor(actorID))
	}

	inner, err := tsim.NewSimulator(g, allOpts...)
	if err != nil {
		return nil, err
	}
	s.inner = inner
	return s, nil
}

// Step advances the inner simulator by one macro-step and then advances
// every tile whose scheduled actor just completed a firing to the next
// position in its static order.
func (s *Simulator) Step() (tsim.StepStatus, error) {
	before := s.inner.CompletedFirings()
	status, err := s.inner.Step()
	if err != nil {
		return status, err
	}
	after := s.inner.CompletedFirings()

	for _, tileID := range s.tileIDs {
		t := s.tiles[tileID]
		if len(t.Order) == 0 {
			continue
		}
		w := s.wheels[tileID]
		for {
			actorID := t.Order[w.schedulePos%len(t.Order)]
			if after[actorID] <= before[actorID] {
				break
			}
			before[actorID]++
			w.schedulePos++
		}
	}
	return status, err
}

// Run drives Step to completion and returns the same Result tsim.Run
// would, computed under TDMA-adjusted completion times and static-order
// gating.
func (s *Simulator) Run() (*tsim.Result, error) {
	for {
		status, err := s.Step()
		if err != nil {
			return nil, err
		}
		if status == tsim.StepDone {
			return s.inner.Result(), nil
		}
	}
}

// Elapsed returns the inner simulator's cumulative elapsed time.
func (s *Simulator) Elapsed() tsim.Clock { return s.inner.Elapsed() }

// FiringCounts returns, per actor, how many firings have started so far.
func (s *Simulator) FiringCounts() []int64 { return s.inner.FiringCounts() }

// CompletedFirings returns, per actor, how many firings have ended.
func (s *Simulator) CompletedFirings() []int64 { return s.inner.CompletedFirings() }

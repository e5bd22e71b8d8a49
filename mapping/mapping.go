package mapping

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vharmon/flowsim/binding"
	"github.com/vharmon/flowsim/buffer"
	"github.com/vharmon/flowsim/graphmodel"
	"github.com/vharmon/flowsim/latency"
	"github.com/vharmon/flowsim/noc"
	"github.com/vharmon/flowsim/schedule"
	"github.com/vharmon/flowsim/tsim"
)

// Run drives the mapping flow of spec.md §9 to completion over g and
// platform. It explores the buffer Pareto front once, then attempts each
// point from smallest to largest: any stage from EstimateStorageDist
// onward that reports InfeasibleConstraint sends the flow back to
// SelectStorageDist with the next, larger distribution. All other errors
// (ValidationError, NotSupported, NotStronglyConnected, and any
// structural error from BindSDFGtoTile) are fatal and returned
// immediately, matching spec.md §7.
func Run(g *graphmodel.Graph, platform Platform, opts ...Option) (*Result, error) {
	cfg := config{logger: zap.NewNop(), target: tsim.InfiniteThroughput()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(platform.Tiles) == 0 {
		return nil, graphmodel.NewTaggedError(graphmodel.KindValidation, "mapping.Run", ErrNoTiles)
	}

	runID := uuid.New()
	log := cfg.logger
	transition := func(s State) {
		log.Info("mapping: state transition", zap.String("state", s.String()), zap.String("run", runID.String()))
	}

	transition(Start)
	transition(ModelNonLocalMemory)

	transition(ComputeStorageDist)
	front, err := buffer.Explore(g, cfg.target)
	if err != nil {
		return nil, err
	}
	if len(front) == 0 {
		return nil, fmt.Errorf("mapping: buffer.Explore returned an empty Pareto front")
	}

	maxAttempts := cfg.maxAttempts
	if maxAttempts <= 0 || maxAttempts > len(front) {
		maxAttempts = len(front)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		transition(SelectStorageDist)
		chosen := front[attempt]

		transition(EstimateStorageDist)
		if err := estimateMemory(g, platform, chosen); err != nil {
			if !graphmodel.IsInfeasible(err) {
				return nil, err
			}
			lastErr = errors.Wrap(err, "EstimateStorageDist")
			log.Warn("mapping: distribution over memory budget, retrying larger", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		transition(EstimateLatencyConstraint)
		if cfg.latencyC != nil {
			res, err := latency.Analyze(g, cfg.latencyC.Src, cfg.latencyC.Dst, cfg.latencyC.Deriv)
			if err != nil {
				return nil, err
			}
			if res.Latency > cfg.latencyC.Bound {
				lastErr = errors.Wrap(graphmodel.NewTaggedError(graphmodel.KindInfeasibleConstraint,
					"mapping.EstimateLatencyConstraint",
					fmt.Errorf("latency %d exceeds bound %d", res.Latency, cfg.latencyC.Bound)), "EstimateLatencyConstraint")
				continue
			}
		}

		transition(EstimateBandwidthConstraint)
		if err := estimateBandwidth(platform); err != nil {
			lastErr = errors.Wrap(err, "EstimateBandwidthConstraint")
			continue
		}

		transition(BindSDFGtoTile)
		tileOf, err := bindActorsToTiles(g, platform, cfg.actorTile)
		if err != nil {
			return nil, err
		}

		transition(StaticOrderScheduleTiles)
		sched, err := schedule.Derive(g)
		if err != nil {
			if !graphmodel.IsInfeasible(err) {
				return nil, err
			}
			lastErr = errors.Wrap(err, "StaticOrderScheduleTiles")
			continue
		}
		tiles := buildTileOrders(platform, tileOf, sched)

		transition(AllocateTDMAtimeSlices)
		bsim, err := binding.NewSimulator(g, tiles, tileOf)
		if err != nil {
			return nil, err
		}
		bres, err := bsim.Run()
		if err != nil {
			return nil, err
		}
		if bres.Kind == tsim.ResultDeadlock {
			lastErr = errors.Wrap(graphmodel.NewTaggedError(graphmodel.KindInfeasibleConstraint,
				"mapping.AllocateTDMAtimeSlices", fmt.Errorf("binding-aware schedule deadlocks")), "AllocateTDMAtimeSlices")
			continue
		}

		transition(OptimizeStorageSpaceAllocations)
		mem := finalizeMemory(g, platform, chosen, tileOf)

		var nocResult *noc.Result
		if platform.hasNetwork() {
			transition(ExtractCommunicationConstraints)
			messages, ig := extractMessages(g, platform, tileOf)

			if len(messages) > 0 {
				transition(ScheduleCommunication)
				r, err := noc.Schedule(noc.Problem{
					Graph:     ig,
					Messages:  messages,
					Strategy:  noc.StrategyRipUp,
					MaxDetour: 2,
				})
				if err != nil {
					return nil, err
				}
				if len(r.Unscheduled) > 0 {
					lastErr = errors.Wrap(graphmodel.NewTaggedError(graphmodel.KindInfeasibleConstraint,
						"mapping.ScheduleCommunication",
						fmt.Errorf("%d of %d messages could not be scheduled", len(r.Unscheduled), len(messages))),
						"ScheduleCommunication")
					continue
				}
				transition(UpdateBandwidthAllocations)
				nocResult = r
			}
		}

		transition(Completed)
		return &Result{
			RunID:      runID,
			State:      Completed,
			Attempts:   attempt + 1,
			Chosen:     chosen,
			Throughput: bres.Throughput,
			Memory:     mem,
			Binding:    BindingReport{TileOf: tileOf, Tiles: tiles},
			Schedule:   sched,
			NoC:        nocResult,
		}, nil
	}

	transition(Failed)
	if lastErr == nil {
		lastErr = ErrAttemptsExhausted
	}
	return &Result{RunID: runID, State: Failed, Attempts: maxAttempts}, errors.Wrap(lastErr, "mapping.Run")
}

// estimateMemory is a coarse, pre-binding feasibility check: the total
// byte demand of the chosen distribution's first representative may not
// exceed the platform's total memory budget. The precise per-tile
// accounting happens after BindSDFGtoTile, in finalizeMemory.
func estimateMemory(g *graphmodel.Graph, platform Platform, chosen *buffer.DistributionSet) error {
	if len(chosen.Distributions) == 0 {
		return fmt.Errorf("mapping: distribution set has no distributions")
	}
	d := chosen.Distributions[0]
	channels := g.Channels()

	var demand int64
	for j, c := range channels {
		if j >= len(d.Sp) {
			break
		}
		demand += c.TokenSize * d.Sp[j]
	}
	var budget int64
	for _, t := range platform.Tiles {
		budget += t.MemoryBytes
	}
	if budget > 0 && demand > budget {
		return graphmodel.NewTaggedError(graphmodel.KindInfeasibleConstraint, "mapping.estimateMemory",
			fmt.Errorf("%w: demand %d bytes exceeds platform budget %d bytes", ErrMemoryBudgetExceeded, demand, budget))
	}
	return nil
}

// estimateBandwidth is a coarse, pre-binding check that the platform's
// aggregate network-interface bandwidth is nonzero whenever a network is
// declared — a more exact per-tile figure needs the binding that has not
// happened yet, and is not re-derived here since UpdateBandwidthAllocations
// is where the NoC schedule's actual reservations are known.
func estimateBandwidth(platform Platform) error {
	if !platform.hasNetwork() {
		return nil
	}
	var total int64
	for _, t := range platform.Tiles {
		total += t.NIOutBw
	}
	if total <= 0 {
		return graphmodel.NewTaggedError(graphmodel.KindInfeasibleConstraint, "mapping.estimateBandwidth",
			fmt.Errorf("%w: platform declares a network but no tile has outbound bandwidth", ErrBandwidthBudgetExceeded))
	}
	return nil
}

// bindActorsToTiles assigns every actor a tile: explicit, if given, else a
// round-robin placement across platform.Tiles in actor-ID order.
func bindActorsToTiles(g *graphmodel.Graph, platform Platform, explicit map[int]int) (map[int]int, error) {
	if explicit != nil {
		tileOf := make(map[int]int, len(explicit))
		for a, tID := range explicit {
			if _, ok := platform.tile(tID); !ok {
				return nil, graphmodel.NewTaggedError(graphmodel.KindValidation, "mapping.bindActorsToTiles",
					fmt.Errorf("actor %d: tile %d is not in the platform", a, tID))
			}
			tileOf[a] = tID
		}
		return tileOf, nil
	}

	actors := g.Actors()
	tileOf := make(map[int]int, len(actors))
	for i, a := range actors {
		tileOf[a.ID] = platform.Tiles[i%len(platform.Tiles)].ID
	}
	return tileOf, nil
}

// buildTileOrders derives each tile's static firing order from one period
// of sched: every actor bound to the tile contributes its per-period
// start times, and the tile fires them in increasing start-time order.
func buildTileOrders(platform Platform, tileOf map[int]int, sched *schedule.Schedule) []binding.Tile {
	type slot struct {
		t     tsim.Clock
		actor int
	}
	byTile := make(map[int][]slot)
	for actor, tileID := range tileOf {
		if actor >= len(sched.StartTime) {
			continue
		}
		for _, t := range sched.StartTime[actor] {
			byTile[tileID] = append(byTile[tileID], slot{t: t, actor: actor})
		}
	}

	tiles := make([]binding.Tile, 0, len(platform.Tiles))
	for _, spec := range platform.Tiles {
		slots := byTile[spec.ID]
		sort.SliceStable(slots, func(i, j int) bool { return slots[i].t < slots[j].t })
		var order []int
		for _, s := range slots {
			order = append(order, s.actor)
		}
		tiles = append(tiles, binding.Tile{ID: spec.ID, W: spec.W, S: spec.S, Order: order})
	}
	return tiles
}

// finalizeMemory computes the precise per-tile byte accounting once
// BindSDFGtoTile has assigned every actor a tile: a channel's storage
// contributes to whichever tile its source actor runs on.
func finalizeMemory(g *graphmodel.Graph, platform Platform, chosen *buffer.DistributionSet, tileOf map[int]int) MemoryReport {
	used := make(map[int]int64, len(platform.Tiles))
	budget := make(map[int]int64, len(platform.Tiles))
	for _, t := range platform.Tiles {
		budget[t.ID] = t.MemoryBytes
	}

	if len(chosen.Distributions) > 0 {
		d := chosen.Distributions[0]
		for j, c := range g.Channels() {
			if j >= len(d.Sp) {
				break
			}
			tileID, ok := tileOf[c.SrcPort.ActorID]
			if !ok {
				continue
			}
			used[tileID] += c.TokenSize * d.Sp[j]
		}
	}

	var over []int
	for id, b := range budget {
		if b > 0 && used[id] > b {
			over = append(over, id)
		}
	}
	sort.Ints(over)
	return MemoryReport{UsedBytes: used, BudgetBytes: budget, OverBudget: over}
}

// extractMessages builds one noc.Message per channel whose endpoints bind
// to different tiles, and the interconnect graph those messages route
// over.
func extractMessages(g *graphmodel.Graph, platform Platform, tileOf map[int]int) ([]*noc.Message, *noc.InterconnectGraph) {
	ig := noc.NewInterconnectGraph(platform.Network.FlitSize, platform.Network.HeaderSize, platform.Network.ReconfigLatency)
	for _, t := range platform.Tiles {
		ig.AddNode(noc.NodeID(t.ID))
	}
	for _, conn := range platform.Connections {
		_, _ = ig.AddLink(noc.NodeID(conn.From), noc.NodeID(conn.To), platform.Network.SlotTableSize, 1)
	}

	var messages []*noc.Message
	for _, c := range g.Channels() {
		srcTile, ok1 := tileOf[c.SrcPort.ActorID]
		dstTile, ok2 := tileOf[c.DstPort.ActorID]
		if !ok1 || !ok2 || srcTile == dstTile {
			continue
		}
		size := c.TokenSize
		if size <= 0 {
			size = 1
		}
		messages = append(messages, &noc.Message{
			ID:       uuid.New(),
			Src:      noc.NodeID(srcTile),
			Dst:      noc.NodeID(dstTile),
			Size:     size,
			Duration: 1,
			StreamID: c.Name,
		})
	}
	return messages, ig
}

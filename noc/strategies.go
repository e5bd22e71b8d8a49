package noc

import (
	"math/rand"
	"sort"
)

// Strategy selects which of spec.md §4.6's five scheduling heuristics
// Schedule uses.
type Strategy int

const (
	// StrategyGreedy tries messages in decreasing size order, taking the
	// first route (by hop count) and the fewest packets that fit.
	StrategyGreedy Strategy = iota
	// StrategyClassic schedules exactly as StrategyGreedy does: same
	// message order, same route list, same packet search.
	StrategyClassic
	// StrategyKnowledge orders a message's candidate routes by current
	// link congestion (summed slot preference) instead of hop count.
	StrategyKnowledge
	// StrategyRandom processes messages in a seeded-random order so
	// repeated runs over the same Problem.Seed are reproducible.
	StrategyRandom
	// StrategyRipUp additionally releases the most severely conflicting
	// already-scheduled entity when a message cannot otherwise be placed,
	// and retries, up to Problem.MaxRipups times per message.
	StrategyRipUp
)

// Problem is one NoC scheduling request.
type Problem struct {
	Graph                *InterconnectGraph
	Messages             []*Message
	Strategy             Strategy
	MaxDetour            int
	MaxRoutesPerMessage  int
	MaxPacketsPerMessage int64
	Seed                 int64
	MaxRipups            int
}

// Result is the outcome of a Schedule run.
type Result struct {
	Entities    []*SchedulingEntity
	Unscheduled []*Message
}

// Schedule places every message in p.Messages onto p.Graph according to
// p.Strategy, returning the scheduling entities it managed to place and
// the messages it could not. Schedule never returns a partial entity: a
// message is either fully reserved on a complete route or left
// unscheduled.
func Schedule(p Problem) (*Result, error) {
	if p.MaxRoutesPerMessage <= 0 {
		p.MaxRoutesPerMessage = 8
	}
	if p.MaxPacketsPerMessage <= 0 {
		p.MaxPacketsPerMessage = 8
	}
	if p.MaxRipups <= 0 {
		p.MaxRipups = len(p.Messages)
	}

	order := orderMessages(p)
	placed := make(map[*Message]*SchedulingEntity, len(p.Messages))
	bumped := make(map[*Message]bool, len(p.Messages))

	for _, m := range order {
		e, err := scheduleOne(p, m)
		if err == nil {
			placed[m] = e
			continue
		}
		if p.Strategy == StrategyRipUp {
			if e, ok := scheduleWithRipUp(p, m, placed, bumped); ok {
				placed[m] = e
				continue
			}
		}
		bumped[m] = true
	}

	res := &Result{}
	for _, m := range p.Messages {
		if e, ok := placed[m]; ok && !bumped[m] {
			res.Entities = append(res.Entities, e)
		} else {
			res.Unscheduled = append(res.Unscheduled, m)
		}
	}
	return res, nil
}

func orderMessages(p Problem) []*Message {
	out := append([]*Message(nil), p.Messages...)
	switch p.Strategy {
	case StrategyRandom:
		rnd := rand.New(rand.NewSource(p.Seed))
		rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Size > out[j].Size })
	}
	return out
}

// scheduleOne tries, in order, every candidate route (ranked per
// p.Strategy) and every packet count from 1 up to
// p.MaxPacketsPerMessage, committing the first combination that fits.
func scheduleOne(p Problem, m *Message) (*SchedulingEntity, error) {
	routes, err := p.Graph.Routes(m.Src, m.Dst, p.MaxDetour, p.MaxRoutesPerMessage)
	if err != nil {
		return nil, err
	}
	routes = rankRoutes(p, routes)

	for _, r := range routes {
		links := p.Graph.resolve(r)
		for n := int64(1); n <= p.MaxPacketsPerMessage; n++ {
			length := ceilDiv(nrSlotsRequired(m.Size, n, p.Graph.H, p.Graph.F), n)
			if length <= 0 {
				length = 1
			}
			starts, ok := findPacketBlocks(links, n, length)
			if !ok {
				continue
			}
			e := newSchedulingEntity(m, r, m.StartTime)
			for _, s := range starts {
				reserveBlock(links, s, length, e)
			}
			return e, nil
		}
	}
	return nil, ErrNoSlots
}

// rankRoutes reorders routes returned by InterconnectGraph.Routes (which
// are already hop-count ascending) for strategies with a different
// preference: Knowledge favours the least-congested route over the
// shortest one.
func rankRoutes(p Problem, routes []Route) []Route {
	if p.Strategy != StrategyKnowledge {
		return routes
	}
	out := append([]Route(nil), routes...)
	congestion := make(map[int]int, len(out))
	for i, r := range out {
		links := p.Graph.resolve(r)
		sum := 0
		for _, l := range links {
			for s := int64(0); s < l.T; s++ {
				sum += l.slots[s].preference
			}
		}
		congestion[i] = sum
	}
	sort.SliceStable(out, func(i, j int) bool { return congestion[i] < congestion[j] })
	return out
}

// findPacketBlocks finds nPackets distinct (non-overlapping) free blocks
// of length slots common to every link in links, in one pass, without
// mutating link state — the caller commits them with reserveBlock only
// once every packet has a placement.
func findPacketBlocks(links []*Link, nPackets, length int64) ([]int64, bool) {
	used := make(map[LinkID]map[int64]bool, len(links))
	starts := make([]int64, 0, nPackets)
	for i := int64(0); i < nPackets; i++ {
		start, ok := bestBlockOverlay(links, length, used)
		if !ok {
			return nil, false
		}
		starts = append(starts, start)
		for _, l := range links {
			if used[l.ID] == nil {
				used[l.ID] = make(map[int64]bool)
			}
			for k := int64(0); k < length; k++ {
				used[l.ID][l.wrap(start+k)] = true
			}
		}
	}
	return starts, true
}

func bestBlockOverlay(links []*Link, length int64, used map[LinkID]map[int64]bool) (int64, bool) {
	if len(links) == 0 || length <= 0 {
		return 0, false
	}
	T := links[0].T
	found := false
	bestPref, bestStart := -1, int64(0)
	for p := int64(0); p < T; p++ {
		ok := true
		for _, l := range links {
			if l.T != T {
				ok = false
				break
			}
			for k := int64(0); k < length; k++ {
				idx := l.wrap(p + k)
				if used[l.ID] != nil && used[l.ID][idx] {
					ok = false
					break
				}
				s := l.slots[idx]
				if s.owner != nil || s.frozen {
					ok = false
					break
				}
			}
			if !ok {
				break
			}
		}
		if !ok {
			continue
		}
		pref := 0
		for _, l := range links {
			pref += l.preferenceSum(p, length)
		}
		if !found || pref < bestPref || (pref == bestPref && p < bestStart) {
			found, bestPref, bestStart = true, pref, p
		}
	}
	return bestStart, found
}

// scheduleWithRipUp retries m after releasing the most severely
// conflicting already-placed entity on m's shortest route, up to
// p.MaxRipups times. A released message is marked bumped and is not tried
// again, so Schedule's final pass reports it as unscheduled.
func scheduleWithRipUp(p Problem, m *Message, placed map[*Message]*SchedulingEntity, bumped map[*Message]bool) (*SchedulingEntity, bool) {
	routes, err := p.Graph.Routes(m.Src, m.Dst, p.MaxDetour, p.MaxRoutesPerMessage)
	if err != nil || len(routes) == 0 {
		return nil, false
	}
	r := routes[0]
	links := p.Graph.resolve(r)

	for attempt := 0; attempt < p.MaxRipups; attempt++ {
		if e, err := scheduleOne(p, m); err == nil {
			return e, true
		}
		length := ceilDiv(nrSlotsRequired(m.Size, 1, p.Graph.H, p.Graph.F), 1)
		blocking := blockingEntities(links, 0, minInt64(length, links[0].T))
		if len(blocking) == 0 {
			return nil, false
		}
		worst := blocking[0]
		worstScore := severity(worst, r)
		for _, b := range blocking[1:] {
			if s := severity(b, r); s > worstScore {
				worst, worstScore = b, s
			}
		}
		if worst.Message != nil {
			delete(placed, worst.Message)
			bumped[worst.Message] = true
		}
		if err := p.Graph.Release(worst); err != nil {
			return nil, false
		}
	}
	return nil, false
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

package noc

// nrSlotsRequired is spec.md §4.6's packetization formula: the number of
// slot-table entries needed to move size flits of payload split into
// nPackets packets, each carrying an H-flit header, across a link that
// moves F flits per slot.
func nrSlotsRequired(size, nPackets, header, flitsPerSlot int64) int64 {
	if flitsPerSlot <= 0 {
		flitsPerSlot = 1
	}
	total := header*nPackets + size
	return ceilDiv(total, flitsPerSlot)
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// freeRun reports whether the length slots starting at start (mod T) on
// l are all unowned and unfrozen.
func (l *Link) freeRun(start, length int64) bool {
	if length > l.T {
		return false
	}
	for i := int64(0); i < length; i++ {
		s := l.slots[l.wrap(start+i)]
		if s.owner != nil || s.frozen {
			return false
		}
	}
	return true
}

// preferenceSum adds up the preference counters of the length slots
// starting at start (mod T) — used to rank otherwise-equal candidate
// placements, lower is less contended.
func (l *Link) preferenceSum(start, length int64) int {
	sum := 0
	for i := int64(0); i < length; i++ {
		sum += l.slots[l.wrap(start+i)].preference
	}
	return sum
}

// bestBlock scans every candidate start phase and returns the lowest-
// preference-sum free run of the given length common to every link in
// links, or ok=false if none exists.
func bestBlock(links []*Link, length int64) (start int64, ok bool) {
	if len(links) == 0 || length <= 0 {
		return 0, false
	}
	T := links[0].T
	bestPref := -1
	bestStart := int64(0)
	found := false
	for p := int64(0); p < T; p++ {
		allFree := true
		for _, l := range links {
			if l.T != T || !l.freeRun(p, length) {
				allFree = false
				break
			}
		}
		if !allFree {
			continue
		}
		pref := 0
		for _, l := range links {
			pref += l.preferenceSum(p, length)
		}
		if !found || pref < bestPref || (pref == bestPref && p < bestStart) {
			found = true
			bestPref = pref
			bestStart = p
		}
	}
	return bestStart, found
}

// reserveBlock marks [start, start+length) on every link as owned by e,
// raising each slot's preference counter, and records the block on e.
func reserveBlock(links []*Link, start, length int64, e *SchedulingEntity) {
	for _, l := range links {
		for i := int64(0); i < length; i++ {
			idx := l.wrap(start + i)
			l.slots[idx].owner = e
			l.slots[idx].preference++
		}
	}
	e.blocks = append(e.blocks, phaseBlock{start: start, length: length})
}

// Release frees every slot e reserved on route, lowering each slot's
// preference counter back down (never below zero). Release is the exact
// inverse of the reservations that built e.blocks: the link state after
// Release equals the state immediately before the corresponding reserve.
func (g *InterconnectGraph) Release(e *SchedulingEntity) error {
	links := g.resolve(e.Route)
	for _, b := range e.blocks {
		for _, l := range links {
			for i := int64(0); i < b.length; i++ {
				idx := l.wrap(b.start + i)
				s := &l.slots[idx]
				if s.owner != e {
					return ErrNotOwner
				}
				s.owner = nil
				if s.preference > 0 {
					s.preference--
				}
			}
		}
	}
	e.blocks = nil
	return nil
}

// sharedLinks counts how many of r's links also appear in e's route.
func sharedLinks(e *SchedulingEntity, r Route) int {
	want := make(map[LinkID]bool, len(r))
	for _, id := range r {
		want[id] = true
	}
	seen := make(map[LinkID]bool, len(e.Route))
	shared := 0
	for _, id := range e.Route {
		if want[id] && !seen[id] {
			seen[id] = true
			shared++
		}
	}
	return shared
}

// severity scores how disruptive ripping up e would be to free room for a
// new entity wanting route r: spec.md §4.6's
// |slots(e)| * |links(e) ∩ links(r)|.
func severity(e *SchedulingEntity, r Route) int64 {
	return e.nrReservedSlots() * int64(sharedLinks(e, r))
}

// blockingEntities returns the distinct scheduling entities occupying any
// slot in [start, start+length) on any link in links.
func blockingEntities(links []*Link, start, length int64) []*SchedulingEntity {
	seen := make(map[*SchedulingEntity]bool)
	var out []*SchedulingEntity
	for _, l := range links {
		for i := int64(0); i < length; i++ {
			owner := l.slots[l.wrap(start+i)].owner
			if owner != nil && !seen[owner] {
				seen[owner] = true
				out = append(out, owner)
			}
		}
	}
	return out
}

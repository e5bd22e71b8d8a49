package noc

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// chainGraph builds 0 -> 1 -> 2 -> 3 plus a direct 1 -> 3 shortcut, so the
// shortest route from 0 to 3 has 2 hops (0->1->3) and a 1-hop-longer
// detour route exists (0->1->2->3).
func chainGraph(t *testing.T, slotTableSize int64) *InterconnectGraph {
	t.Helper()
	g := NewInterconnectGraph(1, 0, 0)
	for n := NodeID(0); n <= 3; n++ {
		g.AddNode(n)
	}
	_, err := g.AddLink(0, 1, slotTableSize, 1)
	require.NoError(t, err)
	_, err = g.AddLink(1, 2, slotTableSize, 1)
	require.NoError(t, err)
	_, err = g.AddLink(2, 3, slotTableSize, 1)
	require.NoError(t, err)
	_, err = g.AddLink(1, 3, slotTableSize, 1)
	require.NoError(t, err)
	return g
}

func TestShortestHopLen(t *testing.T) {
	g := chainGraph(t, 8)
	require.Equal(t, 2, g.ShortestHopLen(0, 3))
	require.Equal(t, 0, g.ShortestHopLen(2, 2))
	require.Equal(t, -1, g.ShortestHopLen(3, 0))
}

func TestRoutes_RespectsDetourBudget(t *testing.T) {
	g := chainGraph(t, 8)

	shortestOnly, err := g.Routes(0, 3, 0, 10)
	require.NoError(t, err)
	for _, r := range shortestOnly {
		require.Len(t, r, 2)
	}

	withDetour, err := g.Routes(0, 3, 1, 10)
	require.NoError(t, err)
	var sawLen3 bool
	for _, r := range withDetour {
		require.LessOrEqual(t, len(r), 3)
		if len(r) == 3 {
			sawLen3 = true
		}
	}
	require.True(t, sawLen3, "widening the detour budget should surface the 3-hop route")
}

func TestRoutes_UnknownNode(t *testing.T) {
	g := chainGraph(t, 8)
	_, err := g.Routes(0, NodeID(99), 0, 10)
	require.ErrorIs(t, err, ErrUnknownNode)
}

func TestReserveRelease_IsExactInverse(t *testing.T) {
	g := chainGraph(t, 8)
	links := []*Link{g.Link(0), g.Link(1)}

	snapshotBefore := snapshotSlots(links)

	e := &SchedulingEntity{ID: uuid.New(), Route: Route{0, 1}}
	reserveBlock(links, 2, 3, e)

	require.NotEqual(t, snapshotBefore, snapshotSlots(links))

	require.NoError(t, g.Release(e))
	require.Equal(t, snapshotBefore, snapshotSlots(links))
	require.Empty(t, e.blocks)
}

func snapshotSlots(links []*Link) []slot {
	var out []slot
	for _, l := range links {
		out = append(out, l.slots...)
	}
	return out
}

func TestRelease_RejectsNonOwner(t *testing.T) {
	g := chainGraph(t, 8)
	links := []*Link{g.Link(0)}
	owner := &SchedulingEntity{ID: uuid.New(), Route: Route{0}}
	other := &SchedulingEntity{ID: uuid.New(), Route: Route{0}}
	reserveBlock(links, 0, 2, owner)
	other.blocks = append(other.blocks, phaseBlock{start: 0, length: 2})

	err := g.Release(other)
	require.ErrorIs(t, err, ErrNotOwner)
}

func TestSchedule_GreedyPlacesDisjointMessages(t *testing.T) {
	g := chainGraph(t, 8)
	msgs := []*Message{
		{ID: uuid.New(), Src: 0, Dst: 3, Size: 2},
		{ID: uuid.New(), Src: 2, Dst: 3, Size: 2},
	}
	res, err := Schedule(Problem{Graph: g, Messages: msgs, Strategy: StrategyGreedy, MaxDetour: 1})
	require.NoError(t, err)
	require.Empty(t, res.Unscheduled)
	require.Len(t, res.Entities, 2)
}

func TestSchedule_RipUpReclaimsContestedSlots(t *testing.T) {
	g := chainGraph(t, 2) // a tiny slot table forces contention on link 0->1
	blocker := &Message{ID: uuid.New(), Src: 0, Dst: 1, Size: 2}
	contender := &Message{ID: uuid.New(), Src: 0, Dst: 1, Size: 2}

	greedy, err := Schedule(Problem{
		Graph:     g,
		Messages:  []*Message{blocker, contender},
		Strategy:  StrategyGreedy,
		MaxDetour: 0,
	})
	require.NoError(t, err)
	require.Len(t, greedy.Unscheduled, 1, "a 2-slot table can only carry one of these messages at once")

	// Reset the link so the rip-up run starts from a clean slate.
	g2 := chainGraph(t, 2)
	ripped, err := Schedule(Problem{
		Graph:     g2,
		Messages:  []*Message{blocker, contender},
		Strategy:  StrategyRipUp,
		MaxDetour: 0,
		MaxRipups: 4,
	})
	require.NoError(t, err)
	require.Len(t, ripped.Entities, 1, "rip-up still can't fit both messages in 2 slots, but must leave one fully scheduled")
}

func TestSeverity_ScoresSharedLinksAndSlotCount(t *testing.T) {
	g := chainGraph(t, 8)
	e := &SchedulingEntity{ID: uuid.New(), Route: Route{0, 1}}
	links := []*Link{g.Link(0), g.Link(1)}
	reserveBlock(links, 0, 3, e)

	require.Equal(t, int64(6), severity(e, Route{0, 1})) // 3 slots * 2 shared links
	require.Equal(t, int64(3), severity(e, Route{0}))    // 3 slots * 1 shared link
	require.Equal(t, int64(0), severity(e, Route{2}))    // no shared link
}

func TestNrSlotsRequired(t *testing.T) {
	require.Equal(t, int64(3), nrSlotsRequired(5, 1, 1, 2)) // ceil((1*1+5)/2) = 3
	require.Equal(t, int64(4), nrSlotsRequired(5, 2, 1, 2)) // ceil((1*2+5)/2) = 4
}

package noc

import "container/heap"

// ShortestHopLen returns the minimum number of links on any path from src
// to dst, or -1 if dst is unreachable from src. Used as the baseline a
// route's detour is measured against.
func (g *InterconnectGraph) ShortestHopLen(src, dst NodeID) int {
	if !g.nodes[src] || !g.nodes[dst] {
		return -1
	}
	if src == dst {
		return 0
	}

	dist := map[NodeID]int{src: 0}
	queue := []NodeID{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, l := range g.out[u] {
			if _, seen := dist[l.To]; seen {
				continue
			}
			dist[l.To] = dist[u] + 1
			if l.To == dst {
				return dist[l.To]
			}
			queue = append(queue, l.To)
		}
	}
	return -1
}

// routeItem is one partially-built path explored by Routes, ordered by
// hop count in the search priority queue so shorter candidates surface
// first.
type routeItem struct {
	node  NodeID
	path  Route
	visit map[NodeID]bool
	hops  int
}

type routePQ []*routeItem

func (pq routePQ) Len() int            { return len(pq) }
func (pq routePQ) Less(i, j int) bool  { return pq[i].hops < pq[j].hops }
func (pq routePQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *routePQ) Push(x interface{}) { *pq = append(*pq, x.(*routeItem)) }
func (pq *routePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// Routes enumerates simple (no repeated node) paths from src to dst whose
// hop count does not exceed the shortest possible hop count plus
// maxDetour, in order of increasing hop count. It returns ErrNoRoute if
// src and dst are not connected within that budget, and ErrUnknownNode if
// either endpoint is absent from the graph.
//
// The search is a lazily-expanded best-first traversal (grounded on
// dijkstra's heap-ordered relaxation loop, adapted here to enumerate
// every route within budget instead of stopping at the first optimum)
// bounded by maxRoutes so a densely-connected platform cannot make a
// single Routes call unbounded.
func (g *InterconnectGraph) Routes(src, dst NodeID, maxDetour, maxRoutes int) ([]Route, error) {
	if !g.nodes[src] || !g.nodes[dst] {
		return nil, ErrUnknownNode
	}
	shortest := g.ShortestHopLen(src, dst)
	if shortest < 0 {
		return nil, ErrNoRoute
	}
	budget := shortest + maxDetour

	pq := &routePQ{{node: src, path: nil, visit: map[NodeID]bool{src: true}, hops: 0}}
	heap.Init(pq)

	var found []Route
	for pq.Len() > 0 && len(found) < maxRoutes {
		item := heap.Pop(pq).(*routeItem)
		if item.hops > budget {
			continue
		}
		if item.node == dst {
			found = append(found, item.path)
			continue
		}
		for _, l := range g.out[item.node] {
			if item.visit[l.To] {
				continue
			}
			nextVisit := make(map[NodeID]bool, len(item.visit)+1)
			for k := range item.visit {
				nextVisit[k] = true
			}
			nextVisit[l.To] = true
			nextPath := append(append(Route(nil), item.path...), l.ID)
			heap.Push(pq, &routeItem{node: l.To, path: nextPath, visit: nextVisit, hops: item.hops + 1})
		}
	}
	if len(found) == 0 {
		return nil, ErrNoRoute
	}
	return found, nil
}

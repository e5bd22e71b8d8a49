package buffer

import (
	"sort"

	"github.com/vharmon/flowsim/deps"
	"github.com/vharmon/flowsim/graphmodel"
	"github.com/vharmon/flowsim/tsim"
)

// pendingSet accumulates distributions awaiting exploration at one size,
// deduplicated by full sp[] equality (spec.md §4.2).
type pendingSet struct {
	sz            int64
	distributions []*Distribution
}

// Explorer drives the buffer/throughput Pareto-front search of spec.md
// §4.2. Construct with NewExplorer, then call FindNextStorageDistributionSet
// repeatedly (step-by-step mode) or Explore for the common case of
// searching to a throughput bound.
type Explorer struct {
	g    *graphmodel.Graph
	cfg  config
	lb   []int64
	step []int64

	injected []int // channel IDs of auto-concurrency self-loops, if any

	pending map[int64]*pendingSet
	hasPrev bool
	prevThr tsim.Throughput
	done    bool
}

// NewExplorer builds an Explorer over g, converting it to SDF first (the
// buffer analyser, like the original tool it is grounded on, reasons over
// constant per-firing rates).
func NewExplorer(g *graphmodel.Graph, opts ...Option) (*Explorer, error) {
	sdf, err := graphmodel.ToSDF(g)
	if err != nil {
		return nil, err
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	var injected []int
	if cfg.autoConcurrency {
		for _, a := range sdf.Actors() {
			id, err := sdf.AddChannel(a.Name+"/autoconc",
				a.ID, "autoconc-out", graphmodel.SDFRate(1),
				a.ID, "autoconc-in", graphmodel.SDFRate(1),
				1)
			if err != nil {
				return nil, err
			}
			injected = append(injected, id)
		}
	}

	lb, step, err := lowerBounds(sdf)
	if err != nil {
		return nil, err
	}

	e := &Explorer{g: sdf, cfg: cfg, lb: lb, step: step, injected: injected, pending: make(map[int64]*pendingSet)}
	sz := int64(0)
	for _, v := range lb {
		sz += v
	}
	e.pending[sz] = &pendingSet{sz: sz, distributions: []*Distribution{{Sp: cloneInt64(lb)}}}
	return e, nil
}

func (e *Explorer) discount(sz int64) int64 {
	if len(e.injected) == 0 {
		return sz
	}
	return sz - int64(2*len(e.injected))
}

func (e *Explorer) smallestPendingSize() (int64, bool) {
	if len(e.pending) == 0 {
		return 0, false
	}
	keys := make([]int64, 0, len(e.pending))
	for k := range e.pending {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys[0], true
}

// FindNextStorageDistributionSet advances the exploration to the next
// Pareto-front point and returns it, or (nil, nil) when the pending
// frontier is exhausted without producing one (the search space is fully
// explored).
func (e *Explorer) FindNextStorageDistributionSet() (*DistributionSet, error) {
	for {
		if e.done {
			return nil, nil
		}
		sz, ok := e.smallestPendingSize()
		if !ok {
			e.done = true
			return nil, nil
		}
		set := e.pending[sz]
		delete(e.pending, sz)

		var setThr tsim.Throughput
		haveThr := false
		for _, d := range set.distributions {
			if err := e.simulate(d); err != nil {
				return nil, err
			}
			if !haveThr || tsim.Compare(d.Thr, setThr) > 0 {
				setThr = d.Thr
				haveThr = true
			}
		}

		// Minimise: drop distributions below the set's throughput.
		kept := set.distributions[:0]
		for _, d := range set.distributions {
			if tsim.Compare(d.Thr, setThr) == 0 {
				kept = append(kept, d)
			}
		}
		set.distributions = kept

		// Expand every surviving distribution along its dependent channels.
		for _, d := range set.distributions {
			for j, dep := range d.Dep {
				if !dep || e.isSelfEdge(j) {
					continue
				}
				child := cloneInt64(d.Sp)
				child[j] += e.step[j]
				childSz := sz + e.step[j]
				e.insertPending(childSz, child)
			}
		}

		nonPareto := e.hasPrev && tsim.Compare(setThr, e.prevThr) == 0
		e.hasPrev = true
		e.prevThr = setThr
		if nonPareto {
			continue
		}

		return &DistributionSet{Size: e.discount(sz), Throughput: setThr, Distributions: set.distributions}, nil
	}
}

func (e *Explorer) insertPending(sz int64, sp []int64) {
	ps, ok := e.pending[sz]
	if !ok {
		ps = &pendingSet{sz: sz}
		e.pending[sz] = ps
	}
	for _, d := range ps.distributions {
		if sameSp(d.Sp, sp) {
			return
		}
	}
	ps.distributions = append(ps.distributions, &Distribution{Sp: sp})
}

func (e *Explorer) isSelfEdge(channelID int) bool {
	c, err := e.g.Channel(channelID)
	if err != nil {
		return false
	}
	return c.IsSelfEdge()
}

func (e *Explorer) simulate(d *Distribution) error {
	res, err := tsim.Run(e.g, tsim.WithBufferAnalyser(d.Sp))
	if err != nil {
		return err
	}
	d.Thr = res.Throughput
	if res.Kind == tsim.ResultDeadlock {
		d.Dep = deps.AnalyzeDeadlock(e.g, res.Deadlock)
	} else {
		d.Dep = deps.Analyze(e.g, res.BlockLog)
	}
	return nil
}

// Explore runs FindNextStorageDistributionSet until a set reaches bound
// (tsim.InfiniteThroughput() for the unbounded-buffer maximum, or the zero
// Throughput for "minimum deadlock-free"), returning every Pareto point
// visited along the way.
func Explore(g *graphmodel.Graph, bound tsim.Throughput, opts ...Option) ([]*DistributionSet, error) {
	e, err := NewExplorer(g, opts...)
	if err != nil {
		return nil, err
	}
	var front []*DistributionSet
	zeroBound := !bound.Infinite && bound.Num == 0
	for {
		set, err := e.FindNextStorageDistributionSet()
		if err != nil {
			return nil, err
		}
		if set == nil {
			return front, nil
		}
		front = append(front, set)
		if zeroBound {
			if set.Throughput.Infinite || set.Throughput.Num > 0 {
				return front, nil
			}
			continue
		}
		if tsim.Compare(set.Throughput, bound) >= 0 {
			return front, nil
		}
	}
}

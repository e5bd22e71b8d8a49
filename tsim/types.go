package tsim

import (
	"math"

	"github.com/vharmon/flowsim/graphmodel"
)

// Clock is re-exported for convenience; it is the same discrete time unit
// graphmodel uses for execution times and clocks.
type Clock = graphmodel.Clock

// firing is one in-flight execution of an actor: its remaining time and
// the CSDF phase it was started under (so the matching end-of-firing
// production uses the same phase the start-of-firing consumption used).
type firing struct {
	Remaining Clock
	Phase     int64
}

// State is the simulator's state tuple (spec.md §3): per-actor remaining
// firing queues, per-channel token counts, optional per-channel free
// space (buffer-analyser mode only), and the clock elapsed since the last
// iteration boundary. Two States are equal iff every field matches
// element-wise — the definition spec.md §4.1 uses for recurrent-state
// detection.
type State struct {
	ActClk [][]Clock // per actor, remaining time only (phase excluded from equality, per spec.md §4.1/§9)
	Ch     []int64   // per channel token count
	Sp     []int64   // per channel free space; nil outside buffer-analyser mode
	GlbClk Clock
}

// Throughput is a throughput value, exactly rational, with an explicit
// sentinel for the "execTime ≡ 0" law of spec.md §8 (infinite throughput),
// which big.Rat cannot represent.
type Throughput struct {
	Num, Den int64 // reduced; Den == 0 means Infinite
	Infinite bool
}

// Float64 returns the throughput as a float, +Inf if Infinite.
func (t Throughput) Float64() float64 {
	if t.Infinite || t.Den == 0 {
		return math.Inf(1)
	}
	return float64(t.Num) / float64(t.Den)
}

// BlockKind classifies why an actor's next firing could not start, per
// spec.md §4.3's three dependency-edge rules.
type BlockKind int

const (
	// BlockMissingTokens: an in-channel lacked enough tokens.
	BlockMissingTokens BlockKind = iota
	// BlockMissingSpace: an out-channel lacked enough free space.
	BlockMissingSpace
	// BlockInFlight: the actor is modeled as serialized and already has an
	// unfinished firing.
	BlockInFlight
	// BlockNotScheduled: a StartGate rejected this firing (binding-aware
	// simulation: not this tile's turn in the static order).
	BlockNotScheduled
)

// BlockReason is one instance of an actor failing to start, naming the
// actor and, for token/space blocks, the channel responsible.
type BlockReason struct {
	Actor   int
	Kind    BlockKind
	Channel int // -1 for BlockInFlight
}

// BlockEvent groups every BlockReason observed during one macro-step's
// start phase, tagged with the iteration index active at that step. deps
// and the buffer analyser consume these to build the abstract dependency
// graph of spec.md §4.3.
type BlockEvent struct {
	Iteration int64
	Reasons   []BlockReason
}

// BlockedActor names an actor that could not start as part of a
// deadlock's final state, with the reasons it was blocked.
type BlockedActor struct {
	Actor   int
	Reasons []BlockReason
}

// DeadlockReport supplements spec.md §4.1's bare "+∞ clock step" outcome
// with per-actor blocking detail, per original_source's
// sdf/analysis/throughput/deadlock.cc (SPEC_FULL.md §5).
type DeadlockReport struct {
	Blocked []BlockedActor
}

// ResultKind is the outcome of a Run (spec.md §4.1).
type ResultKind int

const (
	ResultRecurrent ResultKind = iota
	ResultDeadlock
)

// Result is the outcome of Run: either a discovered recurrent cycle with
// its throughput, or a deadlock with per-actor detail.
type Result struct {
	Kind       ResultKind
	Throughput Throughput

	// StartedPeriodicAt and RecurredAt bound the periodic phase in
	// iteration-boundary units: the state at StartedPeriodicAt recurred at
	// RecurredAt. Valid only when Kind == ResultRecurrent.
	StartedPeriodicAt int64
	RecurredAt        int64

	FinalState State
	BlockLog   []BlockEvent
	Deadlock   *DeadlockReport // non-nil iff Kind == ResultDeadlock
}

package tsim

import (
	"fmt"

	"github.com/vharmon/flowsim/graphmodel"
)

// StepStatus reports whether a Step made progress or produced a final
// Result.
type StepStatus int

const (
	StepProgress StepStatus = iota
	StepDone
)

// Simulator is the generic timed-token simulator of spec.md §4.1. Build
// one with NewSimulator, then either call Step repeatedly (for
// cancellation/timeout-aware callers and for deps/buffer, which need
// per-macro-step visibility) or call Run for the common case.
type Simulator struct {
	g      *graphmodel.Graph
	cfg    config
	actors []*graphmodel.Actor
	chans  []*graphmodel.Channel

	q           []int64
	outputActor int
	rOut        int64

	ch       []int64
	sp       []int64 // nil outside buffer-analyser mode
	actClk   [][]firing
	nFirings []int64

	glbClk    Clock
	elapsed   Clock
	iteration int64
	boundary  int64

	seenIteration map[stateKey]int64
	seenElapsed   map[stateKey]Clock
	blockLog      []BlockEvent

	macroSteps int64
	finished   bool
	result     *Result

	shortCircuitChannel int // -1, or the channel whose capacity can't hold its initial tokens
}

// NewSimulator validates g (spec.md §3 consistency) and builds an initial
// state ready to Step/Run.
func NewSimulator(g *graphmodel.Graph, opts ...Option) (*Simulator, error) {
	if g == nil {
		return nil, graphmodel.ErrNilGraph
	}
	q, err := graphmodel.ConsistencyCheck(g)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	actors := g.Actors()
	chans := g.Channels()

	outputActor := cfg.outputActor
	if !cfg.hasOutput {
		if g.HasExplicitOutputActor() {
			outputActor = g.OutputActor
		} else {
			outputActor = 0
			for i := 1; i < len(q); i++ {
				if q[i] < q[outputActor] {
					outputActor = i
				}
			}
		}
	}
	if len(q) == 0 {
		return nil, graphmodel.NewTaggedError(graphmodel.KindValidation, "tsim.NewSimulator", fmt.Errorf("graph has no actors"))
	}

	s := &Simulator{
		g:                   g,
		cfg:                 cfg,
		actors:              actors,
		chans:               chans,
		q:                   q,
		outputActor:         outputActor,
		rOut:                q[outputActor],
		ch:                  make([]int64, len(chans)),
		nFirings:            make([]int64, len(actors)),
		actClk:              make([][]firing, len(actors)),
		seenIteration:       make(map[stateKey]int64),
		seenElapsed:         make(map[stateKey]Clock),
		shortCircuitChannel: -1,
	}

	if cfg.bufferMode {
		if len(cfg.capacity) != len(chans) {
			return nil, graphmodel.NewTaggedError(graphmodel.KindValidation, "tsim.NewSimulator",
				fmt.Errorf("capacity has %d entries, graph has %d channels", len(cfg.capacity), len(chans)))
		}
		s.sp = make([]int64, len(chans))
	}

	for j, c := range chans {
		s.ch[j] = c.InitialTokens
		if cfg.bufferMode {
			if cfg.capacity[j] < c.InitialTokens {
				s.shortCircuitChannel = j
				continue
			}
			s.sp[j] = cfg.capacity[j] - c.InitialTokens
		}
	}

	return s, nil
}

// Step performs one macro-step: end phase, start phase, clock step.
func (s *Simulator) Step() (StepStatus, error) {
	if s.finished {
		return StepDone, nil
	}

	if s.shortCircuitChannel >= 0 {
		s.result = &Result{
			Kind:       ResultDeadlock,
			Throughput: newThroughput(0, 1),
			FinalState: s.snapshot(),
			Deadlock: &DeadlockReport{Blocked: []BlockedActor{{
				Actor:   s.chans[s.shortCircuitChannel].DstPort.ActorID,
				Reasons: []BlockReason{{Actor: s.chans[s.shortCircuitChannel].DstPort.ActorID, Kind: BlockMissingSpace, Channel: s.shortCircuitChannel}},
			}}},
		}
		s.finished = true
		return StepDone, nil
	}

	s.endPhase()

	if done := s.checkIterationBoundaries(); done {
		return StepDone, nil
	}

	reasons := s.startPhase()
	if len(reasons) > 0 {
		s.blockLog = append(s.blockLog, BlockEvent{Iteration: s.iteration, Reasons: reasons})
	}

	delta, hasInFlight := s.minRemaining()
	if !hasInFlight {
		s.result = &Result{
			Kind:       ResultDeadlock,
			Throughput: newThroughput(0, 1),
			FinalState: s.snapshot(),
			BlockLog:   s.blockLog,
			Deadlock:   buildDeadlockReport(reasons),
		}
		s.finished = true
		return StepDone, nil
	}

	for i := range s.actClk {
		for j := range s.actClk[i] {
			s.actClk[i][j].Remaining -= delta
		}
	}
	s.glbClk += delta
	s.elapsed += delta
	s.macroSteps++
	if s.macroSteps > s.cfg.maxMacroSteps {
		return StepProgress, fmt.Errorf("tsim: exceeded %d macro-steps without reaching a recurrent or deadlock state", s.cfg.maxMacroSteps)
	}
	return StepProgress, nil
}

// Run drives Step to completion and returns the final Result.
func Run(g *graphmodel.Graph, opts ...Option) (*Result, error) {
	s, err := NewSimulator(g, opts...)
	if err != nil {
		return nil, err
	}
	return s.Run()
}

// Run drives this Simulator's Step to completion.
func (s *Simulator) Run() (*Result, error) {
	for {
		status, err := s.Step()
		if err != nil {
			return nil, err
		}
		if status == StepDone {
			return s.result, nil
		}
	}
}

func (s *Simulator) endPhase() {
	var endedOut int64
	for _, a := range s.actors {
		q := s.actClk[a.ID]
		i := 0
		for i < len(q) && q[i].Remaining == 0 {
			fr := q[i]
			for _, p := range a.Ports {
				rate := p.Rate.At(fr.Phase)
				if p.Dir == graphmodel.Out {
					s.ch[p.ChannelID] += rate
				} else if s.sp != nil {
					s.sp[p.ChannelID] += rate
				}
			}
			if a.ID == s.outputActor {
				endedOut++
			}
			i++
		}
		if i > 0 {
			s.actClk[a.ID] = append([]firing(nil), q[i:]...)
		}
	}
	s.boundary += endedOut
}

// checkIterationBoundaries hashes the state every time the per-iteration
// counter reaches rOut, possibly more than once in a single end phase if
// several A_out firings complete together. Returns true if a recurrent
// state was found (s.result/s.finished are set).
func (s *Simulator) checkIterationBoundaries() bool {
	for s.boundary >= s.rOut {
		s.boundary -= s.rOut
		snap := s.snapshot()
		key := hashState(snap)
		if firstIter, ok := s.seenIteration[key]; ok {
			firstElapsed := s.seenElapsed[key]
			cycleIterations := s.iteration - firstIter
			cycleTime := s.elapsed - firstElapsed
			s.result = &Result{
				Kind:              ResultRecurrent,
				Throughput:        newThroughput(cycleIterations*s.rOut, cycleTime),
				StartedPeriodicAt: firstIter,
				RecurredAt:        s.iteration,
				FinalState:        snap,
				BlockLog:          filterBlockLog(s.blockLog, firstIter, s.iteration),
			}
			s.finished = true
			return true
		}
		s.seenIteration[key] = s.iteration
		s.seenElapsed[key] = s.elapsed
		s.iteration++
		s.glbClk = 0
	}
	return false
}

func (s *Simulator) startPhase() []BlockReason {
	var reasons []BlockReason
	for _, a := range s.actors {
		phase := s.nFirings[a.ID]
		ok, blocked := s.checkEnabled(a, phase)
		if !ok {
			reasons = append(reasons, blocked...)
			continue
		}
		for _, p := range a.Ports {
			rate := p.Rate.At(phase)
			if p.Dir == graphmodel.In {
				s.ch[p.ChannelID] -= rate
			} else if s.sp != nil {
				s.sp[p.ChannelID] -= rate
			}
		}
		profile, _ := a.DefaultProfile() // validated non-nil by ConsistencyCheck
		exec := profile.ExecTime
		if s.cfg.execTimeFunc != nil {
			exec = s.cfg.execTimeFunc(a.ID, phase, exec, s.elapsed)
		}
		s.actClk[a.ID] = append(s.actClk[a.ID], firing{Remaining: exec, Phase: phase})
		s.nFirings[a.ID]++
	}
	return reasons
}

func (s *Simulator) checkEnabled(a *graphmodel.Actor, phase int64) (bool, []BlockReason) {
	if s.cfg.serialized[a.ID] && len(s.actClk[a.ID]) > 0 {
		return false, []BlockReason{{Actor: a.ID, Kind: BlockInFlight, Channel: -1}}
	}
	if s.cfg.startGate != nil && !s.cfg.startGate(a.ID, phase, s.elapsed) {
		return false, []BlockReason{{Actor: a.ID, Kind: BlockNotScheduled, Channel: -1}}
	}
	var reasons []BlockReason
	for _, p := range a.Ports {
		rate := p.Rate.At(phase)
		switch {
		case p.Dir == graphmodel.In && s.ch[p.ChannelID] < rate:
			reasons = append(reasons, BlockReason{Actor: a.ID, Kind: BlockMissingTokens, Channel: p.ChannelID})
		case p.Dir == graphmodel.Out && s.sp != nil && s.sp[p.ChannelID] < rate:
			reasons = append(reasons, BlockReason{Actor: a.ID, Kind: BlockMissingSpace, Channel: p.ChannelID})
		}
	}
	return len(reasons) == 0, reasons
}

func (s *Simulator) minRemaining() (Clock, bool) {
	var delta Clock
	found := false
	for _, q := range s.actClk {
		if len(q) == 0 {
			continue
		}
		if !found || q[0].Remaining < delta {
			delta = q[0].Remaining
			found = true
		}
	}
	return delta, found
}

func (s *Simulator) snapshot() State {
	actClk := make([][]Clock, len(s.actClk))
	for i, q := range s.actClk {
		row := make([]Clock, len(q))
		for j, f := range q {
			row[j] = f.Remaining
		}
		actClk[i] = row
	}
	ch := append([]int64(nil), s.ch...)
	var sp []int64
	if s.sp != nil {
		sp = append([]int64(nil), s.sp...)
	}
	return State{ActClk: actClk, Ch: ch, Sp: sp, GlbClk: s.glbClk}
}

func buildDeadlockReport(reasons []BlockReason) *DeadlockReport {
	byActor := make(map[int][]BlockReason)
	var order []int
	for _, r := range reasons {
		if _, ok := byActor[r.Actor]; !ok {
			order = append(order, r.Actor)
		}
		byActor[r.Actor] = append(byActor[r.Actor], r)
	}
	report := &DeadlockReport{}
	for _, actor := range order {
		report.Blocked = append(report.Blocked, BlockedActor{Actor: actor, Reasons: byActor[actor]})
	}
	return report
}

func filterBlockLog(log []BlockEvent, from, to int64) []BlockEvent {
	var out []BlockEvent
	for _, ev := range log {
		if ev.Iteration >= from && ev.Iteration < to {
			out = append(out, ev)
		}
	}
	return out
}

// OutputActor returns the actor index the simulator uses as A_out.
func (s *Simulator) OutputActor() int { return s.outputActor }

// RepetitionVector returns the repetition vector computed at construction.
func (s *Simulator) RepetitionVector() []int64 { return s.q }

// Elapsed returns the cumulative simulated time since construction. Unlike
// the per-iteration glbClk inside State, Elapsed never resets at an
// iteration boundary — latency derivations key off it to timestamp firings
// on an absolute clock.
func (s *Simulator) Elapsed() Clock { return s.elapsed }

// FiringCounts returns, per actor, how many firings have been started so
// far.
func (s *Simulator) FiringCounts() []int64 {
	return append([]int64(nil), s.nFirings...)
}

// InFlightCounts returns, per actor, how many started firings have not
// yet ended.
func (s *Simulator) InFlightCounts() []int64 {
	out := make([]int64, len(s.actClk))
	for i, q := range s.actClk {
		out[i] = int64(len(q))
	}
	return out
}

// CompletedFirings returns, per actor, how many firings have ended.
func (s *Simulator) CompletedFirings() []int64 {
	started := s.FiringCounts()
	inFlight := s.InFlightCounts()
	out := make([]int64, len(started))
	for i := range started {
		out[i] = started[i] - inFlight[i]
	}
	return out
}

// Result returns the outcome recorded by the Step that returned StepDone,
// or nil if the simulator has not finished yet. Callers that drive Step
// themselves (package binding) use this instead of Run to interleave
// their own bookkeeping between steps.
func (s *Simulator) Result() *Result { return s.result }

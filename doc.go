// Package flowsim is an analysis and resource-allocation toolbox for timed
// dataflow graphs: finite directed multigraphs whose vertices ("actors")
// carry a computation duration and whose edges ("channels") are FIFOs with
// statically known per-firing token rates. Both SDF (one constant rate per
// port) and CSDF (a rate sequence indexed by firing phase) are supported.
//
// What can you ask it?
//
//   - Maximum achievable throughput under self-timed execution.
//   - Buffer/throughput Pareto trade-offs, and minimum deadlock-free
//     buffer sizes per channel.
//   - Latency from a source firing to a destination firing, under
//     unbounded concurrency, a single processor, or a maximal-throughput
//     periodic source.
//
// What can it build for you?
//
//   - Static-periodic schedules realising the maximum throughput.
//   - Binding-aware throughput under per-tile TDMA arbitration.
//   - Slot-accurate network-on-chip communication schedules.
//
// Under the hood, everything is organized by leaf-first dependency order:
//
//	graphmodel/ — actors, ports, channels, repetition vectors, consistency
//	tsim/       — the generic timed-token simulator every analysis drives
//	deps/       — the abstract actor-dependency graph built during a run
//	buffer/     — throughput/storage Pareto exploration
//	latency/    — minimal, self-timed and source-constrained latency
//	binding/    — TDMA-wheel and static-order tile simulation
//	schedule/   — static-periodic schedule derivation
//	noc/        — route search and slot-table allocation
//	mapping/    — the state machine that orchestrates all of the above
//	graphio/    — graph file parsing, DOT/HTML/CSDF emission
//
// flowsim's engine (graphmodel through mapping) is pure and single-threaded:
// every analysis is a function from an immutable graph plus a transient
// state to a result, safe to call concurrently on disjoint graphs. graphio
// and cmd/flowsim are the only packages that touch the filesystem.
//
//	go get github.com/vharmon/flowsim
package flowsim

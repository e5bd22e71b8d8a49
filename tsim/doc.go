// Package tsim is the generic timed-token simulator every analysis in
// flowsim drives (spec.md §4.1): self-timed execution of a timed dataflow
// graph, actors firing as soon as tokens — and, in buffer-analyser mode,
// buffer space — are available.
//
// The driving loop is a macro-step of three ordered phases, run until a
// state repeats at an output-actor iteration boundary (Recurrent) or no
// actor can progress (Deadlock):
//
//  1. End every firing whose remaining time has reached zero: produce
//     output tokens (and, in buffer-analyser mode, release the input
//     space those tokens were holding).
//  2. Start every firing now enabled, in actor-identity order: consume
//     input tokens (and, in buffer-analyser mode, reserve output space).
//  3. Step the clock by the smallest remaining time across every in-flight
//     firing.
//
// Simulator exposes a single Step, so callers that need cooperative
// cancellation or timeouts (spec.md §5) can stop between macro-steps; Run
// is the convenience loop used by everything that just wants a final
// throughput. This package has no logical concurrency of its own — a
// Simulator is a plain, mutable, single-goroutine object — but a *Graph
// is read-only once built, so independent Simulators over independent
// graphs (or clones) can run on separate goroutines freely.
package tsim

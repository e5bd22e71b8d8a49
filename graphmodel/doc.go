// Package graphmodel defines the central Graph, Actor, Port and Channel
// types for timed dataflow graphs, plus the consistency checks every other
// package in flowsim builds on.
//
// A Graph is an ordered collection of Actors (0..A-1) and Channels
// (0..C-1), each with a stable integer identity; names are for diagnostics
// only. An Actor carries one or more ProcessorProfiles (exactly one
// default) and an ordered set of Ports. A Channel connects exactly one
// output Port to exactly one input Port and carries an initial token
// count, a token size in bytes, and an optional bounded buffer size.
//
// Two dataflow dialects are supported: SDF, where every Port has one
// constant rate, and CSDF, where a Port's rate is a non-empty sequence
// indexed by firing phase.
//
// Graph mutation is guarded by a single sync.RWMutex, mirroring the
// teacher library's locking discipline: build a Graph on one goroutine,
// then treat it as read-only and share it freely across concurrent
// analyses. RepetitionVector and ConsistencyCheck compute the structural
// facts (spec.md §3) that every downstream analysis assumes hold.
package graphmodel

// Package latency implements the four source-to-destination latency
// derivations of spec.md §4.4, all built on top of package tsim: minimal
// latency under unbounded concurrency, minimal latency on a single
// processor, self-timed latency, and minimal latency at maximum
// throughput. Every derivation requires a strongly connected graph.
package latency

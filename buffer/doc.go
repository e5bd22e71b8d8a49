// Package buffer explores the throughput/storage-distribution Pareto
// front of spec.md §4.2: starting from the per-channel minimum useful
// space, it repeatedly simulates a distribution, expands the channels its
// dependency graph (package deps) marks as throughput-limiting, and
// reports each new Pareto point as storage grows.
package buffer

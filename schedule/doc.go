// Package schedule derives a static-periodic firing schedule (spec.md
// §4.5) from a graph's self-timed throughput: a per-actor table of start
// times that repeats every period time units, together with a replay
// that validates the schedule is actually realisable.
package schedule

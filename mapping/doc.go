// Package mapping drives the full mapping flow of spec.md §9: starting
// from an application graph and a platform description, it chooses a
// storage distribution, binds actors to tiles, derives a static-order TDMA
// schedule, and, when the platform carries a network block, schedules
// inter-tile communication on the NoC — retrying with a larger storage
// distribution whenever a step reports InfeasibleConstraint, exhausting to
// Failed.
package mapping

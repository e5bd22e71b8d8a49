// Package noc schedules wormhole-switched messages onto a slotted
// network-on-chip interconnect (spec.md §4.6): route search bounded by a
// detour budget, slot-table reservation with per-slot preference levels,
// conflict severity between scheduling entities, and five selectable
// scheduling strategies (greedy, classic, knowledge, random, rip-up).
package noc

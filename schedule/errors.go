package schedule

import "errors"

// ErrDeadlock indicates the graph deadlocks under self-timed execution,
// so no periodic schedule exists to derive.
var ErrDeadlock = errors.New("schedule: graph deadlocks, no periodic schedule exists")

// ErrInfiniteThroughput indicates every actor has zero execution time;
// throughput is unbounded and a finite period cannot be derived.
var ErrInfiniteThroughput = errors.New("schedule: infinite throughput has no periodic schedule")

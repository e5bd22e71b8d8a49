package graphio

import (
	"strconv"

	"github.com/vharmon/flowsim/buffer"
	"github.com/vharmon/flowsim/mapping"
	"github.com/vharmon/flowsim/noc"
	"github.com/vharmon/flowsim/schedule"
	"github.com/vharmon/flowsim/tsim"
)

// formatThroughput renders a Throughput the way every flowsim output
// surface does: "p/q", or "inf" for the execTime≡0 sentinel of spec.md §8.
func formatThroughput(t tsim.Throughput) string {
	if t.Infinite {
		return "inf"
	}
	return strconv.FormatInt(t.Num, 10) + "/" + strconv.FormatInt(t.Den, 10)
}

// Report collects whichever of spec.md §6's output artifacts a CLI run
// produced, so a single WriteHTML call can render all of them without
// every analysis needing to know about HTML.
type Report struct {
	GraphName  string
	Throughput *tsim.Throughput
	Front      []*buffer.DistributionSet
	Schedule   *schedule.Schedule
	Mapping    *mapping.Result
	NoC        *noc.Result
}

// messageRow flattens one noc.SchedulingEntity into the (msg-id,
// startTime, duration, route, slots) tuple spec.md §6 names as the NoC
// report's shape.
type messageRow struct {
	ID        string
	StartTime int64
	Duration  int64
	Route     []noc.LinkID
	Slots     []int64
}

func messageRows(r *noc.Result) []messageRow {
	if r == nil {
		return nil
	}
	rows := make([]messageRow, 0, len(r.Entities))
	for _, e := range r.Entities {
		rows = append(rows, messageRow{
			ID:        e.ID.String(),
			StartTime: e.StartTime,
			Duration:  e.Duration,
			Route:     e.Route,
			Slots:     e.Slots(),
		})
	}
	return rows
}

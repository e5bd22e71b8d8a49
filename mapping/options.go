package mapping

import (
	"go.uber.org/zap"

	"github.com/vharmon/flowsim/latency"
	"github.com/vharmon/flowsim/tsim"
)

// LatencyConstraint optionally bounds a src->dst latency the mapping flow
// must meet during EstimateLatencyConstraint.
type LatencyConstraint struct {
	Src, Dst int
	Bound    tsim.Clock
	Deriv    latency.Derivation
}

// Option configures a mapping Run.
type Option func(*config)

type config struct {
	logger      *zap.Logger
	maxAttempts int
	target      tsim.Throughput
	actorTile   map[int]int // explicit binding; nil means round-robin
	latencyC    *LatencyConstraint
}

// WithLogger attaches a zap logger that receives one entry per state
// transition. Defaults to zap.NewNop() — the mapping flow is otherwise
// silent.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMaxAttempts bounds how many storage distributions SelectStorageDist
// will try before the flow gives up and reports Failed. Defaults to
// "every point on the Pareto front".
func WithMaxAttempts(n int) Option {
	return func(c *config) { c.maxAttempts = n }
}

// WithTargetThroughput sets the throughput ComputeStorageDist explores
// the Pareto front up to. Defaults to tsim.InfiniteThroughput(), i.e. the
// maximum achievable.
func WithTargetThroughput(t tsim.Throughput) Option {
	return func(c *config) { c.target = t }
}

// WithExplicitBinding pins BindSDFGtoTile's actor-to-tile assignment
// instead of letting it round-robin actors across the platform's tiles.
func WithExplicitBinding(tileOf map[int]int) Option {
	return func(c *config) {
		c.actorTile = make(map[int]int, len(tileOf))
		for k, v := range tileOf {
			c.actorTile[k] = v
		}
	}
}

// WithLatencyConstraint enables EstimateLatencyConstraint's check.
// Without it, that state is a no-op, matching a mapping run with no
// latency-critical path declared.
func WithLatencyConstraint(lc LatencyConstraint) Option {
	return func(c *config) { c.latencyC = &lc }
}

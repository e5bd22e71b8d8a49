package mapping

import "errors"

var (
	// ErrNoTiles indicates a platform description with zero tiles was
	// given to a mapping run — there is nowhere to bind an actor.
	ErrNoTiles = errors.New("mapping: platform has no tiles")

	// ErrAttemptsExhausted indicates every storage distribution on the
	// buffer Pareto front was tried and each one failed a later stage.
	ErrAttemptsExhausted = errors.New("mapping: exhausted storage distributions without a feasible mapping")

	// ErrMemoryBudgetExceeded indicates a tile's assigned channels need
	// more bytes than TileSpec.MemoryBytes allows.
	ErrMemoryBudgetExceeded = errors.New("mapping: tile memory budget exceeded")

	// ErrBandwidthBudgetExceeded indicates a tile's network interface
	// cannot sustain the bandwidth its bound actors' channels demand.
	ErrBandwidthBudgetExceeded = errors.New("mapping: tile network-interface bandwidth exceeded")
)

package binding

import "errors"

var (
	// ErrUnknownTile indicates an actor is bound to a tile ID absent from
	// the tiles list.
	ErrUnknownTile = errors.New("binding: actor bound to unknown tile")

	// ErrOrderReferencesUnboundActor indicates a tile's static order names
	// an actor not bound to that tile.
	ErrOrderReferencesUnboundActor = errors.New("binding: tile order references an actor not bound to it")

	// ErrEmptyOrder indicates a tile has actors bound to it but no static
	// order naming any firing slot.
	ErrEmptyOrder = errors.New("binding: tile has bound actors but an empty static order")
)

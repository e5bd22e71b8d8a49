package graphio

import "errors"

var (
	// ErrEmptyDocument indicates an XML document with no <applicationGraph>
	// element.
	ErrEmptyDocument = errors.New("graphio: document has no applicationGraph")

	// ErrUnknownPort indicates a channel referencing an actor or port name
	// that was never declared.
	ErrUnknownPort = errors.New("graphio: channel references an undeclared actor or port")

	// ErrRateMismatch indicates a CSDF channel whose src/dst rate
	// sequences have unequal length after accounting for the declared
	// firing multiplicities — spec.md §7's NotSupported case for
	// CSDF/SDF translation.
	ErrRateMismatch = errors.New("graphio: rate sequence length mismatch")

	// ErrUnknownTile indicates a connection referencing a tile ID not
	// declared in the platform's tile list.
	ErrUnknownTile = errors.New("graphio: connection references an undeclared tile")
)

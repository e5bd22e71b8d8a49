package noc

import "errors"

var (
	// ErrNoRoute indicates no path from src to dst exists within the
	// configured detour budget.
	ErrNoRoute = errors.New("noc: no route within detour budget")

	// ErrNoSlots indicates no combination of packets and slot blocks
	// could satisfy a message's bandwidth requirement on its route.
	ErrNoSlots = errors.New("noc: could not reserve enough slots on route")

	// ErrUnknownNode indicates a message or route referenced a node not
	// present in the interconnect graph.
	ErrUnknownNode = errors.New("noc: unknown node")

	// ErrNotOwner indicates Release was asked to free slots it does not
	// own — a programming error in the caller, never triggered by a
	// Schedule run.
	ErrNotOwner = errors.New("noc: release: entity does not own the given slots")
)

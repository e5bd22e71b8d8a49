// Package binding extends the timed simulator of package tsim with TDMA
// tile scheduling (spec.md §4.6): each actor is bound to a tile, tiles
// admit firings in a static order, and a firing's completion time follows
// the tile's TDMA wheel position instead of its plain execution time.
package binding

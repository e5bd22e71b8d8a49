package binding

// Tile is a TDMA-scheduled processing resource: wheel size W, reserved
// slice S (S <= W), and the static order of actors bound to it. Order may
// repeat an actor more than once to model multiple slots per wheel
// revolution.
type Tile struct {
	ID    int
	W, S  int64
	Order []int
}

// completionTime implements spec.md §4.6's TDMA completion-time formula,
// calibrated against seed scenario 6 (exec=10, W=10, S=3, wheel at slice
// start → 31).
func completionTime(tile Tile, tdmaPos, exec int64) int64 {
	nonSlice := tile.W - tile.S
	if tdmaPos <= nonSlice {
		waitToSlice := nonSlice - tdmaPos
		rotations := ceilDiv(exec, tile.S) - 1
		if rotations < 0 {
			rotations = 0
		}
		return waitToSlice + exec + rotations*nonSlice
	}
	remaining := exec - tile.S + tdmaPos
	if remaining < 0 {
		return exec
	}
	waitingTime := (remaining / tile.S) * nonSlice
	return exec + waitingTime
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

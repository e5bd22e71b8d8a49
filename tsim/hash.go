package tsim

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
)

// stateKey is a content hash of a State, used as the key of the
// associative container spec.md §4.1 requires for recurrent-state
// detection. Serialisation is canonical — a fixed field order and
// explicit lengths, never raw struct bytes — so two States compare equal
// iff their canonical byte streams are identical (spec.md §9).
type stateKey [sha256.Size]byte

func hashState(s State) stateKey {
	var buf bytes.Buffer
	var scratch [8]byte

	putInt := func(v int64) {
		binary.LittleEndian.PutUint64(scratch[:], uint64(v))
		buf.Write(scratch[:])
	}

	putInt(s.GlbClk)
	putInt(int64(len(s.ActClk)))
	for _, q := range s.ActClk {
		putInt(int64(len(q)))
		for _, rem := range q {
			putInt(rem)
		}
	}
	putInt(int64(len(s.Ch)))
	for _, v := range s.Ch {
		putInt(v)
	}
	if s.Sp == nil {
		putInt(-1)
	} else {
		putInt(int64(len(s.Sp)))
		for _, v := range s.Sp {
			putInt(v)
		}
	}
	return sha256.Sum256(buf.Bytes())
}

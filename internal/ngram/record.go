package ngram

import streamerrors "github.com/tamirms/ngramcount/errors"

// Arena is the dense, contiguous, fixed-stride store backing a
// CountingBlock: N word-ids plus one payload per record, indexed
// 0..Len()-1. Records are referenced by index, never by a long-lived
// pointer — Record views borrow directly from the arena's backing slices
// and are only valid until the next mutating call.
type Arena struct {
	n        int
	keys     []uint32 // flat, stride n; keys[i*n : i*n+n] is record i's key
	payloads []uint64
}

// NewArena allocates an arena for model order n with room for capacity
// records without reallocation.
func NewArena(n, capacity int) *Arena {
	return &Arena{
		n:        n,
		keys:     make([]uint32, 0, n*capacity),
		payloads: make([]uint64, 0, capacity),
	}
}

// NewArenaSized allocates an arena for model order n already holding size
// zero-valued records, addressable by index without a prior Append. Used
// as a radix-sort scratch buffer, whose positions are written in scatter
// order rather than append order.
func NewArenaSized(n, size int) *Arena {
	return &Arena{
		n:        n,
		keys:     make([]uint32, n*size),
		payloads: make([]uint64, size),
	}
}

// CopyRecordFrom overwrites record dstIdx with a copy of src's record
// srcIdx. Both arenas must share the same order.
func (a *Arena) CopyRecordFrom(dstIdx int, src *Arena, srcIdx int) {
	copy(a.Key(dstIdx), src.Key(srcIdx))
	a.payloads[dstIdx] = src.payloads[srcIdx]
}

// Order returns N, the number of word-ids per record.
func (a *Arena) Order() int { return a.n }

// Len returns the number of records currently stored.
func (a *Arena) Len() int { return len(a.payloads) }

// Cap returns the record capacity the arena was constructed with.
func (a *Arena) Cap() int { return cap(a.payloads) }

// Append adds a new record, returning its index. key must have length N;
// ErrKeyLengthMismatch otherwise.
func (a *Arena) Append(key []uint32, payload uint64) (int, error) {
	if len(key) != a.n {
		return 0, streamerrors.ErrKeyLengthMismatch
	}
	idx := len(a.payloads)
	a.keys = append(a.keys, key...)
	a.payloads = append(a.payloads, payload)
	return idx, nil
}

// Key returns a mutable view of record i's word-ids. The slice aliases the
// arena's backing storage and is invalidated by the next Append.
func (a *Arena) Key(i int) []uint32 {
	return a.keys[i*a.n : i*a.n+a.n]
}

// Payload returns record i's payload value.
func (a *Arena) Payload(i int) uint64 { return a.payloads[i] }

// SetPayload overwrites record i's payload value.
func (a *Arena) SetPayload(i int, v uint64) { a.payloads[i] = v }

// Swap exchanges records i and j in place, used by the radix sort path to
// permute the arena without an auxiliary index.
func (a *Arena) Swap(i, j int) {
	if i == j {
		return
	}
	ki, kj := a.Key(i), a.Key(j)
	for x := range ki {
		ki[x], kj[x] = kj[x], ki[x]
	}
	a.payloads[i], a.payloads[j] = a.payloads[j], a.payloads[i]
}

// Reset clears the arena to zero length, retaining backing storage for reuse.
func (a *Arena) Reset() {
	a.keys = a.keys[:0]
	a.payloads = a.payloads[:0]
}

// Record is a transient, positional view into an Arena: N word-ids plus a
// payload. It must not escape the iteration step that produced it.
type Record struct {
	Key     []uint32
	Payload uint64
}

// At returns a Record view of arena index i.
func (a *Arena) At(i int) Record {
	return Record{Key: a.Key(i), Payload: a.Payload(i)}
}

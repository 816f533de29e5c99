// Package countblock implements the open-addressing hash table that backs
// one CountingBlock: a cache-resident map from n-gram key to a slot index
// into a contiguous packed-record arena (spec §4.3).
package countblock

import (
	"iter"
	"math"
	"sort"

	streamerrors "github.com/tamirms/ngramcount/errors"
	"github.com/tamirms/ngramcount/internal/ngram"
	"github.com/tamirms/ngramcount/internal/radixsort"
)

// ProbingSpaceMultiplier is the minimum ratio of table capacity to target
// size. A multiplier >= 1.5 bounds linear-probe chain length in practice
// and is the same constant the original counting block used
// (hash_utils::probing_space_multiplier).
const ProbingSpaceMultiplier = 1.5

const emptySentinel = ^uint64(0)

// Stats tracks the running maxima a Block needs to size its front-coded
// disk block widths at write time (spec §3 "Statistics").
type Stats struct {
	MaxWordID uint32
	MaxCount  uint64
}

// Block is a CountingBlock: insertions accumulate into an open-addressed
// table over a packed record arena; once Sort is called the table is
// retired and the arena (or an index permutation over it) is iterated in
// sorted order exactly once.
type Block struct {
	order    int
	arena    *ngram.Arena
	table    []uint64 // ngram-id per slot; emptySentinel means unoccupied
	capacity uint64
	stats    Stats

	sorted bool
	idx    []int // comparison-sort permutation; nil when using the radix path or before Sort
}

// New constructs a Block for model order n sized for targetSize insertions.
// Capacity is ceil(targetSize * ProbingSpaceMultiplier) table slots.
func New(order, targetSize int) *Block {
	b := &Block{order: order}
	b.init(targetSize)
	return b
}

func (b *Block) init(targetSize int) {
	capacity := uint64(math.Ceil(float64(targetSize) * ProbingSpaceMultiplier))
	if capacity == 0 {
		capacity = 1
	}
	table := make([]uint64, capacity)
	for i := range table {
		table[i] = emptySentinel
	}
	b.arena = ngram.NewArena(b.order, targetSize)
	b.table = table
	b.capacity = capacity
	b.stats = Stats{}
	b.sorted = false
	b.idx = nil
}

// Order returns N, the model order.
func (b *Block) Order() int { return b.order }

// Len returns the number of distinct keys inserted so far.
func (b *Block) Len() int { return b.arena.Len() }

// Stats returns the block's running maxima.
func (b *Block) Stats() Stats { return b.stats }

// FindOrInsert probes the table starting at hint%capacity. hint is a
// 64-bit hash of key supplied by the caller (the block never hashes keys
// itself, spec §9 "hash supplied by caller"). On a miss, a new record
// (key, payload=1) is appended to the arena and existed is false. On a
// hit, the record's payload is left untouched — callers increment it via
// Increment.
//
// Returns ErrProbeWrapped if the probe returns to its start without
// resolving; the driver must size blocks so this cannot occur (spec §4.3).
func (b *Block) FindOrInsert(key []uint32, hint uint64) (existed bool, id uint64, err error) {
	if b.sorted {
		return false, 0, streamerrors.ErrBlockSealed
	}

	start := hint % b.capacity
	i := start
	for {
		cur := b.table[i]
		if cur == emptySentinel {
			idx, err := b.arena.Append(key, 1)
			if err != nil {
				return false, 0, err
			}
			b.table[i] = uint64(idx)
			b.updateWordIDStats(uint32ForRecord(b.arena, idx))
			if b.stats.MaxCount < 1 {
				b.stats.MaxCount = 1
			}
			return false, uint64(idx), nil
		}
		if sameKey(b.arena.Key(int(cur)), key) {
			return true, cur, nil
		}
		i++
		if i == b.capacity {
			i = 0
		}
		if i == start {
			return false, 0, streamerrors.ErrProbeWrapped
		}
	}
}

func uint32ForRecord(a *ngram.Arena, idx int) uint32 {
	return a.MaxWordID(idx)
}

func (b *Block) updateWordIDStats(maxInKey uint32) {
	if maxInKey > b.stats.MaxWordID {
		b.stats.MaxWordID = maxInKey
	}
}

func sameKey(a, k []uint32) bool {
	if len(a) != len(k) {
		return false
	}
	for i := range a {
		if a[i] != k[i] {
			return false
		}
	}
	return true
}

// Increment adds 1 to record id's payload and returns the new value,
// keeping the block's max-count statistic current.
func (b *Block) Increment(id uint64) uint64 {
	v := *b.arena.ValuePtr(int(id)) + 1
	*b.arena.ValuePtr(int(id)) = v
	if v > b.stats.MaxCount {
		b.stats.MaxCount = v
	}
	return v
}

// Value returns record id's current payload.
func (b *Block) Value(id uint64) uint64 {
	return b.arena.Payload(int(id))
}

// sortRadix sorts records in place using the parallel LSD radix sorter,
// digitizing on schedule positions from least- to most-significant. The
// hash index is not usable afterward; call ReleaseHashIndex.
func (b *Block) sortRadix(s ngram.Schedule) {
	radixsort.Sort(b.arena, s, b.stats.MaxWordID)
}

// sortComparison builds an identity index permutation and sorts it with
// the schedule's Compare, leaving the arena physically untouched.
func (b *Block) sortComparison(s ngram.Schedule) {
	idx := make([]int, b.arena.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		return s.Compare(b.arena.Key(idx[i]), b.arena.Key(idx[j])) < 0
	})
	b.idx = idx
}

// Sort produces a total order over the block's records under schedule s.
// useRadix selects the radix path (in-place, arena permuted, faster,
// predictable memory) versus the comparison path (index permutation,
// arena untouched, simpler, better for small blocks). Sort may be called
// exactly once; subsequent calls to FindOrInsert fail with ErrBlockSealed.
func (b *Block) Sort(s ngram.Schedule, useRadix bool) {
	if useRadix {
		b.sortRadix(s)
	} else {
		b.sortComparison(s)
	}
	b.sorted = true
	debugCheckSorted(b, s)
}

// ReleaseHashIndex drops the probing table, retaining only the arena and
// (if the comparison path was used) the permutation. Safe to call only
// after Sort.
func (b *Block) ReleaseHashIndex() {
	b.table = nil
}

// Iterate yields records in sorted order. Must be called after Sort;
// calling it first panics with ErrNotSorted, the same precondition-
// violation convention debugCheckSorted uses for a postcondition.
// Records are transient views bound to this iteration step; do not retain
// them past the following yield (spec §9).
func (b *Block) Iterate() iter.Seq[ngram.Record] {
	if !b.sorted {
		panic(streamerrors.ErrNotSorted)
	}
	return func(yield func(ngram.Record) bool) {
		n := b.arena.Len()
		for i := 0; i < n; i++ {
			pos := i
			if b.idx != nil {
				pos = b.idx[i]
			}
			if !yield(b.arena.At(pos)) {
				return
			}
		}
	}
}

// Reset clears the block for reuse with the next chunk of input, allocating
// a fresh table and arena sized for targetSize.
func (b *Block) Reset(targetSize int) {
	b.init(targetSize)
}

// Release drops all backing storage.
func (b *Block) Release() {
	b.arena = nil
	b.table = nil
	b.idx = nil
}

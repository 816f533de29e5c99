//go:build countblock_debug

package countblock

import (
	streamerrors "github.com/tamirms/ngramcount/errors"
	"github.com/tamirms/ngramcount/internal/ngram"
)

// debugCheckSorted walks the freshly sorted block and panics with
// ErrSortPostcondition if any adjacent pair violates the schedule's order.
// Compiled only with -tags countblock_debug; mirrors the original's
// ngrams_block::is_sorted debug-only assertion (spec §7, §8).
func debugCheckSorted(b *Block, s ngram.Schedule) {
	n := b.arena.Len()
	for i := 1; i < n; i++ {
		prevPos, curPos := i-1, i
		if b.idx != nil {
			prevPos, curPos = b.idx[i-1], b.idx[i]
		}
		if s.Compare(b.arena.Key(prevPos), b.arena.Key(curPos)) > 0 {
			panic(streamerrors.ErrSortPostcondition)
		}
	}
}

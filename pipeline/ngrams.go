package pipeline

import "iter"

// SlidingNGrams yields every contiguous length-order window over tokens,
// in stream order. The yielded key aliases an internal buffer and is only
// valid until the next iteration step, matching the Arena's view
// convention (internal/ngram) so the caller can hand it straight to
// CountingBlock.FindOrInsert without a copy.
//
// A caller partitioning a corpus across workers is responsible for
// including order-1 tokens of overlap at each chunk boundary; this
// function has no cross-chunk knowledge.
func SlidingNGrams(tokens iter.Seq[uint32], order int) iter.Seq[[]uint32] {
	return func(yield func([]uint32) bool) {
		if order <= 0 {
			return
		}
		window := make([]uint32, 0, order)
		for tok := range tokens {
			if len(window) == order {
				copy(window, window[1:])
				window[order-1] = tok
			} else {
				window = append(window, tok)
			}
			if len(window) == order {
				if !yield(window) {
					return
				}
			}
		}
	}
}

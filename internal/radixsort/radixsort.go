// Package radixsort implements the parallel LSD radix sort over
// PackedRecord arenas described in spec §4.4: digits are word-ids at
// positions defined by a Comparator schedule (least- to most-significant
// schedule position), radix width is derived from max_word_id, and
// histogram/scatter phases are partitioned across worker goroutines with
// a barrier between passes — the Go analog of the teacher corpus's
// errgroup-based worker fan-out (builder_parallel.go) standing in for the
// platform-conditional __gnu_parallel::sort path in the original.
package radixsort

import (
	"math/bits"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tamirms/ngramcount/internal/ngram"
)

// maxRadixBits bounds a single pass's bucket count to 2^16, matching
// spec §4.4's "radix... clamped to an implementation-chosen upper bound;
// fall back to multiple passes per position if the clamp triggers."
const maxRadixBits = 16

// Sort permutes a's records into ascending order under schedule s, using
// runtime.GOMAXPROCS(0) worker goroutines for histogram/scatter. maxWordID
// bounds every word-id appearing in a's keys (the block's running
// statistic). Sort is a no-op for arenas of length <= 1.
func Sort(a *ngram.Arena, s ngram.Schedule, maxWordID uint32) {
	SortWithWorkers(a, s, maxWordID, runtime.GOMAXPROCS(0))
}

// SortWithWorkers is Sort with an explicit worker count, exposed for
// deterministic tests and for callers that want to bound parallelism
// independently of GOMAXPROCS.
func SortWithWorkers(a *ngram.Arena, s ngram.Schedule, maxWordID uint32, workers int) {
	n := a.Len()
	if n <= 1 {
		return
	}
	if workers < 1 {
		workers = 1
	}

	passes := digitPasses(maxWordID)
	order := s.Order()

	scratch := ngram.NewArenaSized(a.Order(), n)
	src, dst := a, scratch

	// LSD order: process schedule positions from least- to
	// most-significant, and within a position, bit-chunks from least- to
	// most-significant.
	for step := order - 1; step >= 0; step-- {
		pos := s.PositionAt(step)
		for pi := 0; pi < len(passes); pi++ {
			p := passes[pi]
			countingSortPass(src, dst, pos, p.shift, p.mask, p.buckets, workers)
			src, dst = dst, src
		}
	}

	// If the arena that now holds the sorted result isn't a itself, copy
	// it back (an odd total pass count leaves the result in scratch).
	if src != a {
		for i := 0; i < n; i++ {
			a.CopyRecordFrom(i, src, i)
		}
	}
}

type passSpec struct {
	shift   int
	mask    uint32
	buckets int
}

// digitPasses splits a word-id's significant bits into chunks of at most
// maxRadixBits, ordered from least- to most-significant.
func digitPasses(maxWordID uint32) []passSpec {
	totalBits := bits.Len32(maxWordID)
	if totalBits == 0 {
		totalBits = 1
	}
	numPasses := (totalBits + maxRadixBits - 1) / maxRadixBits
	bitsPerPass := (totalBits + numPasses - 1) / numPasses

	passes := make([]passSpec, 0, numPasses)
	for shift := 0; shift < totalBits; shift += bitsPerPass {
		width := bitsPerPass
		if shift+width > totalBits {
			width = totalBits - shift
		}
		passes = append(passes, passSpec{
			shift:   shift,
			mask:    (uint32(1) << width) - 1,
			buckets: 1 << width,
		})
	}
	return passes
}

// countingSortPass performs one stable counting-sort pass, extracting the
// digit from key position pos, bits [shift, shift+width) via mask, and
// scattering src's records into dst. Partitioned across workers with a
// histogram phase followed by a scatter phase (a barrier separates them),
// preserving stability: chunk order is original array order, and within
// a chunk, records are visited and placed in original order.
func countingSortPass(src, dst *ngram.Arena, pos, shift int, mask uint32, buckets, workers int) {
	n := src.Len()
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	chunkSize := (n + workers - 1) / workers

	digit := func(i int) int {
		return int((src.Key(i)[pos] >> shift) & mask)
	}

	counts := make([][]int, workers)
	var histGroup errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		start, end := chunkBounds(w, chunkSize, n)
		counts[w] = make([]int, buckets)
		if start >= end {
			continue
		}
		histGroup.Go(func() error {
			local := counts[w]
			for i := start; i < end; i++ {
				local[digit(i)]++
			}
			return nil
		})
	}
	histGroup.Wait()

	// Global exclusive prefix sum, digit-major then worker-minor, so that
	// records with a smaller digit land first, and among equal digits,
	// records from an earlier (lower-index) chunk land first.
	offsets := make([][]int, workers)
	for w := range offsets {
		offsets[w] = make([]int, buckets)
	}
	cursor := 0
	for d := 0; d < buckets; d++ {
		for w := 0; w < workers; w++ {
			offsets[w][d] = cursor
			cursor += counts[w][d]
		}
	}

	var scatterGroup errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		start, end := chunkBounds(w, chunkSize, n)
		if start >= end {
			continue
		}
		scatterGroup.Go(func() error {
			cur := make([]int, buckets)
			copy(cur, offsets[w])
			for i := start; i < end; i++ {
				d := digit(i)
				dst.CopyRecordFrom(cur[d], src, i)
				cur[d]++
			}
			return nil
		})
	}
	scatterGroup.Wait()
}

func chunkBounds(worker, chunkSize, n int) (int, int) {
	start := worker * chunkSize
	end := start + chunkSize
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	return start, end
}

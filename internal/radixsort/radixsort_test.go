package radixsort

import (
	"math/rand/v2"
	"testing"

	"github.com/tamirms/ngramcount/internal/ngram"
)

func buildArena(order int, keys [][]uint32, payloads []uint64) *ngram.Arena {
	a := ngram.NewArena(order, len(keys))
	for i, k := range keys {
		if _, err := a.Append(k, payloads[i]); err != nil {
			panic(err)
		}
	}
	return a
}

func keysOf(a *ngram.Arena) [][]uint32 {
	out := make([][]uint32, a.Len())
	for i := range out {
		out[i] = append([]uint32(nil), a.Key(i)...)
	}
	return out
}

func TestSortPrefixOrderThreeRecords(t *testing.T) {
	order := 3
	keys := [][]uint32{
		{1, 3, 3},
		{1, 2, 4},
		{1, 2, 3},
	}
	payloads := []uint64{10, 20, 30}
	a := buildArena(order, keys, payloads)

	s := ngram.NewPrefixOrder(order)
	Sort(a, s, 4)

	got := keysOf(a)
	want := [][]uint32{
		{1, 2, 3},
		{1, 2, 4},
		{1, 3, 3},
	}
	for i := range want {
		if !equalKey(got[i], want[i]) {
			t.Fatalf("record %d = %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestSortContextOrderThreeRecords(t *testing.T) {
	order := 3
	keys := [][]uint32{
		{1, 3, 3},
		{1, 2, 4},
		{1, 2, 3},
	}
	payloads := []uint64{10, 20, 30}
	a := buildArena(order, keys, payloads)

	s := ngram.NewContextOrder(order)
	Sort(a, s, 4)

	// Context order schedule is [2,0,1]: sort first by position 2, then 0,
	// then 1.
	got := keysOf(a)
	for i := 1; i < len(got); i++ {
		if s.Compare(got[i-1], got[i]) > 0 {
			t.Fatalf("not sorted at %d: %v then %v", i, got[i-1], got[i])
		}
	}
}

func TestSortPreservesPayloads(t *testing.T) {
	order := 2
	keys := [][]uint32{{5, 1}, {2, 9}, {5, 0}, {2, 2}}
	payloads := []uint64{100, 200, 300, 400}
	a := buildArena(order, keys, payloads)
	pairs := make(map[[2]uint32]uint64)
	for i, k := range keys {
		pairs[[2]uint32{k[0], k[1]}] = payloads[i]
	}

	s := ngram.NewPrefixOrder(order)
	Sort(a, s, 9)

	for i := 0; i < a.Len(); i++ {
		k := a.Key(i)
		want := pairs[[2]uint32{k[0], k[1]}]
		if got := a.Payload(i); got != want {
			t.Fatalf("record %d key %v payload = %d, want %d", i, k, got, want)
		}
	}
}

func TestSortEmptyAndSingleton(t *testing.T) {
	s := ngram.NewPrefixOrder(2)

	empty := ngram.NewArena(2, 0)
	Sort(empty, s, 0) // must not panic

	single := buildArena(2, [][]uint32{{7, 7}}, []uint64{1})
	Sort(single, s, 7)
	if single.Payload(0) != 1 {
		t.Fatalf("singleton payload mutated")
	}
}

func TestSortRandomizedMatchesComparisonSort(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	order := 3
	n := 500
	maxWord := uint32(1000)

	keys := make([][]uint32, n)
	payloads := make([]uint64, n)
	for i := range keys {
		k := make([]uint32, order)
		for j := range k {
			k[j] = uint32(rng.IntN(int(maxWord) + 1))
		}
		keys[i] = k
		payloads[i] = uint64(i)
	}

	a := buildArena(order, keys, payloads)
	s := ngram.NewContextOrder(order)
	SortWithWorkers(a, s, maxWord, 4)

	got := keysOf(a)
	for i := 1; i < len(got); i++ {
		if s.Compare(got[i-1], got[i]) > 0 {
			t.Fatalf("not sorted at index %d: %v then %v", i, got[i-1], got[i])
		}
	}

	// Every original key must still be present (permutation, not loss).
	seen := make(map[uint64]bool)
	for i := 0; i < a.Len(); i++ {
		seen[a.Payload(i)] = true
	}
	for i := uint64(0); i < uint64(n); i++ {
		if !seen[i] {
			t.Fatalf("payload %d missing after sort", i)
		}
	}
}

// TestSortMultiPassWideWordIDRegression exercises maxWordID >= 2^16, which
// forces digitPasses to split a single key position into more than one
// bit-chunk pass. A regression here left the arena mis-sorted: keys
// {65536} and {32769} came out in the order they were inserted instead of
// ascending, because the multi-pass loop ran its chunks most-significant
// first instead of least-significant first.
func TestSortMultiPassWideWordIDRegression(t *testing.T) {
	order := 1
	maxWord := uint32(65536)
	keys := [][]uint32{{65536}, {32769}}
	payloads := []uint64{1, 2}
	a := buildArena(order, keys, payloads)

	s := ngram.NewPrefixOrder(order)
	if len(digitPasses(maxWord)) < 2 {
		t.Fatalf("test setup: expected digitPasses(%d) to return >= 2 passes", maxWord)
	}
	Sort(a, s, maxWord)

	got := keysOf(a)
	want := [][]uint32{{32769}, {65536}}
	for i := range want {
		if !equalKey(got[i], want[i]) {
			t.Fatalf("record %d = %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestSortRandomizedWideWordIDMultiPassMatchesComparisonSort(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 29))
	order := 3
	n := 500
	maxWord := uint32(1 << 20) // forces digitPasses into multiple chunks

	keys := make([][]uint32, n)
	payloads := make([]uint64, n)
	for i := range keys {
		k := make([]uint32, order)
		for j := range k {
			k[j] = uint32(rng.IntN(int(maxWord) + 1))
		}
		keys[i] = k
		payloads[i] = uint64(i)
	}

	a := buildArena(order, keys, payloads)
	s := ngram.NewContextOrder(order)
	if len(digitPasses(maxWord)) < 2 {
		t.Fatalf("test setup: expected digitPasses(%d) to return >= 2 passes", maxWord)
	}
	SortWithWorkers(a, s, maxWord, 4)

	got := keysOf(a)
	for i := 1; i < len(got); i++ {
		if s.Compare(got[i-1], got[i]) > 0 {
			t.Fatalf("not sorted at index %d: %v then %v", i, got[i-1], got[i])
		}
	}

	seen := make(map[uint64]bool)
	for i := 0; i < a.Len(); i++ {
		seen[a.Payload(i)] = true
	}
	for i := uint64(0); i < uint64(n); i++ {
		if !seen[i] {
			t.Fatalf("payload %d missing after sort", i)
		}
	}
}

func equalKey(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

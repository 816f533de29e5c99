// Package ngram defines the in-memory packed n-gram record format and the
// Comparator abstraction (here called Schedule) used by the counting
// block, radix sorter, and front-coding writer/reader to agree on a
// traversal order over the N key positions without ever rewriting the key
// layout itself.
package ngram

// Schedule is a total order over PackedRecords, expressed as a traversal
// schedule over the N key positions (spec §4.2). The key layout stays
// constant (positions 0..N-1); Schedule only determines visiting order.
type Schedule struct {
	n     int
	order []int // order[step] = key position visited at that schedule step
	index []int // index[keyPos] = schedule step at which keyPos is visited
}

// NewPrefixOrder returns the schedule that visits positions 0,1,...,N-1:
// plain lexicographic order on the key as written.
func NewPrefixOrder(n int) Schedule {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return newSchedule(n, order)
}

// NewContextOrder returns the schedule that visits the last position first,
// then the context prefix: N-1, 0, 1, ..., N-2. This clusters all n-grams
// sharing a suffix context together.
func NewContextOrder(n int) Schedule {
	order := make([]int, n)
	order[0] = n - 1
	for i := 1; i < n; i++ {
		order[i] = i - 1
	}
	return newSchedule(n, order)
}

func newSchedule(n int, order []int) Schedule {
	index := make([]int, n)
	for step, pos := range order {
		index[pos] = step
	}
	return Schedule{n: n, order: order, index: index}
}

// Order returns N, the model order (number of key positions).
func (s Schedule) Order() int { return s.n }

// Begin returns the key position visited first in the schedule.
func (s Schedule) Begin() int { return s.order[0] }

// End returns the key position visited last in the schedule.
func (s Schedule) End() int { return s.order[s.n-1] }

// Next returns the key position visited immediately after pos. The caller
// guarantees pos != End().
func (s Schedule) Next(pos int) int {
	return s.order[s.index[pos]+1]
}

// Advance returns the key position reached after k forward steps from pos.
func (s Schedule) Advance(pos, k int) int {
	return s.order[s.index[pos]+k]
}

// StepOf returns the schedule step (0..N-1) at which keyPos is visited.
func (s Schedule) StepOf(keyPos int) int { return s.index[keyPos] }

// PositionAt returns the key position visited at schedule step (0..N-1).
func (s Schedule) PositionAt(step int) int { return s.order[step] }

// LCP returns the longest common prefix length between a and b under this
// schedule: the number of leading schedule steps at which a and b agree,
// capped at N.
func (s Schedule) LCP(a, b []uint32) int {
	n := 0
	for _, pos := range s.order {
		if a[pos] != b[pos] {
			break
		}
		n++
	}
	return n
}

// Compare returns negative, zero, or positive as a is less than, equal to,
// or greater than b, comparing word-ids in schedule order.
func (s Schedule) Compare(a, b []uint32) int {
	for _, pos := range s.order {
		if a[pos] != b[pos] {
			if a[pos] < b[pos] {
				return -1
			}
			return 1
		}
	}
	return 0
}

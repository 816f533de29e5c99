package ngram

import "testing"

func TestPrefixOrderVisitsPositionsInOrder(t *testing.T) {
	s := NewPrefixOrder(3)
	if s.Begin() != 0 || s.End() != 2 {
		t.Fatalf("Begin/End = %d/%d, want 0/2", s.Begin(), s.End())
	}
	pos := s.Begin()
	var seen []int
	for {
		seen = append(seen, pos)
		if pos == s.End() {
			break
		}
		pos = s.Next(pos)
	}
	want := []int{0, 1, 2}
	for i, v := range want {
		if seen[i] != v {
			t.Fatalf("seen = %v, want %v", seen, want)
		}
	}
}

func TestContextOrderVisitsLastFirst(t *testing.T) {
	s := NewContextOrder(3)
	if s.Begin() != 2 {
		t.Fatalf("Begin() = %d, want 2", s.Begin())
	}
	if s.End() != 1 {
		t.Fatalf("End() = %d, want 1", s.End())
	}
	pos := s.Begin()
	var seen []int
	for {
		seen = append(seen, pos)
		if pos == s.End() {
			break
		}
		pos = s.Next(pos)
	}
	want := []int{2, 0, 1}
	for i, v := range want {
		if seen[i] != v {
			t.Fatalf("seen = %v, want %v", seen, want)
		}
	}
}

func TestLCPAndCompareContextOrder(t *testing.T) {
	s := NewContextOrder(3)
	a := []uint32{1, 3, 3}
	b := []uint32{1, 2, 3}
	// context order compares position 2 first (3==3), then 0 (1==1), then 1 (3 vs 2).
	if lcp := s.LCP(a, b); lcp != 2 {
		t.Fatalf("LCP = %d, want 2", lcp)
	}
	if cmp := s.Compare(a, b); cmp <= 0 {
		t.Fatalf("Compare(a,b) = %d, want > 0 (3 > 2 at third schedule step)", cmp)
	}
}

func TestAdvanceMatchesStepwiseNext(t *testing.T) {
	s := NewContextOrder(4)
	pos := s.Begin()
	for k := 0; k < 4; k++ {
		if got := s.Advance(s.Begin(), k); got != pos {
			t.Fatalf("Advance(begin, %d) = %d, want %d", k, got, pos)
		}
		if k < 3 {
			pos = s.Next(pos)
		}
	}
}

func TestScenario1TrivialThreeGramSort(t *testing.T) {
	// From spec §8 scenario 1: context-order schedule [2,0,1]. Records tie
	// on position 2 (both 3) between (1,2,3) and (1,3,3); the tie-break
	// proceeds ascending through position 0 (tie) then position 1 (2 < 3),
	// so (1,2,3) sorts before (1,3,3) under the schedule's own ascending
	// definition (see DESIGN.md for the resolved Open Question — spec.md's
	// illustrative ordering for this scenario used the opposite tie-break
	// direction, which is inconsistent with an ascending total order).
	s := NewContextOrder(3)
	records := [][3]uint32{
		{1, 2, 3},
		{1, 2, 4},
		{1, 3, 3},
	}
	want := [][3]uint32{{1, 2, 3}, {1, 3, 3}, {1, 2, 4}}
	sorted := append([][3]uint32{}, records...)
	// simple insertion sort using Schedule.Compare to avoid pulling in sort here
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && s.Compare(sorted[j-1][:], sorted[j][:]) > 0; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	for i := range want {
		if sorted[i] != want[i] {
			t.Fatalf("sorted[%d] = %v, want %v", i, sorted[i], want[i])
		}
	}
}

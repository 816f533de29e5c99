package ngram

// ValuePtr returns a pointer to record i's payload. It is valid until the
// next Append: the payload slice grows with append, so an Append beyond
// Cap() reallocates it.
func (a *Arena) ValuePtr(i int) *uint64 {
	return &a.payloads[i]
}

// MaxWordID scans key positions [0,n) of record i and returns the largest
// word-id, used by CountingBlock to maintain running statistics on insert.
func (a *Arena) MaxWordID(i int) uint32 {
	var max uint32
	for _, w := range a.Key(i) {
		if w > max {
			max = w
		}
	}
	return max
}

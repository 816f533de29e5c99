// Package errors defines all exported error sentinels for the ngramcount
// library.
//
// This is the single source of truth for error values. Both the top-level
// pipeline package and the internal subsystem packages import from here,
// ensuring errors.Is checks work across package boundaries.
package errors

import "errors"

// Input errors (spec §7, "fatal, surfaced").
var (
	ErrCorpusNotFound    = errors.New("ngramcount: corpus file does not exist")
	ErrTempDirUnreadable = errors.New("ngramcount: temporary directory is not readable/writable")
	ErrInvalidOrder      = errors.New("ngramcount: model order must be > 2 and <= max order")
	ErrInvalidRAMBudget  = errors.New("ngramcount: RAM budget must be positive")
	ErrInvalidWorkers    = errors.New("ngramcount: worker count must be >= 1")
)

// Resource-exhaustion errors (spec §7, "fatal").
var (
	ErrArenaExhausted = errors.New("ngramcount: record arena capacity exceeded")
	ErrShortWrite     = errors.New("ngramcount: short write to run file")
)

// Invariant-violation errors (spec §7, "fatal, programming errors").
var (
	ErrProbeWrapped      = errors.New("ngramcount: probe returned to start without resolving (capacity undersized)")
	ErrSortPostcondition = errors.New("ngramcount: sort postcondition violated (debug build check)")
)

// Record/encoding errors.
var (
	ErrRecordTooWide     = errors.New("ngramcount: record exceeds declared block widths")
	ErrKeyLengthMismatch = errors.New("ngramcount: key length does not match configured model order")
	ErrBlockSealed       = errors.New("ngramcount: block has already been sorted and sealed")
	ErrNotSorted         = errors.New("ngramcount: block must be sorted before iteration or write")
)

// Run-file / decoding errors.
var (
	ErrTruncatedBlock = errors.New("ngramcount: run file block is truncated")
	ErrCorruptHeader  = errors.New("ngramcount: run file block header is corrupt")
)

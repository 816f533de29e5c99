// Package ngramcount implements the external-memory counting and sorting
// core of an n-gram language model estimator: a streaming corpus of
// word-ids is accumulated into fixed-size in-memory hash blocks, each
// block is sorted under a chosen comparator schedule, and the result is
// written to disk as front-coded, bit-packed run files ready for a
// downstream k-way merge.
//
// Package layout:
//
//   - internal/bitio: the append-only bit-packed buffer and positional
//     reader every wire format in this module is built on.
//   - internal/ngram: the packed-record arena and comparator schedule
//     abstraction (prefix order, context order).
//   - internal/countblock: the open-addressing CountingBlock.
//   - internal/radixsort: the parallel LSD radix sorter CountingBlock
//     delegates to when sorting in place.
//   - internal/frontcode: the front-coded run-file writer and reader.
//   - pipeline: the driver tying the above into a runnable corpus ->
//     run-files pipeline, plus its configuration and manifest types.
//   - cmd/ngramcount: the command-line entry point.
package ngramcount

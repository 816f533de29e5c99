// Package frontcode implements the front-coded, bit-packed run-file format
// (spec §4.5, §4.6, §6.1): a sorted record stream is written as a sequence
// of fixed-size disk blocks, each self-describing its own word-id width w
// and payload width v, with every record after the block's first encoded
// as a longest-common-prefix length against its predecessor plus the
// suffix of word-ids the schedule says actually changed.
package frontcode

import (
	"encoding/binary"
	"io"
	"iter"
	"math/bits"

	streamerrors "github.com/tamirms/ngramcount/errors"
	"github.com/tamirms/ngramcount/internal/bitio"
	"github.com/tamirms/ngramcount/internal/ngram"
)

// DefaultBlockBytes is the default disk block payload size (spec §5), used
// when WriteRun is given blockBytes <= 0: every non-terminal block of a run
// carries exactly blockBytes payload bytes after its headerBytes header.
const DefaultBlockBytes = 64 * 1024 * 1024

// headerBytes is the fixed w(1) + v(1) + records_in_block(8) prefix every
// disk block carries ahead of its bit-packed payload.
const headerBytes = 1 + 1 + 8

// ceilLog2 returns the smallest k such that 1<<k >= count: the number of
// bits needed to represent the integers [0, count).
func ceilLog2(count uint64) uint8 {
	if count <= 1 {
		return 0
	}
	return uint8(bits.Len64(count - 1))
}

// fitsWidth reports whether v is representable in width bits.
func fitsWidth(v uint64, width int) bool {
	if width >= 64 {
		return true
	}
	return v>>uint(width) == 0
}

// WriteRun consumes records (already sorted under schedule) and writes a
// complete run of front-coded disk blocks to out. maxWordID and maxCount
// are the block's running statistics (spec §4.5 step 1); blockBytes
// selects the physical block size, or DefaultBlockBytes if <= 0.
//
// Returns the number of physical disk blocks written.
func WriteRun(out io.Writer, order int, schedule ngram.Schedule, records iter.Seq[ngram.Record], maxWordID uint32, maxCount uint64, blockBytes int) (int, error) {
	if blockBytes <= 0 {
		blockBytes = DefaultBlockBytes
	}
	blockBits := blockBytes * 8

	w := ceilLog2(uint64(maxWordID) + 1)
	v := ceilLog2(maxCount + 1)
	l := ceilLog2(uint64(order) + 1)
	maxRecordSize := int(l) + order*int(w) + int(v)

	buf := bitio.NewBuffer(blockBits)

	var prevKey []uint32
	var recordsInBlock int
	blocksWritten := 0
	var writeErr error

	// writeExplicit reports false, without mutating buf further, if rec
	// does not fit the block's declared w/v widths (spec §7 "record
	// exceeds declared block widths" — a caller passing stats that don't
	// actually bound every record's key/payload).
	writeExplicit := func(rec ngram.Record) bool {
		for i := 0; i < order; i++ {
			if !fitsWidth(uint64(rec.Key[i]), int(w)) {
				return false
			}
		}
		if !fitsWidth(rec.Payload, int(v)) {
			return false
		}
		for i := 0; i < order; i++ {
			buf.Append(uint64(rec.Key[i]), int(w))
		}
		buf.Append(rec.Payload, int(v))
		return true
	}

	flush := func(short bool) {
		if writeErr != nil {
			return
		}
		sizeBits := buf.Size()
		data := buf.Bits()

		payloadBytes := blockBytes
		if short {
			payloadBytes = (sizeBits + 7) / 8
		}
		if len(data) < payloadBytes {
			padded := make([]byte, payloadBytes)
			copy(padded, data)
			data = padded
		} else {
			data = data[:payloadBytes]
		}

		if writeErr = writeHeader(out, w, v, uint64(recordsInBlock)); writeErr != nil {
			return
		}
		n, err := out.Write(data)
		if err != nil {
			writeErr = err
			return
		}
		if n != len(data) {
			writeErr = streamerrors.ErrShortWrite
			return
		}
		blocksWritten++
	}

	next, stop := iter.Pull(records)
	defer stop()

	first, ok := next()
	if !ok {
		return 0, nil
	}
	if !writeExplicit(first) {
		return 0, streamerrors.ErrRecordTooWide
	}
	prevKey = append([]uint32(nil), first.Key...)
	recordsInBlock = 1

	for {
		rec, ok := next()
		if !ok {
			break
		}

		if blockBits-buf.Size() < maxRecordSize {
			flush(false)
			if writeErr != nil {
				return blocksWritten, writeErr
			}
			buf.Init()
			if !writeExplicit(rec) {
				return blocksWritten, streamerrors.ErrRecordTooWide
			}
			recordsInBlock = 1
		} else {
			lcp := schedule.LCP(prevKey, rec.Key)
			if lcp == 0 {
				buf.Append(uint64(lcp), int(l))
				if !writeExplicit(rec) {
					return blocksWritten, streamerrors.ErrRecordTooWide
				}
			} else {
				pos := schedule.PositionAt(lcp)
				for p := pos; ; p = schedule.Next(p) {
					if !fitsWidth(uint64(rec.Key[p]), int(w)) {
						return blocksWritten, streamerrors.ErrRecordTooWide
					}
					if p == schedule.End() {
						break
					}
				}
				if !fitsWidth(rec.Payload, int(v)) {
					return blocksWritten, streamerrors.ErrRecordTooWide
				}
				buf.Append(uint64(lcp), int(l))
				for p := pos; ; p = schedule.Next(p) {
					buf.Append(uint64(rec.Key[p]), int(w))
					if p == schedule.End() {
						break
					}
				}
				buf.Append(rec.Payload, int(v))
			}
			recordsInBlock++
		}

		if cap(prevKey) < len(rec.Key) {
			prevKey = make([]uint32, len(rec.Key))
		} else {
			prevKey = prevKey[:len(rec.Key)]
		}
		copy(prevKey, rec.Key)
	}

	if recordsInBlock > 0 {
		flush(true)
		if writeErr != nil {
			return blocksWritten, writeErr
		}
	}

	return blocksWritten, nil
}

func writeHeader(out io.Writer, w, v uint8, recordsInBlock uint64) error {
	var hdr [headerBytes]byte
	hdr[0] = w
	hdr[1] = v
	binary.LittleEndian.PutUint64(hdr[2:], recordsInBlock)
	n, err := out.Write(hdr[:])
	if err != nil {
		return err
	}
	if n != len(hdr) {
		return streamerrors.ErrShortWrite
	}
	return nil
}

package frontcode

import (
	"encoding/binary"
	"io"
	"iter"

	streamerrors "github.com/tamirms/ngramcount/errors"
	"github.com/tamirms/ngramcount/internal/bitio"
	"github.com/tamirms/ngramcount/internal/ngram"
)

// BlockHeader is the fixed prefix every disk block carries ahead of its
// bit-packed payload (spec §6.1).
type BlockHeader struct {
	W              uint8
	V              uint8
	RecordsInBlock uint64
}

// readBlockHeader reads the 10-byte header of one disk block from r. A
// clean io.EOF with zero bytes read signals the run file is exhausted.
func readBlockHeader(r io.Reader) (BlockHeader, error) {
	var hdr [headerBytes]byte
	n, err := io.ReadFull(r, hdr[:])
	if err != nil {
		if err == io.EOF && n == 0 {
			return BlockHeader{}, io.EOF
		}
		return BlockHeader{}, streamerrors.ErrCorruptHeader
	}
	return BlockHeader{
		W:              hdr[0],
		V:              hdr[1],
		RecordsInBlock: binary.LittleEndian.Uint64(hdr[2:]),
	}, nil
}

// BlockReader decodes one disk block's payload into a forward iterator of
// records, maintaining a fixed-stride decode cache exactly like the
// original's ngrams_block::fc_iterator: each step mutates the cache in
// place rather than allocating a fresh record.
type BlockReader struct {
	order    int
	schedule ngram.Schedule
	hdr      BlockHeader

	cursor bitio.Cursor
	l      uint8

	cache        []uint32
	cachePayload uint64
}

func newBlockReaderFromBytes(order int, schedule ngram.Schedule, hdr BlockHeader, data []byte) *BlockReader {
	return &BlockReader{
		order:    order,
		schedule: schedule,
		hdr:      hdr,
		cursor:   bitio.At(data, 0),
		l:        ceilLog2(uint64(order) + 1),
		cache:    make([]uint32, order),
	}
}

// Len returns the number of records this block holds.
func (br *BlockReader) Len() int { return int(br.hdr.RecordsInBlock) }

func (br *BlockReader) decodeExplicit() {
	for i := 0; i < br.order; i++ {
		br.cache[i] = uint32(br.cursor.GetBits(int(br.hdr.W)))
	}
	br.cachePayload = br.cursor.GetBits(int(br.hdr.V))
}

func (br *BlockReader) decode() {
	lcp := int(br.cursor.GetBits(int(br.l)))
	if lcp == 0 {
		br.decodeExplicit()
		return
	}
	pos := br.schedule.PositionAt(lcp)
	for {
		br.cache[pos] = uint32(br.cursor.GetBits(int(br.hdr.W)))
		if pos == br.schedule.End() {
			break
		}
		pos = br.schedule.Next(pos)
	}
	br.cachePayload = br.cursor.GetBits(int(br.hdr.V))
}

// Iterate yields the block's records in stored order. The yielded Record's
// Key slice aliases the reader's internal decode cache: it is overwritten
// by the next iteration step and must not be retained past it (spec §4.6,
// mirroring internal/ngram's arena-view convention).
func (br *BlockReader) Iterate() iter.Seq[ngram.Record] {
	return func(yield func(ngram.Record) bool) {
		total := int(br.hdr.RecordsInBlock)
		for i := 0; i < total; i++ {
			if i == 0 {
				br.decodeExplicit()
			} else {
				br.decode()
			}
			if !yield(ngram.Record{Key: br.cache, Payload: br.cachePayload}) {
				return
			}
		}
	}
}

// RunReader streams successive disk blocks out of a run file produced by
// WriteRun, reading one physical block at a time. blockBytes must match
// the value the run was written with (conveyed out of band, spec §6.1).
type RunReader struct {
	r          io.Reader
	order      int
	schedule   ngram.Schedule
	blockBytes int
	mapped     *MappedRun
}

// NewRunReader wraps r (positioned at the start of a run file).
func NewRunReader(r io.Reader, order int, schedule ngram.Schedule, blockBytes int) *RunReader {
	if blockBytes <= 0 {
		blockBytes = DefaultBlockBytes
	}
	return &RunReader{r: r, order: order, schedule: schedule, blockBytes: blockBytes}
}

// OpenRunFile memory-maps the sealed run file at path and returns a
// RunReader over the mapping, avoiding a bufio copy of the block payload
// (spec §4.5: FrontCodedBlockReader reads a sealed run via mmap). Call
// Close on the returned RunReader when done to release the mapping.
func OpenRunFile(path string, order int, schedule ngram.Schedule, blockBytes int) (*RunReader, error) {
	m, err := OpenMappedRun(path)
	if err != nil {
		return nil, err
	}
	rr := NewRunReader(m.Reader(), order, schedule, blockBytes)
	rr.mapped = m
	return rr, nil
}

// Close releases the memory mapping backing this RunReader, if it was
// opened via OpenRunFile. It is a no-op for a RunReader built with
// NewRunReader over a caller-owned io.Reader.
func (rr *RunReader) Close() error {
	if rr.mapped == nil {
		return nil
	}
	return rr.mapped.Close()
}

// Next reads and decodes the next disk block. It returns io.EOF once the
// run file is exhausted. A block shorter than blockBytes is, per spec
// §4.5 step 6, only valid as the run's final block; RunReader trusts the
// writer's invariant and simply reads whatever bytes remain.
func (rr *RunReader) Next() (*BlockReader, error) {
	hdr, err := readBlockHeader(rr.r)
	if err != nil {
		return nil, err
	}

	data := make([]byte, rr.blockBytes)
	n, err := io.ReadFull(rr.r, data)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, streamerrors.ErrTruncatedBlock
	}
	data = data[:n]

	return newBlockReaderFromBytes(rr.order, rr.schedule, hdr, data), nil
}

// All returns an iterator over every record in the run file, across all of
// its disk blocks, in stored order.
func (rr *RunReader) All() iter.Seq2[ngram.Record, error] {
	return func(yield func(ngram.Record, error) bool) {
		for {
			block, err := rr.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(ngram.Record{}, err)
				return
			}
			for rec := range block.Iterate() {
				if !yield(rec, nil) {
					return
				}
			}
		}
	}
}

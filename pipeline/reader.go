package pipeline

import (
	"io"

	"github.com/tamirms/ngramcount/internal/frontcode"
)

// ManifestRunReader streams records back out of a run file described by a
// Manifest produced by Driver.Run. It transparently decompresses the run
// file when the manifest marks it compressed (spec §3 SUPPLEMENTED
// FEATURES item 3), and otherwise memory-maps the sealed run file so the
// downstream merge pass avoids a bufio copy of the block payload (spec
// §4.5).
type ManifestRunReader struct {
	*frontcode.RunReader
	closer io.Closer
}

// OpenManifestRun opens the run file m describes for reading back its
// records. Call Close when done.
func OpenManifestRun(m Manifest) (*ManifestRunReader, error) {
	sched := ParseScheduleKind(m.Schedule).Schedule(m.Order)
	blockBytes := m.BlockBytes
	if blockBytes <= 0 {
		blockBytes = frontcode.DefaultBlockBytes
	}

	if m.Compressed {
		rc, err := decompressRunFile(m.Path)
		if err != nil {
			return nil, err
		}
		rr := frontcode.NewRunReader(rc, m.Order, sched, blockBytes)
		return &ManifestRunReader{RunReader: rr, closer: rc}, nil
	}

	rr, err := frontcode.OpenRunFile(m.Path, m.Order, sched, blockBytes)
	if err != nil {
		return nil, err
	}
	return &ManifestRunReader{RunReader: rr, closer: rr}, nil
}

// Close releases the resources backing this reader: the decompression
// pipe for a compressed run, or the memory mapping for an uncompressed
// one.
func (m *ManifestRunReader) Close() error {
	return m.closer.Close()
}

package pipeline

import (
	"encoding/binary"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"
)

// keyBytes serializes an n-gram key to its little-endian byte
// representation for hashing. Callers own the returned slice.
func keyBytes(key []uint32) []byte {
	buf := make([]byte, 4*len(key))
	for i, w := range key {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

// DefaultHash is the driver's default caller-supplied hash (spec §6.2):
// a 64-bit digest of an n-gram key fed to CountingBlock.FindOrInsert as
// the probe hint.
func DefaultHash(key []uint32) uint64 {
	return xxhash.Sum64(keyBytes(key))
}

// PreHash is an alternate 128-bit-strength key hash, folded to 64 bits,
// for tokenizers whose word-id distributions aren't uniform enough for
// DefaultHash to spread evenly across table slots.
func PreHash(key []uint32) uint64 {
	h := xxh3.Hash128(keyBytes(key))
	return h.Hi ^ h.Lo
}

// PayloadHash streams r (a sealed run file's bytes) through xxhash to
// produce Manifest.PayloadHash, letting a downstream merge step detect
// truncated or corrupted run files without re-parsing them.
func PayloadHash(r io.Reader) (uint64, error) {
	d := xxhash.New()
	if _, err := io.Copy(d, r); err != nil {
		return 0, err
	}
	return d.Sum64(), nil
}

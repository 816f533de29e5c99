package frontcode

import (
	"bytes"
	"os"

	"github.com/edsrzf/mmap-go"
)

// MappedRun memory-maps a sealed run file for the downstream merge pass,
// avoiding a bufio copy per block. Grounded on the teacher's
// index_writer.go mmap pattern, redirected from index bytes to run-file
// bytes.
type MappedRun struct {
	file *os.File
	mm   mmap.MMap
}

// OpenMappedRun maps path read-only, advises sequential access, and
// prefaults the mapping so the first decode pass doesn't stall on cold
// page faults.
func OpenMappedRun(path string) (*MappedRun, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := fadviseSequential(f); err != nil {
		mm.Unmap()
		f.Close()
		return nil, err
	}
	if err := prefaultRegion(mm); err != nil {
		mm.Unmap()
		f.Close()
		return nil, err
	}
	return &MappedRun{file: f, mm: mm}, nil
}

// Reader returns a fresh forward reader over the mapped bytes, suitable
// for NewRunReader.
func (m *MappedRun) Reader() *bytes.Reader {
	return bytes.NewReader(m.mm)
}

// Close unmaps the run file and closes the backing descriptor.
func (m *MappedRun) Close() error {
	uerr := m.mm.Unmap()
	cerr := m.file.Close()
	if uerr != nil {
		return uerr
	}
	return cerr
}

// PreallocatedFile opens path for writing and best-effort pre-allocates
// sizeHint bytes so sequential block appends avoid repeated extent growth
// (ported from the teacher's fallocate_linux.go, renamed to the run-file
// domain). The pre-allocation is advisory; failures are not fatal.
func PreallocatedFile(path string, sizeHint int64) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	_ = fallocateFile(f, sizeHint)
	return f, nil
}

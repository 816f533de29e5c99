package pipeline

// Manifest describes one sealed run file so a downstream k-way merge
// (external to this package, spec §4.7 step 4) can interpret its bytes
// without re-deriving w/v/schedule from the data. Driver.Run returns the
// manifests in memory; no manifest file is written next to the run file.
type Manifest struct {
	Path        string
	Order       int
	Schedule    string
	MaxWordID   uint32
	MaxCount    uint64
	RecordCount uint64
	DiskBlocks  int
	BlockBytes  int
	PayloadHash uint64
	Compressed  bool
}

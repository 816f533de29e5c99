package pipeline

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tamirms/ngramcount/internal/countblock"
	"github.com/tamirms/ngramcount/internal/frontcode"
	"github.com/tamirms/ngramcount/internal/ngram"
)

// wordIDBytes and payloadWordBytes are the per-record stride estimate used to
// size CountingBlocks from a RAM budget (spec §4.7 step 1: "S = (B/T) /
// (record_stride + table_overhead)"). table_overhead accounts for the
// open-addressing table's own slot per record, inflated by the
// probing-space multiplier.
const (
	wordIDBytes      = 4
	payloadWordBytes = 8
)

// Driver drives corpus -> CountingBlock -> sort -> FrontCodedWriter with
// one goroutine per input chunk passed to Run (Config.Workers sets each
// block's share of the RAM budget), one CountingBlock owner per goroutine for its
// entire insert -> sort -> emit -> release lifecycle (spec §5, "per block
// ownership").
type Driver struct {
	cfg     Config
	logger  *slog.Logger
	metrics *Metrics
}

// DriverOption configures a Driver beyond its Config.
type DriverOption func(*Driver)

// WithLogger overrides the driver's structured logger (default
// slog.Default()).
func WithLogger(l *slog.Logger) DriverOption {
	return func(d *Driver) { d.logger = l }
}

// WithMetrics attaches a Metrics the driver reports counters/histograms
// to; omit for an unobserved run.
func WithMetrics(m *Metrics) DriverOption {
	return func(d *Driver) { d.metrics = m }
}

// NewDriver validates cfg and constructs a Driver ready to Run.
func NewDriver(cfg Config, opts ...DriverOption) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Driver{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// targetBlockSize implements spec §4.7 step 1.
func (d *Driver) targetBlockSize() int {
	perWorker := d.cfg.RAMBudget / int64(d.cfg.Workers)
	stride := int64(d.cfg.Order)*wordIDBytes + payloadWordBytes
	overhead := int64(float64(payloadWordBytes) * countblock.ProbingSpaceMultiplier)
	s := perWorker / (stride + overhead)
	if s < 1 {
		s = 1
	}
	return int(s)
}

// Run partitions the corpus into len(chunks) worker-owned token streams
// (spec §4.7 step 2), builds one n-gram window per chunk via
// SlidingNGrams, and streams each through insert -> sort -> write ->
// release. hash supplies the 64-bit probe hint FindOrInsert needs (spec
// §6.2, "hash supplied by caller"); pass DefaultHash unless the tokenizer
// warrants PreHash.
//
// On any worker error, every run file successfully written by any worker
// during this call is removed before the error is returned (spec §7
// propagation policy).
func (d *Driver) Run(ctx context.Context, chunks []iter.Seq[uint32], hash func([]uint32) uint64) ([]Manifest, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	targetSize := d.targetBlockSize()
	schedule := d.cfg.schedule()
	blockBytes := d.cfg.blockBytes()

	var mu sync.Mutex
	var manifests []Manifest
	var writtenPaths []string

	g, gctx := errgroup.WithContext(ctx)
	for workerIdx, chunk := range chunks {
		workerIdx, chunk := workerIdx, chunk
		g.Go(func() error {
			return d.runWorker(gctx, workerIdx, chunk, schedule, targetSize, blockBytes, hash, &mu, &manifests, &writtenPaths)
		})
	}

	if err := g.Wait(); err != nil {
		mu.Lock()
		for _, p := range writtenPaths {
			os.Remove(p)
		}
		mu.Unlock()
		return nil, err
	}

	return manifests, nil
}

func (d *Driver) runWorker(
	ctx context.Context,
	workerIdx int,
	chunk iter.Seq[uint32],
	sched ngram.Schedule,
	targetSize, blockBytes int,
	hash func([]uint32) uint64,
	mu *sync.Mutex,
	manifests *[]Manifest,
	writtenPaths *[]string,
) error {
	block := countblock.New(d.cfg.Order, targetSize)
	seq := 0
	insertStart := time.Now()

	flush := func() error {
		if d.metrics != nil {
			d.metrics.InsertSeconds.Observe(time.Since(insertStart).Seconds())
		}
		if block.Len() == 0 {
			return nil
		}

		sortStart := time.Now()
		block.Sort(sched, d.cfg.UseRadixSort)
		if d.metrics != nil {
			d.metrics.SortSeconds.Observe(time.Since(sortStart).Seconds())
		}
		stats := block.Stats()

		flushStart := time.Now()
		path := filepath.Join(d.cfg.TempDir, fmt.Sprintf("run-%03d-%05d.bin", workerIdx, seq))
		seq++

		f, err := frontcode.PreallocatedFile(path, int64(blockBytes))
		if err != nil {
			return err
		}
		diskBlocks, werr := frontcode.WriteRun(f, d.cfg.Order, sched, block.Iterate(), stats.MaxWordID, stats.MaxCount, blockBytes)
		cerr := f.Close()
		if werr != nil {
			os.Remove(path)
			return werr
		}
		if cerr != nil {
			os.Remove(path)
			return cerr
		}

		payloadHash, phErr := hashRunFile(path)
		if phErr != nil {
			os.Remove(path)
			return phErr
		}
		info, statErr := os.Stat(path)
		if statErr != nil {
			os.Remove(path)
			return statErr
		}
		runBytes := info.Size()

		compressed := false
		if d.cfg.Compress {
			zpath, cerr := compressRunFile(path)
			if cerr != nil {
				os.Remove(path)
				return cerr
			}
			path = zpath
			compressed = true
		}
		if d.metrics != nil {
			d.metrics.FlushSeconds.Observe(time.Since(flushStart).Seconds())
			d.metrics.RunBytesWritten.Add(float64(runBytes))
		}

		m := Manifest{
			Path:        path,
			Order:       d.cfg.Order,
			Schedule:    d.cfg.Schedule.String(),
			MaxWordID:   stats.MaxWordID,
			MaxCount:    stats.MaxCount,
			RecordCount: uint64(block.Len()),
			DiskBlocks:  diskBlocks,
			BlockBytes:  blockBytes,
			PayloadHash: payloadHash,
			Compressed:  compressed,
		}

		mu.Lock()
		*manifests = append(*manifests, m)
		*writtenPaths = append(*writtenPaths, path)
		mu.Unlock()

		if d.metrics != nil {
			d.metrics.BlocksSorted.Inc()
		}
		d.logger.Debug("sealed run file",
			"worker", workerIdx, "path", path, "records", block.Len(),
			"max_word_id", stats.MaxWordID, "max_count", stats.MaxCount, "disk_blocks", diskBlocks)

		block.ReleaseHashIndex()
		block.Release()
		return nil
	}

	for key := range SlidingNGrams(chunk, d.cfg.Order) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		h := hash(key)
		existed, id, err := block.FindOrInsert(key, h)
		if err != nil {
			return err
		}
		if existed {
			block.Increment(id)
		}
		if block.Len() >= targetSize {
			if err := flush(); err != nil {
				return err
			}
			block = countblock.New(d.cfg.Order, targetSize)
			insertStart = time.Now()
		}
	}

	return flush()
}

// hashRunFile computes PayloadHash over a sealed run file's bytes on
// disk, before any compression is applied, so Manifest.PayloadHash
// always describes the canonical uncompressed content.
func hashRunFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return PayloadHash(f)
}

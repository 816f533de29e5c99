// Command ngramcount reads a tokenized corpus and emits sorted,
// front-coded run files ready for a downstream k-way merge into a
// Kneser-Ney smoothed n-gram model. Flags mirror
// original_source/src/estimate.cpp: text corpus path, model order, RAM
// budget, temp directory, worker count, and an optional compress-blocks
// toggle.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"runtime"
	"strconv"

	streamerrors "github.com/tamirms/ngramcount/errors"
	"github.com/tamirms/ngramcount/pipeline"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "ngramcount:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("ngramcount", flag.ContinueOnError)

	textPath := fs.String("text", "", "corpus file: whitespace-separated decimal word-ids (line breaks and blank lines count as plain whitespace)")
	order := fs.Int("order", 3, "language model order; must be > 2 and <= "+strconv.Itoa(pipeline.MaxOrder))
	ramGiB := fs.Float64("ram", 0, "RAM budget in GiB (default: 1 GiB)")
	tmpDir := fs.String("tmp", "", "directory for intermediate run files")
	threads := fs.Int("threads", runtime.GOMAXPROCS(0), "number of worker threads")
	compressBlocks := fs.Bool("compress-blocks", false, "zstd-compress sealed run files")
	out := fs.String("out", "", "output name, stored in the run configuration (no file is written under it)")
	configPath := fs.String("config", "", "optional YAML config file (its order is used and -order is ignored; -tmp, -out and -ram override it when set; -threads, -compress-blocks, -radix-sort and -schedule always override it)")
	radix := fs.Bool("radix-sort", true, "use the parallel LSD radix sorter instead of comparison sort")
	schedule := fs.String("schedule", "context", "comparator schedule: \"context\" or \"prefix\"")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *textPath == "" {
		return fmt.Errorf("missing required -text flag")
	}
	if _, err := os.Stat(*textPath); err != nil {
		return streamerrors.ErrCorpusNotFound
	}

	scheduleKind := pipeline.ParseScheduleKind(*schedule)

	opts := []pipeline.Option{
		pipeline.WithWorkers(*threads),
		pipeline.WithCompression(*compressBlocks),
		pipeline.WithRadixSort(*radix),
		pipeline.WithSchedule(scheduleKind),
	}
	if *tmpDir != "" {
		if err := os.MkdirAll(*tmpDir, 0o755); err != nil {
			return streamerrors.ErrTempDirUnreadable
		}
		opts = append(opts, pipeline.WithTempDir(*tmpDir))
	}
	if *out != "" {
		opts = append(opts, pipeline.WithOutput(*out))
	}
	if *ramGiB > 0 {
		opts = append(opts, pipeline.WithRAMBudget(int64(*ramGiB*1024*1024*1024)))
	}

	var cfg pipeline.Config
	var err error
	if *configPath != "" {
		cfg, err = pipeline.LoadConfigFile(*configPath, opts...)
	} else {
		if *ramGiB <= 0 {
			opts = append(opts, pipeline.WithRAMBudget(defaultRAMBudget()))
		}
		cfg, err = pipeline.NewConfig(*order, opts...)
	}
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	logger.Info("starting run",
		"corpus", *textPath, "order", cfg.Order, "ram_budget_bytes", cfg.RAMBudget,
		"ram_percent", ramPercent(cfg.RAMBudget), "workers", cfg.Workers, "schedule", cfg.Schedule.String())

	driver, err := pipeline.NewDriver(cfg, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	chunks, err := splitCorpusIntoChunks(*textPath, cfg.Order, cfg.Workers)
	if err != nil {
		return err
	}

	manifests, err := driver.Run(context.Background(), chunks, pipeline.DefaultHash)
	if err != nil {
		return err
	}

	logger.Info("run complete", "run_files", len(manifests))
	for _, m := range manifests {
		logger.Info("run file", "path", m.Path, "records", m.RecordCount, "max_word_id", m.MaxWordID, "max_count", m.MaxCount)
	}
	return nil
}

// defaultRAMBudget mirrors estimate.cpp's fallback of a fixed fraction of
// available RAM when -ram is omitted; a single fixed default (1 GiB) is
// used here since Go has no portable sysconf(_SC_PHYS_PAGES) equivalent
// in the standard library worth reaching for.
func defaultRAMBudget() int64 {
	return 1 << 30
}

func ramPercent(budget int64) string {
	return fmt.Sprintf("%.1f%%", float64(budget)/float64(defaultRAMBudget())*100)
}

// splitCorpusIntoChunks reads whitespace-separated word-ids from path and
// splits them into at most workers contiguous shards, each overlapping the next
// by order-1 tokens so no n-gram window is lost at a shard boundary.
func splitCorpusIntoChunks(path string, order, workers int) ([]iter.Seq[uint32], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tokens []uint32
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		v, err := strconv.ParseUint(sc.Text(), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("corpus: invalid word-id %q: %w", sc.Text(), err)
		}
		tokens = append(tokens, uint32(v))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(tokens) == 0 || workers <= 1 {
		return []iter.Seq[uint32]{sliceSeq(tokens)}, nil
	}

	overlap := order - 1
	shardLen := (len(tokens) + workers - 1) / workers
	chunks := make([]iter.Seq[uint32], 0, workers)
	for start := 0; start < len(tokens); start += shardLen {
		end := min(start+shardLen+overlap, len(tokens))
		chunks = append(chunks, sliceSeq(tokens[start:end]))
		if end == len(tokens) {
			break
		}
	}
	return chunks, nil
}

func sliceSeq(s []uint32) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for _, v := range s {
			if !yield(v) {
				return
			}
		}
	}
}

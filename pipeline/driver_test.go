package pipeline

import (
	"context"
	"iter"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func tokenSeq(tokens []uint32) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for _, t := range tokens {
			if !yield(t) {
				return
			}
		}
	}
}

func TestDriverRunProducesRunFilesAndManifests(t *testing.T) {
	dir := t.TempDir()

	cfg, err := NewConfig(3,
		WithRAMBudget(1<<20),
		WithWorkers(2),
		WithTempDir(dir),
		WithBlockBytes(4096),
	)
	require.NoError(t, err)

	d, err := NewDriver(cfg)
	require.NoError(t, err)

	chunkA := []uint32{1, 2, 3, 4, 1, 2, 3, 5, 6, 7}
	chunkB := []uint32{9, 9, 9, 1, 1, 1, 2, 2, 2}

	manifests, err := d.Run(context.Background(), []iter.Seq[uint32]{tokenSeq(chunkA), tokenSeq(chunkB)}, DefaultHash)
	require.NoError(t, err)
	require.NotEmpty(t, manifests)

	var totalRecords uint64
	for _, m := range manifests {
		require.FileExists(t, m.Path)
		info, err := os.Stat(m.Path)
		require.NoError(t, err)
		require.Greater(t, info.Size(), int64(0))
		require.Equal(t, 3, m.Order)
		totalRecords += m.RecordCount
	}
	require.Greater(t, totalRecords, uint64(0))
}

func TestDriverRunPopulatesPayloadHashAndMetrics(t *testing.T) {
	dir := t.TempDir()
	cfg, err := NewConfig(3, WithRAMBudget(1<<20), WithWorkers(1), WithTempDir(dir), WithBlockBytes(4096))
	require.NoError(t, err)

	m := NewMetrics()
	d, err := NewDriver(cfg, WithMetrics(m))
	require.NoError(t, err)

	manifests, err := d.Run(context.Background(), []iter.Seq[uint32]{tokenSeq([]uint32{1, 2, 3, 4, 1, 2, 3, 5})}, DefaultHash)
	require.NoError(t, err)
	require.NotEmpty(t, manifests)

	for _, man := range manifests {
		require.NotZero(t, man.PayloadHash)
		require.Equal(t, cfg.BlockBytes, man.BlockBytes)
	}

	metricFamilies, err := m.Registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, metricFamilies)

	counted := map[string]float64{}
	for _, mf := range metricFamilies {
		for _, metric := range mf.GetMetric() {
			switch mf.GetName() {
			case "ngramcount_run_bytes_written_total", "ngramcount_blocks_sorted_total":
				counted[mf.GetName()] = metric.GetCounter().GetValue()
			case "ngramcount_sort_seconds", "ngramcount_flush_seconds", "ngramcount_insert_seconds":
				counted[mf.GetName()] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	require.Greater(t, counted["ngramcount_run_bytes_written_total"], float64(0))
	require.Greater(t, counted["ngramcount_blocks_sorted_total"], float64(0))
	require.Greater(t, counted["ngramcount_sort_seconds"], float64(0))
	require.Greater(t, counted["ngramcount_flush_seconds"], float64(0))
	require.Greater(t, counted["ngramcount_insert_seconds"], float64(0))
}

func TestOpenManifestRunRoundTripsUncompressed(t *testing.T) {
	dir := t.TempDir()
	cfg, err := NewConfig(3, WithRAMBudget(1<<20), WithWorkers(1), WithTempDir(dir), WithBlockBytes(4096))
	require.NoError(t, err)

	d, err := NewDriver(cfg)
	require.NoError(t, err)

	manifests, err := d.Run(context.Background(), []iter.Seq[uint32]{tokenSeq([]uint32{1, 2, 3, 4, 1, 2, 3, 5})}, DefaultHash)
	require.NoError(t, err)
	require.NotEmpty(t, manifests)

	for _, man := range manifests {
		rr, err := OpenManifestRun(man)
		require.NoError(t, err)

		var count uint64
		for _, err := range rr.All() {
			require.NoError(t, err)
			count++
		}
		require.Equal(t, man.RecordCount, count)
		require.NoError(t, rr.Close())
	}
}

func TestOpenManifestRunRoundTripsCompressed(t *testing.T) {
	dir := t.TempDir()
	cfg, err := NewConfig(3, WithRAMBudget(1<<20), WithWorkers(1), WithTempDir(dir), WithBlockBytes(4096), WithCompression(true))
	require.NoError(t, err)

	d, err := NewDriver(cfg)
	require.NoError(t, err)

	manifests, err := d.Run(context.Background(), []iter.Seq[uint32]{tokenSeq([]uint32{1, 2, 3, 4, 1, 2, 3, 5})}, DefaultHash)
	require.NoError(t, err)
	require.NotEmpty(t, manifests)

	for _, man := range manifests {
		require.True(t, man.Compressed)
		rr, err := OpenManifestRun(man)
		require.NoError(t, err)

		var count uint64
		for _, err := range rr.All() {
			require.NoError(t, err)
			count++
		}
		require.Equal(t, man.RecordCount, count)
		require.NoError(t, rr.Close())
	}
}

func TestDriverRunEmptyChunksNoOp(t *testing.T) {
	dir := t.TempDir()
	cfg, err := NewConfig(3, WithRAMBudget(1<<20), WithWorkers(1), WithTempDir(dir))
	require.NoError(t, err)

	d, err := NewDriver(cfg)
	require.NoError(t, err)

	manifests, err := d.Run(context.Background(), nil, DefaultHash)
	require.NoError(t, err)
	require.Empty(t, manifests)
}

func TestDriverRunShortChunkYieldsNoRecords(t *testing.T) {
	dir := t.TempDir()
	cfg, err := NewConfig(4, WithRAMBudget(1<<20), WithWorkers(1), WithTempDir(dir))
	require.NoError(t, err)

	d, err := NewDriver(cfg)
	require.NoError(t, err)

	// Fewer tokens than the model order: no complete n-gram window exists.
	manifests, err := d.Run(context.Background(), []iter.Seq[uint32]{tokenSeq([]uint32{1, 2})}, DefaultHash)
	require.NoError(t, err)
	require.Empty(t, manifests)
}

func TestConfigValidateRejectsBadOrder(t *testing.T) {
	_, err := NewConfig(2, WithRAMBudget(1024), WithWorkers(1))
	require.Error(t, err)

	_, err = NewConfig(MaxOrder+1, WithRAMBudget(1024), WithWorkers(1))
	require.Error(t, err)
}

func TestConfigValidateRejectsBadRAMBudget(t *testing.T) {
	_, err := NewConfig(3, WithRAMBudget(0), WithWorkers(1))
	require.Error(t, err)
}

func TestSlidingNGramsProducesExpectedWindows(t *testing.T) {
	var got [][]uint32
	for w := range SlidingNGrams(tokenSeq([]uint32{1, 2, 3, 4}), 2) {
		got = append(got, append([]uint32(nil), w...))
	}
	want := [][]uint32{{1, 2}, {2, 3}, {3, 4}}
	require.Equal(t, len(want), len(got))
	for i := range want {
		require.Equal(t, want[i], got[i])
	}
}

package pipeline

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the Go-native replacement for the original driver's
// print_stats() (spec §3 SUPPLEMENTED FEATURES): a Driver reports through
// it if one is supplied via WithMetrics, otherwise it runs unobserved.
type Metrics struct {
	Registry        *prometheus.Registry
	BlocksSorted    prometheus.Counter
	RunBytesWritten prometheus.Counter
	InsertSeconds   prometheus.Histogram
	SortSeconds     prometheus.Histogram
	FlushSeconds    prometheus.Histogram
}

// NewMetrics constructs a Metrics bound to a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		BlocksSorted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ngramcount",
			Name:      "blocks_sorted_total",
			Help:      "Number of CountingBlocks sorted and sealed to a run file.",
		}),
		RunBytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ngramcount",
			Name:      "run_bytes_written_total",
			Help:      "Total bytes written across all run files.",
		}),
		InsertSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ngramcount",
			Name:      "insert_seconds",
			Help:      "Wall time spent inserting n-grams into a CountingBlock.",
		}),
		SortSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ngramcount",
			Name:      "sort_seconds",
			Help:      "Wall time spent sorting a sealed CountingBlock.",
		}),
		FlushSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ngramcount",
			Name:      "flush_seconds",
			Help:      "Wall time spent front-coding a block to its run file.",
		}),
	}
	reg.MustRegister(m.BlocksSorted, m.RunBytesWritten, m.InsertSeconds, m.SortSeconds, m.FlushSeconds)
	return m
}

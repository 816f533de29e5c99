// Package pipeline drives the corpus -> CountingBlock -> sort ->
// FrontCodedWriter path (spec §4.7): it owns the RAM-budget sizing
// decision, worker fan-out, and manifest bookkeeping that ties the
// internal/* components together into runnable sorted runs.
package pipeline

import (
	"os"
	"strings"

	streamerrors "github.com/tamirms/ngramcount/errors"
	"github.com/tamirms/ngramcount/internal/frontcode"
	"github.com/tamirms/ngramcount/internal/ngram"
)

// MaxOrder bounds the model order the driver will accept. Not part of
// spec.md's stated model, added here to give the CLI's order flag a
// concrete validation range (mirroring original_source/src/estimate.cpp's
// "2 < order <= max_order" check, whose max_order came from an
// application-level constant rather than the counting/sorting core).
const MaxOrder = 12

// ScheduleKind selects the Comparator a Driver sorts each CountingBlock
// under (spec §4.2).
type ScheduleKind int

const (
	PrefixOrder ScheduleKind = iota
	ContextOrder
)

func (k ScheduleKind) String() string {
	if k == ContextOrder {
		return "context"
	}
	return "prefix"
}

// ParseScheduleKind parses a schedule name as produced by
// ScheduleKind.String ("context" or "prefix"), defaulting to
// ContextOrder for any other value.
func ParseScheduleKind(s string) ScheduleKind {
	if strings.EqualFold(s, "prefix") {
		return PrefixOrder
	}
	return ContextOrder
}

// Schedule returns the ngram.Schedule this kind selects for the given
// model order.
func (k ScheduleKind) Schedule(order int) ngram.Schedule {
	if k == ContextOrder {
		return ngram.NewContextOrder(order)
	}
	return ngram.NewPrefixOrder(order)
}

// Config holds every knob a Driver needs. Built via NewConfig and the
// With* functional options below, never a package-level singleton.
type Config struct {
	Order        int
	RAMBudget    int64
	Workers      int
	TempDir      string
	Output       string
	Compress     bool
	Schedule     ScheduleKind
	UseRadixSort bool
	BlockBytes   int
}

// Option configures a Config under construction.
type Option func(*Config)

func WithRAMBudget(bytes int64) Option {
	return func(c *Config) { c.RAMBudget = bytes }
}

func WithWorkers(n int) Option {
	return func(c *Config) { c.Workers = n }
}

func WithTempDir(dir string) Option {
	return func(c *Config) { c.TempDir = dir }
}

func WithOutput(path string) Option {
	return func(c *Config) { c.Output = path }
}

func WithCompression(enabled bool) Option {
	return func(c *Config) { c.Compress = enabled }
}

func WithSchedule(kind ScheduleKind) Option {
	return func(c *Config) { c.Schedule = kind }
}

func WithRadixSort(enabled bool) Option {
	return func(c *Config) { c.UseRadixSort = enabled }
}

func WithBlockBytes(n int) Option {
	return func(c *Config) { c.BlockBytes = n }
}

// NewConfig builds a Config for the given model order, defaulting workers
// to 1, block size to frontcode.DefaultBlockBytes, schedule to
// ContextOrder, and sort strategy to the parallel LSD radix sorter, then
// applies opts and validates the result.
func NewConfig(order int, opts ...Option) (Config, error) {
	c := Config{
		Order:        order,
		Workers:      1,
		BlockBytes:   frontcode.DefaultBlockBytes,
		Schedule:     ContextOrder,
		UseRadixSort: true,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the invariants spec.md §7 classifies as input errors.
func (c Config) Validate() error {
	if c.Order <= 2 || c.Order > MaxOrder {
		return streamerrors.ErrInvalidOrder
	}
	if c.RAMBudget <= 0 {
		return streamerrors.ErrInvalidRAMBudget
	}
	if c.Workers < 1 {
		return streamerrors.ErrInvalidWorkers
	}
	if c.TempDir != "" {
		info, err := os.Stat(c.TempDir)
		if err != nil || !info.IsDir() {
			return streamerrors.ErrTempDirUnreadable
		}
	}
	return nil
}

func (c Config) schedule() ngram.Schedule {
	return c.Schedule.Schedule(c.Order)
}

func (c Config) blockBytes() int {
	if c.BlockBytes <= 0 {
		return frontcode.DefaultBlockBytes
	}
	return c.BlockBytes
}

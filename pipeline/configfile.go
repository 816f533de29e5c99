package pipeline

import (
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of an optional YAML config file, the
// Go-idiomatic stand-in for original_source/src/estimate.cpp's
// positional/flag-only cmd_line_parser (spec §3 SUPPLEMENTED FEATURES).
type fileConfig struct {
	Order          int    `yaml:"order"`
	RAMBudgetBytes int64  `yaml:"ram_budget_bytes"`
	Workers        int    `yaml:"workers"`
	TempDir        string `yaml:"tmp_dir"`
	Output         string `yaml:"out"`
	CompressBlocks bool   `yaml:"compress_blocks"`
	Schedule       string `yaml:"schedule"`
	BlockBytes     int    `yaml:"block_bytes"`
	RadixSort      bool   `yaml:"radix_sort"`
}

// LoadConfigFile reads a YAML config file and builds a Config from it.
// Flags passed on the command line should be applied afterward via opts
// so they take precedence over the file.
func LoadConfigFile(path string, opts ...Option) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, err
	}

	fileOpts := []Option{
		WithRAMBudget(fc.RAMBudgetBytes),
		WithTempDir(fc.TempDir),
		WithOutput(fc.Output),
		WithCompression(fc.CompressBlocks),
		WithRadixSort(fc.RadixSort),
	}
	if fc.Workers > 0 {
		fileOpts = append(fileOpts, WithWorkers(fc.Workers))
	}
	if fc.BlockBytes > 0 {
		fileOpts = append(fileOpts, WithBlockBytes(fc.BlockBytes))
	}
	if fc.Schedule == "prefix" {
		fileOpts = append(fileOpts, WithSchedule(PrefixOrder))
	} else {
		fileOpts = append(fileOpts, WithSchedule(ContextOrder))
	}

	return NewConfig(fc.Order, append(fileOpts, opts...)...)
}

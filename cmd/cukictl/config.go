package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the subset of cuki.Option knobs a user would want to
// pin in a checked-in config file rather than pass as flags every run.
type fileConfig struct {
	NumBuckets     int    `yaml:"num_buckets"`
	TagsPerBucket  int    `yaml:"tags_per_bucket"`
	TagBits        int    `yaml:"tag_bits"`
	SizeBits       int    `yaml:"size_bits"`
	ClockBits      int    `yaml:"clock_bits"`
	ScopeBits      int    `yaml:"scope_bits"`
	NumScope       int    `yaml:"num_scope"`
	LockNumber     int    `yaml:"lock_number"`
	MaxKicks       int    `yaml:"max_kicks"`
	WindowSize     int64  `yaml:"window_size"`
	OppoAging      bool   `yaml:"oppo_aging"`
	ReportInterval int64  `yaml:"report_interval"`
	IRRShardCount  int    `yaml:"irr_shard_count"`
	Trace          string `yaml:"trace"`
	TraceFormat    string `yaml:"trace_format"`
	Baseline       string `yaml:"baseline"`
	Out            string `yaml:"out"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		NumBuckets:     1 << 20,
		TagsPerBucket:  4,
		TagBits:        12,
		SizeBits:       20,
		ClockBits:      2,
		LockNumber:     64,
		MaxKicks:       500,
		WindowSize:     1_000_000,
		ReportInterval: 10_000,
		IRRShardCount:  64,
		TraceFormat:    "synthetic",
	}
}

// loadFileConfig reads a yaml config file, overlaying it onto the
// defaults; a missing path leaves the defaults untouched.
func loadFileConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cukictl: reading config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cukictl: parsing config %q: %w", path, err)
	}
	return cfg, nil
}

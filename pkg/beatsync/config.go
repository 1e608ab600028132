package beatsync

import (
	"github.com/kavyagupta/BeatSync/internal/audio"
	"github.com/kavyagupta/BeatSync/pkg/beatsync/align"
	"github.com/kavyagupta/BeatSync/pkg/beatsync/beat"
)

type Config struct {
	DBPath        string
	TempDir       string
	SampleRate    int
	HopLength     int
	SearchRangeMs float64
	Logger        Logger
	Storage       Storage
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

func WithHopLength(hop int) Option {
	return func(c *Config) {
		c.HopLength = hop
	}
}

func WithSearchRangeMs(ms float64) Option {
	return func(c *Config) {
		c.SearchRangeMs = ms
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:        "beatsync.sqlite3",
		TempDir:       "/tmp",
		SampleRate:    audio.DefaultSampleRate,
		HopLength:     beat.DefaultHopLength,
		SearchRangeMs: align.DefaultSearchRangeMs,
	}
}

package sqlar

import (
	"io/fs"
	"log/slog"
	"time"
)

// Option configures an Archive at open time.
type Option func(*Archive)

// WithLogger sets the logger used for debug output. By default logs are
// discarded.
func WithLogger(l *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = l
	}
}

// WithCompression sets the default storage encoding for writes
// (default: CompressionDeflate).
func WithCompression(c Compression) Option {
	return func(a *Archive) {
		a.compression = c
	}
}

// WithCompressionLevel sets the default zlib level for writes
// (default: the codec default).
func WithCompressionLevel(level int) Option {
	return func(a *Archive) {
		a.level = level
	}
}

// writeConfig holds per-write settings, seeded from the archive defaults.
type writeConfig struct {
	mode        fs.FileMode
	modTime     time.Time
	compression Compression
	level       int
	name        string
}

func (a *Archive) writeConfig(opts []WriteOption) writeConfig {
	cfg := writeConfig{
		mode:        defaultWriteMode,
		modTime:     time.Now(),
		compression: a.compression,
		level:       a.level,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WriteOption configures a single write.
type WriteOption func(*writeConfig)

// WriteWithMode sets the POSIX permission bits recorded for the entry.
// Ignored by WriteFile, which records the file's own mode.
func WriteWithMode(mode fs.FileMode) WriteOption {
	return func(cfg *writeConfig) {
		cfg.mode = mode
	}
}

// WriteWithModTime sets the modification time recorded for the entry.
// Ignored by WriteFile, which records the file's own mtime.
func WriteWithModTime(t time.Time) WriteOption {
	return func(cfg *writeConfig) {
		cfg.modTime = t
	}
}

// WriteWithCompression overrides the archive's storage encoding for this
// write.
func WriteWithCompression(c Compression) WriteOption {
	return func(cfg *writeConfig) {
		cfg.compression = c
	}
}

// WriteWithLevel overrides the archive's zlib level for this write.
func WriteWithLevel(level int) WriteOption {
	return func(cfg *writeConfig) {
		cfg.level = level
	}
}

// WriteWithName overrides the archive name used by WriteFile.
func WriteWithName(name string) WriteOption {
	return func(cfg *writeConfig) {
		cfg.name = name
	}
}

package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/pathctl/internal/batch"
	"github.com/danmuck/pathctl/internal/interchange"
	"github.com/danmuck/pathctl/internal/logging"
	"github.com/danmuck/pathctl/internal/pathfile"
	"github.com/danmuck/pathctl/internal/store"
)

// Config holds pathctl runtime settings.
type Config struct {
	MaxNameLen     int
	Compression    store.Compression
	Concurrency    int
	Format         interchange.Format
	LogLevel       string
	MaxEncodedSize int
}

// pathctl.toml key mapping to Config.
type fileConfig struct {
	MaxNameLen     int    `toml:"max_name_len"`
	Compression    string `toml:"compression"`
	Concurrency    int    `toml:"concurrency"`
	Format         string `toml:"format"`
	LogLevel       string `toml:"log_level"`
	MaxEncodedSize int    `toml:"max_encoded_size"`
}

func Default() Config {
	return Config{
		MaxNameLen:     pathfile.DefaultMaxNameLen,
		Compression:    store.CompressionNone,
		Concurrency:    batch.DefaultConcurrency,
		Format:         interchange.FormatYAML,
		MaxEncodedSize: pathfile.DefaultMaxEncodedSize,
	}
}

// Load decodes path and overlays the keys it defines on Default.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load pathctl config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return Config{}, fmt.Errorf("load pathctl config: unknown keys: %s", strings.Join(keys, ", "))
	}

	if meta.IsDefined("max_name_len") {
		cfg.MaxNameLen = raw.MaxNameLen
	}
	if meta.IsDefined("compression") {
		c, err := store.ParseCompression(raw.Compression)
		if err != nil {
			return Config{}, fmt.Errorf("load pathctl config: %w", err)
		}
		cfg.Compression = c
	}
	if meta.IsDefined("concurrency") {
		cfg.Concurrency = raw.Concurrency
	}
	if meta.IsDefined("format") {
		f, err := interchange.ParseFormat(raw.Format)
		if err != nil {
			return Config{}, fmt.Errorf("load pathctl config: %w", err)
		}
		cfg.Format = f
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("max_encoded_size") {
		cfg.MaxEncodedSize = raw.MaxEncodedSize
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("load pathctl config: %w", err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.MaxNameLen < 0 {
		return fmt.Errorf("max_name_len must be >= 0 (0 disables the cap)")
	}
	if _, err := store.ParseCompression(cfg.Compression.String()); err != nil {
		return err
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1")
	}
	if _, err := interchange.ParseFormat(string(cfg.Format)); err != nil {
		return err
	}
	if cfg.LogLevel != "" {
		if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
			return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
		}
	}
	if cfg.MaxEncodedSize <= 0 {
		return fmt.Errorf("max_encoded_size must be > 0")
	}
	return nil
}

func (c Config) Limits() pathfile.Limits {
	return pathfile.Limits{MaxNameLen: c.MaxNameLen}
}

func (c Config) LoadOptions() store.LoadOptions {
	return store.LoadOptions{
		Limits:         c.Limits(),
		MaxEncodedSize: c.MaxEncodedSize,
	}
}

func (c Config) SaveOptions() store.SaveOptions {
	return store.SaveOptions{
		Compression:    c.Compression,
		MaxEncodedSize: c.MaxEncodedSize,
	}
}

func (c Config) BatchOptions() batch.Options {
	return batch.Options{
		Concurrency: c.Concurrency,
		Load:        c.LoadOptions(),
	}
}

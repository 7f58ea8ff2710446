// Package store persists encoded path files on disk, optionally wrapped in
// a zstd or lz4 frame.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/pathctl/internal/pathfile"
)

var ErrTooLarge = errors.New("store: encoded file exceeds size limit")

// Info describes one stored file.
type Info struct {
	Path        string
	Compression Compression
	EncodedSize int // raw path file bytes
	StoredSize  int // bytes on disk
	Digest      Digest
	Stats       pathfile.Stats
}

type SaveOptions struct {
	Compression    Compression
	MaxEncodedSize int
}

type LoadOptions struct {
	Limits         pathfile.Limits
	MaxEncodedSize int
}

func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Limits:         pathfile.DefaultLimits(),
		MaxEncodedSize: pathfile.DefaultMaxEncodedSize,
	}
}

// Save encodes pf and writes it to path, replacing any existing file.
func Save(path string, pf *pathfile.PathFile, opts SaveOptions) (Info, error) {
	encoded, err := pathfile.Marshal(pf, opts.MaxEncodedSize)
	if err != nil {
		return Info{}, fmt.Errorf("store: encode %s: %w", path, err)
	}
	stored, err := compress(encoded, opts.Compression)
	if err != nil {
		return Info{}, fmt.Errorf("store: %s: %w", path, err)
	}
	if err := writeFileAtomic(path, stored, 0o644); err != nil {
		return Info{}, fmt.Errorf("store: write %s: %w", path, err)
	}

	info := Info{
		Path:        path,
		Compression: opts.Compression,
		EncodedSize: len(encoded),
		StoredSize:  len(stored),
		Digest:      DigestOf(encoded),
		Stats: pathfile.Stats{
			Size:      len(encoded),
			Paths:     len(pf.Paths),
			Waypoints: pf.WaypointCount(),
		},
	}
	log.Debug().
		Str("path", path).
		Str("compression", info.Compression.String()).
		Int("encoded", info.EncodedSize).
		Int("stored", info.StoredSize).
		Msg("saved path file")
	return info, nil
}

// Load reads path, infers compression from its extension and decodes it.
func Load(path string, opts LoadOptions) (*pathfile.PathFile, Info, error) {
	stored, err := os.ReadFile(path)
	if err != nil {
		return nil, Info{}, fmt.Errorf("store: read %s: %w", path, err)
	}
	pf, info, err := Decode(stored, CompressionFor(path), opts)
	if err != nil {
		return nil, Info{}, fmt.Errorf("store: %s: %w", path, err)
	}
	info.Path = path
	log.Debug().
		Str("path", path).
		Str("compression", info.Compression.String()).
		Int("paths", info.Stats.Paths).
		Int("waypoints", info.Stats.Waypoints).
		Msg("loaded path file")
	return pf, info, nil
}

// Decode unwraps and decodes stored bytes already in memory.
func Decode(stored []byte, c Compression, opts LoadOptions) (*pathfile.PathFile, Info, error) {
	maxSize := opts.MaxEncodedSize
	if maxSize <= 0 {
		maxSize = pathfile.DefaultMaxEncodedSize
	}
	encoded, err := decompress(stored, c, maxSize)
	if err != nil {
		return nil, Info{}, err
	}
	pf, stats, err := pathfile.DecodeWithLimits(encoded, opts.Limits)
	if err != nil {
		return nil, Info{}, err
	}
	if stats.MetadataBytes > 0 || stats.ReservedSlots > 0 || stats.Trailing > 0 {
		log.Debug().
			Int("metadata_bytes", stats.MetadataBytes).
			Int("reserved_slots", stats.ReservedSlots).
			Int("trailing", stats.Trailing).
			Msg("skipped unrecognized path file content")
	}
	return pf, Info{
		Compression: c,
		EncodedSize: len(encoded),
		StoredSize:  len(stored),
		Digest:      DigestOf(encoded),
		Stats:       stats,
	}, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pathctl-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(name, perm); err != nil {
		return err
	}
	return os.Rename(name, path)
}

package store

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how encoded bytes are wrapped on disk. Compressed
// files are standard zstd or lz4 frames around the raw path file bytes.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionZstd Compression = 1
	CompressionLZ4  Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("store: unknown compression %q", name)
	}
}

// Ext is the file extension CompressionFor maps back to c.
func (c Compression) Ext() string {
	switch c {
	case CompressionZstd:
		return ".zst"
	case CompressionLZ4:
		return ".lz4"
	default:
		return ""
	}
}

// CompressionFor infers compression from a file extension.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// zstdEncoder is shared; EncodeAll is safe for concurrent use.
var zstdEncoder *zstd.Encoder

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("store: zstd encoder initialization failed: " + err.Error())
	}
}

func compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("store: unsupported compression %s", c)
	}
}

// decompress unwraps data, refusing output larger than maxSize bytes.
func decompress(data []byte, c Compression, maxSize int) ([]byte, error) {
	switch c {
	case CompressionNone:
		if len(data) > maxSize {
			return nil, ErrTooLarge
		}
		return data, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		defer dec.Close()
		return readLimited(dec, maxSize, "zstd")
	case CompressionLZ4:
		return readLimited(lz4.NewReader(bytes.NewReader(data)), maxSize, "lz4")
	default:
		return nil, fmt.Errorf("store: unsupported compression %s", c)
	}
}

func readLimited(r io.Reader, maxSize int, name string) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, int64(maxSize)+1))
	if err != nil {
		return nil, fmt.Errorf("%s decompress: %w", name, err)
	}
	if len(out) > maxSize {
		return nil, ErrTooLarge
	}
	return out, nil
}

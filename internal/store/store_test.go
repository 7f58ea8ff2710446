package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/pathctl/internal/logging"
	"github.com/danmuck/pathctl/internal/pathfile"
)

func TestMain(m *testing.M) {
	logging.ConfigureTests()
	os.Exit(m.Run())
}

func sample() *pathfile.PathFile {
	wps := make([]pathfile.Waypoint, 0, 200)
	for i := 0; i < 200; i++ {
		wps = append(wps, pathfile.Waypoint{X: int16(i / 40), Y: 12, Speed: 100, Heading: 90, HeadingAvailable: true})
	}
	return &pathfile.PathFile{Paths: []pathfile.Path{
		{Name: "long", Waypoints: wps},
		{Name: "short", Waypoints: []pathfile.Waypoint{{X: 1, Y: 1, Speed: 1, Lookahead: 9, LookaheadAvailable: true}}},
	}}
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		raw     string
		want    Compression
		wantErr bool
	}{
		{"", CompressionNone, false},
		{"none", CompressionNone, false},
		{"ZSTD", CompressionZstd, false},
		{"lz4", CompressionLZ4, false},
		{"gzip", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseCompression(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
		assert.Equal(t, got, mustParse(t, got.String()))
	}
	assert.Equal(t, "unknown(9)", Compression(9).String())
}

func mustParse(t *testing.T, name string) Compression {
	t.Helper()
	c, err := ParseCompression(name)
	require.NoError(t, err)
	return c
}

func TestCompressionFor(t *testing.T) {
	assert.Equal(t, CompressionZstd, CompressionFor("a/b.path.zst"))
	assert.Equal(t, CompressionLZ4, CompressionFor("b.LZ4"))
	assert.Equal(t, CompressionNone, CompressionFor("b.path"))
	assert.Equal(t, CompressionNone, CompressionFor("noext"))
	for _, c := range []Compression{CompressionZstd, CompressionLZ4} {
		assert.Equal(t, c, CompressionFor("x.path"+c.Ext()))
	}
	assert.Empty(t, CompressionNone.Ext())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		file string
		c    Compression
	}{
		{"raw.path", CompressionNone},
		{"packed.path.zst", CompressionZstd},
		{"packed.path.lz4", CompressionLZ4},
	}

	var digests []Digest
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			pf := sample()
			saved, err := Save(path, pf, SaveOptions{Compression: tt.c})
			require.NoError(t, err)

			st, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, int64(saved.StoredSize), st.Size())

			loaded, info, err := Load(path, DefaultLoadOptions())
			require.NoError(t, err)
			assert.True(t, pf.Equal(loaded))
			assert.Equal(t, tt.c, info.Compression)
			assert.Equal(t, saved.EncodedSize, info.EncodedSize)
			assert.Equal(t, saved.Digest, info.Digest)
			assert.Equal(t, 2, info.Stats.Paths)
			assert.Equal(t, 201, info.Stats.Waypoints)
			if tt.c != CompressionNone {
				assert.Less(t, info.StoredSize, info.EncodedSize)
			}
			digests = append(digests, info.Digest)
		})
	}
	require.Len(t, digests, 3)
	assert.Equal(t, digests[0], digests[1])
	assert.Equal(t, digests[0], digests[2])
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := Save(filepath.Join(dir, "a.path"), sample(), SaveOptions{})
	require.NoError(t, err)
	_, err = Save(filepath.Join(dir, "a.path"), sample(), SaveOptions{Compression: CompressionZstd})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.path", entries[0].Name())
}

func TestSaveRejectsInvalidPathFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.path")
	_, err := Save(path, &pathfile.PathFile{Paths: []pathfile.Path{{Name: "a\x00b"}}}, SaveOptions{})
	require.ErrorIs(t, err, pathfile.ErrInvalidName)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoadTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cut.path")
	encoded, err := pathfile.Marshal(sample(), 0)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, encoded[:len(encoded)/2], 0o644))

	pf, _, err := Load(path, DefaultLoadOptions())
	require.ErrorIs(t, err, pathfile.ErrOutOfBounds)
	assert.Nil(t, pf)
}

func TestLoadEnforcesMaxEncodedSize(t *testing.T) {
	dir := t.TempDir()
	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		path := filepath.Join(dir, "big.path"+map[Compression]string{CompressionNone: "", CompressionZstd: ".zst", CompressionLZ4: ".lz4"}[c])
		saved, err := Save(path, sample(), SaveOptions{Compression: c})
		require.NoError(t, err)

		opts := DefaultLoadOptions()
		opts.MaxEncodedSize = saved.EncodedSize - 1
		_, _, err = Load(path, opts)
		require.ErrorIs(t, err, ErrTooLarge, c.String())

		opts.MaxEncodedSize = saved.EncodedSize
		_, _, err = Load(path, opts)
		require.NoError(t, err, c.String())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.path"), DefaultLoadOptions())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadCorruptCompressedFrame(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.path.zst")
	require.NoError(t, os.WriteFile(path, []byte("definitely not zstd"), 0o644))
	_, _, err := Load(path, DefaultLoadOptions())
	assert.Error(t, err)
}

func TestDigest(t *testing.T) {
	a := DigestOf([]byte{1, 2, 3})
	b := DigestOf([]byte{1, 2, 3})
	c := DigestOf([]byte{1, 2, 4})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a.String(), 64)
	assert.Equal(t, a.String()[:12], a.Short())
}

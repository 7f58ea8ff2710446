package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/pathctl/internal/interchange"
	"github.com/danmuck/pathctl/internal/pathfile"
	"github.com/danmuck/pathctl/internal/store"
)

const sampleYAML = `paths:
  - name: left
    waypoints:
      - {x: 10, y: 20, speed: 30}
      - {x: 11, y: 21, speed: 31, heading: 90}
  - name: right
    waypoints:
      - {x: -1, y: -2, speed: 5, lookahead: 12}
`

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeDoc(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "route.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	return path
}

func TestRunUsageErrors(t *testing.T) {
	cases := map[string][]string{
		"no command":        nil,
		"unknown command":   {"frobnicate"},
		"unknown flag":      {"--nope", "inspect", "x"},
		"bad log level":     {"--log-level", "loud", "inspect", "x"},
		"decode no file":    {"decode"},
		"encode no output":  {"encode", "doc.yaml"},
		"inspect no files":  {"inspect"},
		"config no sub":     {"config"},
		"bad format":        {"decode", "--format", "json", "x.path"},
		"conflicting codec": {"encode", "doc.yaml", "-o", "x.lz4", "--compression", "zstd"},
	}
	for name, args := range cases {
		if code, _, _ := runCLI(t, args...); code != exitUsage {
			t.Fatalf("%s: expected exit %d, got %d", name, exitUsage, code)
		}
	}
}

func TestRunHelp(t *testing.T) {
	code, _, stderr := runCLI(t, "--help")
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(stderr, "verify") {
		t.Fatalf("usage missing commands: %s", stderr)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir)
	out := filepath.Join(dir, "route.path")

	code, stdout, stderr := runCLI(t, "encode", doc, "-o", out, "--compression", "zstd")
	if code != exitOK {
		t.Fatalf("encode exit %d: %s", code, stderr)
	}
	stored := out + ".zst"
	if !strings.Contains(stdout, stored) || !strings.Contains(stdout, "2 paths, 3 waypoints") {
		t.Fatalf("unexpected encode output: %s", stdout)
	}
	if _, err := os.Stat(stored); err != nil {
		t.Fatalf("expected %s: %v", stored, err)
	}

	code, stdout, stderr = runCLI(t, "decode", stored)
	if code != exitOK {
		t.Fatalf("decode exit %d: %s", code, stderr)
	}
	want, err := interchange.UnmarshalYAML([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse sample: %v", err)
	}
	got, err := interchange.UnmarshalYAML([]byte(stdout))
	if err != nil {
		t.Fatalf("parse decode output: %v\n%s", err, stdout)
	}
	if !want.PathFile().Equal(got.PathFile()) {
		t.Fatalf("round trip mismatch:\n%s", stdout)
	}
}

func TestDecodeToCBORFile(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "route.path")
	pf := &pathfile.PathFile{Paths: []pathfile.Path{{Name: "a", Waypoints: []pathfile.Waypoint{{X: 1, Y: 2, Speed: 3}}}}}
	if _, err := store.Save(raw, pf, store.SaveOptions{}); err != nil {
		t.Fatalf("save: %v", err)
	}

	out := filepath.Join(dir, "route.cbor")
	if code, _, stderr := runCLI(t, "decode", raw, "-o", out); code != exitOK {
		t.Fatalf("decode exit %d: %s", code, stderr)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	doc, err := interchange.UnmarshalCBOR(data)
	if err != nil {
		t.Fatalf("output is not cbor: %v", err)
	}
	if !pf.Equal(doc.PathFile()) {
		t.Fatalf("cbor output mismatch")
	}
}

func TestInspectAndVerifyExitCodes(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.path")
	if code, _, stderr := runCLI(t, "encode", writeDoc(t, dir), "-o", good); code != exitOK {
		t.Fatalf("encode exit %d: %s", code, stderr)
	}
	bad := filepath.Join(dir, "bad.path")
	if err := os.WriteFile(bad, []byte{0x00, 0x01}, 0o644); err != nil {
		t.Fatalf("write bad file: %v", err)
	}

	code, stdout, _ := runCLI(t, "inspect", good)
	if code != exitOK || !strings.Contains(stdout, "1 files, 0 failed, 2 paths, 3 waypoints") {
		t.Fatalf("inspect good: exit %d\n%s", code, stdout)
	}

	code, stdout, _ = runCLI(t, "verify", good, bad)
	if code != exitFailure {
		t.Fatalf("verify with bad file: expected exit %d, got %d", exitFailure, code)
	}
	if !strings.Contains(stdout, "ok   "+good) || !strings.Contains(stdout, "FAIL "+bad) {
		t.Fatalf("unexpected verify output: %s", stdout)
	}
}

func TestConfigFlowsIntoCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "pathctl.toml")
	if err := os.WriteFile(cfgPath, []byte("compression = \"lz4\"\nformat = \"cbor\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out := filepath.Join(dir, "route.path")
	code, _, stderr := runCLI(t, "--config", cfgPath, "encode", writeDoc(t, dir), "-o", out)
	if code != exitOK {
		t.Fatalf("encode exit %d: %s", code, stderr)
	}
	if _, err := os.Stat(out + ".lz4"); err != nil {
		t.Fatalf("expected lz4 output: %v", err)
	}

	code, stdout, stderr := runCLI(t, "--config", cfgPath, "decode", out+".lz4")
	if code != exitOK {
		t.Fatalf("decode exit %d: %s", code, stderr)
	}
	if _, err := interchange.UnmarshalCBOR([]byte(stdout)); err != nil {
		t.Fatalf("expected cbor output from config format: %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pathctl.toml")

	if code, _, stderr := runCLI(t, "config", "init", "-o", path); code != exitOK {
		t.Fatalf("config init exit %d: %s", code, stderr)
	}
	if code, _, _ := runCLI(t, "config", "init", "-o", path); code != exitFailure {
		t.Fatalf("expected init without --force to fail, got %d", code)
	}
	if code, _, stderr := runCLI(t, "config", "init", "-o", path, "--force"); code != exitOK {
		t.Fatalf("config init --force exit %d: %s", code, stderr)
	}
	if code, stdout, stderr := runCLI(t, "config", "validate", path); code != exitOK || !strings.Contains(stdout, "validated") {
		t.Fatalf("config validate exit %d: %s", code, stderr)
	}

	broken := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(broken, []byte("concurrency = 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if code, _, _ := runCLI(t, "config", "validate", broken); code != exitFailure {
		t.Fatalf("expected invalid config to fail, got %d", code)
	}
}

func TestResolveOutput(t *testing.T) {
	cases := []struct {
		output   string
		flag     string
		fallback store.Compression
		want     string
		wantC    store.Compression
	}{
		{"a.path", "", store.CompressionNone, "a.path", store.CompressionNone},
		{"a.path", "zstd", store.CompressionNone, "a.path.zst", store.CompressionZstd},
		{"a.path", "", store.CompressionLZ4, "a.path.lz4", store.CompressionLZ4},
		{"a.path.zst", "", store.CompressionLZ4, "a.path.zst", store.CompressionZstd},
		{"a.path.lz4", "lz4", store.CompressionNone, "a.path.lz4", store.CompressionLZ4},
		{"a.path", "none", store.CompressionZstd, "a.path", store.CompressionNone},
	}
	for _, tc := range cases {
		got, c, err := resolveOutput(tc.output, tc.flag, tc.fallback)
		if err != nil {
			t.Fatalf("resolveOutput(%q, %q): %v", tc.output, tc.flag, err)
		}
		if got != tc.want || c != tc.wantC {
			t.Fatalf("resolveOutput(%q, %q) = %q, %v want %q, %v", tc.output, tc.flag, got, c, tc.want, tc.wantC)
		}
	}
}

package config

import (
	"fmt"
	"os"
)

func Template() string {
	return defaultTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(defaultTemplate), 0o644)
}

const defaultTemplate = `# pathctl configuration

# Longest accepted path name in bytes, terminator included. 0 disables the cap.
max_name_len = 1024

# Compression for files written by "pathctl encode": none, zstd or lz4.
# Reads pick the codec from the file extension (.zst, .lz4).
compression = "none"

# Files processed in parallel by inspect and verify.
concurrency = 4

# Output format for "pathctl decode": yaml or cbor.
format = "yaml"

# trace, debug, info, warn, error or off. Empty keeps the default.
log_level = ""

# Largest encoded path file pathctl will produce or accept (64 MiB).
max_encoded_size = 67108864
`

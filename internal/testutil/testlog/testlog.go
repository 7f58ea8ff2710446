package testlog

import (
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/pathctl/internal/logging"
)

// Start configures test logging and marks where t's output begins.
func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	log.Info().Str("test", t.Name()).Msg("start")
}

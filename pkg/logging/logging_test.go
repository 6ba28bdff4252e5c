// Test Type: Unit Test
// Description: Tests for the logging package - logger setup and contextual loggers

package logging_test

import (
	"testing"

	"github.com/arthur-debert/syncpack/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetupLogger_VerbosityLevels(t *testing.T) {
	tests := []struct {
		verbosity int
		level     zerolog.Level
	}{
		{0, zerolog.WarnLevel},
		{1, zerolog.InfoLevel},
		{2, zerolog.DebugLevel},
		{3, zerolog.TraceLevel},
		{9, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		logging.SetupLogger(tt.verbosity)
		assert.Equal(t, tt.level, zerolog.GlobalLevel())
	}
}

func TestGetLogger(t *testing.T) {
	logging.SetupLogger(0)
	logger := logging.GetLogger("reconcile")
	// Contextual loggers must be usable without further setup.
	logger.Debug().Msg("no-op at warn level")
}

func TestLogOperationStart(t *testing.T) {
	logger := logging.GetLogger("test")
	done := logging.LogOperationStart(logger, "scan")
	assert.NotPanics(t, done)
}

package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/fleetsync/vinsync-agent/internal/utils"
)

// TestBootstrapLogger verifies the pre-config logger is usable for fatal-path
// event chains once bound to a variable.
func TestBootstrapLogger(t *testing.T) {
	logger := bootstrapLogger()

	event := logger.Info()
	assert.NotNil(t, event)
	event.Discard()
}

// TestNewLogger_LevelParsing verifies config levels map onto zerolog levels,
// with info as the fallback for unknown or empty values.
func TestNewLogger_LevelParsing(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"not-a-level", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			config := &utils.Config{}
			config.Log.Level = tt.level

			logger := newLogger(config)

			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

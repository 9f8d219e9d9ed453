package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(&buf, "warn", true)

	log.Debug("debug %d", 1)
	log.Info("info %d", 2)
	log.Warn("warn %d", 3)
	log.Error("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "warn 3")
	assert.Contains(t, out, "error 4")
}

func TestLogger_InfoRequiresVerbose(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter(&buf, "debug", false).Info("hidden")
	assert.Empty(t, buf.String())

	NewLoggerWithWriter(&buf, "debug", true).Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_Progress(t *testing.T) {
	var out bytes.Buffer
	quiet := NewLoggerWithWriter(&bytes.Buffer{}, "info", false).WithProgressWriter(&out)

	quiet.Progress("🔍", "step %d", 1)
	assert.Empty(t, out.String())

	quiet.ProgressAlways("✅", "done in %dms", 12)
	assert.Equal(t, "✅ done in 12ms\n", out.String())
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter(&buf, "info", false).With("file", "scan.png").Warn("slow")
	assert.Contains(t, buf.String(), `"file":"scan.png"`)
}

func TestParseLogLevel_DefaultsToInfo(t *testing.T) {
	assert.Equal(t, parseLogLevel("info"), parseLogLevel("nonsense"))
	assert.Equal(t, parseLogLevel("debug"), parseLogLevel("DEBUG"))
}

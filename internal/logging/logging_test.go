package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHidesDebugUnlessVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "ask", false)

	logger.Debug("noisy detail")
	logger.Warn("log rotate failed", "path", "/tmp/x")

	out := buf.String()
	assert.NotContains(t, out, "noisy detail")
	assert.Contains(t, out, "log rotate failed")
	assert.Contains(t, out, "path=/tmp/x")
	assert.Contains(t, out, "ask")
}

func TestNewVerboseShowsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "asklog", true)

	logger.Debug("resolved binary", "path", "/opt/ask")

	assert.Contains(t, buf.String(), "resolved binary")
}

package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l := NewIsolatedLogger(path)

	l.Info("Audit", "turn evaluated", map[string]interface{}{"action": "proceed"})
	l.Debug("Audit", "below file level", nil)
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"message":"turn evaluated"`)
	assert.Contains(t, lines[0], `"module":"Audit"`)
	assert.Contains(t, lines[0], `"action":"proceed"`)
}

func TestNopLogger(t *testing.T) {
	var l ILogger = NewNopLogger()
	l.Error("Test", "ignored", map[string]interface{}{"error": "boom"})
	assert.NoError(t, l.Sync())
}

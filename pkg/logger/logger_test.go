package logger

import (
	"bytes"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short", 10))
	assert.Equal(t, "a b", Preview("a\nb", 10))
	assert.Equal(t, "abcde...", Preview("abcdefgh", 5))
	assert.Equal(t, "abcde", Preview("abcde", 5))
}

func TestPreviewCutsOnRuneBoundary(t *testing.T) {
	got := Preview("Résumé ünïcödé", 2)
	assert.Equal(t, "Ré...", got)
	assert.True(t, utf8.ValidString(got))
}

func TestNewLoggerToRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, false)
	log.Debug("hidden")
	log.Info("shown")
	_ = log.Sync()

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

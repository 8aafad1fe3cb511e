package logger

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level    string
		format   string
		expected zapcore.Level
	}{
		{"debug", "console", zapcore.DebugLevel},
		{"info", "json", zapcore.InfoLevel},
		{"warn", "json", zapcore.WarnLevel},
		{"error", "console", zapcore.ErrorLevel},
		{"bogus", "json", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(tt.level, tt.format)
			assert.NotNil(t, l)
			assert.True(t, l.Core().Enabled(tt.expected))
			if tt.expected > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.expected-1))
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...(truncated)", Truncate("abcdef", 3))
	assert.Equal(t, "abcdef", Truncate("abcdef", 0))
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "h...(truncated)", Truncate("héllo", 2))
	assert.Equal(t, "hé...(truncated)", Truncate("héllo", 3))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", Clip("abc", 5))
	assert.Equal(t, "ab", Clip("abc", 2))
	assert.Equal(t, "", Clip("abc", 0))
	assert.Equal(t, "", Clip("日本", 2))
	assert.Equal(t, "日", Clip("日本", 4))

	long := strings.Repeat("€", 1000)
	for _, max := range []int{1, 2, 3, 100, 1001, 2999} {
		got := Clip(long, max)
		assert.True(t, utf8.ValidString(got), "max %d", max)
		assert.LessOrEqual(t, len(got), max)
		assert.Greater(t, len(got), max-utf8.UTFMax)
	}
}

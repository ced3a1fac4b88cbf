package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
		ok   bool
	}{
		{"debug", zapcore.DebugLevel, true},
		{"info", zapcore.InfoLevel, true},
		{"warn", zapcore.WarnLevel, true},
		{"error", zapcore.ErrorLevel, true},
		{"verbose", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseLevel(tt.in)
			assert.Equal(t, tt.ok, ValidLevel(tt.in))
			if !tt.ok {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.Equal(t, tt.want, *got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	for _, pretty := range []bool{true, false} {
		l := New("debug", pretty)
		assert.NotPanics(t, func() {
			l.Debug("debug line", String("k", "v"), Int("n", 1), Bool("b", true))
			l.Infof("info %d", 2)
		})
		_ = l.Sync()
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() {
		l.Error("dropped", Error(assert.AnError))
		l.Warnf("dropped %s", "too")
	})
	assert.NoError(t, l.Sync())
}

package dyte

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level LogLevel
		name  string
		slog  slog.Level
	}{
		{LogError, "error", slog.LevelError},
		{LogWarn, "warning", slog.LevelWarn},
		{LogInfo, "info", slog.LevelInfo},
		{LogDebug, "debug", slog.LevelDebug},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.level.String())
		assert.Equal(t, tt.slog, tt.level.Slog())
		assert.Equal(t, tt.level, nativeLevelFor(tt.slog))
	}

	assert.Equal(t, LogError, nativeLevelFor(slog.LevelError+4))
	assert.Equal(t, LogDebug, nativeLevelFor(slog.LevelDebug-4))
}

func TestSetLogger(t *testing.T) {
	l, _ := bufferLogger()
	SetLogger(l)
	t.Cleanup(func() { SetLogger(nil) })

	assert.Same(t, l, logger())

	o := buildOptions(nil)
	assert.Same(t, l, o.logger)
}

func TestNativeLogForwarder(t *testing.T) {
	l, buf := bufferLogger()

	fwd := nativeLogForwarder(l)
	fwd(LogWarn, "audio device reset")
	fwd(LogDebug, "frame queued")

	out := buf.String()
	assert.Contains(t, out, `level=WARN msg="audio device reset" source=native`)
	assert.Contains(t, out, `level=DEBUG msg="frame queued" source=native`)
}

func TestMeetingInfoLogValue(t *testing.T) {
	l, buf := bufferLogger()
	info := &MeetingInfo{AuthToken: "secret", EnableAudio: true, BaseURL: "https://x"}

	l.Info("init", "meeting", info)

	out := buf.String()
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "meeting.auth_token=[redacted]")
	assert.Contains(t, out, "meeting.audio=true")
	assert.Contains(t, out, "meeting.base_url=https://x")
}

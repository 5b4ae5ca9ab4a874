package envconfig

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"false": slog.LevelInfo,
		"1":     slog.LevelDebug,
		"true":  slog.LevelDebug,
		"2":     slog.Level(-8),
	}

	for value, want := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("TRACKBENCH_DEBUG", value)
			assert.Equal(t, want, LogLevel())
		})
	}
}

func TestCooldown(t *testing.T) {
	t.Setenv("TRACKBENCH_COOLDOWN", "")
	assert.Equal(t, 3*time.Second, Cooldown(3*time.Second))

	t.Setenv("TRACKBENCH_COOLDOWN", "250ms")
	assert.Equal(t, 250*time.Millisecond, Cooldown(3*time.Second))

	t.Setenv("TRACKBENCH_COOLDOWN", "soon")
	assert.Equal(t, time.Second, Cooldown(time.Second))

	t.Setenv("TRACKBENCH_COOLDOWN", "-1s")
	assert.Equal(t, time.Second, Cooldown(time.Second))
}

func TestBool(t *testing.T) {
	t.Setenv("TRACKBENCH_NO_GPU", "")
	assert.False(t, NoGPU())

	t.Setenv("TRACKBENCH_NO_GPU", "1")
	assert.True(t, NoGPU())

	t.Setenv("TRACKBENCH_NO_GPU", "'false'")
	assert.False(t, NoGPU())

	t.Setenv("TRACKBENCH_NO_GPU", "yes please")
	assert.True(t, NoGPU())
}

func TestValues(t *testing.T) {
	t.Setenv("ONNXRUNTIME_SHARED_LIBRARY_PATH", "/opt/ort/libonnxruntime.so")
	vals := Values()
	assert.Equal(t, "/opt/ort/libonnxruntime.so", vals["ONNXRUNTIME_SHARED_LIBRARY_PATH"])
	assert.Contains(t, vals, "TRACKBENCH_DEBUG")
}

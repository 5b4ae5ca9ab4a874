// Package envconfig reads trackbench settings from the environment.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Var returns an environment variable stripped of whitespace and quotes.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// LogLevel returns the log level, raised to debug by TRACKBENCH_DEBUG.
//
// A numeric value lowers the level further, following slog's spacing of 4.
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("TRACKBENCH_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Cooldown returns the pause inserted between trackers.
// Configurable via TRACKBENCH_COOLDOWN (Go duration, e.g. "500ms").
func Cooldown(defaultValue time.Duration) time.Duration {
	if s := Var("TRACKBENCH_COOLDOWN"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d < 0 {
			slog.Warn("invalid TRACKBENCH_COOLDOWN, using default", "value", s, "default", defaultValue)
			return defaultValue
		}
		return d
	}
	return defaultValue
}

// BoolWithDefault returns a reader for a boolean variable.
// Unparseable non-empty values count as true.
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool returns a reader for a boolean variable that defaults to false.
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// String returns a reader for a string variable.
func String(k string) func() string {
	return func() string {
		return Var(k)
	}
}

var (
	// NoGPU disables GPU metric collection even when NVML is present.
	NoGPU = Bool("TRACKBENCH_NO_GPU")
	// ONNXRuntimeLibrary is the path to the ONNX Runtime shared library used to probe checkpoints.
	ONNXRuntimeLibrary = String("ONNXRUNTIME_SHARED_LIBRARY_PATH")
)

// EnvVar describes one supported environment variable.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every supported variable with its current value.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"TRACKBENCH_DEBUG":                {"TRACKBENCH_DEBUG", LogLevel(), "Show additional debug information (e.g. TRACKBENCH_DEBUG=1)"},
		"TRACKBENCH_NO_GPU":               {"TRACKBENCH_NO_GPU", NoGPU(), "Disable GPU metrics"},
		"TRACKBENCH_COOLDOWN":             {"TRACKBENCH_COOLDOWN", Cooldown(3 * time.Second), "Pause between trackers (default 3s)"},
		"ONNXRUNTIME_SHARED_LIBRARY_PATH": {"ONNXRUNTIME_SHARED_LIBRARY_PATH", ONNXRuntimeLibrary(), "ONNX Runtime library used to probe tracker checkpoints"},
	}
}

// Values returns the current variables formatted as strings.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

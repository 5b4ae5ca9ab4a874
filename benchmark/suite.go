package benchmark

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

// RunAll benchmarks every configured tracker in order and writes the result
// files to the output directory.
//
// A tracker that fails, including one that panics, is logged and left out of
// the results; the remaining trackers still run. Trackers are separated by the
// configured cool-down.
//
// Arguments:
// - ctx: Cancels the run between frames and during cool-down.
//
// Returns:
// - []*Result: Completed results, in configuration order.
// - error: A context error, or an error writing the result files.
func (h *Harness) RunAll(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, 0, len(h.cfg.Trackers))

	for i, tc := range h.cfg.Trackers {
		result, err := h.runSafely(ctx, tc.Name)
		switch {
		case ctx.Err() != nil:
			return results, errors.Wrap(ctx.Err(), "benchmark interrupted")
		case err != nil:
			slog.Error("tracker failed", "tracker", tc.Name, "error", err, "stack", fmt.Sprintf("%+v", err))
		default:
			results = append(results, result)
		}

		if i < len(h.cfg.Trackers)-1 && h.cfg.Cooldown.Duration > 0 {
			slog.Info("cooling down", "duration", h.cfg.Cooldown.Duration)
			if err := h.sleep(ctx, h.cfg.Cooldown.Duration); err != nil {
				return results, errors.Wrap(err, "benchmark interrupted")
			}
		}
	}

	if len(results) == 0 {
		slog.Warn("no tracker completed")
	}

	if _, err := WriteResults(h.cfg.OutputDir, results); err != nil {
		return results, err
	}

	return results, nil
}

// runSafely runs one tracker and turns a panic into an error.
func (h *Harness) runSafely(ctx context.Context, name string) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("tracker %s panicked: %v", name, r)
			result = nil
		}
	}()

	return h.RunTracker(ctx, name)
}

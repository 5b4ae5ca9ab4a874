package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nvr-ai/go-trackbench/benchmark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCLI()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSynthCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "synth", "--output", dir, "--frames", "60", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "SiamRPN++")

	for _, name := range []string{benchmark.SummaryCSVName, benchmark.FullJSONName, "CSRT_frame_data.csv", "DiMP_frame_data.csv"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestPlotCommand(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "auc_compare.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"sequence,auc_update,auc_pure,success50_update,success50_pure,precision20_update,precision20_pure,fps_update,fps_pure\n"+
			"Bolt,0.5,0.4,0.6,0.6,0.7,0.65,20,25\n"+
			"Car4,0.3,0.35,0.4,0.42,0.5,0.5,21,26\n"+
			"OVERALL,0.4,0.38,0.5,0.51,0.6,0.58,20.5,25.5\n"), 0o644))

	plots := filepath.Join(dir, "plots")
	_, err := execute(t, "plot", "--csv", csvPath, "--out", plots)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(plots, "*.png"))
	require.NoError(t, err)
	assert.Len(t, matches, 6)

	_, err = execute(t, "plot", "--csv", filepath.Join(dir, "missing.csv"), "--out", plots)
	assert.Error(t, err)
}

func TestBuildConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "bench.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("video: clip.mp4\nframes: 50\ncooldown: 1s\n"), 0o644))

	cmd := newRunCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", configPath,
		"--frames", "25",
		"--cooldown", "0s",
		"--trackers", "dimp,CSRT",
		"--no-gpu",
	}))

	cfg, err := buildConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", cfg.Video)
	assert.Equal(t, 25, cfg.Frames)
	assert.Equal(t, time.Duration(0), cfg.Cooldown.Duration)
	assert.True(t, cfg.DisableGPU)
	require.Len(t, cfg.Trackers, 2)
	assert.Equal(t, "DiMP", cfg.Trackers[0].Name)
	assert.Equal(t, "CSRT", cfg.Trackers[1].Name)
	assert.Equal(t, benchmark.DefaultOutputDir, cfg.OutputDir)
}

func TestBuildConfigCooldownPrecedence(t *testing.T) {
	t.Setenv("TRACKBENCH_COOLDOWN", "5s")
	dir := t.TempDir()
	configPath := filepath.Join(dir, "bench.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("cooldown: 1s\n"), 0o644))

	cmd := newRunCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", configPath}))
	cfg, err := buildConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Cooldown.Duration)

	cmd = newRunCmd()
	require.NoError(t, cmd.ParseFlags(nil))
	cfg, err = buildConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Cooldown.Duration)

	cmd = newRunCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", configPath, "--cooldown", "2s"}))
	cfg, err = buildConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Cooldown.Duration)
}

func TestBuildConfigErrors(t *testing.T) {
	cmd := newRunCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--trackers", "KCF"}))
	_, err := buildConfig(cmd)
	assert.Error(t, err)

	cmd = newRunCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--frames", "0"}))
	_, err = buildConfig(cmd)
	assert.Error(t, err)

	cmd = newRunCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "missing.json")}))
	_, err = buildConfig(cmd)
	assert.Error(t, err)
}

func TestMatlabBatch(t *testing.T) {
	assert.Equal(t, "cd('/opt/bench/scripts'); analyze_hardware_matlab", matlabBatch("/opt/bench/scripts"))
	assert.Equal(t, "cd('/tmp/o''neil'); analyze_hardware_matlab", matlabBatch("/tmp/o'neil"))
}

func TestEnvCommand(t *testing.T) {
	t.Setenv("TRACKBENCH_NO_GPU", "1")
	out, err := execute(t, "env")
	require.NoError(t, err)
	assert.Contains(t, out, "TRACKBENCH_NO_GPU=true")
}

func TestVerboseLogsEnvironment(t *testing.T) {
	t.Cleanup(func() { setupLogging(io.Discard, false) })
	t.Setenv("TRACKBENCH_COOLDOWN", "750ms")

	out, err := execute(t, "env", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "msg=environment")
	assert.Contains(t, out, "TRACKBENCH_COOLDOWN:750ms")
}

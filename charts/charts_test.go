package charts

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const comparisonCSV = `sequence,auc_update,auc_pure,success50_update,success50_pure,precision20_update,precision20_pure,fps_update,fps_pure,notes
Basketball,0.61,0.58,0.72,0.70,0.80,0.79,24.1,30.2,x
Car1,0.44,0.44,0.51,0.55,0.60,0.58,26.0,31.5,y
Deer,0.70,0.65,0.81,0.80,0.90,0.88,22.4,29.9,z
OVERALL,0.58,0.56,0.68,0.68,0.77,0.75,24.2,30.5,
`

func TestReadComparison(t *testing.T) {
	c, err := ReadComparison(strings.NewReader(comparisonCSV))
	require.NoError(t, err)

	require.NotNil(t, c.Overall)
	assert.Equal(t, 0.58, c.Overall.Update["auc"])
	assert.Equal(t, 30.5, c.Overall.Pure["fps"])

	require.Len(t, c.Sequences, 3)
	assert.Equal(t, "Car1", c.Sequences[1].Sequence)
	assert.InDelta(t, -0.04, c.Sequences[1].Delta("success50"), 1e-12)

	pure, update := c.Series("auc")
	assert.Equal(t, []float64{0.58, 0.44, 0.65}, pure)
	assert.Equal(t, []float64{0.61, 0.44, 0.70}, update)

	wins, ties := ScatterCounts(pure, update)
	assert.Equal(t, 2, wins)
	assert.Equal(t, 1, ties)
}

func TestReadComparisonErrors(t *testing.T) {
	_, err := ReadComparison(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ReadComparison(strings.NewReader("sequence,auc_update,auc_pure\nA,1,2\n"))
	assert.ErrorContains(t, err, "success50_update")

	bad := strings.Replace(comparisonCSV, "0.61", "n/a", 1)
	_, err = ReadComparison(strings.NewReader(bad))
	assert.ErrorContains(t, err, "line 2")
}

func TestReadComparisonEmptyCells(t *testing.T) {
	partial := strings.Replace(comparisonCSV, "Car1,0.44,0.44,", "Car1,,0.44,", 1)
	partial = strings.Replace(partial, "OVERALL,0.58,", "OVERALL,,", 1)
	c, err := ReadComparison(strings.NewReader(partial))
	require.NoError(t, err)

	assert.True(t, math.IsNaN(c.Sequences[1].Update["auc"]))
	pure, update := c.Series("auc")
	assert.Equal(t, []float64{0.58, 0.65}, pure)
	assert.Equal(t, []float64{0.61, 0.70}, update)

	// the other metrics keep every sequence
	pure, _ = c.Series("fps")
	assert.Len(t, pure, 3)

	dir := t.TempDir()
	written, err := Render(c, dir)
	require.NoError(t, err)
	assert.Len(t, written, 6)
}

func pngFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.png"))
	require.NoError(t, err)
	return matches
}

func TestRender(t *testing.T) {
	c, err := ReadComparison(strings.NewReader(comparisonCSV))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "plots")
	written, err := Render(c, dir)
	require.NoError(t, err)

	assert.Len(t, written, 6)
	assert.Len(t, pngFiles(t, dir), 6)
	for _, name := range []string{"overall_bar.png", "auc_scatter.png", "success50_scatter.png", "precision20_scatter.png", "fps_scatter.png", "delta_hist.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}

func TestRenderOverallOnly(t *testing.T) {
	c, err := ReadComparison(strings.NewReader(strings.SplitN(comparisonCSV, "\n", 2)[0] + "\nOVERALL,1,1,1,1,1,1,1,1,\n"))
	require.NoError(t, err)
	require.Empty(t, c.Sequences)

	dir := t.TempDir()
	_, err = Render(c, dir)
	require.NoError(t, err)
	assert.Len(t, pngFiles(t, dir), 6)
}

func TestRenderWithoutOverall(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(comparisonCSV), "\n")
	c, err := ReadComparison(strings.NewReader(strings.Join(lines[:len(lines)-1], "\n")))
	require.NoError(t, err)
	assert.Nil(t, c.Overall)

	dir := t.TempDir()
	written, err := Render(c, dir)
	require.NoError(t, err)
	assert.Len(t, written, 5)
	assert.NoFileExists(t, filepath.Join(dir, OverallBarName))
}

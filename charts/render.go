package charts

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Output file names.
const (
	OverallBarName = "overall_bar.png"
	DeltaHistName  = "delta_hist.png"
	scatterSuffix  = "_scatter.png"
)

// DPI of every rendered image.
const DPI = 150

const histogramBins = 30

var (
	histogramColor = color.RGBA{R: 0x4c, G: 0x72, B: 0xb0, A: 0xd9}
	referenceColor = color.Gray{Y: 128}
)

// ScatterName returns the scatter file name for metric.
func ScatterName(metric string) string {
	return metric + scatterSuffix
}

// Render writes the comparison plots to outDir.
//
// It draws a grouped bar chart of the OVERALL row, one update-vs-pure scatter
// per metric and a 2x2 grid of delta histograms. Without an OVERALL row the
// bar chart is skipped with a warning. Empty sequence lists produce empty axes.
//
// Arguments:
// - c: Parsed comparison table.
// - outDir: Output directory; created when missing.
//
// Returns:
// - []string: Paths of the written images.
// - error: Error if a plot cannot be built or saved.
func Render(c *Comparison, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create plot directory")
	}

	var written []string

	if c.Overall != nil {
		path := filepath.Join(outDir, OverallBarName)
		if err := renderOverallBar(*c.Overall, path); err != nil {
			return written, err
		}
		written = append(written, path)
	} else {
		slog.Warn("no OVERALL row, skipping bar chart")
	}

	for _, m := range Metrics {
		path := filepath.Join(outDir, ScatterName(m.Key))
		if err := renderScatter(c, m, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	path := filepath.Join(outDir, DeltaHistName)
	if err := renderDeltaHistograms(c, path); err != nil {
		return written, err
	}
	written = append(written, path)

	for _, p := range written {
		slog.Info("plot saved", "path", p)
	}
	return written, nil
}

func renderOverallBar(row Row, path string) error {
	update := make(plotter.Values, len(Metrics))
	pure := make(plotter.Values, len(Metrics))
	labels := make([]string, len(Metrics))
	for i, m := range Metrics {
		update[i] = zeroIfNaN(row.Update[m.Key])
		pure[i] = zeroIfNaN(row.Pure[m.Key])
		labels[i] = m.Label
	}

	p := plot.New()
	p.Title.Text = "Overall comparison"
	p.Y.Label.Text = "Score"
	p.Add(yGrid())

	width := vg.Points(20)
	updateBars, err := plotter.NewBarChart(update, width)
	if err != nil {
		return errors.Wrap(err, "failed to build update bars")
	}
	updateBars.Color = plotutil.Color(0)
	updateBars.LineStyle.Width = 0
	updateBars.Offset = -width / 2

	pureBars, err := plotter.NewBarChart(pure, width)
	if err != nil {
		return errors.Wrap(err, "failed to build pure bars")
	}
	pureBars.Color = plotutil.Color(1)
	pureBars.LineStyle.Width = 0
	pureBars.Offset = width / 2

	p.Add(updateBars, pureBars)
	p.Legend.Add("update", updateBars)
	p.Legend.Add("pure", pureBars)
	p.Legend.Top = true
	p.NominalX(labels...)

	return save(path, 6*vg.Inch, 4*vg.Inch, p)
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// ScatterCounts returns how many sequences have update > pure, and how many tie.
func ScatterCounts(pure, update []float64) (wins, ties int) {
	for i := range pure {
		switch {
		case update[i] > pure[i]:
			wins++
		case update[i] == pure[i]:
			ties++
		}
	}
	return wins, ties
}

func renderScatter(c *Comparison, m Metric, path string) error {
	pure, update := c.Series(m.Key)
	wins, ties := ScatterCounts(pure, update)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s per sequence", m.Label)
	p.X.Label.Text = fmt.Sprintf("%s (pure)", m.Label)
	p.Y.Label.Text = fmt.Sprintf("%s (update)", m.Label)
	p.Add(plotter.NewGrid())

	lo, hi := 0.0, 1.0
	if len(pure) > 0 {
		lo = math.Min(floats.Min(pure), floats.Min(update))
		hi = math.Max(floats.Max(pure), floats.Max(update))

		points := make(plotter.XYs, len(pure))
		for i := range pure {
			points[i] = plotter.XY{X: pure[i], Y: update[i]}
		}
		scatter, err := plotter.NewScatter(points)
		if err != nil {
			return errors.Wrapf(err, "failed to build %s scatter", m.Key)
		}
		scatter.GlyphStyle.Radius = vg.Points(2.5)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Color = plotutil.Color(0)
		p.Add(scatter)

		diagonal, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
		if err != nil {
			return errors.Wrapf(err, "failed to build %s reference line", m.Key)
		}
		diagonal.LineStyle.Color = referenceColor
		diagonal.LineStyle.Width = vg.Points(1)
		diagonal.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(diagonal)
	} else {
		p.X.Min, p.X.Max = lo, hi
		p.Y.Min, p.Y.Max = lo, hi
	}

	label, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: lo, Y: hi}},
		Labels: []string{fmt.Sprintf("update>pure: %d/%d | ties: %d", wins, len(pure), ties)},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to build %s label", m.Key)
	}
	p.Add(label)

	return save(path, 5*vg.Inch, 5*vg.Inch, p)
}

func deltaPlot(c *Comparison, m Metric) (*plot.Plot, error) {
	deltas := make(plotter.Values, 0, len(c.Sequences))
	for _, row := range c.Sequences {
		if d := row.Delta(m.Key); !math.IsNaN(d) {
			deltas = append(deltas, d)
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s delta (update - pure)", m.Label)
	p.Add(plotter.NewGrid())

	top := 1.0
	if len(deltas) > 0 {
		hist, err := plotter.NewHist(deltas, histogramBins)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to build %s histogram", m.Key)
		}
		hist.FillColor = histogramColor
		hist.LineStyle.Width = 0
		p.Add(hist)

		for _, bin := range hist.Bins {
			top = math.Max(top, bin.Weight)
		}
	} else {
		p.X.Min, p.X.Max = -1, 1
	}

	zero, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 0, Y: top}})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s zero line", m.Key)
	}
	zero.LineStyle.Width = vg.Points(1)
	zero.LineStyle.Color = color.Black
	p.Add(zero)

	return p, nil
}

func renderDeltaHistograms(c *Comparison, path string) error {
	const rows, cols = 2, 2

	plots := make([][]*plot.Plot, rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, cols)
		for col := range plots[r] {
			p, err := deltaPlot(c, Metrics[r*cols+col])
			if err != nil {
				return err
			}
			plots[r][col] = p
		}
	}

	img := vgimg.NewWith(vgimg.UseWH(9*vg.Inch, 6*vg.Inch), vgimg.UseDPI(DPI))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}

	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for col := range plots[r] {
			plots[r][col].Draw(canvases[r][col])
		}
	}

	return writePNG(path, img)
}

func yGrid() *plotter.Grid {
	grid := plotter.NewGrid()
	grid.Vertical.Width = 0
	return grid
}

func save(path string, width, height vg.Length, p *plot.Plot) error {
	img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(DPI))
	p.Draw(draw.New(img))
	return writePNG(path, img)
}

func writePNG(path string, img *vgimg.Canvas) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}

	return f.Close()
}

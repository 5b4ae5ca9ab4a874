// Package charts renders update-vs-pure tracker comparison plots.
package charts

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// OverallSequence marks the aggregate row of a comparison table.
const OverallSequence = "OVERALL"

// Metric is a compared column pair and its display label.
type Metric struct {
	Key   string
	Label string
}

// Metrics are the compared metrics, in plot order.
var Metrics = []Metric{
	{Key: "auc", Label: "AUC"},
	{Key: "success50", Label: "Success@0.5"},
	{Key: "precision20", Label: "Precision@20"},
	{Key: "fps", Label: "FPS"},
}

// Row holds one sequence's metric values for both tracker variants.
// Empty cells are NaN.
type Row struct {
	Sequence string
	Update   map[string]float64
	Pure     map[string]float64
}

// Delta returns update minus pure for metric.
func (r Row) Delta(metric string) float64 {
	return r.Update[metric] - r.Pure[metric]
}

// Comparison is a parsed comparison table.
type Comparison struct {
	// Overall is the OVERALL row, or nil when absent.
	Overall   *Row
	Sequences []Row
}

// Series returns the pure and update values of metric across sequences,
// skipping sequences where either value is missing.
func (c *Comparison) Series(metric string) (pure, update []float64) {
	pure = make([]float64, 0, len(c.Sequences))
	update = make([]float64, 0, len(c.Sequences))
	for _, row := range c.Sequences {
		p, u := row.Pure[metric], row.Update[metric]
		if math.IsNaN(p) || math.IsNaN(u) {
			continue
		}
		pure = append(pure, p)
		update = append(update, u)
	}
	return pure, update
}

// ReadComparisonFile reads a comparison CSV from disk.
func ReadComparisonFile(path string) (*Comparison, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open comparison CSV")
	}
	defer f.Close()

	return ReadComparison(f)
}

// ReadComparison parses a table with a "sequence" column and
// "<metric>_update" / "<metric>_pure" columns for every metric in Metrics.
// Extra columns are ignored.
func ReadComparison(r io.Reader) (*Comparison, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse comparison CSV")
	}
	if len(records) == 0 {
		return nil, errors.New("comparison CSV is empty")
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}

	required := []string{"sequence"}
	for _, m := range Metrics {
		required = append(required, m.Key+"_update", m.Key+"_pure")
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, errors.Errorf("comparison CSV is missing column %q", col)
		}
	}

	c := &Comparison{}
	for line, record := range records[1:] {
		row := Row{
			Sequence: strings.TrimSpace(record[index["sequence"]]),
			Update:   make(map[string]float64, len(Metrics)),
			Pure:     make(map[string]float64, len(Metrics)),
		}
		for _, m := range Metrics {
			if row.Update[m.Key], err = parseCell(record, index[m.Key+"_update"]); err != nil {
				return nil, errors.Wrapf(err, "line %d", line+2)
			}
			if row.Pure[m.Key], err = parseCell(record, index[m.Key+"_pure"]); err != nil {
				return nil, errors.Wrapf(err, "line %d", line+2)
			}
		}

		if row.Sequence == OverallSequence {
			if c.Overall == nil {
				overall := row
				c.Overall = &overall
			}
			continue
		}
		c.Sequences = append(c.Sequences, row)
	}

	return c, nil
}

func parseCell(record []string, i int) (float64, error) {
	cell := strings.TrimSpace(record[i])
	if cell == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "column %d", i)
	}
	return v, nil
}

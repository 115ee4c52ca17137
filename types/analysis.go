package types

import (
	"encoding/json"
	"os"
	"path"
	"strconv"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SeriesAnalyzer records one value per episode
type SeriesAnalyzer struct {
	measure func(*Trace) float64
	values  []float64
}

var _ Analyzer = &SeriesAnalyzer{}

func NewSeriesAnalyzer(measure func(*Trace) float64) *SeriesAnalyzer {
	return &SeriesAnalyzer{
		measure: measure,
		values:  make([]float64, 0),
	}
}

// ReturnAnalyzer records the undiscounted return of every episode
func ReturnAnalyzer() *SeriesAnalyzer {
	return NewSeriesAnalyzer(func(t *Trace) float64 {
		return t.Return()
	})
}

// LengthAnalyzer records the number of steps of every episode
func LengthAnalyzer() *SeriesAnalyzer {
	return NewSeriesAnalyzer(func(t *Trace) float64 {
		return float64(t.Len())
	})
}

func (s *SeriesAnalyzer) Analyze(_ int, _ int, _ string, t *Trace) {
	s.values = append(s.values, s.measure(t))
}

func (s *SeriesAnalyzer) DataSet() DataSet {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

func (s *SeriesAnalyzer) Reset() {
	s.values = make([]float64, 0)
}

// CoverageAnalyzer records the cumulative number of unique states seen after every episode
type CoverageAnalyzer struct {
	abstractor StateAbstractor
	seen       map[string]bool
	counts     []float64
}

var _ Analyzer = &CoverageAnalyzer{}

func NewCoverageAnalyzer(abstractor StateAbstractor) *CoverageAnalyzer {
	return &CoverageAnalyzer{
		abstractor: abstractor,
		seen:       make(map[string]bool),
		counts:     make([]float64, 0),
	}
}

func (c *CoverageAnalyzer) Analyze(_ int, _ int, _ string, t *Trace) {
	for j := 0; j < t.Len(); j++ {
		s, _, _, _ := t.Get(j)
		c.seen[c.abstractor(s)] = true
	}
	c.counts = append(c.counts, float64(len(c.seen)))
}

func (c *CoverageAnalyzer) DataSet() DataSet {
	out := make([]float64, len(c.counts))
	copy(out, c.counts)
	return out
}

func (c *CoverageAnalyzer) Reset() {
	c.seen = make(map[string]bool)
	c.counts = make([]float64, 0)
}

// MovingAverage smooths a series over a trailing window
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 {
		return values
	}
	out := make([]float64, len(values))
	for i := range values {
		from := i - window + 1
		if from < 0 {
			from = 0
		}
		out[i] = stat.Mean(values[from:i+1], nil)
	}
	return out
}

// SeriesPlotter plots the []float64 datasets of all experiments on one figure
// and stores the raw values next to it
func SeriesPlotter(plotPath, name, yLabel string, window int) Comparator {
	if _, err := os.Stat(plotPath); err != nil {
		if err := os.MkdirAll(plotPath, os.ModePerm); err != nil {
			log.Error().Err(err).Str("dir", plotPath).Msg("failed to create plot folder")
		}
	}
	return func(run int, _ int, names []string, ds []DataSet) {
		p := plot.New()
		p.Title.Text = "Comparison"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = yLabel

		raw := make(map[string][]float64)
		for i := 0; i < len(names); i++ {
			values := ds[i].([]float64)
			raw[names[i]] = values
			if len(values) == 0 {
				continue
			}
			smoothed := MovingAverage(values, window)
			points := make(plotter.XYs, len(smoothed))
			for j, v := range smoothed {
				points[j] = plotter.XY{
					X: float64(j),
					Y: v,
				}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(names[i], line)

			log.Info().
				Str("experiment", names[i]).
				Int("run", run).
				Str("measure", name).
				Float64("mean", stat.Mean(values, nil)).
				Float64("last", values[len(values)-1]).
				Msg("series summary")
		}
		figPath := path.Join(plotPath, strconv.Itoa(run)+"_"+name+".png")
		if err := p.Save(8*vg.Inch, 8*vg.Inch, figPath); err != nil {
			log.Error().Err(err).Str("file", figPath).Msg("failed to save plot")
		}

		bs, err := json.Marshal(raw)
		if err != nil {
			log.Error().Err(err).Str("measure", name).Msg("failed to encode plot data")
			return
		}
		dataPath := path.Join(plotPath, strconv.Itoa(run)+"_"+name+".json")
		if err := os.WriteFile(dataPath, bs, 0644); err != nil {
			log.Error().Err(err).Str("file", dataPath).Msg("failed to save plot data")
		}
	}
}

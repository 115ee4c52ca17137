package minesweeper

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zeu5/minesweeper-rl/types"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func lastState(t *types.Trace) (*State, bool) {
	_, _, ns, ok := t.Last()
	if !ok {
		return nil, false
	}
	s, ok := ns.(*State)
	return s, ok
}

// RevealedAnalyzer records the safe cells revealed at the end of each episode
func RevealedAnalyzer() *types.SeriesAnalyzer {
	return types.NewSeriesAnalyzer(func(t *types.Trace) float64 {
		s, ok := lastState(t)
		if !ok {
			return 0
		}
		return float64(s.RevealedSafe())
	})
}

// WinAnalyzer records 1 for episodes that cleared the board, 0 otherwise
func WinAnalyzer() *types.SeriesAnalyzer {
	return types.NewSeriesAnalyzer(func(t *types.Trace) float64 {
		s, ok := lastState(t)
		if ok && s.Cleared() {
			return 1
		}
		return 0
	})
}

// ClickDataSet counts how often each cell was probed
type ClickDataSet struct {
	Clicks [][]int
	Height int
	Width  int
}

var _ plotter.GridXYZ = &ClickDataSet{}

func NewClickDataSet(height, width int) *ClickDataSet {
	clicks := make([][]int, height)
	for i := range clicks {
		clicks[i] = make([]int, width)
	}
	return &ClickDataSet{
		Clicks: clicks,
		Height: height,
		Width:  width,
	}
}

func (g *ClickDataSet) Dims() (int, int) {
	return g.Width, g.Height
}

// rows are flipped so that row 0 is drawn at the top
func (g *ClickDataSet) Z(c, r int) float64 {
	return float64(g.Clicks[g.Height-1-r][c])
}

func (g *ClickDataSet) X(c int) float64 {
	return float64(c)
}

func (g *ClickDataSet) Y(r int) float64 {
	return float64(r)
}

func (g *ClickDataSet) Max() float64 {
	max := 0
	for _, row := range g.Clicks {
		for _, count := range row {
			if count > max {
				max = count
			}
		}
	}
	return float64(max)
}

func (g *ClickDataSet) Min() float64 {
	min := -1
	for _, row := range g.Clicks {
		for _, count := range row {
			if min < 0 || count < min {
				min = count
			}
		}
	}
	return float64(min)
}

// ClickAnalyzer builds a heat map of the probed cells. With firstOnly only the
// opening move of each episode is counted.
type ClickAnalyzer struct {
	height    int
	width     int
	firstOnly bool
	dataSet   *ClickDataSet
}

var _ types.Analyzer = &ClickAnalyzer{}

func NewClickAnalyzer(height, width int, firstOnly bool) *ClickAnalyzer {
	return &ClickAnalyzer{
		height:    height,
		width:     width,
		firstOnly: firstOnly,
		dataSet:   NewClickDataSet(height, width),
	}
}

func (c *ClickAnalyzer) Analyze(_ int, _ int, _ string, t *types.Trace) {
	for i := 0; i < t.Len(); i++ {
		_, a, _, _ := t.Get(i)
		click, ok := a.(*Click)
		if !ok {
			continue
		}
		c.dataSet.Clicks[click.Row][click.Col] += 1
		if c.firstOnly {
			return
		}
	}
}

func (c *ClickAnalyzer) DataSet() types.DataSet {
	return c.dataSet
}

func (c *ClickAnalyzer) Reset() {
	c.dataSet = NewClickDataSet(c.height, c.width)
}

// ClickHeatMapPlotter draws one heat map per experiment and stores the raw counts
func ClickHeatMapPlotter(plotPath string) types.Comparator {
	if _, err := os.Stat(plotPath); err != nil {
		if err := os.MkdirAll(plotPath, os.ModePerm); err != nil {
			log.Error().Err(err).Str("dir", plotPath).Msg("failed to create plot folder")
		}
	}
	return func(run int, _ int, names []string, ds []types.DataSet) {
		for i := 0; i < len(names); i++ {
			name := names[i]
			dataSet := ds[i].(*ClickDataSet)
			prefix := path.Join(plotPath, strconv.Itoa(run)+"_"+name+"_clicks")

			bs, err := json.Marshal(dataSet)
			if err != nil {
				log.Error().Err(err).Str("experiment", name).Msg("failed to encode click counts")
			} else if err := os.WriteFile(prefix+".json", bs, 0644); err != nil {
				log.Error().Err(err).Str("file", prefix+".json").Msg("failed to save click counts")
			}
			// a flat grid has no colour range to draw
			if dataSet.Max() == dataSet.Min() {
				continue
			}

			p := plot.New()
			p.Title.Text = name
			p.X.Label.Text = "Column"
			p.Y.Label.Text = "Row (flipped)"
			p.Add(plotter.NewHeatMap(dataSet, palette.Heat(12, 1)))
			if err := p.Save(6*vg.Inch, 6*vg.Inch, prefix+".png"); err != nil {
				log.Error().Err(err).Str("experiment", name).Msg("failed to save heat map")
			}
		}
	}
}

// ReadableTrace renders an episode move by move, ending with the final board
func ReadableTrace(t *types.Trace) string {
	var sb strings.Builder
	for i := 0; i < t.Len(); i++ {
		_, a, _, _ := t.Get(i)
		reward, done, _ := t.Outcome(i)
		fmt.Fprintf(&sb, "%3d: click %-6s reward %5.1f done %v\n", i, a.Hash(), reward, done)
	}
	if s, ok := lastState(t); ok {
		sb.WriteString(s.String())
	}
	return sb.String()
}

package types

import (
	"bytes"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestSeriesPlotterLogsWriteErrors(t *testing.T) {
	buf := captureLogs(t)

	// a plain file where the plot folder should go
	blocker := path.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	plotPath := path.Join(blocker, "plots")

	comparator := SeriesPlotter(plotPath, "return", "Return", 1)
	comparator(0, 2, []string{"a"}, []DataSet{[]float64{1, 2}})

	out := buf.String()
	for _, msg := range []string{"failed to create plot folder", "failed to save plot data"} {
		if !strings.Contains(out, msg) {
			t.Errorf("expected %q to be logged, got:\n%s", msg, out)
		}
	}
}

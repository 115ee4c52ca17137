package types

import (
	"fmt"
	"time"
)

// EpisodeOutcome is how an episode ended
type EpisodeOutcome string

var (
	OutcomeTerminated EpisodeOutcome = "terminated" // environment reported done
	OutcomeHorizon    EpisodeOutcome = "horizon"    // horizon reached before termination
	OutcomeStuck      EpisodeOutcome = "stuck"      // policy had no action to pick
)

// EpisodeContext stores the information used and returned by an episode
type EpisodeContext struct {
	Episode        int
	ExperimentName string
	Horizon        int

	Trace       *Trace
	Timesteps   int
	Outcome     EpisodeOutcome
	RunDuration time.Duration

	ToPrintReport bool
	Report        *EpisodeReport
}

func NewEpisodeContext(episode int, experimentName string, horizon int) *EpisodeContext {
	return &EpisodeContext{
		Episode:        episode,
		ExperimentName: experimentName,
		Horizon:        horizon,
		Trace:          NewTrace(),
		Report:         NewEpisodeReport(episode, experimentName),
	}
}

func (e *EpisodeContext) SetToPrintReport(b bool) {
	e.ToPrintReport = b
}

// REPORT CONFIGURATION

// Configuration of the report
type ReportsPrintConfig struct {
	PrintTimeline bool    // print the report timeline representation
	PrintSummary  bool    // print the per type summary
	Sampling      float32 // rate of randomly printed reports
}

// configuration of the report with no printing
func RepConfigOff() *ReportsPrintConfig {
	return &ReportsPrintConfig{
		PrintTimeline: false,
		PrintSummary:  false,
		Sampling:      0.0,
	}
}

// configuration of the report with standard printing, prints the summary of an episode with probability 0.02
func RepConfigStandard() *ReportsPrintConfig {
	return &ReportsPrintConfig{
		PrintTimeline: false,
		PrintSummary:  true,
		Sampling:      0.02,
	}
}

// EPISODE REPORT

// Report of an episode
type EpisodeReport struct {
	EpisodeNumber  int
	ExperimentName string

	Timeline []*EpisodeReportEntry
	Values   map[string][]*EpisodeReportEntry
}

func NewEpisodeReport(episodeNumber int, experimentName string) *EpisodeReport {
	return &EpisodeReport{
		EpisodeNumber:  episodeNumber,
		ExperimentName: experimentName,
		Timeline:       make([]*EpisodeReportEntry, 0),
		Values:         make(map[string][]*EpisodeReportEntry),
	}
}

// add a new entry to the report
func (e *EpisodeReport) AddEntry(step int, value float64, entryType string) {
	entry := &EpisodeReportEntry{
		Index:       len(e.Timeline),
		EpisodeStep: step,
		EntryType:   entryType,
		Value:       value,
	}
	e.Timeline = append(e.Timeline, entry)
	e.Values[entryType] = append(e.Values[entryType], entry)
}

// return a string representation of the report timeline
func (e *EpisodeReport) StringTimeline() string {
	result := fmt.Sprintf("Experiment: %s, Episode: %d, Length: %d\n", e.ExperimentName, e.EpisodeNumber, len(e.Timeline))
	for _, entry := range e.Timeline {
		result = fmt.Sprintf("%s%s\n", result, entry.String())
	}
	return result
}

// return the number of entries and their sum per entry type
func (e *EpisodeReport) StringSummary() string {
	result := fmt.Sprintf("Experiment: %s, Episode: %d\n", e.ExperimentName, e.EpisodeNumber)
	for entryType, entries := range e.Values {
		sum := 0.0
		for _, en := range entries {
			sum += en.Value
		}
		result = fmt.Sprintf("%s%20s [%d]: %8.2f\n", result, entryType, len(entries), sum)
	}
	return result
}

// Entry of the Report
type EpisodeReportEntry struct {
	Index       int
	EpisodeStep int
	EntryType   string
	Value       float64
}

func (en *EpisodeReportEntry) String() string {
	return fmt.Sprintf("[ %6d | %3d ] %20s : %8.2f", en.Index, en.EpisodeStep, en.EntryType, en.Value)
}

package types

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zeu5/minesweeper-rl/util"
	"golang.org/x/exp/rand"
)

type experimentRunConfig struct {
	// execution configuration
	CurrentRun int
	Episodes   int
	Horizon    int
	Analyzers  []Analyzer
	Context    context.Context

	// record flags
	RecordTraces bool
	RecordPolicy bool

	// last traces configuration
	PrintLastTraces     int
	PrintLastTracesFunc func(*Trace) string

	// reports configuration
	ReportsPrintConfig *ReportsPrintConfig
	ReportSavePath     string

	Progress *ProgressPrinter
}

// Experiment encapsulates the different parameters to configure an agent and analyze the traces
type Experiment struct {
	Name        string
	policy      Policy
	environment Environment
}

// NewExperiment creates a new experiment instance
func NewExperiment(name string, policy Policy, environment Environment) *Experiment {
	return &Experiment{
		Name:        name,
		policy:      policy,
		environment: environment,
	}
}

func (e *Experiment) recordTrace(rConfig *experimentRunConfig, trace *Trace) {
	tracesFile := path.Join(rConfig.ReportSavePath, "traces", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)+".jsonl")
	bs, err := json.Marshal(trace)
	if err != nil {
		log.Error().Err(err).Str("experiment", e.Name).Msg("failed to marshal trace")
		return
	}
	if err := util.AppendToFile(tracesFile, string(bs)); err != nil {
		log.Error().Err(err).Str("file", tracesFile).Msg("failed to record trace")
	}
}

func (e *Experiment) recordReport(rConfig *experimentRunConfig, eCtx *EpisodeContext) {
	cfg := rConfig.ReportsPrintConfig
	content := make([]string, 0)
	if cfg.PrintSummary {
		content = append(content, eCtx.Report.StringSummary())
	}
	if cfg.PrintTimeline {
		content = append(content, eCtx.Report.StringTimeline())
	}
	if len(content) == 0 {
		return
	}
	filePath := path.Join(rConfig.ReportSavePath, "epReports", e.Name+"_run"+strconv.Itoa(rConfig.CurrentRun)+"_ep"+strconv.Itoa(eCtx.Episode)+".txt")
	if err := util.WriteToFile(filePath, content...); err != nil {
		log.Error().Err(err).Str("file", filePath).Msg("failed to record episode report")
	}
}

// Run the experiment for the specified number of episodes
func (e *Experiment) Run(rConfig *experimentRunConfig) {
	agent := NewAgent(&AgentConfig{
		Horizon:     rConfig.Horizon,
		Policy:      e.policy,
		Environment: e.environment,
	})

	totalTimesteps := 0
	outcomes := make(map[EpisodeOutcome]int)
	printTracesIndex := rConfig.Episodes - rConfig.PrintLastTraces
	start := time.Now()

	for episode := 0; episode < rConfig.Episodes; episode++ {
		select {
		case <-rConfig.Context.Done():
			log.Warn().Str("experiment", e.Name).Int("episode", episode).Msg("experiment interrupted")
			return
		default:
		}

		eCtx := NewEpisodeContext(episode, e.Name, rConfig.Horizon)
		if episode >= printTracesIndex {
			eCtx.SetToPrintReport(true)
		}
		agent.RunEpisode(eCtx)

		totalTimesteps += eCtx.Timesteps
		outcomes[eCtx.Outcome] += 1

		if rConfig.RecordTraces {
			e.recordTrace(rConfig, eCtx.Trace)
		}
		for _, a := range rConfig.Analyzers {
			a.Analyze(rConfig.CurrentRun, episode, e.Name, eCtx.Trace)
		}

		if eCtx.ToPrintReport || rand.Float32() < rConfig.ReportsPrintConfig.Sampling {
			e.recordReport(rConfig, eCtx)
		}

		// print the last N traces
		if episode >= printTracesIndex && rConfig.PrintLastTracesFunc != nil {
			readableTrace := rConfig.PrintLastTracesFunc(eCtx.Trace)
			filePath := path.Join(rConfig.ReportSavePath, "lastTraces", e.Name+"_run"+strconv.Itoa(rConfig.CurrentRun)+"_ep"+strconv.Itoa(episode)+".txt")
			if err := util.WriteToFile(filePath, readableTrace); err != nil {
				log.Error().Err(err).Str("file", filePath).Msg("failed to write last trace")
			}
		}

		log.Debug().
			Str("experiment", e.Name).
			Int("episode", episode).
			Int("steps", eCtx.Timesteps).
			Float64("return", eCtx.Trace.Return()).
			Str("outcome", string(eCtx.Outcome)).
			Msg("episode finished")

		if rConfig.Progress != nil {
			rConfig.Progress.Update(fmt.Sprintf("Exp: %s, Eps: %d/%d, TSteps: %d, Terminated: %d, Horizon: %d, Stuck: %d",
				e.Name, episode+1, rConfig.Episodes, totalTimesteps,
				outcomes[OutcomeTerminated], outcomes[OutcomeHorizon], outcomes[OutcomeStuck]))
		}
	}

	if rConfig.Progress != nil {
		rConfig.Progress.Flush()
	}

	log.Info().
		Str("experiment", e.Name).
		Int("run", rConfig.CurrentRun).
		Int("episodes", rConfig.Episodes).
		Int("timesteps", totalTimesteps).
		Dur("duration", time.Since(start)).
		Msg("experiment finished")

	if rConfig.RecordPolicy {
		policyPath := path.Join(rConfig.ReportSavePath, "policies", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)+".json")
		if err := e.policy.Record(policyPath); err != nil {
			log.Error().Err(err).Str("file", policyPath).Msg("failed to record policy")
		}
	}
}

// Reset cleans what the policy learned before the next run
func (e *Experiment) Reset() {
	e.policy.Reset()
}

// Generic Dataset that contains information after processing the traces
type DataSet interface{}

// Analyzer compresses the information in the traces to a DataSet
type Analyzer interface {
	// run, episode, experiment, trace
	Analyze(int, int, string, *Trace)
	// Resulting dataset
	DataSet() DataSet
	// Reset the analyzer
	Reset()
}

// Comparator differentiates between different datasets with associated names
// run, total episodes, experiment names, datasets
type Comparator func(int, int, []string, []DataSet)

// ComparisonConfig contains the configuration for the comparison
type ComparisonConfig struct {
	Runs     int // number of runs
	Episodes int // number of episodes
	Horizon  int // max steps per episode, 0 for no limit

	RecordPath   string              // path to store the results
	ReportConfig *ReportsPrintConfig // configuration for the reports

	// record flags
	RecordTraces bool
	RecordPolicy bool

	// last traces configuration
	PrintLastTraces     int
	PrintLastTracesFunc func(*Trace) string

	// live terminal progress
	ShowProgress bool

	// extra values stored in comparison_config.json
	Extra map[string]interface{}
}

// Comparison contains the different experiments to compare
// The traces obtained from the experiments are analyzed
// The analyzed datasets are then compared
type Comparison struct {
	ID          string
	Experiments []*Experiment
	analyzers   map[string]Analyzer
	comparators map[string]Comparator
	cConfig     *ComparisonConfig
}

// NewComparison creates a comparison instance and prepares the record folders
func NewComparison(config *ComparisonConfig) (*Comparison, error) {
	if config.ReportConfig == nil {
		config.ReportConfig = RepConfigOff()
	}
	if config.PrintLastTraces > 0 && config.PrintLastTracesFunc == nil {
		return nil, fmt.Errorf("PrintLastTracesFunc must be defined when printing %d last traces", config.PrintLastTraces)
	}

	if err := checkRecordPath(config.RecordPath); err != nil {
		return nil, err
	}
	if _, err := os.Stat(config.RecordPath); err == nil {
		if err := RemoveContents(config.RecordPath); err != nil {
			return nil, fmt.Errorf("cleaning %s: %w", config.RecordPath, err)
		}
	}

	foldersToCreate := []string{"epReports"}
	if config.RecordTraces {
		foldersToCreate = append(foldersToCreate, "traces")
	}
	if config.RecordPolicy {
		foldersToCreate = append(foldersToCreate, "policies")
	}
	if config.PrintLastTraces > 0 {
		foldersToCreate = append(foldersToCreate, "lastTraces")
	}
	for _, s := range foldersToCreate {
		if err := os.MkdirAll(path.Join(config.RecordPath, s), 0777); err != nil {
			return nil, fmt.Errorf("creating record folder %s: %w", s, err)
		}
	}

	return &Comparison{
		ID:          uuid.NewString(),
		Experiments: make([]*Experiment, 0),
		analyzers:   make(map[string]Analyzer),
		comparators: make(map[string]Comparator),
		cConfig:     config,
	}, nil
}

// record the configuration of the comparison
func (c *Comparison) recordConfig() error {
	cfg := c.cConfig

	out := make(map[string]interface{})
	out["id"] = c.ID
	out["runs"] = cfg.Runs
	out["episodes"] = cfg.Episodes
	out["horizon"] = cfg.Horizon
	out["record_traces"] = cfg.RecordTraces
	out["record_policy"] = cfg.RecordPolicy
	out["print_last_traces"] = cfg.PrintLastTraces
	out["report_config"] = cfg.ReportConfig
	for k, v := range cfg.Extra {
		out[k] = v
	}

	experiments := make([]string, 0)
	for _, e := range c.Experiments {
		experiments = append(experiments, e.Name)
	}
	out["experiments"] = experiments

	analyzers := make([]string, 0)
	for name := range c.analyzers {
		analyzers = append(analyzers, name)
	}
	out["analyzers"] = analyzers

	bs, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path.Join(cfg.RecordPath, "comparison_config.json"), bs, 0644)
}

// AddAnalysis adds an analyzer and comparator to the comparison
func (c *Comparison) AddAnalysis(name string, analyzer Analyzer, comparator Comparator) {
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

// Add experiments to compare
func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// Run the comparison
func (c *Comparison) Run(ctx context.Context) error {
	if err := c.recordConfig(); err != nil {
		return fmt.Errorf("recording comparison config: %w", err)
	}
	log.Info().Str("id", c.ID).Int("experiments", len(c.Experiments)).Int("runs", c.cConfig.Runs).Msg("starting comparison")

	var progress *ProgressPrinter
	if c.cConfig.ShowProgress {
		progress = NewProgressPrinter(os.Stdout, 10)
		defer progress.Stop()
	}

	for run := 0; run < c.cConfig.Runs; run++ {
		datasets := make(map[string][]DataSet)
		for name := range c.analyzers {
			datasets[name] = make([]DataSet, len(c.Experiments))
		}

		names := make([]string, len(c.Experiments))
		for i, e := range c.Experiments {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			rCfg := c.prepareRunConfig(ctx, run)
			rCfg.Progress = progress
			e.Run(rCfg)
			for name, a := range c.analyzers {
				datasets[name][i] = a.DataSet()
				a.Reset()
			}
			names[i] = e.Name
			e.Reset()
		}
		for name, comp := range c.comparators {
			comp(run, c.cConfig.Episodes, names, datasets[name])
		}
	}
	return nil
}

// prepare the run configuration for the experiment
func (c *Comparison) prepareRunConfig(ctx context.Context, run int) *experimentRunConfig {
	rCfg := &experimentRunConfig{
		CurrentRun:          run,
		Episodes:            c.cConfig.Episodes,
		Horizon:             c.cConfig.Horizon,
		Analyzers:           make([]Analyzer, 0),
		RecordTraces:        c.cConfig.RecordTraces,
		RecordPolicy:        c.cConfig.RecordPolicy,
		PrintLastTraces:     c.cConfig.PrintLastTraces,
		PrintLastTracesFunc: c.cConfig.PrintLastTracesFunc,
		ReportsPrintConfig:  c.cConfig.ReportConfig,
		ReportSavePath:      c.cConfig.RecordPath,
		Context:             ctx,
	}
	for _, a := range c.analyzers {
		rCfg.Analyzers = append(rCfg.Analyzers, a)
	}
	return rCfg
}

var ErrUnsafeRecordPath = errors.New("record path would clean the working directory or one of its parents")

// checkRecordPath refuses paths whose cleaning would wipe the working
// directory, one of its ancestors or the filesystem root
func checkRecordPath(recordPath string) error {
	if recordPath == "" {
		return fmt.Errorf("%w: empty path", ErrUnsafeRecordPath)
	}
	abs, err := filepath.Abs(recordPath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", recordPath, err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}
	sep := string(filepath.Separator)
	if abs == filepath.VolumeName(abs)+sep || strings.HasPrefix(cwd+sep, strings.TrimSuffix(abs, sep)+sep) {
		return fmt.Errorf("%w: %s", ErrUnsafeRecordPath, recordPath)
	}
	return nil
}

// Delete everything in the directory
func RemoveContents(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	names, err := d.Readdirnames(-1)
	if err != nil {
		return err
	}
	for _, name := range names {
		err = os.RemoveAll(path.Join(dir, name))
		if err != nil {
			return err
		}
	}
	return nil
}

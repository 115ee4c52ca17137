package types

import "time"

type AgentConfig struct {
	Horizon     int // 0 runs until the environment terminates
	Policy      Policy
	Environment Environment
}

// RL Agent configured with the corresponding
// policy and environment
type Agent struct {
	config      *AgentConfig
	policy      Policy
	environment Environment
}

// Instantiates a new Agent
func NewAgent(config *AgentConfig) *Agent {
	return &Agent{
		config:      config,
		policy:      config.Policy,
		environment: config.Environment,
	}
}

// RunEpisode runs a single episode in lockstep: state, step, update, until
// the environment terminates, the horizon is reached or no action is left
func (a *Agent) RunEpisode(eCtx *EpisodeContext) {
	start := time.Now()
	defer func() {
		eCtx.RunDuration = time.Since(start)
	}()

	state := a.environment.Reset()
	actions := state.Actions()

	for i := 0; a.config.Horizon <= 0 || i < a.config.Horizon; i++ {
		if len(actions) == 0 {
			eCtx.Outcome = OutcomeStuck
			break
		}
		nextAction, ok := a.policy.NextAction(i, state, actions)
		if !ok {
			eCtx.Outcome = OutcomeStuck
			break
		}
		nextState, reward, done := a.environment.Step(nextAction)
		a.policy.Update(i, state, nextAction, reward, nextState, done)

		eCtx.Trace.Append(i, state, nextAction, reward, nextState, done)
		eCtx.Report.AddEntry(i, reward, "reward")
		eCtx.Timesteps += 1

		if done {
			eCtx.Outcome = OutcomeTerminated
			break
		}
		state = nextState
		actions = nextState.Actions()
	}
	if eCtx.Outcome == "" {
		eCtx.Outcome = OutcomeHorizon
	}
	a.policy.UpdateIteration(eCtx.Episode, eCtx.Trace)
}

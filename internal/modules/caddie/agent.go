package caddie

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/caddie-backend/internal/observability"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
	"github.com/yungbote/caddie-backend/internal/platform/openai"
)

var (
	// ErrMaxSteps is returned when the loop runs out of steps without an answer.
	ErrMaxSteps = errors.New("agent step limit reached")
	// ErrNoAnswer is returned when the model ends without usable text.
	ErrNoAnswer = errors.New("agent produced no answer")
)

// Phase is the agent loop state.
type Phase string

const (
	PhaseReasoning Phase = "reasoning"
	PhaseActing    Phase = "acting"
	PhaseDone      Phase = "done"
)

// ToolRunner is one model turn with tools available.
type ToolRunner interface {
	RunTools(ctx context.Context, req openai.ToolRequest) (openai.ToolResponse, error)
}

// Step is the trace of one completed transition.
type Step struct {
	Index       int           `json:"index"`
	Phase       Phase         `json:"phase"`
	Tool        string        `json:"tool,omitempty"`
	Input       string        `json:"input,omitempty"`
	Observation string        `json:"observation,omitempty"`
	Text        string        `json:"text,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
}

// AgentState is replaced, never mutated, on every transition.
type AgentState struct {
	Phase   Phase
	Steps   int
	History []openai.ToolExchange
	Pending []openai.ToolCall
	Answer  string
	Trace   []Step
}

func (s AgentState) with(fn func(*AgentState)) AgentState {
	next := s
	next.History = append([]openai.ToolExchange(nil), s.History...)
	next.Pending = append([]openai.ToolCall(nil), s.Pending...)
	next.Trace = append([]Step(nil), s.Trace...)
	fn(&next)
	return next
}

type AgentConfig struct {
	MaxSteps int
	Timeout  time.Duration
}

type Agent struct {
	llm   ToolRunner
	tools *Toolbox
	cfg   AgentConfig
	log   *logger.Logger
}

func NewAgent(llm ToolRunner, tools *Toolbox, cfg AgentConfig, baseLog *logger.Logger) *Agent {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 8
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Agent{llm: llm, tools: tools, cfg: cfg, log: baseLog.With("module", "CaddieAgent")}
}

// Outcome is the final answer and the trace that produced it.
type Outcome struct {
	Answer string
	Trace  []Step
}

// Run drives Reasoning -> Acting -> Reasoning ... -> Done. Each model turn
// and each batch of tool calls counts as one step.
func (a *Agent) Run(ctx context.Context, userID uuid.UUID, system, prompt string) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()
	ctx, span := observability.StartSpan(ctx, "caddie.agent.run", attribute.Int("agent.max_steps", a.cfg.MaxSteps))
	defer span.End()

	state := AgentState{Phase: PhaseReasoning}
	for state.Phase != PhaseDone {
		if state.Steps >= a.cfg.MaxSteps {
			observability.Current().ObserveAgentSteps(state.Steps)
			return Outcome{Trace: state.Trace}, ErrMaxSteps
		}
		next, err := a.step(ctx, userID, system, prompt, state)
		if err != nil {
			observability.Current().ObserveAgentSteps(state.Steps)
			span.RecordError(err)
			return Outcome{Trace: state.Trace}, err
		}
		state = next
	}
	observability.Current().ObserveAgentSteps(state.Steps)
	span.SetAttributes(attribute.Int("agent.steps", state.Steps))
	return Outcome{Answer: state.Answer, Trace: state.Trace}, nil
}

func (a *Agent) step(ctx context.Context, userID uuid.UUID, system, prompt string, s AgentState) (AgentState, error) {
	switch s.Phase {
	case PhaseReasoning:
		return a.reason(ctx, system, prompt, s)
	case PhaseActing:
		return a.act(ctx, userID, s), nil
	default:
		return s, fmt.Errorf("unexpected agent phase %q", s.Phase)
	}
}

func (a *Agent) reason(ctx context.Context, system, prompt string, s AgentState) (AgentState, error) {
	start := time.Now()
	resp, err := a.llm.RunTools(ctx, openai.ToolRequest{
		System:  system,
		User:    prompt,
		Tools:   a.tools.Specs(),
		History: s.History,
	})
	if err != nil {
		return s, fmt.Errorf("agent reasoning step %d: %w", s.Steps+1, err)
	}

	if len(resp.Calls) > 0 {
		return s.with(func(n *AgentState) {
			n.Steps++
			n.Phase = PhaseActing
			n.Pending = resp.Calls
			n.Trace = append(n.Trace, Step{Index: n.Steps, Phase: PhaseReasoning, Text: resp.Text, Duration: time.Since(start)})
		}), nil
	}

	answer, ok := ParseFinalAnswer(resp.Text)
	if !ok {
		return s, ErrNoAnswer
	}
	return s.with(func(n *AgentState) {
		n.Steps++
		n.Phase = PhaseDone
		n.Answer = answer
		n.Trace = append(n.Trace, Step{Index: n.Steps, Phase: PhaseDone, Text: answer, Duration: time.Since(start)})
	}), nil
}

func (a *Agent) act(ctx context.Context, userID uuid.UUID, s AgentState) AgentState {
	exchanges := make([]openai.ToolExchange, 0, len(s.Pending))
	steps := make([]Step, 0, len(s.Pending))
	for _, call := range s.Pending {
		start := time.Now()
		obs := a.executeTool(ctx, userID, call)
		a.log.Debug("Tool executed", "tool", call.Name, "user_id", userID)
		exchanges = append(exchanges, openai.ToolExchange{Call: call, Output: obs})
		steps = append(steps, Step{
			Phase:       PhaseActing,
			Tool:        call.Name,
			Input:       string(call.Arguments),
			Observation: obs,
			Duration:    time.Since(start),
		})
	}
	return s.with(func(n *AgentState) {
		n.Steps++
		n.Phase = PhaseReasoning
		n.Pending = nil
		n.History = append(n.History, exchanges...)
		for _, st := range steps {
			st.Index = n.Steps
			n.Trace = append(n.Trace, st)
		}
	})
}

func (a *Agent) executeTool(ctx context.Context, userID uuid.UUID, call openai.ToolCall) string {
	ctx, span := observability.StartSpan(ctx, "caddie.agent.tool", attribute.String("tool.name", call.Name))
	defer span.End()
	return a.tools.Execute(ctx, userID, call)
}

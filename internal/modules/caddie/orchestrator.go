package caddie

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"

	types "github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/domain/shot"
	"github.com/yungbote/caddie-backend/internal/modules/shotmemory"
	"github.com/yungbote/caddie-backend/internal/observability"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

var (
	ErrInvalidSituation = shot.ErrInvalidSituation
	// ErrAgentFailed wraps any failure of the agent loop.
	ErrAgentFailed = errors.New("recommendation agent failed")
)

type Retriever interface {
	SearchByConditions(ctx context.Context, conditionsText string, userID uuid.UUID, k int, threshold float64) []shotmemory.Candidate
}

type Filter interface {
	Filter(ctx context.Context, query shot.Situation, candidates []shotmemory.Candidate, target int) []shotmemory.Candidate
}

type Runner interface {
	Run(ctx context.Context, userID uuid.UUID, system, prompt string) (Outcome, error)
}

type Memory interface {
	Remember(ctx context.Context, rec *shot.Record) error
}

type Settings struct {
	CandidateK          int
	SimilarityThreshold float64
	TargetCount         int
}

func (s Settings) withDefaults() Settings {
	if s.CandidateK <= 0 {
		s.CandidateK = 10
	}
	if s.SimilarityThreshold <= 0 {
		s.SimilarityThreshold = 0.7
	}
	if s.TargetCount <= 0 {
		s.TargetCount = 3
	}
	return s
}

// Recommendation is the answer for one shot plus what it was based on.
type Recommendation struct {
	ShotID         uuid.UUID              `json:"shot_id"`
	Timestamp      string                 `json:"timestamp"`
	Situation      shot.Situation         `json:"situation"`
	Recommendation string                 `json:"recommendation"`
	SimilarShots   []shotmemory.Candidate `json:"similar_shots"`
	Steps          []Step                 `json:"steps"`
	// Persisted is false when the shot could not be stored for feedback.
	Persisted bool `json:"persisted"`
}

type Orchestrator struct {
	retriever Retriever
	filter    Filter
	agent     Runner
	memory    Memory
	settings  Settings
	log       *logger.Logger
	now       func() time.Time
}

func NewOrchestrator(retriever Retriever, filter Filter, agent Runner, memory Memory, settings Settings, baseLog *logger.Logger) *Orchestrator {
	return &Orchestrator{
		retriever: retriever,
		filter:    filter,
		agent:     agent,
		memory:    memory,
		settings:  settings.withDefaults(),
		log:       baseLog.With("module", "CaddieOrchestrator"),
		now:       time.Now,
	}
}

// Recommend retrieves precedent shots, asks the agent, and stores the new
// shot. Retrieval and storage degrade; only the agent is required.
func (o *Orchestrator) Recommend(ctx context.Context, u *types.User, s shot.Situation) (*Recommendation, error) {
	if u == nil || u.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing golfer", ErrInvalidSituation)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	ctx, span := observability.StartSpan(ctx, "caddie.recommend",
		attribute.Float64("shot.distance_to_flag", s.DistanceToFlag),
		attribute.String("shot.wind", s.NormalizedWind()),
	)
	defer span.End()

	conditions := shotmemory.ConditionsText(s)
	candidates := o.retriever.SearchByConditions(ctx, conditions, u.ID, o.settings.CandidateK, o.settings.SimilarityThreshold)
	precedents := o.filter.Filter(ctx, s, candidates, o.settings.TargetCount)
	span.SetAttributes(
		attribute.Int("shot.candidates", len(candidates)),
		attribute.Int("shot.precedents", len(precedents)),
	)

	outcome, err := o.agent.Run(ctx, u.ID, SystemPrompt, BuildPrompt(u, s, precedents))
	if err != nil {
		span.RecordError(err)
		o.log.Warn("Agent failed", "user_id", u.ID, "error", err, "steps", len(outcome.Trace))
		return nil, fmt.Errorf("%w: %v", ErrAgentFailed, err)
	}

	rec := &shot.Record{
		ID:             uuid.New(),
		UserID:         u.ID,
		TimestampKey:   shot.FormatTimestamp(o.now()),
		Situation:      s,
		Recommendation: outcome.Answer,
		AgentSteps:     mustJSON(outcome.Trace),
		SimilarShotIDs: mustJSON(candidateIDs(precedents)),
	}
	out := &Recommendation{
		ShotID:         rec.ID,
		Timestamp:      rec.TimestampKey,
		Situation:      s,
		Recommendation: outcome.Answer,
		SimilarShots:   precedents,
		Steps:          outcome.Trace,
	}
	if err := o.memory.Remember(ctx, rec); err != nil {
		o.log.Error("Storing shot failed", "user_id", u.ID, "shot_id", rec.ID, "error", err)
	} else {
		out.Persisted = true
	}
	return out, nil
}

func candidateIDs(cs []shotmemory.Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ShotID)
	}
	return out
}

func mustJSON(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(raw)
}

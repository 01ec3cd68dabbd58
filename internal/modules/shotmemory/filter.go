package shotmemory

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/caddie-backend/internal/domain/shot"
	"github.com/yungbote/caddie-backend/internal/observability"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

// FilterPolicy selects how retrieved shots are narrowed down.
type FilterPolicy string

const (
	// PolicyRanked asks the model to rank candidates by similarity,
	// applicability, feedback, outcome and recency.
	PolicyRanked FilterPolicy = "ranked"
	// PolicyStrict drops every candidate that is not liked or whose
	// conditions differ before ranking. It may return nothing.
	PolicyStrict FilterPolicy = "strict"
)

// ParsePolicy defaults unknown values to PolicyRanked.
func ParsePolicy(s string) FilterPolicy {
	if FilterPolicy(strings.ToLower(strings.TrimSpace(s))) == PolicyStrict {
		return PolicyStrict
	}
	return PolicyRanked
}

// strictTolerance is the relative slack on distance and wind speed.
const strictTolerance = 0.05

// RankingGenerator is the single-turn structured model call used for ranking.
type RankingGenerator interface {
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
}

const rankingSchemaName = "shot_ranking"

var rankingSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"indices": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "integer"},
		},
	},
	"required":             []string{"indices"},
	"additionalProperties": false,
}

type RelevanceFilter struct {
	llm     RankingGenerator
	policy  FilterPolicy
	timeout time.Duration
	log     *logger.Logger
}

func NewRelevanceFilter(llm RankingGenerator, policy FilterPolicy, timeout time.Duration, baseLog *logger.Logger) *RelevanceFilter {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &RelevanceFilter{
		llm:     llm,
		policy:  policy,
		timeout: timeout,
		log:     baseLog.With("module", "ShotRelevanceFilter", "policy", string(policy)),
	}
}

func (f *RelevanceFilter) Policy() FilterPolicy { return f.policy }

// Filter narrows candidates to at most target shots.
func (f *RelevanceFilter) Filter(ctx context.Context, query shot.Situation, candidates []Candidate, target int) []Candidate {
	if target <= 0 {
		return []Candidate{}
	}
	pool := candidates
	if f.policy == PolicyStrict {
		pool = StrictGate(query, candidates)
		if len(pool) == 0 {
			observability.Current().IncFilterOutcome("strict_empty")
			return []Candidate{}
		}
	}
	if len(pool) <= target {
		observability.Current().IncFilterOutcome("passthrough")
		return pool
	}

	ctx, span := observability.StartSpan(ctx, "shotmemory.rank",
		attribute.Int("filter.candidates", len(pool)),
		attribute.Int("filter.target", target),
	)
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	obj, err := f.llm.GenerateJSON(ctx, rankingSystemPrompt, rankingUserPrompt(query, pool, target, time.Now()), rankingSchemaName, rankingSchema)
	if err != nil {
		f.log.Warn("Ranking call failed; keeping top candidates", "error", err, "candidates", len(pool))
		observability.Current().IncFilterOutcome("fallback")
		return firstN(pool, target)
	}
	indices, err := parseRanking(obj)
	if err != nil {
		f.log.Warn("Ranking output unusable; keeping top candidates", "error", err)
		observability.Current().IncFilterOutcome("fallback")
		return firstN(pool, target)
	}

	// Out-of-range and repeated indices are dropped, which may leave nothing.
	out := selectIndices(pool, indices, target)
	span.SetAttributes(attribute.Int("filter.selected", len(out)))
	observability.Current().IncFilterOutcome("ranked")
	return out
}

// StrictGate keeps liked shots whose distance and wind speed are within 5%
// of the query and whose wind direction, lie and ground match exactly.
func StrictGate(query shot.Situation, candidates []Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Liked == nil || !*c.Liked {
			continue
		}
		if !withinTolerance(query.DistanceToFlag, c.Situation.DistanceToFlag) {
			continue
		}
		if !withinTolerance(query.WindSpeed, c.Situation.WindSpeed) {
			continue
		}
		if query.NormalizedWind() != c.Situation.NormalizedWind() {
			continue
		}
		if !sameLie(query.Lie, c.Situation.Lie) {
			continue
		}
		if query.Condition() != c.Situation.Condition() {
			continue
		}
		out = append(out, c)
	}
	return out
}

// sameLie compares the effective lie, so an unset surface equals fairway.
func sameLie(a, b shot.Lie) bool {
	if a.Surface() != b.Surface() {
		return false
	}
	return strings.Join(a.Slopes(), ",") == strings.Join(b.Slopes(), ",")
}

func withinTolerance(want, got float64) bool {
	return math.Abs(got-want) <= strictTolerance*math.Abs(want)+1e-9
}

func firstN(cs []Candidate, n int) []Candidate {
	if n > len(cs) {
		n = len(cs)
	}
	return append([]Candidate(nil), cs[:n]...)
}

// parseRanking reads the "indices" array of a ranking reply. Every entry must
// be a whole number.
func parseRanking(obj map[string]any) ([]int, error) {
	raw, ok := obj["indices"]
	if !ok {
		return nil, fmt.Errorf("ranking output has no indices")
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("ranking indices are %T, not an array", raw)
	}
	out := make([]int, 0, len(items))
	for _, it := range items {
		f, ok := it.(float64)
		if !ok || f != math.Trunc(f) {
			return nil, fmt.Errorf("ranking index %v is not an integer", it)
		}
		out = append(out, int(f))
	}
	return out, nil
}

// selectIndices maps 1-based indices to candidates, dropping out-of-range
// and repeated entries, keeping at most target.
func selectIndices(pool []Candidate, indices []int, target int) []Candidate {
	seen := make(map[int]bool, len(indices))
	out := make([]Candidate, 0, target)
	for _, idx := range indices {
		if idx < 1 || idx > len(pool) || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, pool[idx-1])
		if len(out) == target {
			break
		}
	}
	return out
}

const rankingSystemPrompt = `You select which past golf shots are most useful as precedent for a new shot.
Judge each past shot on:
- condition similarity: distance, wind, lie and ground close to the current shot
- strategic applicability: whether the club and shot shape would suit the current shot
- feedback: liked shots are trusted; disliked shots are useful only as a warning
- outcome quality: prefer shots whose recorded result was good
- recency: newer shots reflect the golfer's current game
Reply with {"indices": [...]} holding 1-based shot numbers, best first.`

func rankingUserPrompt(query shot.Situation, pool []Candidate, target int, now time.Time) string {
	var b strings.Builder
	b.WriteString("Current shot:\n")
	b.WriteString(ConditionsText(query))
	fmt.Fprintf(&b, "\n\nPast shots (%d):\n", len(pool))
	for i, c := range pool {
		fmt.Fprintf(&b, "\n#%d similarity=%.2f feedback=%s age=%s\n%s\n", i+1, c.Score, feedbackLabel(c.Liked), ageLabel(c.Timestamp, now), c.FullText)
	}
	fmt.Fprintf(&b, "\nReturn at most %d numbers. Return an empty list if none are useful.", target)
	return b.String()
}

func feedbackLabel(liked *bool) string {
	switch {
	case liked == nil:
		return "none"
	case *liked:
		return "liked"
	default:
		return "disliked"
	}
}

func ageLabel(ts string, now time.Time) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return "unknown"
	}
	days := int(now.Sub(t).Hours() / 24)
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}

package shotmemory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/caddie-backend/internal/domain/shot"
	"github.com/yungbote/caddie-backend/internal/observability"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

// Candidate is a prior shot whose conditions resemble the query, carrying
// the full record text.
type Candidate struct {
	ShotID    string         `json:"shot_id"`
	Score     float64        `json:"score"`
	FullText  string         `json:"text"`
	Timestamp string         `json:"timestamp"`
	Situation shot.Situation `json:"situation"`
	Liked     *bool          `json:"liked,omitempty"`
	ClubUsed  string         `json:"club_used,omitempty"`
	Outcome   string         `json:"outcome,omitempty"`
}

type Retriever struct {
	store *DualStore
	log   *logger.Logger
}

func NewRetriever(store *DualStore, baseLog *logger.Logger) *Retriever {
	return &Retriever{store: store, log: baseLog.With("module", "ShotRetriever")}
}

// SearchByConditions returns up to k prior shots of the user scoring at
// least threshold, most similar first. It never fails: any collaborator
// error yields an empty list.
func (r *Retriever) SearchByConditions(ctx context.Context, conditionsText string, userID uuid.UUID, k int, threshold float64) []Candidate {
	ctx, span := observability.StartSpan(ctx, "shotmemory.search_by_conditions",
		attribute.Int("retrieval.k", k),
		attribute.Float64("retrieval.threshold", threshold),
	)
	defer span.End()

	out := r.search(ctx, conditionsText, userID, k, threshold)
	span.SetAttributes(attribute.Int("retrieval.results", len(out)))
	observability.Current().ObserveRetrieval(len(out))
	return out
}

func (r *Retriever) search(ctx context.Context, conditionsText string, userID uuid.UUID, k int, threshold float64) []Candidate {
	if k <= 0 || userID == uuid.Nil || strings.TrimSpace(conditionsText) == "" {
		return []Candidate{}
	}

	q, err := r.store.embedQuery(ctx, conditionsText)
	if err != nil {
		r.log.Warn("Embedding query conditions failed", "user_id", userID, "error", err)
		return []Candidate{}
	}
	matches, err := r.store.SearchConditions(ctx, q, userID.String(), k)
	if err != nil {
		r.log.Warn("Conditions search failed", "user_id", userID, "error", err)
		return []Candidate{}
	}

	scores := make(map[string]float64, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Score < threshold {
			continue
		}
		if _, dup := scores[m.ID]; dup {
			continue
		}
		scores[m.ID] = m.Score
		ids = append(ids, m.ID)
	}
	if len(ids) == 0 {
		return []Candidate{}
	}

	full, err := r.store.FetchFull(ctx, ids)
	if err != nil {
		r.log.Warn("Full record fetch failed", "user_id", userID, "ids", len(ids), "error", err)
		return []Candidate{}
	}
	byID := make(map[string]map[string]any, len(full))
	for _, v := range full {
		byID[v.ID] = v.Metadata
	}

	out := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		meta, ok := byID[id]
		if !ok {
			r.log.Warn("Shot missing from full namespace", "shot_id", id)
			continue
		}
		c := candidateFromMetadata(id, meta)
		c.Score = scores[id]
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func candidateFromMetadata(id string, meta map[string]any) Candidate {
	c := Candidate{
		ShotID:    id,
		FullText:  metaString(meta, MetaText),
		Timestamp: metaString(meta, MetaTimestamp),
		ClubUsed:  metaString(meta, MetaClubUsed),
		Outcome:   metaString(meta, MetaOutcome),
	}
	c.Situation.DistanceToFlag = metaFloat(meta, MetaDistance)
	c.Situation.WindSpeed = metaFloat(meta, MetaWindSpeed)
	c.Situation.WindDirection = metaString(meta, MetaWindDirection)
	c.Situation.Lie = lieFromMeta(metaString(meta, MetaSurface), metaString(meta, MetaSlopes))
	switch metaString(meta, MetaGround) {
	case "wet":
		c.Situation.WetGround = true
	case "firm":
		c.Situation.FirmGround = true
	}
	if liked, ok := meta[MetaLiked].(bool); ok {
		c.Liked = &liked
	}
	return c
}

func lieFromMeta(surface, slopes string) shot.Lie {
	var l shot.Lie
	switch surface {
	case shot.SurfaceFairway:
		l.Fairway = true
	case shot.SurfaceLightRough:
		l.LightRough = true
	case shot.SurfaceHeavyRough:
		l.HeavyRough = true
	case shot.SurfaceHardpan:
		l.Hardpan = true
	case shot.SurfaceDivot:
		l.Divot = true
	case shot.SurfaceBunker:
		l.Bunker = true
	}
	for _, s := range strings.Split(slopes, ",") {
		switch strings.TrimSpace(s) {
		case shot.SlopeUphill:
			l.Uphill = true
		case shot.SlopeDownhill:
			l.Downhill = true
		case shot.SlopeBallAboveFeet:
			l.BallAboveFeet = true
		case shot.SlopeBallBelowFeet:
			l.BallBelowFeet = true
		}
	}
	return l
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func metaFloat(meta map[string]any, key string) float64 {
	switch v := meta[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

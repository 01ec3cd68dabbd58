package shotmemory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/caddie-backend/internal/data/repos"
	"github.com/yungbote/caddie-backend/internal/domain/shot"
	"github.com/yungbote/caddie-backend/internal/observability"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

var (
	// ErrNotFound is returned when feedback matches no single shot.
	ErrNotFound = errors.New("shot not found")
	// ErrInvalidFeedback marks a malformed feedback request.
	ErrInvalidFeedback = errors.New("invalid shot feedback")
)

// Memory owns shot persistence: the relational ledger plus the two vector
// namespaces.
type Memory struct {
	store   *DualStore
	records repos.ShotRecordRepo
	log     *logger.Logger
	now     func() time.Time
}

func NewMemory(store *DualStore, records repos.ShotRecordRepo, baseLog *logger.Logger) *Memory {
	return &Memory{
		store:   store,
		records: records,
		log:     baseLog.With("module", "ShotMemory"),
		now:     time.Now,
	}
}

// Remember stores a new shot in the ledger and in both namespaces. The
// ledger row is written first so feedback can always find the shot.
func (m *Memory) Remember(ctx context.Context, rec *shot.Record) error {
	if rec == nil {
		return fmt.Errorf("nil shot record")
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.TimestampKey == "" {
		rec.TimestampKey = shot.FormatTimestamp(m.now())
	}
	rec.ConditionsText = ConditionsText(rec.Situation)
	rec.FullText = FullText(rec.Situation, rec.Recommendation, rec.Feedback)

	if _, err := m.records.Create(dbctx.Context{Ctx: ctx}, rec); err != nil {
		return fmt.Errorf("store shot ledger row: %w", err)
	}
	if err := m.store.Put(ctx, entryFor(rec)); err != nil {
		return fmt.Errorf("store shot vectors: %w", err)
	}
	return nil
}

func entryFor(rec *shot.Record) Entry {
	return Entry{
		ID:             rec.ID.String(),
		ConditionsText: rec.ConditionsText,
		FullText:       rec.FullText,
		Metadata:       Metadata(rec),
	}
}

type FeedbackInput struct {
	UserID    uuid.UUID
	Timestamp string
	Liked     bool
	ClubUsed  *string
	Outcome   *string
}

type FeedbackResult struct {
	ShotID  uuid.UUID
	Deleted bool
	Record  *shot.Record
}

// NormalizeTimestamp accepts any RFC 3339 rendering of a shot timestamp and
// returns the stored key form.
func NormalizeTimestamp(ts string) (string, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(ts))
	if err != nil {
		return "", fmt.Errorf("%w: timestamp %q is not RFC 3339", ErrInvalidFeedback, ts)
	}
	return shot.FormatTimestamp(t), nil
}

// ApplyFeedback finds the user's shot by timestamp. A dislike deletes the
// shot everywhere. A like merges the feedback and rewrites both vectors.
// The steps are not atomic across stores.
func (m *Memory) ApplyFeedback(ctx context.Context, in FeedbackInput) (FeedbackResult, error) {
	if in.UserID == uuid.Nil {
		return FeedbackResult{}, fmt.Errorf("%w: missing user", ErrInvalidFeedback)
	}
	key, err := NormalizeTimestamp(in.Timestamp)
	if err != nil {
		return FeedbackResult{}, err
	}

	dbc := dbctx.Context{Ctx: ctx}
	matches, err := m.records.FindByTimestamp(dbc, in.UserID, key)
	if err != nil {
		return FeedbackResult{}, fmt.Errorf("lookup shot: %w", err)
	}
	if len(matches) != 1 {
		if len(matches) > 1 {
			m.log.Warn("Feedback timestamp is ambiguous", "user_id", in.UserID, "timestamp", key, "matches", len(matches))
		}
		return FeedbackResult{}, fmt.Errorf("%w: timestamp %s", ErrNotFound, key)
	}
	rec := matches[0]
	observability.Current().IncFeedback(in.Liked)

	if !in.Liked {
		if err := m.store.Delete(ctx, rec.ID.String()); err != nil {
			return FeedbackResult{}, fmt.Errorf("delete shot vectors: %w", err)
		}
		if err := m.records.Delete(dbc, rec.ID); err != nil {
			return FeedbackResult{}, fmt.Errorf("delete shot ledger row: %w", err)
		}
		m.log.Info("Disliked shot removed from memory", "user_id", in.UserID, "shot_id", rec.ID)
		return FeedbackResult{ShotID: rec.ID, Deleted: true}, nil
	}

	liked := true
	rec.Liked = &liked
	if in.ClubUsed != nil {
		rec.ClubUsed = strings.TrimSpace(*in.ClubUsed)
	}
	if in.Outcome != nil {
		rec.Outcome = strings.TrimSpace(*in.Outcome)
	}
	rec.FullText = FullText(rec.Situation, rec.Recommendation, rec.Feedback)
	if rec.ConditionsText == "" {
		rec.ConditionsText = ConditionsText(rec.Situation)
	}

	if err := m.records.UpdateFeedback(dbc, rec.ID, rec.Feedback, rec.FullText); err != nil {
		return FeedbackResult{}, fmt.Errorf("update shot ledger row: %w", err)
	}
	if err := m.store.Rewrite(ctx, entryFor(rec)); err != nil {
		return FeedbackResult{}, fmt.Errorf("rewrite shot vectors: %w", err)
	}
	m.log.Info("Liked shot updated in memory", "user_id", in.UserID, "shot_id", rec.ID)
	return FeedbackResult{ShotID: rec.ID, Record: rec}, nil
}

// Recent lists the user's remembered shots, newest first.
func (m *Memory) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*shot.Record, error) {
	return m.records.ListRecent(dbctx.Context{Ctx: ctx}, userID, limit)
}

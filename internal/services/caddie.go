package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/caddie-backend/internal/data/repos"
	types "github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/domain/shot"
	"github.com/yungbote/caddie-backend/internal/modules/caddie"
	"github.com/yungbote/caddie-backend/internal/modules/shotmemory"
	"github.com/yungbote/caddie-backend/internal/platform/apierr"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

const (
	recentShotsDefault = 20
	recentShotsMax     = 100
)

type Recommender interface {
	Recommend(ctx context.Context, u *types.User, s shot.Situation) (*caddie.Recommendation, error)
}

type ShotMemory interface {
	ApplyFeedback(ctx context.Context, in shotmemory.FeedbackInput) (shotmemory.FeedbackResult, error)
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*shot.Record, error)
}

type FeedbackRequest struct {
	Timestamp string
	Liked     bool
	ClubUsed  *string
	Outcome   *string
}

type FeedbackView struct {
	ShotID  uuid.UUID    `json:"shot_id"`
	Deleted bool         `json:"deleted"`
	Shot    *shot.Record `json:"shot,omitempty"`
}

type CaddieService interface {
	Recommend(ctx context.Context, s shot.Situation) (*caddie.Recommendation, error)
	Feedback(ctx context.Context, in FeedbackRequest) (*FeedbackView, error)
	ListShots(ctx context.Context, limit int) ([]*shot.Record, error)
}

type caddieService struct {
	log         *logger.Logger
	userRepo    repos.UserRepo
	recommender Recommender
	memory      ShotMemory
}

func NewCaddieService(log *logger.Logger, userRepo repos.UserRepo, recommender Recommender, memory ShotMemory) CaddieService {
	return &caddieService{
		log:         log.With("service", "CaddieService"),
		userRepo:    userRepo,
		recommender: recommender,
		memory:      memory,
	}
}

func (cs *caddieService) Recommend(ctx context.Context, s shot.Situation) (*caddie.Recommendation, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	u, err := cs.userRepo.GetByID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, storeErr("caddie.get_user", err)
	}
	if u == nil {
		return nil, apierr.NotFound("user_not_found", errors.New("no golfer profile"))
	}

	rec, err := cs.recommender.Recommend(ctx, u, s)
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, caddie.ErrInvalidSituation):
		return nil, apierr.Validation("invalid_situation", err)
	case errors.Is(err, context.Canceled):
		return nil, err
	case errors.Is(err, caddie.ErrAgentFailed):
		cs.log.Warn("Recommendation failed", "user_id", userID, "error", err)
		return nil, apierr.Upstream("recommendation_failed", err)
	default:
		return nil, apierr.Internal("recommendation_failed", err)
	}
}

func (cs *caddieService) Feedback(ctx context.Context, in FeedbackRequest) (*FeedbackView, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	res, err := cs.memory.ApplyFeedback(ctx, shotmemory.FeedbackInput{
		UserID:    userID,
		Timestamp: in.Timestamp,
		Liked:     in.Liked,
		ClubUsed:  in.ClubUsed,
		Outcome:   in.Outcome,
	})
	switch {
	case err == nil:
		return &FeedbackView{ShotID: res.ShotID, Deleted: res.Deleted, Shot: res.Record}, nil
	case errors.Is(err, shotmemory.ErrInvalidFeedback):
		return nil, apierr.Validation("invalid_feedback", err)
	case errors.Is(err, shotmemory.ErrNotFound):
		return nil, apierr.NotFound("shot_not_found", err)
	default:
		cs.log.Error("Feedback failed", "user_id", userID, "error", err)
		return nil, apierr.Upstream("feedback_failed", fmt.Errorf("shot memory: %w", err))
	}
}

func (cs *caddieService) ListShots(ctx context.Context, limit int) ([]*shot.Record, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = recentShotsDefault
	}
	if limit > recentShotsMax {
		limit = recentShotsMax
	}
	out, err := cs.memory.Recent(ctx, userID, limit)
	if err != nil {
		return nil, storeErr("shot.list_recent", err)
	}
	return out, nil
}

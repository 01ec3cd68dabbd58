package services

import (
	"context"
	"errors"

	"github.com/yungbote/caddie-backend/internal/data/aggregates"
	"github.com/yungbote/caddie-backend/internal/data/repos"
	"github.com/yungbote/caddie-backend/internal/modules/handicap"
	"github.com/yungbote/caddie-backend/internal/platform/apierr"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

type DifferentialInput struct {
	Score        int
	CourseRating float64
	SlopeRating  float64
	TotalHoles   int
	TotalPar     int
}

type IndexCalculation struct {
	Index    float64   `json:"handicap_index"`
	NumUsed  int       `json:"num_used"`
	BestUsed []float64 `json:"best_differentials"`
}

type HandicapService interface {
	// Calculate is stateless: it reads and writes nothing.
	Calculate(ctx context.Context, differentials []float64) (*IndexCalculation, error)
	Differential(ctx context.Context, in DifferentialInput) (float64, error)
	Recompute(ctx context.Context) (*HandicapSummary, error)
}

type handicapService struct {
	log      *logger.Logger
	tx       aggregates.TxRunner
	userRepo repos.UserRepo
	updater  HandicapUpdater
}

func NewHandicapService(log *logger.Logger, tx aggregates.TxRunner, userRepo repos.UserRepo, updater HandicapUpdater) HandicapService {
	return &handicapService{
		log:      log.With("service", "HandicapService"),
		tx:       tx,
		userRepo: userRepo,
		updater:  updater,
	}
}

func handicapInputErr(err error) error {
	if errors.Is(err, handicap.ErrInvalidInput) {
		return apierr.Validation("invalid_handicap_input", err)
	}
	return apierr.Internal("handicap_failed", err)
}

func (hs *handicapService) Calculate(ctx context.Context, differentials []float64) (*IndexCalculation, error) {
	index, err := handicap.CalculateIndex(differentials)
	if err != nil {
		return nil, handicapInputErr(err)
	}
	n := handicap.NumToUse(len(differentials))
	return &IndexCalculation{
		Index:    index,
		NumUsed:  n,
		BestUsed: handicap.SelectBestDifferentials(differentials, n),
	}, nil
}

func (hs *handicapService) Differential(ctx context.Context, in DifferentialInput) (float64, error) {
	d, err := handicap.ScoreDifferential(in.Score, in.CourseRating, in.SlopeRating, in.TotalHoles, in.TotalPar)
	if err != nil {
		return 0, handicapInputErr(err)
	}
	return d, nil
}

func (hs *handicapService) Recompute(ctx context.Context) (*HandicapSummary, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	var out HandicapSummary
	err = hs.tx.InTx(ctx, func(dbc dbctx.Context) error {
		u, err := hs.userRepo.GetByID(dbc, userID)
		if err != nil {
			return storeErr("handicap.get_user", err)
		}
		if u == nil {
			return apierr.NotFound("user_not_found", errors.New("no golfer profile"))
		}
		res, err := hs.updater.Update(dbc, userID)
		if err != nil {
			return storeErr("handicap.update", err)
		}
		out = summarize(res, u.HandicapIndex)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

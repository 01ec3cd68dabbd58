package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/caddie-backend/internal/data/aggregates"
	"github.com/yungbote/caddie-backend/internal/data/repos"
	types "github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/modules/handicap"
	"github.com/yungbote/caddie-backend/internal/platform/apierr"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

const (
	minHolePar   = 3
	maxHolePar   = 6
	maxStrokes   = 20
	historyLimit = 10
	historyMax   = 50
)

type HoleConfig struct {
	HoleNumber int
	Par        int
	Yards      int
	Handicap   int
}

// StartRoundInput starts either from a stored tee (TeeID) or from an
// explicit hole configuration.
type StartRoundInput struct {
	CourseID     *uuid.UUID
	TeeID        *uuid.UUID
	CourseName   string
	TotalHoles   int
	Holes        []HoleConfig
	CourseRating *float64
	SlopeRating  *float64
}

type HoleUpdate struct {
	Strokes int
	Par     *int
	Notes   *string
}

type RoundPage struct {
	Rounds []*types.Round `json:"rounds"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// HandicapSummary reports the recompute that ran with a round change.
type HandicapSummary struct {
	Outcome        string   `json:"outcome"`
	Index          float64  `json:"handicap_index"`
	Previous       float64  `json:"previous_index"`
	RoundsInWindow int      `json:"rounds_in_window"`
	NumUsed        int      `json:"num_used"`
	SoftCapped     bool     `json:"soft_capped"`
	HardCapped     bool     `json:"hard_capped"`
	CountedRounds  []string `json:"counted_rounds"`
}

type RoundCompletion struct {
	Round    *types.Round    `json:"round"`
	Handicap HandicapSummary `json:"handicap"`
}

type HandicapUpdater interface {
	Update(dbc dbctx.Context, userID uuid.UUID) (handicap.Result, error)
}

type RoundService interface {
	Start(ctx context.Context, in StartRoundInput) (*types.Round, error)
	Active(ctx context.Context) (*types.Round, error)
	UpdateHole(ctx context.Context, roundID uuid.UUID, holeNumber int, in HoleUpdate) (*types.Round, error)
	// Complete finalizes the round, stores its differential and recomputes
	// the handicap in one transaction.
	Complete(ctx context.Context, roundID uuid.UUID, notes string) (*RoundCompletion, error)
	History(ctx context.Context, limit, offset int) (*RoundPage, error)
	Get(ctx context.Context, roundID uuid.UUID) (*types.Round, error)
	Delete(ctx context.Context, roundID uuid.UUID) error
}

type roundService struct {
	log        *logger.Logger
	tx         aggregates.TxRunner
	userRepo   repos.UserRepo
	courseRepo repos.CourseRepo
	roundRepo  repos.RoundRepo
	holeRepo   repos.HoleScoreRepo
	updater    HandicapUpdater
	now        func() time.Time
}

func NewRoundService(
	log *logger.Logger,
	tx aggregates.TxRunner,
	userRepo repos.UserRepo,
	courseRepo repos.CourseRepo,
	roundRepo repos.RoundRepo,
	holeRepo repos.HoleScoreRepo,
	updater HandicapUpdater,
) RoundService {
	return &roundService{
		log:        log.With("service", "RoundService"),
		tx:         tx,
		userRepo:   userRepo,
		courseRepo: courseRepo,
		roundRepo:  roundRepo,
		holeRepo:   holeRepo,
		updater:    updater,
		now:        time.Now,
	}
}

func roundNotFound(id uuid.UUID) error {
	return apierr.NotFound("round_not_found", fmt.Errorf("round %s not found", id))
}

func (rs *roundService) Start(ctx context.Context, in StartRoundInput) (*types.Round, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	var out *types.Round
	err = rs.tx.InTx(ctx, func(dbc dbctx.Context) error {
		active, err := rs.roundRepo.GetActive(dbc, userID)
		if err != nil {
			return storeErr("round.get_active", err)
		}
		if active != nil {
			return apierr.Conflict("active_round_exists", errors.New("complete the active round before starting another"))
		}

		var round *types.Round
		if in.TeeID != nil {
			round, err = rs.roundFromTee(dbc, userID, in)
		} else {
			round, err = roundFromConfig(in)
		}
		if err != nil {
			return err
		}
		round.UserID = userID
		round.StartTime = rs.now().UTC()

		created, err := rs.roundRepo.Create(dbc, round)
		if err != nil {
			return storeErr("round.start", err)
		}
		out = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	rs.log.Info("Round started", "user_id", userID, "round_id", out.ID, "holes", out.TotalHoles)
	return out, nil
}

func (rs *roundService) roundFromTee(dbc dbctx.Context, userID uuid.UUID, in StartRoundInput) (*types.Round, error) {
	tee, err := rs.courseRepo.GetTee(dbc, *in.TeeID)
	if err != nil {
		return nil, storeErr("round.get_tee", err)
	}
	if tee == nil {
		return nil, apierr.NotFound("tee_not_found", fmt.Errorf("tee %s not found", *in.TeeID))
	}
	if in.CourseID != nil && *in.CourseID != tee.CourseID {
		return nil, apierr.Validation("tee_course_mismatch", errors.New("tee does not belong to the course"))
	}
	if len(tee.Holes) == 0 {
		return nil, apierr.Validation("tee_without_holes", errors.New("tee has no hole data; provide the holes explicitly"))
	}
	if in.TotalHoles != 0 && in.TotalHoles != len(tee.Holes) {
		return nil, apierr.Validation("hole_count_mismatch", fmt.Errorf("tee has %d holes, requested %d", len(tee.Holes), in.TotalHoles))
	}
	course, err := rs.courseRepo.GetByID(dbc, tee.CourseID, false)
	if err != nil {
		return nil, storeErr("round.get_course", err)
	}
	u, err := rs.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, storeErr("round.get_user", err)
	}
	gender := ""
	if u != nil {
		gender = u.TeeGender
	}
	rating, slope := tee.Rating(gender)

	courseID, teeID := tee.CourseID, tee.ID
	round := &types.Round{
		CourseID:     &courseID,
		TeeID:        &teeID,
		TeeName:      tee.TeeName,
		TotalHoles:   len(tee.Holes),
		CourseRating: &rating,
		SlopeRating:  &slope,
	}
	if course != nil {
		round.CourseName = course.Name
	}
	for _, h := range tee.Holes {
		round.HoleScores = append(round.HoleScores, types.HoleScore{
			HoleNumber: h.HoleNumber,
			Par:        h.Par,
			Yards:      h.Yards,
			Handicap:   h.Handicap,
		})
		round.TotalPar += h.Par
	}
	return round, nil
}

func roundFromConfig(in StartRoundInput) (*types.Round, error) {
	name := strings.TrimSpace(in.CourseName)
	if name == "" {
		return nil, apierr.Validation("missing_course_name", errors.New("course_name required"))
	}
	if in.TotalHoles != 9 && in.TotalHoles != 18 {
		return nil, apierr.Validation("invalid_total_holes", errors.New("total_holes must be 9 or 18"))
	}
	if len(in.Holes) != in.TotalHoles {
		return nil, apierr.Validation("hole_count_mismatch", fmt.Errorf("number of holes in config (%d) doesn't match total_holes (%d)", len(in.Holes), in.TotalHoles))
	}
	if (in.CourseRating == nil) != (in.SlopeRating == nil) {
		return nil, apierr.Validation("incomplete_rating", errors.New("course_rating and slope_rating must be given together"))
	}
	if in.CourseRating != nil && (*in.CourseRating <= 0 || *in.SlopeRating <= 0) {
		return nil, apierr.Validation("invalid_rating", errors.New("course_rating and slope_rating must be positive"))
	}

	seen := make(map[int]bool, len(in.Holes))
	round := &types.Round{
		CourseName:   name,
		TotalHoles:   in.TotalHoles,
		CourseRating: in.CourseRating,
		SlopeRating:  in.SlopeRating,
	}
	for _, h := range in.Holes {
		if h.HoleNumber < 1 || h.HoleNumber > in.TotalHoles || seen[h.HoleNumber] {
			return nil, apierr.Validation("invalid_hole_numbers", errors.New("hole numbers must be sequential from 1 to total_holes"))
		}
		seen[h.HoleNumber] = true
		if h.Par < minHolePar || h.Par > maxHolePar {
			return nil, apierr.Validation("invalid_par", fmt.Errorf("hole %d: par must be between %d and %d", h.HoleNumber, minHolePar, maxHolePar))
		}
		round.HoleScores = append(round.HoleScores, types.HoleScore{
			HoleNumber: h.HoleNumber,
			Par:        h.Par,
			Yards:      h.Yards,
			Handicap:   h.Handicap,
		})
		round.TotalPar += h.Par
	}
	return round, nil
}

func (rs *roundService) Active(ctx context.Context) (*types.Round, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	r, err := rs.roundRepo.GetActive(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, storeErr("round.get_active", err)
	}
	if r == nil {
		return nil, apierr.NotFound("no_active_round", errors.New("no active round"))
	}
	return r, nil
}

func (rs *roundService) UpdateHole(ctx context.Context, roundID uuid.UUID, holeNumber int, in HoleUpdate) (*types.Round, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	if in.Strokes < 1 || in.Strokes > maxStrokes {
		return nil, apierr.Validation("invalid_strokes", fmt.Errorf("strokes must be between 1 and %d", maxStrokes))
	}
	if in.Par != nil && (*in.Par < minHolePar || *in.Par > maxHolePar) {
		return nil, apierr.Validation("invalid_par", fmt.Errorf("par must be between %d and %d", minHolePar, maxHolePar))
	}

	var out *types.Round
	err = rs.tx.InTx(ctx, func(dbc dbctx.Context) error {
		round, err := rs.roundRepo.GetByID(dbc, userID, roundID, false)
		if err != nil {
			return storeErr("round.get", err)
		}
		if round == nil {
			return roundNotFound(roundID)
		}
		if round.IsCompleted {
			return apierr.Conflict("round_completed", errors.New("cannot update a completed round"))
		}
		hole, err := rs.holeRepo.Get(dbc, roundID, holeNumber)
		if err != nil {
			return storeErr("hole.get", err)
		}
		if hole == nil {
			return apierr.NotFound("hole_not_found", fmt.Errorf("hole %d not found in round", holeNumber))
		}

		if in.Par != nil {
			hole.Par = *in.Par
		}
		if in.Notes != nil {
			hole.Notes = strings.TrimSpace(*in.Notes)
		}
		now := rs.now().UTC()
		hole.Strokes = in.Strokes
		hole.ScoreToPar = in.Strokes - hole.Par
		hole.CompletedAt = &now
		if err := rs.holeRepo.Upsert(dbc, hole); err != nil {
			return storeErr("hole.upsert", err)
		}

		strokes, par, err := rs.holeRepo.Totals(dbc, roundID)
		if err != nil {
			return storeErr("hole.totals", err)
		}
		if err := rs.roundRepo.UpdateTotals(dbc, roundID, strokes, par); err != nil {
			return storeErr("round.update_totals", err)
		}
		out, err = rs.roundRepo.GetByID(dbc, userID, roundID, true)
		if err != nil {
			return storeErr("round.get", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func allHolesPlayed(holes []types.HoleScore) bool {
	if len(holes) == 0 {
		return false
	}
	for _, h := range holes {
		if h.Strokes <= 0 {
			return false
		}
	}
	return true
}

func (rs *roundService) Complete(ctx context.Context, roundID uuid.UUID, notes string) (*RoundCompletion, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	var out *RoundCompletion
	err = rs.tx.InTx(ctx, func(dbc dbctx.Context) error {
		round, err := rs.roundRepo.GetByID(dbc, userID, roundID, true)
		if err != nil {
			return storeErr("round.get", err)
		}
		if round == nil {
			return roundNotFound(roundID)
		}
		if round.IsCompleted {
			return apierr.Conflict("round_completed", errors.New("round is already completed"))
		}
		user, err := rs.userRepo.GetByID(dbc, userID)
		if err != nil {
			return storeErr("round.get_user", err)
		}
		if user == nil {
			return apierr.NotFound("user_not_found", fmt.Errorf("user %s has no golfer profile", userID))
		}
		previous := user.HandicapIndex

		strokes, par, err := rs.holeRepo.Totals(dbc, roundID)
		if err != nil {
			return storeErr("hole.totals", err)
		}
		if err := rs.roundRepo.UpdateTotals(dbc, roundID, strokes, par); err != nil {
			return storeErr("round.update_totals", err)
		}

		diff := rs.differential(round, strokes, par)
		if err := rs.roundRepo.Complete(dbc, roundID, rs.now().UTC(), diff, strings.TrimSpace(notes)); err != nil {
			return storeErr("round.complete", err)
		}
		res, err := rs.updater.Update(dbc, userID)
		if err != nil {
			return storeErr("handicap.update", err)
		}

		completed, err := rs.roundRepo.GetByID(dbc, userID, roundID, true)
		if err != nil {
			return storeErr("round.get", err)
		}
		out = &RoundCompletion{Round: completed, Handicap: summarize(res, previous)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	rs.log.Info("Round completed",
		"user_id", userID,
		"round_id", roundID,
		"differential", out.Round.ScoreDifferential,
		"handicap_outcome", out.Handicap.Outcome,
	)
	return out, nil
}

// differential is nil when the round has no rating snapshot or an unplayed
// hole; such rounds never count toward the handicap.
func (rs *roundService) differential(round *types.Round, strokes, par int) *float64 {
	if round.CourseRating == nil || round.SlopeRating == nil {
		return nil
	}
	if !allHolesPlayed(round.HoleScores) {
		rs.log.Debug("Round has unplayed holes; no differential", "round_id", round.ID)
		return nil
	}
	if round.TotalHoles == 9 && handicap.IsEighteenHoleRating(*round.CourseRating, par) {
		rs.log.Debug("Nine-hole round carries an eighteen-hole rating; halving", "round_id", round.ID, "rating", *round.CourseRating)
	}
	d, err := handicap.ScoreDifferential(strokes, *round.CourseRating, *round.SlopeRating, round.TotalHoles, par)
	if err != nil {
		rs.log.Warn("Differential not computable", "round_id", round.ID, "error", err)
		return nil
	}
	return &d
}

func summarize(res handicap.Result, previous float64) HandicapSummary {
	s := HandicapSummary{
		Outcome:        res.Outcome,
		Index:          res.Profile.HandicapIndex,
		Previous:       previous,
		RoundsInWindow: res.Rounds,
		NumUsed:        res.NumUsed,
		SoftCapped:     res.SoftCapped,
		HardCapped:     res.HardCapped,
		CountedRounds:  make([]string, 0, len(res.Counted)),
	}
	for _, id := range res.Counted {
		s.CountedRounds = append(s.CountedRounds, id.String())
	}
	return s
}

func (rs *roundService) History(ctx context.Context, limit, offset int) (*RoundPage, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = historyLimit
	}
	if limit > historyMax {
		limit = historyMax
	}
	if offset < 0 {
		offset = 0
	}
	rounds, total, err := rs.roundRepo.ListCompleted(dbctx.Context{Ctx: ctx}, userID, limit, offset)
	if err != nil {
		return nil, storeErr("round.history", err)
	}
	return &RoundPage{Rounds: rounds, Total: total, Limit: limit, Offset: offset}, nil
}

func (rs *roundService) Get(ctx context.Context, roundID uuid.UUID) (*types.Round, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	r, err := rs.roundRepo.GetByID(dbctx.Context{Ctx: ctx}, userID, roundID, true)
	if err != nil {
		return nil, storeErr("round.get", err)
	}
	if r == nil {
		return nil, roundNotFound(roundID)
	}
	return r, nil
}

// Delete removes the round and its holes. Deleting a scored round
// recomputes the handicap in the same transaction.
func (rs *roundService) Delete(ctx context.Context, roundID uuid.UUID) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	return rs.tx.InTx(ctx, func(dbc dbctx.Context) error {
		round, err := rs.roundRepo.GetByID(dbc, userID, roundID, false)
		if err != nil {
			return storeErr("round.get", err)
		}
		if round == nil {
			return roundNotFound(roundID)
		}
		deleted, err := rs.roundRepo.Delete(dbc, userID, roundID)
		if err != nil {
			return storeErr("round.delete", err)
		}
		if !deleted {
			return roundNotFound(roundID)
		}
		if round.IsCompleted && round.ScoreDifferential != nil {
			if _, err := rs.updater.Update(dbc, userID); err != nil {
				return storeErr("handicap.update", err)
			}
		}
		rs.log.Info("Round deleted", "user_id", userID, "round_id", roundID)
		return nil
	})
}

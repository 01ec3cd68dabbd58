package golf

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

type HoleScoreRepo interface {
	Get(dbc dbctx.Context, roundID uuid.UUID, holeNumber int) (*types.HoleScore, error)
	// Upsert writes the score for (round_id, hole_number).
	Upsert(dbc dbctx.Context, row *types.HoleScore) error
	ListByRound(dbc dbctx.Context, roundID uuid.UUID) ([]*types.HoleScore, error)
	// Totals sums strokes and par over every hole of the round.
	Totals(dbc dbctx.Context, roundID uuid.UUID) (strokes int, par int, err error)
}

type holeScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHoleScoreRepo(db *gorm.DB, baseLog *logger.Logger) HoleScoreRepo {
	return &holeScoreRepo{db: db, log: baseLog.With("repo", "HoleScoreRepo")}
}

func (r *holeScoreRepo) Get(dbc dbctx.Context, roundID uuid.UUID, holeNumber int) (*types.HoleScore, error) {
	var row types.HoleScore
	err := dbc.DB(r.db).
		Where("round_id = ? AND hole_number = ?", roundID, holeNumber).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *holeScoreRepo) Upsert(dbc dbctx.Context, row *types.HoleScore) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "round_id"}, {Name: "hole_number"}},
			DoUpdates: clause.AssignmentColumns([]string{"par", "strokes", "score_to_par", "notes", "completed_at"}),
		}).
		Create(row).Error
}

func (r *holeScoreRepo) ListByRound(dbc dbctx.Context, roundID uuid.UUID) ([]*types.HoleScore, error) {
	var out []*types.HoleScore
	err := dbc.DB(r.db).
		Where("round_id = ?", roundID).
		Order("hole_number ASC").
		Find(&out).Error
	return out, err
}

func (r *holeScoreRepo) Totals(dbc dbctx.Context, roundID uuid.UUID) (int, int, error) {
	var agg struct {
		Strokes int
		Par     int
	}
	err := dbc.DB(r.db).
		Model(&types.HoleScore{}).
		Select("COALESCE(SUM(strokes), 0) AS strokes, COALESCE(SUM(par), 0) AS par").
		Where("round_id = ?", roundID).
		Scan(&agg).Error
	return agg.Strokes, agg.Par, err
}

package golf

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

// HandicapWindow is how many recent scored rounds feed the handicap index.
const HandicapWindow = 20

type RoundRepo interface {
	// Create persists the round and its initial hole rows. A second active
	// round for the same user violates ux_golf_round_active_user.
	Create(dbc dbctx.Context, round *types.Round) (*types.Round, error)
	GetByID(dbc dbctx.Context, userID, roundID uuid.UUID, withHoles bool) (*types.Round, error)
	GetActive(dbc dbctx.Context, userID uuid.UUID) (*types.Round, error)
	ListCompleted(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.Round, int64, error)
	// ListHandicapWindow returns the latest completed rounds with a
	// differential, newest first.
	ListHandicapWindow(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Round, error)
	UpdateTotals(dbc dbctx.Context, roundID uuid.UUID, totalShots, totalPar int) error
	Complete(dbc dbctx.Context, roundID uuid.UUID, endTime time.Time, differential *float64, notes string) error
	// SetInclusion marks exactly includedIDs as counted for the user.
	SetInclusion(dbc dbctx.Context, userID uuid.UUID, includedIDs []uuid.UUID) error
	Delete(dbc dbctx.Context, userID, roundID uuid.UUID) (bool, error)
}

type roundRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoundRepo(db *gorm.DB, baseLog *logger.Logger) RoundRepo {
	return &roundRepo{db: db, log: baseLog.With("repo", "RoundRepo")}
}

func (r *roundRepo) Create(dbc dbctx.Context, round *types.Round) (*types.Round, error) {
	if round == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(round).Error; err != nil {
		return nil, err
	}
	return round, nil
}

func (r *roundRepo) GetByID(dbc dbctx.Context, userID, roundID uuid.UUID, withHoles bool) (*types.Round, error) {
	if roundID == uuid.Nil {
		return nil, nil
	}
	q := dbc.DB(r.db)
	if withHoles {
		q = q.Preload("HoleScores", orderedHoles)
	}
	var row types.Round
	if err := q.Where("id = ? AND user_id = ?", roundID, userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *roundRepo) GetActive(dbc dbctx.Context, userID uuid.UUID) (*types.Round, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.Round
	err := dbc.DB(r.db).
		Preload("HoleScores", orderedHoles).
		Where("user_id = ? AND is_completed = ?", userID, false).
		Order("start_time DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *roundRepo) ListCompleted(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.Round, int64, error) {
	var out []*types.Round
	if userID == uuid.Nil {
		return out, 0, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	base := dbc.DB(r.db).Model(&types.Round{}).Where("user_id = ? AND is_completed = ?", userID, true)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := dbc.DB(r.db).
		Where("user_id = ? AND is_completed = ?", userID, true).
		Order("end_time DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *roundRepo) ListHandicapWindow(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Round, error) {
	var out []*types.Round
	if userID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 {
		limit = HandicapWindow
	}
	err := dbc.DB(r.db).
		Where("user_id = ? AND is_completed = ? AND score_differential IS NOT NULL", userID, true).
		Order("end_time DESC").
		Order("id ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *roundRepo) UpdateTotals(dbc dbctx.Context, roundID uuid.UUID, totalShots, totalPar int) error {
	return dbc.DB(r.db).
		Model(&types.Round{}).
		Where("id = ?", roundID).
		Updates(map[string]any{
			"total_shots": totalShots,
			"total_par":   totalPar,
		}).Error
}

func (r *roundRepo) Complete(dbc dbctx.Context, roundID uuid.UUID, endTime time.Time, differential *float64, notes string) error {
	return dbc.DB(r.db).
		Model(&types.Round{}).
		Where("id = ? AND is_completed = ?", roundID, false).
		Updates(map[string]any{
			"is_completed":       true,
			"end_time":           endTime,
			"score_differential": differential,
			"notes":              notes,
		}).Error
}

func (r *roundRepo) SetInclusion(dbc dbctx.Context, userID uuid.UUID, includedIDs []uuid.UUID) error {
	db := dbc.DB(r.db)
	if err := db.Model(&types.Round{}).
		Where("user_id = ?", userID).
		Update("included_in_handicap", false).Error; err != nil {
		return err
	}
	if len(includedIDs) == 0 {
		return nil
	}
	return db.Model(&types.Round{}).
		Where("user_id = ? AND id IN ?", userID, includedIDs).
		Update("included_in_handicap", true).Error
}

func (r *roundRepo) Delete(dbc dbctx.Context, userID, roundID uuid.UUID) (bool, error) {
	db := dbc.DB(r.db)
	var deleted bool
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", roundID, userID).Delete(&types.Round{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Where("round_id = ?", roundID).Delete(&types.HoleScore{}).Error
	})
	return deleted, err
}

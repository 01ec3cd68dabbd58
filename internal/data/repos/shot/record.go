package shot

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

// RecordRepo is the relational ledger of shots held in vector memory.
type RecordRepo interface {
	Create(dbc dbctx.Context, rec *types.ShotRecord) (*types.ShotRecord, error)
	GetByID(dbc dbctx.Context, userID, shotID uuid.UUID) (*types.ShotRecord, error)
	// FindByTimestamp returns every record of the user with the given key.
	FindByTimestamp(dbc dbctx.Context, userID uuid.UUID, timestampKey string) ([]*types.ShotRecord, error)
	ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ShotRecord, error)
	UpdateFeedback(dbc dbctx.Context, shotID uuid.UUID, fb types.ShotFeedback, fullText string) error
	Delete(dbc dbctx.Context, shotID uuid.UUID) error
}

type recordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecordRepo(db *gorm.DB, baseLog *logger.Logger) RecordRepo {
	return &recordRepo{db: db, log: baseLog.With("repo", "ShotRecordRepo")}
}

func (r *recordRepo) Create(dbc dbctx.Context, rec *types.ShotRecord) (*types.ShotRecord, error) {
	if rec == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *recordRepo) GetByID(dbc dbctx.Context, userID, shotID uuid.UUID) (*types.ShotRecord, error) {
	if shotID == uuid.Nil {
		return nil, nil
	}
	var row types.ShotRecord
	err := dbc.DB(r.db).Where("id = ? AND user_id = ?", shotID, userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *recordRepo) FindByTimestamp(dbc dbctx.Context, userID uuid.UUID, timestampKey string) ([]*types.ShotRecord, error) {
	var out []*types.ShotRecord
	if userID == uuid.Nil || timestampKey == "" {
		return out, nil
	}
	err := dbc.DB(r.db).
		Where("user_id = ? AND timestamp_key = ?", userID, timestampKey).
		Limit(2).
		Find(&out).Error
	return out, err
}

func (r *recordRepo) ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ShotRecord, error) {
	var out []*types.ShotRecord
	if userID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *recordRepo) UpdateFeedback(dbc dbctx.Context, shotID uuid.UUID, fb types.ShotFeedback, fullText string) error {
	return dbc.DB(r.db).
		Model(&types.ShotRecord{}).
		Where("id = ?", shotID).
		Updates(map[string]any{
			"liked":     fb.Liked,
			"club_used": fb.ClubUsed,
			"outcome":   fb.Outcome,
			"full_text": fullText,
		}).Error
}

func (r *recordRepo) Delete(dbc dbctx.Context, shotID uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", shotID).Delete(&types.ShotRecord{}).Error
}

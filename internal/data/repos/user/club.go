package user

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

type ClubRepo interface {
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Club, error)
	CreateMany(dbc dbctx.Context, clubs []*types.Club) ([]*types.Club, error)
	// UpdateByName applies updates to the named club and reports whether it exists.
	UpdateByName(dbc dbctx.Context, userID uuid.UUID, name string, updates map[string]any) (bool, error)
	DeleteByName(dbc dbctx.Context, userID uuid.UUID, name string) (bool, error)
}

type clubRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClubRepo(db *gorm.DB, baseLog *logger.Logger) ClubRepo {
	return &clubRepo{db: db, log: baseLog.With("repo", "ClubRepo")}
}

func (r *clubRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Club, error) {
	var out []*types.Club
	if userID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("distance_meter DESC").
		Order("name ASC").
		Find(&out).Error
	return out, err
}

func (r *clubRepo) CreateMany(dbc dbctx.Context, clubs []*types.Club) ([]*types.Club, error) {
	if len(clubs) == 0 {
		return []*types.Club{}, nil
	}
	for _, c := range clubs {
		c.Name = strings.TrimSpace(c.Name)
	}
	if err := dbc.DB(r.db).Create(&clubs).Error; err != nil {
		return nil, err
	}
	return clubs, nil
}

func (r *clubRepo) UpdateByName(dbc dbctx.Context, userID uuid.UUID, name string, updates map[string]any) (bool, error) {
	q := dbc.DB(r.db).
		Model(&types.Club{}).
		Where("user_id = ? AND name = ?", userID, strings.TrimSpace(name))
	if len(updates) == 0 {
		var count int64
		err := q.Count(&count).Error
		return count > 0, err
	}
	res := q.Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *clubRepo) DeleteByName(dbc dbctx.Context, userID uuid.UUID, name string) (bool, error) {
	res := dbc.DB(r.db).
		Where("user_id = ? AND name = ?", userID, strings.TrimSpace(name)).
		Delete(&types.Club{})
	return res.RowsAffected > 0, res.Error
}

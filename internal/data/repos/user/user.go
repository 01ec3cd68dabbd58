package user

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, user *types.User) (*types.User, error)
	GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.User, error)
	UpdateName(dbc dbctx.Context, userID uuid.UUID, firstName, lastName string) error
	UpdateTeeGender(dbc dbctx.Context, userID uuid.UUID, teeGender string) error
	// SetStartingHandicap records a declared index before any round counts.
	SetStartingHandicap(dbc dbctx.Context, userID uuid.UUID, index float64) error
	UpdateHandicapProfile(dbc dbctx.Context, userID uuid.UUID, profile types.HandicapProfile) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, user *types.User) (*types.User, error) {
	if user == nil {
		return nil, nil
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := dbc.DB(r.db).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.User
	err := dbc.DB(r.db).Where("id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *userRepo) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var row types.User
	err := dbc.DB(r.db).Where("email = ?", email).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *userRepo) UpdateName(dbc dbctx.Context, userID uuid.UUID, firstName, lastName string) error {
	return dbc.DB(r.db).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"first_name": firstName,
			"last_name":  lastName,
		}).Error
}

func (r *userRepo) UpdateTeeGender(dbc dbctx.Context, userID uuid.UUID, teeGender string) error {
	return dbc.DB(r.db).
		Model(&types.User{}).
		Where("id = ?", userID).
		Update("tee_gender", teeGender).Error
}

func (r *userRepo) SetStartingHandicap(dbc dbctx.Context, userID uuid.UUID, index float64) error {
	return dbc.DB(r.db).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"handicap_index":         index,
			"initial_handicap":       index,
			"handicap_baseline":      nil,
			"handicap_round_set_key": "",
		}).Error
}

func (r *userRepo) UpdateHandicapProfile(dbc dbctx.Context, userID uuid.UUID, profile types.HandicapProfile) error {
	return dbc.DB(r.db).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"handicap_index":         profile.HandicapIndex,
			"last_handicap_update":   profile.LastHandicapUpdate,
			"handicap_baseline":      profile.HandicapBaseline,
			"handicap_round_set_key": profile.RoundSetKey,
		}).Error
}

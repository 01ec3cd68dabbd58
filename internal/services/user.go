package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/yungbote/caddie-backend/internal/data/repos"
	types "github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/domain/user"
	"github.com/yungbote/caddie-backend/internal/platform/apierr"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

type ProvisionInput struct {
	Email     string
	FirstName string
	LastName  string
	TeeGender string
}

type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	TeeGender *string
}

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	// Provision creates the golfer profile for the authenticated subject.
	// It returns the existing profile when one is already stored.
	Provision(ctx context.Context, in ProvisionInput) (*types.User, bool, error)
	UpdateProfile(ctx context.Context, in ProfileUpdate) (*types.User, error)
	// SetStartingHandicap declares an index before any round has counted.
	SetStartingHandicap(ctx context.Context, index float64) (*types.User, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{log: log.With("service", "UserService"), userRepo: userRepo}
}

func (us *userService) load(ctx context.Context) (*types.User, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	u, err := us.userRepo.GetByID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, storeErr("user.get", err)
	}
	if u == nil {
		return nil, apierr.NotFound("user_not_found", fmt.Errorf("user %s has no golfer profile", userID))
	}
	return u, nil
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	return us.load(ctx)
}

func normalizeTeeGender(v string) (string, error) {
	switch g := strings.ToLower(strings.TrimSpace(v)); g {
	case "":
		return user.TeeGenderMale, nil
	case user.TeeGenderMale, user.TeeGenderFemale:
		return g, nil
	default:
		return "", apierr.Validation("invalid_tee_gender", fmt.Errorf("tee_gender must be %q or %q", user.TeeGenderMale, user.TeeGenderFemale))
	}
}

func (us *userService) Provision(ctx context.Context, in ProvisionInput) (*types.User, bool, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, false, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	existing, err := us.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, false, storeErr("user.get", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	email := strings.TrimSpace(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, false, apierr.Validation("invalid_email", fmt.Errorf("email is not a valid address"))
	}
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return nil, false, apierr.Validation("missing_name", errors.New("first_name and last_name required"))
	}
	gender, err := normalizeTeeGender(in.TeeGender)
	if err != nil {
		return nil, false, err
	}

	created, err := us.userRepo.Create(dbc, &types.User{
		ID:        userID,
		Email:     email,
		FirstName: first,
		LastName:  last,
		TeeGender: gender,
	})
	if err != nil {
		return nil, false, storeErr("user.provision", err)
	}
	us.log.Info("Golfer provisioned", "user_id", userID)
	return created, true, nil
}

func (us *userService) UpdateProfile(ctx context.Context, in ProfileUpdate) (*types.User, error) {
	u, err := us.load(ctx)
	if err != nil {
		return nil, err
	}
	if in.FirstName == nil && in.LastName == nil && in.TeeGender == nil {
		return nil, apierr.Validation("no_updates", errors.New("no profile updates provided"))
	}
	dbc := dbctx.Context{Ctx: ctx}

	if in.FirstName != nil || in.LastName != nil {
		first, last := u.FirstName, u.LastName
		if in.FirstName != nil {
			first = strings.TrimSpace(*in.FirstName)
		}
		if in.LastName != nil {
			last = strings.TrimSpace(*in.LastName)
		}
		if first == "" || last == "" {
			return nil, apierr.Validation("missing_name", errors.New("first_name and last_name must not be empty"))
		}
		if err := us.userRepo.UpdateName(dbc, u.ID, first, last); err != nil {
			return nil, storeErr("user.update_name", err)
		}
	}
	if in.TeeGender != nil {
		gender, err := normalizeTeeGender(*in.TeeGender)
		if err != nil {
			return nil, err
		}
		if err := us.userRepo.UpdateTeeGender(dbc, u.ID, gender); err != nil {
			return nil, storeErr("user.update_tee_gender", err)
		}
	}
	return us.load(ctx)
}

func (us *userService) SetStartingHandicap(ctx context.Context, index float64) (*types.User, error) {
	u, err := us.load(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index > user.NewGolferHandicap {
		return nil, apierr.Validation("invalid_handicap", fmt.Errorf("handicap index must be between 0 and %.0f", user.NewGolferHandicap))
	}
	if err := us.userRepo.SetStartingHandicap(dbctx.Context{Ctx: ctx}, u.ID, index); err != nil {
		return nil, storeErr("user.set_starting_handicap", err)
	}
	us.log.Info("Starting handicap declared", "user_id", u.ID, "index", index)
	return us.load(ctx)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/caddie-backend/internal/data/repos"
	types "github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/platform/apierr"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

const maxClubDistanceMeter = 400

type ClubInput struct {
	Name          string
	DistanceMeter int
	Preferred     bool
}

type ClubPatch struct {
	Name          *string
	DistanceMeter *int
	Preferred     *bool
}

type ClubService interface {
	List(ctx context.Context) ([]*types.Club, error)
	AddMany(ctx context.Context, clubs []ClubInput) ([]*types.Club, error)
	UpdateByName(ctx context.Context, name string, patch ClubPatch) ([]*types.Club, error)
	DeleteByName(ctx context.Context, name string) error
}

type clubService struct {
	log      *logger.Logger
	clubRepo repos.ClubRepo
}

func NewClubService(log *logger.Logger, clubRepo repos.ClubRepo) ClubService {
	return &clubService{log: log.With("service", "ClubService"), clubRepo: clubRepo}
}

func validateClubDistance(d int) error {
	if d <= 0 || d > maxClubDistanceMeter {
		return apierr.Validation("invalid_distance", fmt.Errorf("distance_meter must be between 1 and %d", maxClubDistanceMeter))
	}
	return nil
}

func (cs *clubService) List(ctx context.Context) ([]*types.Club, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	clubs, err := cs.clubRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, storeErr("club.list", err)
	}
	return clubs, nil
}

func (cs *clubService) AddMany(ctx context.Context, in []ClubInput) ([]*types.Club, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	if len(in) == 0 {
		return nil, apierr.Validation("no_clubs", errors.New("at least one club required"))
	}
	seen := make(map[string]bool, len(in))
	rows := make([]*types.Club, 0, len(in))
	for _, c := range in {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, apierr.Validation("missing_club_name", errors.New("club name required"))
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, apierr.Validation("duplicate_club", fmt.Errorf("club %q listed twice", name))
		}
		seen[key] = true
		if err := validateClubDistance(c.DistanceMeter); err != nil {
			return nil, err
		}
		rows = append(rows, &types.Club{UserID: userID, Name: name, DistanceMeter: c.DistanceMeter, Preferred: c.Preferred})
	}

	created, err := cs.clubRepo.CreateMany(dbctx.Context{Ctx: ctx}, rows)
	if err != nil {
		return nil, storeErr("club.create", err)
	}
	cs.log.Info("Clubs added", "user_id", userID, "count", len(created))
	return created, nil
}

func (cs *clubService) UpdateByName(ctx context.Context, name string, patch ClubPatch) ([]*types.Club, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if patch.Name != nil {
		n := strings.TrimSpace(*patch.Name)
		if n == "" {
			return nil, apierr.Validation("missing_club_name", errors.New("club name must not be empty"))
		}
		updates["name"] = n
	}
	if patch.DistanceMeter != nil {
		if err := validateClubDistance(*patch.DistanceMeter); err != nil {
			return nil, err
		}
		updates["distance_meter"] = *patch.DistanceMeter
	}
	if patch.Preferred != nil {
		updates["preferred"] = *patch.Preferred
	}
	if len(updates) == 0 {
		return nil, apierr.Validation("no_updates", errors.New("no club updates provided"))
	}

	dbc := dbctx.Context{Ctx: ctx}
	found, err := cs.clubRepo.UpdateByName(dbc, userID, name, updates)
	if err != nil {
		return nil, storeErr("club.update", err)
	}
	if !found {
		return nil, apierr.NotFound("club_not_found", fmt.Errorf("club %q not found", strings.TrimSpace(name)))
	}
	return cs.List(ctx)
}

func (cs *clubService) DeleteByName(ctx context.Context, name string) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	found, err := cs.clubRepo.DeleteByName(dbctx.Context{Ctx: ctx}, userID, name)
	if err != nil {
		return storeErr("club.delete", err)
	}
	if !found {
		return apierr.NotFound("club_not_found", fmt.Errorf("club %q not found", strings.TrimSpace(name)))
	}
	return nil
}

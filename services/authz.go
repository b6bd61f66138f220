package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/golfcompete/golfcompete/models"
	"github.com/golfcompete/golfcompete/repositories"
)

// Guard evaluates whether an actor may mutate a resource. Rules are checked
// in precedence order, first match wins:
//
//  1. site admin
//  2. resource creator
//  3. series admin of the owning series (active membership with role=admin)
//  4. denied
//
// A denial never reveals whether the resource exists; the not-found vs
// forbidden distinction is made by the caller that loaded the resource.
type Guard struct {
	userRepo        repositories.UserRepository
	participantRepo repositories.SeriesParticipantRepository
}

func NewGuard(userRepo repositories.UserRepository, participantRepo repositories.SeriesParticipantRepository) *Guard {
	return &Guard{
		userRepo:        userRepo,
		participantRepo: participantRepo,
	}
}

// IsSiteAdmin reports whether the actor holds the site-wide admin role.
func (g *Guard) IsSiteAdmin(ctx context.Context, actorID int) (bool, error) {
	user, err := g.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to resolve actor %d: %w", actorID, err)
	}
	return user.Role == models.RoleAdmin, nil
}

// IsSeriesAdmin reports whether the actor is an active admin participant of
// the series.
func (g *Guard) IsSeriesAdmin(ctx context.Context, actorID, seriesID int) (bool, error) {
	p, err := g.participantRepo.GetBySeriesAndUser(ctx, seriesID, actorID)
	if err != nil {
		if errors.Is(err, repositories.ErrSeriesParticipantNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to resolve series membership: %w", err)
	}
	return p.Role == models.SeriesRoleAdmin && p.Status == models.SeriesParticipantActive, nil
}

// CanManageSeries answers whether the actor may update or delete the series.
func (g *Guard) CanManageSeries(ctx context.Context, actorID int, series *models.Series) (bool, error) {
	if ok, err := g.IsSiteAdmin(ctx, actorID); err != nil || ok {
		return ok, err
	}
	if series.CreatedBy == actorID {
		return true, nil
	}
	return g.IsSeriesAdmin(ctx, actorID, series.ID)
}

// CanManageEvent answers whether the actor may update or delete the event.
// Series admins of the containing series count, so an event nested under a
// series can be managed by anyone running that series.
func (g *Guard) CanManageEvent(ctx context.Context, actorID int, event *models.Event) (bool, error) {
	if ok, err := g.IsSiteAdmin(ctx, actorID); err != nil || ok {
		return ok, err
	}
	if event.CreatedBy == actorID {
		return true, nil
	}
	if event.SeriesID == nil {
		return false, nil
	}
	return g.IsSeriesAdmin(ctx, actorID, *event.SeriesID)
}

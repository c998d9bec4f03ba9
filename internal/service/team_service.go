package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/avaldez/poketeams/internal/db"
	"github.com/avaldez/poketeams/internal/model"
	"github.com/avaldez/poketeams/internal/repository"
	"github.com/avaldez/poketeams/pkg/logger"
)

type CreateTeamInput struct {
	Name        string
	Description *string
	IsActive    bool
}

type UpdateTeamInput struct {
	Name        string
	Description *string
	IsActive    *bool
}

// TeamService owns the team lifecycle and the single-active-team rule:
// at most one of a user's teams is active at any time.
type TeamService struct {
	tx db.Transactor

	teams   repository.TeamRepository
	pokemon repository.PokemonRepository
}

func NewTeamService(tx db.Transactor) *TeamService {
	return &TeamService{
		tx: tx,
	}
}

func (t *TeamService) ListTeams(ctx context.Context, userID int64) ([]*model.Team, *Error) {
	l := logger.FromContext(ctx)
	l.Debug("listing teams", zap.Int64("user_id", userID))

	repoTeams, err := t.teams.ListByUser(ctx, userID)
	if err != nil {
		l.Error("failed to list teams", zap.Int64("user_id", userID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list teams")
	}

	teams := make([]*model.Team, 0, len(repoTeams))
	for _, repoTeam := range repoTeams {
		team, loadErr := t.loadTeam(ctx, repoTeam)
		if loadErr != nil {
			return nil, loadErr
		}
		teams = append(teams, team)
	}

	return teams, nil
}

func (t *TeamService) CreateTeam(ctx context.Context, userID int64, in *CreateTeamInput) (*model.Team, *Error) {
	l := logger.FromContext(ctx)
	l.Info("creating team", zap.Int64("user_id", userID), zap.String("name", in.Name))

	var created *repository.Team

	err := t.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		count, err := t.teams.CountByUser(txCtx, userID)
		if err != nil {
			l.Error("failed to count teams", zap.Int64("user_id", userID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to create team")
		}

		// The first team is always activated; an explicit request wins too.
		isActive := in.IsActive || count == 0

		if isActive {
			if err = t.teams.DeactivateAll(txCtx, userID); err != nil {
				l.Error("failed to deactivate teams", zap.Int64("user_id", userID), zap.Error(err))
				return NewError(ErrorCodeUnspecified, "failed to create team")
			}
		}

		created, err = t.teams.Create(txCtx, &repository.Team{
			UserID:      userID,
			Name:        in.Name,
			Description: in.Description,
			IsActive:    isActive,
		})
		if err != nil {
			l.Error("failed to create team", zap.Int64("user_id", userID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to create team")
		}

		return nil
	})

	if err != nil {
		var res *Error
		if !errors.As(err, &res) {
			res = NewError(ErrorCodeUnspecified, "transaction failed")
		}
		return nil, res
	}

	team := toModelTeam(created)
	team.Pokemon = []*model.Pokemon{}

	l.Debug("team created", zap.Int64("team_id", team.ID), zap.Bool("is_active", team.IsActive))

	return team, nil
}

func (t *TeamService) GetTeam(ctx context.Context, userID, teamID int64) (*model.Team, *Error) {
	l := logger.FromContext(ctx)
	l.Debug("getting team", zap.Int64("user_id", userID), zap.Int64("team_id", teamID))

	repoTeam, err := t.teams.Get(ctx, userID, teamID)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("team not found", zap.Int64("user_id", userID), zap.Int64("team_id", teamID))
		return nil, NewError(ErrorCodeNotFound, "team not found")
	}
	if err != nil {
		l.Error("failed to get team", zap.Int64("team_id", teamID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get team")
	}

	return t.loadTeam(ctx, repoTeam)
}

func (t *TeamService) UpdateTeam(ctx context.Context, userID, teamID int64, in *UpdateTeamInput) (*model.Team, *Error) {
	l := logger.FromContext(ctx)
	l.Info("updating team", zap.Int64("user_id", userID), zap.Int64("team_id", teamID))

	var updated *repository.Team

	err := t.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := t.teams.Get(txCtx, userID, teamID)
		if errors.Is(err, repository.ErrNotFound) {
			l.Warn("team not found", zap.Int64("team_id", teamID))
			return NewError(ErrorCodeNotFound, "team not found")
		}
		if err != nil {
			l.Error("failed to get team", zap.Int64("team_id", teamID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to update team")
		}

		// Activating this team deactivates its siblings first. Deactivating
		// it promotes nothing; a user may end up with no active team here.
		if in.IsActive != nil && *in.IsActive && !current.IsActive {
			if err = t.teams.DeactivateAll(txCtx, userID); err != nil {
				l.Error("failed to deactivate teams", zap.Int64("user_id", userID), zap.Error(err))
				return NewError(ErrorCodeUnspecified, "failed to update team")
			}
		}

		updated, err = t.teams.Patch(txCtx, &repository.TeamPatch{
			ID:          teamID,
			UserID:      userID,
			Name:        &in.Name,
			Description: in.Description,
			IsActive:    in.IsActive,
		})
		if err != nil {
			l.Error("failed to patch team", zap.Int64("team_id", teamID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to update team")
		}

		return nil
	})

	if err != nil {
		var res *Error
		if !errors.As(err, &res) {
			res = NewError(ErrorCodeUnspecified, "transaction failed")
		}
		return nil, res
	}

	return t.loadTeam(ctx, updated)
}

func (t *TeamService) DeleteTeam(ctx context.Context, userID, teamID int64) *Error {
	l := logger.FromContext(ctx)
	l.Info("deleting team", zap.Int64("user_id", userID), zap.Int64("team_id", teamID))

	err := t.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := t.teams.Get(txCtx, userID, teamID)
		if errors.Is(err, repository.ErrNotFound) {
			l.Warn("team not found", zap.Int64("team_id", teamID))
			return NewError(ErrorCodeNotFound, "team not found")
		}
		if err != nil {
			l.Error("failed to get team", zap.Int64("team_id", teamID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to delete team")
		}

		if err = t.teams.Delete(txCtx, userID, teamID); err != nil {
			l.Error("failed to delete team", zap.Int64("team_id", teamID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to delete team")
		}

		if !current.IsActive {
			return nil
		}

		// The active team is gone; promote the remaining team with the
		// lowest id so the pick is deterministic.
		next, err := t.teams.FirstByUser(txCtx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			l.Error("failed to find replacement team", zap.Int64("user_id", userID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to delete team")
		}

		isActive := true
		if _, err = t.teams.Patch(txCtx, &repository.TeamPatch{
			ID:       next.ID,
			UserID:   userID,
			IsActive: &isActive,
		}); err != nil {
			l.Error("failed to promote team", zap.Int64("team_id", next.ID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to delete team")
		}

		l.Debug("promoted replacement team", zap.Int64("team_id", next.ID))

		return nil
	})

	if err != nil {
		var res *Error
		if !errors.As(err, &res) {
			res = NewError(ErrorCodeUnspecified, "transaction failed")
		}
		return res
	}
	return nil
}

func (t *TeamService) ActivateTeam(ctx context.Context, userID, teamID int64) (*model.Team, *Error) {
	l := logger.FromContext(ctx)
	l.Info("activating team", zap.Int64("user_id", userID), zap.Int64("team_id", teamID))

	var activated *repository.Team

	err := t.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		_, err := t.teams.Get(txCtx, userID, teamID)
		if errors.Is(err, repository.ErrNotFound) {
			l.Warn("team not found", zap.Int64("team_id", teamID))
			return NewError(ErrorCodeNotFound, "team not found")
		}
		if err != nil {
			l.Error("failed to get team", zap.Int64("team_id", teamID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to activate team")
		}

		if err = t.teams.DeactivateAll(txCtx, userID); err != nil {
			l.Error("failed to deactivate teams", zap.Int64("user_id", userID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to activate team")
		}

		isActive := true
		activated, err = t.teams.Patch(txCtx, &repository.TeamPatch{
			ID:       teamID,
			UserID:   userID,
			IsActive: &isActive,
		})
		if err != nil {
			l.Error("failed to activate team", zap.Int64("team_id", teamID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to activate team")
		}

		return nil
	})

	if err != nil {
		var res *Error
		if !errors.As(err, &res) {
			res = NewError(ErrorCodeUnspecified, "transaction failed")
		}
		return nil, res
	}

	return t.loadTeam(ctx, activated)
}

// loadTeam attaches the roster, ordered by position, and the computed
// pokemon count to a repository team.
func (t *TeamService) loadTeam(ctx context.Context, repoTeam *repository.Team) (*model.Team, *Error) {
	l := logger.FromContext(ctx)

	repoPokemon, err := t.pokemon.ListByTeam(ctx, repoTeam.ID)
	if err != nil {
		l.Error("failed to list team pokemon", zap.Int64("team_id", repoTeam.ID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to load team")
	}

	team := toModelTeam(repoTeam)
	team.Pokemon = make([]*model.Pokemon, 0, len(repoPokemon))
	for _, p := range repoPokemon {
		team.Pokemon = append(team.Pokemon, toModelPokemon(p))
	}
	team.PokemonCount = len(team.Pokemon)

	return team, nil
}

func toModelTeam(t *repository.Team) *model.Team {
	return &model.Team{
		ID:          t.ID,
		UserID:      t.UserID,
		Name:        t.Name,
		Description: t.Description,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
	}
}

func (t *TeamService) WithTeamRepo(r repository.TeamRepository) *TeamService {
	t.teams = r
	return t
}

func (t *TeamService) WithPokemonRepo(r repository.PokemonRepository) *TeamService {
	t.pokemon = r
	return t
}

package service

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/avaldez/poketeams/internal/db"
	"github.com/avaldez/poketeams/internal/model"
	"github.com/avaldez/poketeams/internal/repository"
	"github.com/avaldez/poketeams/internal/roster"
	"github.com/avaldez/poketeams/pkg/logger"
)

type AddPokemonInput struct {
	PokemonID   int
	PokemonName string
	Nickname    *string
	Level       *int
	Position    *int
	Ability     *string
	Nature      *string
	HeldItem    *string
	Moves       []string
	Stats       map[string]int
	SpriteURL   *string
}

// UpdatePokemonInput carries partial-update semantics: nil fields keep
// their stored values.
type UpdatePokemonInput struct {
	Nickname *string
	Level    *int
	Position *int
	Ability  *string
	Nature   *string
	HeldItem *string
	Moves    []string
	Stats    map[string]int
}

// PokemonService manages team rosters: the 6-entry cap, unique positions
// within a team, and the atomic position swap. Level, position and move
// lists are normalized with the roster rules before every write.
type PokemonService struct {
	tx db.Transactor

	teams   repository.TeamRepository
	pokemon repository.PokemonRepository
}

func NewPokemonService(tx db.Transactor) *PokemonService {
	return &PokemonService{tx: tx}
}

func (s *PokemonService) AddPokemon(ctx context.Context, userID, teamID int64, in *AddPokemonInput) (*model.Pokemon, *Error) {
	l := logger.FromContext(ctx)
	l.Info("adding pokemon",
		zap.Int64("user_id", userID),
		zap.Int64("team_id", teamID),
		zap.String("pokemon_name", in.PokemonName))

	var created *repository.Pokemon

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.teams.Get(txCtx, userID, teamID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				l.Warn("team not found", zap.Int64("team_id", teamID))
				return NewError(ErrorCodeNotFound, "team not found")
			}
			l.Error("failed to get team", zap.Int64("team_id", teamID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to add pokemon")
		}

		count, err := s.pokemon.CountByTeam(txCtx, teamID)
		if err != nil {
			l.Error("failed to count pokemon", zap.Int64("team_id", teamID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to add pokemon")
		}
		if count >= roster.MaxTeamSize {
			l.Warn("team is full", zap.Int64("team_id", teamID))
			return NewError(ErrorCodeTeamFull, "team already has 6 pokemon")
		}

		position, err := s.resolvePosition(txCtx, teamID, in.Position)
		if err != nil {
			l.Error("failed to resolve position", zap.Int64("team_id", teamID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to add pokemon")
		}

		// Next-free is max+1 and never reuses gaps, so after deletions the
		// computed slot can still be taken. Check before inserting.
		if occErr := s.checkPositionFree(txCtx, teamID, position, 0); occErr != nil {
			l.Warn("position occupied", zap.Int64("team_id", teamID), zap.Int("position", position))
			return occErr
		}

		level := roster.DefaultLevel
		if in.Level != nil {
			level = roster.ClampLevel(*in.Level)
		}

		moves := in.Moves
		if moves == nil {
			moves = []string{}
		}

		created, err = s.pokemon.Create(txCtx, &repository.Pokemon{
			TeamID:      teamID,
			PokemonID:   in.PokemonID,
			PokemonName: in.PokemonName,
			Nickname:    in.Nickname,
			Level:       level,
			Position:    position,
			Ability:     in.Ability,
			Nature:      in.Nature,
			HeldItem:    in.HeldItem,
			Moves:       roster.TrimMoves(moves),
			Stats:       in.Stats,
			SpriteURL:   in.SpriteURL,
		})
		if err != nil {
			l.Error("failed to create pokemon", zap.Int64("team_id", teamID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to add pokemon")
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

	l.Debug("pokemon added",
		zap.Int64("pokemon_id", created.ID),
		zap.Int("position", created.Position))

	return toModelPokemon(created), nil
}

func (s *PokemonService) UpdatePokemon(ctx context.Context, userID, teamID, pokemonID int64, in *UpdatePokemonInput) (*model.Pokemon, *Error) {
	l := logger.FromContext(ctx)
	l.Info("updating pokemon",
		zap.Int64("user_id", userID),
		zap.Int64("team_id", teamID),
		zap.Int64("pokemon_id", pokemonID))

	var updated *repository.Pokemon

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.teams.Get(txCtx, userID, teamID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				l.Warn("team not found", zap.Int64("team_id", teamID))
				return NewError(ErrorCodeNotFound, "team not found")
			}
			l.Error("failed to get team", zap.Int64("team_id", teamID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to update pokemon")
		}

		current, err := s.pokemon.Get(txCtx, teamID, pokemonID)
		if errors.Is(err, repository.ErrNotFound) {
			l.Warn("pokemon not found", zap.Int64("pokemon_id", pokemonID))
			return NewError(ErrorCodeNotFound, "pokemon not found in team")
		}
		if err != nil {
			l.Error("failed to get pokemon", zap.Int64("pokemon_id", pokemonID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to update pokemon")
		}

		patch := &repository.PokemonPatch{
			ID:       pokemonID,
			TeamID:   teamID,
			Nickname: in.Nickname,
			Ability:  in.Ability,
			Nature:   in.Nature,
			HeldItem: in.HeldItem,
			Stats:    in.Stats,
		}

		if in.Level != nil {
			level := roster.ClampLevel(*in.Level)
			patch.Level = &level
		}

		if in.Moves != nil {
			patch.Moves = roster.TrimMoves(in.Moves)
		}

		if in.Position != nil {
			position := roster.ClampPosition(*in.Position)
			if position != current.Position {
				if occErr := s.checkPositionFree(txCtx, teamID, position, pokemonID); occErr != nil {
					l.Warn("position occupied", zap.Int64("team_id", teamID), zap.Int("position", position))
					return occErr
				}
			}
			patch.Position = &position
		}

		// Nothing to change: an empty SET clause is not valid SQL.
		if patch.Nickname == nil && patch.Level == nil && patch.Position == nil &&
			patch.Ability == nil && patch.Nature == nil && patch.HeldItem == nil &&
			patch.Moves == nil && patch.Stats == nil {
			updated = current
			return nil
		}

		updated, err = s.pokemon.Patch(txCtx, patch)
		if err != nil {
			l.Error("failed to patch pokemon", zap.Int64("pokemon_id", pokemonID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to update pokemon")
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

	return toModelPokemon(updated), nil
}

func (s *PokemonService) RemovePokemon(ctx context.Context, userID, teamID, pokemonID int64) *Error {
	l := logger.FromContext(ctx)
	l.Info("removing pokemon",
		zap.Int64("user_id", userID),
		zap.Int64("team_id", teamID),
		zap.Int64("pokemon_id", pokemonID))

	if _, err := s.teams.Get(ctx, userID, teamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			l.Warn("team not found", zap.Int64("team_id", teamID))
			return NewError(ErrorCodeNotFound, "team not found")
		}
		l.Error("failed to get team", zap.Int64("team_id", teamID), zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to remove pokemon")
	}

	// Siblings keep their positions; gaps are expected and not renumbered.
	err := s.pokemon.Delete(ctx, teamID, pokemonID)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("pokemon not found", zap.Int64("pokemon_id", pokemonID))
		return NewError(ErrorCodeNotFound, "pokemon not found in team")
	}
	if err != nil {
		l.Error("failed to delete pokemon", zap.Int64("pokemon_id", pokemonID), zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to remove pokemon")
	}

	return nil
}

// SwapPositions exchanges the positions of two roster entries in one
// transaction and returns the team with its roster reloaded.
func (s *PokemonService) SwapPositions(ctx context.Context, userID, teamID, firstID, secondID int64) (*model.Team, *Error) {
	l := logger.FromContext(ctx)
	l.Info("swapping positions",
		zap.Int64("user_id", userID),
		zap.Int64("team_id", teamID),
		zap.Int64("first_id", firstID),
		zap.Int64("second_id", secondID))

	var repoTeam *repository.Team

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		repoTeam, err = s.teams.Get(txCtx, userID, teamID)
		if errors.Is(err, repository.ErrNotFound) {
			l.Warn("team not found", zap.Int64("team_id", teamID))
			return NewError(ErrorCodeNotFound, "team not found")
		}
		if err != nil {
			l.Error("failed to get team", zap.Int64("team_id", teamID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to swap positions")
		}

		first, err := s.pokemon.Get(txCtx, teamID, firstID)
		if errors.Is(err, repository.ErrNotFound) {
			l.Warn("pokemon not found", zap.Int64("pokemon_id", firstID))
			return NewError(ErrorCodeNotFound, "pokemon not found in team")
		}
		if err != nil {
			l.Error("failed to get pokemon", zap.Int64("pokemon_id", firstID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to swap positions")
		}

		second, err := s.pokemon.Get(txCtx, teamID, secondID)
		if errors.Is(err, repository.ErrNotFound) {
			l.Warn("pokemon not found", zap.Int64("pokemon_id", secondID))
			return NewError(ErrorCodeNotFound, "pokemon not found in team")
		}
		if err != nil {
			l.Error("failed to get pokemon", zap.Int64("pokemon_id", secondID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to swap positions")
		}

		if err = s.pokemon.SetPosition(txCtx, first.ID, second.Position); err != nil {
			l.Error("failed to set position", zap.Int64("pokemon_id", first.ID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to swap positions")
		}
		if err = s.pokemon.SetPosition(txCtx, second.ID, first.Position); err != nil {
			l.Error("failed to set position", zap.Int64("pokemon_id", second.ID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to swap positions")
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

	repoPokemon, listErr := s.pokemon.ListByTeam(ctx, teamID)
	if listErr != nil {
		l.Error("failed to list team pokemon", zap.Int64("team_id", teamID), zap.Error(listErr))
		return nil, NewError(ErrorCodeUnspecified, "failed to swap positions")
	}

	team := toModelTeam(repoTeam)
	team.Pokemon = make([]*model.Pokemon, 0, len(repoPokemon))
	for _, p := range repoPokemon {
		team.Pokemon = append(team.Pokemon, toModelPokemon(p))
	}
	team.PokemonCount = len(team.Pokemon)

	return team, nil
}

// resolvePosition clamps an explicit position or computes the next free
// slot from the current maximum.
func (s *PokemonService) resolvePosition(ctx context.Context, teamID int64, requested *int) (int, error) {
	if requested != nil {
		return roster.ClampPosition(*requested), nil
	}

	maxPosition, err := s.pokemon.MaxPosition(ctx, teamID)
	if err != nil {
		return 0, err
	}
	return roster.NextFreePosition(maxPosition), nil
}

// checkPositionFree fails with PositionOccupied when another entry (a
// different id than exceptID) already holds position.
func (s *PokemonService) checkPositionFree(ctx context.Context, teamID int64, position int, exceptID int64) *Error {
	occupant, err := s.pokemon.GetByPosition(ctx, teamID, position)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return NewError(ErrorCodeUnspecified, "failed to check position")
	}
	if occupant.ID == exceptID {
		return nil
	}
	return NewError(ErrorCodePositionOccupied, fmt.Sprintf("position %d is already occupied", position))
}

func toModelPokemon(p *repository.Pokemon) *model.Pokemon {
	return &model.Pokemon{
		ID:          p.ID,
		TeamID:      p.TeamID,
		PokemonID:   p.PokemonID,
		PokemonName: p.PokemonName,
		Nickname:    p.Nickname,
		Level:       p.Level,
		Position:    p.Position,
		Ability:     p.Ability,
		Nature:      p.Nature,
		HeldItem:    p.HeldItem,
		Moves:       p.Moves,
		Stats:       p.Stats,
		SpriteURL:   p.SpriteURL,
		CreatedAt:   p.CreatedAt,
		DisplayName: roster.DisplayName(p.Nickname, p.PokemonName),
	}
}

func (s *PokemonService) WithTeamRepo(r repository.TeamRepository) *PokemonService {
	s.teams = r
	return s
}

func (s *PokemonService) WithPokemonRepo(r repository.PokemonRepository) *PokemonService {
	s.pokemon = r
	return s
}

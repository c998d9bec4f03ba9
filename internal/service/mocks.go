package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/avaldez/poketeams/internal/repository"
)

type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) Create(ctx context.Context, team *repository.Team) (*repository.Team, error) {
	args := m.Called(ctx, team)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Team), args.Error(1)
}

func (m *MockTeamRepository) Get(ctx context.Context, userID, teamID int64) (*repository.Team, error) {
	args := m.Called(ctx, userID, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Team), args.Error(1)
}

func (m *MockTeamRepository) ListByUser(ctx context.Context, userID int64) ([]*repository.Team, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Team), args.Error(1)
}

func (m *MockTeamRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockTeamRepository) Patch(ctx context.Context, patch *repository.TeamPatch) (*repository.Team, error) {
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Team), args.Error(1)
}

func (m *MockTeamRepository) Delete(ctx context.Context, userID, teamID int64) error {
	args := m.Called(ctx, userID, teamID)
	return args.Error(0)
}

func (m *MockTeamRepository) DeactivateAll(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockTeamRepository) FirstByUser(ctx context.Context, userID int64) (*repository.Team, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Team), args.Error(1)
}

type MockPokemonRepository struct {
	mock.Mock
}

func (m *MockPokemonRepository) Create(ctx context.Context, pokemon *repository.Pokemon) (*repository.Pokemon, error) {
	args := m.Called(ctx, pokemon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Pokemon), args.Error(1)
}

func (m *MockPokemonRepository) Get(ctx context.Context, teamID, pokemonID int64) (*repository.Pokemon, error) {
	args := m.Called(ctx, teamID, pokemonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Pokemon), args.Error(1)
}

func (m *MockPokemonRepository) ListByTeam(ctx context.Context, teamID int64) ([]*repository.Pokemon, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Pokemon), args.Error(1)
}

func (m *MockPokemonRepository) CountByTeam(ctx context.Context, teamID int64) (int, error) {
	args := m.Called(ctx, teamID)
	return args.Int(0), args.Error(1)
}

func (m *MockPokemonRepository) MaxPosition(ctx context.Context, teamID int64) (int, error) {
	args := m.Called(ctx, teamID)
	return args.Int(0), args.Error(1)
}

func (m *MockPokemonRepository) GetByPosition(ctx context.Context, teamID int64, position int) (*repository.Pokemon, error) {
	args := m.Called(ctx, teamID, position)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Pokemon), args.Error(1)
}

func (m *MockPokemonRepository) Patch(ctx context.Context, patch *repository.PokemonPatch) (*repository.Pokemon, error) {
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Pokemon), args.Error(1)
}

func (m *MockPokemonRepository) Delete(ctx context.Context, teamID, pokemonID int64) error {
	args := m.Called(ctx, teamID, pokemonID)
	return args.Error(0)
}

func (m *MockPokemonRepository) SetPosition(ctx context.Context, pokemonID int64, position int) error {
	args := m.Called(ctx, pokemonID, position)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *repository.User) (*repository.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.User), args.Error(1)
}

func (m *MockUserRepository) Get(ctx context.Context, userID int64) (*repository.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.User), args.Error(1)
}

type MockPersonRepository struct {
	mock.Mock
}

func (m *MockPersonRepository) Create(ctx context.Context, person *repository.Person) error {
	args := m.Called(ctx, person)
	return args.Error(0)
}

func (m *MockPersonRepository) GetByUser(ctx context.Context, userID int64) (*repository.Person, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Person), args.Error(1)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/avaldez/poketeams/internal/repository"
)

func intPtr(v int) *int { return &v }

func TestPokemonService_AddPokemon(t *testing.T) {
	tests := []struct {
		name             string
		input            *AddPokemonInput
		setupMocks       func(*MockTeamRepository, *MockPokemonRepository)
		expectedError    bool
		errorCode        ErrorCode
		expectedPosition int
		expectedLevel    int
	}{
		{
			name:  "explicit free position",
			input: &AddPokemonInput{PokemonID: 25, PokemonName: "pikachu", Position: intPtr(3), Level: intPtr(42)},
			setupMocks: func(tr *MockTeamRepository, pr *MockPokemonRepository) {
				tr.On("Get", mock.Anything, int64(1), int64(10)).
					Return(&repository.Team{ID: 10, UserID: 1}, nil)
				pr.On("CountByTeam", mock.Anything, int64(10)).Return(2, nil)
				pr.On("GetByPosition", mock.Anything, int64(10), 3).Return(nil, repository.ErrNotFound)
				pr.On("Create", mock.Anything, mock.MatchedBy(func(p *repository.Pokemon) bool {
					return p.Position == 3 && p.Level == 42
				})).Return(&repository.Pokemon{ID: 100, TeamID: 10, PokemonName: "pikachu", Position: 3, Level: 42}, nil)
			},
			expectedPosition: 3,
			expectedLevel:    42,
		},
		{
			name:  "no position lands after the max even across gaps",
			input: &AddPokemonInput{PokemonID: 6, PokemonName: "charizard"},
			setupMocks: func(tr *MockTeamRepository, pr *MockPokemonRepository) {
				tr.On("Get", mock.Anything, int64(1), int64(10)).
					Return(&repository.Team{ID: 10, UserID: 1}, nil)
				// Positions {1,3}: the gap at 2 is skipped, next slot is 4.
				pr.On("CountByTeam", mock.Anything, int64(10)).Return(2, nil)
				pr.On("MaxPosition", mock.Anything, int64(10)).Return(3, nil)
				pr.On("GetByPosition", mock.Anything, int64(10), 4).Return(nil, repository.ErrNotFound)
				pr.On("Create", mock.Anything, mock.MatchedBy(func(p *repository.Pokemon) bool {
					return p.Position == 4 && p.Level == 50
				})).Return(&repository.Pokemon{ID: 101, TeamID: 10, PokemonName: "charizard", Position: 4, Level: 50}, nil)
			},
			expectedPosition: 4,
			expectedLevel:    50,
		},
		{
			name:  "level and position are clamped, moves trimmed",
			input: &AddPokemonInput{PokemonID: 150, PokemonName: "mewtwo", Position: intPtr(9), Level: intPtr(255), Moves: []string{"psychic", "swift", "recover", "barrier", "amnesia"}},
			setupMocks: func(tr *MockTeamRepository, pr *MockPokemonRepository) {
				tr.On("Get", mock.Anything, int64(1), int64(10)).
					Return(&repository.Team{ID: 10, UserID: 1}, nil)
				pr.On("CountByTeam", mock.Anything, int64(10)).Return(0, nil)
				pr.On("GetByPosition", mock.Anything, int64(10), 6).Return(nil, repository.ErrNotFound)
				pr.On("Create", mock.Anything, mock.MatchedBy(func(p *repository.Pokemon) bool {
					return p.Position == 6 && p.Level == 100 && len(p.Moves) == 4
				})).Return(&repository.Pokemon{ID: 102, TeamID: 10, PokemonName: "mewtwo", Position: 6, Level: 100,
					Moves: []string{"psychic", "swift", "recover", "barrier"}}, nil)
			},
			expectedPosition: 6,
			expectedLevel:    100,
		},
		{
			name:  "team full",
			input: &AddPokemonInput{PokemonID: 7, PokemonName: "squirtle"},
			setupMocks: func(tr *MockTeamRepository, pr *MockPokemonRepository) {
				tr.On("Get", mock.Anything, int64(1), int64(10)).
					Return(&repository.Team{ID: 10, UserID: 1}, nil)
				pr.On("CountByTeam", mock.Anything, int64(10)).Return(6, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeTeamFull,
		},
		{
			name:  "position occupied",
			input: &AddPokemonInput{PokemonID: 7, PokemonName: "squirtle", Position: intPtr(2)},
			setupMocks: func(tr *MockTeamRepository, pr *MockPokemonRepository) {
				tr.On("Get", mock.Anything, int64(1), int64(10)).
					Return(&repository.Team{ID: 10, UserID: 1}, nil)
				pr.On("CountByTeam", mock.Anything, int64(10)).Return(3, nil)
				pr.On("GetByPosition", mock.Anything, int64(10), 2).
					Return(&repository.Pokemon{ID: 99, TeamID: 10, Position: 2}, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodePositionOccupied,
		},
		{
			name:  "cross-user team is not found",
			input: &AddPokemonInput{PokemonID: 7, PokemonName: "squirtle"},
			setupMocks: func(tr *MockTeamRepository, pr *MockPokemonRepository) {
				tr.On("Get", mock.Anything, int64(1), int64(10)).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTx := new(MockTransactor)
			mockTeamRepo := new(MockTeamRepository)
			mockPokemonRepo := new(MockPokemonRepository)

			tt.setupMocks(mockTeamRepo, mockPokemonRepo)

			service := NewPokemonService(mockTx).
				WithTeamRepo(mockTeamRepo).
				WithPokemonRepo(mockPokemonRepo)

			got, err := service.AddPokemon(context.Background(), 1, 10, tt.input)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, tt.expectedPosition, got.Position)
				assert.Equal(t, tt.expectedLevel, got.Level)
			}

			mockTeamRepo.AssertExpectations(t)
			mockPokemonRepo.AssertExpectations(t)
		})
	}
}

func TestPokemonService_UpdatePokemon(t *testing.T) {
	tests := []struct {
		name          string
		input         *UpdatePokemonInput
		setupMocks    func(*MockTeamRepository, *MockPokemonRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:  "move to a free position",
			input: &UpdatePokemonInput{Position: intPtr(5)},
			setupMocks: func(tr *MockTeamRepository, pr *MockPokemonRepository) {
				tr.On("Get", mock.Anything, int64(1), int64(10)).
					Return(&repository.Team{ID: 10, UserID: 1}, nil)
				pr.On("Get", mock.Anything, int64(10), int64(100)).
					Return(&repository.Pokemon{ID: 100, TeamID: 10, Position: 1}, nil)
				pr.On("GetByPosition", mock.Anything, int64(10), 5).Return(nil, repository.ErrNotFound)
				pr.On("Patch", mock.Anything, mock.MatchedBy(func(patch *repository.PokemonPatch) bool {
					return patch.Position != nil && *patch.Position == 5
				})).Return(&repository.Pokemon{ID: 100, TeamID: 10, Position: 5}, nil)
			},
		},
		{
			name:  "position held by another entry",
			input: &UpdatePokemonInput{Position: intPtr(2)},
			setupMocks: func(tr *MockTeamRepository, pr *MockPokemonRepository) {
				tr.On("Get", mock.Anything, int64(1), int64(10)).
					Return(&repository.Team{ID: 10, UserID: 1}, nil)
				pr.On("Get", mock.Anything, int64(10), int64(100)).
					Return(&repository.Pokemon{ID: 100, TeamID: 10, Position: 1}, nil)
				pr.On("GetByPosition", mock.Anything, int64(10), 2).
					Return(&repository.Pokemon{ID: 101, TeamID: 10, Position: 2}, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodePositionOccupied,
		},
		{
			name:  "unchanged position skips the occupancy check",
			input: &UpdatePokemonInput{Position: intPtr(1), Level: intPtr(80)},
			setupMocks: func(tr *MockTeamRepository, pr *MockPokemonRepository) {
				tr.On("Get", mock.Anything, int64(1), int64(10)).
					Return(&repository.Team{ID: 10, UserID: 1}, nil)
				pr.On("Get", mock.Anything, int64(10), int64(100)).
					Return(&repository.Pokemon{ID: 100, TeamID: 10, Position: 1, Level: 50}, nil)
				pr.On("Patch", mock.Anything, mock.MatchedBy(func(patch *repository.PokemonPatch) bool {
					return patch.Level != nil && *patch.Level == 80
				})).Return(&repository.Pokemon{ID: 100, TeamID: 10, Position: 1, Level: 80}, nil)
			},
		},
		{
			name:  "pokemon not found in team",
			input: &UpdatePokemonInput{Level: intPtr(80)},
			setupMocks: func(tr *MockTeamRepository, pr *MockPokemonRepository) {
				tr.On("Get", mock.Anything, int64(1), int64(10)).
					Return(&repository.Team{ID: 10, UserID: 1}, nil)
				pr.On("Get", mock.Anything, int64(10), int64(100)).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTx := new(MockTransactor)
			mockTeamRepo := new(MockTeamRepository)
			mockPokemonRepo := new(MockPokemonRepository)

			tt.setupMocks(mockTeamRepo, mockPokemonRepo)

			service := NewPokemonService(mockTx).
				WithTeamRepo(mockTeamRepo).
				WithPokemonRepo(mockPokemonRepo)

			got, err := service.UpdatePokemon(context.Background(), 1, 10, 100, tt.input)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, err)
				assert.NotNil(t, got)
			}

			mockTeamRepo.AssertExpectations(t)
			mockPokemonRepo.AssertExpectations(t)
		})
	}
}

func TestPokemonService_RemovePokemon(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockTx := new(MockTransactor)
		mockTeamRepo := new(MockTeamRepository)
		mockPokemonRepo := new(MockPokemonRepository)

		mockTeamRepo.On("Get", mock.Anything, int64(1), int64(10)).
			Return(&repository.Team{ID: 10, UserID: 1}, nil)
		mockPokemonRepo.On("Delete", mock.Anything, int64(10), int64(100)).Return(nil)

		service := NewPokemonService(mockTx).
			WithTeamRepo(mockTeamRepo).
			WithPokemonRepo(mockPokemonRepo)

		err := service.RemovePokemon(context.Background(), 1, 10, 100)

		assert.Nil(t, err)
		mockPokemonRepo.AssertExpectations(t)
	})

	t.Run("pokemon not found", func(t *testing.T) {
		mockTx := new(MockTransactor)
		mockTeamRepo := new(MockTeamRepository)
		mockPokemonRepo := new(MockPokemonRepository)

		mockTeamRepo.On("Get", mock.Anything, int64(1), int64(10)).
			Return(&repository.Team{ID: 10, UserID: 1}, nil)
		mockPokemonRepo.On("Delete", mock.Anything, int64(10), int64(100)).Return(repository.ErrNotFound)

		service := NewPokemonService(mockTx).
			WithTeamRepo(mockTeamRepo).
			WithPokemonRepo(mockPokemonRepo)

		err := service.RemovePokemon(context.Background(), 1, 10, 100)

		assert.Error(t, err)
		assert.Equal(t, ErrorCodeNotFound, err.Code)
	})
}

func TestPokemonService_SwapPositions(t *testing.T) {
	t.Run("positions are exchanged", func(t *testing.T) {
		mockTx := new(MockTransactor)
		mockTeamRepo := new(MockTeamRepository)
		mockPokemonRepo := new(MockPokemonRepository)

		mockTeamRepo.On("Get", mock.Anything, int64(1), int64(10)).
			Return(&repository.Team{ID: 10, UserID: 1, Name: "Red"}, nil)
		mockPokemonRepo.On("Get", mock.Anything, int64(10), int64(100)).
			Return(&repository.Pokemon{ID: 100, TeamID: 10, Position: 1}, nil)
		mockPokemonRepo.On("Get", mock.Anything, int64(10), int64(101)).
			Return(&repository.Pokemon{ID: 101, TeamID: 10, Position: 4}, nil)
		mockPokemonRepo.On("SetPosition", mock.Anything, int64(100), 4).Return(nil)
		mockPokemonRepo.On("SetPosition", mock.Anything, int64(101), 1).Return(nil)
		mockPokemonRepo.On("ListByTeam", mock.Anything, int64(10)).Return([]*repository.Pokemon{
			{ID: 101, TeamID: 10, Position: 1},
			{ID: 100, TeamID: 10, Position: 4},
		}, nil)

		service := NewPokemonService(mockTx).
			WithTeamRepo(mockTeamRepo).
			WithPokemonRepo(mockPokemonRepo)

		got, err := service.SwapPositions(context.Background(), 1, 10, 100, 101)

		assert.Nil(t, err)
		assert.Equal(t, 2, got.PokemonCount)
		assert.Equal(t, int64(101), got.Pokemon[0].ID)
		mockPokemonRepo.AssertExpectations(t)
	})

	t.Run("missing entry fails before any write", func(t *testing.T) {
		mockTx := new(MockTransactor)
		mockTeamRepo := new(MockTeamRepository)
		mockPokemonRepo := new(MockPokemonRepository)

		mockTeamRepo.On("Get", mock.Anything, int64(1), int64(10)).
			Return(&repository.Team{ID: 10, UserID: 1}, nil)
		mockPokemonRepo.On("Get", mock.Anything, int64(10), int64(100)).
			Return(&repository.Pokemon{ID: 100, TeamID: 10, Position: 1}, nil)
		mockPokemonRepo.On("Get", mock.Anything, int64(10), int64(101)).Return(nil, repository.ErrNotFound)

		service := NewPokemonService(mockTx).
			WithTeamRepo(mockTeamRepo).
			WithPokemonRepo(mockPokemonRepo)

		got, err := service.SwapPositions(context.Background(), 1, 10, 100, 101)

		assert.Error(t, err)
		assert.Equal(t, ErrorCodeNotFound, err.Code)
		assert.Nil(t, got)
		mockPokemonRepo.AssertNotCalled(t, "SetPosition", mock.Anything, mock.Anything, mock.Anything)
	})
}

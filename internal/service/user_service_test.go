package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avaldez/poketeams/internal/auth"
	"github.com/avaldez/poketeams/internal/repository"
)

func newTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", time.Hour)
}

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         *RegisterInput
		setupMocks    func(*MockUserRepository, *MockPersonRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:  "success",
			input: &RegisterInput{Name: "Ash", Email: "ash@example.com", Password: "pikachu1", Gender: "male"},
			setupMocks: func(ur *MockUserRepository, pr *MockPersonRepository) {
				ur.On("Create", mock.Anything, mock.MatchedBy(func(u *repository.User) bool {
					return u.Email == "ash@example.com" && u.PasswordHash != "pikachu1"
				})).Return(&repository.User{ID: 1, Name: "Ash", Email: "ash@example.com"}, nil)
				pr.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
		},
		{
			name:  "person insert failure does not fail registration",
			input: &RegisterInput{Name: "Ash", Email: "ash@example.com", Password: "pikachu1", Gender: "male"},
			setupMocks: func(ur *MockUserRepository, pr *MockPersonRepository) {
				ur.On("Create", mock.Anything, mock.Anything).
					Return(&repository.User{ID: 1, Name: "Ash", Email: "ash@example.com"}, nil)
				pr.On("Create", mock.Anything, mock.Anything).Return(errors.New("person table missing"))
			},
		},
		{
			name:  "email already registered",
			input: &RegisterInput{Name: "Ash", Email: "ash@example.com", Password: "pikachu1", Gender: "male"},
			setupMocks: func(ur *MockUserRepository, pr *MockPersonRepository) {
				ur.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrAlreadyExists)
			},
			expectedError: true,
			errorCode:     ErrorCodeEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			mockPersonRepo := new(MockPersonRepository)

			tt.setupMocks(mockUserRepo, mockPersonRepo)

			service := NewUserService(newTestTokenManager()).
				WithUserRepo(mockUserRepo).
				WithPersonRepo(mockPersonRepo)

			got, err := service.Register(context.Background(), tt.input)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, "ash@example.com", got.Email)
			}

			mockUserRepo.AssertExpectations(t)
			mockPersonRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Login(t *testing.T) {
	hash, err := auth.HashPassword("pikachu1")
	require.NoError(t, err)

	tests := []struct {
		name          string
		email         string
		password      string
		setupMocks    func(*MockUserRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:     "success",
			email:    "ash@example.com",
			password: "pikachu1",
			setupMocks: func(ur *MockUserRepository) {
				ur.On("GetByEmail", mock.Anything, "ash@example.com").
					Return(&repository.User{ID: 1, Email: "ash@example.com", PasswordHash: hash}, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "ash@example.com",
			password: "charmander",
			setupMocks: func(ur *MockUserRepository) {
				ur.On("GetByEmail", mock.Anything, "ash@example.com").
					Return(&repository.User{ID: 1, Email: "ash@example.com", PasswordHash: hash}, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeInvalidCredentials,
		},
		{
			name:     "unknown email gets the same error as a wrong password",
			email:    "misty@example.com",
			password: "pikachu1",
			setupMocks: func(ur *MockUserRepository) {
				ur.On("GetByEmail", mock.Anything, "misty@example.com").Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)

			tt.setupMocks(mockUserRepo)

			service := NewUserService(newTestTokenManager()).
				WithUserRepo(mockUserRepo).
				WithPersonRepo(new(MockPersonRepository))

			got, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, err)
				assert.NotEmpty(t, got.Token)
				assert.Equal(t, tt.email, got.User.Email)
			}

			mockUserRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Profile(t *testing.T) {
	t.Run("with person record", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		mockPersonRepo := new(MockPersonRepository)

		mockUserRepo.On("Get", mock.Anything, int64(1)).
			Return(&repository.User{ID: 1, Name: "Ash", Email: "ash@example.com"}, nil)
		mockPersonRepo.On("GetByUser", mock.Anything, int64(1)).
			Return(&repository.Person{UserID: 1, Gender: "male"}, nil)

		service := NewUserService(newTestTokenManager()).
			WithUserRepo(mockUserRepo).
			WithPersonRepo(mockPersonRepo)

		got, err := service.Profile(context.Background(), 1)

		assert.Nil(t, err)
		assert.NotNil(t, got.Person)
		assert.Equal(t, "male", got.Person.Gender)
	})

	t.Run("without person record", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		mockPersonRepo := new(MockPersonRepository)

		mockUserRepo.On("Get", mock.Anything, int64(1)).
			Return(&repository.User{ID: 1, Name: "Ash", Email: "ash@example.com"}, nil)
		mockPersonRepo.On("GetByUser", mock.Anything, int64(1)).Return(nil, repository.ErrNotFound)

		service := NewUserService(newTestTokenManager()).
			WithUserRepo(mockUserRepo).
			WithPersonRepo(mockPersonRepo)

		got, err := service.Profile(context.Background(), 1)

		assert.Nil(t, err)
		assert.Nil(t, got.Person)
	})

	t.Run("user not found", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)

		mockUserRepo.On("Get", mock.Anything, int64(1)).Return(nil, repository.ErrNotFound)

		service := NewUserService(newTestTokenManager()).
			WithUserRepo(mockUserRepo).
			WithPersonRepo(new(MockPersonRepository))

		got, err := service.Profile(context.Background(), 1)

		assert.Error(t, err)
		assert.Equal(t, ErrorCodeNotFound, err.Code)
		assert.Nil(t, got)
	})
}

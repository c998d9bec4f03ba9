package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/avaldez/poketeams/internal/auth"
	"github.com/avaldez/poketeams/internal/model"
	"github.com/avaldez/poketeams/internal/repository"
	"github.com/avaldez/poketeams/pkg/logger"
)

type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Address    *string
	Phone      *string
	DocumentID *string
	Gender     string
}

type UserService struct {
	users  repository.UserRepository
	people repository.PersonRepository

	tokens *auth.TokenManager
}

func NewUserService(tokens *auth.TokenManager) *UserService {
	return &UserService{tokens: tokens}
}

// Register creates the user account and then attempts the optional person
// record. The person insert is best-effort: its failure is logged as a
// warning and never fails the registration.
func (u *UserService) Register(ctx context.Context, in *RegisterInput) (*model.User, *Error) {
	l := logger.FromContext(ctx)
	l.Info("registering user", zap.String("email", in.Email))

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		l.Error("failed to hash password", zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to register user")
	}

	created, err := u.users.Create(ctx, &repository.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if errors.Is(err, repository.ErrAlreadyExists) {
		l.Warn("email already registered", zap.String("email", in.Email))
		return nil, NewError(ErrorCodeEmailExists, "email already registered")
	}
	if err != nil {
		l.Error("failed to create user", zap.String("email", in.Email), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to register user")
	}

	person := &repository.Person{
		UserID:     created.ID,
		Address:    in.Address,
		Phone:      in.Phone,
		DocumentID: in.DocumentID,
		Gender:     in.Gender,
	}
	if err = u.people.Create(ctx, person); err != nil {
		l.Warn("failed to create person record, continuing",
			zap.Int64("user_id", created.ID),
			zap.Error(err))
	}

	l.Debug("user registered", zap.Int64("user_id", created.ID))

	return toModelUser(created), nil
}

func (u *UserService) Login(ctx context.Context, email, password string) (*model.AuthResult, *Error) {
	l := logger.FromContext(ctx)
	l.Info("logging in user", zap.String("email", email))

	user, err := u.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("unknown email", zap.String("email", email))
		return nil, NewError(ErrorCodeInvalidCredentials, "invalid credentials")
	}
	if err != nil {
		l.Error("failed to get user", zap.String("email", email), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to log in")
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		l.Warn("wrong password", zap.String("email", email))
		return nil, NewError(ErrorCodeInvalidCredentials, "invalid credentials")
	}

	token, err := u.tokens.Generate(user.ID)
	if err != nil {
		l.Error("failed to generate token", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to log in")
	}

	return &model.AuthResult{
		Token: token,
		User:  toModelUser(user),
	}, nil
}

// Profile returns the user with the person record attached when one exists.
func (u *UserService) Profile(ctx context.Context, userID int64) (*model.User, *Error) {
	l := logger.FromContext(ctx)
	l.Debug("getting profile", zap.Int64("user_id", userID))

	user, err := u.users.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("user not found", zap.Int64("user_id", userID))
		return nil, NewError(ErrorCodeNotFound, "user not found")
	}
	if err != nil {
		l.Error("failed to get user", zap.Int64("user_id", userID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get profile")
	}

	result := toModelUser(user)

	person, err := u.people.GetByUser(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		l.Error("failed to get person record", zap.Int64("user_id", userID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get profile")
	}
	if person != nil {
		result.Person = &model.Person{
			UserID:     person.UserID,
			Address:    person.Address,
			Phone:      person.Phone,
			DocumentID: person.DocumentID,
			Gender:     person.Gender,
		}
	}

	return result, nil
}

func toModelUser(u *repository.User) *model.User {
	return &model.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func (u *UserService) WithUserRepo(r repository.UserRepository) *UserService {
	u.users = r
	return u
}

func (u *UserService) WithPersonRepo(r repository.PersonRepository) *UserService {
	u.people = r
	return u
}

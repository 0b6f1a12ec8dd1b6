package usecase

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	repo "github.com/MaxGalant/auth-api/internal/adapters/postgres"
	"github.com/MaxGalant/auth-api/internal/apperr"
	"github.com/MaxGalant/auth-api/internal/domain"
	pkglog "github.com/MaxGalant/auth-api/pkg/log"
)

type UpdateUserInput struct {
	FirstName   *string
	SecondName  *string
	Nickname    *string
	Email       *string
	PhoneNumber *string
}

// UserService covers the authenticated profile operations and the role-scoped
// lookups. Lookups never return admin accounts.
type UserService interface {
	UpdatePassword(ctx context.Context, user *domain.User, oldPassword, newPassword string) (string, error)
	UpdateInfo(ctx context.Context, userID string, input UpdateUserInput) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Profile, error)
	Search(ctx context.Context, name string) ([]domain.Profile, error)
}

type userService struct {
	logger pkglog.Logger
	users  repo.UserRepository
	hasher PasswordHasher
}

func NewUserService(logger pkglog.Logger, users repo.UserRepository, hasher PasswordHasher) UserService {
	return &userService{logger: logger, users: users, hasher: hasher}
}

func (s *userService) UpdatePassword(ctx context.Context, user *domain.User, oldPassword, newPassword string) (string, error) {
	s.logger.Info().Str("user_id", user.ID).Msg("updating a user's password")

	if user.Password == nil || !s.hasher.Verify(oldPassword, *user.Password) {
		return "", apperr.Unauthorized("Invalid password")
	}
	if err := validatePassword(newPassword); err != nil {
		return "", err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return "", s.wrap(err, "something went wrong when updating a user's password")
	}
	if err := s.users.UpdateFields(ctx, user.ID, map[string]interface{}{"password": hash}); err != nil {
		return "", s.wrap(err, "something went wrong when updating a user's password")
	}
	return "Password successfully updated", nil
}

func (s *userService) UpdateInfo(ctx context.Context, userID string, input UpdateUserInput) (string, error) {
	s.logger.Info().Str("user_id", userID).Msg("updating a user's profile info")

	fields := map[string]interface{}{}
	if input.FirstName != nil {
		fields["first_name"] = *input.FirstName
	}
	if input.SecondName != nil {
		fields["second_name"] = *input.SecondName
	}
	if input.Nickname != nil {
		fields["nickname"] = *input.Nickname
	}
	if input.Email != nil {
		if err := validateEmail(*input.Email); err != nil {
			return "", err
		}
		fields["email"] = *input.Email
	}
	if input.PhoneNumber != nil {
		fields["phone_number"] = *input.PhoneNumber
	}

	if len(fields) > 0 {
		if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
			return "", s.wrap(err, "something went wrong when updating a user's profile info")
		}
	}
	return "User's profile info successfully updated", nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	s.logger.Info().Str("user_id", id).Msg("getting a user by id")

	user, err := s.users.FindByIDRoleUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("User with id:%s doesn't exist", id))
		}
		return nil, s.wrap(err, "something went wrong when getting a user by id")
	}
	return user.Profile(), nil
}

func (s *userService) GetByIDs(ctx context.Context, ids []string) ([]domain.Profile, error) {
	s.logger.Info().Msg("getting users by ids")

	users, err := s.users.FindByIDsRoleUser(ctx, ids)
	if err != nil {
		return nil, s.wrap(err, "something went wrong when getting users by ids")
	}
	return domain.Profiles(users), nil
}

func (s *userService) Search(ctx context.Context, name string) ([]domain.Profile, error) {
	s.logger.Info().Str("name", name).Msg("searching users by name")

	users, err := s.users.FindByNameRoleUser(ctx, name)
	if err != nil {
		return nil, s.wrap(err, fmt.Sprintf("something went wrong when searching users by name: %s", name))
	}
	return domain.Profiles(users), nil
}

func (s *userService) wrap(err error, message string) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	s.logger.Error().Err(err).Msg(message)
	return apperr.Internal(message)
}

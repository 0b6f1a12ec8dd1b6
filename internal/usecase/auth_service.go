package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	"github.com/MaxGalant/auth-api/config"
	"github.com/MaxGalant/auth-api/internal/adapters/google"
	"github.com/MaxGalant/auth-api/internal/adapters/mail"
	natsadapter "github.com/MaxGalant/auth-api/internal/adapters/nats"
	repo "github.com/MaxGalant/auth-api/internal/adapters/postgres"
	"github.com/MaxGalant/auth-api/internal/apperr"
	"github.com/MaxGalant/auth-api/internal/domain"
	pkglog "github.com/MaxGalant/auth-api/pkg/log"
)

const (
	otpMailSubject = "Otp code"

	msgInvalidCredentials = "Invalid password or email"
	msgInvalidOtp         = "Invalid otp"
	msgOtpExpired         = "Otp expired"
)

type CreateUserInput struct {
	FirstName   string
	SecondName  string
	Nickname    *string
	Email       string
	Password    string
	PhoneNumber *string
}

// AuthService orchestrates the credential lifecycle: account creation, both
// login paths, token rotation and the OTP flows. Every mutating operation
// runs its read-check-write sequence inside one transaction; mail and event
// publishing happen after commit and never roll anything back.
type AuthService interface {
	SignUp(ctx context.Context, input CreateUserInput) (*domain.Profile, error)
	Login(ctx context.Context, email, password string) (*Tokens, error)
	Refresh(ctx context.Context, user *domain.User) (*Tokens, error)
	GoogleLogin(ctx context.Context, profile *google.Profile) (*Tokens, error)
	VerifyOtp(ctx context.Context, email, otp string) (*domain.Profile, error)
	ResendOtp(ctx context.Context, email string) (string, error)
	SetNewPassword(ctx context.Context, otp, password string) (string, error)
}

type authService struct {
	cfg       *config.Config
	logger    pkglog.Logger
	tx        repo.TxManager
	users     repo.UserRepository
	hasher    PasswordHasher
	otp       *OTPGenerator
	issuer    TokenIssuer
	mailer    mail.Sender
	publisher natsadapter.EventPublisher
}

func NewAuthService(
	cfg *config.Config,
	logger pkglog.Logger,
	tx repo.TxManager,
	users repo.UserRepository,
	hasher PasswordHasher,
	otp *OTPGenerator,
	issuer TokenIssuer,
	mailer mail.Sender,
	publisher natsadapter.EventPublisher,
) AuthService {
	return &authService{
		cfg:       cfg,
		logger:    logger,
		tx:        tx,
		users:     users,
		hasher:    hasher,
		otp:       otp,
		issuer:    issuer,
		mailer:    mailer,
		publisher: publisher,
	}
}

func (s *authService) SignUp(ctx context.Context, input CreateUserInput) (*domain.Profile, error) {
	s.logger.Info().Str("email", input.Email).Msg("user creating")

	if err := validateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	var created *domain.User
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		if _, err := users.FindByEmail(ctx, input.Email); err == nil {
			return apperr.Conflict(fmt.Sprintf("User with email already exists %s in system", input.Email))
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return err
		}
		code, expiry, err := s.otp.Generate()
		if err != nil {
			return err
		}

		user := &domain.User{
			FirstName:   input.FirstName,
			SecondName:  input.SecondName,
			Nickname:    input.Nickname,
			Email:       input.Email,
			Password:    &hash,
			PhoneNumber: input.PhoneNumber,
			Otp:         &code,
			OtpLifetime: expiry,
		}
		if err := users.Create(ctx, user); err != nil {
			// A concurrent sign-up can slip past the pre-check; the unique
			// email index is the backstop.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict(fmt.Sprintf("User with email already exists %s in system", input.Email))
			}
			return err
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, s.fail(err, "something went wrong when create user")
	}

	// Post-commit side effects: best effort, logged on failure.
	s.sendOtpMail(ctx, created.Email, *created.Otp)
	if s.publisher != nil {
		if err := s.publisher.PublishUserCreated(ctx, created); err != nil {
			s.logger.Warn().Err(err).Str("user_id", created.ID).Msg("user created event not published")
		}
	}

	s.logger.Info().Str("user_id", created.ID).Msg("user created")
	return created.Profile(), nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*Tokens, error) {
	s.logger.Info().Msg("user login")

	user, err := s.users.FindByEmailActive(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		return nil, s.fail(err, "something went wrong when user login")
	}
	// Same failure shape whether the email was unknown or the password
	// wrong; federated accounts have no password to check.
	if user.Password == nil || !s.hasher.Verify(password, *user.Password) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	tokens, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, s.fail(err, "something went wrong when user login")
	}
	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return tokens, nil
}

// Refresh re-issues a pair for an account the refresh-token guard already
// resolved and fragment-checked.
func (s *authService) Refresh(ctx context.Context, user *domain.User) (*Tokens, error) {
	s.logger.Info().Str("user_id", user.ID).Msg("refreshing user's tokens")

	tokens, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, s.fail(err, "something went wrong when refreshing user's token")
	}
	return tokens, nil
}

func (s *authService) GoogleLogin(ctx context.Context, profile *google.Profile) (*Tokens, error) {
	if profile == nil {
		return nil, apperr.NotFound("User from google doesn't exist")
	}

	var user *domain.User
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		existing, err := users.FindByEmail(ctx, profile.Email)
		switch {
		case err == nil && existing.Active:
			user = existing
			return nil
		case err == nil:
			// Unverified password account claimed via Google: activate and
			// take the provider's name fields, then read the row back.
			fields := map[string]interface{}{
				"first_name":  profile.FirstName,
				"second_name": profile.LastName,
				"active":      true,
			}
			if err := users.UpdateFields(ctx, existing.ID, fields); err != nil {
				return err
			}
			user, err = users.FindByID(ctx, existing.ID)
			return err
		case errors.Is(err, gorm.ErrRecordNotFound):
			u := &domain.User{
				FirstName:  profile.FirstName,
				SecondName: profile.LastName,
				Email:      profile.Email,
				Active:     true,
			}
			if err := users.Create(ctx, u); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperr.Conflict(fmt.Sprintf("User with email already exists %s in system", profile.Email))
				}
				return err
			}
			user = u
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, s.fail(err, "something went wrong when user login by Google")
	}

	tokens, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, s.fail(err, "something went wrong when user login by Google")
	}
	s.logger.Info().Str("user_id", user.ID).Msg("user logged in by google")
	return tokens, nil
}

func (s *authService) VerifyOtp(ctx context.Context, email, otp string) (*domain.Profile, error) {
	s.logger.Info().Str("email", email).Msg("verifying user's otp")

	var user *domain.User
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		u, err := users.FindByEmailAndOtp(ctx, email, otp)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(msgInvalidOtp)
			}
			return err
		}
		if s.otp.Expired(u.OtpLifetime) {
			return apperr.Conflict(msgOtpExpired)
		}
		if err := users.UpdateFields(ctx, u.ID, map[string]interface{}{"active": true}); err != nil {
			return err
		}
		u.Active = true
		user = u
		return nil
	})
	if err != nil {
		return nil, s.fail(err, "something went wrong when verifying user's otp")
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user verified")
	return user.Profile(), nil
}

func (s *authService) ResendOtp(ctx context.Context, email string) (string, error) {
	s.logger.Info().Str("email", email).Msg("resending otp")

	var user *domain.User
	var code string
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		u, err := users.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(fmt.Sprintf("User with email %s doesn't exist", email))
			}
			return err
		}

		newCode, expiry, err := s.otp.Generate()
		if err != nil {
			return err
		}
		fields := map[string]interface{}{"otp": newCode, "otp_lifetime": expiry}
		if err := users.UpdateFields(ctx, u.ID, fields); err != nil {
			return err
		}
		user, code = u, newCode
		return nil
	})
	if err != nil {
		return "", s.fail(err, "something went wrong when resending otp")
	}

	s.sendOtpMail(ctx, user.Email, code)
	return "Otp was successfully resent", nil
}

func (s *authService) SetNewPassword(ctx context.Context, otp, password string) (string, error) {
	s.logger.Info().Msg("setting a new user's password")

	if err := validatePassword(password); err != nil {
		return "", err
	}

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		// Forgot-password codes belong to active accounts, unlike the
		// sign-up verification lookup.
		u, err := users.FindByOtpActive(ctx, otp)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(msgInvalidOtp)
			}
			return err
		}
		if s.otp.Expired(u.OtpLifetime) {
			return apperr.Conflict(msgOtpExpired)
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return err
		}
		return users.UpdateFields(ctx, u.ID, map[string]interface{}{"password": hash})
	})
	if err != nil {
		return "", s.fail(err, "something went wrong when setting a new user's password")
	}
	return "Password successfully updated", nil
}

// issueTokenPair is the single rotation point: every login, refresh and
// federated sign-in funnels through it, so at most one refresh token per
// account validates at any time. Signing and fragment persistence commit
// together.
func (s *authService) issueTokenPair(ctx context.Context, user *domain.User) (*Tokens, error) {
	var tokens *Tokens
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		access, err := s.issuer.SignAccessToken(user)
		if err != nil {
			return err
		}
		refresh, err := s.issuer.SignRefreshToken(user.ID)
		if err != nil {
			return err
		}
		if err := users.UpdateRefreshToken(ctx, user.ID, TokenSignature(refresh)); err != nil {
			return err
		}
		tokens = &Tokens{AccessToken: access, RefreshToken: refresh}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (s *authService) sendOtpMail(ctx context.Context, email, code string) {
	if err := s.mailer.SendEmail(ctx, email, otpMailSubject, "Your otp: "+code); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("otp mail not sent")
	}
}

// fail passes typed business errors through untouched and masks everything
// else as a logged server error.
func (s *authService) fail(err error, message string) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	s.logger.Error().Err(err).Msg(message)
	return apperr.Internal(message)
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func validateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return apperr.BadRequest("Invalid email format. Please enter a valid email address.")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return apperr.BadRequest("Password must be at least 8 characters long")
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}
	if !lower || !upper || !digit || !symbol {
		return apperr.BadRequest("Password must contain at least one lowercase letter, one uppercase letter, one number, and one symbol")
	}
	return nil
}

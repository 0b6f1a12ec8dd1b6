package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/MaxGalant/auth-api/config"
	repo "github.com/MaxGalant/auth-api/internal/adapters/postgres"
	"github.com/MaxGalant/auth-api/internal/domain"
)

type mockUserRepo struct {
	users     map[string]*domain.User
	next      int
	createErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*domain.User{}}
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

func (r *mockUserRepo) WithTx(_ *gorm.DB) repo.UserRepository { return r }

func (r *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	if user.ID == "" {
		r.next++
		user.ID = fmt.Sprintf("user-%d", r.next)
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	r.users[user.ID] = user
	return nil
}

func (r *mockUserRepo) UpdateFields(_ context.Context, id string, fields map[string]interface{}) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "first_name":
			u.FirstName = v.(string)
		case "second_name":
			u.SecondName = v.(string)
		case "nickname":
			nick := v.(string)
			u.Nickname = &nick
		case "email":
			u.Email = v.(string)
		case "phone_number":
			phone := v.(string)
			u.PhoneNumber = &phone
		case "password":
			hash := v.(string)
			u.Password = &hash
		case "otp":
			code := v.(string)
			u.Otp = &code
		case "otp_lifetime":
			u.OtpLifetime = v.(time.Time)
		case "active":
			u.Active = v.(bool)
		default:
			return fmt.Errorf("unexpected field %q", k)
		}
	}
	return nil
}

func (r *mockUserRepo) UpdateRefreshToken(_ context.Context, id, fragment string) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.RefreshToken = &fragment
	return nil
}

func (r *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) FindByEmailActive(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.Active {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok && u.Active {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) FindByIDRoleUser(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok && u.Role == domain.RoleUser {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) FindByIDsRoleUser(_ context.Context, ids []string) ([]domain.User, error) {
	var out []domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok && u.Role == domain.RoleUser {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *mockUserRepo) FindByEmailAndOtp(_ context.Context, email, otp string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.Otp != nil && *u.Otp == otp && !u.Active {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) FindByOtpActive(_ context.Context, otp string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Otp != nil && *u.Otp == otp && u.Active {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) FindByNameRoleUser(_ context.Context, name string) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Role != domain.RoleUser {
			continue
		}
		if strings.Contains(u.FirstName, name) || strings.Contains(u.SecondName, name) ||
			(u.Nickname != nil && strings.Contains(*u.Nickname, name)) {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeTxManager struct{}

func (fakeTxManager) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type sentMail struct {
	to, subject, text string
}

type mockMailer struct {
	sent []sentMail
	err  error
}

func (m *mockMailer) SendEmail(_ context.Context, to, subject, text string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, text: text})
	return nil
}

type mockPublisher struct {
	published []*domain.User
	err       error
}

func (p *mockPublisher) PublishUserCreated(_ context.Context, user *domain.User) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, user)
	return nil
}

// stubIssuer mints well-formed three-segment strings with a fresh signature
// per pair, enough to exercise fragment rotation.
type stubIssuer struct {
	pairs int
}

var _ TokenIssuer = (*stubIssuer)(nil)

func (s *stubIssuer) SignAccessToken(user *domain.User) (string, error) {
	s.pairs++
	return fmt.Sprintf("h.acc-%s.asig%d", user.ID, s.pairs), nil
}

func (s *stubIssuer) SignRefreshToken(userID string) (string, error) {
	return fmt.Sprintf("h.ref-%s.rsig%d", userID, s.pairs), nil
}

func (s *stubIssuer) ParseAccessToken(string) (*jwt.Token, jwt.MapClaims, error) {
	return nil, nil, fmt.Errorf("not implemented")
}

func (s *stubIssuer) ParseRefreshToken(string) (*jwt.Token, jwt.MapClaims, error) {
	return nil, nil, fmt.Errorf("not implemented")
}

type authFixture struct {
	service   AuthService
	users     *mockUserRepo
	mailer    *mockMailer
	publisher *mockPublisher
	hasher    PasswordHasher
	otp       *OTPGenerator
}

func newAuthFixture() *authFixture {
	users := newMockUserRepo()
	mailer := &mockMailer{}
	publisher := &mockPublisher{}
	hasher := NewPasswordHasher()
	otp := NewOTPGenerator(15 * time.Minute)
	cfg := &config.Config{OTPTTL: 15 * time.Minute}
	service := NewAuthService(cfg, zerolog.Nop(), fakeTxManager{}, users, hasher, otp, &stubIssuer{}, mailer, publisher)
	return &authFixture{
		service:   service,
		users:     users,
		mailer:    mailer,
		publisher: publisher,
		hasher:    hasher,
		otp:       otp,
	}
}

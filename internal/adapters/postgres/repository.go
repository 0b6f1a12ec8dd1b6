package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/MaxGalant/auth-api/internal/domain"
)

// UserRepository is the credential store. Every method runs against the
// receiver's db handle; WithTx rebinds the repository to an open transaction
// so read-check-write sequences stay atomic.
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository

	Create(ctx context.Context, user *domain.User) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	UpdateRefreshToken(ctx context.Context, id, fragment string) error

	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByEmailActive(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByIDRoleUser(ctx context.Context, id string) (*domain.User, error)
	FindByIDsRoleUser(ctx context.Context, ids []string) ([]domain.User, error)
	FindByEmailAndOtp(ctx context.Context, email, otp string) (*domain.User, error)
	FindByOtpActive(ctx context.Context, otp string) (*domain.User, error)
	FindByNameRoleUser(ctx context.Context, name string) ([]domain.User, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) WithTx(tx *gorm.DB) UserRepository { return &userRepo{db: tx} }

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *userRepo) UpdateRefreshToken(ctx context.Context, id, fragment string) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("refresh_token", fragment).Error
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.one(ctx, "email = ?", email)
}

func (r *userRepo) FindByEmailActive(ctx context.Context, email string) (*domain.User, error) {
	return r.one(ctx, "email = ? AND active = ?", email, true)
}

// FindByID resolves only active accounts; token guards rely on that.
func (r *userRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.one(ctx, "id = ? AND active = ?", id, true)
}

func (r *userRepo) FindByIDRoleUser(ctx context.Context, id string) (*domain.User, error) {
	return r.one(ctx, "id = ? AND role = ?", id, domain.RoleUser)
}

func (r *userRepo) FindByIDsRoleUser(ctx context.Context, ids []string) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Where("id IN ? AND role = ?", ids, domain.RoleUser).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// FindByEmailAndOtp is scoped to unverified accounts: the sign-up
// verification flow.
func (r *userRepo) FindByEmailAndOtp(ctx context.Context, email, otp string) (*domain.User, error) {
	return r.one(ctx, "email = ? AND otp = ? AND active = ?", email, otp, false)
}

// FindByOtpActive is scoped to active accounts: the forgot-password flow.
func (r *userRepo) FindByOtpActive(ctx context.Context, otp string) (*domain.User, error) {
	return r.one(ctx, "otp = ? AND active = ?", otp, true)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE wildcards in a user-supplied search term so it
// matches literally.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

func (r *userRepo) FindByNameRoleUser(ctx context.Context, name string) ([]domain.User, error) {
	pattern := "%" + escapeLike(name) + "%"
	var users []domain.User
	err := r.db.WithContext(ctx).
		Where("role = ?", domain.RoleUser).
		Where("first_name LIKE ? OR second_name LIKE ? OR nickname LIKE ?", pattern, pattern, pattern).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) one(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

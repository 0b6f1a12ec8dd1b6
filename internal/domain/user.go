package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the single durable entity: one row per account, credential state
// included. Password is nil for accounts created through Google login;
// RefreshToken holds only the signature fragment of the last issued refresh
// token, never the full token.
type User struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName    string     `gorm:"column:first_name;not null" json:"first_name"`
	SecondName   string     `gorm:"column:second_name;not null" json:"second_name"`
	Nickname     *string    `gorm:"column:nickname" json:"nickname,omitempty"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	Password     *string    `gorm:"column:password" json:"-"`
	PhoneNumber  *string    `gorm:"column:phone_number;size:12" json:"phone_number,omitempty"`
	Otp          *string    `gorm:"column:otp" json:"-"`
	OtpLifetime  time.Time  `gorm:"column:otp_lifetime;not null;default:now()" json:"-"`
	RefreshToken *string    `gorm:"column:refresh_token" json:"-"`
	Active       bool       `gorm:"not null;default:false" json:"-"`
	Role         Role       `gorm:"type:varchar(16);not null;default:'user'" json:"role"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"-"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"-"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Profile is the sanitized projection returned to callers: no password,
// otp, refresh fragment, active flag or timestamps.
type Profile struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"firstName"`
	SecondName  string  `json:"secondName"`
	Nickname    *string `json:"nickname,omitempty"`
	Email       string  `json:"email"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Role        Role    `json:"role"`
}

func (u *User) Profile() *Profile {
	return &Profile{
		ID:          u.ID,
		FirstName:   u.FirstName,
		SecondName:  u.SecondName,
		Nickname:    u.Nickname,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
	}
}

func Profiles(users []User) []Profile {
	profiles := make([]Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, *users[i].Profile())
	}
	return profiles
}

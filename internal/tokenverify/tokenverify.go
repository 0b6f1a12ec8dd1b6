package tokenverify

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken   = errors.New("invalid_token")
	ErrTokenExpired   = errors.New("token_expired")
	ErrSubjectMissing = errors.New("subject_missing")
)

// Parser validates an access token's signature, audience and issuer.
type Parser interface {
	ParseAccessToken(token string) (*jwt.Token, jwt.MapClaims, error)
}

// Result is the identity carried in the access token's object subject.
type Result struct {
	UserID     string
	Email      string
	FirstName  string
	SecondName string
	Role       string
}

// Verify parses and validates an access token and unpacks its subject.
func Verify(parser Parser, token string, nowFn func() time.Time) (*Result, error) {
	if parser == nil {
		return nil, ErrInvalidToken
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	tok, claims, err := parser.ParseAccessToken(token)
	if err != nil || tok == nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if exp, err := claims.GetExpirationTime(); err != nil || exp == nil || nowFn().After(exp.Time) {
		return nil, ErrTokenExpired
	}
	sub, _ := claims["sub"].(map[string]interface{})
	id, _ := sub["id"].(string)
	if id == "" {
		return nil, ErrSubjectMissing
	}
	email, _ := sub["email"].(string)
	firstName, _ := sub["firstName"].(string)
	secondName, _ := sub["secondName"].(string)
	role, _ := sub["role"].(string)
	return &Result{
		UserID:     id,
		Email:      email,
		FirstName:  firstName,
		SecondName: secondName,
		Role:       role,
	}, nil
}

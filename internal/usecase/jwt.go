package usecase

import (
	"crypto/rsa"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MaxGalant/auth-api/config"
	"github.com/MaxGalant/auth-api/internal/domain"
)

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenIssuer signs and parses the two tokens of the protocol: an RS256
// access token carrying the account identity and an HS256 refresh token
// carrying only the account id.
type TokenIssuer interface {
	SignAccessToken(user *domain.User) (string, error)
	SignRefreshToken(userID string) (string, error)
	ParseAccessToken(token string) (*jwt.Token, jwt.MapClaims, error)
	ParseRefreshToken(token string) (*jwt.Token, jwt.MapClaims, error)
}

type jwtIssuer struct {
	cfg           *config.Config
	private       *rsa.PrivateKey
	public        *rsa.PublicKey
	refreshSecret []byte
}

func NewTokenIssuer(cfg *config.Config) (TokenIssuer, error) {
	if cfg.AccessPrivateKey == "" || cfg.AccessPublicKey == "" {
		return nil, errors.New("access token key pair required")
	}
	if cfg.RefreshSecret == "" {
		return nil, errors.New("refresh token secret required")
	}
	priv, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.AccessPrivateKey))
	if err != nil {
		return nil, err
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.AccessPublicKey))
	if err != nil {
		return nil, err
	}
	return &jwtIssuer{
		cfg:           cfg,
		private:       priv,
		public:        pub,
		refreshSecret: []byte(cfg.RefreshSecret),
	}, nil
}

func (s *jwtIssuer) SignAccessToken(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": map[string]interface{}{
			"id":         user.ID,
			"email":      user.Email,
			"firstName":  user.FirstName,
			"secondName": user.SecondName,
			"role":       string(user.Role),
		},
		"iss": s.cfg.JWTIssuer,
		"aud": s.cfg.JWTAudience,
		"exp": now.Add(s.cfg.AccessTTL).Unix(),
		"iat": now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.private)
}

func (s *jwtIssuer) SignRefreshToken(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"id":  userID,
		"iss": s.cfg.JWTIssuer,
		"aud": s.cfg.JWTAudience,
		"exp": now.Add(s.cfg.RefreshTTL).Unix(),
		"iat": now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
}

func (s *jwtIssuer) ParseAccessToken(tokenStr string) (*jwt.Token, jwt.MapClaims, error) {
	return s.parse(tokenStr, jwt.SigningMethodRS256.Alg(), func(*jwt.Token) (interface{}, error) {
		return s.public, nil
	})
}

func (s *jwtIssuer) ParseRefreshToken(tokenStr string) (*jwt.Token, jwt.MapClaims, error) {
	return s.parse(tokenStr, jwt.SigningMethodHS256.Alg(), func(*jwt.Token) (interface{}, error) {
		return s.refreshSecret, nil
	})
}

func (s *jwtIssuer) parse(tokenStr, method string, keyFn jwt.Keyfunc) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithAudience(s.cfg.JWTAudience),
		jwt.WithIssuer(s.cfg.JWTIssuer),
		jwt.WithValidMethods([]string{method}),
	)
	token, err := parser.ParseWithClaims(tokenStr, claims, keyFn)
	return token, claims, err
}

// TokenSignature returns the final segment of a serialized JWT. Only this
// fragment is persisted on the account to bind the current refresh session.
func TokenSignature(token string) string {
	parts := strings.Split(token, ".")
	return parts[len(parts)-1]
}

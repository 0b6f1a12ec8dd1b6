package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	repo "github.com/MaxGalant/auth-api/internal/adapters/postgres"
	"github.com/MaxGalant/auth-api/internal/usecase"
	res "github.com/MaxGalant/auth-api/pkg/http"
)

// ContextUserKey is where the guards stash the resolved account.
const ContextUserKey = "user"

type AuthMiddleware struct {
	issuer usecase.TokenIssuer
	users  repo.UserRepository
}

func NewAuthMiddleware(issuer usecase.TokenIssuer, users repo.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{issuer: issuer, users: users}
}

// AccessGuard accepts a bearer access token, resolves the account behind its
// subject and rejects with 401 when either step fails.
func (m *AuthMiddleware) AccessGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get(echo.HeaderAuthorization)
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return unauthorized(c, "missing token")
		}
		tok, claims, err := m.issuer.ParseAccessToken(parts[1])
		if err != nil || tok == nil || !tok.Valid {
			return unauthorized(c, "invalid token")
		}
		sub, _ := claims["sub"].(map[string]interface{})
		id, _ := sub["id"].(string)
		if id == "" {
			return unauthorized(c, "subject missing")
		}
		user, err := m.users.FindByID(c.Request().Context(), id)
		if err != nil {
			return unauthorized(c, "invalid token")
		}
		c.Set(ContextUserKey, user)
		return next(c)
	}
}

// RefreshGuard accepts a body-embedded refresh token. Beyond signature,
// audience and issuer, the token's final segment must equal the fragment
// stored on the account: rotation invalidates every earlier token.
func (m *AuthMiddleware) RefreshGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(struct {
			RefreshToken string `json:"refreshToken"`
		})
		if err := c.Bind(req); err != nil || req.RefreshToken == "" {
			return unauthorized(c, "missing refresh token")
		}
		tok, claims, err := m.issuer.ParseRefreshToken(req.RefreshToken)
		if err != nil || tok == nil || !tok.Valid {
			return unauthorized(c, "Invalid refresh token")
		}
		id, _ := claims["id"].(string)
		if id == "" {
			return unauthorized(c, "Invalid refresh token")
		}
		user, err := m.users.FindByID(c.Request().Context(), id)
		if err != nil {
			return unauthorized(c, "Invalid refresh token")
		}
		if user.RefreshToken == nil || usecase.TokenSignature(req.RefreshToken) != *user.RefreshToken {
			return unauthorized(c, "Invalid refresh token")
		}
		c.Set(ContextUserKey, user)
		return next(c)
	}
}

func unauthorized(c echo.Context, message string) error {
	return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", message, requestIDFromCtx(c), nil)
}

func requestIDFromCtx(c echo.Context) string {
	if reqID := c.Response().Header().Get(echo.HeaderXRequestID); reqID != "" {
		return reqID
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

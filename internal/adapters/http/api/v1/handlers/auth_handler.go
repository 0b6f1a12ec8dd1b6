package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MaxGalant/auth-api/internal/adapters/google"
	"github.com/MaxGalant/auth-api/internal/adapters/http/middleware"
	"github.com/MaxGalant/auth-api/internal/domain"
	"github.com/MaxGalant/auth-api/internal/usecase"
)

type AuthHandler struct {
	auth   usecase.AuthService
	google google.Client
}

func NewAuthHandler(auth usecase.AuthService, googleClient google.Client) *AuthHandler {
	return &AuthHandler{auth: auth, google: googleClient}
}

type createUserRequest struct {
	FirstName   string  `json:"firstName"`
	SecondName  string  `json:"secondName"`
	Nickname    *string `json:"nickname"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	PhoneNumber *string `json:"phoneNumber"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOtpRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

type resendOtpRequest struct {
	Email string `json:"email"`
}

type setNewPasswordRequest struct {
	Otp      string `json:"otp"`
	Password string `json:"password"`
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	req := new(createUserRequest)
	if err := c.Bind(req); err != nil {
		return badRequest(c)
	}
	profile, err := h.auth.SignUp(c.Request().Context(), usecase.CreateUserInput{
		FirstName:   req.FirstName,
		SecondName:  req.SecondName,
		Nickname:    req.Nickname,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, profile)
}

func (h *AuthHandler) Login(c echo.Context) error {
	req := new(loginRequest)
	if err := c.Bind(req); err != nil {
		return badRequest(c)
	}
	tokens, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

// Refresh runs behind the refresh-token guard: by the time it executes the
// account is resolved and the presented token fragment-checked.
func (h *AuthHandler) Refresh(c echo.Context) error {
	user := c.Get(middleware.ContextUserKey).(*domain.User)
	tokens, err := h.auth.Refresh(c.Request().Context(), user)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

// GoogleAuth sends the browser to the Google consent screen.
func (h *AuthHandler) GoogleAuth(c echo.Context) error {
	return c.Redirect(http.StatusTemporaryRedirect, h.google.AuthCodeURL(requestIDFromCtx(c)))
}

func (h *AuthHandler) GoogleRedirect(c echo.Context) error {
	var profile *google.Profile
	if code := c.QueryParam("code"); code != "" {
		p, err := h.google.FetchProfile(c.Request().Context(), code)
		if err == nil {
			profile = p
		}
	}
	// A failed exchange leaves profile nil; the service answers NotFound.
	tokens, err := h.auth.GoogleLogin(c.Request().Context(), profile)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandler) VerifyOtp(c echo.Context) error {
	req := new(verifyOtpRequest)
	if err := c.Bind(req); err != nil {
		return badRequest(c)
	}
	profile, err := h.auth.VerifyOtp(c.Request().Context(), req.Email, req.Otp)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *AuthHandler) ResendOtp(c echo.Context) error {
	req := new(resendOtpRequest)
	if err := c.Bind(req); err != nil {
		return badRequest(c)
	}
	message, err := h.auth.ResendOtp(c.Request().Context(), req.Email)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": message})
}

func (h *AuthHandler) SetNewPassword(c echo.Context) error {
	req := new(setNewPasswordRequest)
	if err := c.Bind(req); err != nil {
		return badRequest(c)
	}
	message, err := h.auth.SetNewPassword(c.Request().Context(), req.Otp, req.Password)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": message})
}

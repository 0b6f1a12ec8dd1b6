package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/MaxGalant/auth-api/internal/adapters/http/middleware"
	"github.com/MaxGalant/auth-api/internal/domain"
	"github.com/MaxGalant/auth-api/internal/usecase"
)

type UserHandler struct {
	users usecase.UserService
}

func NewUserHandler(users usecase.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateInfoRequest struct {
	FirstName   *string `json:"first_name"`
	SecondName  *string `json:"second_name"`
	Nickname    *string `json:"nickname"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
}

func (h *UserHandler) UpdatePassword(c echo.Context) error {
	req := new(updatePasswordRequest)
	if err := c.Bind(req); err != nil {
		return badRequest(c)
	}
	user := c.Get(middleware.ContextUserKey).(*domain.User)
	message, err := h.users.UpdatePassword(c.Request().Context(), user, req.OldPassword, req.NewPassword)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": message})
}

func (h *UserHandler) UpdateInfo(c echo.Context) error {
	req := new(updateInfoRequest)
	if err := c.Bind(req); err != nil {
		return badRequest(c)
	}
	user := c.Get(middleware.ContextUserKey).(*domain.User)
	message, err := h.users.UpdateInfo(c.Request().Context(), user.ID, usecase.UpdateUserInput{
		FirstName:   req.FirstName,
		SecondName:  req.SecondName,
		Nickname:    req.Nickname,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": message})
}

func (h *UserHandler) GetByIDs(c echo.Context) error {
	raw := c.QueryParam("ids")
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	profiles, err := h.users.GetByIDs(c.Request().Context(), ids)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, profiles)
}

func (h *UserHandler) Search(c echo.Context) error {
	profiles, err := h.users.Search(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, profiles)
}

func (h *UserHandler) GetByID(c echo.Context) error {
	profile, err := h.users.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

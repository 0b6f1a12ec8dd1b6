package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MaxGalant/auth-api/internal/apperr"
	res "github.com/MaxGalant/auth-api/pkg/http"
)

// errorJSON maps typed service errors to their status; anything untyped is a
// masked 500.
func errorJSON(c echo.Context, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return res.ErrorJSON(c, ae.Status, ae.Kind, ae.Message, requestIDFromCtx(c), nil)
	}
	return res.ErrorJSON(c, http.StatusInternalServerError, apperr.KindServerError, "internal error", requestIDFromCtx(c), nil)
}

func badRequest(c echo.Context) error {
	return res.ErrorJSON(c, http.StatusBadRequest, apperr.KindBadRequest, "invalid payload", requestIDFromCtx(c), nil)
}

func requestIDFromCtx(c echo.Context) string {
	if reqID := c.Response().Header().Get(echo.HeaderXRequestID); reqID != "" {
		return reqID
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

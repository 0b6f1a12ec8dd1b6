package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/MaxGalant/auth-api/internal/adapters/http/api/v1/handlers"
)

type Router struct {
	auth      *handlers.AuthHandler
	users     *handlers.UserHandler
	accessMW  echo.MiddlewareFunc
	refreshMW echo.MiddlewareFunc
}

func NewRouter(auth *handlers.AuthHandler, users *handlers.UserHandler, accessMW, refreshMW echo.MiddlewareFunc) *Router {
	return &Router{auth: auth, users: users, accessMW: accessMW, refreshMW: refreshMW}
}

func (r *Router) Register(g *echo.Group) {
	auth := g.Group("/auth")
	auth.POST("/sign-up", r.auth.SignUp)
	auth.POST("/login", r.auth.Login)
	auth.POST("/refresh", r.auth.Refresh, r.refreshMW)
	auth.GET("/google", r.auth.GoogleAuth)
	auth.GET("/redirect", r.auth.GoogleRedirect)
	auth.POST("/verify-otp", r.auth.VerifyOtp)
	auth.POST("/resend-otp", r.auth.ResendOtp)
	auth.POST("/set-new-password", r.auth.SetNewPassword)

	user := g.Group("/user", r.accessMW)
	user.POST("/update-password", r.users.UpdatePassword)
	user.PATCH("/update-info", r.users.UpdateInfo)
	user.GET("/get-by-ids", r.users.GetByIDs)
	user.GET("/search", r.users.Search)
	user.GET("/:id", r.users.GetByID)
}

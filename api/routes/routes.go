package routes

import (
	"time"

	"gatekeeper/api/handler"
	"gatekeeper/api/middleware"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	Access         *handler.AccessHandler
	Tokens         *handler.TokenHandler
	AuthMiddleware middleware.AuthMiddleware
	PublicRate     *middleware.RateLimiter
	IssueRate      *middleware.RateLimiter
}

func NewRouter(
	e *echo.Echo,
	authHandler *handler.AuthHandler,
	accessHandler *handler.AccessHandler,
	tokenHandler *handler.TokenHandler,
	authMiddleware middleware.AuthMiddleware,
) *Router {
	return &Router{
		Echo:           e,
		Auth:           authHandler,
		Access:         accessHandler,
		Tokens:         tokenHandler,
		AuthMiddleware: authMiddleware,
		PublicRate:     middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		IssueRate:      middleware.NewRateLimiter(rate.Limit(1), 3, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo

	e.GET("/access/decision", r.Access.Decision, r.PublicRate.Middleware())

	e.POST("/auth/login", r.Auth.Login, r.IssueRate.Middleware())

	e.POST("/tokens/registration", r.Tokens.IssueRegistration, r.IssueRate.Middleware())
	e.POST("/tokens/reverify", r.Tokens.IssueReverify, r.AuthMiddleware.RequireAuth)
	e.POST("/tokens/validate", r.Tokens.ValidateToken, r.PublicRate.Middleware())
	e.POST("/tokens/consume", r.Tokens.ConsumeToken, r.PublicRate.Middleware())

	admin := e.Group("/admin", r.AuthMiddleware.RequireAuth, middleware.RequireRole("admin"))
	admin.GET("/allowlist", r.Access.ListAllowList)
	admin.POST("/allowlist", r.Access.AddAllowListEntry)
	admin.DELETE("/allowlist/:id", r.Access.RemoveAllowListEntry)
	admin.GET("/public-access", r.Access.GetPublicAccess)
	admin.PUT("/public-access", r.Access.SetPublicAccess)
}

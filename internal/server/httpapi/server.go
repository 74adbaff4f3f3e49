// Package httpapi exposes the authentication endpoints over HTTP and
// resolves caller identity on protected routes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"pennywise/internal/logging"
	"pennywise/internal/server/services"

	"github.com/labstack/echo/v4"
)

// HTTPServer hosts the public API.
type HTTPServer struct {
	address   string
	auth      *services.AuthService
	admins    *services.AdminAuthService
	logger    logging.Logger
	jwtSecret []byte
}

func NewHTTPServer(address string, l logging.Logger, as *services.AuthService, aas *services.AdminAuthService, secretKey string) *HTTPServer {
	return &HTTPServer{
		address:   address,
		logger:    l.With("module", "http_server"),
		auth:      as,
		admins:    aas,
		jwtSecret: []byte(secretKey),
	}
}

func (s *HTTPServer) routes(e *echo.Echo) {
	e.GET("/health", s.health)

	e.POST("/auth/register", s.register)
	e.POST("/auth/login", s.login)
	e.POST("/auth/request-otp", s.requestOTP)
	e.POST("/auth/verify-otp", s.verifyOTP)
	e.POST("/auth/forgot-password", s.forgotPassword)
	e.POST("/auth/reset-password", s.resetPassword)
	e.POST("/auth/google", s.googleLogin)
	e.POST("/auth/logout", s.logout, s.requireUser)

	e.GET("/me", s.me, s.requireUser)
	e.DELETE("/me", s.deleteMe, s.requireUser)

	e.POST("/admin/auth/register", s.registerAdmin, s.optionalAdmin)
	e.POST("/admin/auth/login", s.loginAdmin)
	e.GET("/admin/me", s.meAdmin, s.requireAdmin)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	s.routes(e)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := e.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

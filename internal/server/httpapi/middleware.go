package httpapi

import (
	"strings"

	"pennywise/internal/common"
	"pennywise/internal/server/auth"

	"github.com/labstack/echo/v4"
)

// Context keys set by the identity middlewares.
const (
	ctxUserID      = "userID"
	ctxAdminID     = "adminID"
	ctxCallerAdmin = "callerIsAdmin"
)

func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", common.ErrorUnauthorized
	}
	return token, nil
}

// requireUser resolves the caller's identity from the bearer token. The
// subject id from the claims is the identity; no store lookup happens here.
func (s *HTTPServer) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}
		subject, err := auth.GetSubjectFromToken(token, s.jwtSecret)
		if err != nil {
			return common.ErrorUnauthorized
		}
		c.Set(ctxUserID, subject)
		return next(c)
	}
}

// requireAdmin additionally checks membership in the administrator set.
// A store failure resolves to Unauthorized (fail closed); an authenticated
// non-admin is Forbidden.
func (s *HTTPServer) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}
		subject, err := auth.GetSubjectFromToken(token, s.jwtSecret)
		if err != nil {
			return common.ErrorUnauthorized
		}
		isAdmin, err := s.admins.IsAdmin(c.Request().Context(), subject)
		if err != nil {
			return common.ErrorUnauthorized
		}
		if !isAdmin {
			return common.ErrorForbidden
		}
		c.Set(ctxAdminID, subject)
		return next(c)
	}
}

// optionalAdmin resolves whether the caller is an authenticated administrator
// but never rejects the request. The bootstrap registration endpoint is its
// only consumer.
func (s *HTTPServer) optionalAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(ctxCallerAdmin, false)
		if token, err := bearerToken(c); err == nil {
			if subject, err := auth.GetSubjectFromToken(token, s.jwtSecret); err == nil {
				if isAdmin, err := s.admins.IsAdmin(c.Request().Context(), subject); err == nil && isAdmin {
					c.Set(ctxCallerAdmin, true)
				}
			}
		}
		return next(c)
	}
}

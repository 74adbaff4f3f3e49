package httpapi

import (
	"github.com/labstack/echo/v4"
)

type adminRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *HTTPServer) registerAdmin(c echo.Context) error {
	var req adminRegisterRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	callerIsAdmin, _ := c.Get(ctxCallerAdmin).(bool)
	result, err := s.admins.Register(c.Request().Context(), req.Name, req.Email, req.Password, callerIsAdmin)
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

func (s *HTTPServer) loginAdmin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	result, err := s.admins.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

func (s *HTTPServer) meAdmin(c echo.Context) error {
	admin, err := s.admins.Me(c.Request().Context(), c.Get(ctxAdminID).(string))
	if err != nil {
		return err
	}
	return respondOK(c, admin)
}

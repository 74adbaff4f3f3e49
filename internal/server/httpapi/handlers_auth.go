package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type requestOTPRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type googleLoginRequest struct {
	IDToken string `json:"id_token"`
}

func (s *HTTPServer) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	result, err := s.auth.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

func (s *HTTPServer) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	result, err := s.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

func (s *HTTPServer) me(c echo.Context) error {
	user, err := s.auth.Me(c.Request().Context(), c.Get(ctxUserID).(string))
	if err != nil {
		return err
	}
	return respondOK(c, user)
}

func (s *HTTPServer) deleteMe(c echo.Context) error {
	if err := s.auth.DeleteMe(c.Request().Context(), c.Get(ctxUserID).(string)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) requestOTP(c echo.Context) error {
	var req requestOTPRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := s.auth.RequestOTP(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return respondMessage(c, "verification code sent")
}

func (s *HTTPServer) verifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := s.auth.VerifyOTP(c.Request().Context(), req.Email, req.Code); err != nil {
		return err
	}
	return respondMessage(c, "email verified")
}

func (s *HTTPServer) forgotPassword(c echo.Context) error {
	var req requestOTPRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := s.auth.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return respondMessage(c, "reset code sent")
}

func (s *HTTPServer) resetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := s.auth.ResetPassword(c.Request().Context(), req.Email, req.Code, req.NewPassword); err != nil {
		return err
	}
	return respondMessage(c, "password reset")
}

// logout is a stateless no-op: tokens stay valid until expiry, there is no
// server-side revocation store.
func (s *HTTPServer) logout(c echo.Context) error {
	return respondMessage(c, "logged out")
}

func (s *HTTPServer) googleLogin(c echo.Context) error {
	var req googleLoginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	result, err := s.auth.GoogleLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

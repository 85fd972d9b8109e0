package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/NikhilSingh0745/mr-interview/internal/identity"
	"github.com/NikhilSingh0745/mr-interview/internal/validate"
)

type loginRequest struct {
	Email     string `json:"email"`
	GasID     string `json:"gasId"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type loginResponse struct {
	User  *identity.User `json:"user"`
	Token string         `json:"token"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := validate.DecodeStrict(c.Request().Body, &req); err != nil {
		return err
	}

	v := validate.New()
	v.Email("email", req.Email)
	gasID := v.ObjectID("gasId", req.GasID)
	if err := v.Err(); err != nil {
		return err
	}

	result, err := s.services.Identity.Login(c.Request().Context(), identity.LoginRequest{
		Email:     req.Email,
		GasID:     gasID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}

	data := loginResponse{User: result.User, Token: result.Token}
	if result.Created {
		return respond(c, http.StatusCreated, "User created and logged in successfully", data)
	}
	return respond(c, http.StatusOK, "Login successful", data)
}

package api

import (
	"context"
	"net/http"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the flat payload the auth endpoints return: the token plus
// the user record's fields.
type AuthResponse struct {
	Token string `json:"token"`
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

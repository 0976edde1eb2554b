package apiclient

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/mercadotech/internal/models"
)

type AuthResponse struct {
	User  models.Principal `json:"user"`
	Token string           `json:"token"`
}

type credentials struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role,omitempty"`
}

func (c *Client) Register(ctx context.Context, email, password string, role models.Role) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/register",
		body:   credentials{Email: email, Password: password, Role: role},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   credentials{Email: email, Password: password},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GoogleLogin exchanges an identity asserted by Google for a backend token.
func (c *Client) GoogleLogin(ctx context.Context, email, googleID string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/google-login",
		body: struct {
			Email    string `json:"email"`
			GoogleID string `json:"googleId"`
		}{email, googleID},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

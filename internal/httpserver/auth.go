package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/mercadotech/internal/events"
	"github.com/Skotchmaster/mercadotech/internal/guard"
	"github.com/Skotchmaster/mercadotech/internal/models"
	"github.com/Skotchmaster/mercadotech/internal/session"
)

type AuthHandler struct {
	Sessions *session.Store
	Events   *events.Emitter
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string      `json:"email"    validate:"required,email"`
	Password string      `json:"password" validate:"required"`
	Role     models.Role `json:"role"     validate:"required,oneof=CLIENT STORE ADMIN"`
}

type googleLoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	GoogleID string `json:"googleId"`
}

type authResponse struct {
	User     *models.Principal `json:"user"`
	Redirect string            `json:"redirect"`
}

// formScreen describes a form: what to fill in and where to post it.
type formScreen struct {
	Screen string            `json:"screen"`
	Fields []string          `json:"fields"`
	Roles  []models.Role     `json:"roles,omitempty"`
	Submit string            `json:"submit"`
	Social string            `json:"social,omitempty"`
	User   *models.Principal `json:"user"`
}

type sessionResponse struct {
	Pending       bool              `json:"pending"`
	Authenticated bool              `json:"authenticated"`
	User          *models.Principal `json:"user"`
	ExpiresAt     *time.Time        `json:"expiresAt,omitempty"`
	Expired       bool              `json:"expired"`
}

// LoginScreen is where the guard sends anonymous visitors. A signed-in user
// sees who they are signed in as.
func (h *AuthHandler) LoginScreen(c echo.Context) error {
	return c.JSON(http.StatusOK, formScreen{
		Screen: "login",
		Fields: []string{"email", "password"},
		Submit: guard.LoginPath,
		Social: pathGoogleLogin,
		User:   h.Sessions.Principal(),
	})
}

func (h *AuthHandler) RegisterScreen(c echo.Context) error {
	return c.JSON(http.StatusOK, formScreen{
		Screen: "register",
		Fields: []string{"email", "password", "role"},
		Roles:  []models.Role{models.RoleClient, models.RoleStore, models.RoleAdmin},
		Submit: pathRegister,
		User:   h.Sessions.Principal(),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	p, err := h.Sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	h.emitUser(c.Request().Context(), events.TypeUserLoggedIn, p)
	return c.JSON(http.StatusOK, authResponse{User: p, Redirect: pathCatalog})
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	p, err := h.Sessions.Register(c.Request().Context(), req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	h.emitUser(c.Request().Context(), events.TypeUserRegistered, p)
	return c.JSON(http.StatusCreated, authResponse{User: p, Redirect: pathCatalog})
}

// GoogleLogin signs in with an email asserted by the identity provider. A
// missing provider id is generated, the way the sign-in screen simulates it.
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	var req googleLoginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	if req.GoogleID == "" {
		req.GoogleID = "google_" + strconv.FormatInt(time.Now().UnixMilli(), 10)
	}

	p, err := h.Sessions.SocialLogin(c.Request().Context(), req.Email, req.GoogleID)
	if err != nil {
		return err
	}
	h.emitUser(c.Request().Context(), events.TypeUserLoggedIn, p)
	return c.JSON(http.StatusOK, authResponse{User: p, Redirect: pathCatalog})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	prev := h.Sessions.Principal()
	if err := h.Sessions.Logout(ctx); err != nil {
		return err
	}
	if prev != nil {
		h.emitUser(ctx, events.TypeUserLoggedOut, prev)
	}
	return c.JSON(http.StatusOK, redirectResponse{Redirect: guard.LoginPath})
}

func (h *AuthHandler) Session(c echo.Context) error {
	p := h.Sessions.Principal()
	res := sessionResponse{
		Pending:       h.Sessions.Pending(),
		Authenticated: p != nil,
		User:          p,
		Expired:       p != nil && h.Sessions.Expired(time.Now()),
	}
	if exp, ok := h.Sessions.ExpiresAt(); ok {
		res.ExpiresAt = &exp
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) emitUser(ctx context.Context, typ string, p *models.Principal) {
	h.Events.Emit(ctx, events.TopicUser, events.Event{
		Type:   typ,
		UserID: p.ID,
		Email:  p.Email,
		Role:   string(p.Role),
	})
}

package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/mercadotech/internal/cart"
	"github.com/Skotchmaster/mercadotech/internal/events"
	"github.com/Skotchmaster/mercadotech/internal/models"
	"github.com/Skotchmaster/mercadotech/internal/session"
	"github.com/Skotchmaster/mercadotech/internal/storage"
	"github.com/Skotchmaster/mercadotech/pkg/apiclient"
	"github.com/Skotchmaster/mercadotech/pkg/tokens"
)

var tokenExpiry = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeBackend plays the marketplace API and records what it was sent.
type fakeBackend struct {
	*httptest.Server

	mu             sync.Mutex
	authHeaders    map[string]string
	synced         [][]apiclient.CartItem
	replaced       [][]apiclient.CartItem
	orders         []apiclient.OrderInput
	statusUpdates  map[string]string
	productQuery   string
	serverCart     []apiclient.CartEntry
	myStore        string
	failCategories bool
}

func signedToken(t *testing.T, p models.Principal) string {
	t.Helper()
	return signedTokenExpiring(t, p, tokenExpiry)
}

func signedTokenExpiring(t *testing.T, p models.Principal, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokens.AccessClaims{
		Role:  string(p.Role),
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return tok
}

func principalFor(email string) models.Principal {
	switch {
	case strings.HasPrefix(email, "store@"):
		return models.Principal{ID: "u-store", Email: email, Role: models.RoleStore}
	case strings.HasPrefix(email, "admin@"):
		return models.Principal{ID: "u-admin", Email: email, Role: models.RoleAdmin}
	}
	return models.Principal{ID: "u-client", Email: email, Role: models.RoleClient}
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{authHeaders: map[string]string{}, statusUpdates: map[string]string{}}
	e := echo.New()

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			b.mu.Lock()
			b.authHeaders[c.Request().Method+" "+c.Path()] = c.Request().Header.Get("Authorization")
			b.mu.Unlock()
			return next(c)
		}
	})

	api := e.Group("/api/v1")

	authed := func(c echo.Context, status int, p models.Principal) error {
		return c.JSON(status, map[string]any{"user": map[string]any{"_id": p.ID, "email": p.Email, "role": p.Role}, "token": signedToken(t, p)})
	}
	api.POST("/auth/login", func(c echo.Context) error {
		var req struct{ Email, Password string }
		_ = c.Bind(&req)
		if req.Password == "wrong" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Credenciales inválidas"})
		}
		return authed(c, http.StatusOK, principalFor(req.Email))
	})
	api.POST("/auth/register", func(c echo.Context) error {
		var req struct {
			Email string      `json:"email"`
			Role  models.Role `json:"role"`
		}
		_ = c.Bind(&req)
		return authed(c, http.StatusCreated, models.Principal{ID: "u-new", Email: req.Email, Role: req.Role})
	})
	api.POST("/auth/google-login", func(c echo.Context) error {
		var req struct {
			Email    string `json:"email"`
			GoogleID string `json:"googleId"`
		}
		_ = c.Bind(&req)
		if req.GoogleID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "googleId required"})
		}
		return authed(c, http.StatusOK, principalFor(req.Email))
	})

	api.POST("/cart/sync", func(c echo.Context) error {
		var req struct {
			Items []apiclient.CartItem `json:"items"`
		}
		_ = c.Bind(&req)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.synced = append(b.synced, req.Items)
		merged := make([]apiclient.CartEntry, 0, len(req.Items)+len(b.serverCart))
		for _, it := range req.Items {
			merged = append(merged, apiclient.CartEntry{
				Product:  models.Product{ID: it.Product, Name: "Product " + it.Product, Price: dec(10), Stock: 5},
				Quantity: it.Quantity,
				Store:    models.Ref{ID: it.Store, Name: "Store " + it.Store},
			})
		}
		merged = append(merged, b.serverCart...)
		return c.JSON(http.StatusOK, apiclient.CartResponse{Items: merged})
	})
	api.PUT("/cart", func(c echo.Context) error {
		var req struct {
			Items []apiclient.CartItem `json:"items"`
		}
		_ = c.Bind(&req)
		b.mu.Lock()
		b.replaced = append(b.replaced, req.Items)
		b.mu.Unlock()
		return c.JSON(http.StatusOK, map[string]any{"items": []any{}})
	})

	api.GET("/products", func(c echo.Context) error {
		b.mu.Lock()
		b.productQuery = c.QueryString()
		b.mu.Unlock()
		return c.JSON(http.StatusOK, []models.Product{{ID: "P1", Name: "Mouse", Price: dec(10), Stock: 5}})
	})
	api.GET("/products/store/:id", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []models.Product{{ID: "P9", Name: "Lamp", Price: dec(30), Stock: 2, Store: models.Ref{ID: c.Param("id")}}})
	})
	api.POST("/products", func(c echo.Context) error {
		var in apiclient.ProductInput
		_ = c.Bind(&in)
		return c.JSON(http.StatusCreated, models.Product{ID: "P-new", Name: in.Name, Price: in.Price, Stock: in.Stock})
	})
	api.DELETE("/products/:id", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api.GET("/categories", func(c echo.Context) error {
		b.mu.Lock()
		fail := b.failCategories
		b.mu.Unlock()
		if fail {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "db down"})
		}
		return c.JSON(http.StatusOK, []models.Category{{ID: "C1", Name: "Electronics"}})
	})
	api.POST("/categories", func(c echo.Context) error {
		var in apiclient.CategoryInput
		_ = c.Bind(&in)
		return c.JSON(http.StatusCreated, models.Category{ID: "C-new", Name: in.Name})
	})

	api.GET("/stores", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []models.Store{{ID: "S1", Name: "Tienda Uno", Status: models.StorePending}})
	})
	api.GET("/stores/my-store", func(c echo.Context) error {
		b.mu.Lock()
		raw := b.myStore
		b.mu.Unlock()
		if raw == "" {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Store not found"})
		}
		return c.JSONBlob(http.StatusOK, []byte(raw))
	})
	api.POST("/stores", func(c echo.Context) error {
		var in apiclient.StoreInput
		_ = c.Bind(&in)
		return c.JSON(http.StatusCreated, models.Store{ID: "S-new", Name: in.Name, Description: in.Description, Status: models.StorePending})
	})
	api.PATCH("/stores/:id/status", func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.Store{ID: c.Param("id"), Name: "Tienda Uno", Status: models.StoreApproved})
	})

	api.POST("/orders", func(c echo.Context) error {
		var in apiclient.OrderInput
		_ = c.Bind(&in)
		b.mu.Lock()
		b.orders = append(b.orders, in)
		b.mu.Unlock()
		return c.JSON(http.StatusCreated, models.Order{ID: "O1", Total: dec(25), Status: models.OrderPending, ShippingAddress: in.ShippingAddress})
	})
	api.GET("/orders/my-orders", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []models.Order{{ID: "O1", Total: dec(25), Status: models.OrderPaid}})
	})
	api.GET("/orders/store-orders", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []models.Order{{ID: "O2", Total: dec(30), Status: models.OrderPending}})
	})
	api.PATCH("/orders/:id/status", func(c echo.Context) error {
		var req struct {
			Status string `json:"status"`
		}
		_ = c.Bind(&req)
		b.mu.Lock()
		b.statusUpdates[c.Param("id")] = req.Status
		b.mu.Unlock()
		return c.JSON(http.StatusOK, models.Order{ID: c.Param("id"), Status: models.OrderStatus(req.Status)})
	})

	b.Server = httptest.NewServer(e)
	t.Cleanup(b.Close)
	return b
}

func (b *fakeBackend) authHeader(route string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.authHeaders[route]
}

func (b *fakeBackend) syncCalls() [][]apiclient.CartItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]apiclient.CartItem(nil), b.synced...)
}

func (b *fakeBackend) replaceCalls() [][]apiclient.CartItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]apiclient.CartItem(nil), b.replaced...)
}

func (b *fakeBackend) placedOrders() []apiclient.OrderInput {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]apiclient.OrderInput(nil), b.orders...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) PublishEvent(_ context.Context, _, _ string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev, ok := event.(events.Event); ok {
		r.events = append(r.events, ev)
	}
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	Backend  *fakeBackend
	Sessions *session.Store
	Cart     *cart.Store
	KV       storage.KV
	Pub      *recordingPublisher
	Events   *events.Emitter
}

// buildEnv wires the storefront against a fake backend without restoring
// the session, so the guard still reports loading.
func buildEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	backend := newFakeBackend(t)

	kv, err := storage.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)

	client := apiclient.NewClient(backend.URL)
	sessions := session.NewStore(client, kv, zerolog.Nop())
	client.UseTokenSource(sessions)
	c := cart.New(client, kv, zerolog.Nop())
	sessions.Subscribe(c.OnSessionChange)
	c.Load(ctx)

	pub := &recordingPublisher{}
	emitter := events.NewEmitter(pub, zerolog.Nop())
	env := &testEnv{
		T:        t,
		Backend:  backend,
		Sessions: sessions,
		Cart:     c,
		KV:       kv,
		Pub:      pub,
		Events:   emitter,
		E: New(&Deps{
			Sessions: sessions,
			Cart:     c,
			API:      client,
			Events:   emitter,
			Log:      zerolog.Nop(),
		}),
	}
	t.Cleanup(func() {
		c.Wait()
		emitter.Wait()
		_ = kv.Close()
	})
	return env
}

func newTestEnv(t *testing.T) *testEnv {
	env := buildEnv(t)
	env.Sessions.Restore(context.Background())
	return env
}

// published waits for background publishes and returns the event types sent.
func (env *testEnv) published() []string {
	env.Events.Wait()
	return env.Pub.types()
}

func (env *testEnv) doJSONRequest(method, path string, body any) *httptest.ResponseRecorder {
	env.T.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(email string) {
	env.T.Helper()
	rec := env.doJSONRequest(http.MethodPost, "/login", map[string]string{"email": email, "password": "secret"})
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func mustField(t *testing.T, body []byte, name string) json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &fields))
	raw, ok := fields[name]
	require.True(t, ok, "missing field %q", name)
	return raw
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

var mouse = map[string]any{
	"_id":   "P1",
	"name":  "Mouse",
	"price": 10,
	"stock": 5,
	"store": map[string]string{"_id": "S1", "name": "Tienda Uno"},
}

var keyboard = map[string]any{
	"_id":   "P2",
	"name":  "Keyboard",
	"price": 5,
	"stock": 3,
	"store": map[string]string{"_id": "S2", "name": "Tienda Dos"},
}

package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/mercadotech/internal/models"
)

type fakeSession struct {
	pending   bool
	principal *models.Principal
}

func (f fakeSession) Pending() bool                { return f.pending }
func (f fakeSession) Principal() *models.Principal { return f.principal }

var store = &models.Principal{ID: "u2", Email: "shop@mercadotech.co", Role: models.RoleStore}

func TestRequireLogin(t *testing.T) {
	tests := []struct {
		name         string
		session      fakeSession
		wantCode     int
		wantLocation string
		wantCalled   bool
	}{
		{name: "restore pending", session: fakeSession{pending: true, principal: store}, wantCode: http.StatusServiceUnavailable},
		{name: "anonymous", session: fakeSession{}, wantCode: http.StatusFound, wantLocation: LoginPath},
		{name: "logged in", session: fakeSession{principal: store}, wantCode: http.StatusOK, wantCalled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			called := false
			e.GET("/checkout", func(c echo.Context) error {
				called = true
				require.Equal(t, store, PrincipalFrom(c))
				return c.NoContent(http.StatusOK)
			}, RequireLogin(tt.session))

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkout", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			assert.Equal(t, tt.wantLocation, rec.Header().Get(echo.HeaderLocation))
			if tt.session.pending {
				assert.JSONEq(t, `{"status":"loading"}`, rec.Body.String())
				assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestCheck(t *testing.T) {
	assert.Equal(t, Loading, Check(fakeSession{pending: true}))
	assert.Equal(t, RedirectToLogin, Check(fakeSession{}))
	assert.Equal(t, Allow, Check(fakeSession{principal: store}))
}

func TestHasRole(t *testing.T) {
	assert.True(t, HasRole(store, models.RoleStore))
	assert.True(t, HasRole(store, models.RoleAdmin, models.RoleStore))
	assert.False(t, HasRole(store, models.RoleClient))
	assert.False(t, HasRole(nil, models.RoleClient))
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NikhilSingh0745/mr-interview/internal/apierr"
)

func gateFixture(t *testing.T) (*Gate, *Tokens) {
	t.Helper()
	tokens, err := NewTokens("test-secret", time.Hour)
	require.NoError(t, err)
	return NewGate("system-key", tokens, []string{"/auth/login", "/health"}, zap.NewNop()), tokens
}

// invoke runs the gate middleware against a request and returns the
// error plus the principal the next handler observed.
func invoke(t *testing.T, g *Gate, req *http.Request) (error, *Principal) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *Principal
	handler := g.Middleware()(func(c echo.Context) error {
		seen, _ = CurrentPrincipal(c)
		return c.NoContent(http.StatusOK)
	})
	return handler(c), seen
}

func TestPublicPathsPassThrough(t *testing.T) {
	g, _ := gateFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)

	err, seen := invoke(t, g, req)
	assert.NoError(t, err)
	assert.Nil(t, seen)
}

func TestAPIKey(t *testing.T) {
	g, _ := gateFixture(t)

	t.Run("matching key attaches system principal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/questions", nil)
		req.Header.Set("x-api-key", "system-key")

		err, seen := invoke(t, g, req)
		require.NoError(t, err)
		require.NotNil(t, seen)
		assert.True(t, seen.APIKey)
		assert.Equal(t, "api-key-user", seen.UserID)
		assert.Equal(t, "TEST", seen.Roles)
	})

	t.Run("mismatched key fails with 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/questions", nil)
		req.Header.Set("x-api-key", "wrong")

		err, _ := invoke(t, g, req)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, apierr.From(err).Status())
	})

	t.Run("matching key succeeds even with an expired bearer token", func(t *testing.T) {
		tokens, err := NewTokens("test-secret", time.Hour)
		require.NoError(t, err)
		tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		expired, err := tokens.Issue(&Principal{UserID: "u1", Roles: "ADMIN"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/questions", nil)
		req.Header.Set("x-api-key", "system-key")
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+expired)

		gotErr, seen := invoke(t, g, req)
		require.NoError(t, gotErr)
		assert.True(t, seen.APIKey)
	})
}

func TestBearerToken(t *testing.T) {
	g, tokens := gateFixture(t)

	t.Run("valid token attaches decoded principal", func(t *testing.T) {
		signed, err := tokens.Issue(&Principal{UserID: "u1", Email: "u1@example.com", Roles: "INTERVIEWER"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/meeting-sessions", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)

		gotErr, seen := invoke(t, g, req)
		require.NoError(t, gotErr)
		require.NotNil(t, seen)
		assert.Equal(t, "u1", seen.UserID)
		assert.False(t, seen.APIKey)
	})

	t.Run("missing header fails with 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/meeting-sessions", nil)
		err, _ := invoke(t, g, req)
		require.Error(t, err)
		apiErr := apierr.From(err)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status())
		assert.Contains(t, apiErr.Message, "missing or malformed")
	})

	t.Run("expired token reports expiry", func(t *testing.T) {
		issuer, err := NewTokens("test-secret", time.Hour)
		require.NoError(t, err)
		issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		signed, err := issuer.Issue(&Principal{UserID: "u1"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/meeting-sessions", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)

		gotErr, _ := invoke(t, g, req)
		require.Error(t, gotErr)
		apiErr := apierr.From(gotErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status())
		assert.Contains(t, apiErr.Message, "expired")
	})

	t.Run("garbage token fails with 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/meeting-sessions", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer nope")

		err, _ := invoke(t, g, req)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, apierr.From(err).Status())
	})
}

func TestMissingConfiguration(t *testing.T) {
	g := NewGate("", nil, nil, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/api/questions", nil)

	err, _ := invoke(t, g, req)
	require.Error(t, err)
	apiErr := apierr.From(err)
	assert.Equal(t, apierr.KindConfiguration, apiErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status())
}

func TestRequireRoles(t *testing.T) {
	e := echo.New()

	run := func(p *Principal, roles ...string) error {
		req := httptest.NewRequest(http.MethodGet, "/api/questions", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		if p != nil {
			SetPrincipal(c, p)
		}
		handler := RequireRoles(roles...)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		return handler(c)
	}

	t.Run("intersecting role passes", func(t *testing.T) {
		assert.NoError(t, run(&Principal{Roles: "admin,interviewer"}, "ADMIN"))
	})

	t.Run("no principal fails with 401", func(t *testing.T) {
		err := run(nil, "ADMIN")
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, apierr.From(err).Status())
	})

	t.Run("disjoint roles fail with 403", func(t *testing.T) {
		err := run(&Principal{Roles: "viewer"}, "ADMIN")
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, apierr.From(err).Status())
	})
}

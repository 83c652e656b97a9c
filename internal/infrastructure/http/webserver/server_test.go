package webserver

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/nutriva/nutriva/internal/application/auth"
	"github.com/nutriva/nutriva/internal/application/guard"
	appprefs "github.com/nutriva/nutriva/internal/application/preferences"
	"github.com/nutriva/nutriva/internal/infrastructure/config"
	persistence "github.com/nutriva/nutriva/internal/infrastructure/persistence/gorm"
	"github.com/nutriva/nutriva/internal/infrastructure/persistence/sqlite"
	"github.com/nutriva/nutriva/pkg/healthcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

type testApp struct {
	server *httptest.Server
	client *http.Client
}

func newTestApp(t *testing.T, backendURL string) *testApp {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Version = "test"
	cfg.Session.CookieName = "nutriva-session"
	cfg.Session.MaxAge = time.Hour
	cfg.API.BaseURL = backendURL
	cfg.API.Timeout = 5 * time.Second

	log := zap.NewNop()
	db := sqlite.NewDatabase(":memory:", gormlogger.Silent)
	users := persistence.NewUserRepository(db)
	prefs := persistence.NewPreferenceRepository(db)

	ws, err := NewWebServer(
		cfg,
		log,
		NewAPIClient(cfg, log),
		NewSessionStore(cfg, log),
		auth.NewService(users, prefs, log),
		appprefs.NewService(prefs, log),
		guard.NewService(prefs, guard.FailOpen, log),
		healthcheck.New(cfg.App.Version, log),
	)
	require.NoError(t, err)

	server := httptest.NewServer(ws.router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testApp{server: server, client: client}
}

func (a *testApp) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func (a *testApp) register(t *testing.T) {
	t.Helper()
	resp := a.postForm(t, "/register", url.Values{
		"name":            {"Ana"},
		"email":           {"ana@x.com"},
		"password":        {"abc123"},
		"confirmPassword": {"abc123"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/preferences", resp.Header.Get("Location"))
}

func (a *testApp) savePreferences(t *testing.T) {
	t.Helper()
	resp := a.postForm(t, "/preferences", url.Values{
		"diet":         {"vegan"},
		"intolerances": {"Dairy"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func TestGuardRedirects(t *testing.T) {
	t.Run("anonymous visitor on main is sent to login", func(t *testing.T) {
		app := newTestApp(t, "http://localhost:1")

		resp := app.get(t, "/")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/login", resp.Header.Get("Location"))
	})

	t.Run("anonymous visitor may open login", func(t *testing.T) {
		app := newTestApp(t, "http://localhost:1")

		resp := app.get(t, "/login")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("registered user without preferences is pushed off main", func(t *testing.T) {
		app := newTestApp(t, "http://localhost:1")
		app.register(t)

		resp := app.get(t, "/")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/preferences", resp.Header.Get("Location"))

		resp = app.get(t, "/preferences")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("complete preferences unlock main and lock the form", func(t *testing.T) {
		app := newTestApp(t, "http://localhost:1")
		app.register(t)
		app.savePreferences(t)

		resp := app.get(t, "/")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = app.get(t, "/preferences")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
	})

	t.Run("editing override reopens the preferences form", func(t *testing.T) {
		app := newTestApp(t, "http://localhost:1")
		app.register(t)
		app.savePreferences(t)

		resp := app.get(t, "/preferences/edit")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/preferences", resp.Header.Get("Location"))

		resp = app.get(t, "/preferences")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// Saving again consumes the override.
		app.savePreferences(t)
		resp = app.get(t, "/preferences")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	})
}

func TestAuthFlows(t *testing.T) {
	t.Run("duplicate registration fails with a form message", func(t *testing.T) {
		app := newTestApp(t, "http://localhost:1")
		app.register(t)

		resp, err := app.client.PostForm(app.server.URL+"/register", url.Values{
			"name":            {"Ana Again"},
			"email":           {"ana@x.com"},
			"password":        {"abc123"},
			"confirmPassword": {"abc123"},
		})
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), "already registered")
	})

	t.Run("wrong credentials get a generic message", func(t *testing.T) {
		app := newTestApp(t, "http://localhost:1")
		app.register(t)
		app.postForm(t, "/logout", nil)

		resp, err := app.client.PostForm(app.server.URL+"/login", url.Values{
			"email":    {"ana@x.com"},
			"password": {"wrong1"},
		})
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), "Incorrect email or password")
	})

	t.Run("login routes by preference completeness", func(t *testing.T) {
		app := newTestApp(t, "http://localhost:1")
		app.register(t)
		app.postForm(t, "/logout", nil)

		resp := app.postForm(t, "/login", url.Values{
			"email":    {"ana@x.com"},
			"password": {"abc123"},
		})
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/preferences", resp.Header.Get("Location"))

		app.savePreferences(t)
		app.postForm(t, "/logout", nil)

		resp = app.postForm(t, "/login", url.Values{
			"email":    {"ana@x.com"},
			"password": {"abc123"},
		})
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
	})

	t.Run("logout clears the session", func(t *testing.T) {
		app := newTestApp(t, "http://localhost:1")
		app.register(t)
		app.savePreferences(t)

		resp := app.postForm(t, "/logout", nil)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/login", resp.Header.Get("Location"))

		resp = app.get(t, "/")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/login", resp.Header.Get("Location"))
	})

	t.Run("logged-in visitor on login is forwarded", func(t *testing.T) {
		app := newTestApp(t, "http://localhost:1")
		app.register(t)
		app.savePreferences(t)

		resp := app.get(t, "/login")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
	})
}

func TestSearchProxy(t *testing.T) {
	t.Run("requires a session", func(t *testing.T) {
		app := newTestApp(t, "http://localhost:1")

		resp, err := app.client.Post(app.server.URL+"/api/recipes/search", "application/json",
			strings.NewReader(`{"mealType":"dinner","ingredients":["rice"]}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("merges stored preferences into the search", func(t *testing.T) {
		var captured SearchRequest
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(SearchResponse{Success: true})
		}))
		defer backend.Close()

		app := newTestApp(t, backend.URL)
		app.register(t)
		app.savePreferences(t)

		resp, err := app.client.Post(app.server.URL+"/api/recipes/search", "application/json",
			strings.NewReader(`{"mealType":"dinner","ingredients":["rice"]}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "vegan", captured.Diet)
		assert.Equal(t, []string{"Dairy"}, captured.Intolerances)
	})

	t.Run("backend failure surfaces as a json error", func(t *testing.T) {
		app := newTestApp(t, "http://localhost:1")
		app.register(t)
		app.savePreferences(t)

		resp, err := app.client.Post(app.server.URL+"/api/recipes/search", "application/json",
			strings.NewReader(`{"mealType":"dinner","ingredients":["rice"]}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
		assert.Equal(t, false, payload["success"])
		assert.NotEmpty(t, payload["error"])
	})
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			break
		}
	}
	return sb.String()
}

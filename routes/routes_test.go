package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/agriquest/app"
	"github.com/mbolis/agriquest/backend"
	"github.com/mbolis/agriquest/config"
	"github.com/mbolis/agriquest/database"
	"github.com/mbolis/agriquest/httpx"
	"github.com/mbolis/agriquest/routes/middlewares"
	"github.com/mbolis/agriquest/store"
)

const (
	testUser     = "admin"
	testPassword = "s3cret"
)

// fakeBackend stands in for the ministry API. Handlers are keyed by
// "METHOD /path", without the /api prefix.
type fakeBackend struct {
	mu     sync.Mutex
	calls  []string
	bodies map[string]string
	routes map[string]http.HandlerFunc
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api")
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.bodies[key] = string(body)
	handler, ok := f.routes[key]
	f.mu.Unlock()

	if !ok {
		http.Error(w, `{"message":"no such route"}`, http.StatusNotFound)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	handler(w, r)
}

func (f *fakeBackend) handle(key string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[key] = h
}

func (f *fakeBackend) called(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}

func (f *fakeBackend) body(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

// schemaDocument makes the fake keep whatever schema is PUT for id and
// return it on GET.
func (f *fakeBackend) schemaDocument(id string, initial string) {
	var mu sync.Mutex
	doc := initial
	f.handle("GET /questionnaires/"+id+"/schema", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		reply(http.StatusOK, doc)(w, r)
	})
	f.handle("PUT /questionnaires/"+id+"/schema", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		doc = string(data)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
}

type testEnv struct {
	app     app.App
	fake    *fakeBackend
	handler http.Handler
	token   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fake := &fakeBackend{bodies: map[string]string{}, routes: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	publicDir := filepath.Join(dir, "public")
	require.NoError(t, os.MkdirAll(publicDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "index.html"), []byte("<html>shell</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "app.js"), []byte("console.log(1)"), 0o644))

	cfg := config.Config{
		PublicDir:      publicDir,
		BackendURL:     srv.URL + "/api",
		BackendTimeout: 5 * time.Second,
		TokenSecret:    "test-secret",
		TokenTTL:       time.Minute,
	}

	st := store.New(db)
	require.NoError(t, st.SeedUser(context.Background(), testUser, testPassword, middlewares.AdminRole))

	a := app.App{
		DB:           db,
		BearerServer: httpx.NewBearerServer(db, cfg),
		Config:       cfg,
		Backend:      backend.New(cfg.BackendURL, "", cfg.BackendTimeout),
		Store:        st,
	}
	return &testEnv{app: a, fake: fake, handler: Wire(a)}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var in io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		in = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		in = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, in)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (e *testEnv) login(t *testing.T) tokenResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.SetBasicAuth(testUser, testPassword)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tokens tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	e.token = tokens.AccessToken
	return tokens
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) httpx.ErrorBody {
	return decode[httpx.ErrorBody](t, rec)
}

func TestLoginAndAdminGuard(t *testing.T) {
	env := newTestEnv(t)
	env.fake.handle("POST /themes", reply(http.StatusCreated, `{"id":4,"name":"Irrigation"}`))

	rec := env.do(t, http.MethodPost, "/api/themes", map[string]any{"name": "Irrigation"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, env.fake.called("POST /themes"))

	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.SetBasicAuth(testUser, "wrong")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	env.login(t)
	rec = env.do(t, http.MethodPost, "/api/themes", map[string]any{"name": "Irrigation"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Irrigation", decode[map[string]any](t, rec)["name"])
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	tokens := env.login(t)
	require.NotEmpty(t, tokens.RefreshToken)

	refresh := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
		req.Header.Set("Authorization", "Refresh "+tokens.RefreshToken)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		return rec
	}

	rec := refresh()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode[tokenResponse](t, rec).AccessToken)

	assert.NotEqual(t, http.StatusOK, refresh().Code)

	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestViews(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/", "/dashboard", "/quotas", "/reports"} {
		rec := env.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "shell", path)
	}

	rec := env.do(t, http.MethodGet, "/app.js", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "console.log")

	rec = env.do(t, http.MethodGet, "/settings", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unreachable", decode[map[string]string](t, rec)["backend"])

	env.fake.handle("GET /health", reply(http.StatusOK, `{"status":"Healthy"}`))
	rec = env.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "ok", "backend": "ok"}, decode[map[string]string](t, rec))
}

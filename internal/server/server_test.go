package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkinowls/recipe-app-api/config"
	"github.com/darkinowls/recipe-app-api/internal/repository"
	"github.com/darkinowls/recipe-app-api/internal/storage"
	"github.com/darkinowls/recipe-app-api/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(limit int) *config.Config {
	return &config.Config{
		Env:                    config.Test,
		ServerHost:             "127.0.0.1",
		ServerPort:             "0",
		JWTSecret:              "test-secret",
		JWTTTL:                 time.Hour,
		MediaURL:               "/media",
		CORSAllowedOrigins:     []string{"http://localhost:3000"},
		AuthRateLimitPerMinute: limit,
	}
}

func newTestServer(t *testing.T, cfg *config.Config, rdb *redis.Client) (*Server, *storage.Local) {
	t.Helper()
	db := testhelpers.SetupSQLite(t)
	media, err := storage.NewLocal(t.TempDir(), cfg.MediaURL)
	require.NoError(t, err)

	srv := New(cfg, Dependencies{Repo: repository.NewStore(db), Media: media, Redis: rdb})
	t.Cleanup(func() { _ = srv.Shutdown(t.Context()) })
	return srv, media
}

func serve(srv *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(0), nil)

	w := serve(srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = serve(srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "recipe_http_requests_total")
}

func TestUnknownRouteAndMethod(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(0), nil)

	w := serve(srv, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())

	w = serve(srv, http.MethodDelete, "/api/v1/users/token", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error":"method not allowed"}`, w.Body.String())
}

func TestAuthEndpointsAreThrottled(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(2), nil)
	body, _ := json.Marshal(map[string]string{"email": "x@example.com", "password": "wrong"})

	assert.Equal(t, http.StatusBadRequest, serve(srv, http.MethodPost, "/api/v1/users/token", body).Code)
	assert.Equal(t, http.StatusBadRequest, serve(srv, http.MethodPost, "/api/v1/users/token", body).Code)

	w := serve(srv, http.MethodPost, "/api/v1/users/token", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestForwardedForIgnoredWithoutTrustedProxy(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(2), nil)
	body, _ := json.Marshal(map[string]string{"email": "x@example.com", "password": "wrong"})

	codes := make([]int, 0, 5)
	for i := range 5 {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/token", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{400, 400, 429, 429, 429}, codes)
}

func TestForwardedForHonouredFromTrustedProxy(t *testing.T) {
	cfg := testConfig(1)
	cfg.TrustedProxies = []string{"192.0.2.0/24"}
	srv, _ := newTestServer(t, cfg, nil)
	body, _ := json.Marshal(map[string]string{"email": "x@example.com", "password": "wrong"})

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/token", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", client)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusBadRequest, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1"))
	assert.Equal(t, http.StatusBadRequest, send("203.0.113.2"))
}

func TestAuthEndpointsThrottledWithRedis(t *testing.T) {
	opts, err := redis.ParseURL(testhelpers.SetupRedis(t))
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	srv, _ := newTestServer(t, testConfig(1), rdb)
	body, _ := json.Marshal(map[string]string{"email": "x@example.com", "password": "wrong"})

	assert.Equal(t, http.StatusBadRequest, serve(srv, http.MethodPost, "/api/v1/users", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(srv, http.MethodPost, "/api/v1/users", body).Code)
}

func TestUploadedImageIsServed(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(0), nil)

	signup, _ := json.Marshal(map[string]string{"email": "cook@example.com", "password": "testpass123", "name": "Cook"})
	require.Equal(t, http.StatusCreated, serve(srv, http.MethodPost, "/api/v1/users", signup).Code)

	login, _ := json.Marshal(map[string]string{"email": "cook@example.com", "password": "testpass123"})
	w := serve(srv, http.MethodPost, "/api/v1/users/token", login)
	require.Equal(t, http.StatusOK, w.Code)
	var tok struct{ Token string }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))

	authed := func(req *http.Request) *httptest.ResponseRecorder {
		req.Header.Set("Authorization", "Token "+tok.Token)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		return w
	}

	create := httptest.NewRequest(http.MethodPost, "/api/v1/recipes",
		strings.NewReader(`{"title":"Pie","time_minutes":10,"price":"2.50"}`))
	create.Header.Set("Content-Type", "application/json")
	w = authed(create)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var recipe struct{ ID uint }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewGray(image.Rect(0, 0, 3, 3))))
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	fw, err := mw.CreateFormFile("image", "pie.png")
	require.NoError(t, err)
	_, err = fw.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	upload := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/"+jsonID(recipe.ID)+"/upload-image", &form)
	upload.Header.Set("Content-Type", mw.FormDataContentType())
	w = authed(upload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var uploaded struct{ Image string }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))
	path := strings.TrimPrefix(uploaded.Image, "http://example.com")

	w = serve(srv, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, img.Bytes(), w.Body.Bytes())
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

// Package integration runs the HTTP API against real postgres and redis
// containers. The tests skip when docker is not available.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/darkinowls/recipe-app-api/config"
	"github.com/darkinowls/recipe-app-api/internal/database"
	"github.com/darkinowls/recipe-app-api/internal/models"
	"github.com/darkinowls/recipe-app-api/internal/repository"
	"github.com/darkinowls/recipe-app-api/internal/server"
	"github.com/darkinowls/recipe-app-api/internal/service"
	"github.com/darkinowls/recipe-app-api/internal/storage"
	"github.com/darkinowls/recipe-app-api/internal/testhelpers"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	service.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type client struct {
	t     *testing.T
	h     http.Handler
	token string
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, req)
	return w
}

func newServer(t *testing.T, db *gorm.DB, rdb *redis.Client, authLimit int) http.Handler {
	t.Helper()
	media, err := storage.NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                    config.Test,
		ServerHost:             "127.0.0.1",
		ServerPort:             "0",
		JWTSecret:              "integration-secret",
		JWTTTL:                 time.Hour,
		MediaURL:               "/media",
		CORSAllowedOrigins:     []string{"*"},
		AuthRateLimitPerMinute: authLimit,
	}
	srv := server.New(cfg, server.Dependencies{Repo: repository.NewStore(db), Media: media, Redis: rdb})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv.Handler()
}

func signup(t *testing.T, h http.Handler, email string) *client {
	t.Helper()
	c := &client{t: t, h: h}
	w := c.do(http.MethodPost, "/api/v1/users", map[string]string{"email": email, "password": "password123", "name": "Cook"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = c.do(http.MethodPost, "/api/v1/users/token", map[string]string{"email": email, "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tok struct{ Token string }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	c.token = tok.Token
	return c
}

type recipe struct {
	ID   uint
	Tags []struct {
		ID   uint
		Name string
	}
}

func TestRecipeFlowOnPostgres(t *testing.T) {
	db, dsn := testhelpers.SetupPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, database.WaitForDB(ctx, dsn, 100*time.Millisecond))

	h := newServer(t, db, nil, 0)
	alice := signup(t, h, "alice@example.com")
	bob := signup(t, h, "bob@example.com")

	w := alice.do(http.MethodPost, "/api/v1/recipes", map[string]any{
		"title": "Chocolate cheesecake", "time_minutes": 30, "price": "5.00",
		"tags": []map[string]string{{"name": "vegan"}, {"name": "dessert"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Len(t, created.Tags, 2)

	w = bob.do(http.MethodGet, "/api/v1/recipes", nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = alice.do(http.MethodGet, fmt.Sprintf("/api/v1/recipes?tags=%d", created.Tags[0].ID), nil)
	var listed []recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	w = alice.do(http.MethodGet, fmt.Sprintf("/api/v1/recipes/%d", created.ID), nil)
	assert.Contains(t, w.Body.String(), `"price":"5.00"`)
}

func TestConcurrentRecipeCreationSharesTags(t *testing.T) {
	db, _ := testhelpers.SetupPostgres(t)
	h := newServer(t, db, nil, 0)
	cook := signup(t, h, "cook@example.com")

	const workers = 10
	var wg sync.WaitGroup
	codes := make([]int, workers)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := cook.do(http.MethodPost, "/api/v1/recipes", map[string]any{
				"title": fmt.Sprintf("Recipe %d", i), "time_minutes": i, "price": 1,
				"tags":        []map[string]string{{"name": "Shared"}, {"name": "Quick"}},
				"ingredients": []map[string]string{{"name": "Salt"}},
			})
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusCreated, code, "worker %d", i)
	}

	var tags int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tags).Error)
	assert.EqualValues(t, 2, tags)

	var links int64
	require.NoError(t, db.Table(models.TagKind.JoinTable).Count(&links).Error)
	assert.EqualValues(t, 2*workers, links)

	w := cook.do(http.MethodGet, "/api/v1/tags?assigned_only=1", nil)
	assert.JSONEq(t, fmt.Sprintf(`[{"id":%d,"name":"Shared"},{"id":%d,"name":"Quick"}]`,
		tagID(t, db, "Shared"), tagID(t, db, "Quick")), w.Body.String())
}

func tagID(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	var tag models.Tag
	require.NoError(t, db.Where("name = ?", name).First(&tag).Error)
	return tag.ID
}

func TestRedisBackedAuthThrottle(t *testing.T) {
	db, _ := testhelpers.SetupPostgres(t)
	rdb, err := database.NewRedisClient(context.Background(), testhelpers.SetupRedis(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	h := newServer(t, db, rdb, 3)
	anon := &client{t: t, h: h}
	creds := map[string]string{"email": "nobody@example.com", "password": "password123"}

	for range 3 {
		assert.Equal(t, http.StatusBadRequest, anon.do(http.MethodPost, "/api/v1/users/token", creds).Code)
	}
	w := anon.do(http.MethodPost, "/api/v1/users/token", creds)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
}

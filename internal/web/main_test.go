package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoryBB/permissions/internal/config"
	"github.com/StoryBB/permissions/internal/db/controller/member"
	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/db/testutil"
	"github.com/StoryBB/permissions/internal/logger"
	"github.com/StoryBB/permissions/internal/permission"
	"github.com/StoryBB/permissions/internal/web/handler"
)

func newService(t *testing.T) *Service {
	t.Helper()

	db := testutil.OpenDB(t)
	testutil.SeedGroups(t, db, models.GroupAdministrator, models.GroupGlobalModerator, models.GroupModerators)

	members := member.NewProvider(db)
	_, err := members.Create(t.Context(), "admin", "admin@example.com", "secret", models.GroupAdministrator)
	require.NoError(t, err)

	cfg := &config.Config{
		Title:     "test",
		DevMode:   true,
		Log:       logger.Log{LogLevel: "error", EnableAccessLogToConsole: false},
		Webserver: config.Webserver{LoginRate: 60, LoginBurst: 5},
	}

	s, err := New(cfg, handler.Deps{
		Cfg:         cfg,
		DB:          db,
		Permissions: permission.NewService(db, permission.NewMemoryCache(0)),
		Members:     members,
		Validator:   validator.New(),
	})
	require.NoError(t, err)

	return s
}

func get(t *testing.T, app *fiber.App, path string, auth bool) (int, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	if auth {
		req.SetBasicAuth("admin", "secret")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestNew(t *testing.T) {
	s := newService(t)

	status, body := get(t, s.App, CheckAlivePath, false)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body)

	status, body = get(t, s.App, MetricsPath, false)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, strings.Contains(body, "go_goroutines"))

	status, _ = get(t, s.App, "/api/dashboard", false)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = get(t, s.App, "/api/dashboard", true)
	assert.Equal(t, http.StatusOK, status, body)

	status, _ = get(t, s.App, "/api/permissions/catalog", true)
	assert.Equal(t, http.StatusOK, status)

	s.alive.Store(false)

	status, _ = get(t, s.App, CheckAlivePath, false)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestNewRequiresDeps(t *testing.T) {
	_, err := New(nil, handler.Deps{})
	require.ErrorIs(t, err, ErrNilDeps)

	_, err = New(&config.Config{}, handler.Deps{})
	require.ErrorIs(t, err, ErrNilDeps)
}

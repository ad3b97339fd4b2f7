// Package webtest builds an authenticated api app on an in-memory database for handler tests.
package webtest

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"

	"github.com/StoryBB/permissions/internal/config"
	"github.com/StoryBB/permissions/internal/db/controller/member"
	"github.com/StoryBB/permissions/internal/db/controller/profile"
	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/db/testutil"
	"github.com/StoryBB/permissions/internal/permission"
	"github.com/StoryBB/permissions/internal/web/handler"
	"github.com/StoryBB/permissions/internal/web/middleware/auth"
)

// Password of every seeded member.
const Password = "secret"

// Seeded member names.
const (
	Admin  = "admin"  // Administrator group
	Member = "member" // regular member without permissions
)

// New returns an app behind basic auth with the predefined groups and profiles seeded.
func New(t *testing.T) (*fiber.App, handler.Deps) {
	t.Helper()

	ctx := context.Background()
	db := testutil.OpenDB(t)
	testutil.SeedGroups(t, db, models.GroupAdministrator, models.GroupGlobalModerator, models.GroupModerators)

	for _, p := range profile.Predefined() {
		require.NoError(t, db.Create(&p).Error)
	}

	members := member.NewProvider(db)
	_, err := members.Create(ctx, Admin, "admin@example.com", Password, models.GroupAdministrator)
	require.NoError(t, err)
	_, err = members.Create(ctx, Member, "member@example.com", Password, models.GroupUngrouped)
	require.NoError(t, err)

	deps := handler.Deps{
		Cfg:         &config.Config{},
		DB:          db,
		Permissions: permission.NewService(db, permission.NewMemoryCache(0)),
		Members:     members,
		Validator:   validator.New(validator.WithRequiredStructEnabled()),
	}

	app := fiber.New()
	app.Use(auth.BasicAuth(members, nil))

	return app, deps
}

// Do sends a request as user and returns the status and body. A non-nil body is sent as JSON
// unless it is already a []byte.
func Do(t *testing.T, app *fiber.App, method, path, user string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader = http.NoBody

	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if user != "" {
		req.Header.Set(fiber.HeaderAuthorization,
			"Basic "+base64.StdEncoding.EncodeToString([]byte(user+":"+Password)))
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, out
}

package group

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoryBB/permissions/internal/db/controller/membergroup"
	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/db/testutil"
	"github.com/StoryBB/permissions/internal/web/handler"
	"github.com/StoryBB/permissions/internal/web/webtest"
)

func setup(t *testing.T) (handler.Deps, func(method, path, user string, body any) (int, []byte)) {
	t.Helper()

	app, deps := webtest.New(t)

	s := &Service{}
	require.NoError(t, s.Init(app, deps))

	return deps, func(method, path, user string, body any) (int, []byte) {
		return webtest.Do(t, app, method, path, user, body)
	}
}

func ptr(id models.GroupID) *models.GroupID { return &id }

func TestCreateCopiesParentRows(t *testing.T) {
	deps, do := setup(t)

	status, body := do(http.MethodPost, Path, webtest.Admin, formInput{ID: 10, Name: "Staff"})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = do(http.MethodPost, Path, webtest.Admin, formInput{ID: 11, Name: "Junior staff", Parent: ptr(10)})
	require.Equal(t, http.StatusCreated, status, string(body))

	var g models.Membergroup
	require.NoError(t, json.Unmarshal(body, &g))
	assert.Equal(t, models.GroupID(10), g.Parent)

	testutil.Allow(t, deps.DB, 10, true, "who_view")

	status, body = do(http.MethodPost, Path, webtest.Admin,
		formInput{ID: 12, Name: "Helpers", Parent: ptr(10)})
	require.Equal(t, http.StatusCreated, status, string(body))

	var rows []models.Permission
	require.NoError(t, deps.DB.Where("group_id = ?", 12).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "who_view", rows[0].Permission)
}

func TestCreateErrors(t *testing.T) {
	_, do := setup(t)

	tests := []struct {
		name   string
		user   string
		body   any
		status int
	}{
		{"anonymous", "", formInput{Name: "x"}, http.StatusUnauthorized},
		{"no permission", webtest.Member, formInput{Name: "x"}, http.StatusForbidden},
		{"bad json", webtest.Admin, []byte("{"), http.StatusBadRequest},
		{"missing name", webtest.Admin, formInput{}, http.StatusBadRequest},
		{"parent missing", webtest.Admin, formInput{Name: "x", Parent: ptr(42)}, http.StatusBadRequest},
		{"parent admin", webtest.Admin, formInput{Name: "x", Parent: ptr(models.GroupAdministrator)}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(http.MethodPost, Path, tt.user, tt.body)
			assert.Equal(t, tt.status, status, string(body))
		})
	}
}

func TestListGetUpdateDelete(t *testing.T) {
	deps, do := setup(t)
	testutil.SeedGroups(t, deps.DB, 4)
	testutil.SeedChild(t, deps.DB, 5, 4)

	status, body := do(http.MethodGet, Path+"?pageSize=2&page=2", webtest.Admin, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var list listResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, int64(5), list.TotalItems)
	assert.Equal(t, 3, list.TotalPages)
	require.Len(t, list.Groups, 2)
	assert.Equal(t, models.GroupID(3), list.Groups[0].ID)
	assert.Equal(t, int64(1), list.Children["4"])

	status, body = do(http.MethodGet, Path+"?page=99", webtest.Admin, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 1, list.Page)

	status, _ = do(http.MethodGet, Path+"/4", webtest.Admin, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(http.MethodGet, Path+"/42", webtest.Admin, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(http.MethodGet, Path+"/abc", webtest.Admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// 4 has a child, so it cannot start inheriting.
	status, _ = do(http.MethodPut, Path+"/4", webtest.Admin, formInput{Name: "x", Parent: ptr(models.GroupGlobalModerator)})
	assert.Equal(t, http.StatusConflict, status)

	status, body = do(http.MethodPut, Path+"/4", webtest.Admin, formInput{ID: 99, Name: "Renamed"})
	require.Equal(t, http.StatusOK, status, string(body))

	g, err := membergroup.Get(t.Context(), deps.DB, 4)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", g.Name)

	status, _ = do(http.MethodDelete, Path+"/1", webtest.Admin, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = do(http.MethodDelete, Path+"/4", webtest.Admin, nil)
	require.Equal(t, http.StatusNoContent, status)

	child, err := membergroup.Get(t.Context(), deps.DB, 5)
	require.NoError(t, err)
	assert.False(t, child.IsInherited())
}

func TestMembership(t *testing.T) {
	deps, do := setup(t)
	testutil.SeedGroups(t, deps.DB, 4)
	testutil.Allow(t, deps.DB, 4, true, "view_stats")

	status, body := do(http.MethodGet, "/api/members/2/permissions", webtest.Admin, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var perms []string
	require.NoError(t, json.Unmarshal(body, &perms))
	assert.NotContains(t, perms, "view_stats")

	status, body = do(http.MethodPut, "/api/members/2/groups", webtest.Admin,
		membershipInput{Primary: models.GroupUngrouped, Additional: []models.GroupID{4}})
	require.Equal(t, http.StatusOK, status, string(body))

	var m models.Member
	require.NoError(t, json.Unmarshal(body, &m))
	assert.Equal(t, []models.GroupID{0, 4}, m.Groups())

	status, body = do(http.MethodGet, "/api/members/2/permissions", webtest.Admin, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &perms))
	assert.Contains(t, perms, "view_stats")

	status, _ = do(http.MethodGet, "/api/members/2/permissions?board=x", webtest.Admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(http.MethodGet, "/api/members/42/permissions", webtest.Admin, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(http.MethodPut, "/api/members/2/groups", webtest.Member, membershipInput{})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestMembershipAdministratorGroup(t *testing.T) {
	deps, do := setup(t)
	testutil.SeedGroups(t, deps.DB, 4)
	testutil.Allow(t, deps.DB, models.GroupUngrouped, true, "manage_membergroups")

	testCases := []struct {
		name           string
		path           string
		user           string
		input          membershipInput
		expectedStatus int
	}{
		{
			name:           "member cannot become administrator",
			path:           "/api/members/2/groups",
			user:           webtest.Member,
			input:          membershipInput{Primary: models.GroupAdministrator},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "member cannot add administrator as additional group",
			path:           "/api/members/2/groups",
			user:           webtest.Member,
			input:          membershipInput{Primary: models.GroupUngrouped, Additional: []models.GroupID{models.GroupAdministrator}},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "member cannot demote an administrator",
			path:           "/api/members/1/groups",
			user:           webtest.Member,
			input:          membershipInput{Primary: models.GroupUngrouped},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "unknown group",
			path:           "/api/members/2/groups",
			user:           webtest.Admin,
			input:          membershipInput{Primary: models.GroupUngrouped, Additional: []models.GroupID{99}},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unknown primary group",
			path:           "/api/members/2/groups",
			user:           webtest.Admin,
			input:          membershipInput{Primary: 99},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "member assigns other groups",
			path:           "/api/members/2/groups",
			user:           webtest.Member,
			input:          membershipInput{Primary: models.GroupUngrouped, Additional: []models.GroupID{4}},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "administrator assigns administrator",
			path:           "/api/members/2/groups",
			user:           webtest.Admin,
			input:          membershipInput{Primary: models.GroupAdministrator},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := do(http.MethodPut, tc.path, tc.user, tc.input)
			assert.Equal(t, tc.expectedStatus, status, string(body))
		})
	}

	m, err := deps.Members.Get(t.Context(), 2)
	require.NoError(t, err)
	assert.Equal(t, models.GroupAdministrator, m.PrimaryGroup)
}

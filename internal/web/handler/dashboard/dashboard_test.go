package dashboard

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/db/testutil"
	"github.com/StoryBB/permissions/internal/web/webtest"
)

func TestDashboard(t *testing.T) {
	app, deps := webtest.New(t)
	testutil.Allow(t, deps.DB, models.GroupUngrouped, true, "view_stats", "who_view")

	s := &Service{}
	require.NoError(t, s.Init(app, deps))

	status, body := webtest.Do(t, app, http.MethodGet, Path, webtest.Member, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var data Data
	require.NoError(t, json.Unmarshal(body, &data))
	assert.Equal(t, uint64(2), data.Subject.MemberID)
	assert.ElementsMatch(t, []string{"view_stats", "who_view"}, data.Permissions)
	assert.Equal(t, int64(3), data.Counts.Groups)
	assert.Equal(t, int64(2), data.Counts.Members)
	assert.Equal(t, int64(4), data.Counts.Profiles)
	assert.Equal(t, int64(2), data.Counts.Permissions)

	status, _ = webtest.Do(t, app, http.MethodGet, Path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

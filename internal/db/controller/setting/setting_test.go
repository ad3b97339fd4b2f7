package setting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/db/testutil"
)

func TestGet(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		seedData      []models.Setting
		expectedError error
		expectedValue string
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			settingName:   "test",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			settingName:   "",
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:          "setting not found",
			dbParam:       db,
			settingName:   "nonexistent",
			expectedError: ErrSettingNotFound,
		},
		{
			name:        "successful get",
			dbParam:     db,
			settingName: EnableLikes,
			seedData: []models.Setting{
				{Name: EnableLikes, Value: "1"},
			},
			expectedValue: "1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM settings")
			}

			for _, s := range tc.seedData {
				require.NoError(t, db.Create(&s).Error)
			}

			value, err := Get(ctx, tc.dbParam, tc.settingName)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Empty(t, value)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expectedValue, value)
			}
		})
	}
}

func TestSetOverwrites(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)

	require.NoError(t, Set(ctx, db, EnableMentions, "1"))
	require.NoError(t, Set(ctx, db, EnableMentions, "0"))

	value, err := Get(ctx, db, EnableMentions)
	require.NoError(t, err)
	assert.Equal(t, "0", value)

	all, err := All(ctx, db)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEnabled(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)

	testCases := []struct {
		name     string
		value    *string
		expected bool
	}{
		{name: "missing setting is off"},
		{name: "zero is off", value: ptr("0"), expected: false},
		{name: "one is on", value: ptr("1"), expected: true},
		{name: "first field decides", value: ptr("0,20,0"), expected: false},
		{name: "first field on", value: ptr("1,20,0"), expected: true},
		{name: "non numeric value is on", value: ptr("yes"), expected: true},
		{name: "empty value is off", value: ptr(""), expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db.Exec("DELETE FROM settings")

			if tc.value != nil {
				require.NoError(t, Set(ctx, db, WarningSettings, *tc.value))
			}

			on, err := Enabled(ctx, db, WarningSettings)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, on)
		})
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)

	require.ErrorIs(t, Delete(ctx, nil, "x"), ErrDBNil)
	require.ErrorIs(t, Delete(ctx, db, ""), ErrSettingNameEmpty)
	require.ErrorIs(t, Delete(ctx, db, "missing"), ErrSettingNotFound)

	require.NoError(t, Set(ctx, db, EnableLikes, "1"))
	require.NoError(t, Delete(ctx, db, EnableLikes))

	_, err := Get(ctx, db, EnableLikes)
	require.ErrorIs(t, err, ErrSettingNotFound)
}

func TestSeedDefaultsKeepsExisting(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)

	require.NoError(t, Set(ctx, db, EnableLikes, "0"))
	require.NoError(t, SeedDefaults(ctx, db))

	all, err := All(ctx, db)
	require.NoError(t, err)
	assert.Len(t, all, len(Defaults))
	assert.Equal(t, "0", all[EnableLikes])
	assert.Equal(t, "1", all[AttachmentEnable])
}

func ptr(s string) *string {
	return &s
}

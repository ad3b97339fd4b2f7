package dsn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/StoryBB/permissions/internal/config"
	"github.com/StoryBB/permissions/internal/db/dsn"
)

func TestCreate(t *testing.T) {
	testCases := []struct {
		name string
		db   config.DB
		want string
	}{
		{
			name: "mysql",
			db: config.DB{
				GormEngine: config.EngineMySQL, Host: "db", Port: 3306, User: "smf", Password: "pw", Name: "forum",
				Extras: "parseTime=True",
			},
			want: "smf:pw@tcp(db:3306)/forum?parseTime=True",
		},
		{
			name: "mysql without extras",
			db:   config.DB{GormEngine: config.EngineMySQL, Host: "db", Port: 3306, User: "smf", Password: "pw", Name: "forum"},
			want: "smf:pw@tcp(db:3306)/forum",
		},
		{
			name: "postgres escapes password",
			db: config.DB{
				GormEngine: config.EnginePostgres, Host: "db", Port: 5432, User: "smf", Password: "p@ss", Name: "forum",
				Extras: "sslmode=disable",
			},
			want: "postgres://smf:p%40ss@db:5432/forum?sslmode=disable",
		},
		{
			name: "sqlite path",
			db:   config.DB{GormEngine: config.EngineSQLite, Path: "./data/perms.sqlite"},
			want: "./data/perms.sqlite",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, dsn.Create(tc.db))
		})
	}
}

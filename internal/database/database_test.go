package database

import (
	"context"
	"fmt"
	"testing"
	"testing/fstest"

	"blogicum/internal/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
}

func TestConfigurePool(t *testing.T) {
	db, err := OpenSQLite(memoryDSN())
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(&config.Config{
		DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "blog",
	})
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=blog sslmode=disable", dsn)
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000002_add_index.up.sql":   {Data: []byte("CREATE INDEX x;")},
		"m/000002_add_index.down.sql": {Data: []byte("DROP INDEX x;")},
		"m/000001_init.up.sql":        {Data: []byte("CREATE TABLE t;")},
		"m/000001_init.down.sql":      {Data: []byte("DROP TABLE t;")},
		"m/README.md":                 {Data: []byte("ignored")},
	}

	got, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Version)
	assert.Equal(t, "init", got[0].Name)
	assert.Equal(t, "DROP TABLE t;", got[0].DownScript)
	assert.Equal(t, "000002_add_index", got[1].String())
}

func TestLoadMigrations_Errors(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"missing down", fstest.MapFS{"m/000001_init.up.sql": {Data: []byte("x")}}},
		{"bad version", fstest.MapFS{
			"m/abc_init.up.sql":   {Data: []byte("x")},
			"m/abc_init.down.sql": {Data: []byte("x")},
		}},
		{"duplicate version", fstest.MapFS{
			"m/000001_a.up.sql":   {Data: []byte("x")},
			"m/000001_a.down.sql": {Data: []byte("x")},
			"m/000001_b.up.sql":   {Data: []byte("x")},
			"m/000001_b.down.sql": {Data: []byte("x")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMigrations(tt.fsys, "m")
			assert.Error(t, err)
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Contains(t, all[0].UpScript, "ON DELETE CASCADE")
	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestPlanSchema(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantSQL  bool
		wantAuto bool
		wantErr  bool
	}{
		{"sqlite always auto", config.Config{DBDriver: "sqlite", DBSchemaMode: "sql", Env: "production"}, false, true, false},
		{"hybrid development", config.Config{DBDriver: "postgres", Env: "development"}, true, true, false},
		{"hybrid production", config.Config{DBDriver: "postgres", DBSchemaMode: "hybrid", Env: "production"}, true, false, false},
		{"sql only", config.Config{DBDriver: "postgres", DBSchemaMode: "sql", Env: "development"}, true, false, false},
		{"auto refused in staging", config.Config{DBDriver: "postgres", DBSchemaMode: "auto", Env: "staging"}, false, false, true},
		{"unknown mode", config.Config{DBDriver: "postgres", DBSchemaMode: "magic"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := planSchema(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, plan.sql)
			assert.Equal(t, tt.wantAuto, plan.auto)
		})
	}
}

func TestApplySchema_SQLite(t *testing.T) {
	db, err := OpenSQLite(memoryDSN())
	require.NoError(t, err)

	cfg := &config.Config{DBDriver: "sqlite", Env: "test"}
	require.NoError(t, ApplySchema(context.Background(), db, cfg))

	for _, table := range []string{"users", "categories", "locations", "posts", "comments"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.False(t, db.Migrator().HasColumn("posts", "comment_count"))

	status, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
	assert.Equal(t, SchemaModeHybrid, status.Mode)
}

func TestPendingMigrations(t *testing.T) {
	registered := []Migration{{Version: 1, Name: "a"}, {Version: 2, Name: "b"}}

	pending, err := pendingMigrations(nil, registered)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	pending, err = pendingMigrations([]int{1}, registered)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Version)

	pending, err = pendingMigrations([]int{1, 2}, registered)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = pendingMigrations([]int{7, 1, 3}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000003, 000007")
}

func TestAppliedVersions_NoTable(t *testing.T) {
	db, err := OpenSQLite(memoryDSN())
	require.NoError(t, err)

	versions, err := appliedVersions(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, versions)

	err = RollbackMigration(context.Background(), db, 1)
	assert.ErrorContains(t, err, "has not been applied")
}

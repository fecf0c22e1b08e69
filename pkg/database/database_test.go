package database

import (
	"context"
	"linkhub/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	mysqlCfg := &config.DB{Driver: "mysql", Host: "db", Port: 3306, User: "u", Password: "p", Name: "linkhub"}
	assert.Equal(t, "u:p@tcp(db:3306)/linkhub?charset=utf8mb4&parseTime=True&loc=Local", DSN(mysqlCfg))

	pgCfg := &config.DB{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", Name: "linkhub"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=linkhub sslmode=disable", DSN(pgCfg))

	explicit := &config.DB{Driver: "sqlite", DSN: "file::memory:", Name: "ignored"}
	assert.Equal(t, "file::memory:", DSN(explicit))
}

func TestOpen_SQLiteAndMigrate(t *testing.T) {
	db, err := Open(context.Background(), &config.DB{Driver: "sqlite", DSN: "file:dbtest?mode=memory&cache=shared"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"links", "hubs", "hub_links", "clicks", "short_names", "users"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.DB{Driver: "oracle"})
	assert.Error(t, err)
}

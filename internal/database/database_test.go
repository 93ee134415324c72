package database_test

import (
	"testing"

	"contactbook/internal/database"
	"contactbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestOpen_SQLiteMigratesSchema(t *testing.T) {
	db, err := database.Open("sqlite", "file:migrate_test?mode=memory&cache=shared", logger.Silent)
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&models.User{}))
	assert.True(t, db.Migrator().HasTable(&models.Contact{}))
	assert.True(t, db.Migrator().HasColumn(&models.Contact{}, "owner_id"))
	assert.True(t, db.Migrator().HasColumn(&models.User{}, "refresh_token"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := database.Open("oracle", "", logger.Silent)
	assert.ErrorContains(t, err, "unsupported database driver")
}

package users

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/readlater/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "users.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(db)
}

func TestRepository_CreateUser(t *testing.T) {
	repo := setupTestDB(t)

	user, err := repo.CreateUser("reader")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "reader", user.Username)
	assert.Len(t, user.Token, 64) // 32 bytes hex encoded
}

func TestRepository_GetUserByToken(t *testing.T) {
	repo := setupTestDB(t)

	created, err := repo.CreateUser("reader")
	require.NoError(t, err)

	found, err := repo.GetUserByToken(created.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.GetUserByToken("nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_RegenerateToken(t *testing.T) {
	repo := setupTestDB(t)

	user, err := repo.CreateUser("reader")
	require.NoError(t, err)

	token, err := repo.RegenerateToken(user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, user.Token, token)

	_, err = repo.GetUserByToken(user.Token)
	assert.Error(t, err, "old token must stop working")

	_, err = repo.RegenerateToken(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

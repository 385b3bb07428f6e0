package database

import (
	"testing"

	"murmur/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "posts", "likes"} {
		assert.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}
}

func TestMigrate_LikeUniqueness(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	user := &models.User{Username: "alice", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	post := &models.Post{Content: "hello", AuthorID: user.ID}
	require.NoError(t, db.Create(post).Error)

	require.NoError(t, db.Create(&models.Like{PostID: post.ID, UserID: user.ID}).Error)

	// a second like from the same user on the same post must be refused by
	// the schema itself
	err = db.Create(&models.Like{PostID: post.ID, UserID: user.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// but the same user may like a different post
	other := &models.Post{Content: "another", AuthorID: user.ID}
	require.NoError(t, db.Create(other).Error)
	assert.NoError(t, db.Create(&models.Like{PostID: other.ID, UserID: user.ID}).Error)
}

func TestMigrate_UsernameUniqueness(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&models.User{Username: "alice", PasswordHash: "x"}).Error)
	err = db.Create(&models.User{Username: "alice", PasswordHash: "y"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"murmur/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testPostID = "11111111-1111-1111-1111-111111111111"
	testUserID = "22222222-2222-2222-2222-222222222222"
)

func TestLikeRepository_Insert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "likes"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	like := &models.Like{PostID: testPostID, UserID: testUserID}
	err := repo.Insert(context.Background(), like)
	assert.NoError(t, err)
	assert.NotEmpty(t, like.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_Insert_Duplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "likes"`).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Insert(context.Background(), &models.Like{PostID: testPostID, UserID: testUserID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_GetByPostAndUser(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewLikeRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "likes" WHERE post_id =`).
			WithArgs(testPostID, testUserID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "user_id", "created_at"}).
				AddRow("33333333-3333-3333-3333-333333333333", testPostID, testUserID, time.Now()))

		like, err := repo.GetByPostAndUser(context.Background(), testPostID, testUserID)
		require.NoError(t, err)
		assert.Equal(t, testPostID, like.PostID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewLikeRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "likes" WHERE post_id =`).
			WithArgs(testPostID, testUserID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByPostAndUser(context.Background(), testPostID, testUserID)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLikeRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "likes" WHERE post_id =`).
		WithArgs(testPostID, testUserID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), testPostID, testUserID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_CountByPost(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "likes" WHERE post_id =`).
		WithArgs(testPostID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))

	count, err := repo.CountByPost(context.Background(), testPostID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_DeleteByPost(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "likes" WHERE post_id =`).
		WithArgs(testPostID).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	err := repo.DeleteByPost(context.Background(), testPostID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

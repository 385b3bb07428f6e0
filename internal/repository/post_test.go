package repository

import (
	"context"
	"testing"
	"time"

	"murmur/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "content", "author_id", "images",
		"total_likes", "liked", "author_name", "created_at",
	})
}

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{Content: "hello", AuthorID: "5f8b7a9e-0c1d-4e2f-8a3b-4c5d6e7f8a9b"}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "posts"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(ctx, post)
	assert.NoError(t, err)
	assert.NotEmpty(t, post.ID, "BeforeCreate should assign an ID")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByID(t *testing.T) {
	postID := "11111111-1111-1111-1111-111111111111"
	authorID := "22222222-2222-2222-2222-222222222222"
	viewerID := "33333333-3333-3333-3333-333333333333"

	t.Run("with viewer", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostRepository(db)

		mock.ExpectQuery(`SELECT posts\..* FROM "posts" WHERE posts\.id =`).
			WithArgs(viewerID, postID, 1).
			WillReturnRows(postRows().
				AddRow(postID, "hello", authorID, `["/uploads/a.png"]`, 3, true, "alice", time.Now()))

		post, err := repo.GetByID(context.Background(), postID, viewerID)
		require.NoError(t, err)
		assert.Equal(t, postID, post.ID)
		assert.Equal(t, int64(3), post.TotalLikes)
		assert.True(t, post.Liked)
		assert.Equal(t, "alice", post.AuthorName)
		assert.Equal(t, []string{"/uploads/a.png"}, post.Images)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("anonymous", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostRepository(db)

		mock.ExpectQuery(`SELECT posts\..* FROM "posts" WHERE posts\.id =`).
			WithArgs(postID, 1).
			WillReturnRows(postRows().
				AddRow(postID, "hello", authorID, `[]`, 3, false, "alice", time.Now()))

		post, err := repo.GetByID(context.Background(), postID, "")
		require.NoError(t, err)
		assert.False(t, post.Liked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPostRepository(db)

		mock.ExpectQuery(`SELECT posts\..* FROM "posts" WHERE posts\.id =`).
			WithArgs(postID, 1).
			WillReturnRows(postRows())

		_, err := repo.GetByID(context.Background(), postID, "")
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	authorID := "22222222-2222-2222-2222-222222222222"
	mock.ExpectQuery(`SELECT posts\..* FROM "posts" ORDER BY created_at DESC, id DESC LIMIT`).
		WillReturnRows(postRows().
			AddRow("aaaa1111-0000-0000-0000-000000000001", "second", authorID, `[]`, 0, false, "alice", time.Now()).
			AddRow("aaaa1111-0000-0000-0000-000000000002", "first", authorID, `[]`, 1, false, "alice", time.Now().Add(-time.Hour)))

	posts, err := repo.List(context.Background(), 5, 0, "")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Count(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "posts" WHERE id =`).
		WithArgs("11111111-1111-1111-1111-111111111111").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "11111111-1111-1111-1111-111111111111")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_DeleteAll(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "posts"`).
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectCommit()

	err := repo.DeleteAll(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

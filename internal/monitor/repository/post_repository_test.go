package repository

import (
	"context"
	"testing"
	"time"

	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/internal/monitor/dto"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postColumns = []string{"id", "owner_id", "symbol", "exchange", "initial_price", "current_price", "status", "closed", "price_checks", "version"}

func TestPostRepository_ListOpenPosts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	rows := sqlmock.NewRows(postColumns).
		AddRow(1, 7, "AAPL", "NASDAQ", 100.0, 110.0, "open", false, []byte(`[{"date":"2024-01-05","close":110}]`), 2).
		AddRow(2, 7, "BBCA", "IDX", 9000.0, 9100.0, "open", false, []byte(`[]`), 0)
	mock.ExpectQuery(`SELECT \* FROM "posts" WHERE owner_id = \$1 AND closed = \$2 ORDER BY id`).
		WithArgs(uint(7), false).
		WillReturnRows(rows)

	posts, err := repo.ListOpenPosts(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "AAPL", posts[0].Symbol)
	require.Len(t, posts[0].PriceChecks, 1)
	assert.Equal(t, "2024-01-05", posts[0].PriceChecks[0].Date)
	assert.Equal(t, int64(2), posts[0].Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "posts" WHERE "posts"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows(postColumns))

	_, err := repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, dto.ErrPostNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ConditionalUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)
	now := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	post := &entity.Post{
		ID:             1,
		CurrentPrice:   119,
		LastPriceCheck: &now,
		Status:         entity.PostStatusSuccess,
		TargetReached:  true,
		PriceChecks:    []entity.PriceCheck{{Date: "2024-01-05", Close: 119}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "posts" SET .*"version"=version \+ 1.* WHERE \(?id = \$\d+ AND version = \$\d+ AND closed = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ConditionalUpdate(context.Background(), post, 4))
	assert.Equal(t, int64(5), post.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ConditionalUpdateConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)
	post := &entity.Post{ID: 1, Status: entity.PostStatusOpen}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "posts" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.ConditionalUpdate(context.Background(), post, 4)
	assert.ErrorIs(t, err, dto.ErrPersistConflict)
	assert.Equal(t, int64(0), post.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListOwnersWithOpenPosts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`SELECT DISTINCT "owner_id" FROM "posts" WHERE closed = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(3).AddRow(7))

	owners, err := repo.ListOwnersWithOpenPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 7}, owners)
	assert.NoError(t, mock.ExpectationsWereMet())
}

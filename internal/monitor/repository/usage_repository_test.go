package repository

import (
	"context"
	"testing"

	"golang-stock-tracker/internal/monitor/dto"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var usageColumns = []string{"id", "owner_id", "period", "usage_limit", "used", "last_batch_id"}

func TestUsageRepository_GetMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUsageRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "usage_records" WHERE owner_id = \$1 AND period = \$2`).
		WillReturnRows(sqlmock.NewRows(usageColumns))

	record, err := repo.Get(context.Background(), 7, "2024-01-05")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestUsageRepository_Consume(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUsageRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "usage_records" .* ON CONFLICT DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`UPDATE "usage_records" SET .* WHERE owner_id = \$\d+ AND period = \$\d+ AND used < usage_limit AND last_batch_id <> \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Consume(context.Background(), 7, "2024-01-05", 3, "batch-a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageRepository_ConsumeSameBatchTwice(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUsageRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "usage_records"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`UPDATE "usage_records" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "usage_records" WHERE owner_id = \$1 AND period = \$2`).
		WillReturnRows(sqlmock.NewRows(usageColumns).AddRow(1, 7, "2024-01-05", 3, 1, "batch-a"))
	mock.ExpectCommit()

	require.NoError(t, repo.Consume(context.Background(), 7, "2024-01-05", 3, "batch-a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageRepository_ConsumeOverLimit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUsageRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "usage_records"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`UPDATE "usage_records" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "usage_records"`).
		WillReturnRows(sqlmock.NewRows(usageColumns).AddRow(1, 7, "2024-01-05", 3, 3, "batch-c"))
	mock.ExpectRollback()

	err := repo.Consume(context.Background(), 7, "2024-01-05", 3, "batch-d")
	assert.ErrorIs(t, err, dto.ErrQuotaExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

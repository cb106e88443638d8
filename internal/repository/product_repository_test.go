package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUUID  = "3b8f4d1c-0000-0000-0000-000000000001"
	otherUUID = "3b8f4d1c-0000-0000-0000-000000000002"
)

func newProductRepo(t *testing.T) (*ProductRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProductRepo(db), mock
}

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "uuid", "code", "summary", "taken", "taken_at", "created_at", "updated_at",
	})
}

func TestProductRepoList(t *testing.T) {
	repo, mock := newProductRepo(t)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM product WHERE taken = ").
		WithArgs(false, 50, 0).
		WillReturnRows(productRows().
			AddRow(2, otherUUID, "CODE-B", "", false, nil, now, now).
			AddRow(1, testUUID, "CODE-A", "a game", false, nil, now.Add(-time.Hour), now.Add(-time.Hour)))

	products, err := repo.List(context.Background(), 0, 50, false, true)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "CODE-B", products[0].Code)
	assert.False(t, products[0].Taken)
	assert.Nil(t, products[0].TakenAt)
	assert.Equal(t, now, products[0].CreatedAt.Time)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepoCount(t *testing.T) {
	repo, mock := newProductRepo(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"all", "available", "taken"}).
			AddRow(10, 7, 3))

	totals, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), totals.All)
	assert.Equal(t, int64(7), totals.Available)
	assert.Equal(t, int64(3), totals.Taken)
	// The single aggregate query keeps the identity exact.
	assert.Equal(t, totals.All, totals.Available+totals.Taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepoGetByCode_NotFound(t *testing.T) {
	repo, mock := newProductRepo(t)

	mock.ExpectQuery("FROM product WHERE code=").
		WithArgs("MISSING").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByCode(context.Background(), "MISSING")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepoCreate(t *testing.T) {
	repo, mock := newProductRepo(t)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO product").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FROM product WHERE uuid=").
		WillReturnRows(productRows().
			AddRow(1, testUUID, "CODE-A", "a game", false, nil, now, now))

	p, err := repo.Create(context.Background(), "CODE-A", "a game")
	require.NoError(t, err)
	assert.Equal(t, "CODE-A", p.Code)
	assert.False(t, p.Taken)
	assert.NotEmpty(t, p.UUID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepoCreate_DuplicateCode(t *testing.T) {
	repo, mock := newProductRepo(t)

	mock.ExpectExec("INSERT INTO product").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'CODE-A' for key 'ux_product_code'"))

	_, err := repo.Create(context.Background(), "CODE-A", "")
	assert.ErrorIs(t, err, ErrCodeInUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepoUpdate(t *testing.T) {
	repo, mock := newProductRepo(t)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM product WHERE uuid=").
		WithArgs(testUUID).
		WillReturnRows(productRows().
			AddRow(1, testUUID, "OLD-CODE", "a game", false, nil, now, now))
	// Code collision probe misses.
	mock.ExpectQuery("FROM product WHERE code=").
		WithArgs("NEW-CODE").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("UPDATE product SET code=").
		WithArgs("NEW-CODE", testUUID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM product WHERE uuid=").
		WithArgs(testUUID).
		WillReturnRows(productRows().
			AddRow(1, testUUID, "NEW-CODE", "a game", false, nil, now, now))

	p, err := repo.Update(context.Background(), testUUID, "NEW-CODE", "")
	require.NoError(t, err)
	assert.Equal(t, "NEW-CODE", p.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepoUpdate_Taken(t *testing.T) {
	repo, mock := newProductRepo(t)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM product WHERE uuid=").
		WithArgs(testUUID).
		WillReturnRows(productRows().
			AddRow(1, testUUID, "CODE-A", "", true, now, now, now))

	_, err := repo.Update(context.Background(), testUUID, "NEW-CODE", "")
	assert.ErrorIs(t, err, ErrProductTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepoUpdate_CodeCollision(t *testing.T) {
	repo, mock := newProductRepo(t)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM product WHERE uuid=").
		WithArgs(testUUID).
		WillReturnRows(productRows().
			AddRow(1, testUUID, "CODE-A", "", false, nil, now, now))
	// The probed code belongs to a different product.
	mock.ExpectQuery("FROM product WHERE code=").
		WithArgs("CODE-B").
		WillReturnRows(productRows().
			AddRow(2, otherUUID, "CODE-B", "", false, nil, now, now))

	_, err := repo.Update(context.Background(), testUUID, "CODE-B", "")
	assert.ErrorIs(t, err, ErrCodeInUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepoUpdate_SameCodeNoCollision(t *testing.T) {
	repo, mock := newProductRepo(t)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM product WHERE uuid=").
		WithArgs(testUUID).
		WillReturnRows(productRows().
			AddRow(1, testUUID, "CODE-A", "old", false, nil, now, now))
	// Keeping its own code is never a collision.
	mock.ExpectQuery("FROM product WHERE code=").
		WithArgs("CODE-A").
		WillReturnRows(productRows().
			AddRow(1, testUUID, "CODE-A", "old", false, nil, now, now))
	mock.ExpectExec("UPDATE product SET code=").
		WithArgs("CODE-A", "new summary", testUUID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM product WHERE uuid=").
		WithArgs(testUUID).
		WillReturnRows(productRows().
			AddRow(1, testUUID, "CODE-A", "new summary", false, nil, now, now))

	p, err := repo.Update(context.Background(), testUUID, "CODE-A", "new summary")
	require.NoError(t, err)
	assert.Equal(t, "new summary", p.Summary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepoDelete(t *testing.T) {
	repo, mock := newProductRepo(t)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM product WHERE uuid=").
		WithArgs(testUUID).
		WillReturnRows(productRows().
			AddRow(1, testUUID, "CODE-A", "", false, nil, now, now))
	mock.ExpectExec("DELETE FROM product WHERE uuid=").
		WithArgs(testUUID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), testUUID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepoDelete_NotFound(t *testing.T) {
	repo, mock := newProductRepo(t)

	mock.ExpectQuery("FROM product WHERE uuid=").
		WithArgs(testUUID).
		WillReturnError(sql.ErrNoRows)

	assert.ErrorIs(t, repo.Delete(context.Background(), testUUID), ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepoDelete_Taken(t *testing.T) {
	repo, mock := newProductRepo(t)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM product WHERE uuid=").
		WithArgs(testUUID).
		WillReturnRows(productRows().
			AddRow(1, testUUID, "CODE-A", "", true, now, now, now))

	assert.ErrorIs(t, repo.Delete(context.Background(), testUUID), ErrProductTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/micebot/server/internal/utils"
)

func newApplicationRepo(t *testing.T) (*ApplicationRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewApplicationRepo(db), mock
}

func TestApplicationRepoAuthenticate(t *testing.T) {
	repo, mock := newApplicationRepo(t)

	hash, err := utils.HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, username, pass_hash FROM application WHERE username=").
		WithArgs("micebot").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "pass_hash"}).
			AddRow(1, "micebot", hash))

	app, err := repo.Authenticate(context.Background(), "micebot", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), app.ID)
	assert.Equal(t, "micebot", app.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepoAuthenticate_WrongPassword(t *testing.T) {
	repo, mock := newApplicationRepo(t)

	hash, err := utils.HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, username, pass_hash FROM application WHERE username=").
		WithArgs("micebot").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "pass_hash"}).
			AddRow(1, "micebot", hash))

	_, err = repo.Authenticate(context.Background(), "micebot", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepoAuthenticate_UnknownUsername(t *testing.T) {
	repo, mock := newApplicationRepo(t)

	mock.ExpectQuery("SELECT id, username, pass_hash FROM application WHERE username=").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	// Indistinguishable from a wrong password.
	_, err := repo.Authenticate(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepoCreate(t *testing.T) {
	repo, mock := newApplicationRepo(t)

	mock.ExpectExec("INSERT INTO application").
		WillReturnResult(sqlmock.NewResult(5, 1))

	id, err := repo.Create(context.Background(), "micebot", "s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepoCreate_DuplicateUsername(t *testing.T) {
	repo, mock := newApplicationRepo(t)

	mock.ExpectExec("INSERT INTO application").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'micebot' for key 'ux_application_username'"))

	_, err := repo.Create(context.Background(), "micebot", "s3cret", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrUsernameExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

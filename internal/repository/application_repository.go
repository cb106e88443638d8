package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/micebot/server/internal/model"
	"github.com/micebot/server/internal/utils"
)

// dummyHash is a valid bcrypt digest compared against when the username
// does not exist, so a miss costs the same as a wrong password.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// ApplicationRepo reads and provisions service-account credentials in
// the `application` table.  Rows are seeded by cmd/migrate and treated
// as read-only at request time.
type ApplicationRepo struct{ DB *sql.DB }

func NewApplicationRepo(db *sql.DB) *ApplicationRepo { return &ApplicationRepo{DB: db} }

// Create inserts a credential and returns its ID.  The plaintext is
// hashed here, as a visible step, and never stored.
func (r *ApplicationRepo) Create(ctx context.Context, username, password string, cost int) (uint64, error) {
	username = strings.TrimSpace(username)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO application (username, pass_hash) VALUES (?,?)",
		username, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a credential by username.  sql.ErrNoRows is
// returned untouched so the access gate can collapse it into its
// uniform rejection.
func (r *ApplicationRepo) GetByUsername(ctx context.Context, username string) (model.Application, error) {
	var a model.Application
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, username, pass_hash FROM application WHERE username=? LIMIT 1",
		username).Scan(&a.ID, &a.Username, &a.PassHash)
	return a, err
}

// Authenticate verifies a username/password pair and returns the
// credential on success.  Unknown usernames and wrong passwords both
// yield ErrInvalidCredentials, and a bcrypt comparison runs in either
// case so the two are not separable by timing.
func (r *ApplicationRepo) Authenticate(ctx context.Context, username, password string) (model.Application, error) {
	a, err := r.GetByUsername(ctx, username)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.VerifyPassword(dummyHash, password)
			return model.Application{}, ErrInvalidCredentials
		}
		return model.Application{}, err
	}
	if !utils.VerifyPassword(a.PassHash, password) {
		return model.Application{}, ErrInvalidCredentials
	}
	return a, nil
}

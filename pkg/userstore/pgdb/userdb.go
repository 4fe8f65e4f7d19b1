// Package pgdb provides a userstore.Store that keeps data in a postgres database.
package pgdb

import (
	"context"
	_ "embed"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"code.extranets.org/golang/pkg/userstore"
)

// PGDB is implemented by pgx.Tx, pgx.Conn & pgxpool.Pool
// accessing a postgres database through this common interface simplifies testing
type PGDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserStore is a userstore.Store backed by the users table.
// The table is looked up using the connection search_path.
type UserStore struct {
	DB       PGDB
	hashOpts []userstore.HashOption
}

//go:embed users_schema.sql
var schemaScriptTpl string

// Migrate creates dbschema and the users table if they do not exist.
func Migrate(ctx context.Context, conn *pgx.Conn, dbschema string) error {
	schemaName := pgx.Identifier{dbschema}.Sanitize()
	schemaScript := strings.ReplaceAll(schemaScriptTpl, "${schema_name}", schemaName)

	_, err := conn.Exec(ctx, schemaScript)

	return wrapError(err, "failed db schema initialization") // nil if err is nil...
}

// NewUserStore returns a UserStore using a connection pool to the dsn database.
// opts configure the hashing of saved passwords.
func NewUserStore(ctx context.Context, dsn string, opts ...userstore.HashOption) (*UserStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if nil != err {
		return nil, wrapError(err, "failed connection pool creation")
	}

	return &UserStore{DB: pool, hashOpts: opts}, nil
}

// Close releases the UserStore connection pool, if it has one.
func (self *UserStore) Close() {
	if pool, isPool := self.DB.(*pgxpool.Pool); isPool {
		pool.Close()
	}
}

// CheckPassword returns true if password is the password of userID.
func (self *UserStore) CheckPassword(ctx context.Context, userID, password string) (bool, error) {
	var logN, r, p int16
	var salt, key []byte
	err := self.DB.QueryRow(
		ctx,
		`SELECT log_n, r, p, salt, hash FROM users WHERE id = $1`,
		userID,
	).Scan(&logN, &r, &p, &salt, &key)
	if nil != err {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, wrapError(err, "failed loading user")
	}
	h := userstore.Hash{LogN: uint8(logN), R: uint8(r), P: uint8(p), Salt: salt, Key: key}

	if err = h.Check(); nil != err {
		return false, wrapError(err, "invalid stored hash")
	}

	return h.Match(password), nil
}

// SaveUser creates or updates userID with password.
func (self *UserStore) SaveUser(ctx context.Context, userID, password string) error {
	rec, err := userstore.NewRecord(userID, password, self.hashOpts...)
	if nil != err {
		return wrapError(err, "invalid user")
	}
	h := rec.Hash
	_, err = self.DB.Exec(
		ctx,
		`INSERT INTO users(id, log_n, r, p, salt, hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   log_n = EXCLUDED.log_n,
		   r = EXCLUDED.r,
		   p = EXCLUDED.p,
		   salt = EXCLUDED.salt,
		   hash = EXCLUDED.hash,
		   updated = now()
		`,
		rec.UserID, int16(h.LogN), int16(h.R), int16(h.P), []byte(h.Salt), []byte(h.Key),
	)

	return wrapError(err, "failed saving user") // nil if err is nil
}

// RemoveUser deletes userID. It errors with userstore.ErrNotFound if userID does not exist.
func (self *UserStore) RemoveUser(ctx context.Context, userID string) error {
	tag, err := self.DB.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if nil != err {
		return wrapError(err, "failed removing user")
	}
	if 0 == tag.RowsAffected() {
		return wrapError(userstore.ErrNotFound, "unknown user %q", userID)
	}
	return nil
}

// UserCount returns the number of users in the UserStore.
func (self *UserStore) UserCount(ctx context.Context) (int, error) {
	var count int
	err := self.DB.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count)
	return count, wrapError(err, "failed counting users")
}

var _ userstore.Store = &UserStore{}

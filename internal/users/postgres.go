package users

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"resumegenius/internal/errors"
	"resumegenius/internal/users/migrations"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const uniqueViolation = "23505"

// DBTX is the subset of database/sql used by the repository.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresRepository is a Repository backed by PostgreSQL.
type PostgresRepository struct {
	db DBTX
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// PoolOptions tunes the connection pool opened by OpenPostgres.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// OpenPostgres opens a pgx-backed *sql.DB and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string, opts PoolOptions) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Failed to open database", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.NewNetworkError(errors.ErrCodeStoreUnavailable, "Failed to reach database", err)
	}
	return db, nil
}

// gooseUp is a seam for testing goose.UpContext.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUp(ctx, db, "."); err != nil {
		return errors.NewInternalError(errors.ErrCodeStoreFailed, "Failed to apply migrations", err)
	}
	return nil
}

const userColumns = `id, username, email, password_hash, role, is_approved, created_at`

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, notFound("email", email)
		}
		return nil, dbError(err)
	}
	return u, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, notFound("user_id", id)
		}
		return nil, dbError(err)
	}
	return u, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]PublicUser, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	var out []PublicUser
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, dbError(err)
		}
		out = append(out, u.Public())
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err)
	}
	return out, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, user *User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, string(user.Role), user.IsApproved, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == "users_pkey" {
				return errors.NewConflictError(errors.ErrCodeDuplicateID, "User id already exists", nil).WithContext("user_id", user.ID)
			}
			return errors.NewConflictError(errors.ErrCodeDuplicateEmail, errors.ErrDuplicateEmail.Message, nil).
				WithContext("email", user.Email)
		}
		return dbError(err)
	}
	return nil
}

func (r *PostgresRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	return r.execByID(ctx, `UPDATE users SET is_approved = $2 WHERE id = $1`, id, approved)
}

func (r *PostgresRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	return r.execByID(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
}

func (r *PostgresRepository) Remove(ctx context.Context, id string) error {
	return r.execByID(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) execByID(ctx context.Context, query, id string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return dbError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbError(err)
	}
	if n == 0 {
		return notFound("user_id", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.IsApproved, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = Role(role)
	return &u, nil
}

func dbError(err error) error {
	return errors.NewInternalError(errors.ErrCodeStoreFailed, "db error", err)
}

package users

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"
	"time"

	"resumegenius/internal/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var userRowColumns = []string{"id", "username", "email", "password_hash", "role", "is_approved", "created_at"}

const (
	selectByEmail = `(?s)^SELECT\s+id,\s*username,\s*email,\s*password_hash,\s*role,\s*is_approved,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`
	selectByID    = `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
	selectAll     = `(?s)^SELECT\s+id,.*FROM\s+users\s+ORDER\s+BY\s+seq$`
	insertUser    = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*username,\s*email,\s*password_hash,\s*role,\s*is_approved,\s*created_at\)\s*VALUES`
)

func TestPostgresFindByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("1", "admin", "admin@example.com", "h", "admin", true, created)
	mock.ExpectQuery(selectByEmail).WithArgs("admin@example.com").WillReturnRows(rows)

	got, err := repo.FindByEmail(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if got.ID != "1" || got.Role != RoleAdmin || !got.IsApproved || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByEmail).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("want NOT_FOUND, got %v", err)
	}
}

func TestPostgresFindByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByID).WithArgs("1").WillReturnError(stderrors.New("db down"))

	_, err := repo.FindByID(context.Background(), "1")
	appErr, ok := errors.As(err)
	if !ok || appErr.Code != errors.ErrCodeStoreFailed {
		t.Fatalf("want STORE_FAILED, got %v", err)
	}
	if errors.Is(err, errors.ErrNotFound) {
		t.Fatal("db failure must not look like a missing user")
	}
}

func TestPostgresList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("1", "admin", "admin@example.com", "h1", "admin", true, now).
		AddRow("2", "john", "john@example.com", "h2", "standard", false, now)
	mock.ExpectQuery(selectAll).WillReturnRows(rows)

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "1" || list[1].Role != RoleStandard {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestPostgresInsert(t *testing.T) {
	tests := []struct {
		name     string
		execErr  error
		wantCode string
	}{
		{name: "success"},
		{
			name:     "duplicate email",
			execErr:  &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"},
			wantCode: errors.ErrCodeDuplicateEmail,
		},
		{
			name:     "duplicate id",
			execErr:  &pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"},
			wantCode: errors.ErrCodeDuplicateID,
		},
		{
			name:     "other failure",
			execErr:  stderrors.New("connection reset"),
			wantCode: errors.ErrCodeStoreFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			u := newUser("a", "a@example.com")
			exp := mock.ExpectExec(insertUser).
				WithArgs(u.ID, u.Username, u.Email, u.PasswordHash, "standard", false, u.CreatedAt)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := repo.Insert(context.Background(), u)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Insert error: %v", err)
				}
				return
			}
			appErr, ok := errors.As(err)
			if !ok || appErr.Code != tt.wantCode {
				t.Fatalf("want %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestPostgresMutations_ZeroRowsIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+is_approved`).WithArgs("x", true).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+password_hash`).WithArgs("x", "h").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+users`).WithArgs("x").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	if err := repo.SetApproved(ctx, "x", true); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("SetApproved: want NOT_FOUND, got %v", err)
	}
	if err := repo.SetPasswordHash(ctx, "x", "h"); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("SetPasswordHash: want NOT_FOUND, got %v", err)
	}
	if err := repo.Remove(ctx, "x"); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("Remove: want NOT_FOUND, got %v", err)
	}
}

func TestPostgresRemove_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+users`).WithArgs("1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Remove(context.Background(), "1"); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
}

func TestMigrate(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	orig := gooseUp
	defer func() { gooseUp = orig }()

	gooseUp = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return stderrors.New("unexpected dir")
		}
		return nil
	}
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate error: %v", err)
	}

	gooseUp = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return stderrors.New("boom")
	}
	err = Migrate(context.Background(), db)
	if err == nil || !stderrors.Is(err, errors.NewInternalError(errors.ErrCodeStoreFailed, "", nil)) {
		t.Fatalf("expected STORE_FAILED, got %v", err)
	}
}

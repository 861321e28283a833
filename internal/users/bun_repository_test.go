package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/Rana-Faraz/authbase/internal/common"
)

func newMockDB(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return bun.NewDB(db, sqlitedialect.New()), mock
}

func TestGetByEmail_NoRowsMapsToNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT").WillReturnError(sql.ErrNoRows)

	_, err := NewBunRepository(db).GetByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_DriverErrorIsWrapped(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

	_, err := NewBunRepository(db).GetByID(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestCreate_DriverErrorIsWrapped(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("INSERT").WillReturnError(assert.AnError)

	err := NewBunRepository(db).Create(context.Background(), &User{ID: "u1", Name: "n", Email: "e@x.com"})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSetEmailVerified_ZeroRowsIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewBunRepository(db).SetEmailVerified(context.Background(), "absent")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "postgres unique violation",
			err:  &pgconn.PgError{Code: "23505"},
			want: true,
		},
		{
			name: "postgres other error",
			err:  &pgconn.PgError{Code: "42P01"},
			want: false,
		},
		{
			name: "mysql duplicate entry",
			err:  &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"},
			want: true,
		},
		{
			name: "mysql other error",
			err:  &mysql.MySQLError{Number: 1146},
			want: false,
		},
		{
			name: "sqlite unique violation",
			err:  errors.New("constraint failed: UNIQUE constraint failed: user.email (2067)"),
			want: true,
		},
		{
			name: "unrelated error",
			err:  errors.New("connection refused"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

func TestCreate_UniqueViolationMapsToEmailExists(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("INSERT").WillReturnError(&pgconn.PgError{Code: "23505"})

	err := NewBunRepository(db).Create(context.Background(), &User{ID: "u1", Email: "dup@example.com"})
	assert.ErrorIs(t, err, common.ErrorEmailAlreadyExists)
}

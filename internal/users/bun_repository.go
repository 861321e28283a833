package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"github.com/Rana-Faraz/authbase/internal/common"
)

// BunRepository implements Repository on top of a bun handle. It accepts
// bun.IDB so the same code runs inside and outside transactions.
type BunRepository struct {
	db bun.IDB
}

func NewBunRepository(db bun.IDB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) Create(ctx context.Context, user *User) error {
	if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return common.ErrorEmailAlreadyExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique-constraint violation from
// any of the supported drivers. The only unique indexes on the user table are
// the primary key (a fresh uuid) and email, so in practice this is a
// duplicate email that raced past the EmailExists pre-check.
func isUniqueViolation(err error) bool {
	// 23505 is the postgres unique_violation class.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}

	// modernc/mattn sqlite expose no shared error type through sqliteshim.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *BunRepository) GetByID(ctx context.Context, id string) (*User, error) {
	user := &User{}
	err := r.db.NewSelect().Model(user).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("selecting user by id: %w", err)
	}
	return user, nil
}

func (r *BunRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	err := r.db.NewSelect().Model(user).Where("email = ?", email).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("selecting user by email: %w", err)
	}
	return user, nil
}

func (r *BunRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	exists, err := r.db.NewSelect().Model((*User)(nil)).Where("email = ?", email).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("checking email existence: %w", err)
	}
	return exists, nil
}

func (r *BunRepository) SetEmailVerified(ctx context.Context, id string) error {
	res, err := r.db.NewUpdate().Model((*User)(nil)).
		Set("email_verified = ?", true).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("updating email_verified: %w", err)
	}
	return requireAffected(res)
}

func (r *BunRepository) SetImage(ctx context.Context, id string, image string) error {
	res, err := r.db.NewUpdate().Model((*User)(nil)).
		Set("image = ?", image).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("updating image: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

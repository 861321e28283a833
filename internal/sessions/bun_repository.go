package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/Rana-Faraz/authbase/internal/common"
)

type BunRepository struct {
	db bun.IDB
}

func NewBunRepository(db bun.IDB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) Create(ctx context.Context, session *Session) error {
	if _, err := r.db.NewInsert().Model(session).Exec(ctx); err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (r *BunRepository) GetByToken(ctx context.Context, token string) (*Session, error) {
	session := &Session{}
	err := r.db.NewSelect().Model(session).Where("token = ?", token).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("selecting session by token: %w", err)
	}
	return session, nil
}

func (r *BunRepository) DeleteByToken(ctx context.Context, token string) error {
	res, err := r.db.NewDelete().Model((*Session)(nil)).Where("token = ?", token).Exec(ctx)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *BunRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.NewDelete().Model((*Session)(nil)).Where("user_id = ?", userID).Exec(ctx); err != nil {
		return fmt.Errorf("deleting sessions for user: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions whose expiry has passed and returns how many
// rows were reaped.
func (r *BunRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.NewDelete().Model((*Session)(nil)).Where("expires_at <= ?", time.Now().UTC()).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return res.RowsAffected()
}

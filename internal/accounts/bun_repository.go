package accounts

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

func (r *BunRepository) Create(ctx context.Context, account *Account) error {
	if _, err := r.db.NewInsert().Model(account).Exec(ctx); err != nil {
		return fmt.Errorf("inserting account: %w", err)
	}
	return nil
}

func (r *BunRepository) GetByUserAndProvider(ctx context.Context, userID, providerID string) (*Account, error) {
	account := &Account{}
	err := r.db.NewSelect().Model(account).
		Where("user_id = ?", userID).
		Where("provider_id = ?", providerID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("selecting account: %w", err)
	}
	return account, nil
}

func (r *BunRepository) ListByUser(ctx context.Context, userID string) ([]*Account, error) {
	var list []*Account
	err := r.db.NewSelect().Model(&list).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return list, nil
}

func (r *BunRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	res, err := r.db.NewUpdate().Model((*Account)(nil)).
		Set("password = ?", passwordHash).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("updating account password: %w", err)
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
	if _, err := r.db.NewDelete().Model((*Account)(nil)).Where("user_id = ?", userID).Exec(ctx); err != nil {
		return fmt.Errorf("deleting accounts for user: %w", err)
	}
	return nil
}

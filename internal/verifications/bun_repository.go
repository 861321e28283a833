package verifications

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

func (r *BunRepository) Create(ctx context.Context, verification *Verification) error {
	if _, err := r.db.NewInsert().Model(verification).Exec(ctx); err != nil {
		return fmt.Errorf("inserting verification: %w", err)
	}
	return nil
}

func (r *BunRepository) Get(ctx context.Context, identifier, value string) (*Verification, error) {
	verification := &Verification{}
	err := r.db.NewSelect().Model(verification).
		Where("identifier = ?", identifier).
		Where("value = ?", value).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("selecting verification: %w", err)
	}
	return verification, nil
}

func (r *BunRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.NewDelete().Model((*Verification)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		return fmt.Errorf("deleting verification: %w", err)
	}
	return nil
}

// DeleteByIdentifier drops all outstanding verifications for one identifier,
// so re-sending a verification email invalidates earlier links.
func (r *BunRepository) DeleteByIdentifier(ctx context.Context, identifier string) error {
	if _, err := r.db.NewDelete().Model((*Verification)(nil)).Where("identifier = ?", identifier).Exec(ctx); err != nil {
		return fmt.Errorf("deleting verifications for identifier: %w", err)
	}
	return nil
}

func (r *BunRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.NewDelete().Model((*Verification)(nil)).Where("expires_at <= ?", time.Now().UTC()).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("deleting expired verifications: %w", err)
	}
	return res.RowsAffected()
}

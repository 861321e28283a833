package verifications

import "context"

type Repository interface {
	Create(ctx context.Context, verification *Verification) error
	Get(ctx context.Context, identifier, value string) (*Verification, error)
	Delete(ctx context.Context, id string) error
	DeleteByIdentifier(ctx context.Context, identifier string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

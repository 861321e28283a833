package accounts

import "context"

type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByUserAndProvider(ctx context.Context, userID, providerID string) (*Account, error)
	ListByUser(ctx context.Context, userID string) ([]*Account, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	DeleteByUser(ctx context.Context, userID string) error
}

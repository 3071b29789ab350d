package repositories

import (
	"context"

	"marmomart/internal/models"
)

// AccountRepository defines the interface for account data access.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByPhone(ctx context.Context, phone string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	// Update writes the profile fields and role. The phone never changes.
	Update(ctx context.Context, account *models.Account) error
	// List returns every account, newest first.
	List(ctx context.Context) ([]models.Account, error)
	Count(ctx context.Context) (int64, error)
}

// AddressRepository stores customers' address books. Every operation is
// scoped to one account.
type AddressRepository interface {
	List(ctx context.Context, accountID string) ([]models.SavedAddress, error)
	Create(ctx context.Context, address *models.SavedAddress) error
	Update(ctx context.Context, address *models.SavedAddress) error
	Delete(ctx context.Context, accountID, id string) error
}

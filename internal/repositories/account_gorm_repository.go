package repositories

import (
	"context"
	"errors"
	"fmt"

	"marmomart/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAccountRepository is a GORM implementation of AccountRepository.
type GORMAccountRepository struct {
	db *gorm.DB
}

// NewGORMAccountRepository creates a new instance of GORMAccountRepository.
func NewGORMAccountRepository(db *gorm.DB) *GORMAccountRepository {
	return &GORMAccountRepository{
		db: db,
	}
}

// Create creates a new account in the database.
func (r *GORMAccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByPhone retrieves an account by its E.164 phone number.
func (r *GORMAccountRepository) GetByPhone(ctx context.Context, phone string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "phone = ?", phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account with phone %s %w", phone, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by phone %s: %w", phone, err)
	}
	return &account, nil
}

// GetByID retrieves an account by its ID.
func (r *GORMAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account with ID %s %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by ID %s: %w", id, err)
	}
	return &account, nil
}

// Count returns the number of accounts.
func (r *GORMAccountRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Account{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return n, nil
}

// Update writes account's profile fields and role.
func (r *GORMAccountRepository) Update(ctx context.Context, account *models.Account) error {
	res := r.db.WithContext(ctx).Model(&models.Account{ID: account.ID}).
		Select("full_name", "email", "business_name", "business_type", "gst_number", "role", "updated_at").
		Updates(account)
	if res.Error != nil {
		return fmt.Errorf("failed to update account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("account with ID %s %w for update", account.ID, ErrNotFound)
	}
	return nil
}

// List returns every account, newest first.
func (r *GORMAccountRepository) List(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

// NewGORMAddressRepository creates a new instance of GORMAddressRepository.
func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{db: db}
}

// List returns the account's addresses, the default first.
func (r *GORMAddressRepository) List(ctx context.Context, accountID string) ([]models.SavedAddress, error) {
	addresses := make([]models.SavedAddress, 0)
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).
		Order("is_default desc, created_at").Find(&addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

// Create adds an address. A new default replaces the old one.
func (r *GORMAddressRepository) Create(ctx context.Context, address *models.SavedAddress) error {
	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearDefault(tx, address); err != nil {
			return err
		}
		if err := tx.Create(address).Error; err != nil {
			return fmt.Errorf("failed to create address: %w", err)
		}
		return nil
	})
}

// Update replaces an address owned by address.AccountID.
func (r *GORMAddressRepository) Update(ctx context.Context, address *models.SavedAddress) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearDefault(tx, address); err != nil {
			return err
		}
		res := tx.Model(&models.SavedAddress{}).
			Where("id = ? AND account_id = ?", address.ID, address.AccountID).
			Select("name", "phone", "address_line1", "address_line2", "city", "state", "pincode", "landmark", "is_default", "updated_at").
			Updates(address)
		if res.Error != nil {
			return fmt.Errorf("failed to update address: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("address with ID %s %w for update", address.ID, ErrNotFound)
		}
		return nil
	})
}

// Delete removes an address owned by accountID.
func (r *GORMAddressRepository) Delete(ctx context.Context, accountID, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.SavedAddress{}, "id = ? AND account_id = ?", id, accountID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete address: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("address with ID %s %w for deletion", id, ErrNotFound)
	}
	return nil
}

func clearDefault(tx *gorm.DB, address *models.SavedAddress) error {
	if !address.IsDefault {
		return nil
	}
	err := tx.Model(&models.SavedAddress{}).
		Where("account_id = ? AND id <> ?", address.AccountID, address.ID).
		Update("is_default", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear default address: %w", err)
	}
	return nil
}

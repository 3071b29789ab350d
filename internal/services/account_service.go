package services

import (
	"context"
	"fmt"
	"log"

	"marmomart/internal/models"
	"marmomart/internal/repositories"
)

// ProfileUpdate carries the editable fields of an account.
type ProfileUpdate struct {
	FullName     string
	Email        string
	BusinessName string
	BusinessType string
	GSTNumber    string
}

// AccountService manages signed-in customers' profiles and address books,
// and staff roles.
type AccountService struct {
	accounts  repositories.AccountRepository
	addresses repositories.AddressRepository
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts repositories.AccountRepository, addresses repositories.AddressRepository) *AccountService {
	return &AccountService{accounts: accounts, addresses: addresses}
}

// UpdateProfile replaces the profile fields of the account. Phone and role
// are left alone.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID string, update ProfileUpdate) (*models.Account, error) {
	if update.FullName == "" {
		return nil, invalid("full_name", "is required")
	}
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	account.FullName = update.FullName
	account.Email = update.Email
	account.BusinessName = update.BusinessName
	account.BusinessType = update.BusinessType
	account.GSTNumber = update.GSTNumber
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ListAddresses returns the account's address book, the default first.
func (s *AccountService) ListAddresses(ctx context.Context, accountID string) ([]models.SavedAddress, error) {
	return s.addresses.List(ctx, accountID)
}

// AddAddress saves a new address for the account.
func (s *AccountService) AddAddress(ctx context.Context, accountID string, address *models.SavedAddress) error {
	if err := checkAddress(address.Address); err != nil {
		return err
	}
	address.ID = ""
	address.AccountID = accountID
	return s.addresses.Create(ctx, address)
}

// UpdateAddress replaces one of the account's addresses.
func (s *AccountService) UpdateAddress(ctx context.Context, accountID string, address *models.SavedAddress) error {
	if err := checkAddress(address.Address); err != nil {
		return err
	}
	address.AccountID = accountID
	return s.addresses.Update(ctx, address)
}

// DeleteAddress removes one of the account's addresses.
func (s *AccountService) DeleteAddress(ctx context.Context, accountID, id string) error {
	return s.addresses.Delete(ctx, accountID, id)
}

func checkAddress(a models.Address) error {
	if a.Name == "" {
		return invalid("name", "is required")
	}
	if a.AddressLine1 == "" {
		return invalid("address_line1", "is required")
	}
	return nil
}

// ListAccounts returns every account for the back office, newest first.
func (s *AccountService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.accounts.List(ctx)
}

// SetRole changes the role of account id. Staff cannot change their own
// role, so the last admin cannot lock themselves out.
func (s *AccountService) SetRole(ctx context.Context, actorID, id string, role models.Role) (*models.Account, error) {
	if !role.Valid() {
		return nil, invalid("role", "must be one of admin, manager or user")
	}
	if actorID == id {
		return nil, fmt.Errorf("%w: cannot change your own role", ErrForbidden)
	}
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	account.Role = role
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	log.Printf("Account %s changed role of %s to %s", actorID, id, role)
	return account, nil
}

package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"marmomart/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products   map[string]models.Product
	categories map[string]models.Category
	mu         sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products:   make(map[string]models.Product),
		categories: make(map[string]models.Category),
	}
}

// GetAll returns products matching filter, sorted by name.
func (r *MemoryProductRepository) GetAll(_ context.Context, filter ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if !filter.IncludeInactive && !p.IsActive {
			continue
		}
		if filter.FeaturedOnly && !p.IsFeatured {
			continue
		}
		if filter.CategorySlug != "" {
			c, ok := r.categories[p.CategoryID]
			if !ok || c.Slug != filter.CategorySlug {
				continue
			}
		}
		productList = append(productList, r.withCategory(p))
	}
	sort.Slice(productList, func(i, j int) bool { return productList[i].Name < productList[j].Name })
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s %w", id, ErrNotFound)
	}
	product = r.withCategory(product)
	return &product, nil
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	assignVariantIDs(product)
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	r.products[product.ID] = copyProduct(*product)
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s %w for update", product.ID, ErrNotFound)
	}
	assignVariantIDs(product)
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	r.products[product.ID] = copyProduct(*product)
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %s %w for deletion", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

// Count returns the number of products.
func (r *MemoryProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

// ListCategories returns active categories in display order.
func (r *MemoryProductRepository) ListCategories(_ context.Context) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		if c.IsActive {
			list = append(list, c)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].SortOrder != list[j].SortOrder {
			return list[i].SortOrder < list[j].SortOrder
		}
		return list[i].Name < list[j].Name
	})
	return list, nil
}

// CreateCategory adds a new category.
func (r *MemoryProductRepository) CreateCategory(_ context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	category.CreatedAt = time.Now()
	r.categories[category.ID] = *category
	return nil
}

// UpdateCategory updates an existing category.
func (r *MemoryProductRepository) UpdateCategory(_ context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.categories[category.ID]
	if !ok {
		return fmt.Errorf("category with ID %s %w for update", category.ID, ErrNotFound)
	}
	category.CreatedAt = existing.CreatedAt
	r.categories[category.ID] = *category
	return nil
}

// DeleteCategory deletes a category no product belongs to.
func (r *MemoryProductRepository) DeleteCategory(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return fmt.Errorf("category with ID %s %w for deletion", id, ErrNotFound)
	}
	for _, p := range r.products {
		if p.CategoryID == id {
			return fmt.Errorf("category with ID %s has products: %w", id, ErrInUse)
		}
	}
	delete(r.categories, id)
	return nil
}

func (r *MemoryProductRepository) withCategory(p models.Product) models.Product {
	p = copyProduct(p)
	if c, ok := r.categories[p.CategoryID]; ok {
		p.Category = &c
	}
	return p
}

func copyProduct(p models.Product) models.Product {
	p.Variants = append([]models.Variant(nil), p.Variants...)
	return p
}

// MemoryOrderRepository is an in-memory implementation of OrderRepository.
type MemoryOrderRepository struct {
	orders   map[string]models.Order
	counters map[string]int64
	now      func() time.Time
	mu       sync.RWMutex
}

// NewMemoryOrderRepository creates a new instance of MemoryOrderRepository.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders:   make(map[string]models.Order),
		counters: make(map[string]int64),
		now:      time.Now,
	}
}

// CreateWithItems adds a new order and assigns its number.
func (r *MemoryOrderRepository) CreateWithItems(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	day := orderDay(now)
	r.counters[day]++

	order.ID = uuid.New().String()
	order.OrderNumber = formatOrderNumber(day, r.counters[day])
	order.CreatedAt = now
	order.UpdatedAt = now
	for i := range order.Items {
		order.Items[i].ID = uuid.New().String()
		order.Items[i].OrderID = order.ID
	}
	r.orders[order.ID] = copyOrder(*order)
	return nil
}

// GetByID returns an order by its ID.
func (r *MemoryOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s %w", id, ErrNotFound)
	}
	order = copyOrder(order)
	return &order, nil
}

// List returns matching orders, newest first.
func (r *MemoryOrderRepository) List(_ context.Context, filter OrderFilter) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		orderList = append(orderList, copyOrder(o))
	}
	sort.Slice(orderList, func(i, j int) bool {
		if !orderList[i].CreatedAt.Equal(orderList[j].CreatedAt) {
			return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
		}
		return orderList[i].OrderNumber > orderList[j].OrderNumber
	})
	return orderList, nil
}

// UpdateStatus updates the status of an order.
func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	return r.update(id, func(o *models.Order) { o.Status = status })
}

// UpdatePaymentStatus updates the payment status of an order.
func (r *MemoryOrderRepository) UpdatePaymentStatus(_ context.Context, id string, status models.PaymentStatus) (*models.Order, error) {
	return r.update(id, func(o *models.Order) { o.PaymentStatus = status })
}

func (r *MemoryOrderRepository) update(id string, apply func(*models.Order)) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s %w for status update", id, ErrNotFound)
	}
	apply(&order)
	order.UpdatedAt = r.now()
	r.orders[id] = order
	order = copyOrder(order)
	return &order, nil
}

// Count counts orders, optionally restricted to one status.
func (r *MemoryOrderRepository) Count(_ context.Context, status models.OrderStatus) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, o := range r.orders {
		if status == "" || o.Status == status {
			n++
		}
	}
	return n, nil
}

func copyOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

// MemoryAccountRepository is an in-memory implementation of AccountRepository.
type MemoryAccountRepository struct {
	accounts map[string]models.Account
	byPhone  map[string]string
	mu       sync.RWMutex
}

// NewMemoryAccountRepository creates a new instance of MemoryAccountRepository.
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		accounts: make(map[string]models.Account),
		byPhone:  make(map[string]string),
	}
}

// Create adds a new account. Phones are unique.
func (r *MemoryAccountRepository) Create(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byPhone[account.Phone]; taken {
		return fmt.Errorf("failed to create account: phone %s already registered", account.Phone)
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	r.accounts[account.ID] = *account
	r.byPhone[account.Phone] = account.ID
	return nil
}

// GetByPhone returns an account by phone.
func (r *MemoryAccountRepository) GetByPhone(_ context.Context, phone string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPhone[phone]
	if !ok {
		return nil, fmt.Errorf("account with phone %s %w", phone, ErrNotFound)
	}
	account := r.accounts[id]
	return &account, nil
}

// GetByID returns an account by ID.
func (r *MemoryAccountRepository) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account with ID %s %w", id, ErrNotFound)
	}
	return &account, nil
}

// Count returns the number of accounts.
func (r *MemoryAccountRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.accounts)), nil
}

// Update writes the profile fields and role of an existing account.
func (r *MemoryAccountRepository) Update(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.accounts[account.ID]
	if !ok {
		return fmt.Errorf("account with ID %s %w for update", account.ID, ErrNotFound)
	}
	existing.FullName = account.FullName
	existing.Email = account.Email
	existing.BusinessName = account.BusinessName
	existing.BusinessType = account.BusinessType
	existing.GSTNumber = account.GSTNumber
	existing.Role = account.Role
	existing.UpdatedAt = time.Now()
	r.accounts[account.ID] = existing
	return nil
}

// List returns every account, newest first.
func (r *MemoryAccountRepository) List(_ context.Context) ([]models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].Phone < list[j].Phone
	})
	return list, nil
}

// MemoryAddressRepository is an in-memory implementation of AddressRepository.
type MemoryAddressRepository struct {
	addresses map[string]models.SavedAddress
	mu        sync.RWMutex
}

// NewMemoryAddressRepository creates a new instance of MemoryAddressRepository.
func NewMemoryAddressRepository() *MemoryAddressRepository {
	return &MemoryAddressRepository{addresses: make(map[string]models.SavedAddress)}
}

// List returns the account's addresses, the default first.
func (r *MemoryAddressRepository) List(_ context.Context, accountID string) ([]models.SavedAddress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.SavedAddress, 0)
	for _, a := range r.addresses {
		if a.AccountID == accountID {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].IsDefault != list[j].IsDefault {
			return list[i].IsDefault
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

// Create adds an address. A new default replaces the old one.
func (r *MemoryAddressRepository) Create(_ context.Context, address *models.SavedAddress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	address.CreatedAt = time.Now()
	address.UpdatedAt = address.CreatedAt
	r.clearDefault(address)
	r.addresses[address.ID] = *address
	return nil
}

// Update replaces an address owned by address.AccountID.
func (r *MemoryAddressRepository) Update(_ context.Context, address *models.SavedAddress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.addresses[address.ID]
	if !ok || existing.AccountID != address.AccountID {
		return fmt.Errorf("address with ID %s %w for update", address.ID, ErrNotFound)
	}
	address.CreatedAt = existing.CreatedAt
	address.UpdatedAt = time.Now()
	r.clearDefault(address)
	r.addresses[address.ID] = *address
	return nil
}

// Delete removes an address owned by accountID.
func (r *MemoryAddressRepository) Delete(_ context.Context, accountID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.addresses[id]
	if !ok || existing.AccountID != accountID {
		return fmt.Errorf("address with ID %s %w for deletion", id, ErrNotFound)
	}
	delete(r.addresses, id)
	return nil
}

func (r *MemoryAddressRepository) clearDefault(address *models.SavedAddress) {
	if !address.IsDefault {
		return
	}
	for id, a := range r.addresses {
		if a.AccountID == address.AccountID && id != address.ID && a.IsDefault {
			a.IsDefault = false
			r.addresses[id] = a
		}
	}
}

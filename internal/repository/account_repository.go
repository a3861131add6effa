package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/riteshkumar/account-ledger/internal/errors"
	"github.com/riteshkumar/account-ledger/internal/models"
)

type AccountRepository interface {
	CreateAccount(ctx context.Context, customer *models.Customer) error
	GetAccountByKey(ctx context.Context, key string) (*models.Customer, error)
	GetAccountByKeyForUpdate(ctx context.Context, key string, fn func(customer *models.Customer) error) error
	DeleteAccount(ctx context.Context, id string) error
	ListAccounts(ctx context.Context) ([]*models.Customer, error)
	AccountExists(ctx context.Context, key string) (bool, error)
}

// MemoryAccountRepository keeps every account in process memory behind one
// store-wide lock. Callers only ever see detached copies.
type MemoryAccountRepository struct {
	mu    sync.RWMutex
	byKey map[string]*models.Customer
	keyOf map[string]string // id -> key
	order []string          // keys in creation order
}

func NewAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		byKey: make(map[string]*models.Customer),
		keyOf: make(map[string]string),
	}
}

func (r *MemoryAccountRepository) CreateAccount(ctx context.Context, customer *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKey[customer.Key]; ok {
		return errors.ErrAccountAlreadyExists
	}

	// Generate UUID if not set
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	if customer.Statement == nil {
		customer.Statement = []models.Operation{}
	}

	r.byKey[customer.Key] = customer.Clone()
	r.keyOf[customer.ID] = customer.Key
	r.order = append(r.order, customer.Key)
	return nil
}

func (r *MemoryAccountRepository) GetAccountByKey(ctx context.Context, key string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.byKey[key]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	return customer.Clone(), nil
}

// GetAccountByKeyForUpdate runs fn against the stored account while holding
// the write lock. Changes fn makes to the account are kept only when it
// returns nil.
func (r *MemoryAccountRepository) GetAccountByKeyForUpdate(ctx context.Context, key string, fn func(customer *models.Customer) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byKey[key]
	if !ok {
		return errors.ErrAccountNotFound
	}

	working := stored.Clone()
	if err := fn(working); err != nil {
		return err
	}

	// id and key are immutable once stored
	working.ID = stored.ID
	working.Key = stored.Key
	r.byKey[key] = working
	return nil
}

func (r *MemoryAccountRepository) DeleteAccount(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.keyOf[id]
	if !ok {
		return errors.ErrAccountNotFound
	}

	delete(r.byKey, key)
	delete(r.keyOf, id)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryAccountRepository) ListAccounts(ctx context.Context) ([]*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customers := make([]*models.Customer, 0, len(r.order))
	for _, key := range r.order {
		customers = append(customers, r.byKey[key].Clone())
	}
	return customers, nil
}

func (r *MemoryAccountRepository) AccountExists(ctx context.Context, key string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byKey[key]
	return ok, nil
}

package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/riteshkumar/account-ledger/internal/errors"
	"github.com/riteshkumar/account-ledger/internal/ledger"
	"github.com/riteshkumar/account-ledger/internal/models"
	"github.com/riteshkumar/account-ledger/internal/repository"
)

type AccountService interface {
	CreateAccount(ctx context.Context, req *models.CreateAccountRequest) (*models.Customer, error)
	ResolveAccount(ctx context.Context, key string) (*models.Customer, error)
	UpdateAccount(ctx context.Context, key string, req *models.UpdateAccountRequest) (*models.Customer, error)
	DeleteAccount(ctx context.Context, customer *models.Customer) ([]*models.Customer, error)
	GetAuditTrail(ctx context.Context, customer *models.Customer) ([]*models.AuditLog, error)
}

type AccountServiceImpl struct {
	accountRepo repository.AccountRepository
	auditRepo   repository.AuditRepository
	logger      *slog.Logger
}

func NewAccountService(accountRepo repository.AccountRepository, auditRepo repository.AuditRepository, logger *slog.Logger) *AccountServiceImpl {
	return &AccountServiceImpl{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		logger:      logger,
	}
}

func (s *AccountServiceImpl) CreateAccount(ctx context.Context, req *models.CreateAccountRequest) (*models.Customer, error) {
	if req.Key == "" {
		s.logger.Warn("invalid create account request", "error", errors.ErrInvalidAccountKey.Error())
		return nil, errors.ErrInvalidAccountKey
	}

	customer := &models.Customer{
		Key:  req.Key,
		Name: req.Name,
	}

	if err := s.accountRepo.CreateAccount(ctx, customer); err != nil {
		if errors.IsAlreadyExists(err) {
			s.logger.Warn("account already exists",
				"key", req.Key,
			)
			return nil, err
		}

		s.logger.Error("failed to create account",
			"key", req.Key,
			"error", err.Error(),
		)
		return nil, err
	}

	s.audit(ctx, customer.ID, models.AuditActionCreate, nil, snapshotOf(customer))
	s.logger.Info("account created successfully",
		"account_id", customer.ID,
		"key", customer.Key,
	)
	return customer, nil
}

// ResolveAccount looks an account up by its external key. An empty key never
// matches.
func (s *AccountServiceImpl) ResolveAccount(ctx context.Context, key string) (*models.Customer, error) {
	if key == "" {
		return nil, errors.ErrAccountNotFound
	}

	customer, err := s.accountRepo.GetAccountByKey(ctx, key)
	if err != nil {
		if errors.IsNotFound(err) {
			s.logger.Warn("account not found",
				"key", key,
			)
			return nil, err
		}
		s.logger.Error("failed to resolve account",
			"key", key,
			"error", err.Error(),
		)
		return nil, err
	}

	return customer, nil
}

func (s *AccountServiceImpl) UpdateAccount(ctx context.Context, key string, req *models.UpdateAccountRequest) (*models.Customer, error) {
	var before, after *models.AccountBalanceSnapshot
	var updated *models.Customer

	err := s.accountRepo.GetAccountByKeyForUpdate(ctx, key, func(customer *models.Customer) error {
		before = snapshotOf(customer)
		customer.Name = req.Name
		after = snapshotOf(customer)
		updated = customer.Clone()
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to update account",
			"key", key,
			"error", err.Error(),
		)
		return nil, err
	}

	s.audit(ctx, updated.ID, models.AuditActionUpdate, before, after)
	s.logger.Info("account updated successfully",
		"account_id", updated.ID,
	)
	return updated, nil
}

// DeleteAccount removes the account by id and returns the accounts that remain.
func (s *AccountServiceImpl) DeleteAccount(ctx context.Context, customer *models.Customer) ([]*models.Customer, error) {
	if err := s.accountRepo.DeleteAccount(ctx, customer.ID); err != nil {
		s.logger.Warn("failed to delete account",
			"account_id", customer.ID,
			"error", err.Error(),
		)
		return nil, err
	}

	s.audit(ctx, customer.ID, models.AuditActionDelete, snapshotOf(customer), nil)
	s.logger.Info("account deleted successfully",
		"account_id", customer.ID,
	)

	return s.accountRepo.ListAccounts(ctx)
}

func (s *AccountServiceImpl) GetAuditTrail(ctx context.Context, customer *models.Customer) ([]*models.AuditLog, error) {
	return s.auditRepo.GetByEntityID(ctx, models.EntityTypeAccount, customer.ID)
}

// audit records an audit entry. Failures are logged and never fail the
// operation that triggered them.
func (s *AccountServiceImpl) audit(ctx context.Context, accountID, action string, oldValue, newValue *models.AccountBalanceSnapshot) {
	if err := createAccountAuditLog(ctx, s.auditRepo, accountID, action, oldValue, newValue); err != nil {
		s.logger.Error("failed to create audit log",
			"account_id", accountID,
			"action", action,
			"error", err.Error(),
		)
	}
}

func snapshotOf(customer *models.Customer) *models.AccountBalanceSnapshot {
	return &models.AccountBalanceSnapshot{
		ID:      customer.ID,
		Name:    customer.Name,
		Balance: ledger.Balance(customer.Statement),
	}
}

func createAccountAuditLog(ctx context.Context, auditRepo repository.AuditRepository, accountID, action string, oldValue, newValue *models.AccountBalanceSnapshot) error {
	auditLog := &models.AuditLog{
		EntityType: models.EntityTypeAccount,
		EntityID:   accountID,
		Action:     action,
	}

	if oldValue != nil {
		raw, err := json.Marshal(oldValue)
		if err != nil {
			return err
		}
		auditLog.OldValue = raw
	}
	if newValue != nil {
		raw, err := json.Marshal(newValue)
		if err != nil {
			return err
		}
		auditLog.NewValue = raw
	}

	return auditRepo.Create(ctx, auditLog)
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/riteshkumar/account-ledger/internal/errors"
	"github.com/riteshkumar/account-ledger/internal/models"
	"github.com/riteshkumar/account-ledger/internal/repository"
)

type TransactionService interface {
	Deposit(ctx context.Context, key string, req *models.DepositRequest) (*models.Operation, error)
	Withdraw(ctx context.Context, key string, req *models.WithdrawRequest) (*models.Operation, error)
}

type TransactionServiceImpl struct {
	accountRepo repository.AccountRepository
	auditRepo   repository.AuditRepository
	logger      *slog.Logger
	now         func() time.Time
}

func NewTransactionService(accountRepo repository.AccountRepository, auditRepo repository.AuditRepository, logger *slog.Logger) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// SetClock replaces the clock used to timestamp operations.
func (s *TransactionServiceImpl) SetClock(now func() time.Time) {
	s.now = now
}

// Deposit appends a credit to the account statement. There is no funds check.
func (s *TransactionServiceImpl) Deposit(ctx context.Context, key string, req *models.DepositRequest) (*models.Operation, error) {
	if err := validateAmount(req.Amount); err != nil {
		s.logger.Warn("invalid deposit request",
			"key", key,
			"amount", req.Amount.String(),
			"error", err.Error(),
		)
		return nil, err
	}

	op := models.Operation{
		Type:        models.OperationCredit,
		Amount:      req.Amount,
		Description: req.Description,
	}
	return s.post(ctx, key, op, models.AuditActionCredit)
}

// Withdraw appends a debit when the current balance covers the amount. The
// balance check and the append happen under the same store lock.
func (s *TransactionServiceImpl) Withdraw(ctx context.Context, key string, req *models.WithdrawRequest) (*models.Operation, error) {
	if err := validateAmount(req.Amount); err != nil {
		s.logger.Warn("invalid withdraw request",
			"key", key,
			"amount", req.Amount.String(),
			"error", err.Error(),
		)
		return nil, err
	}

	op := models.Operation{
		Type:        models.OperationDebit,
		Amount:      req.Amount,
		Description: req.Description,
	}
	return s.post(ctx, key, op, models.AuditActionDebit)
}

func (s *TransactionServiceImpl) post(ctx context.Context, key string, op models.Operation, action string) (*models.Operation, error) {
	var before, after *models.AccountBalanceSnapshot

	err := s.accountRepo.GetAccountByKeyForUpdate(ctx, key, func(customer *models.Customer) error {
		before = snapshotOf(customer)

		if op.Type == models.OperationDebit && before.Balance.LessThan(op.Amount) {
			s.logger.Warn("insufficient funds",
				"account_id", customer.ID,
				"available_balance", before.Balance.String(),
				"requested_amount", op.Amount.String(),
			)
			return errors.ErrInsufficientFunds
		}

		op.CreatedAt = s.now()
		customer.Statement = append(customer.Statement, op)
		after = snapshotOf(customer)
		return nil
	})
	if err != nil {
		if !errors.IsInsufficientFunds(err) && !errors.IsNotFound(err) {
			s.logger.Error("failed to record operation",
				"key", key,
				"type", string(op.Type),
				"error", err.Error(),
			)
		}
		return nil, err
	}

	if err := createAccountAuditLog(ctx, s.auditRepo, before.ID, action, before, after); err != nil {
		s.logger.Error("failed to create audit log for operation",
			"account_id", before.ID,
			"error", err.Error(),
		)
		// the operation is recorded even if audit logging fails
	}

	s.logger.Info("operation recorded",
		"account_id", before.ID,
		"type", string(op.Type),
		"amount", op.Amount.String(),
		"balance", after.Balance.String(),
	)
	return &op, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.ErrInvalidAmount
	}
	return nil
}


package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/riteshkumar/account-ledger/internal/ledger"
	"github.com/riteshkumar/account-ledger/internal/models"
)

type StatementService interface {
	GetBalance(ctx context.Context, customer *models.Customer) decimal.Decimal
	GetStatement(ctx context.Context, customer *models.Customer) []models.Operation
	GetStatementByDate(ctx context.Context, customer *models.Customer, date string) []models.Operation
}

type StatementServiceImpl struct {
	location *time.Location
	logger   *slog.Logger
}

// NewStatementService builds a statement reader that interprets calendar
// dates in loc. A nil loc means time.Local.
func NewStatementService(loc *time.Location, logger *slog.Logger) *StatementServiceImpl {
	if loc == nil {
		loc = time.Local
	}
	return &StatementServiceImpl{
		location: loc,
		logger:   logger,
	}
}

func (s *StatementServiceImpl) GetBalance(ctx context.Context, customer *models.Customer) decimal.Decimal {
	return ledger.Balance(customer.Statement)
}

func (s *StatementServiceImpl) GetStatement(ctx context.Context, customer *models.Customer) []models.Operation {
	if customer.Statement == nil {
		return []models.Operation{}
	}
	return customer.Statement
}

// GetStatementByDate returns the operations recorded on the given
// YYYY-MM-DD date. A date that does not parse matches nothing.
func (s *StatementServiceImpl) GetStatementByDate(ctx context.Context, customer *models.Customer, date string) []models.Operation {
	day, err := ledger.ParseDate(date, s.location)
	if err != nil {
		s.logger.Warn("malformed statement date filter",
			"account_id", customer.ID,
			"date", date,
			"error", err.Error(),
		)
		return []models.Operation{}
	}
	return ledger.FilterByDate(customer.Statement, day, s.location)
}

// Package ledger holds the pure statement computations: folding a statement
// into a balance and selecting the operations recorded on a calendar day.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/riteshkumar/account-ledger/internal/models"
)

// DateLayout is the calendar date format accepted by the statement filter.
const DateLayout = "2006-01-02"

// Balance folds the statement from zero. Credits add, debits subtract and
// operations of any other type are skipped.
func Balance(statement []models.Operation) decimal.Decimal {
	balance := decimal.Zero
	for _, op := range statement {
		switch op.Type {
		case models.OperationCredit:
			balance = balance.Add(op.Amount)
		case models.OperationDebit:
			balance = balance.Sub(op.Amount)
		}
	}
	return balance
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// FilterByDate returns the operations whose timestamp, seen in loc, falls on
// the same calendar date as day. Order is preserved.
func FilterByDate(statement []models.Operation, day time.Time, loc *time.Location) []models.Operation {
	y, m, d := day.In(loc).Date()

	filtered := make([]models.Operation, 0)
	for _, op := range statement {
		oy, om, od := op.CreatedAt.In(loc).Date()
		if oy == y && om == m && od == d {
			filtered = append(filtered, op)
		}
	}
	return filtered
}

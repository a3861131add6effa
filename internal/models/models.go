package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts and balances go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type OperationType string

const (
	OperationCredit OperationType = "credit"
	OperationDebit  OperationType = "debit"
)

type Customer struct {
	ID        string      `json:"id"`
	Key       string      `json:"cpf"`
	Name      string      `json:"name"`
	Statement []Operation `json:"statement"`
}

// Clone returns a copy whose statement does not share a backing array with c.
func (c *Customer) Clone() *Customer {
	cp := *c
	cp.Statement = make([]Operation, len(c.Statement))
	copy(cp.Statement, c.Statement)
	return &cp
}

type Operation struct {
	Type        OperationType   `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type AuditLog struct {
	ID         string          `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Action     string          `json:"action"`
	OldValue   json.RawMessage `json:"old_value,omitempty"`
	NewValue   json.RawMessage `json:"new_value,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
	AuditActionCredit = "CREDIT"
	AuditActionDebit  = "DEBIT"
)

const (
	EntityTypeAccount = "ACCOUNT"
)

type CreateAccountRequest struct {
	Key  string `json:"cpf" validate:"required,max=64"`
	Name string `json:"name" validate:"required,max=200"`
}

type UpdateAccountRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type DepositRequest struct {
	Description string          `json:"description" validate:"max=500"`
	Amount      decimal.Decimal `json:"amount"`
}

type WithdrawRequest struct {
	Description string          `json:"description" validate:"max=500"`
	Amount      decimal.Decimal `json:"amount"`
}

type DeleteAccountResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type AccountBalanceSnapshot struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/riteshkumar/account-ledger/internal/errors"
	"github.com/riteshkumar/account-ledger/internal/metrics"
	"github.com/riteshkumar/account-ledger/internal/models"
	"github.com/riteshkumar/account-ledger/internal/service"
	u "github.com/riteshkumar/account-ledger/internal/utils"
)

type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

func NewTransactionHandler(transactionService service.TransactionService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

func (h *TransactionHandler) RegisterRoutes(resolved *mux.Router) {
	resolved.HandleFunc("/deposit", h.Deposit).Methods(http.MethodPost)
	resolved.HandleFunc("/withdraw", h.Withdraw).Methods(http.MethodPost)
}

func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	customer, ok := resolvedCustomer(w, r, h.logger)
	if !ok {
		return
	}

	var req models.DepositRequest
	if err := u.DecodeJSON(r, &req); err != nil {
		h.handleDecodeError(w, err, "deposit")
		return
	}

	if _, err := h.transactionService.Deposit(r.Context(), customer.Key, &req); err != nil {
		metrics.RecordOperation(string(models.OperationCredit), "rejected")
		h.handleServiceError(w, err, "deposit")
		return
	}

	metrics.RecordOperation(string(models.OperationCredit), "recorded")
	u.WriteEmpty(w, http.StatusCreated)
}

func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	customer, ok := resolvedCustomer(w, r, h.logger)
	if !ok {
		return
	}

	var req models.WithdrawRequest
	if err := u.DecodeJSON(r, &req); err != nil {
		h.handleDecodeError(w, err, "withdraw")
		return
	}

	if _, err := h.transactionService.Withdraw(r.Context(), customer.Key, &req); err != nil {
		metrics.RecordOperation(string(models.OperationDebit), "rejected")
		h.handleServiceError(w, err, "withdraw")
		return
	}

	metrics.RecordOperation(string(models.OperationDebit), "recorded")
	u.WriteEmpty(w, http.StatusCreated)
}

func (h *TransactionHandler) handleDecodeError(w http.ResponseWriter, err error, action string) {
	if errors.IsValidationError(err) {
		u.WriteError(w, http.StatusBadRequest, "validation error", err.Error())
		return
	}
	h.logger.Warn("invalid "+action+" request", "error", err.Error())
	u.WriteError(w, http.StatusBadRequest, "invalid request payload", err.Error())
}

func (h *TransactionHandler) handleServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.IsNotFound(err):
		u.WriteError(w, http.StatusBadRequest, "Customer not found", "")
	case errors.IsInsufficientFunds(err):
		u.WriteError(w, http.StatusBadRequest, "Insufficient funds", "")
	case errors.IsValidationError(err):
		u.WriteError(w, http.StatusBadRequest, "validation error", err.Error())
	case err == errors.ErrInvalidAmount:
		u.WriteError(w, http.StatusBadRequest, "invalid amount", err.Error())
	default:
		h.logger.Error("internal server error during "+action, "error", err.Error())
		u.WriteError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/riteshkumar/account-ledger/internal/errors"
	"github.com/riteshkumar/account-ledger/internal/models"
	"github.com/riteshkumar/account-ledger/internal/service"
	u "github.com/riteshkumar/account-ledger/internal/utils"
)

type AccountHandler struct {
	accountService        service.AccountService
	deleteReturnsAccounts bool
	logger                *slog.Logger
}

// NewAccountHandler builds the account handler. With deleteReturnsAccounts set,
// a delete answers with every remaining account instead of a confirmation.
func NewAccountHandler(accountService service.AccountService, deleteReturnsAccounts bool, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accountService:        accountService,
		deleteReturnsAccounts: deleteReturnsAccounts,
		logger:                logger,
	}
}

func (h *AccountHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/account", h.CreateAccount).Methods(http.MethodPost)
}

// RegisterResolvedRoutes adds the routes that need a resolved account. resolved
// must sit behind the AccountResolver.
func (h *AccountHandler) RegisterResolvedRoutes(resolved *mux.Router) {
	resolved.HandleFunc("/account", h.GetAccount).Methods(http.MethodGet)
	resolved.HandleFunc("/account", h.UpdateAccount).Methods(http.MethodPut)
	resolved.HandleFunc("/account", h.DeleteAccount).Methods(http.MethodDelete)
	resolved.HandleFunc("/account/audit", h.GetAuditTrail).Methods(http.MethodGet)
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccountRequest
	if err := u.DecodeJSON(r, &req); err != nil {
		h.handleDecodeError(w, err, "create account")
		return
	}

	if _, err := h.accountService.CreateAccount(r.Context(), &req); err != nil {
		h.handleServiceError(w, err, "create account")
		return
	}

	u.WriteEmpty(w, http.StatusCreated)
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	customer, ok := resolvedCustomer(w, r, h.logger)
	if !ok {
		return
	}

	u.WriteJSON(w, http.StatusOK, customer)
}

func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	customer, ok := resolvedCustomer(w, r, h.logger)
	if !ok {
		return
	}

	var req models.UpdateAccountRequest
	if err := u.DecodeJSON(r, &req); err != nil {
		h.handleDecodeError(w, err, "update account")
		return
	}

	if _, err := h.accountService.UpdateAccount(r.Context(), customer.Key, &req); err != nil {
		h.handleServiceError(w, err, "update account")
		return
	}

	u.WriteEmpty(w, http.StatusCreated)
}

func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	customer, ok := resolvedCustomer(w, r, h.logger)
	if !ok {
		return
	}

	remaining, err := h.accountService.DeleteAccount(r.Context(), customer)
	if err != nil {
		h.handleServiceError(w, err, "delete account")
		return
	}

	if h.deleteReturnsAccounts {
		u.WriteJSON(w, http.StatusOK, remaining)
		return
	}
	u.WriteJSON(w, http.StatusOK, models.DeleteAccountResponse{
		Message: "account deleted",
		ID:      customer.ID,
	})
}

func (h *AccountHandler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	customer, ok := resolvedCustomer(w, r, h.logger)
	if !ok {
		return
	}

	logs, err := h.accountService.GetAuditTrail(r.Context(), customer)
	if err != nil {
		h.handleServiceError(w, err, "get audit trail")
		return
	}

	u.WriteJSON(w, http.StatusOK, logs)
}

func (h *AccountHandler) handleDecodeError(w http.ResponseWriter, err error, operation string) {
	if errors.IsValidationError(err) {
		u.WriteError(w, http.StatusBadRequest, "validation error", err.Error())
		return
	}
	h.logger.Warn("invalid "+operation+" request", "error", err.Error())
	u.WriteError(w, http.StatusBadRequest, "invalid request payload", err.Error())
}

func (h *AccountHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.IsNotFound(err):
		u.WriteError(w, http.StatusBadRequest, "Customer not found", "")
	case errors.IsAlreadyExists(err):
		u.WriteError(w, http.StatusBadRequest, "Customer already exists", "")
	case errors.IsValidationError(err):
		u.WriteError(w, http.StatusBadRequest, "validation error", err.Error())
	case err == errors.ErrInvalidAccountKey:
		u.WriteError(w, http.StatusBadRequest, "invalid account key", "")
	default:
		h.logger.Error("internal server error during "+operation, "error", err.Error())
		u.WriteError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/riteshkumar/account-ledger/internal/service"
	u "github.com/riteshkumar/account-ledger/internal/utils"
)

type StatementHandler struct {
	statementService service.StatementService
	logger           *slog.Logger
}

func NewStatementHandler(statementService service.StatementService, logger *slog.Logger) *StatementHandler {
	return &StatementHandler{
		statementService: statementService,
		logger:           logger,
	}
}

func (h *StatementHandler) RegisterRoutes(resolved *mux.Router) {
	resolved.HandleFunc("/statement", h.GetStatement).Methods(http.MethodGet)
	resolved.HandleFunc("/statement/date", h.GetStatementByDate).Methods(http.MethodGet)
	resolved.HandleFunc("/balance", h.GetBalance).Methods(http.MethodGet)
}

func (h *StatementHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	customer, ok := resolvedCustomer(w, r, h.logger)
	if !ok {
		return
	}

	u.WriteJSON(w, http.StatusOK, h.statementService.GetStatement(r.Context(), customer))
}

func (h *StatementHandler) GetStatementByDate(w http.ResponseWriter, r *http.Request) {
	customer, ok := resolvedCustomer(w, r, h.logger)
	if !ok {
		return
	}

	date := r.URL.Query().Get("date")
	u.WriteJSON(w, http.StatusOK, h.statementService.GetStatementByDate(r.Context(), customer, date))
}

func (h *StatementHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	customer, ok := resolvedCustomer(w, r, h.logger)
	if !ok {
		return
	}

	balance := h.statementService.GetBalance(r.Context(), customer)
	u.WriteJSON(w, http.StatusOK, json.Number(balance.String()))
}

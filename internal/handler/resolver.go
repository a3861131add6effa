package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/riteshkumar/account-ledger/internal/errors"
	"github.com/riteshkumar/account-ledger/internal/models"
	"github.com/riteshkumar/account-ledger/internal/service"
	u "github.com/riteshkumar/account-ledger/internal/utils"
)

type customerCtxKey struct{}

// CustomerFromContext returns the account resolved for the request.
func CustomerFromContext(ctx context.Context) (*models.Customer, bool) {
	customer, ok := ctx.Value(customerCtxKey{}).(*models.Customer)
	return customer, ok
}

// AccountResolver turns the key header into a resolved account before any
// account handler runs.
type AccountResolver struct {
	accountService service.AccountService
	header         string
	logger         *slog.Logger
}

func NewAccountResolver(accountService service.AccountService, header string, logger *slog.Logger) *AccountResolver {
	return &AccountResolver{
		accountService: accountService,
		header:         header,
		logger:         logger,
	}
}

func (a *AccountResolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(a.header)

		customer, err := a.accountService.ResolveAccount(r.Context(), key)
		if err != nil {
			if errors.IsNotFound(err) {
				u.WriteError(w, http.StatusBadRequest, "Customer not found", "")
				return
			}
			a.logger.Error("internal server error during account resolution", "error", err.Error())
			u.WriteError(w, http.StatusInternalServerError, "internal server error", "")
			return
		}

		ctx := context.WithValue(r.Context(), customerCtxKey{}, customer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolvedCustomer fetches the account placed by the resolver. Routes are
// only registered behind the resolver, so a miss is a wiring bug.
func resolvedCustomer(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*models.Customer, bool) {
	customer, ok := CustomerFromContext(r.Context())
	if !ok {
		logger.Error("account handler reached without a resolved account", "path", r.URL.Path)
		u.WriteError(w, http.StatusInternalServerError, "internal server error", "")
		return nil, false
	}
	return customer, true
}

// Package httpapi maps the ledger onto a JSON REST API.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
)

// Ledger is the part of ledger.Service the REST API calls.
type Ledger interface {
	CreateGroup(ctx context.Context, in ledger.GroupInput) (*models.Group, error)
	GetGroup(ctx context.Context, groupID int64) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)
	UpdateGroup(ctx context.Context, groupID int64, in ledger.GroupUpdate) (*models.Group, error)
	DeleteGroup(ctx context.Context, groupID int64) error

	RecordExpense(ctx context.Context, groupID int64, in ledger.ExpenseInput) (*models.Expense, error)
	ListExpenses(ctx context.Context, groupID int64) ([]models.Expense, error)
	RecordSettlement(ctx context.Context, groupID int64, in ledger.SettlementInput) (*models.Settlement, error)
	ListSettlements(ctx context.Context, groupID int64) ([]models.Settlement, error)

	GetBalances(ctx context.Context, groupID int64) (calculator.Balances, error)
	GetSuggestedTransfers(ctx context.Context, groupID int64) ([]calculator.Transfer, error)
	GetSummary(ctx context.Context, groupID int64) (*ledger.Summary, error)
	GetMemberBalances(ctx context.Context, member models.MemberID) (*ledger.MemberBalances, error)
}

// Options configures the router. Zero values are valid.
type Options struct {
	// Metrics receives request counters and is served on /metrics when set.
	Metrics *metrics.Metrics

	// Ping backs /healthz. Nil means always healthy.
	Ping func(ctx context.Context) error
}

// NewRouter builds the REST routes plus health and metrics endpoints.
// Other handlers (the Connect service) can be mounted on the result.
func NewRouter(l Ledger, opts Options) chi.Router {
	h := &handler{ledger: l}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(opts.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ping != nil {
			if err := opts.Ping(r.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/groups", func(r chi.Router) {
		r.Post("/", h.createGroup)
		r.Get("/", h.listGroups)

		r.Route("/{groupID}", func(r chi.Router) {
			r.Get("/", h.getGroup)
			r.Patch("/", h.updateGroup)
			r.Delete("/", h.deleteGroup)

			r.Post("/expenses", h.recordExpense)
			r.Get("/expenses", h.listExpenses)
			r.Post("/settlements", h.recordSettlement)
			r.Get("/settlements", h.listSettlements)

			r.Get("/balances", h.getBalances)
			r.Get("/transfers", h.getTransfers)
			r.Get("/summary", h.getSummary)
		})
	})

	r.Get("/users/{memberID}/balances", h.getMemberBalances)

	return r
}

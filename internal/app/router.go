package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ledgerline/ledgerline/internal/catalog"
	"github.com/ledgerline/ledgerline/internal/contacts"
	"github.com/ledgerline/ledgerline/internal/documents"
	"github.com/ledgerline/ledgerline/internal/payments"
	"github.com/ledgerline/ledgerline/internal/summary"
	"github.com/ledgerline/ledgerline/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	ContactsHandler  *contacts.Handler
	CatalogHandler   *catalog.Handler
	DocumentsHandler *documents.Handler
	PaymentsHandler  *payments.Handler
	SummaryHandler   *summary.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with Ledgerline defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		params.ContactsHandler.MountRoutes(api)
		params.CatalogHandler.MountRoutes(api)
		params.DocumentsHandler.MountRoutes(api)
		params.PaymentsHandler.MountRoutes(api)
		params.SummaryHandler.MountRoutes(api)
		if params.JobsHandler != nil {
			api.Route("/jobs", func(jr chi.Router) {
				params.JobsHandler.MountRoutes(jr)
			})
		}
	})

	return r
}

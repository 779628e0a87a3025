package payments

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	"github.com/ledgerline/ledgerline/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.record)
		r.Get("/{id}", h.get)
		r.Delete("/{id}", h.void)
	})
}

type listPaymentsResponse struct {
	Data       []PaymentWithDocument `json:"data"`
	Pagination shared.Pagination     `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := shared.ParseListQuery(r)

	req := ListPaymentsRequest{
		Search: q.Search,
		Limit:  q.PerPage,
		Offset: q.Offset(),
	}
	if v := r.URL.Query().Get("documentId"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.DocumentID = &id
		}
	}
	req.DateFrom = parseDate(r.URL.Query().Get("dateFrom"))
	req.DateTo = parseDate(r.URL.Query().Get("dateTo"))

	payments, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list payments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if payments == nil {
		payments = []PaymentWithDocument{}
	}
	httpx.JSON(w, http.StatusOK, listPaymentsResponse{
		Data:       payments,
		Pagination: shared.NewPagination(q.Page, q.PerPage, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	payment, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	payment, err := h.service.Record(r.Context(), req)
	if err != nil {
		h.logger.Error("record payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) void(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Void(r.Context(), id); err != nil {
		h.logger.Error("void payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return 0, false
	}
	return id, true
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

package documents

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

// MountRoutes registers one REST collection per document kind. The handlers
// are shared; the kind is fixed by the route.
func (h *Handler) MountRoutes(r chi.Router) {
	for _, spec := range Specs() {
		kind := spec.Kind
		r.Route("/"+spec.Slug, func(r chi.Router) {
			r.Get("/", h.list(kind))
			r.Post("/", h.create(kind))
			r.Get("/{id}", h.get(kind))
			r.Put("/{id}", h.update(kind))
			r.Post("/{id}/void", h.void(kind))
			r.Delete("/{id}", h.delete(kind))
		})
	}
}

type listDocumentsResponse struct {
	Data       []DocumentWithParty `json:"data"`
	Pagination shared.Pagination   `json:"pagination"`
}

func (h *Handler) list(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := shared.ParseListQuery(r)

		req := ListDocumentsRequest{
			Kind:   kind,
			Search: q.Search,
			Limit:  q.PerPage,
			Offset: q.Offset(),
		}
		if v := r.URL.Query().Get("partyId"); v != "" {
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				req.PartyID = &id
			}
		}
		if v := r.URL.Query().Get("status"); v != "" {
			status := Status(v)
			req.Status = &status
		}
		req.DateFrom = parseDate(r.URL.Query().Get("dateFrom"))
		req.DateTo = parseDate(r.URL.Query().Get("dateTo"))

		docs, total, err := h.service.List(r.Context(), req)
		if err != nil {
			h.logger.Error("list documents", slog.String("kind", string(kind)), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		if docs == nil {
			docs = []DocumentWithParty{}
		}
		httpx.JSON(w, http.StatusOK, listDocumentsResponse{
			Data:       docs,
			Pagination: shared.NewPagination(q.Page, q.PerPage, total),
		})
	}
}

func (h *Handler) get(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.parseID(w, r)
		if !ok {
			return
		}
		doc, err := h.service.Get(r.Context(), kind, id)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, doc)
	}
}

func (h *Handler) create(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDocumentRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
			return
		}
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
		doc, err := h.service.Create(r.Context(), kind, req)
		if err != nil {
			h.logger.Error("create document", slog.String("kind", string(kind)), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, doc)
	}
}

func (h *Handler) update(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.parseID(w, r)
		if !ok {
			return
		}
		var req UpdateDocumentRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
			return
		}
		doc, err := h.service.Update(r.Context(), kind, id, req)
		if err != nil {
			h.logger.Error("update document", slog.String("kind", string(kind)), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, doc)
	}
}

func (h *Handler) void(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.parseID(w, r)
		if !ok {
			return
		}
		if err := h.service.Void(r.Context(), kind, id); err != nil {
			h.logger.Error("void document", slog.String("kind", string(kind)), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		doc, err := h.service.Get(r.Context(), kind, id)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, doc)
	}
}

func (h *Handler) delete(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.parseID(w, r)
		if !ok {
			return
		}
		if err := h.service.Delete(r.Context(), kind, id); err != nil {
			h.logger.Error("delete document", slog.String("kind", string(kind)), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
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

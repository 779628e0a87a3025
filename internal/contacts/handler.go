package contacts

import (
	"log/slog"
	"net/http"
	"strconv"

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

// MountRoutes registers client and vendor collections. Both are parties
// with a fixed type discriminator.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		h.mountFor(r, PartyClient)
	})
	r.Route("/vendors", func(r chi.Router) {
		h.mountFor(r, PartyVendor)
	})
}

func (h *Handler) mountFor(r chi.Router, partyType PartyType) {
	r.Get("/", h.list(partyType))
	r.Post("/", h.create(partyType))
	r.Get("/{id}", h.get(partyType))
	r.Put("/{id}", h.update(partyType))
	r.Delete("/{id}", h.delete(partyType))
}

type listPartiesResponse struct {
	Data       []Party           `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(partyType PartyType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := shared.ParseListQuery(r)

		req := ListPartiesRequest{
			Type:   partyType,
			Search: q.Search,
			Limit:  q.PerPage,
			Offset: q.Offset(),
		}
		if v := r.URL.Query().Get("isActive"); v != "" {
			isActive := v == "true"
			req.IsActive = &isActive
		}

		parties, total, err := h.service.List(r.Context(), req)
		if err != nil {
			h.logger.Error("list parties", slog.String("type", string(partyType)), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		if parties == nil {
			parties = []Party{}
		}
		httpx.JSON(w, http.StatusOK, listPartiesResponse{
			Data:       parties,
			Pagination: shared.NewPagination(q.Page, q.PerPage, total),
		})
	}
}

func (h *Handler) get(partyType PartyType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.parseID(w, r)
		if !ok {
			return
		}
		party, err := h.service.GetOfType(r.Context(), id, partyType)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, party)
	}
}

func (h *Handler) create(partyType PartyType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePartyRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
			return
		}
		party, err := h.service.Create(r.Context(), partyType, req)
		if err != nil {
			h.logger.Error("create party", slog.String("type", string(partyType)), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, party)
	}
}

func (h *Handler) update(partyType PartyType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.parseID(w, r)
		if !ok {
			return
		}
		if _, err := h.service.GetOfType(r.Context(), id, partyType); err != nil {
			httpx.RespondError(w, err)
			return
		}
		var req UpdatePartyRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
			return
		}
		party, err := h.service.Update(r.Context(), id, req)
		if err != nil {
			h.logger.Error("update party", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, party)
	}
}

func (h *Handler) delete(partyType PartyType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.parseID(w, r)
		if !ok {
			return
		}
		if _, err := h.service.GetOfType(r.Context(), id, partyType); err != nil {
			httpx.RespondError(w, err)
			return
		}
		if err := h.service.Delete(r.Context(), id); err != nil {
			h.logger.Error("delete party", slog.Any("error", err))
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

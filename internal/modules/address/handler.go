package address

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dcamacho/danishop-backend/internal/modules/auth"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes address book HTTP endpoints.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/addresses", func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Post("/{id}/default", h.setDefault)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	addresses, err := h.service.List(r.Context(), id.UserID)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, addresses)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req SaveAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	id, _ := auth.IdentityFrom(r.Context())
	a, err := h.service.Create(r.Context(), id.UserID, req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, a)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	addrID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid address id"})
		return
	}
	var req SaveAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	id, _ := auth.IdentityFrom(r.Context())
	a, err := h.service.Update(r.Context(), id.UserID, addrID, req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, a)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	addrID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid address id"})
		return
	}
	id, _ := auth.IdentityFrom(r.Context())
	if err := h.service.Delete(r.Context(), id.UserID, addrID); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setDefault(w http.ResponseWriter, r *http.Request) {
	addrID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid address id"})
		return
	}
	id, _ := auth.IdentityFrom(r.Context())
	a, err := h.service.SetDefault(r.Context(), id.UserID, addrID)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, a)
}

func respondErr(w http.ResponseWriter, err error) {
	msg := err.Error()
	code := http.StatusInternalServerError
	if strings.Contains(msg, "not found") {
		code = http.StatusNotFound
	} else if strings.Contains(msg, "invalid") {
		code = http.StatusBadRequest
	}
	respond(w, code, map[string]string{"error": msg})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

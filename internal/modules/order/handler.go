package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dcamacho/danishop-backend/internal/modules/auth"
	"github.com/dcamacho/danishop-backend/internal/modules/cart"
	"github.com/go-chi/chi/v5"
)

// GrantCookie names the cookie carrying a guest's order-access token.
const GrantCookie = "dani_order_access"

const maxReceiptSize = 10 << 20 // 10 MB

// Handler exposes order HTTP endpoints.
type Handler struct {
	service Service
	grants  *Grants
}

func NewHandler(service Service, grants *Grants) *Handler {
	return &Handler{service: service, grants: grants}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/api/v1/checkout", h.checkout)

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/track", h.track)
		r.Get("/code/{code}", h.getByCode)
		r.Post("/code/{code}/receipt", h.uploadReceipt)
		r.With(auth.RequireUser).Get("/mine", h.listMine)
	})

	r.Route("/api/v1/admin/orders", func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Get("/", h.listAll)
		r.Patch("/{id}/status", h.updateStatus)
		r.Patch("/{id}/payment-status", h.setPaymentStatus)
	})
}

// viewer assembles who is asking: the authenticated user, if any, plus the
// grant codes carried in the guest cookie.
func (h *Handler) viewer(r *http.Request) Viewer {
	v := Viewer{}
	if id, ok := auth.IdentityFrom(r.Context()); ok {
		uid := id.UserID
		v.UserID = &uid
	}
	if c, err := r.Cookie(GrantCookie); err == nil && c.Value != "" {
		v.Codes = h.grants.Parse(c.Value)
	}
	return v
}

// grantAccess extends the guest cookie with one more order code.
func (h *Handler) grantAccess(w http.ResponseWriter, r *http.Request, existing []string, code string) {
	token, err := h.grants.Issue(Grant(existing, code))
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     GrantCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	v := h.viewer(r)
	o, err := h.service.Checkout(r.Context(), cart.SessionID(w, r), v.UserID, req)
	if err != nil {
		if errors.Is(err, ErrCartEmpty) {
			respond(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		code := http.StatusInternalServerError
		if strings.Contains(err.Error(), "invalid checkout form") {
			code = http.StatusBadRequest
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}

	// Guests get a session-independent grant so they can come back to the
	// order page without tracking it first.
	if v.UserID == nil {
		h.grantAccess(w, r, v.Codes, o.Code)
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) getByCode(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respond(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	if !CanView(h.viewer(r), o) {
		respond(w, http.StatusForbidden, map[string]string{"error": "you are not authorized to view this order"})
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) track(w http.ResponseWriter, r *http.Request) {
	var req TrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.Track(r.Context(), req)
	if err != nil {
		if strings.Contains(err.Error(), "required") {
			respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		respond(w, http.StatusNotFound, map[string]string{"error": "no order matches that code and whatsapp"})
		return
	}

	// A successful lookup is the second way a guest earns viewing rights.
	h.grantAccess(w, r, h.viewer(r).Codes, o.Code)
	respond(w, http.StatusOK, o)
}

func (h *Handler) uploadReceipt(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respond(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	if !CanView(h.viewer(r), o) {
		respond(w, http.StatusForbidden, map[string]string{"error": "you are not authorized to view this order"})
		return
	}

	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid receipt: " + err.Error()})
		return
	}
	file, header, err := r.FormFile("receipt")
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid receipt: missing file"})
		return
	}
	defer file.Close()

	updated, err := h.service.UploadReceipt(r.Context(), o, header.Filename, file)
	if err != nil {
		code := http.StatusInternalServerError
		if strings.Contains(err.Error(), "invalid receipt") {
			code = http.StatusBadRequest
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, updated)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	orders, err := h.service.ListMine(r.Context(), id.UserID)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListAll(r.Context(),
		Status(r.URL.Query().Get("status")),
		PaymentStatus(r.URL.Query().Get("payment_status")))
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), Status(req.Status))
	if err != nil {
		code := http.StatusInternalServerError
		msg := err.Error()
		if strings.Contains(msg, "cannot transition") {
			code = http.StatusUnprocessableEntity
		} else if strings.Contains(msg, "not found") {
			code = http.StatusNotFound
		} else if strings.Contains(msg, "invalid") {
			code = http.StatusBadRequest
		}
		respond(w, code, map[string]string{"error": msg})
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) setPaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentStatus string `json:"payment_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.SetPaymentStatus(r.Context(), chi.URLParam(r, "id"), PaymentStatus(req.PaymentStatus))
	if err != nil {
		code := http.StatusInternalServerError
		msg := err.Error()
		if strings.Contains(msg, "not found") {
			code = http.StatusNotFound
		} else if strings.Contains(msg, "invalid") {
			code = http.StatusBadRequest
		}
		respond(w, code, map[string]string{"error": msg})
		return
	}
	respond(w, http.StatusOK, o)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

package payment

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dcamacho/danishop-backend/internal/modules/auth"
	"github.com/dcamacho/danishop-backend/internal/modules/order"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler exposes the payment endpoints: the customer-facing gateway order
// creation and the webhook the gateway calls back on.
type Handler struct {
	service     Service
	grants      *order.Grants
	webhookUser string
	webhookPass string
	logger      *zap.Logger
}

func NewHandler(service Service, grants *order.Grants, webhookUser, webhookPass string, logger *zap.Logger) *Handler {
	return &Handler{
		service:     service,
		grants:      grants,
		webhookUser: webhookUser,
		webhookPass: webhookPass,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/api/v1/orders/code/{code}/culqi", h.createRemoteOrder)
	r.Post("/api/v1/webhooks/culqi", h.webhook)
}

func (h *Handler) createRemoteOrder(w http.ResponseWriter, r *http.Request) {
	v := order.Viewer{}
	if id, ok := auth.IdentityFrom(r.Context()); ok {
		uid := id.UserID
		v.UserID = &uid
	}
	if c, err := r.Cookie(order.GrantCookie); err == nil && c.Value != "" {
		v.Codes = h.grants.Parse(c.Value)
	}

	remote, err := h.service.CreateRemoteOrder(r.Context(), chi.URLParam(r, "code"), v)
	if err != nil {
		msg := err.Error()
		code := http.StatusBadGateway
		if errors.Is(err, ErrForbidden) {
			code = http.StatusForbidden
		} else if strings.Contains(msg, "not found") {
			code = http.StatusNotFound
		} else if strings.Contains(msg, "already paid") || strings.Contains(msg, "link remote order") {
			code = http.StatusConflict
		}
		respond(w, code, map[string]string{"error": msg})
		return
	}
	respond(w, http.StatusCreated, remote)
}

// webhook receives gateway notifications. Anything we cannot act on is still
// acknowledged with 200 so the gateway stops redelivering; only bad
// credentials and unparsable payloads are refused.
func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	if h.webhookUser != "" {
		user, pass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(h.webhookUser)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(h.webhookPass)) != 1 {
			respond(w, http.StatusUnauthorized, map[string]string{"error": "invalid webhook credentials"})
			return
		}
	}

	var env WebhookEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	if err := h.service.HandleWebhook(r.Context(), env); err != nil {
		if strings.Contains(err.Error(), "decode") {
			respond(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		// Persistence failed; let the gateway redeliver.
		h.logger.Error("webhook processing failed", zap.Error(err))
		respond(w, http.StatusInternalServerError, map[string]string{"error": "processing failed"})
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

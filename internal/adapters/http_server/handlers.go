// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"ratecompass/internal/app"
	"ratecompass/internal/domain"
)

type Handlers struct {
	Module  *app.ModuleService
	Orders  *app.OrderService
	Reviews *app.ReviewService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Post("/v1/module/install", h.install)
	s.mux.Post("/v1/module/uninstall", h.uninstall)
	s.mux.Get("/v1/settings", h.getSettings)
	s.mux.Put("/v1/settings", h.saveSettings)

	s.mux.Post("/v1/hooks/order-validated", h.orderValidated)
	s.mux.Get("/v1/products/{id}/reviews", h.productReviews)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeHookError maps service errors: setup problems are the shop's to fix
// (409), anything coming back from RateCompass is a bad gateway.
func writeHookError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrNotConfigured):
		writeProblem(w, http.StatusConflict, "Not Configured", err.Error())
	case errors.Is(err, app.ErrDisabled):
		writeProblem(w, http.StatusConflict, "Module Disabled", err.Error())
	default:
		writeProblem(w, http.StatusBadGateway, "RateCompass Error", err.Error())
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func maskKey(k string) string {
	if len(k) <= 4 {
		return strings.Repeat("*", len(k))
	}
	return strings.Repeat("*", len(k)-4) + k[len(k)-4:]
}

func (h *Handlers) install(w http.ResponseWriter, r *http.Request) {
	if err := h.Module.Install(r.Context()); err != nil {
		log.Error().Err(err).Msg("install failed")
		writeProblem(w, http.StatusInternalServerError, "Install Failed", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) uninstall(w http.ResponseWriter, r *http.Request) {
	if err := h.Module.Uninstall(r.Context()); err != nil {
		log.Error().Err(err).Msg("uninstall failed")
		writeProblem(w, http.StatusInternalServerError, "Uninstall Failed", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) getSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.Module.Settings(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("load settings failed")
		writeProblem(w, http.StatusInternalServerError, "Settings Unavailable", "")
		return
	}
	s.APIKey = maskKey(s.APIKey)
	writeJSON(w, http.StatusOK, s)
}

func (h *Handlers) saveSettings(w http.ResponseWriter, r *http.Request) {
	var in domain.Settings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	in.Host, in.APIKey = strings.TrimSpace(in.Host), strings.TrimSpace(in.APIKey)
	if in.Host == "" || in.APIKey == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Settings", "host and apikey are required")
		return
	}

	id, err := h.Module.SaveSettings(r.Context(), in)
	if err != nil {
		log.Warn().Err(err).Msg("save settings failed")
		writeProblem(w, http.StatusBadGateway, "Could not save settings", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"compass_id": id})
}

func (h *Handlers) orderValidated(w http.ResponseWriter, r *http.Request) {
	var o domain.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Order", err.Error())
		return
	}

	conf, err := h.Orders.OrderValidated(r.Context(), o)
	if errors.Is(err, app.ErrDisabled) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		log.Warn().Int64("order_id", o.ID).Err(err).Msg("order hook failed")
		writeHookError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"confirmation": conf})
}

func (h *Handlers) productReviews(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	// shop product ids are numeric; anything else never reaches RateCompass,
	// which interpolates the id into its path unescaped
	if _, err := strconv.ParseInt(idStr, 10, 64); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}

	out, err := h.Reviews.ProductReviews(r.Context(), idStr)
	if err != nil {
		writeHookError(w, err)
		return
	}

	etag, body := calcETagAndBody(out)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write productReviews body")
	}
}

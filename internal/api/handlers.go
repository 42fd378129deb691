package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/totalfitness/kiosk-dispatch/internal/calllog"
	"github.com/totalfitness/kiosk-dispatch/internal/dispatch"
	"github.com/totalfitness/kiosk-dispatch/internal/push"
	"github.com/totalfitness/kiosk-dispatch/internal/voice"
)

// Handler provides the HTTP endpoints for call dispatch
type Handler struct {
	coordinator *dispatch.Coordinator
	log         *calllog.CallLog
	tokens      *push.TokenRegistry
	logger      zerolog.Logger
}

// NewHandler creates a new Handler
func NewHandler(coordinator *dispatch.Coordinator, log *calllog.CallLog, tokens *push.TokenRegistry, logger zerolog.Logger) *Handler {
	return &Handler{
		coordinator: coordinator,
		log:         log,
		tokens:      tokens,
		logger:      logger.With().Str("component", "api").Logger(),
	}
}

type startCallRequest struct {
	To string `json:"to"`
}

// StartCall handles POST /start-call
func (h *Handler) StartCall(w http.ResponseWriter, r *http.Request) {
	var req startCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.To == "" {
		h.logger.Error().Msg("missing phone number in request")
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": `Missing "to" field in body`})
		return
	}

	sid, err := h.coordinator.StartCall(r.Context(), req.To)
	if err != nil {
		h.logger.Error().Err(err).Msg("call failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Call failed", "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Call initiated", "sid": sid})
}

type callResponseRequest struct {
	SID      string `json:"sid"`
	Accepted *bool  `json:"accepted"`
}

// CallResponse handles POST /call-response
func (h *Handler) CallResponse(w http.ResponseWriter, r *http.Request) {
	var req callResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SID == "" || req.Accepted == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Missing sid or accepted flag."})
		return
	}

	if err := h.coordinator.RespondCall(req.SID, *req.Accepted); err != nil {
		if errors.Is(err, dispatch.ErrAlreadyResolved) {
			writeJSON(w, http.StatusConflict, map[string]any{"message": "Call already handled by another staff."})
			return
		}
		h.logger.Error().Err(err).Str("sid", req.SID).Msg("failed to record response")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to record response"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Response logged"})
}

// Logs handles GET /logs
func (h *Handler) Logs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.log.List())
}

// Voice handles POST /voice, the webhook Twilio fetches when the outbound
// call connects
func (h *Handler) Voice(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(voice.TwiML())
}

type tokenRequest struct {
	Token string `json:"token"`
}

// RegisterToken handles POST /register-token
func (h *Handler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Token != "" {
		h.tokens.Register(req.Token)
	}
	w.WriteHeader(http.StatusOK)
}

// UnregisterToken handles POST /unregister-token
func (h *Handler) UnregisterToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Token != "" {
		h.tokens.Unregister(req.Token)
	}
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

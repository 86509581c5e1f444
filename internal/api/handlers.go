// Package api exposes HTTP handlers for the schedule service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"example.com/schedule/internal/auth"
	"example.com/schedule/internal/domain"
	"example.com/schedule/internal/schedule"
)

// Handler coordinates HTTP requests with the schedule core.
type Handler struct {
	cache             *schedule.Cache
	orchestrator      *schedule.Orchestrator
	store             domain.Store
	avatarPlaceholder string
}

// NewHandler builds a Handler. avatarPlaceholder replaces missing profile
// avatars so clients never render an empty reference.
func NewHandler(cache *schedule.Cache, orchestrator *schedule.Orchestrator, store domain.Store, avatarPlaceholder string) *Handler {
	return &Handler{
		cache:             cache,
		orchestrator:      orchestrator,
		store:             store,
		avatarPlaceholder: avatarPlaceholder,
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/schedule", h.getSchedule)
	mux.HandleFunc("/v1/schedule/commit", h.commitSchedule)
	mux.HandleFunc("/v1/trainings/", h.trainingByID)
	mux.HandleFunc("/v1/exercisers", h.listExercisers)
	mux.HandleFunc("/v1/exercisers/", h.exerciserByID)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ScheduleResponse is the calendar's data contract: the session list plus the
// derived visible window and the cache's loading flag.
type ScheduleResponse struct {
	Items        []domain.Session `json:"items"`
	StartDayHour int              `json:"startDayHour"`
	EndDayHour   int              `json:"endDayHour"`
	Loading      bool             `json:"isLoading"`
}

// CommitResponse reports a commit event's outcome. Status is "applied" when a
// mutation settled and "dropped" when the event was a cancelled edit.
type CommitResponse struct {
	Status   string          `json:"status"`
	Redirect string          `json:"redirect,omitempty"`
	Training *domain.Session `json:"training,omitempty"`
}

func (h *Handler) getSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := h.readClaims(w, r)
	if !ok {
		return
	}

	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		ownerID = claims.Subject
	}

	sessions, err := h.cache.Get(r.Context(), ownerID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	window := domain.DeriveWindow(sessions)
	writeJSON(w, http.StatusOK, ScheduleResponse{
		Items:        sessions,
		StartDayHour: window.StartHour,
		EndDayHour:   window.EndHour,
		Loading:      h.cache.Loading(ownerID),
	})
}

func (h *Handler) commitSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeScheduleWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope schedule:write required")
		return
	}

	var event domain.CommitEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	cmd, ok := domain.TranslateCommit(claims.Subject, event)
	if !ok {
		// Cancelled edit: no store call, no notification.
		writeJSON(w, http.StatusOK, CommitResponse{Status: "dropped"})
		return
	}

	if cmd.Kind == domain.CommandAdd {
		if err := cmd.Fields.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
	}

	outcome, err := h.orchestrator.Apply(r.Context(), *cmd)
	if err != nil {
		if errors.Is(err, schedule.ErrMutationInFlight) {
			writeError(w, http.StatusConflict, "conflict", "mutation already in flight")
			return
		}
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CommitResponse{
		Status:   "applied",
		Redirect: outcome.Redirect,
		Training: outcome.Session,
	})
}

func (h *Handler) trainingByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	if _, ok := h.readClaims(w, r); !ok {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/trainings/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing training id")
		return
	}

	session, err := h.store.GetSession(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) listExercisers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := h.readClaims(w, r)
	if !ok {
		return
	}

	profiles, err := h.store.ListProfiles(r.Context(), claims.Subject)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	out := make([]domain.Profile, 0, len(profiles))
	for _, profile := range profiles {
		out = append(out, h.renderProfile(profile))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) exerciserByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	if _, ok := h.readClaims(w, r); !ok {
		return
	}

	ownerID := strings.TrimPrefix(r.URL.Path, "/v1/exercisers/")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing exerciser id")
		return
	}

	profile, err := h.store.GetProfile(r.Context(), ownerID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.renderProfile(*profile))
}

// readClaims enforces the read scope shared by every query endpoint.
func (h *Handler) readClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	if !claims.HasScope(auth.ScopeScheduleRead) && !claims.HasScope(auth.ScopeScheduleWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope schedule:read required")
		return nil, false
	}
	return claims, true
}

// renderProfile substitutes the avatar placeholder so the client never
// receives an empty reference.
func (h *Handler) renderProfile(profile domain.Profile) domain.Profile {
	if profile.Avatar == "" {
		profile.Avatar = h.avatarPlaceholder
	}
	return profile
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrProfileNotFound) {
		writeError(w, http.StatusNotFound, "not_found", userMessage(err))
		return
	}
	writeError(w, http.StatusInternalServerError, "store_error", userMessage(err))
}

func userMessage(err error) string {
	var storeErr *domain.StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Message
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitpolyacademy/backend/internal/models"
	"github.com/hitpolyacademy/backend/libs/handlers"
	"go.uber.org/zap"
)

// SessionRegistry is the interface that wraps listing of open player sessions
type SessionRegistry interface {
	// Sessions lists the open player sessions
	//
	// Returns the sessions ordered by user and course.
	Sessions() []models.SessionInfo
}

// SessionSweeper is the interface that wraps on-demand eviction of idle sessions
type SessionSweeper interface {
	// SweepNow evicts idle sessions immediately
	//
	// Returns the number of evicted sessions.
	SweepNow() int
}

// AdminSessionHandler handles HTTP requests for player session administration
type AdminSessionHandler struct {
	handlers.BaseHandler
	registry SessionRegistry
	sweeper  SessionSweeper
}

// NewAdminSessionHandler creates a new admin session handler
func NewAdminSessionHandler(registry SessionRegistry, sweeper SessionSweeper, logger *zap.Logger) *AdminSessionHandler {
	return &AdminSessionHandler{
		registry:    registry,
		sweeper:     sweeper,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all admin session handler routes
func (h *AdminSessionHandler) RegisterRoutes(r chi.Router, apiKeyMiddleware func(http.Handler) http.Handler) {
	r.Route("/admin/sessions", func(r chi.Router) {
		r.Use(apiKeyMiddleware)
		r.Get("/", h.ListSessions)
		r.Post("/sweep", h.Sweep)
	})
}

// ListSessions handles GET /admin/sessions
// @Summary List open player sessions
// @Tags admin
// @Produce json
// @Security ApiKeyHeader
// @Success 200 {array} models.SessionInfo "Open sessions"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /admin/sessions [get]
func (h *AdminSessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, h.registry.Sessions())
}

// Sweep handles POST /admin/sessions/sweep
// @Summary Evict idle player sessions
// @Description Run the idle session sweep now instead of waiting for the schedule
// @Tags admin
// @Produce json
// @Security ApiKeyHeader
// @Success 200 {object} models.SweepResponse "Sweep result"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /admin/sessions/sweep [post]
func (h *AdminSessionHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	removed := h.sweeper.SweepNow()
	remaining := len(h.registry.Sessions())
	h.Logger.Info("manual session sweep", zap.Int("removed", removed), zap.Int("remaining", remaining))

	h.RespondJSON(w, http.StatusOK, models.SweepResponse{Removed: removed, Remaining: remaining})
}

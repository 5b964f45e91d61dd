package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hitpolyacademy/backend/internal/academy"
	"github.com/hitpolyacademy/backend/internal/models"
	"github.com/hitpolyacademy/backend/internal/services"
	authMiddleware "github.com/hitpolyacademy/backend/libs/auth/middleware"
	"github.com/hitpolyacademy/backend/libs/handlers"
	"go.uber.org/zap"
)

const (
	clientCookieName   = "player_client"
	clientHeaderName   = "X-Player-Client"
	clientCookieMaxAge = 365 * 24 * 60 * 60
)

// PlayerService is the interface that wraps methods for course player operations
type PlayerService interface {
	// Open loads a course for a user and registers the player session
	//
	// "ctx" is the context for the request.
	// "viewer" identifies the user, or the browser of an anonymous visitor.
	// "courseID" is the ID of the course.
	//
	// Returns the player view and an error if any.
	Open(ctx context.Context, viewer models.Viewer, courseID int) (*models.PlayerView, error)
	// View returns the current view of an open session
	//
	// "ctx" is the context for the request.
	// "viewer" identifies the user or anonymous browser.
	// "courseID" is the ID of the course.
	//
	// Returns the player view and an error if any.
	View(ctx context.Context, viewer models.Viewer, courseID int) (*models.PlayerView, error)
	// Next advances to the following class
	//
	// "ctx" is the context for the request.
	// "viewer" identifies the user or anonymous browser.
	// "courseID" is the ID of the course.
	//
	// Returns the player view and an error if any.
	Next(ctx context.Context, viewer models.Viewer, courseID int) (*models.PlayerView, error)
	// Previous returns to the preceding class
	//
	// "ctx" is the context for the request.
	// "viewer" identifies the user or anonymous browser.
	// "courseID" is the ID of the course.
	//
	// Returns the player view and an error if any.
	Previous(ctx context.Context, viewer models.Viewer, courseID int) (*models.PlayerView, error)
	// Jump selects an arbitrary class of the course
	//
	// "ctx" is the context for the request.
	// "viewer" identifies the user or anonymous browser.
	// "courseID" is the ID of the course.
	// "classID" is the ID of the class to select.
	//
	// Returns the player view and an error if any.
	Jump(ctx context.Context, viewer models.Viewer, courseID, classID int) (*models.PlayerView, error)
	// MarkProgress records completion and watched time of a class
	//
	// "ctx" is the context for the request.
	// "viewer" identifies the user or anonymous browser.
	// "courseID" is the ID of the course.
	// "classID" is the ID of the class.
	// "completed" is the new completion flag.
	// "watchedSeconds" is the watched time in seconds.
	//
	// Returns whether the API accepted the change and an error if the session or class is missing.
	MarkProgress(ctx context.Context, viewer models.Viewer, courseID, classID int, completed bool, watchedSeconds int) (bool, error)
	// Toggle flips the completion of a class
	//
	// "ctx" is the context for the request.
	// "viewer" identifies the user or anonymous browser.
	// "courseID" is the ID of the course.
	// "classID" is the ID of the class.
	//
	// Returns whether the API accepted the change and an error if the session or class is missing.
	Toggle(ctx context.Context, viewer models.Viewer, courseID, classID int) (bool, error)
	// VideoEnded marks a class completed when its video finished playing
	//
	// "ctx" is the context for the request.
	// "viewer" identifies the user or anonymous browser.
	// "courseID" is the ID of the course.
	// "classID" is the ID of the class.
	// "watchedSeconds" is the watched time in seconds.
	//
	// Returns whether the API accepted the change and an error if the session or class is missing.
	VideoEnded(ctx context.Context, viewer models.Viewer, courseID, classID int, watchedSeconds int) (bool, error)
	// Close removes a player session
	//
	// "ctx" is the context for the request.
	// "viewer" identifies the user or anonymous browser.
	// "courseID" is the ID of the course.
	//
	// Returns an error if any.
	Close(ctx context.Context, viewer models.Viewer, courseID int) error
	// Summary counts the completed classes of a course
	//
	// "ctx" is the context for the request.
	// "viewer" identifies the user or anonymous browser.
	// "courseID" is the ID of the course.
	//
	// Returns the course summary and an error if any.
	Summary(ctx context.Context, viewer models.Viewer, courseID int) (*models.CourseSummary, error)
	// Resume returns the class to continue watching
	//
	// "ctx" is the context for the request.
	// "viewer" identifies the user or anonymous browser.
	// "courseID" is the ID of the course.
	//
	// Returns the resume point and an error if any.
	Resume(ctx context.Context, viewer models.Viewer, courseID int) (*models.ResumePoint, error)
}

// PlayerHandler handles HTTP requests for course player operations
type PlayerHandler struct {
	handlers.BaseHandler
	service PlayerService
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(svc PlayerService, logger *zap.Logger) *PlayerHandler {
	return &PlayerHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all player handler routes
func (h *PlayerHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/courses/{courseId}", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Route("/player", func(r chi.Router) {
			r.Post("/", h.Open)
			r.Get("/", h.View)
			r.Delete("/", h.Close)
			r.Post("/next", h.Next)
			r.Post("/previous", h.Previous)
			r.Post("/jump/{classId}", h.Jump)
			r.Get("/summary", h.Summary)
			r.Get("/resume", h.Resume)
		})
		r.Route("/classes/{classId}", func(r chi.Router) {
			r.Put("/progress", h.MarkProgress)
			r.Post("/toggle", h.Toggle)
			r.Post("/ended", h.VideoEnded)
		})
	})
}

// Open handles POST /courses/{courseId}/player
// @Summary Open a course player
// @Description Load a course with the caller's progress and restore the last watched class. Anonymous callers get a session without progress, keyed by the player_client cookie or X-Player-Client header, issued here when missing.
// @Param X-Player-Client header string false "Anonymous client id"
// @Tags player
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.PlayerView "Player view"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Invalid token"
// @Failure 502 {object} map[string]string "Academy API failure"
// @Router /courses/{courseId}/player [post]
func (h *PlayerHandler) Open(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.pathID(w, r, "courseId")
	if !ok {
		return
	}

	view, err := h.service.Open(r.Context(), h.viewer(w, r, true), courseID)
	if err != nil {
		h.respondServiceError(w, err, "failed to open player")
		return
	}

	h.RespondJSON(w, http.StatusOK, view)
}

// View handles GET /courses/{courseId}/player
// @Summary Get the player view
// @Description Get the current view of an open player session
// @Tags player
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.PlayerView "Player view"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /courses/{courseId}/player [get]
func (h *PlayerHandler) View(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, h.service.View)
}

// Next handles POST /courses/{courseId}/player/next
// @Summary Go to the next class
// @Description Advance to the following class; at the last class the view is unchanged
// @Tags player
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.PlayerView "Player view"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /courses/{courseId}/player/next [post]
func (h *PlayerHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, h.service.Next)
}

// Previous handles POST /courses/{courseId}/player/previous
// @Summary Go to the previous class
// @Description Return to the preceding class; at the first class the view is unchanged
// @Tags player
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.PlayerView "Player view"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /courses/{courseId}/player/previous [post]
func (h *PlayerHandler) Previous(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, h.service.Previous)
}

// Jump handles POST /courses/{courseId}/player/jump/{classId}
// @Summary Jump to a class
// @Description Select an arbitrary class of the course
// @Tags player
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Param classId path int true "Class ID"
// @Success 200 {object} models.PlayerView "Player view"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Session or class not found"
// @Router /courses/{courseId}/player/jump/{classId} [post]
func (h *PlayerHandler) Jump(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.pathID(w, r, "courseId")
	if !ok {
		return
	}
	classID, ok := h.pathID(w, r, "classId")
	if !ok {
		return
	}

	view, err := h.service.Jump(r.Context(), h.viewer(w, r, false), courseID, classID)
	if err != nil {
		h.respondServiceError(w, err, "failed to jump to class")
		return
	}

	h.RespondJSON(w, http.StatusOK, view)
}

// Close handles DELETE /courses/{courseId}/player
// @Summary Close the player
// @Description Remove the player session of the caller
// @Tags player
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Success 204 "Session closed"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /courses/{courseId}/player [delete]
func (h *PlayerHandler) Close(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.pathID(w, r, "courseId")
	if !ok {
		return
	}

	if err := h.service.Close(r.Context(), h.viewer(w, r, false), courseID); err != nil {
		h.respondServiceError(w, err, "failed to close player")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /courses/{courseId}/player/summary
// @Summary Get course progress summary
// @Description Count completed classes of the course overall and per module
// @Tags player
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.CourseSummary "Course summary"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /courses/{courseId}/player/summary [get]
func (h *PlayerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.pathID(w, r, "courseId")
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), h.viewer(w, r, false), courseID)
	if err != nil {
		h.respondServiceError(w, err, "failed to get summary")
		return
	}

	h.RespondJSON(w, http.StatusOK, summary)
}

// Resume handles GET /courses/{courseId}/player/resume
// @Summary Get the resume point
// @Description Get the current class with its resources, progress and neighbours
// @Tags player
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.ResumePoint "Resume point"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /courses/{courseId}/player/resume [get]
func (h *PlayerHandler) Resume(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.pathID(w, r, "courseId")
	if !ok {
		return
	}

	point, err := h.service.Resume(r.Context(), h.viewer(w, r, false), courseID)
	if err != nil {
		h.respondServiceError(w, err, "failed to get resume point")
		return
	}

	h.RespondJSON(w, http.StatusOK, point)
}

// MarkProgress handles PUT /courses/{courseId}/classes/{classId}/progress
// @Summary Save class progress
// @Description Record completion and watched time of a class. The first save of a class creates its record, later saves update it.
// @Tags progress
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Param classId path int true "Class ID"
// @Param request body models.MarkProgressRequest true "Progress"
// @Success 200 {object} models.MutationResponse "Saved"
// @Failure 400 {object} models.MutationResponse "Bad request"
// @Failure 401 {object} models.MutationResponse "Authentication required"
// @Failure 404 {object} models.MutationResponse "Session or class not found"
// @Failure 502 {object} models.MutationResponse "Academy API rejected the change"
// @Router /courses/{courseId}/classes/{classId}/progress [put]
func (h *PlayerHandler) MarkProgress(w http.ResponseWriter, r *http.Request) {
	var req models.MarkProgressRequest
	h.mutate(w, r, &req, func(ctx context.Context, viewer models.Viewer, courseID, classID int) (bool, error) {
		return h.service.MarkProgress(ctx, viewer, courseID, classID, *req.Completed, req.WatchedSeconds)
	})
}

// Toggle handles POST /courses/{courseId}/classes/{classId}/toggle
// @Summary Toggle class completion
// @Description Mark a class complete or incomplete regardless of watched time
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Param classId path int true "Class ID"
// @Success 200 {object} models.MutationResponse "Saved"
// @Failure 400 {object} models.MutationResponse "Bad request"
// @Failure 401 {object} models.MutationResponse "Authentication required"
// @Failure 404 {object} models.MutationResponse "Session or class not found"
// @Failure 502 {object} models.MutationResponse "Academy API rejected the change"
// @Router /courses/{courseId}/classes/{classId}/toggle [post]
func (h *PlayerHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, nil, h.service.Toggle)
}

// VideoEnded handles POST /courses/{courseId}/classes/{classId}/ended
// @Summary Report a finished video
// @Description Mark a class completed with the reported watched time
// @Tags progress
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Param classId path int true "Class ID"
// @Param request body models.VideoEndedRequest false "Watched time"
// @Success 200 {object} models.MutationResponse "Saved"
// @Failure 400 {object} models.MutationResponse "Bad request"
// @Failure 401 {object} models.MutationResponse "Authentication required"
// @Failure 404 {object} models.MutationResponse "Session or class not found"
// @Failure 502 {object} models.MutationResponse "Academy API rejected the change"
// @Router /courses/{courseId}/classes/{classId}/ended [post]
func (h *PlayerHandler) VideoEnded(w http.ResponseWriter, r *http.Request) {
	var req models.VideoEndedRequest
	h.mutate(w, r, &req, func(ctx context.Context, viewer models.Viewer, courseID, classID int) (bool, error) {
		return h.service.VideoEnded(ctx, viewer, courseID, classID, req.WatchedSeconds)
	})
}

// respondView serves the read-and-navigate endpoints that only take a course id
func (h *PlayerHandler) respondView(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, viewer models.Viewer, courseID int) (*models.PlayerView, error)) {
	courseID, ok := h.pathID(w, r, "courseId")
	if !ok {
		return
	}

	view, err := fn(r.Context(), h.viewer(w, r, false), courseID)
	if err != nil {
		h.respondServiceError(w, err, "failed to get player view")
		return
	}

	h.RespondJSON(w, http.StatusOK, view)
}

// mutate parses ids and an optional body, then runs a progress change for an authenticated user
func (h *PlayerHandler) mutate(w http.ResponseWriter, r *http.Request, body any, fn func(ctx context.Context, viewer models.Viewer, courseID, classID int) (bool, error)) {
	courseID, err := parseID(chi.URLParam(r, "courseId"))
	if err != nil {
		h.RespondJSON(w, http.StatusBadRequest, models.MutationResponse{Error: "invalid courseId"})
		return
	}
	classID, err := parseID(chi.URLParam(r, "classId"))
	if err != nil {
		h.RespondJSON(w, http.StatusBadRequest, models.MutationResponse{Error: "invalid classId"})
		return
	}
	if body != nil {
		if err := h.DecodeJSON(r, body); err != nil {
			h.RespondJSON(w, http.StatusBadRequest, models.MutationResponse{Error: err.Error()})
			return
		}
	}

	userID := currentUser(r)
	if userID == 0 {
		h.RespondJSON(w, http.StatusUnauthorized, models.MutationResponse{Error: "authentication required"})
		return
	}

	ok, err := fn(r.Context(), models.UserViewer(userID), courseID, classID)
	if err != nil {
		status, message := h.classify(err, "failed to save progress")
		h.RespondJSON(w, status, models.MutationResponse{Error: message})
		return
	}
	if !ok {
		h.RespondJSON(w, http.StatusBadGateway, models.MutationResponse{Error: "academy server did not accept the progress change"})
		return
	}

	h.RespondJSON(w, http.StatusOK, models.MutationResponse{Success: true})
}

// pathID parses a positive id path parameter, answering 400 when it is invalid
func (h *PlayerHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := parseID(chi.URLParam(r, name))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func (h *PlayerHandler) respondServiceError(w http.ResponseWriter, err error, action string) {
	status, message := h.classify(err, action)
	h.RespondError(w, status, message)
}

// classify maps a service error to an HTTP status and a client message
func (h *PlayerHandler) classify(err error, action string) (int, string) {
	switch {
	case errors.Is(err, services.ErrCourseIDRequired), errors.Is(err, services.ErrClientIDRequired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrClassNotInCourse):
		return http.StatusNotFound, err.Error()
	case academy.IsUpstream(err):
		h.Logger.Warn(action, zap.Error(err))
		return http.StatusBadGateway, academy.Describe(err)
	default:
		h.Logger.Error(action, zap.Error(err))
		return http.StatusInternalServerError, "internal server error"
	}
}

// viewer identifies the caller. Anonymous callers are told apart by the client id kept in
// the player cookie or the X-Player-Client header; with issue set a missing or invalid id is
// replaced by a new one, returned in both the cookie and the header.
func (h *PlayerHandler) viewer(w http.ResponseWriter, r *http.Request, issue bool) models.Viewer {
	if userID := currentUser(r); userID > 0 {
		return models.UserViewer(userID)
	}

	if clientID := requestClientID(r); clientID != "" {
		return models.AnonymousViewer(clientID)
	}
	if !issue {
		return models.AnonymousViewer("")
	}

	clientID := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     clientCookieName,
		Value:    clientID,
		Path:     "/",
		MaxAge:   clientCookieMaxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(clientHeaderName, clientID)
	return models.AnonymousViewer(clientID)
}

// requestClientID returns the client id of the request, cookie first; only UUIDs are accepted
func requestClientID(r *http.Request) string {
	candidates := []string{r.Header.Get(clientHeaderName)}
	if c, err := r.Cookie(clientCookieName); err == nil {
		candidates = append([]string{c.Value}, candidates...)
	}
	for _, raw := range candidates {
		if id, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
			return id.String()
		}
	}
	return ""
}

// currentUser returns the authenticated user id or 0 for anonymous requests
func currentUser(r *http.Request) int {
	userID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		return 0
	}
	return userID
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive")
	}
	return id, nil
}

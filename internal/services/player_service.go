package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hitpolyacademy/backend/internal/models"
	"github.com/hitpolyacademy/backend/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrSessionNotFound is returned for operations on a player session that is not open
	ErrSessionNotFound = errors.New("player session not found")
	// ErrClientIDRequired is returned when an anonymous viewer carries no client id
	ErrClientIDRequired = errors.New("client id is required for anonymous viewers")
)

// ContentLoader defines methods for loading course content
type ContentLoader interface {
	// Load fetches the structure of a course
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns the course content and an error if any.
	Load(ctx context.Context, courseID int) (*models.CourseContent, error)
}

type sessionKey struct {
	userID   int
	clientID string
	courseID int
}

func newSessionKey(viewer models.Viewer, courseID int) sessionKey {
	return sessionKey{userID: viewer.UserID, clientID: viewer.ClientID, courseID: courseID}
}

// playerSession is the player state of one viewer on one course.
// mu serializes navigation and mutations so responses apply in order.
type playerSession struct {
	mu       sync.Mutex
	viewer   models.Viewer
	courseID int
	content  *models.CourseContent
	progress *progressStore
	nav      *navigator
	mutator  *progressMutator
	openedAt time.Time
	lastUsed atomic.Int64
}

type playerService struct {
	loader ContentLoader
	client ProgressClient
	state  storage.StateStore
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[sessionKey]*playerSession
}

// NewPlayerService creates a new player service
func NewPlayerService(loader ContentLoader, client ProgressClient, state storage.StateStore, logger *zap.Logger) *playerService {
	return &playerService{
		loader:   loader,
		client:   client,
		state:    state,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[sessionKey]*playerSession),
	}
}

// Open loads a course for a viewer and registers the session, replacing any previous one
// of the same viewer. Anonymous viewers are kept apart by their client id.
//
// Content failures fail the open. Progress failures are logged and the view is built from
// the restored mirror with ProgressStale set.
func (s *playerService) Open(ctx context.Context, viewer models.Viewer, courseID int) (*models.PlayerView, error) {
	if courseID <= 0 {
		return nil, ErrCourseIDRequired
	}
	viewer, err := checkViewer(viewer)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With(zap.Int("user_id", viewer.UserID), zap.Int("course_id", courseID))
	progress := NewProgressStore(s.client, s.state, viewer, courseID, logger)
	progress.Restore(ctx)

	var content *models.CourseContent
	var g errgroup.Group
	g.Go(func() error {
		var err error
		content, err = s.loader.Load(ctx, courseID)
		return err
	})
	g.Go(func() error {
		// failures are logged by the store and surface as ProgressStale
		_ = progress.Load(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	nav := NewNavigator(s.state, viewer, courseID, logger)
	nav.Init(ctx, content)

	now := s.now()
	sess := &playerSession{
		viewer:   viewer,
		courseID: courseID,
		content:  content,
		progress: progress,
		nav:      nav,
		mutator:  NewProgressMutator(s.client, progress, logger),
		openedAt: now,
	}
	sess.lastUsed.Store(now.UnixNano())

	view := sess.view()

	s.mu.Lock()
	s.sessions[newSessionKey(viewer, courseID)] = sess
	s.mu.Unlock()

	logger.Info("player session opened",
		zap.Bool("anonymous", viewer.Anonymous()),
		zap.Bool("progress_stale", view.ProgressStale),
	)
	return view, nil
}

// View returns the current view of an open session
func (s *playerService) View(ctx context.Context, viewer models.Viewer, courseID int) (*models.PlayerView, error) {
	sess, err := s.session(viewer, courseID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// Next advances to the following class; at the last class the view is unchanged
func (s *playerService) Next(ctx context.Context, viewer models.Viewer, courseID int) (*models.PlayerView, error) {
	sess, err := s.session(viewer, courseID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.nav.Next(ctx)
	return sess.view(), nil
}

// Previous returns to the preceding class; at the first class the view is unchanged
func (s *playerService) Previous(ctx context.Context, viewer models.Viewer, courseID int) (*models.PlayerView, error) {
	sess, err := s.session(viewer, courseID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.nav.Previous(ctx)
	return sess.view(), nil
}

// Jump selects an arbitrary class of the course
func (s *playerService) Jump(ctx context.Context, viewer models.Viewer, courseID, classID int) (*models.PlayerView, error) {
	sess, err := s.session(viewer, courseID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.nav.Jump(ctx, classID); err != nil {
		return nil, err
	}
	return sess.view(), nil
}

// MarkProgress records completion and watched time of a class.
// The error reports a missing session or class; the flag reports whether the API accepted the change.
func (s *playerService) MarkProgress(ctx context.Context, viewer models.Viewer, courseID, classID int, completed bool, watchedSeconds int) (bool, error) {
	return s.mutate(viewer, courseID, classID, func(m *progressMutator) bool {
		return m.MarkProgress(ctx, classID, completed, watchedSeconds)
	})
}

// Toggle flips the completion of a class
func (s *playerService) Toggle(ctx context.Context, viewer models.Viewer, courseID, classID int) (bool, error) {
	return s.mutate(viewer, courseID, classID, func(m *progressMutator) bool {
		return m.ToggleCompletion(ctx, classID)
	})
}

// VideoEnded marks a class completed when its video finished playing
func (s *playerService) VideoEnded(ctx context.Context, viewer models.Viewer, courseID, classID int, watchedSeconds int) (bool, error) {
	return s.mutate(viewer, courseID, classID, func(m *progressMutator) bool {
		return m.CompleteOnVideoEnd(ctx, classID, watchedSeconds)
	})
}

func (s *playerService) mutate(viewer models.Viewer, courseID, classID int, fn func(m *progressMutator) bool) (bool, error) {
	sess, err := s.session(viewer, courseID)
	if err != nil {
		return false, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.nav.Contains(classID) {
		return false, ErrClassNotInCourse
	}
	return fn(sess.mutator), nil
}

// Close removes a session
func (s *playerService) Close(ctx context.Context, viewer models.Viewer, courseID int) error {
	viewer, err := checkViewer(viewer)
	if err != nil {
		return err
	}
	key := newSessionKey(viewer, courseID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[key]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, key)
	s.logger.Info("player session closed", zap.Int("user_id", viewer.UserID), zap.Int("course_id", courseID))
	return nil
}

// Summary counts the completed classes of an open session per module
func (s *playerService) Summary(ctx context.Context, viewer models.Viewer, courseID int) (*models.CourseSummary, error) {
	sess, err := s.session(viewer, courseID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	completed := make(map[int]struct{})
	for _, id := range sess.nav.FilterKnown(sess.progress.Snapshot().CompletedVideoIDs) {
		completed[id] = struct{}{}
	}

	summary := &models.CourseSummary{
		CourseID: courseID,
		Modules:  make([]models.ModuleSummary, 0, len(sess.content.Modules)),
	}
	for _, m := range sess.content.Modules {
		ms := models.ModuleSummary{
			ModuleID:     m.ModuleID,
			Title:        m.Title,
			TotalClasses: len(m.Classes),
		}
		for _, c := range m.Classes {
			if _, ok := completed[c.ID]; ok {
				ms.CompletedClasses++
			}
		}
		summary.TotalClasses += ms.TotalClasses
		summary.CompletedClasses += ms.CompletedClasses
		summary.Modules = append(summary.Modules, ms)
	}
	if summary.TotalClasses > 0 {
		pct := float64(summary.CompletedClasses) * 100 / float64(summary.TotalClasses)
		summary.CompletionPercent = math.Round(pct*100) / 100
	}
	return summary, nil
}

// Resume returns the current class of an open session with its resources and progress
func (s *playerService) Resume(ctx context.Context, viewer models.Viewer, courseID int) (*models.ResumePoint, error) {
	sess, err := s.session(viewer, courseID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	point := &models.ResumePoint{
		CourseID:   courseID,
		Resources:  []models.Resource{},
		Navigation: sess.nav.Navigation(),
	}
	if current := sess.nav.Current(); current != nil {
		point.Class = current
		point.Resources = sess.content.ResourcesFor(current.ID)
		point.Progress = sess.progress.State(current.ID)
	}
	return point, nil
}

// Sessions lists the open sessions ordered by user and course
func (s *playerService) Sessions() []models.SessionInfo {
	s.mu.RLock()
	keys := make([]sessionKey, 0, len(s.sessions))
	for key := range s.sessions {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].userID != keys[j].userID {
			return keys[i].userID < keys[j].userID
		}
		if keys[i].clientID != keys[j].clientID {
			return keys[i].clientID < keys[j].clientID
		}
		return keys[i].courseID < keys[j].courseID
	})

	out := make([]models.SessionInfo, 0, len(keys))
	for _, key := range keys {
		sess := s.sessions[key]
		out = append(out, models.SessionInfo{
			UserID:     key.userID,
			Anonymous:  sess.viewer.Anonymous(),
			CourseID:   key.courseID,
			OpenedAt:   sess.openedAt,
			LastUsedAt: time.Unix(0, sess.lastUsed.Load()),
		})
	}
	s.mu.RUnlock()
	return out
}

// Sweep removes sessions idle for longer than idle and returns how many were removed
func (s *playerService) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, sess := range s.sessions {
		if sess.lastUsed.Load() < cutoff {
			delete(s.sessions, key)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("idle player sessions evicted", zap.Int("count", removed), zap.Int("remaining", len(s.sessions)))
	}
	return removed
}

// session looks up an open session and marks it used
func (s *playerService) session(viewer models.Viewer, courseID int) (*playerSession, error) {
	if courseID <= 0 {
		return nil, ErrCourseIDRequired
	}
	viewer, err := checkViewer(viewer)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	sess, ok := s.sessions[newSessionKey(viewer, courseID)]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastUsed.Store(s.now().UnixNano())
	return sess, nil
}

// view builds the view model; the caller holds sess.mu
func (sess *playerSession) view() *models.PlayerView {
	snap := sess.progress.Snapshot()
	resources := sess.content.Resources
	if resources == nil {
		resources = []models.Resource{}
	}
	modules := sess.content.Modules
	if modules == nil {
		modules = []models.ModuleContent{}
	}
	return &models.PlayerView{
		CourseID:          sess.courseID,
		Anonymous:         sess.viewer.Anonymous(),
		Modules:           modules,
		Resources:         resources,
		CompletedVideoIDs: sess.nav.FilterKnown(snap.CompletedVideoIDs),
		UserProgressMap:   snap.UserProgressMap,
		Navigation:        sess.nav.Navigation(),
		ProgressStale:     !sess.progress.Loaded(),
	}
}

// checkViewer normalizes viewer and rejects anonymous viewers without a client id
func checkViewer(viewer models.Viewer) (models.Viewer, error) {
	viewer = viewer.Normalize()
	if viewer.Anonymous() && viewer.ClientID == "" {
		return viewer, ErrClientIDRequired
	}
	return viewer, nil
}

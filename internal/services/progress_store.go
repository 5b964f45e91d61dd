package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/hitpolyacademy/backend/internal/models"
	"github.com/hitpolyacademy/backend/internal/storage"
	"go.uber.org/zap"
)

// ProgressClient defines methods for progress data access on the academy API
type ProgressClient interface {
	// GetUserProgress fetches the whole progress history of a user
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	//
	// Returns the progress records of every course and an error if any.
	GetUserProgress(ctx context.Context, userID int) ([]models.ProgressRecord, error)
	// CreateProgress creates the progress record of a class
	//
	// "ctx" is the context for the request.
	// "rec" is the record to create.
	//
	// Returns an error if any.
	CreateProgress(ctx context.Context, rec models.ProgressRecord) error
	// UpdateProgress updates the existing progress record of a class
	//
	// "ctx" is the context for the request.
	// "rec" is the record to update.
	//
	// Returns an error if any.
	UpdateProgress(ctx context.Context, rec models.ProgressRecord) error
}

// progressStore holds the progress of one user on one course.
// It is not safe for concurrent use; the owning session serializes access.
type progressStore struct {
	client   ProgressClient
	state    storage.StateStore
	logger   *zap.Logger
	viewer   models.Viewer
	courseID int

	progress  map[int]models.ProgressState
	completed []int
	loaded    bool
}

// NewProgressStore creates a new progress store for a viewer and course
func NewProgressStore(client ProgressClient, state storage.StateStore, viewer models.Viewer, courseID int, logger *zap.Logger) *progressStore {
	return &progressStore{
		client:    client,
		state:     state,
		logger:    logger,
		viewer:    viewer,
		courseID:  courseID,
		progress:  make(map[int]models.ProgressState),
		completed: []int{},
	}
}

func (s *progressStore) mirrorKey() string {
	return storage.ScopedKey(s.viewer.Namespace(), storage.CompletedIDsKey(s.courseID))
}

// Restore reads the completed ids mirror without calling the API.
// A missing or unreadable mirror leaves the store empty.
func (s *progressStore) Restore(ctx context.Context) {
	raw, ok, err := s.state.Get(ctx, s.mirrorKey())
	if err != nil {
		s.logger.Warn("failed to read completed ids mirror", zap.Int("course_id", s.courseID), zap.Error(err))
		return
	}
	if !ok {
		return
	}

	var ids []int
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		s.logger.Warn("ignoring malformed completed ids mirror", zap.Int("course_id", s.courseID), zap.Error(err))
		return
	}
	s.completed = dedupe(ids)
}

// Load fetches the user's progress and reconciles the store and the mirror with it.
// On failure the previous state and mirror are left untouched.
func (s *progressStore) Load(ctx context.Context) error {
	if s.viewer.Anonymous() {
		s.progress = make(map[int]models.ProgressState)
		s.completed = []int{}
		s.loaded = true
		return nil
	}

	records, err := s.client.GetUserProgress(ctx, s.viewer.UserID)
	if err != nil {
		s.logger.Warn("failed to load user progress",
			zap.Int("user_id", s.viewer.UserID),
			zap.Int("course_id", s.courseID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to load progress: %w", err)
	}

	progress := make(map[int]models.ProgressState)
	order := make([]int, 0)
	for _, rec := range records {
		if rec.CourseID != s.courseID {
			continue
		}
		if _, seen := progress[rec.ClassID]; !seen {
			order = append(order, rec.ClassID)
		}
		progress[rec.ClassID] = models.TrackedState(rec.Completed, rec.WatchedSeconds)
	}

	completed := make([]int, 0)
	for _, id := range order {
		if progress[id].Completed {
			completed = append(completed, id)
		}
	}

	s.progress = progress
	s.completed = completed
	s.loaded = true
	s.writeMirror(ctx)
	return nil
}

// Loaded reports whether the progress map reflects the API.
// Until a Load succeeds only the restored completed ids are known.
func (s *progressStore) Loaded() bool {
	return s.loaded
}

// State returns the tracking state of a class
func (s *progressStore) State(classID int) models.ProgressState {
	return s.progress[classID]
}

// IsCompleted reports whether classID is in the completed ids
func (s *progressStore) IsCompleted(classID int) bool {
	return slices.Contains(s.completed, classID)
}

// Apply records a confirmed mutation of a class and rewrites the mirror
func (s *progressStore) Apply(ctx context.Context, classID int, completed bool, watchedSeconds int) {
	s.progress[classID] = models.TrackedState(completed, watchedSeconds)

	idx := slices.Index(s.completed, classID)
	switch {
	case completed && idx < 0:
		s.completed = append(s.completed, classID)
	case !completed && idx >= 0:
		s.completed = slices.Delete(s.completed, idx, idx+1)
	}

	s.writeMirror(ctx)
}

// Snapshot returns a copy of the held progress
func (s *progressStore) Snapshot() models.ProgressSnapshot {
	progress := make(map[int]models.ProgressState, len(s.progress))
	for id, st := range s.progress {
		progress[id] = st
	}
	completed := make([]int, len(s.completed))
	copy(completed, s.completed)
	return models.ProgressSnapshot{
		UserProgressMap:   progress,
		CompletedVideoIDs: completed,
	}
}

// writeMirror stores the completed ids; a failed write only costs the instant paint
func (s *progressStore) writeMirror(ctx context.Context) {
	data, err := json.Marshal(s.completed)
	if err != nil {
		s.logger.Error("failed to encode completed ids", zap.Error(err))
		return
	}
	if err := s.state.Set(ctx, s.mirrorKey(), string(data)); err != nil {
		s.logger.Warn("failed to write completed ids mirror", zap.Int("course_id", s.courseID), zap.Error(err))
	}
}

func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

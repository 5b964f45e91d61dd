package services

import (
	"context"
	"time"

	"github.com/hitpolyacademy/backend/internal/models"
	"go.uber.org/zap"
)

// progressMutator writes progress changes of one user on one course.
// A change is applied locally only after the API confirms it; failures are not retried.
type progressMutator struct {
	client   ProgressClient
	store    *progressStore
	logger   *zap.Logger
	userID   int
	courseID int
	now      func() time.Time
}

// NewProgressMutator creates a new mutator writing through client into store
func NewProgressMutator(client ProgressClient, store *progressStore, logger *zap.Logger) *progressMutator {
	return &progressMutator{
		client:   client,
		store:    store,
		logger:   logger,
		userID:   store.viewer.UserID,
		courseID: store.courseID,
		now:      time.Now,
	}
}

// MarkProgress records the completion and watched time of a class.
// An untracked class is created on the API, a tracked one is updated.
// When the progress map was never loaded it is reloaded first, since create and update
// cannot be told apart without it.
//
// Returns true when the API accepted the change.
func (m *progressMutator) MarkProgress(ctx context.Context, classID int, completed bool, watchedSeconds int) bool {
	if m.userID <= 0 {
		m.logger.Debug("progress change ignored for anonymous user", zap.Int("class_id", classID))
		return false
	}
	if watchedSeconds < 0 {
		m.logger.Warn("rejecting negative watched time",
			zap.Int("class_id", classID),
			zap.Int("watched_seconds", watchedSeconds),
		)
		return false
	}
	if !m.ready(ctx) {
		return false
	}

	rec := models.ProgressRecord{
		UserID:         m.userID,
		ClassID:        classID,
		CourseID:       m.courseID,
		Completed:      completed,
		WatchedSeconds: watchedSeconds,
		LastViewedAt:   m.now(),
	}

	state := m.store.State(classID)
	write, action := m.client.CreateProgress, "create"
	if state.Tracked {
		write, action = m.client.UpdateProgress, "update"
	}

	if err := write(ctx, rec); err != nil {
		m.logger.Warn("failed to save progress",
			zap.String("action", action),
			zap.Int("user_id", m.userID),
			zap.Int("class_id", classID),
			zap.Error(err),
		)
		return false
	}

	m.store.Apply(ctx, classID, completed, watchedSeconds)
	m.logger.Info("progress saved",
		zap.String("action", action),
		zap.Int("user_id", m.userID),
		zap.Int("class_id", classID),
		zap.Bool("completed", completed),
	)
	return true
}

// ToggleCompletion flips the completed flag of a class, keeping its watched time.
// The flag is read from the completed ids, the list the user sees.
func (m *progressMutator) ToggleCompletion(ctx context.Context, classID int) bool {
	if m.userID <= 0 {
		m.logger.Debug("progress change ignored for anonymous user", zap.Int("class_id", classID))
		return false
	}
	if !m.ready(ctx) {
		return false
	}
	state := m.store.State(classID)
	return m.MarkProgress(ctx, classID, !m.store.IsCompleted(classID), state.WatchedSeconds)
}

// CompleteOnVideoEnd marks a class completed with the reported watched time
func (m *progressMutator) CompleteOnVideoEnd(ctx context.Context, classID int, watchedSeconds int) bool {
	return m.MarkProgress(ctx, classID, true, watchedSeconds)
}

// ready reloads the progress map when the last load failed
func (m *progressMutator) ready(ctx context.Context) bool {
	if m.store.Loaded() {
		return true
	}
	if err := m.store.Load(ctx); err != nil {
		m.logger.Warn("progress change refused while progress is unavailable",
			zap.Int("user_id", m.userID),
			zap.Int("course_id", m.courseID),
		)
		return false
	}
	return true
}

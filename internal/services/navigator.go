package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/hitpolyacademy/backend/internal/models"
	"github.com/hitpolyacademy/backend/internal/storage"
	"go.uber.org/zap"
)

// ErrClassNotInCourse is returned when a class id is not part of the loaded course
var ErrClassNotInCourse = errors.New("class is not part of the course")

// Flatten returns the classes of a course in module order, then in-module class order
func Flatten(content *models.CourseContent) []models.Class {
	if content == nil {
		return []models.Class{}
	}
	out := make([]models.Class, 0)
	for _, m := range content.Modules {
		out = append(out, m.Classes...)
	}
	return out
}

// navigator tracks the current class of one viewer on one course.
// It is not safe for concurrent use; the owning session serializes access.
type navigator struct {
	state    storage.StateStore
	logger   *zap.Logger
	viewer   models.Viewer
	courseID int

	sequence []models.Class
	index    map[int]int
	current  int
}

// NewNavigator creates a new navigator with nothing selected
func NewNavigator(state storage.StateStore, viewer models.Viewer, courseID int, logger *zap.Logger) *navigator {
	return &navigator{
		state:    state,
		logger:   logger,
		viewer:   viewer,
		courseID: courseID,
		sequence: []models.Class{},
		index:    make(map[int]int),
		current:  -1,
	}
}

func (n *navigator) mirrorKey() string {
	return storage.ScopedKey(n.viewer.Namespace(), storage.CurrentIDKey(n.courseID))
}

// Init loads the flattened sequence of content and restores the current class.
// A stored id that is missing from the sequence falls back to the first class.
func (n *navigator) Init(ctx context.Context, content *models.CourseContent) {
	n.sequence = Flatten(content)
	n.index = make(map[int]int, len(n.sequence))
	for i, c := range n.sequence {
		n.index[c.ID] = i
	}
	n.current = -1

	if len(n.sequence) == 0 {
		return
	}

	raw, ok, err := n.state.Get(ctx, n.mirrorKey())
	if err != nil {
		n.logger.Warn("failed to read current class mirror", zap.Int("course_id", n.courseID), zap.Error(err))
	}
	if ok {
		if id, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			if pos, known := n.index[id]; known {
				n.current = pos
				return
			}
		}
		n.logger.Info("stored current class is not in the course, starting from the first class",
			zap.Int("course_id", n.courseID),
			zap.String("stored", raw),
		)
	}

	n.current = 0
	n.persist(ctx)
}

// Current returns the selected class or nil
func (n *navigator) Current() *models.Class {
	if n.current < 0 {
		return nil
	}
	c := n.sequence[n.current]
	return &c
}

// Next selects the following class; it reports false at the end of the sequence
func (n *navigator) Next(ctx context.Context) bool {
	if n.current < 0 || n.current >= len(n.sequence)-1 {
		return false
	}
	n.current++
	n.persist(ctx)
	return true
}

// Previous selects the preceding class; it reports false at the start of the sequence
func (n *navigator) Previous(ctx context.Context) bool {
	if n.current <= 0 {
		return false
	}
	n.current--
	n.persist(ctx)
	return true
}

// Jump selects an arbitrary class of the sequence
func (n *navigator) Jump(ctx context.Context, classID int) error {
	pos, ok := n.index[classID]
	if !ok {
		return ErrClassNotInCourse
	}
	if pos != n.current {
		n.current = pos
		n.persist(ctx)
	}
	return nil
}

// Contains reports whether classID is part of the sequence
func (n *navigator) Contains(classID int) bool {
	_, ok := n.index[classID]
	return ok
}

// IsFirstVideo reports whether the first class is selected
func (n *navigator) IsFirstVideo() bool {
	return n.current == 0
}

// IsLastVideo reports whether the last class is selected
func (n *navigator) IsLastVideo() bool {
	return n.current >= 0 && n.current == len(n.sequence)-1
}

// Navigation describes the current position
func (n *navigator) Navigation() models.Navigation {
	nav := models.Navigation{
		Total:        len(n.sequence),
		IsFirstVideo: n.IsFirstVideo(),
		IsLastVideo:  n.IsLastVideo(),
	}
	if n.current < 0 {
		return nav
	}
	id := n.sequence[n.current].ID
	nav.CurrentClassID = &id
	nav.Position = n.current + 1
	if n.current > 0 {
		prev := n.sequence[n.current-1].ID
		nav.PreviousID = &prev
	}
	if n.current < len(n.sequence)-1 {
		next := n.sequence[n.current+1].ID
		nav.NextID = &next
	}
	return nav
}

// FilterKnown keeps the ids that belong to the sequence, preserving order
func (n *navigator) FilterKnown(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := n.index[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (n *navigator) persist(ctx context.Context) {
	if n.current < 0 {
		return
	}
	value := strconv.Itoa(n.sequence[n.current].ID)
	if err := n.state.Set(ctx, n.mirrorKey(), value); err != nil {
		n.logger.Warn("failed to write current class mirror", zap.Int("course_id", n.courseID), zap.Error(err))
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hitpolyacademy/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrCourseIDRequired is returned when a course is requested without an id
var ErrCourseIDRequired = errors.New("course id is required")

// ContentClient defines methods for course content retrieval
type ContentClient interface {
	// GetCourseModules fetches the modules of a course
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns the modules in API order and an error if any.
	GetCourseModules(ctx context.Context, courseID int) ([]models.Module, error)
	// GetModuleClasses fetches the classes returned for a module
	//
	// "ctx" is the context for the request.
	// "moduleID" is the ID of the module.
	//
	// Returns the classes, possibly including classes of other modules, and an error if any.
	GetModuleClasses(ctx context.Context, moduleID int) ([]models.Class, error)
	// GetResources fetches every resource of the platform
	//
	// "ctx" is the context for the request.
	//
	// Returns the resources with absolute URLs and an error if any.
	GetResources(ctx context.Context) ([]models.Resource, error)
}

type contentLoader struct {
	client      ContentClient
	concurrency int
	logger      *zap.Logger
}

// NewContentLoader creates a new content loader.
// concurrency bounds the number of module class fetches in flight.
func NewContentLoader(client ContentClient, concurrency int, logger *zap.Logger) *contentLoader {
	if concurrency < 1 {
		concurrency = 1
	}
	return &contentLoader{
		client:      client,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Load fetches the modules, classes and resources of a course.
// Any failed fetch fails the whole load; no partial content is returned.
func (l *contentLoader) Load(ctx context.Context, courseID int) (*models.CourseContent, error) {
	if courseID <= 0 {
		return nil, ErrCourseIDRequired
	}

	var (
		modules   []models.ModuleContent
		resources []models.Resource
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		modules, err = l.loadModules(gctx, courseID)
		return err
	})
	g.Go(func() error {
		var err error
		resources, err = l.client.GetResources(gctx)
		if err != nil {
			return fmt.Errorf("failed to load resources: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		l.logger.Warn("failed to load course content", zap.Int("course_id", courseID), zap.Error(err))
		return nil, err
	}

	known := make(map[int]struct{})
	for _, m := range modules {
		for _, c := range m.Classes {
			known[c.ID] = struct{}{}
		}
	}
	filtered := make([]models.Resource, 0, len(resources))
	for _, r := range resources {
		if _, ok := known[r.ClassID]; ok {
			filtered = append(filtered, r)
		}
	}

	l.logger.Debug("course content loaded",
		zap.Int("course_id", courseID),
		zap.Int("modules", len(modules)),
		zap.Int("classes", len(known)),
		zap.Int("resources", len(filtered)),
	)

	return &models.CourseContent{
		CourseID:  courseID,
		Modules:   modules,
		Resources: filtered,
	}, nil
}

// loadModules fetches the modules of a course and the classes of every module
func (l *contentLoader) loadModules(ctx context.Context, courseID int) ([]models.ModuleContent, error) {
	mods, err := l.client.GetCourseModules(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load modules: %w", err)
	}

	out := make([]models.ModuleContent, len(mods))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, m := range mods {
		i, m := i, m
		g.Go(func() error {
			classes, err := l.client.GetModuleClasses(gctx, m.ID)
			if err != nil {
				return fmt.Errorf("failed to load classes of module %d: %w", m.ID, err)
			}
			own := make([]models.Class, 0, len(classes))
			for _, c := range classes {
				if c.ModuleID == m.ID {
					own = append(own, c)
				}
			}
			sort.SliceStable(own, func(a, b int) bool { return own[a].Order < own[b].Order })
			out[i] = models.ModuleContent{
				ModuleID: m.ID,
				Title:    m.Title,
				Order:    m.Order,
				Classes:  own,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Order < out[b].Order })
	return out, nil
}

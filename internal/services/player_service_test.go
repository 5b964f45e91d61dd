package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitpolyacademy/backend/internal/academy"
	"github.com/hitpolyacademy/backend/internal/models"
	"github.com/hitpolyacademy/backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockContentLoader is a mock implementation of ContentLoader
type mockContentLoader struct {
	content *models.CourseContent
	err     error
}

func (m *mockContentLoader) Load(ctx context.Context, courseID int) (*models.CourseContent, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.content, nil
}

func setupPlayerService(loader *mockContentLoader, client *mockProgressClient, state storage.StateStore) *playerService {
	if state == nil {
		state = storage.NewMemoryStore()
	}
	return NewPlayerService(loader, client, state, zap.NewNop())
}

func TestNewPlayerService(t *testing.T) {
	loader := &mockContentLoader{}
	client := &mockProgressClient{}
	state := storage.NewMemoryStore()

	svc := NewPlayerService(loader, client, state, zap.NewNop())

	assert.NotNil(t, svc)
	assert.Equal(t, loader, svc.loader)
	assert.Equal(t, client, svc.client)
	assert.Empty(t, svc.Sessions())
}

func TestPlayerService_Open(t *testing.T) {
	tests := []struct {
		name          string
		viewer        models.Viewer
		courseID      int
		loader        *mockContentLoader
		client        *mockProgressClient
		mirror        string
		expectedErr   error
		expectedError bool
		validate      func(t *testing.T, view *models.PlayerView, client *mockProgressClient)
	}{
		{
			name:     "builds view with progress",
			viewer:   models.UserViewer(3),
			courseID: 5,
			loader:   &mockContentLoader{content: sampleContent()},
			client: &mockProgressClient{records: []models.ProgressRecord{
				{ClassID: 101, CourseID: 5, Completed: true, WatchedSeconds: 100},
				{ClassID: 102, CourseID: 5, Completed: false, WatchedSeconds: 5},
			}},
			validate: func(t *testing.T, view *models.PlayerView, client *mockProgressClient) {
				assert.Equal(t, 5, view.CourseID)
				assert.False(t, view.Anonymous)
				assert.False(t, view.ProgressStale)
				assert.Len(t, view.Modules, 2)
				assert.Equal(t, []int{101}, view.CompletedVideoIDs)
				assert.Equal(t, models.TrackedState(false, 5), view.UserProgressMap[102])
				require.NotNil(t, view.Navigation.CurrentClassID)
				assert.Equal(t, 101, *view.Navigation.CurrentClassID)
				assert.True(t, view.Navigation.IsFirstVideo)
			},
		},
		{
			name:     "completed ids outside the course are filtered",
			viewer:   models.UserViewer(3),
			courseID: 5,
			loader:   &mockContentLoader{content: sampleContent()},
			client: &mockProgressClient{records: []models.ProgressRecord{
				{ClassID: 777, CourseID: 5, Completed: true},
				{ClassID: 202, CourseID: 5, Completed: true},
			}},
			validate: func(t *testing.T, view *models.PlayerView, client *mockProgressClient) {
				assert.Equal(t, []int{202}, view.CompletedVideoIDs)
			},
		},
		{
			name:     "user without rows",
			viewer:   models.UserViewer(3),
			courseID: 5,
			loader:   &mockContentLoader{content: sampleContent()},
			client:   &mockProgressClient{},
			validate: func(t *testing.T, view *models.PlayerView, client *mockProgressClient) {
				assert.Equal(t, []int{}, view.CompletedVideoIDs)
				assert.Empty(t, view.UserProgressMap)
				assert.False(t, view.ProgressStale)
			},
		},
		{
			name:     "progress failure keeps restored mirror",
			viewer:   models.UserViewer(3),
			courseID: 5,
			loader:   &mockContentLoader{content: sampleContent()},
			client:   &mockProgressClient{getErr: errors.New("timeout")},
			mirror:   `[102,999]`,
			validate: func(t *testing.T, view *models.PlayerView, client *mockProgressClient) {
				assert.True(t, view.ProgressStale)
				assert.Equal(t, []int{102}, view.CompletedVideoIDs)
			},
		},
		{
			name:     "anonymous session makes no progress call",
			viewer:   models.AnonymousViewer("c1"),
			courseID: 5,
			loader:   &mockContentLoader{content: sampleContent()},
			client:   &mockProgressClient{},
			validate: func(t *testing.T, view *models.PlayerView, client *mockProgressClient) {
				assert.True(t, view.Anonymous)
				assert.Equal(t, 0, client.getCalls)
				assert.Empty(t, view.CompletedVideoIDs)
			},
		},
		{
			name:     "empty course",
			viewer:   models.UserViewer(3),
			courseID: 5,
			loader:   &mockContentLoader{content: &models.CourseContent{CourseID: 5}},
			client:   &mockProgressClient{},
			validate: func(t *testing.T, view *models.PlayerView, client *mockProgressClient) {
				assert.Nil(t, view.Navigation.CurrentClassID)
				assert.False(t, view.Navigation.IsFirstVideo)
				assert.False(t, view.Navigation.IsLastVideo)
				assert.NotNil(t, view.Modules)
				assert.NotNil(t, view.Resources)
			},
		},
		{
			name:          "content failure fails the open",
			viewer:        models.UserViewer(3),
			courseID:      5,
			loader:        &mockContentLoader{err: &academy.HTTPError{Accion: academy.ActionGetClasses, StatusCode: 500}},
			client:        &mockProgressClient{},
			expectedError: true,
		},
		{
			name:          "missing course id",
			viewer:        models.UserViewer(3),
			courseID:      0,
			loader:        &mockContentLoader{content: sampleContent()},
			client:        &mockProgressClient{},
			expectedErr:   ErrCourseIDRequired,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			state := storage.NewMemoryStore()
			if tt.mirror != "" {
				require.NoError(t, state.Set(ctx, storage.ScopedKey(tt.viewer.Namespace(), storage.CompletedIDsKey(tt.courseID)), tt.mirror))
			}
			svc := setupPlayerService(tt.loader, tt.client, state)

			view, err := svc.Open(ctx, tt.viewer, tt.courseID)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, view)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
				assert.Empty(t, svc.Sessions())
				return
			}
			require.NoError(t, err)
			require.NotNil(t, view)
			tt.validate(t, view, tt.client)
			assert.Len(t, svc.Sessions(), 1)
		})
	}
}

func TestPlayerService_SessionNotFound(t *testing.T) {
	svc := setupPlayerService(&mockContentLoader{content: sampleContent()}, &mockProgressClient{}, nil)
	ctx := context.Background()

	_, err := svc.View(ctx, models.UserViewer(3), 5)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Next(ctx, models.UserViewer(3), 5)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Previous(ctx, models.UserViewer(3), 5)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Jump(ctx, models.UserViewer(3), 5, 101)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.MarkProgress(ctx, models.UserViewer(3), 5, 101, true, 0)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Toggle(ctx, models.UserViewer(3), 5, 101)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.VideoEnded(ctx, models.UserViewer(3), 5, 101, 0)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Summary(ctx, models.UserViewer(3), 5)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Resume(ctx, models.UserViewer(3), 5)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, svc.Close(ctx, models.UserViewer(3), 5), ErrSessionNotFound)
}

func TestPlayerService_Navigation(t *testing.T) {
	ctx := context.Background()
	state := storage.NewMemoryStore()
	svc := setupPlayerService(&mockContentLoader{content: sampleContent()}, &mockProgressClient{}, state)
	_, err := svc.Open(ctx, models.UserViewer(3), 5)
	require.NoError(t, err)

	view, err := svc.Previous(ctx, models.UserViewer(3), 5)
	require.NoError(t, err)
	assert.Equal(t, 101, *view.Navigation.CurrentClassID)

	view, err = svc.Next(ctx, models.UserViewer(3), 5)
	require.NoError(t, err)
	assert.Equal(t, 102, *view.Navigation.CurrentClassID)

	view, err = svc.Jump(ctx, models.UserViewer(3), 5, 202)
	require.NoError(t, err)
	assert.True(t, view.Navigation.IsLastVideo)

	_, err = svc.Jump(ctx, models.UserViewer(3), 5, 999)
	assert.ErrorIs(t, err, ErrClassNotInCourse)

	// Reopening resumes where the user left off
	view, err = svc.Open(ctx, models.UserViewer(3), 5)
	require.NoError(t, err)
	assert.Equal(t, 202, *view.Navigation.CurrentClassID)
	assert.Len(t, svc.Sessions(), 1)
}

func TestPlayerService_Mutations(t *testing.T) {
	ctx := context.Background()
	client := &mockProgressClient{}
	svc := setupPlayerService(&mockContentLoader{content: sampleContent()}, client, nil)
	_, err := svc.Open(ctx, models.UserViewer(3), 5)
	require.NoError(t, err)

	ok, err := svc.MarkProgress(ctx, models.UserViewer(3), 5, 101, false, 40)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Toggle(ctx, models.UserViewer(3), 5, 101)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VideoEnded(ctx, models.UserViewer(3), 5, 102, 600)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Toggle(ctx, models.UserViewer(3), 5, 999)
	assert.ErrorIs(t, err, ErrClassNotInCourse)

	assert.Equal(t, []string{
		academy.ActionCreateProgress,
		academy.ActionUpdateProgress,
		academy.ActionCreateProgress,
	}, client.calls())

	view, err := svc.View(ctx, models.UserViewer(3), 5)
	require.NoError(t, err)
	assert.Equal(t, []int{101, 102}, view.CompletedVideoIDs)
	assert.Equal(t, models.TrackedState(true, 40), view.UserProgressMap[101])

	client.updateErr = errors.New("boom")
	ok, err = svc.Toggle(ctx, models.UserViewer(3), 5, 101)
	require.NoError(t, err)
	assert.False(t, ok)
	view, err = svc.View(ctx, models.UserViewer(3), 5)
	require.NoError(t, err)
	assert.Equal(t, []int{101, 102}, view.CompletedVideoIDs)
}

func TestPlayerService_AnonymousMutation(t *testing.T) {
	ctx := context.Background()
	client := &mockProgressClient{}
	svc := setupPlayerService(&mockContentLoader{content: sampleContent()}, client, nil)
	_, err := svc.Open(ctx, models.AnonymousViewer("c1"), 5)
	require.NoError(t, err)

	ok, err := svc.MarkProgress(ctx, models.AnonymousViewer("c1"), 5, 101, true, 10)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, client.calls())
}

func TestPlayerService_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	client := &mockProgressClient{}
	svc := setupPlayerService(&mockContentLoader{content: sampleContent()}, client, nil)
	_, err := svc.Open(ctx, models.UserViewer(3), 5)
	require.NoError(t, err)
	_, err = svc.Open(ctx, models.UserViewer(4), 5)
	require.NoError(t, err)

	_, err = svc.Jump(ctx, models.UserViewer(3), 5, 201)
	require.NoError(t, err)

	view, err := svc.View(ctx, models.UserViewer(4), 5)
	require.NoError(t, err)
	assert.Equal(t, 101, *view.Navigation.CurrentClassID)

	sessions := svc.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, 3, sessions[0].UserID)
	assert.Equal(t, 4, sessions[1].UserID)

	require.NoError(t, svc.Close(ctx, models.UserViewer(3), 5))
	_, err = svc.View(ctx, models.UserViewer(3), 5)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.View(ctx, models.UserViewer(4), 5)
	assert.NoError(t, err)
}

func TestPlayerService_Summary(t *testing.T) {
	ctx := context.Background()
	client := &mockProgressClient{records: []models.ProgressRecord{
		{ClassID: 101, CourseID: 5, Completed: true},
		{ClassID: 202, CourseID: 5, Completed: true},
		{ClassID: 201, CourseID: 5, Completed: false},
	}}
	svc := setupPlayerService(&mockContentLoader{content: sampleContent()}, client, nil)
	_, err := svc.Open(ctx, models.UserViewer(3), 5)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, models.UserViewer(3), 5)

	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalClasses)
	assert.Equal(t, 2, summary.CompletedClasses)
	assert.Equal(t, 50.0, summary.CompletionPercent)
	require.Len(t, summary.Modules, 2)
	assert.Equal(t, models.ModuleSummary{ModuleID: 10, Title: "Intro", TotalClasses: 2, CompletedClasses: 1}, summary.Modules[0])
	assert.Equal(t, models.ModuleSummary{ModuleID: 20, Title: "Basics", TotalClasses: 2, CompletedClasses: 1}, summary.Modules[1])
}

func TestPlayerService_SummaryEmptyCourse(t *testing.T) {
	ctx := context.Background()
	svc := setupPlayerService(&mockContentLoader{content: &models.CourseContent{CourseID: 5}}, &mockProgressClient{}, nil)
	_, err := svc.Open(ctx, models.UserViewer(3), 5)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, models.UserViewer(3), 5)

	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalClasses)
	assert.Equal(t, 0.0, summary.CompletionPercent)
}

func TestPlayerService_Resume(t *testing.T) {
	ctx := context.Background()
	client := &mockProgressClient{records: []models.ProgressRecord{
		{ClassID: 202, CourseID: 5, Completed: false, WatchedSeconds: 77},
	}}
	svc := setupPlayerService(&mockContentLoader{content: sampleContent()}, client, nil)
	_, err := svc.Open(ctx, models.UserViewer(3), 5)
	require.NoError(t, err)
	_, err = svc.Jump(ctx, models.UserViewer(3), 5, 202)
	require.NoError(t, err)

	point, err := svc.Resume(ctx, models.UserViewer(3), 5)

	require.NoError(t, err)
	require.NotNil(t, point.Class)
	assert.Equal(t, 202, point.Class.ID)
	assert.Equal(t, models.TrackedState(false, 77), point.Progress)
	require.Len(t, point.Resources, 1)
	assert.Equal(t, 2, point.Resources[0].ID)
	assert.Equal(t, 201, *point.Navigation.PreviousID)
	assert.Nil(t, point.Navigation.NextID)
}

func TestPlayerService_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := setupPlayerService(&mockContentLoader{content: sampleContent()}, &mockProgressClient{}, nil)
	svc.now = func() time.Time { return now }

	_, err := svc.Open(ctx, models.UserViewer(3), 5)
	require.NoError(t, err)
	now = now.Add(20 * time.Minute)
	_, err = svc.Open(ctx, models.UserViewer(4), 5)
	require.NoError(t, err)
	now = now.Add(15 * time.Minute)

	removed := svc.Sweep(30 * time.Minute)

	assert.Equal(t, 1, removed)
	sessions := svc.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, 4, sessions[0].UserID)

	// Use refreshes the idle clock
	_, err = svc.View(ctx, models.UserViewer(4), 5)
	require.NoError(t, err)
	now = now.Add(25 * time.Minute)
	assert.Equal(t, 0, svc.Sweep(30*time.Minute))
}

func TestPlayerService_AnonymousVisitorsAreIsolated(t *testing.T) {
	ctx := context.Background()
	client := &mockProgressClient{}
	svc := setupPlayerService(&mockContentLoader{content: sampleContent()}, client, nil)
	first := models.AnonymousViewer("client-a")
	second := models.AnonymousViewer("client-b")

	_, err := svc.Open(ctx, first, 5)
	require.NoError(t, err)
	_, err = svc.Next(ctx, first, 5)
	require.NoError(t, err)
	_, err = svc.Next(ctx, first, 5)
	require.NoError(t, err)

	view, err := svc.Open(ctx, second, 5)
	require.NoError(t, err)
	require.NotNil(t, view.Navigation.CurrentClassID)
	assert.Equal(t, 101, *view.Navigation.CurrentClassID)

	sessions := svc.Sessions()
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].Anonymous)
	assert.True(t, sessions[1].Anonymous)

	require.NoError(t, svc.Close(ctx, second, 5))
	view, err = svc.View(ctx, first, 5)
	require.NoError(t, err)
	assert.Equal(t, 201, *view.Navigation.CurrentClassID)

	view, err = svc.Open(ctx, first, 5)
	require.NoError(t, err)
	assert.Equal(t, 201, *view.Navigation.CurrentClassID)
	assert.Equal(t, 0, client.getCalls)
}

func TestPlayerService_AnonymousWithoutClientID(t *testing.T) {
	svc := setupPlayerService(&mockContentLoader{content: sampleContent()}, &mockProgressClient{}, nil)
	ctx := context.Background()

	_, err := svc.Open(ctx, models.AnonymousViewer(""), 5)
	assert.ErrorIs(t, err, ErrClientIDRequired)
	_, err = svc.View(ctx, models.Viewer{UserID: -1}, 5)
	assert.ErrorIs(t, err, ErrClientIDRequired)
	assert.ErrorIs(t, svc.Close(ctx, models.AnonymousViewer(""), 5), ErrClientIDRequired)
	assert.Empty(t, svc.Sessions())
}

func TestPlayerService_UserTabsShareSession(t *testing.T) {
	svc := setupPlayerService(&mockContentLoader{content: sampleContent()}, &mockProgressClient{}, nil)
	ctx := context.Background()

	_, err := svc.Open(ctx, models.Viewer{UserID: 3, ClientID: "tab-1"}, 5)
	require.NoError(t, err)
	_, err = svc.Jump(ctx, models.Viewer{UserID: 3, ClientID: "tab-2"}, 5, 202)
	require.NoError(t, err)

	view, err := svc.View(ctx, models.UserViewer(3), 5)
	require.NoError(t, err)
	assert.Equal(t, 202, *view.Navigation.CurrentClassID)
	assert.Len(t, svc.Sessions(), 1)
}

func TestPlayerService_ToggleAfterFailedProgressLoad(t *testing.T) {
	ctx := context.Background()
	state := storage.NewMemoryStore()
	key := storage.ScopedKey(models.UserViewer(3).Namespace(), storage.CompletedIDsKey(5))
	require.NoError(t, state.Set(ctx, key, `[101]`))

	client := &mockProgressClient{getErr: errors.New("timeout")}
	svc := setupPlayerService(&mockContentLoader{content: sampleContent()}, client, state)

	view, err := svc.Open(ctx, models.UserViewer(3), 5)
	require.NoError(t, err)
	require.True(t, view.ProgressStale)
	require.Equal(t, []int{101}, view.CompletedVideoIDs)

	ok, err := svc.Toggle(ctx, models.UserViewer(3), 5, 101)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, client.calls())

	view, err = svc.View(ctx, models.UserViewer(3), 5)
	require.NoError(t, err)
	assert.True(t, view.ProgressStale)
	assert.Equal(t, []int{101}, view.CompletedVideoIDs)

	client.mu.Lock()
	client.getErr = nil
	client.records = []models.ProgressRecord{{ClassID: 101, CourseID: 5, Completed: true, WatchedSeconds: 40}}
	client.mu.Unlock()

	ok, err = svc.Toggle(ctx, models.UserViewer(3), 5, 101)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{academy.ActionUpdateProgress}, client.calls())
	require.Len(t, client.written, 1)
	assert.False(t, client.written[0].Completed)
	assert.Equal(t, 40, client.written[0].WatchedSeconds)

	view, err = svc.View(ctx, models.UserViewer(3), 5)
	require.NoError(t, err)
	assert.False(t, view.ProgressStale)
	assert.Equal(t, []int{}, view.CompletedVideoIDs)
}

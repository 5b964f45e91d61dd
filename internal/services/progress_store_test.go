package services

import (
	"context"
	"errors"
	"testing"

	"github.com/hitpolyacademy/backend/internal/models"
	"github.com/hitpolyacademy/backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProgressStore(t *testing.T) {
	client := &mockProgressClient{}
	state := storage.NewMemoryStore()

	store := NewProgressStore(client, state, models.UserViewer(3), 5, zap.NewNop())

	assert.NotNil(t, store)
	assert.Equal(t, models.UserViewer(3), store.viewer)
	assert.Equal(t, 5, store.courseID)
	assert.Empty(t, store.Snapshot().CompletedVideoIDs)
	assert.Empty(t, store.Snapshot().UserProgressMap)
}

func TestProgressStore_Load(t *testing.T) {
	tests := []struct {
		name              string
		userID            int
		client            *mockProgressClient
		expectedError     bool
		expectedGetCalls  int
		expectedCompleted []int
		expectedMap       map[int]models.ProgressState
	}{
		{
			name:   "filters rows to the course",
			userID: 3,
			client: &mockProgressClient{records: []models.ProgressRecord{
				{ClassID: 101, CourseID: 5, Completed: true, WatchedSeconds: 60},
				{ClassID: 900, CourseID: 9, Completed: true, WatchedSeconds: 10},
				{ClassID: 102, CourseID: 5, Completed: false, WatchedSeconds: 15},
			}},
			expectedGetCalls:  1,
			expectedCompleted: []int{101},
			expectedMap: map[int]models.ProgressState{
				101: models.TrackedState(true, 60),
				102: models.TrackedState(false, 15),
			},
		},
		{
			name:   "completada si for class 7",
			userID: 3,
			client: &mockProgressClient{records: []models.ProgressRecord{
				{ClassID: 7, CourseID: 5, Completed: true},
			}},
			expectedGetCalls:  1,
			expectedCompleted: []int{7},
			expectedMap: map[int]models.ProgressState{
				7: models.TrackedState(true, 0),
			},
		},
		{
			name:              "user without rows",
			userID:            3,
			client:            &mockProgressClient{},
			expectedGetCalls:  1,
			expectedCompleted: []int{},
			expectedMap:       map[int]models.ProgressState{},
		},
		{
			name:   "completed ids keep first appearance order",
			userID: 3,
			client: &mockProgressClient{records: []models.ProgressRecord{
				{ClassID: 202, CourseID: 5, Completed: true},
				{ClassID: 101, CourseID: 5, Completed: true},
				{ClassID: 202, CourseID: 5, Completed: true, WatchedSeconds: 30},
			}},
			expectedGetCalls:  1,
			expectedCompleted: []int{202, 101},
			expectedMap: map[int]models.ProgressState{
				202: models.TrackedState(true, 30),
				101: models.TrackedState(true, 0),
			},
		},
		{
			name:   "anonymous user makes no call",
			userID: 0,
			client: &mockProgressClient{records: []models.ProgressRecord{
				{ClassID: 101, CourseID: 5, Completed: true},
			}},
			expectedGetCalls:  0,
			expectedCompleted: []int{},
			expectedMap:       map[int]models.ProgressState{},
		},
		{
			name:             "api failure",
			userID:           3,
			client:           &mockProgressClient{getErr: errors.New("network down")},
			expectedError:    true,
			expectedGetCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewProgressStore(tt.client, storage.NewMemoryStore(), models.UserViewer(tt.userID), 5, zap.NewNop())

			err := store.Load(context.Background())

			assert.Equal(t, tt.expectedGetCalls, tt.client.getCalls)
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			snap := store.Snapshot()
			assert.Equal(t, tt.expectedCompleted, snap.CompletedVideoIDs)
			assert.Equal(t, tt.expectedMap, snap.UserProgressMap)
		})
	}
}

func TestProgressStore_LoadWritesMirror(t *testing.T) {
	state := storage.NewMemoryStore()
	client := &mockProgressClient{records: []models.ProgressRecord{
		{ClassID: 101, CourseID: 5, Completed: true},
		{ClassID: 102, CourseID: 5, Completed: true},
	}}
	store := NewProgressStore(client, state, models.UserViewer(3), 5, zap.NewNop())

	require.NoError(t, store.Load(context.Background()))

	raw, ok, err := state.Get(context.Background(), "user_3:completedVideoIds_course_5")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[101,102]`, raw)
}

func TestProgressStore_FailedLoadKeepsState(t *testing.T) {
	ctx := context.Background()
	state := storage.NewMemoryStore()
	key := storage.ScopedKey(models.UserViewer(3).Namespace(), storage.CompletedIDsKey(5))
	require.NoError(t, state.Set(ctx, key, `[101]`))

	client := &mockProgressClient{records: []models.ProgressRecord{
		{ClassID: 101, CourseID: 5, Completed: true, WatchedSeconds: 40},
	}}
	store := NewProgressStore(client, state, models.UserViewer(3), 5, zap.NewNop())
	require.NoError(t, store.Load(ctx))
	before := store.Snapshot()

	client.getErr = errors.New("timeout")
	client.records = nil
	err := store.Load(ctx)

	assert.Error(t, err)
	assert.Equal(t, before, store.Snapshot())
	raw, _, err := state.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `[101]`, raw)
}

func TestProgressStore_Restore(t *testing.T) {
	tests := []struct {
		name     string
		state    func() storage.StateStore
		expected []int
	}{
		{
			name: "restores mirror",
			state: func() storage.StateStore {
				s := storage.NewMemoryStore()
				_ = s.Set(context.Background(), "user_3:completedVideoIds_course_5", `[102,101,102]`)
				return s
			},
			expected: []int{102, 101},
		},
		{
			name:     "missing mirror",
			state:    func() storage.StateStore { return storage.NewMemoryStore() },
			expected: []int{},
		},
		{
			name: "malformed mirror is ignored",
			state: func() storage.StateStore {
				s := storage.NewMemoryStore()
				_ = s.Set(context.Background(), "user_3:completedVideoIds_course_5", `not json`)
				return s
			},
			expected: []int{},
		},
		{
			name:     "unavailable store",
			state:    func() storage.StateStore { return failingStateStore{} },
			expected: []int{},
		},
		{
			name: "other user's mirror is not visible",
			state: func() storage.StateStore {
				s := storage.NewMemoryStore()
				_ = s.Set(context.Background(), "user_4:completedVideoIds_course_5", `[101]`)
				return s
			},
			expected: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockProgressClient{}
			store := NewProgressStore(client, tt.state(), models.UserViewer(3), 5, zap.NewNop())

			store.Restore(context.Background())

			assert.Equal(t, tt.expected, store.Snapshot().CompletedVideoIDs)
			assert.Equal(t, 0, client.getCalls)
		})
	}
}

func TestProgressStore_Apply(t *testing.T) {
	ctx := context.Background()
	state := storage.NewMemoryStore()
	store := NewProgressStore(&mockProgressClient{}, state, models.UserViewer(3), 5, zap.NewNop())

	store.Apply(ctx, 101, true, 10)
	store.Apply(ctx, 102, true, 20)
	store.Apply(ctx, 101, true, 30)
	assert.Equal(t, []int{101, 102}, store.Snapshot().CompletedVideoIDs)
	assert.Equal(t, models.TrackedState(true, 30), store.State(101))

	store.Apply(ctx, 101, false, 30)
	assert.Equal(t, []int{102}, store.Snapshot().CompletedVideoIDs)
	assert.Equal(t, models.TrackedState(false, 30), store.State(101))
	assert.Equal(t, models.NotTracked, store.State(999))

	raw, _, err := state.Get(ctx, "user_3:completedVideoIds_course_5")
	require.NoError(t, err)
	assert.JSONEq(t, `[102]`, raw)
}

func TestProgressStore_SnapshotIsCopy(t *testing.T) {
	store := NewProgressStore(&mockProgressClient{}, storage.NewMemoryStore(), models.UserViewer(3), 5, zap.NewNop())
	store.Apply(context.Background(), 101, true, 0)

	snap := store.Snapshot()
	snap.CompletedVideoIDs[0] = 999
	snap.UserProgressMap[555] = models.TrackedState(true, 1)

	assert.Equal(t, []int{101}, store.Snapshot().CompletedVideoIDs)
	assert.NotContains(t, store.Snapshot().UserProgressMap, 555)
}

func TestProgressStore_Loaded(t *testing.T) {
	ctx := context.Background()
	state := storage.NewMemoryStore()
	key := storage.ScopedKey(models.UserViewer(3).Namespace(), storage.CompletedIDsKey(5))
	require.NoError(t, state.Set(ctx, key, `[101]`))

	client := &mockProgressClient{getErr: errors.New("timeout")}
	store := NewProgressStore(client, state, models.UserViewer(3), 5, zap.NewNop())
	store.Restore(ctx)

	assert.False(t, store.Loaded())
	assert.True(t, store.IsCompleted(101))
	assert.False(t, store.State(101).Tracked)

	require.Error(t, store.Load(ctx))
	assert.False(t, store.Loaded())

	client.getErr = nil
	client.records = []models.ProgressRecord{{ClassID: 101, CourseID: 5, Completed: true, WatchedSeconds: 40}}
	require.NoError(t, store.Load(ctx))
	assert.True(t, store.Loaded())
	assert.Equal(t, models.TrackedState(true, 40), store.State(101))

	anonymous := NewProgressStore(&mockProgressClient{}, state, models.AnonymousViewer("c1"), 5, zap.NewNop())
	require.NoError(t, anonymous.Load(ctx))
	assert.True(t, anonymous.Loaded())
}

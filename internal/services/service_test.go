package services

import (
	"context"
	"errors"
	"sync"

	"github.com/hitpolyacademy/backend/internal/academy"
	"github.com/hitpolyacademy/backend/internal/models"
)

// mockProgressClient is a mock implementation of ProgressClient
type mockProgressClient struct {
	mu        sync.Mutex
	records   []models.ProgressRecord
	getErr    error
	createErr error
	updateErr error
	getCalls  int
	actions   []string
	written   []models.ProgressRecord
}

func (m *mockProgressClient) GetUserProgress(ctx context.Context, userID int) ([]models.ProgressRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.records, nil
}

func (m *mockProgressClient) CreateProgress(ctx context.Context, rec models.ProgressRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, academy.ActionCreateProgress)
	if m.createErr != nil {
		return m.createErr
	}
	m.written = append(m.written, rec)
	return nil
}

func (m *mockProgressClient) UpdateProgress(ctx context.Context, rec models.ProgressRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, academy.ActionUpdateProgress)
	if m.updateErr != nil {
		return m.updateErr
	}
	m.written = append(m.written, rec)
	return nil
}

func (m *mockProgressClient) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.actions))
	copy(out, m.actions)
	return out
}

var errStateUnavailable = errors.New("state store unavailable")

// failingStateStore is a StateStore whose every call fails
type failingStateStore struct{}

func (failingStateStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, errStateUnavailable
}

func (failingStateStore) Set(ctx context.Context, key, value string) error {
	return errStateUnavailable
}

func (failingStateStore) Delete(ctx context.Context, key string) error {
	return errStateUnavailable
}

// sampleContent is a course with two modules of two classes each
func sampleContent() *models.CourseContent {
	return &models.CourseContent{
		CourseID: 5,
		Modules: []models.ModuleContent{
			{ModuleID: 10, Title: "Intro", Order: 1, Classes: []models.Class{
				{ID: 101, ModuleID: 10, Title: "Welcome", Order: 1},
				{ID: 102, ModuleID: 10, Title: "Setup", Order: 2},
			}},
			{ModuleID: 20, Title: "Basics", Order: 2, Classes: []models.Class{
				{ID: 201, ModuleID: 20, Title: "Hooks", Order: 1},
				{ID: 202, ModuleID: 20, Title: "State", Order: 2},
			}},
		},
		Resources: []models.Resource{
			{ID: 1, ClassID: 101, URL: "https://api.example.com/files/slides.pdf"},
			{ID: 2, ClassID: 202, URL: "https://api.example.com/files/code.zip"},
		},
	}
}

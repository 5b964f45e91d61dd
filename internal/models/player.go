package models

import (
	"fmt"
	"time"
)

// Viewer identifies who a player session belongs to.
// Authenticated users are identified by UserID alone, so their tabs share one session.
// Anonymous visitors carry the ClientID of their browser.
type Viewer struct {
	UserID   int
	ClientID string
}

// UserViewer returns the viewer of an authenticated user
func UserViewer(userID int) Viewer {
	return Viewer{UserID: userID}
}

// AnonymousViewer returns the viewer of an anonymous browser
func AnonymousViewer(clientID string) Viewer {
	return Viewer{ClientID: clientID}
}

// Anonymous reports whether the viewer has no user account
func (v Viewer) Anonymous() bool {
	return v.UserID <= 0
}

// Normalize drops the client id of users and clamps invalid user ids to anonymous
func (v Viewer) Normalize() Viewer {
	if v.UserID > 0 {
		return Viewer{UserID: v.UserID}
	}
	return Viewer{ClientID: v.ClientID}
}

// Namespace is the client-state namespace of the viewer
func (v Viewer) Namespace() string {
	if v.Anonymous() {
		return "anonymous_" + v.ClientID
	}
	return fmt.Sprintf("user_%d", v.UserID)
}

// Navigation describes the current position in the flattened class sequence
type Navigation struct {
	CurrentClassID *int `json:"currentClassId"`
	PreviousID     *int `json:"previousClassId,omitempty"`
	NextID         *int `json:"nextClassId,omitempty"`
	Position       int  `json:"position"`
	Total          int  `json:"total"`
	IsFirstVideo   bool `json:"isFirstVideo"`
	IsLastVideo    bool `json:"isLastVideo"`
}

// PlayerView is the view model of an open player session
type PlayerView struct {
	CourseID          int                   `json:"courseId"`
	Anonymous         bool                  `json:"anonymous"`
	Modules           []ModuleContent       `json:"modules"`
	Resources         []Resource            `json:"resources"`
	CompletedVideoIDs []int                 `json:"completedVideoIds"`
	UserProgressMap   map[int]ProgressState `json:"userProgressMap"`
	Navigation        Navigation            `json:"navigation"`
	ProgressStale     bool                  `json:"progressStale"`
}

// ModuleSummary counts the progress inside one module
type ModuleSummary struct {
	ModuleID         int    `json:"moduleId"`
	Title            string `json:"title"`
	TotalClasses     int    `json:"totalClasses"`
	CompletedClasses int    `json:"completedClasses"`
}

// CourseSummary counts the progress across a course
type CourseSummary struct {
	CourseID          int             `json:"courseId"`
	TotalClasses      int             `json:"totalClasses"`
	CompletedClasses  int             `json:"completedClasses"`
	CompletionPercent float64         `json:"completionPercent"`
	Modules           []ModuleSummary `json:"modules"`
}

// ResumePoint is where a user continues watching a course
type ResumePoint struct {
	CourseID   int           `json:"courseId"`
	Class      *Class        `json:"class"`
	Resources  []Resource    `json:"resources"`
	Progress   ProgressState `json:"progress"`
	Navigation Navigation    `json:"navigation"`
}

// SessionInfo describes an open player session for the admin endpoints
type SessionInfo struct {
	UserID     int       `json:"userId"`
	Anonymous  bool      `json:"anonymous"`
	CourseID   int       `json:"courseId"`
	OpenedAt   time.Time `json:"openedAt"`
	LastUsedAt time.Time `json:"lastUsedAt"`
}

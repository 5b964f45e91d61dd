package models

import "time"

// ProgressRecord is the remote record of a user's progress on one class
type ProgressRecord struct {
	UserID         int       `json:"userId"`
	ClassID        int       `json:"classId"`
	CourseID       int       `json:"courseId"`
	Completed      bool      `json:"completed"`
	WatchedSeconds int       `json:"watchedSeconds"`
	LastViewedAt   time.Time `json:"lastViewedAt"`
}

// ProgressState is the client-side tracking state of a class.
// The zero value is NotTracked.
type ProgressState struct {
	Tracked        bool `json:"tracked"`
	Completed      bool `json:"completed"`
	WatchedSeconds int  `json:"watchedSeconds"`
}

// NotTracked is the state of a class with no remote record
var NotTracked = ProgressState{}

// TrackedState builds the state of a class with a remote record
func TrackedState(completed bool, watchedSeconds int) ProgressState {
	return ProgressState{Tracked: true, Completed: completed, WatchedSeconds: watchedSeconds}
}

// ProgressSnapshot is a copy of the progress held for one course
type ProgressSnapshot struct {
	UserProgressMap   map[int]ProgressState `json:"userProgressMap"`
	CompletedVideoIDs []int                 `json:"completedVideoIds"`
}

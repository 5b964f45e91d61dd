package models

// MarkProgressRequest is the body of a progress update
type MarkProgressRequest struct {
	Completed      *bool `json:"completed" validate:"required"`
	WatchedSeconds int   `json:"watchedSeconds" validate:"gte=0"`
}

// VideoEndedRequest is the body sent when a class video finishes playing
type VideoEndedRequest struct {
	WatchedSeconds int `json:"watchedSeconds" validate:"gte=0"`
}

// MutationResponse reports whether the academy API accepted a progress change
type MutationResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SweepResponse reports the result of an idle session sweep
type SweepResponse struct {
	Removed   int `json:"removed"`
	Remaining int `json:"remaining"`
}

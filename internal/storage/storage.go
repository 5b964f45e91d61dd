// Package storage holds the client-state stores: the server-side home of what the
// browser player used to keep in localStorage.
package storage

import (
	"context"
	"fmt"
)

// StateStore is a string key/value store for client state
type StateStore interface {
	// Get returns the value of key and whether it exists
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, overwriting any previous value
	Set(ctx context.Context, key, value string) error
	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

// CompletedIDsKey is the key of the completed class ids mirror of a course
func CompletedIDsKey(courseID int) string {
	return fmt.Sprintf("completedVideoIds_course_%d", courseID)
}

// CurrentIDKey is the key of the current class id mirror of a course
func CurrentIDKey(courseID int) string {
	return fmt.Sprintf("currentVideoId_course_%d", courseID)
}

// ScopedKey prefixes key with the owner's namespace, such as "user_42" or "anonymous_<client id>"
func ScopedKey(namespace, key string) string {
	return namespace + ":" + key
}

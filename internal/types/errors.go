package types

import "errors"

// Error taxonomy. Handlers and the dashboard controller branch on these with
// errors.Is; everything else wraps them with context via fmt.Errorf.
var (
	// ErrNetwork marks any failed collaborator HTTP call.
	ErrNetwork = errors.New("network failure")
	// ErrValidation marks rejected input: empty itinerary save, missing
	// required search field, malformed coordinate key.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate marks an itinerary add for a coordinate already present.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrNotFound marks a lookup miss.
	ErrNotFound = errors.New("not found")
)

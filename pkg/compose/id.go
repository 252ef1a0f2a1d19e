package compose

import "github.com/google/uuid"

// newID returns a time-ordered identity for methods, decorators,
// initializers and types. IDs sort in creation order; when the v7 clock
// source fails a random ID is used and only uniqueness holds.
func newID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

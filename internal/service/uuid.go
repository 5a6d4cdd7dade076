package service

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidateID checks that id is a non-nil UUID as generated by the store.
// Returns nil if valid, or an error wrapping ErrInvalidID.
func ValidateID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	if parsed == uuid.Nil {
		return fmt.Errorf("%w: nil uuid", ErrInvalidID)
	}
	return nil
}

package service

import (
	"errors"

	"github.com/smallsteps/backend/internal/repository"
)

var (
	// ErrNotFound indicates the requested row does not exist or is not visible
	// to the caller. It is the repository sentinel so errors.Is matches both.
	ErrNotFound = repository.ErrNotFound
	// ErrKidLimitReached indicates the parent already has models.MaxKidsPerUser kids
	ErrKidLimitReached = errors.New("kid limit reached")
	// ErrForbidden indicates the caller referenced another user's resource
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidRating indicates a rating outside 1-5
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrInvalidCategory indicates an unknown activity category
	ErrInvalidCategory = errors.New("invalid activity category")
	// ErrInvalidID indicates a malformed resource identifier
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidInput indicates a request that passed binding but is still unusable
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized indicates rejected credentials or an expired session
	ErrUnauthorized = errors.New("unauthorized")
	// ErrEmailTaken indicates a signup for an already registered email
	ErrEmailTaken = errors.New("email already registered")
)

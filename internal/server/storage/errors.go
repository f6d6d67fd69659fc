package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrHouseholdNotFound indicates that household was not found in storage
	ErrHouseholdNotFound = errors.New("household not found")

	// ErrMembershipNotFound indicates that user is not a member of the household
	ErrMembershipNotFound = errors.New("membership not found")

	// ErrEntityNotFound indicates that entity was not found or is deleted
	ErrEntityNotFound = errors.New("entity not found")

	// ErrEntityExists indicates that create targets an id that is already stored
	ErrEntityExists = errors.New("entity already exists")
)

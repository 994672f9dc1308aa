package services

import (
	"errors"
	"fmt"

	"coinmate/internal/scope"
)

var (
	ErrUnauthorized       = errors.New("Unauthorized")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrNoRateAvailable    = errors.New("Could not fetch exchange rate and no cache available")
)

// AuthenticationError is returned when an anonymous caller attempts a mutation.
type AuthenticationError struct {
	Operation string
	Entity    string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("User must be authenticated to %s a %s", e.Operation, e.Entity)
}

// NotFoundError covers both missing records and records owned by someone else.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

type ConflictError struct {
	Entity string
}

func (e *ConflictError) Error() string {
	return e.Entity + " already exists"
}

func requireUser(sc *scope.Scope, operation, entity string) error {
	if !sc.Authenticated() {
		return &AuthenticationError{Operation: operation, Entity: entity}
	}
	return nil
}

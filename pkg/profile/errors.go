package profile

import (
	"errors"
	"fmt"
)

var (
	// ErrAliasExists is returned by Add when the alias is already stored.
	ErrAliasExists = errors.New("alias already exists")

	// ErrAliasNotFound is returned for lookups and removals of unknown aliases.
	ErrAliasNotFound = errors.New("alias not found")
)

// ValidationError reports a missing or malformed profile field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// StoreError reports a failure reading, parsing or writing the profiles file.
type StoreError struct {
	Op   string // "read", "parse", "write"
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s profiles %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors: the requested study/sample has no rows in the source
	// tables. Fatal for the request that asked for it.
	ErrNotFound       = errors.New("resource not found")
	ErrStudyNotFound  = fmt.Errorf("%w: study", ErrNotFound)
	ErrSampleNotFound = fmt.Errorf("%w: sample", ErrNotFound)

	// NoData: a variable or entity has no valid values in the requested
	// subset. Non-fatal; callers record a skipped slot and move on.
	ErrNoData = errors.New("no valid values in subset")

	// Validation errors
	ErrInvalidVariable = errors.New("invalid variable")

	// Cache errors
	ErrCacheMiss    = errors.New("cache miss")
	ErrCacheCorrupt = errors.New("cache entry corrupt")
)

// Error constructors with context
func NewStudyNotFoundError(id StudyID) error {
	return fmt.Errorf("%w with id %s", ErrStudyNotFound, id)
}

func NewSampleNotFoundError(id SampleID) error {
	return fmt.Errorf("%w with id %s", ErrSampleNotFound, id)
}

func NewInvalidVariableError(kind, name string) error {
	return fmt.Errorf("%w: %q is not a known %s variable", ErrInvalidVariable, name, kind)
}

func NewCacheCorruptError(key string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrCacheCorrupt, key, cause)
}

// Error checking helpers
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData)
}

func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

func IsCacheCorrupt(err error) bool {
	return errors.Is(err, ErrCacheCorrupt)
}

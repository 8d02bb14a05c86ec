package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrPersistence        = errors.New("persistence error")
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrStaleVersion       = errors.New("record was modified by another session")
	ErrDatabaseQuery      = errors.New("database query failed")
	ErrDatabaseConnection = errors.New("database connection failed")
)

// NewPersistenceError reports that the storage collaborator rejected a read or write.
// Known causes are mapped to a more specific status; the result always matches ErrPersistence.
func NewPersistenceError(operation, entity string, cause error) *ApiErr {
	details := fmt.Sprintf("Failed to %s %s", operation, entity)

	if cause != nil {
		errStr := cause.Error()
		switch {
		case errors.Is(cause, ErrNotFound) || strings.Contains(errStr, "record not found"):
			return &ApiErr{
				StatusCode: http.StatusNotFound,
				err:        fmt.Errorf("%w: %s %w", ErrPersistence, entity, ErrNotFound),
				Details:    details,
				Cause:      cause,
			}
		case errors.Is(cause, ErrStaleVersion):
			return &ApiErr{
				StatusCode: http.StatusConflict,
				err:        fmt.Errorf("%w: %w", ErrPersistence, ErrStaleVersion),
				Details:    details,
				Cause:      cause,
			}
		case strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "UNIQUE constraint"):
			return &ApiErr{
				StatusCode: http.StatusConflict,
				err:        fmt.Errorf("%w: %s %w", ErrPersistence, entity, ErrAlreadyExists),
				Details:    details,
				Cause:      cause,
			}
		case strings.Contains(errStr, "connection"):
			return &ApiErr{
				StatusCode: http.StatusServiceUnavailable,
				err:        fmt.Errorf("%w: %w", ErrPersistence, ErrDatabaseConnection),
				Details:    "Unable to connect to database",
				Cause:      cause,
			}
		}
	}

	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        fmt.Errorf("%w: %w", ErrPersistence, ErrDatabaseQuery),
		Details:    details,
		Cause:      cause,
	}
}

func IsPersistenceError(err error) bool {
	return errors.Is(err, ErrPersistence)
}

func IsStaleVersion(err error) bool {
	return errors.Is(err, ErrStaleVersion)
}

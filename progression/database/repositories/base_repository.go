package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/ellavondegurechaff/gohye-progression/progression/store"
)

const uniqueViolation = "23505"

// RepositoryError represents a repository-level error. It unwraps to both the
// driver error and the matching store sentinel.
type RepositoryError struct {
	Operation string
	Entity    string
	Kind      error
	Err       error
}

func (re *RepositoryError) Error() string {
	return fmt.Sprintf("repository error during %s for %s: %v", re.Operation, re.Entity, re.Err)
}

func (re *RepositoryError) Unwrap() []error {
	if re.Kind == nil {
		return []error{re.Err}
	}
	return []error{re.Kind, re.Err}
}

// handleError standardizes error handling across repositories
func handleError(operation, entity string, err error) error {
	if err == nil {
		return nil
	}
	return &RepositoryError{
		Operation: operation,
		Entity:    entity,
		Kind:      classify(err),
		Err:       err,
	}
}

func classify(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation {
		return store.ErrConflict
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &netErr) {
		return store.ErrUnavailable
	}
	return nil
}

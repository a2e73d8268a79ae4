package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/setvote/api/internal/core/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// mapError translates driver errors into domain errors. Context errors pass
// through untouched so callers can distinguish cancellation from storage
// failure; everything unrecognized becomes ErrUnavailable with the cause
// attached.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrSongNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrAlreadyVoted)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrSongNotFound)
		}
	}

	return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
}

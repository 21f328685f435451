package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// classifyErr wraps err with the store error it belongs to.
// Connection-level failures are ErrStoreUnavailable; everything else the
// database reports is ErrStoreOperationFailed.
func (s *Store) classifyErr(err error) error {
	if err == nil || domain.IsStoreError(err) {
		return err
	}
	if isConnectionError(err) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if s.classify != nil {
		if sentinel := s.classify(err); sentinel != nil {
			return fmt.Errorf("%w: %w", sentinel, err)
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreOperationFailed, err)
}

func isConnectionError(err error) bool {
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

package order

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTxConflict marks a transaction that lost a serialization conflict or
// deadlock in the store. The engine never retries internally; callers may.
var ErrTxConflict = errors.New("transaction conflict, retry the request")

// ValidationError covers malformed or out-of-range input, always detected
// before any storage write.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NotFoundError names the resource and id(s) that could not be resolved.
type NotFoundError struct {
	Resource string
	IDs      []int64
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) == 0 {
		return e.Resource + " not found"
	}
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, strings.Join(ids, ", "))
}

// InsufficientStockError is returned by the validator pre-check and by the
// in-transaction conditional decrement when it loses the race.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: available %d, requested %d",
		e.Name, e.Available, e.Requested)
}

// AuthorizationError covers non-owner / non-admin access.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string { return e.Reason }

// InvalidStateError covers status transitions the state machine rejects,
// e.g. cancelling an order that is already cancelled or shipped.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string { return e.Reason }

package order

import (
	"context"
	"time"

	"github.com/petitmarche/backend/internal/product"
)

// StatusUpdate carries the admin-provided status changes. Nil fields are left
// untouched; all non-nil fields are applied in one atomic unit.
type StatusUpdate struct {
	OrderStatus    *string
	PaymentStatus  *string
	DeliveryStatus *string
	EstimatedAt    *time.Time
}

func (u StatusUpdate) Empty() bool {
	return u.OrderStatus == nil && u.PaymentStatus == nil && u.DeliveryStatus == nil && u.EstimatedAt == nil
}

// Store is the persistence contract of the order engine. Every method that
// mutates more than one row does so inside a single atomic unit: a concurrent
// reader never observes an order without its payment, delivery or stock
// decrements, and vice versa.
type Store interface {
	// ProductsByIDs is the engine's batch catalog read. Missing ids are simply
	// absent from the result, never an error.
	ProductsByIDs(ctx context.Context, ids []int64) ([]product.Product, error)

	// CreateOrder persists the order graph (order, items, payment, delivery)
	// and applies one conditional stock decrement per item, all in one
	// transaction. A decrement whose guard (stock >= quantity) fails aborts
	// everything and returns *InsufficientStockError; a product row that has
	// disappeared returns *NotFoundError. On success the ids and timestamps of
	// o and its children are filled in.
	CreateOrder(ctx context.Context, o *Order) error

	// OrderByID loads an order with items, payment and delivery.
	// Returns *NotFoundError if it does not exist.
	OrderByID(ctx context.Context, id int64) (*Order, error)

	// OrdersByUser lists a user's orders, newest first, hydrated.
	OrdersByUser(ctx context.Context, userID int64) ([]Order, error)

	// Orders lists every order, newest first, hydrated.
	Orders(ctx context.Context) ([]Order, error)

	// CancelOrder re-checks, under lock, that the order is still cancellable,
	// then restores stock for every item and marks order, payment and delivery
	// cancelled, all in one transaction. A product appearing on several lines
	// gets the sum of their quantities back. Returns the updated order, or
	// *InvalidStateError / *NotFoundError without touching stock.
	CancelOrder(ctx context.Context, id int64) (*Order, error)

	// UpdateStatuses applies the non-nil fields of upd to the order and its
	// payment/delivery in one transaction and returns the updated order.
	UpdateStatuses(ctx context.Context, id int64, upd StatusUpdate) (*Order, error)
}

package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/petitmarche/backend/internal/metrics"
)

// Service is the order transaction engine: validation, atomic creation,
// cancellation and admin status transitions. It trusts the identity resolved
// by the auth layer and the atomicity guarantees of its Store.
type Service struct {
	store Store
	log   *zap.Logger
	m     *metrics.Metrics
}

// NewService wires the engine. Metrics may be nil (tests).
func NewService(store Store, log *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, log: log, m: m}
}

// Create validates the request against the catalog, then materializes
// Order + Items + Payment + Delivery while decrementing stock, atomically.
// The validator's stock read is advisory; the store re-checks each decrement
// inside the transaction, so a race lost between the two still surfaces as
// *InsufficientStockError and leaves no partial state behind.
func (s *Service) Create(ctx context.Context, userID int64, req CreateRequest) (*Order, error) {
	v, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	total := v.total.StringFixed(2)
	o := &Order{
		UserID: userID,
		Status: StatusPending,
		Total:  total,
		Items:  v.items,
		Payment: &Payment{
			Amount: total,
			Status: PaymentProcessing,
		},
		Delivery: &Delivery{
			Status:  DeliveryPreparing,
			Method:  v.method,
			Address: v.address,
		},
	}

	if err := s.store.CreateOrder(ctx, o); err != nil {
		var stock *InsufficientStockError
		if errors.As(err, &stock) {
			if s.m != nil {
				s.m.StockConflicts.Inc()
			}
			s.log.Warn("order creation lost stock race",
				zap.Int64("user_id", userID),
				zap.Int64("product_id", stock.ProductID),
				zap.Int("available", stock.Available),
				zap.Int("requested", stock.Requested))
		}
		return nil, err
	}

	if s.m != nil {
		s.m.OrdersCreated.Inc()
	}
	s.log.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.Int64("user_id", userID),
		zap.Int("items", len(o.Items)),
		zap.String("total", o.Total))
	return o, nil
}

// ListMine returns the user's orders, newest first.
func (s *Service) ListMine(ctx context.Context, userID int64) ([]Order, error) {
	return s.store.OrdersByUser(ctx, userID)
}

// ListAll returns every order, newest first. The admin gate lives in the
// HTTP layer; the engine only provides the read.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.store.Orders(ctx)
}

// Get returns one order. Non-admins may only read their own.
func (s *Service) Get(ctx context.Context, userID int64, admin bool, orderID int64) (*Order, error) {
	o, err := s.store.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID && !admin {
		return nil, &AuthorizationError{Reason: "order belongs to another user"}
	}
	return o, nil
}

// Cancel reverses a pending/preparing order: restores stock for every item
// and marks order, payment and delivery cancelled, atomically. Re-cancelling
// is rejected so stock is never credited twice.
func (s *Service) Cancel(ctx context.Context, userID, orderID int64) (*Order, error) {
	o, err := s.store.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, &AuthorizationError{Reason: "order belongs to another user"}
	}
	if o.Status == StatusCancelled {
		return nil, &InvalidStateError{Reason: "order is already cancelled"}
	}
	if !Cancellable(o.Status) {
		return nil, &InvalidStateError{Reason: fmt.Sprintf("order in status %q cannot be cancelled", o.Status)}
	}

	// The store re-checks the status under lock, so a concurrent cancel or
	// admin transition cannot slip between the check above and the write.
	upd, err := s.store.CancelOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if s.m != nil {
		s.m.OrdersCancelled.Inc()
	}
	s.log.Info("order cancelled",
		zap.Int64("order_id", orderID),
		zap.Int64("user_id", userID))
	return upd, nil
}

// StatusUpdateRequest is the payload of the admin status transition.
// swagger:model UpdateOrderStatusRequest
type StatusUpdateRequest struct {
	OrderStatus    *string `json:"order_status,omitempty"    example:"shipped"`
	PaymentStatus  *string `json:"payment_status,omitempty"  example:"paid"`
	DeliveryStatus *string `json:"delivery_status,omitempty" example:"shipped"`
	EstimatedAt    *string `json:"estimated_at,omitempty"    example:"2026-09-05T14:00:00Z"`
}

// UpdateStatuses applies an admin-driven status change across order, payment
// and delivery. Every provided value is validated against its enum before any
// write; the store then applies all of them in one transaction, so an invalid
// value means zero fields change.
func (s *Service) UpdateStatuses(ctx context.Context, orderID int64, req StatusUpdateRequest) (*Order, error) {
	var upd StatusUpdate
	if req.OrderStatus != nil {
		if !ValidOrderStatus(*req.OrderStatus) {
			return nil, &ValidationError{Reason: fmt.Sprintf("invalid order status %q (allowed: %s)", *req.OrderStatus, OrderStatuses())}
		}
		upd.OrderStatus = req.OrderStatus
	}
	if req.PaymentStatus != nil {
		if !ValidPaymentStatus(*req.PaymentStatus) {
			return nil, &ValidationError{Reason: fmt.Sprintf("invalid payment status %q (allowed: %s)", *req.PaymentStatus, PaymentStatuses())}
		}
		upd.PaymentStatus = req.PaymentStatus
	}
	if req.DeliveryStatus != nil {
		if !ValidDeliveryStatus(*req.DeliveryStatus) {
			return nil, &ValidationError{Reason: fmt.Sprintf("invalid delivery status %q (allowed: %s)", *req.DeliveryStatus, DeliveryStatuses())}
		}
		upd.DeliveryStatus = req.DeliveryStatus
	}
	if req.EstimatedAt != nil {
		ts, err := time.Parse(time.RFC3339, *req.EstimatedAt)
		if err != nil {
			return nil, &ValidationError{Reason: "estimated_at must be an RFC 3339 timestamp"}
		}
		upd.EstimatedAt = &ts
	}
	if upd.Empty() {
		return nil, &ValidationError{Reason: "no fields to update"}
	}

	o, err := s.store.UpdateStatuses(ctx, orderID, upd)
	if err != nil {
		return nil, err
	}
	s.log.Info("order statuses updated", zap.Int64("order_id", orderID))
	return o, nil
}

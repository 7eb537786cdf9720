package order

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/petitmarche/backend/internal/product"
)

// memStore implements Store in memory with the same semantics as PGStore:
// conditional decrements re-checked at write time, cancel re-checked under
// the lock, all-or-nothing writes.
type memStore struct {
	mu       sync.Mutex
	products map[int64]*product.Product
	orders   map[int64]*Order
	nextID   int64

	// beforeCreate, when set, runs at the start of CreateOrder while holding
	// the lock. Lets tests mutate stock between validation and commit.
	beforeCreate func(s *memStore)
}

func newMemStore(products ...product.Product) *memStore {
	s := &memStore{
		products: make(map[int64]*product.Product),
		orders:   make(map[int64]*Order),
	}
	for i := range products {
		p := products[i]
		s.products[p.ID] = &p
	}
	return s
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) stock(productID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].Stock
}

func (s *memStore) setStock(productID int64, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[productID].Stock = stock
}

func (s *memStore) ProductsByIDs(_ context.Context, ids []int64) ([]product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []product.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memStore) CreateOrder(_ context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.beforeCreate != nil {
		s.beforeCreate(s)
	}

	// Re-check every guard before mutating anything, so a failure leaves no
	// partial state (the in-memory stand-in for the transaction rollback).
	for _, it := range o.Items {
		p, ok := s.products[it.ProductID]
		if !ok {
			return &NotFoundError{Resource: "product", IDs: []int64{it.ProductID}}
		}
		if p.Stock < it.Quantity {
			return &InsufficientStockError{ProductID: p.ID, Name: p.Name, Available: p.Stock, Requested: it.Quantity}
		}
	}

	now := time.Now()
	o.ID = s.id()
	o.CreatedAt = now
	o.UpdatedAt = now
	for i := range o.Items {
		it := &o.Items[i]
		it.ID = s.id()
		it.OrderID = o.ID
		s.products[it.ProductID].Stock -= it.Quantity
	}
	o.Payment.ID = s.id()
	o.Payment.OrderID = o.ID
	o.Payment.CreatedAt = now
	o.Payment.UpdatedAt = now
	o.Delivery.ID = s.id()
	o.Delivery.OrderID = o.ID
	o.Delivery.CreatedAt = now
	o.Delivery.UpdatedAt = now

	cp := cloneOrder(o)
	s.orders[o.ID] = &cp
	return nil
}

func (s *memStore) OrderByID(_ context.Context, id int64) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, &NotFoundError{Resource: "order", IDs: []int64{id}}
	}
	cp := cloneOrder(o)
	return &cp, nil
}

func (s *memStore) OrdersByUser(_ context.Context, userID int64) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *memStore) Orders(_ context.Context) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Order
	for _, o := range s.orders {
		out = append(out, cloneOrder(o))
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *memStore) CancelOrder(_ context.Context, id int64) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, &NotFoundError{Resource: "order", IDs: []int64{id}}
	}
	if o.Status == StatusCancelled {
		return nil, &InvalidStateError{Reason: "order is already cancelled"}
	}
	if !Cancellable(o.Status) {
		return nil, &InvalidStateError{Reason: fmt.Sprintf("order in status %q cannot be cancelled", o.Status)}
	}
	for _, it := range o.Items {
		s.products[it.ProductID].Stock += it.Quantity
	}
	o.Status = StatusCancelled
	o.UpdatedAt = time.Now()
	if o.Payment != nil {
		o.Payment.Status = PaymentCancelled
	}
	if o.Delivery != nil {
		o.Delivery.Status = DeliveryCancelled
	}
	cp := cloneOrder(o)
	return &cp, nil
}

func (s *memStore) UpdateStatuses(_ context.Context, id int64, upd StatusUpdate) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, &NotFoundError{Resource: "order", IDs: []int64{id}}
	}
	if upd.OrderStatus != nil {
		o.Status = *upd.OrderStatus
	}
	if upd.PaymentStatus != nil && o.Payment != nil {
		o.Payment.Status = *upd.PaymentStatus
	}
	if o.Delivery != nil {
		if upd.DeliveryStatus != nil {
			o.Delivery.Status = *upd.DeliveryStatus
		}
		if upd.EstimatedAt != nil {
			ts := *upd.EstimatedAt
			o.Delivery.EstimatedAt = &ts
		}
	}
	o.UpdatedAt = time.Now()
	cp := cloneOrder(o)
	return &cp, nil
}

func cloneOrder(o *Order) Order {
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	if o.Payment != nil {
		p := *o.Payment
		cp.Payment = &p
	}
	if o.Delivery != nil {
		d := *o.Delivery
		cp.Delivery = &d
	}
	return cp
}

func sortNewestFirst(orders []Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

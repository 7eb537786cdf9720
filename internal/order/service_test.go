package order

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petitmarche/backend/internal/product"
)

func createRequest(productID int64, qty int) CreateRequest {
	return CreateRequest{
		Items:    []ItemInput{{ProductID: productID, Quantity: qty}},
		Delivery: homeDelivery(),
	}
}

func TestCreate_HappyPath(t *testing.T) {
	store := newMemStore(product.Product{ID: 1, Name: "P1", Price: "10.00", Stock: 5})
	svc := newTestService(store)

	o, err := svc.Create(context.Background(), 42, createRequest(1, 3))
	require.NoError(t, err)

	assert.Equal(t, int64(42), o.UserID)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "30.00", o.Total)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "10.00", o.Items[0].Price)
	assert.Equal(t, 3, o.Items[0].Quantity)

	require.NotNil(t, o.Payment)
	assert.Equal(t, o.Total, o.Payment.Amount)
	assert.Equal(t, PaymentProcessing, o.Payment.Status)
	assert.Equal(t, o.ID, o.Payment.OrderID)

	require.NotNil(t, o.Delivery)
	assert.Equal(t, DeliveryPreparing, o.Delivery.Status)
	assert.Equal(t, MethodDelivery, o.Delivery.Method)
	require.NotNil(t, o.Delivery.Address)
	assert.Equal(t, "12 rue de la Paix, Paris", *o.Delivery.Address)

	assert.Equal(t, 2, store.stock(1))
}

func TestCreate_TotalIgnoresClientPrices(t *testing.T) {
	// The request shape carries no price field at all; this pins the snapshot
	// invariant: total is always price-at-creation times quantity.
	store := newMemStore(product.Product{ID: 1, Name: "P1", Price: "19.99", Stock: 100})
	svc := newTestService(store)

	o, err := svc.Create(context.Background(), 1, createRequest(1, 4))
	require.NoError(t, err)
	assert.Equal(t, "79.96", o.Total)

	// A later catalog price change must not affect the stored snapshot.
	store.mu.Lock()
	store.products[1].Price = "999.99"
	store.mu.Unlock()
	got, err := svc.Get(context.Background(), 1, false, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "19.99", got.Items[0].Price)
	assert.Equal(t, "79.96", got.Total)
}

func TestCreate_StockRaceLostAfterValidation(t *testing.T) {
	// The validator sees stock 5; a concurrent order drains it before the
	// transaction commits. The conditional decrement must catch it.
	store := newMemStore(product.Product{ID: 1, Name: "Clavier", Price: "10.00", Stock: 5})
	store.beforeCreate = func(s *memStore) {
		s.products[1].Stock = 2
		s.beforeCreate = nil
	}
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), 1, createRequest(1, 3))
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 2, ise.Available)
	assert.Equal(t, 3, ise.Requested)
	assert.Equal(t, 2, store.stock(1), "failed creation must not touch stock")
	orders, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders, "no partial order may survive the rollback")
}

func TestCreate_ProductDeletedBeforeCommit(t *testing.T) {
	store := newMemStore(product.Product{ID: 1, Name: "P1", Price: "10.00", Stock: 5})
	store.beforeCreate = func(s *memStore) {
		delete(s.products, 1)
	}
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), 1, createRequest(1, 1))
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
}

func TestCreate_ConcurrentOrdersNeverOversell(t *testing.T) {
	// Stock 5, 8 concurrent orders of quantity 2: exactly floor(5/2)=2 must
	// succeed and final stock must be 5-2*2=1.
	const (
		stock    = 5
		qty      = 2
		attempts = 8
	)
	store := newMemStore(product.Product{ID: 1, Name: "P1", Price: "10.00", Stock: stock})
	svc := newTestService(store)

	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Create(context.Background(), int64(i+1), createRequest(1, qty))
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		var ise *InsufficientStockError
		require.ErrorAs(t, err, &ise)
	}
	assert.Equal(t, stock/qty, successes)
	assert.Equal(t, stock-qty*successes, store.stock(1))
	assert.GreaterOrEqual(t, store.stock(1), 0)
}

func TestCancel_RestoresStockExactly(t *testing.T) {
	const baseline = 5
	store := newMemStore(product.Product{ID: 1, Name: "P1", Price: "10.00", Stock: baseline})
	svc := newTestService(store)

	o, err := svc.Create(context.Background(), 7, createRequest(1, 3))
	require.NoError(t, err)
	require.Equal(t, 2, store.stock(1))

	cancelled, err := svc.Cancel(context.Background(), 7, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, PaymentCancelled, cancelled.Payment.Status)
	assert.Equal(t, DeliveryCancelled, cancelled.Delivery.Status)
	assert.Equal(t, baseline, store.stock(1), "stock must return to the pre-order baseline")

	// Second cancel is rejected and must not credit stock again.
	_, err = svc.Cancel(context.Background(), 7, o.ID)
	var ste *InvalidStateError
	require.ErrorAs(t, err, &ste)
	assert.Contains(t, ste.Error(), "already cancelled")
	assert.Equal(t, baseline, store.stock(1))
}

func TestCancel_RestoresDuplicateProductLines(t *testing.T) {
	// Two lines for the same product are two item rows and two decrements;
	// cancelling must credit back their sum, not one line's quantity.
	const baseline = 5
	store := newMemStore(product.Product{ID: 1, Name: "P1", Price: "10.00", Stock: baseline})
	svc := newTestService(store)

	o, err := svc.Create(context.Background(), 7, CreateRequest{
		Items:    []ItemInput{{ProductID: 1, Quantity: 2}, {ProductID: 1, Quantity: 3}},
		Delivery: homeDelivery(),
	})
	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	require.Equal(t, 0, store.stock(1))
	assert.Equal(t, "50.00", o.Total)

	cancelled, err := svc.Cancel(context.Background(), 7, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, baseline, store.stock(1), "every line's quantity must be credited back")
}

func TestCancel_OwnershipEnforced(t *testing.T) {
	store := newMemStore(product.Product{ID: 1, Name: "P1", Price: "10.00", Stock: 5})
	svc := newTestService(store)

	o, err := svc.Create(context.Background(), 7, createRequest(1, 1))
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), 8, o.ID)
	var ae *AuthorizationError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 4, store.stock(1), "denied cancel must not restock")
}

func TestCancel_RejectedFromShipped(t *testing.T) {
	store := newMemStore(product.Product{ID: 1, Name: "P1", Price: "10.00", Stock: 5})
	svc := newTestService(store)

	o, err := svc.Create(context.Background(), 7, createRequest(1, 1))
	require.NoError(t, err)
	shipped := StatusShipped
	_, err = svc.UpdateStatuses(context.Background(), o.ID, StatusUpdateRequest{OrderStatus: &shipped})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), 7, o.ID)
	var ste *InvalidStateError
	require.ErrorAs(t, err, &ste)
	assert.Contains(t, ste.Error(), `"shipped"`)
}

func TestCancel_MissingOrder(t *testing.T) {
	svc := newTestService(newMemStore())
	_, err := svc.Cancel(context.Background(), 1, 999)
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
}

func TestGet_OwnerAdminAndStranger(t *testing.T) {
	store := newMemStore(product.Product{ID: 1, Name: "P1", Price: "10.00", Stock: 5})
	svc := newTestService(store)

	o, err := svc.Create(context.Background(), 7, createRequest(1, 1))
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 7, false, o.ID)
	assert.NoError(t, err, "owner reads own order")

	_, err = svc.Get(context.Background(), 99, true, o.ID)
	assert.NoError(t, err, "admin reads any order")

	_, err = svc.Get(context.Background(), 99, false, o.ID)
	var ae *AuthorizationError
	require.ErrorAs(t, err, &ae)
}

func TestListMine_NewestFirst(t *testing.T) {
	store := newMemStore(product.Product{ID: 1, Name: "P1", Price: "10.00", Stock: 100})
	svc := newTestService(store)

	first, err := svc.Create(context.Background(), 7, createRequest(1, 1))
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), 7, createRequest(1, 2))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 8, createRequest(1, 1))
	require.NoError(t, err)

	mine, err := svc.ListMine(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)
}

func TestUpdateStatuses_AllOrNothingValidation(t *testing.T) {
	store := newMemStore(product.Product{ID: 1, Name: "P1", Price: "10.00", Stock: 5})
	svc := newTestService(store)

	o, err := svc.Create(context.Background(), 7, createRequest(1, 1))
	require.NoError(t, err)

	paid := PaymentPaid
	bogus := "teleported"
	_, err = svc.UpdateStatuses(context.Background(), o.ID, StatusUpdateRequest{
		PaymentStatus:  &paid,
		DeliveryStatus: &bogus,
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Error(), "teleported")
	assert.Contains(t, ve.Error(), DeliveryShipped)

	// Nothing changed: the invalid value was caught before any write.
	got, err := svc.Get(context.Background(), 7, false, o.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentProcessing, got.Payment.Status)
	assert.Equal(t, DeliveryPreparing, got.Delivery.Status)
}

func TestUpdateStatuses_EmptyUpdateRejected(t *testing.T) {
	svc := newTestService(newMemStore())
	_, err := svc.UpdateStatuses(context.Background(), 1, StatusUpdateRequest{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Error(), "no fields")
}

func TestUpdateStatuses_BadTimestampRejected(t *testing.T) {
	svc := newTestService(newMemStore())
	bad := "tomorrow-ish"
	_, err := svc.UpdateStatuses(context.Background(), 1, StatusUpdateRequest{EstimatedAt: &bad})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestUpdateStatuses_AppliesAllProvidedFields(t *testing.T) {
	store := newMemStore(product.Product{ID: 1, Name: "P1", Price: "10.00", Stock: 5})
	svc := newTestService(store)

	o, err := svc.Create(context.Background(), 7, createRequest(1, 1))
	require.NoError(t, err)

	orderStatus := StatusShipped
	paymentStatus := PaymentPaid
	deliveryStatus := DeliveryShipped
	eta := "2026-09-05T14:00:00Z"
	got, err := svc.UpdateStatuses(context.Background(), o.ID, StatusUpdateRequest{
		OrderStatus:    &orderStatus,
		PaymentStatus:  &paymentStatus,
		DeliveryStatus: &deliveryStatus,
		EstimatedAt:    &eta,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, got.Status)
	assert.Equal(t, PaymentPaid, got.Payment.Status)
	assert.Equal(t, DeliveryShipped, got.Delivery.Status)
	require.NotNil(t, got.Delivery.EstimatedAt)
	assert.Equal(t, "2026-09-05T14:00:00Z", got.Delivery.EstimatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"))
}

func TestUpdateStatuses_MissingOrder(t *testing.T) {
	svc := newTestService(newMemStore())
	s := StatusPaid
	_, err := svc.UpdateStatuses(context.Background(), 404, StatusUpdateRequest{OrderStatus: &s})
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
}

// Pins the concrete end-to-end scenario: P1 {price 10, stock 5}; order A of 3
// succeeds (total 30, stock 2); order B of 3 fails naming 2/3; cancelling A
// brings stock back to 5.
func TestScenario_TwoBuyersAndACancel(t *testing.T) {
	store := newMemStore(product.Product{ID: 1, Name: "P1", Price: "10", Stock: 5})
	svc := newTestService(store)

	a, err := svc.Create(context.Background(), 1, createRequest(1, 3))
	require.NoError(t, err)
	assert.Equal(t, "30.00", a.Total)
	assert.Equal(t, 2, store.stock(1))

	_, err = svc.Create(context.Background(), 2, createRequest(1, 3))
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 2, ise.Available)
	assert.Equal(t, 3, ise.Requested)

	_, err = svc.Cancel(context.Background(), 1, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, store.stock(1))
}

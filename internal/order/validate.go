package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/petitmarche/backend/internal/product"
)

// ItemInput is the raw client item, trusted for nothing but the product id
// and the quantity.
// swagger:model OrderItemInput
type ItemInput struct {
	ProductID int64 `json:"product_id" example:"42"`
	Quantity  int   `json:"quantity"   example:"2"`
}

// DeliveryInput selects the delivery method. Address is required for home
// delivery, pickup point for pickup.
// swagger:model DeliveryInput
type DeliveryInput struct {
	Method      string `json:"method"       example:"delivery"`
	Address     string `json:"address"      example:"12 rue de la Paix, Paris"`
	PickupPoint string `json:"pickup_point" example:""`
}

// CreateRequest is the payload of POST /orders.
// swagger:model CreateOrderRequest
type CreateRequest struct {
	Items    []ItemInput   `json:"items"`
	Delivery DeliveryInput `json:"delivery"`
}

// validated is the output of the price/stock validation pass: items carrying
// catalog price snapshots, the server-computed total and the resolved
// delivery selection. The stock check here is advisory; the store re-checks
// it with a conditional write inside the creation transaction.
type validated struct {
	items   []Item
	total   decimal.Decimal
	method  string
	address *string
}

// validate turns a raw request into a priced, stock-checked item set using
// only catalog data. No side effects.
func (s *Service) validate(ctx context.Context, req CreateRequest) (*validated, error) {
	if len(req.Items) == 0 {
		return nil, &ValidationError{Reason: "order must contain at least one item"}
	}
	if len(req.Items) > MaxItems {
		return nil, &ValidationError{Reason: fmt.Sprintf("order cannot contain more than %d items", MaxItems)}
	}
	for _, it := range req.Items {
		if it.ProductID <= 0 {
			return nil, &ValidationError{Reason: "product id must be a positive integer"}
		}
		if it.Quantity < MinQuantity || it.Quantity > MaxQuantity {
			return nil, &ValidationError{Reason: fmt.Sprintf("quantity must be between %d and %d", MinQuantity, MaxQuantity)}
		}
	}

	address, err := resolveDelivery(req.Delivery)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(req.Items))
	seen := make(map[int64]bool, len(req.Items))
	for _, it := range req.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}

	products, err := s.store.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[int64]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	var missing []int64
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{Resource: "product", IDs: missing}
	}

	v := &validated{method: req.Delivery.Method, address: address, total: decimal.Zero}
	for _, it := range req.Items {
		p := byID[it.ProductID]
		if p.Stock < it.Quantity {
			return nil, &InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Available: p.Stock,
				Requested: it.Quantity,
			}
		}
		// Always the catalog price, never a client-supplied one.
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("catalog price for product %d: %w", p.ID, err)
		}
		v.total = v.total.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		v.items = append(v.items, Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			Price:       price.StringFixed(2),
		})
	}
	return v, nil
}

func resolveDelivery(d DeliveryInput) (*string, error) {
	switch d.Method {
	case MethodDelivery:
		addr := strings.TrimSpace(d.Address)
		if addr == "" {
			return nil, &ValidationError{Reason: "address is required for home delivery"}
		}
		return &addr, nil
	case MethodPickup:
		point := strings.TrimSpace(d.PickupPoint)
		if point == "" {
			return nil, &ValidationError{Reason: "pickup point is required for pickup"}
		}
		return &point, nil
	default:
		return nil, &ValidationError{Reason: fmt.Sprintf("delivery method must be %q or %q", MethodDelivery, MethodPickup)}
	}
}

package order

import (
	"strings"
	"time"
)

// Order statuses. pending -> paid -> preparing -> shipped -> delivered is the
// forward path; cancelled is terminal and reachable only from pending/preparing.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusPreparing = "preparing"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Payment statuses.
const (
	PaymentProcessing = "processing"
	PaymentPaid       = "paid"
	PaymentFailed     = "failed"
	PaymentCancelled  = "cancelled"
	PaymentRefunded   = "refunded"
)

// Delivery statuses.
const (
	DeliveryPreparing = "preparing"
	DeliveryShipped   = "shipped"
	DeliveryDelivered = "delivered"
	DeliveryCancelled = "cancelled"
)

// Delivery methods.
const (
	MethodDelivery = "delivery"
	MethodPickup   = "pickup"
)

// Item and item-count bounds per order.
const (
	MinQuantity = 1
	MaxQuantity = 100
	MaxItems    = 100
)

var (
	orderStatuses    = []string{StatusPending, StatusPaid, StatusPreparing, StatusShipped, StatusDelivered, StatusCancelled}
	paymentStatuses  = []string{PaymentProcessing, PaymentPaid, PaymentFailed, PaymentCancelled, PaymentRefunded}
	deliveryStatuses = []string{DeliveryPreparing, DeliveryShipped, DeliveryDelivered, DeliveryCancelled}
)

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func ValidOrderStatus(s string) bool    { return contains(orderStatuses, s) }
func ValidPaymentStatus(s string) bool  { return contains(paymentStatuses, s) }
func ValidDeliveryStatus(s string) bool { return contains(deliveryStatuses, s) }

func OrderStatuses() string    { return strings.Join(orderStatuses, ", ") }
func PaymentStatuses() string  { return strings.Join(paymentStatuses, ", ") }
func DeliveryStatuses() string { return strings.Join(deliveryStatuses, ", ") }

// Cancellable reports whether an order in the given status may still be
// cancelled by its owner.
func Cancellable(status string) bool {
	return status == StatusPending || status == StatusPreparing
}

type Order struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Status    string    `json:"status"`
	Total     string    `json:"total"` // NUMERIC -> string
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items    []Item    `json:"items"`
	Payment  *Payment  `json:"payment,omitempty"`
	Delivery *Delivery `json:"delivery,omitempty"`
}

type Item struct {
	ID          int64  `json:"id"`
	OrderID     int64  `json:"order_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	// Price is the product price snapshotted at order-creation time and never
	// updated afterwards, even if the catalog price changes.
	Price string `json:"price"`
}

type Payment struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Amount    string    `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Delivery struct {
	ID          int64      `json:"id"`
	OrderID     int64      `json:"order_id"`
	Status      string     `json:"status"`
	Method      string     `json:"method"`
	Address     *string    `json:"address,omitempty"`
	EstimatedAt *time.Time `json:"estimated_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

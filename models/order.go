package models

import (
	"encoding/json"
	"time"
)

type OrderStatus string
type PaymentStatus string

const (
	// Order statuses, in delivery order. CANCELLED sits outside the
	// progression and is reachable from any non-terminal state.
	OrderStatusPlaced         OrderStatus = "PLACED"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusPreparing      OrderStatus = "PREPARING"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"

	// Payment statuses
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"

	// Payment methods
	PaymentMethodCOD  = "COD"
	PaymentMethodCard = "CARD"
)

// StatusSteps is the ordered progression rendered by the tracking view.
// CANCELLED is deliberately absent.
var StatusSteps = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

// StatusStepIndex locates a status in StatusSteps. A status that is not in
// the list (including CANCELLED) reports the final index, so an unknown
// status renders as fully complete. Callers must check for CANCELLED first.
func StatusStepIndex(status OrderStatus) int {
	for i, s := range StatusSteps {
		if s == status {
			return i
		}
	}
	return len(StatusSteps) - 1
}

// ValidOrderStatus reports whether the backend accepts the status value.
func ValidOrderStatus(status OrderStatus) bool {
	if status == OrderStatusCancelled {
		return true
	}
	for _, s := range StatusSteps {
		if s == status {
			return true
		}
	}
	return false
}

// Order is immutable once created; only Status changes, and only through an
// admin status-update response replacing the record wholesale.
type Order struct {
	ID              string          `json:"_id"`
	UserID          string          `json:"userId"`
	RestaurantID    RestaurantRef   `json:"restaurantId"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     float64         `json:"totalAmount"`
	Status          OrderStatus     `json:"status"`
	PaymentInfo     PaymentInfo     `json:"paymentInfo"`
	DeliveryAddress DeliveryAddress `json:"deliveryAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type OrderItem struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type PaymentInfo struct {
	Method string        `json:"method"`
	Status PaymentStatus `json:"status"`
}

// IsCancelled reports whether the order hit the terminal cancellation branch.
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// RestaurantRef is the order's restaurant reference. The backend returns it
// either as a bare id or populated as an object with a name.
type RestaurantRef struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

func (r *RestaurantRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	type ref RestaurantRef
	return json.Unmarshal(data, (*ref)(r))
}

func (r RestaurantRef) MarshalJSON() ([]byte, error) {
	if r.Name == "" {
		return json.Marshal(r.ID)
	}
	type ref RestaurantRef
	return json.Marshal(ref(r))
}

package models

// Cart is the server-authoritative cart snapshot. The client never computes
// item totals itself; every mutation response replaces the whole snapshot.
type Cart struct {
	ID       string     `json:"_id"`
	UserID   string     `json:"userId"`
	Items    []CartItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
}

type CartItem struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Empty reports whether the cart holds no items. A nil cart is empty.
func (c *Cart) Empty() bool {
	return c == nil || len(c.Items) == 0
}

package models

// User is the authenticated identity returned by the auth endpoints.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Roles known to the backend.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IsAdmin reports whether the user may call the /api/admin endpoints.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DeliveryAddress is sent with order creation and payment confirmation.
// Street, city and pincode are mandatory; the rest is optional.
type DeliveryAddress struct {
	Label    string `json:"label,omitempty"`
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state,omitempty"`
	Pincode  string `json:"pincode"`
	Landmark string `json:"landmark,omitempty"`
}

// Complete reports whether the mandatory address fields are filled.
func (a DeliveryAddress) Complete() bool {
	return a.Street != "" && a.City != "" && a.Pincode != ""
}

package models

// Restaurant as listed by the public browse endpoints.
type Restaurant struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Cuisine  string  `json:"cuisine,omitempty"`
	Address  string  `json:"address,omitempty"`
	Image    string  `json:"image,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
	IsOpen   bool    `json:"isOpen"`
	Delivery float64 `json:"deliveryFee,omitempty"`
}

// MenuItem belongs to exactly one restaurant.
type MenuItem struct {
	ID           string  `json:"_id"`
	RestaurantID string  `json:"restaurantId"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price"`
	Image        string  `json:"image,omitempty"`
	Available    bool    `json:"available"`
}

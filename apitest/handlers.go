package apitest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/junaidrashid-git/tomato-client/models"
)

// ---- auth ----

func (b *Backend) register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name, email and a 6+ character password are required"})
		return
	}

	b.mu.Lock()
	if _, exists := b.users[req.Email]; exists {
		b.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already registered"})
		return
	}
	u := &userRecord{
		User:     models.User{ID: uuid.NewString(), Name: req.Name, Email: req.Email, Role: models.RoleUser},
		Password: req.Password,
	}
	b.users[req.Email] = u
	b.mu.Unlock()

	b.setSession(c, u.User)
	c.JSON(http.StatusCreated, gin.H{"user": u.User})
}

func (b *Backend) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	b.mu.Lock()
	u, exists := b.users[req.Email]
	b.mu.Unlock()
	if !exists || u.Password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	b.setSession(c, u.User)
	c.JSON(http.StatusOK, gin.H{"user": u.User})
}

func (b *Backend) logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (b *Backend) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}

// ---- restaurants ----

func (b *Backend) listRestaurants(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"restaurants": b.restaurants})
}

func (b *Backend) restaurantDetail(c *gin.Context) {
	id := c.Param("id")
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.restaurants {
		if r.ID == id {
			c.JSON(http.StatusOK, gin.H{"restaurant": r})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Restaurant not found"})
}

func (b *Backend) menu(c *gin.Context) {
	id := c.Param("restaurantId")
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"items": b.menus[id]})
}

// ---- cart ----

func recomputeSubtotal(cart *models.Cart) {
	subtotal := 0.0
	for _, item := range cart.Items {
		subtotal += item.Price * float64(item.Quantity)
	}
	cart.Subtotal = subtotal
}

func (b *Backend) getCart(c *gin.Context) {
	user := currentUser(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"cart": b.carts[user.ID]})
}

func (b *Backend) addToCart(c *gin.Context) {
	var req struct {
		RestaurantID string `json:"restaurantId" binding:"required"`
		MenuItemID   string `json:"menuItemId" binding:"required"`
		Quantity     int    `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "restaurantId, menuItemId and quantity are required"})
		return
	}

	user := currentUser(c)
	b.mu.Lock()
	defer b.mu.Unlock()

	var menuItem *models.MenuItem
	for i, item := range b.menus[req.RestaurantID] {
		if item.ID == req.MenuItemID {
			menuItem = &b.menus[req.RestaurantID][i]
			break
		}
	}
	if menuItem == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Menu item does not exist"})
		return
	}

	cart := b.carts[user.ID]
	if cart == nil {
		cart = &models.Cart{ID: uuid.NewString(), UserID: user.ID}
		b.carts[user.ID] = cart
	}

	updated := false
	for i := range cart.Items {
		if cart.Items[i].Name == menuItem.Name {
			cart.Items[i].Quantity += req.Quantity
			updated = true
			break
		}
	}
	if !updated {
		cart.Items = append(cart.Items, models.CartItem{
			ID:       uuid.NewString(),
			Name:     menuItem.Name,
			Price:    menuItem.Price,
			Quantity: req.Quantity,
		})
	}

	recomputeSubtotal(cart)
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

func (b *Backend) updateCartItem(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Quantity must be at least 1"})
		return
	}

	user := currentUser(c)
	itemID := c.Param("itemId")
	b.mu.Lock()
	defer b.mu.Unlock()

	cart := b.carts[user.ID]
	if cart == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Cart not found"})
		return
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = req.Quantity
			recomputeSubtotal(cart)
			c.JSON(http.StatusOK, gin.H{"cart": cart})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Cart item not found"})
}

func (b *Backend) removeCartItem(c *gin.Context) {
	user := currentUser(c)
	itemID := c.Param("itemId")
	b.mu.Lock()
	defer b.mu.Unlock()

	cart := b.carts[user.ID]
	if cart == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Cart not found"})
		return
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			recomputeSubtotal(cart)
			c.JSON(http.StatusOK, gin.H{"cart": cart})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Cart item not found"})
}

func (b *Backend) clearCart(c *gin.Context) {
	user := currentUser(c)
	b.mu.Lock()
	delete(b.carts, user.ID)
	b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// ---- orders ----

type orderRequest struct {
	DeliveryAddress models.DeliveryAddress `json:"deliveryAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

func (b *Backend) buildOrderLocked(user models.User, cart *models.Cart, address models.DeliveryAddress, payment models.PaymentInfo) models.Order {
	items := make([]models.OrderItem, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = models.OrderItem{ID: item.ID, Name: item.Name, Price: item.Price, Quantity: item.Quantity}
	}

	order := models.Order{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		Items:           items,
		TotalAmount:     cart.Subtotal + DeliveryFee,
		Status:          models.OrderStatusPlaced,
		PaymentInfo:     payment,
		DeliveryAddress: address,
		CreatedAt:       time.Now().UTC(),
	}
	b.orders = append(b.orders, order)
	delete(b.carts, user.ID)
	return order
}

func (b *Backend) createOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order payload"})
		return
	}
	if !req.DeliveryAddress.Complete() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Delivery address is incomplete"})
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentMethodCOD
	}

	user := currentUser(c)
	b.mu.Lock()
	cart := b.carts[user.ID]
	if cart.Empty() {
		b.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cart is empty"})
		return
	}
	order := b.buildOrderLocked(user, cart, req.DeliveryAddress, models.PaymentInfo{
		Method: req.PaymentMethod,
		Status: models.PaymentStatusPending,
	})
	b.mu.Unlock()

	b.Broadcast(order)
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (b *Backend) myOrders(c *gin.Context) {
	user := currentUser(c)
	b.mu.Lock()
	defer b.mu.Unlock()

	orders := []models.Order{}
	for _, o := range b.orders {
		if o.UserID == user.ID {
			orders = append(orders, o)
		}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (b *Backend) orderByID(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, o := range b.orders {
		if o.ID == id {
			if o.UserID != user.ID && user.Role != models.RoleAdmin {
				c.JSON(http.StatusForbidden, gin.H{"message": "Not allowed"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"order": o})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
}

func (b *Backend) allOrders(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"orders": append([]models.Order{}, b.orders...)})
}

func (b *Backend) updateOrderStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidOrderStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order status"})
		return
	}

	id := c.Param("id")
	b.mu.Lock()
	var updated *models.Order
	for i := range b.orders {
		if b.orders[i].ID == id {
			b.orders[i].Status = req.Status
			o := b.orders[i]
			updated = &o
			break
		}
	}
	b.mu.Unlock()

	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		return
	}
	b.Broadcast(*updated)
	c.JSON(http.StatusOK, gin.H{"order": updated})
}

// ---- payments ----

func (b *Backend) createPaymentSession(c *gin.Context) {
	user := currentUser(c)
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.carts[user.ID].Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cart is empty"})
		return
	}

	sessionID := "cs_test_" + uuid.NewString()
	b.paySessions[user.ID] = sessionID
	c.JSON(http.StatusOK, gin.H{
		"sessionId": sessionID,
		"url":       "https://checkout.stripe.test/pay/" + sessionID,
	})
}

func (b *Backend) confirmPaymentOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.DeliveryAddress.Complete() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Delivery address is incomplete"})
		return
	}

	user := currentUser(c)
	b.mu.Lock()
	if _, ok := b.paySessions[user.ID]; !ok {
		b.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"message": "No payment session to confirm"})
		return
	}
	cart := b.carts[user.ID]
	if cart.Empty() {
		b.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cart is empty"})
		return
	}
	delete(b.paySessions, user.ID)
	order := b.buildOrderLocked(user, cart, req.DeliveryAddress, models.PaymentInfo{
		Method: models.PaymentMethodCard,
		Status: models.PaymentStatusPaid,
	})
	b.mu.Unlock()

	b.Broadcast(order)
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// ---- websocket feed ----

func (b *Backend) orderSocket(c *gin.Context) {
	conn, err := b.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	b.mu.Lock()
	b.wsConns[conn] = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.wsConns, conn)
		b.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// CloseFeeds severs every connected feed client, for reconnect tests.
func (b *Backend) CloseFeeds() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.wsConns {
		conn.Close()
	}
}

// Broadcast pushes an order event to every connected feed client.
func (b *Backend) Broadcast(order models.Order) {
	data, err := json.Marshal(order)
	if err != nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.wsConns {
		_ = conn.WriteMessage(websocket.TextMessage, data)
	}
}

// Package apitest is an in-memory stand-in for the Tomato backend, close
// enough to the real API contract to run the client stores against it in
// tests: cookie-based JWT sessions, server-computed cart snapshots, order
// lifecycle, admin role checks, the Stripe-style two-phase payment, and the
// order events websocket.
package apitest

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/junaidrashid-git/tomato-client/models"
)

// DeliveryFee is added to the cart subtotal on every order.
const DeliveryFee = 30

func init() {
	gin.SetMode(gin.TestMode)
}

type userRecord struct {
	models.User
	Password string
}

// Backend holds all fake server state. Safe for use from a single test;
// handlers run on the httptest server goroutines and lock internally.
type Backend struct {
	engine *gin.Engine
	secret []byte

	mu          sync.Mutex
	users       map[string]*userRecord // keyed by email
	carts       map[string]*models.Cart
	orders      []models.Order
	restaurants []models.Restaurant
	menus       map[string][]models.MenuItem
	paySessions map[string]string // userID -> pending payment session
	upgrader    websocket.Upgrader
	wsConns     map[*websocket.Conn]bool
}

func New() *Backend {
	b := &Backend{
		secret:      []byte("apitest-secret"),
		users:       make(map[string]*userRecord),
		carts:       make(map[string]*models.Cart),
		menus:       make(map[string][]models.MenuItem),
		paySessions: make(map[string]string),
		upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		wsConns:     make(map[*websocket.Conn]bool),
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.POST("/api/auth/register", b.register)
	r.POST("/api/auth/login", b.login)
	r.POST("/api/auth/logout", b.requireUser, b.logout)
	r.GET("/api/auth/me", b.requireUser, b.me)

	r.GET("/api/restaurants", b.listRestaurants)
	r.GET("/api/restaurants/:id", b.restaurantDetail)
	r.GET("/api/menu/:restaurantId", b.menu)

	r.GET("/api/cart", b.requireUser, b.getCart)
	r.POST("/api/cart/add", b.requireUser, b.addToCart)
	r.PUT("/api/cart/item/:itemId", b.requireUser, b.updateCartItem)
	r.DELETE("/api/cart/item/:itemId", b.requireUser, b.removeCartItem)
	r.DELETE("/api/cart/clear", b.requireUser, b.clearCart)

	r.POST("/api/orders", b.requireUser, b.createOrder)
	r.GET("/api/orders/my", b.requireUser, b.myOrders)
	r.GET("/api/orders/ws", b.orderSocket)
	r.GET("/api/orders/:id", b.requireUser, b.orderByID)

	r.GET("/api/admin/orders", b.requireUser, b.requireAdmin, b.allOrders)
	r.PUT("/api/admin/orders/:id/status", b.requireUser, b.requireAdmin, b.updateOrderStatus)

	r.POST("/api/payments/stripe/create-session", b.requireUser, b.createPaymentSession)
	r.POST("/api/payments/stripe/confirm-order", b.requireUser, b.confirmPaymentOrder)

	b.engine = r
	return b
}

// Handler exposes the backend for httptest.NewServer.
func (b *Backend) Handler() http.Handler {
	return b.engine
}

// ---- seeding helpers ----

// SeedUser creates an account directly and returns it.
func (b *Backend) SeedUser(name, email, password, role string) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := &userRecord{
		User:     models.User{ID: uuid.NewString(), Name: name, Email: email, Role: role},
		Password: password,
	}
	b.users[email] = u
	return u.User
}

// SeedRestaurant adds a restaurant with a menu and returns it.
func (b *Backend) SeedRestaurant(name string, items ...models.MenuItem) models.Restaurant {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := models.Restaurant{ID: uuid.NewString(), Name: name, IsOpen: true}
	b.restaurants = append(b.restaurants, r)
	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].RestaurantID = r.ID
		items[i].Available = true
	}
	b.menus[r.ID] = items
	return r
}

// SeedOrder injects an order directly into the collection.
func (b *Backend) SeedOrder(order models.Order) models.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	b.orders = append(b.orders, order)
	return order
}

// Orders returns a copy of the current order collection.
func (b *Backend) Orders() []models.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Order(nil), b.orders...)
}

// ---- session plumbing ----

func (b *Backend) issueToken(u models.User) string {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    u.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString(b.secret)
	return signed
}

func (b *Backend) setSession(c *gin.Context, u models.User) {
	c.SetCookie("token", b.issueToken(u), int((24 * time.Hour).Seconds()), "/", "", false, true)
}

func (b *Backend) requireUser(c *gin.Context) {
	raw, err := c.Cookie("token")
	if err != nil || raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not logged in"})
		return
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return b.secret, nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token claims"})
		return
	}

	email, _ := claims["email"].(string)
	b.mu.Lock()
	u, exists := b.users[email]
	b.mu.Unlock()
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not logged in"})
		return
	}

	c.Set("user", u.User)
	c.Next()
}

func (b *Backend) requireAdmin(c *gin.Context) {
	user := currentUser(c)
	if user.Role != models.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
		return
	}
	c.Next()
}

func currentUser(c *gin.Context) models.User {
	u, _ := c.Get("user")
	user, _ := u.(models.User)
	return user
}

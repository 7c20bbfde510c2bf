package cartStore

import (
	"context"
	"fmt"
	"sync"

	"github.com/junaidrashid-git/tomato-client/api"
	"github.com/junaidrashid-git/tomato-client/models"
)

// Fallback messages shown when the backend supplies none.
const (
	msgAuthIssue    = "Please login to use cart."
	msgFetchFailed  = "Failed to load cart"
	msgAddFailed    = "Failed to add item to cart"
	msgUpdateFailed = "Failed to update cart item"
	msgRemoveFailed = "Failed to remove item from cart"
	msgClearFailed  = "Failed to clear cart"
)

// State mirrors the server-owned cart. Cart is nil both before the first
// fetch and after a clear; the UI treats the two identically. The snapshot is
// replaced wholesale on every fulfilled mutation, never patched locally,
// because price and availability are server-computed.
type State struct {
	Cart        *models.Cart
	Loading     bool
	Err         string
	IsAuthIssue bool
}

type Store struct {
	api *api.Client

	mu    sync.Mutex
	state State
	subs  []func()
}

func New(client *api.Client) *Store {
	return &Store{api: client}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) update(apply func(*State)) {
	s.mu.Lock()
	apply(&s.state)
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

func (s *Store) begin() {
	s.update(func(st *State) {
		st.Loading = true
		st.Err = ""
		st.IsAuthIssue = false
	})
}

// finishSnapshot applies the standard completion: on success the returned
// snapshot replaces the cart; on HTTP 401 the auth-issue flag is raised and
// the cart is left untouched.
func (s *Store) finishSnapshot(cart *models.Cart, err error, fallback string) {
	s.update(func(st *State) {
		st.Loading = false
		if err == nil {
			st.Cart = cart
			return
		}
		if api.AuthRequired(err) {
			st.IsAuthIssue = true
			st.Err = msgAuthIssue
			return
		}
		st.Err = api.MessageOr(err, fallback)
	})
}

type cartEnvelope struct {
	Cart *models.Cart `json:"cart"`
}

// Fetch loads the current cart snapshot.
func (s *Store) Fetch(ctx context.Context) error {
	s.begin()
	var env cartEnvelope
	err := s.api.Get(ctx, "/api/cart", &env)
	s.finishSnapshot(env.Cart, err, msgFetchFailed)
	return err
}

// Add puts a menu item in the cart and replaces the snapshot with the
// server's resulting cart.
func (s *Store) Add(ctx context.Context, restaurantID, menuItemID string, quantity int) error {
	s.begin()
	body := map[string]any{
		"restaurantId": restaurantID,
		"menuItemId":   menuItemID,
		"quantity":     quantity,
	}
	var env cartEnvelope
	err := s.api.Post(ctx, "/api/cart/add", body, &env)
	s.finishSnapshot(env.Cart, err, msgAddFailed)
	return err
}

// UpdateItem sets the quantity of an existing cart item.
func (s *Store) UpdateItem(ctx context.Context, itemID string, quantity int) error {
	s.begin()
	body := map[string]any{"quantity": quantity}
	var env cartEnvelope
	err := s.api.Put(ctx, "/api/cart/item/"+itemID, body, &env)
	s.finishSnapshot(env.Cart, err, msgUpdateFailed)
	return err
}

// Remove deletes one item from the cart.
func (s *Store) Remove(ctx context.Context, itemID string) error {
	s.begin()
	var env cartEnvelope
	err := s.api.Delete(ctx, "/api/cart/item/"+itemID, &env)
	s.finishSnapshot(env.Cart, err, msgRemoveFailed)
	return err
}

// Clear empties the cart. A fulfilled clear sets the snapshot to nil rather
// than an empty-items cart; "no cart loaded" and "empty cart" are one state.
func (s *Store) Clear(ctx context.Context) error {
	s.begin()
	err := s.api.Delete(ctx, "/api/cart/clear", nil)
	s.update(func(st *State) {
		st.Loading = false
		if err == nil {
			st.Cart = nil
			return
		}
		if api.AuthRequired(err) {
			st.IsAuthIssue = true
			st.Err = msgAuthIssue
			return
		}
		st.Err = api.MessageOr(err, msgClearFailed)
	})
	return err
}

// Reset drops the slice back to its initial state. The orchestrator calls it
// after a fulfilled logout so no cart survives the session it belongs to.
func (s *Store) Reset() {
	s.update(func(st *State) {
		*st = State{}
	})
}

// ClearError drops the visible error and the auth-issue flag.
func (s *Store) ClearError() {
	s.update(func(st *State) {
		st.Err = ""
		st.IsAuthIssue = false
	})
}

// Describe renders a one-line summary, used by the CLI.
func Describe(c *models.Cart) string {
	if c.Empty() {
		return "cart is empty"
	}
	return fmt.Sprintf("%d items, subtotal %.2f", len(c.Items), c.Subtotal)
}

package orderStore

import (
	"context"
	"sync"

	"github.com/junaidrashid-git/tomato-client/api"
	"github.com/junaidrashid-git/tomato-client/models"
)

// Fallback messages shown when the backend supplies none.
const (
	msgCreateAuth       = "Please login to place an order."
	msgCreateFailed     = "Failed to place order. Try again."
	msgMyOrdersAuth     = "Please login to view your orders."
	msgMyOrdersFailed   = "Failed to load orders."
	msgAdminListAuth    = "You are not authorized to view orders."
	msgAdminListFailed  = "Failed to load all orders."
	msgUpdateAuth       = "You are not authorized to update order status."
	msgUpdateFailed     = "Failed to update order status."
	msgSelectedAuth     = "Not allowed to view this order."
	msgSelectedFailed   = "Failed to load order details."
)

// State holds four independent order slices: creation, the user's history,
// the admin collection, and the single order selected for tracking. Orders
// are never deleted here; only a status-update response replaces a record,
// and only the matching one.
type State struct {
	MyOrders       []models.Order
	MyOrdersLoading bool
	MyOrdersErr    string

	Creating    bool
	CreateErr   string
	// LastCreated drives the one-time post-creation navigation. The consuming
	// view must clear it once used or it re-triggers on the next render.
	LastCreated *models.Order

	AdminOrders        []models.Order
	AdminOrdersLoading bool
	AdminOrdersErr     string
	UpdatingStatus     bool
	UpdateStatusErr    string

	Selected        *models.Order
	SelectedLoading bool
	SelectedErr     string
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
	st := s.state
	st.MyOrders = append([]models.Order(nil), s.state.MyOrders...)
	st.AdminOrders = append([]models.Order(nil), s.state.AdminOrders...)
	return st
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

type orderEnvelope struct {
	Order *models.Order `json:"order"`
}

type ordersEnvelope struct {
	Orders []models.Order `json:"orders"`
}

// Create places an order from the current cart. The cart-not-empty
// precondition is the caller's to check before dispatch; a server-side
// rejection still lands here as a visible error.
func (s *Store) Create(ctx context.Context, address models.DeliveryAddress, paymentMethod string) (*models.Order, error) {
	s.update(func(st *State) {
		st.Creating = true
		st.CreateErr = ""
	})

	body := map[string]any{
		"deliveryAddress": address,
		"paymentMethod":   paymentMethod,
	}
	var env orderEnvelope
	err := s.api.Post(ctx, "/api/orders", body, &env)

	s.update(func(st *State) {
		st.Creating = false
		if err != nil {
			if api.AuthRequired(err) {
				st.CreateErr = msgCreateAuth
			} else {
				st.CreateErr = api.MessageOr(err, msgCreateFailed)
			}
			return
		}
		st.LastCreated = env.Order
	})
	return env.Order, err
}

// FetchMy loads the user's order history.
func (s *Store) FetchMy(ctx context.Context) error {
	s.update(func(st *State) {
		st.MyOrdersLoading = true
		st.MyOrdersErr = ""
	})

	var env ordersEnvelope
	err := s.api.Get(ctx, "/api/orders/my", &env)

	s.update(func(st *State) {
		st.MyOrdersLoading = false
		if err != nil {
			if api.AuthRequired(err) {
				st.MyOrdersErr = msgMyOrdersAuth
			} else {
				st.MyOrdersErr = api.MessageOr(err, msgMyOrdersFailed)
			}
			return
		}
		st.MyOrders = env.Orders
	})
	return err
}

// FetchByID loads a single order for the tracking view. The previous
// selection is dropped as soon as a new fetch starts.
func (s *Store) FetchByID(ctx context.Context, orderID string) error {
	s.update(func(st *State) {
		st.SelectedLoading = true
		st.SelectedErr = ""
		st.Selected = nil
	})

	var env orderEnvelope
	err := s.api.Get(ctx, "/api/orders/"+orderID, &env)

	s.update(func(st *State) {
		st.SelectedLoading = false
		if err != nil {
			if api.NotAuthorized(err) {
				st.SelectedErr = msgSelectedAuth
			} else {
				st.SelectedErr = api.MessageOr(err, msgSelectedFailed)
			}
			return
		}
		st.Selected = env.Order
	})
	return err
}

// FetchAllAdmin loads every order on the platform. Privileged.
func (s *Store) FetchAllAdmin(ctx context.Context) error {
	s.update(func(st *State) {
		st.AdminOrdersLoading = true
		st.AdminOrdersErr = ""
	})

	var env ordersEnvelope
	err := s.api.Get(ctx, "/api/admin/orders", &env)

	s.update(func(st *State) {
		st.AdminOrdersLoading = false
		if err != nil {
			if api.NotAuthorized(err) {
				st.AdminOrdersErr = msgAdminListAuth
			} else {
				st.AdminOrdersErr = api.MessageOr(err, msgAdminListFailed)
			}
			return
		}
		st.AdminOrders = env.Orders
	})
	return err
}

// UpdateStatusAdmin transitions one order's status. On success exactly the
// matching order in the admin collection is replaced, in place; nothing else
// moves.
func (s *Store) UpdateStatusAdmin(ctx context.Context, orderID string, status models.OrderStatus) error {
	s.update(func(st *State) {
		st.UpdatingStatus = true
		st.UpdateStatusErr = ""
	})

	body := map[string]any{"status": status}
	var env orderEnvelope
	err := s.api.Put(ctx, "/api/admin/orders/"+orderID+"/status", body, &env)

	s.update(func(st *State) {
		st.UpdatingStatus = false
		if err != nil {
			if api.NotAuthorized(err) {
				st.UpdateStatusErr = msgUpdateAuth
			} else {
				st.UpdateStatusErr = api.MessageOr(err, msgUpdateFailed)
			}
			return
		}
		if env.Order == nil {
			return
		}
		for i := range st.AdminOrders {
			if st.AdminOrders[i].ID == env.Order.ID {
				st.AdminOrders[i] = *env.Order
			}
		}
	})
	return err
}

// ApplyOrderEvent upserts an order pushed over the live feed into the admin
// collection: replace by identity when present, append when new.
func (s *Store) ApplyOrderEvent(order models.Order) {
	s.update(func(st *State) {
		for i := range st.AdminOrders {
			if st.AdminOrders[i].ID == order.ID {
				st.AdminOrders[i] = order
				return
			}
		}
		st.AdminOrders = append(st.AdminOrders, order)
	})
}

// ClearLastCreated acknowledges the post-creation navigation.
func (s *Store) ClearLastCreated() {
	s.update(func(st *State) {
		st.LastCreated = nil
	})
}

// ClearErrors drops every visible order error.
func (s *Store) ClearErrors() {
	s.update(func(st *State) {
		st.CreateErr = ""
		st.MyOrdersErr = ""
		st.AdminOrdersErr = ""
		st.UpdateStatusErr = ""
		st.SelectedErr = ""
	})
}

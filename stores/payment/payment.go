package paymentStore

import (
	"context"
	"sync"

	"github.com/junaidrashid-git/tomato-client/api"
	"github.com/junaidrashid-git/tomato-client/models"
)

// Fallback messages shown when the backend supplies none.
const (
	msgStartAuth     = "Please login to pay."
	msgStartFailed   = "Failed to start payment."
	msgConfirmAuth   = "Please login again."
	msgConfirmFailed = "Failed to confirm order."
)

// State is the transient card-payment slice. It lives only for the checkout
// session and is never persisted.
type State struct {
	SessionID      string
	StripeLoading  bool
	StripeErr      string
	ConfirmLoading bool
	ConfirmErr     string
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

type sessionEnvelope struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type orderEnvelope struct {
	Order *models.Order `json:"order"`
}

// StartCheckout obtains a payment-provider session and returns its redirect
// URL. Phase 1 of the handoff: the shell must navigate the whole process away
// to that URL; control only returns through a cold-start re-entry.
func (s *Store) StartCheckout(ctx context.Context) (string, error) {
	s.update(func(st *State) {
		st.StripeLoading = true
		st.StripeErr = ""
	})

	var env sessionEnvelope
	err := s.api.Post(ctx, "/api/payments/stripe/create-session", nil, &env)

	s.update(func(st *State) {
		st.StripeLoading = false
		if err != nil {
			if api.AuthRequired(err) {
				st.StripeErr = msgStartAuth
			} else {
				st.StripeErr = api.MessageOr(err, msgStartFailed)
			}
			return
		}
		st.SessionID = env.SessionID
	})
	return env.URL, err
}

// ConfirmOrder is phase 2, after the provider redirected back: it finalizes
// the order against the already-authorized payment. The order is not placed
// until this succeeds; the caller must re-fetch the cart afterwards, since
// confirmation empties it server-side.
func (s *Store) ConfirmOrder(ctx context.Context, address models.DeliveryAddress) (*models.Order, error) {
	s.update(func(st *State) {
		st.ConfirmLoading = true
		st.ConfirmErr = ""
	})

	body := map[string]any{"deliveryAddress": address}
	var env orderEnvelope
	err := s.api.Post(ctx, "/api/payments/stripe/confirm-order", body, &env)

	s.update(func(st *State) {
		st.ConfirmLoading = false
		if err != nil {
			if api.AuthRequired(err) {
				st.ConfirmErr = msgConfirmAuth
			} else {
				st.ConfirmErr = api.MessageOr(err, msgConfirmFailed)
			}
			return
		}
	})
	return env.Order, err
}

// ClearErrors drops both payment errors.
func (s *Store) ClearErrors() {
	s.update(func(st *State) {
		st.StripeErr = ""
		st.ConfirmErr = ""
	})
}

package app

import (
	"context"
	"sync"

	"github.com/junaidrashid-git/tomato-client/api"
	"github.com/junaidrashid-git/tomato-client/config"
	"github.com/junaidrashid-git/tomato-client/models"
	cartStore "github.com/junaidrashid-git/tomato-client/stores/cart"
	orderStore "github.com/junaidrashid-git/tomato-client/stores/order"
	paymentStore "github.com/junaidrashid-git/tomato-client/stores/payment"
	restaurantStore "github.com/junaidrashid-git/tomato-client/stores/restaurant"
	sessionStore "github.com/junaidrashid-git/tomato-client/stores/session"
)

// App is the composition root: one API client, five independent stores.
// Each store exclusively owns its slice; every rule that spans two stores
// lives here and nowhere else.
type App struct {
	API         *api.Client
	Session     *sessionStore.Store
	Cart        *cartStore.Store
	Orders      *orderStore.Store
	Payments    *paymentStore.Store
	Restaurants *restaurantStore.Store

	restoreOnce sync.Once
}

func New(cfg config.Config) (*App, error) {
	client, err := api.New(cfg.BaseURL, cfg.HTTPTimeout)
	if err != nil {
		return nil, err
	}
	return FromClient(client), nil
}

func FromClient(client *api.Client) *App {
	return &App{
		API:         client,
		Session:     sessionStore.New(client),
		Cart:        cartStore.New(client),
		Orders:      orderStore.New(client),
		Payments:    paymentStore.New(client),
		Restaurants: restaurantStore.New(client),
	}
}

// Start runs the one-shot session restore. Calling it again is a no-op; a
// redirect back from the OAuth or payment provider goes through the same
// restore as a cold start. Reports whether a session was restored; callers
// must not make routing decisions before this returns.
func (a *App) Start(ctx context.Context) bool {
	restored := false
	a.restoreOnce.Do(func() {
		restored = a.Session.Restore(ctx)
	})
	return restored
}

// Logout ends the session. After a fulfilled logout no cart may survive, so
// the cart slice is reset here; on failure both stores keep their state and
// the session store carries the error.
func (a *App) Logout(ctx context.Context) error {
	if err := a.Session.Logout(ctx); err != nil {
		return err
	}
	a.Cart.Reset()
	return nil
}

// ConfirmOrder finalizes a card payment after the provider redirect.
// Confirmation empties the cart server-side, so a fulfilled confirm is
// followed by a cart re-fetch to bring the local snapshot back in line.
func (a *App) ConfirmOrder(ctx context.Context, address models.DeliveryAddress) (*models.Order, error) {
	order, err := a.Payments.ConfirmOrder(ctx, address)
	if err != nil {
		return nil, err
	}
	_ = a.Cart.Fetch(ctx)
	return order, nil
}

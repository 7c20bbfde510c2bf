package app

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/junaidrashid-git/tomato-client/api"
	"github.com/junaidrashid-git/tomato-client/apitest"
	"github.com/junaidrashid-git/tomato-client/models"
)

func newApp(t *testing.T) (*apitest.Backend, *App) {
	t.Helper()
	backend := apitest.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return backend, FromClient(client)
}

func login(t *testing.T, backend *apitest.Backend, a *App) {
	t.Helper()
	backend.SeedUser("Asha", "a@b.com", "secret1", "user")
	if err := a.Session.Login(context.Background(), "a@b.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func fillCart(t *testing.T, backend *apitest.Backend, a *App) {
	t.Helper()
	r := backend.SeedRestaurant("Dosa Corner", models.MenuItem{Name: "Masala Dosa", Price: 120})
	if err := a.Restaurants.FetchMenu(context.Background(), r.ID); err != nil {
		t.Fatalf("menu: %v", err)
	}
	item := a.Restaurants.State().MenuItems[0]
	if err := a.Cart.Add(context.Background(), r.ID, item.ID, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
}

func TestStartRunsRestoreOnce(t *testing.T) {
	backend, a := newApp(t)
	ctx := context.Background()

	if a.Start(ctx) {
		t.Fatal("cold start with no cookie should not restore a session")
	}
	if !a.Session.State().Initialized {
		t.Fatal("session should be initialized after start")
	}

	login(t, backend, a)

	// A second Start is a no-op: it must not re-run the restore probe and must
	// not disturb the live session.
	if a.Start(ctx) {
		t.Error("second start should report false")
	}
	if st := a.Session.State(); !st.IsAuthenticated || st.User == nil {
		t.Errorf("session disturbed by second start: %+v", st)
	}
}

func TestStartRestoresExistingSession(t *testing.T) {
	backend, a := newApp(t)
	ctx := context.Background()

	// Log in through the raw client so the app's one-shot restore still fires.
	backend.SeedUser("Asha", "a@b.com", "secret1", "user")
	body := map[string]string{"email": "a@b.com", "password": "secret1"}
	if err := a.API.Post(ctx, "/api/auth/login", body, nil); err != nil {
		t.Fatalf("login: %v", err)
	}

	if !a.Start(ctx) {
		t.Fatal("start should restore the cookie-backed session")
	}
	st := a.Session.State()
	if !st.IsAuthenticated || st.User == nil || st.User.Email != "a@b.com" {
		t.Errorf("restored session = %+v", st)
	}
}

func TestLogoutResetsCart(t *testing.T) {
	backend, a := newApp(t)
	ctx := context.Background()

	login(t, backend, a)
	fillCart(t, backend, a)
	if a.Cart.State().Cart == nil {
		t.Fatal("cart should hold items before logout")
	}

	if err := a.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if a.Cart.State().Cart != nil {
		t.Error("cart should reset after logout")
	}
	if a.Session.State().IsAuthenticated {
		t.Error("session should be gone after logout")
	}
}

func TestConfirmOrderRefetchesCart(t *testing.T) {
	backend, a := newApp(t)
	ctx := context.Background()

	login(t, backend, a)
	fillCart(t, backend, a)

	if _, err := a.Payments.StartCheckout(ctx); err != nil {
		t.Fatalf("start checkout: %v", err)
	}

	address := models.DeliveryAddress{Street: "1 Main", City: "X", Pincode: "000001"}
	order, err := a.ConfirmOrder(ctx, address)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if order.PaymentInfo.Status != models.PaymentStatusPaid {
		t.Errorf("payment status = %s", order.PaymentInfo.Status)
	}

	// Confirmation emptied the cart server-side; the local snapshot follows.
	if cart := a.Cart.State().Cart; !cart.Empty() {
		t.Errorf("cart after confirm = %+v", cart)
	}
}

func TestConfirmOrderFailureLeavesCart(t *testing.T) {
	backend, a := newApp(t)
	ctx := context.Background()

	login(t, backend, a)
	fillCart(t, backend, a)

	// No checkout session started, so confirm is rejected.
	address := models.DeliveryAddress{Street: "1 Main", City: "X", Pincode: "000001"}
	if _, err := a.ConfirmOrder(ctx, address); err == nil {
		t.Fatal("expected rejection")
	}

	cart := a.Cart.State().Cart
	if cart == nil || len(cart.Items) != 1 {
		t.Errorf("cart after failed confirm = %+v", cart)
	}
}

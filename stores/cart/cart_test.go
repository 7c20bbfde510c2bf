package cartStore

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/junaidrashid-git/tomato-client/api"
	"github.com/junaidrashid-git/tomato-client/apitest"
	"github.com/junaidrashid-git/tomato-client/models"
)

type fixture struct {
	backend    *apitest.Backend
	client     *api.Client
	store      *Store
	restaurant models.Restaurant
	menu       []models.MenuItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := apitest.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	restaurant := backend.SeedRestaurant("Dosa Corner",
		models.MenuItem{Name: "Masala Dosa", Price: 120},
		models.MenuItem{Name: "Filter Coffee", Price: 40},
	)

	var menuEnv struct {
		Items []models.MenuItem `json:"items"`
	}
	if err := client.Get(context.Background(), "/api/menu/"+restaurant.ID, &menuEnv); err != nil {
		t.Fatalf("fetch menu: %v", err)
	}

	return &fixture{
		backend:    backend,
		client:     client,
		store:      New(client),
		restaurant: restaurant,
		menu:       menuEnv.Items,
	}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	f.backend.SeedUser("Asha", "a@b.com", "secret1", "user")
	body := map[string]string{"email": "a@b.com", "password": "secret1"}
	if err := f.client.Post(context.Background(), "/api/auth/login", body, nil); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func (f *fixture) logout(t *testing.T) {
	t.Helper()
	if err := f.client.Post(context.Background(), "/api/auth/logout", nil, nil); err != nil {
		t.Fatalf("logout: %v", err)
	}
}

func TestAddWhileUnauthenticated(t *testing.T) {
	f := newFixture(t)

	err := f.store.Add(context.Background(), f.restaurant.ID, f.menu[0].ID, 1)
	if err == nil {
		t.Fatal("expected auth failure")
	}

	st := f.store.State()
	if !st.IsAuthIssue {
		t.Error("isAuthIssue should be set")
	}
	if st.Err != "Please login to use cart." {
		t.Errorf("err = %q", st.Err)
	}
	if st.Cart != nil {
		t.Error("cart must not change on a 401")
	}
}

func TestMutationsReplaceSnapshotWholesale(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	// Add: the store's cart is exactly the server's returned snapshot.
	if err := f.store.Add(ctx, f.restaurant.ID, f.menu[0].ID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	st := f.store.State()
	if st.Cart == nil || len(st.Cart.Items) != 1 {
		t.Fatalf("cart = %+v", st.Cart)
	}
	if st.Cart.Items[0].Quantity != 2 || st.Cart.Subtotal != 240 {
		t.Errorf("server-computed snapshot expected, got qty=%d subtotal=%.2f",
			st.Cart.Items[0].Quantity, st.Cart.Subtotal)
	}

	// Second add of a different item extends the snapshot server-side.
	if err := f.store.Add(ctx, f.restaurant.ID, f.menu[1].ID, 1); err != nil {
		t.Fatalf("add second: %v", err)
	}
	st = f.store.State()
	if len(st.Cart.Items) != 2 || st.Cart.Subtotal != 280 {
		t.Errorf("items=%d subtotal=%.2f", len(st.Cart.Items), st.Cart.Subtotal)
	}

	// Update quantity: subtotal comes back recomputed, never patched locally.
	itemID := st.Cart.Items[0].ID
	if err := f.store.UpdateItem(ctx, itemID, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	st = f.store.State()
	if st.Cart.Subtotal != 160 {
		t.Errorf("subtotal = %.2f, want 160", st.Cart.Subtotal)
	}

	// Remove: snapshot shrinks.
	if err := f.store.Remove(ctx, itemID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	st = f.store.State()
	if len(st.Cart.Items) != 1 || st.Cart.Subtotal != 40 {
		t.Errorf("items=%d subtotal=%.2f", len(st.Cart.Items), st.Cart.Subtotal)
	}
}

func TestClearSetsCartNil(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	if err := f.store.Add(ctx, f.restaurant.ID, f.menu[0].ID, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := f.store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	// Cleared and never-loaded are the same UI state.
	if st := f.store.State(); st.Cart != nil {
		t.Errorf("cart = %+v, want nil", st.Cart)
	}
}

func TestFetchNoCartYet(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	if err := f.store.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if st := f.store.State(); st.Cart != nil {
		t.Errorf("cart = %+v, want nil before anything was added", st.Cart)
	}
}

func TestSessionLossMidFlow(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	if err := f.store.Add(ctx, f.restaurant.ID, f.menu[0].ID, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	before := f.store.State().Cart

	// The session ends between two cart operations; the next completion
	// handler must see its own 401 and leave the data untouched.
	f.logout(t)
	if err := f.store.Add(ctx, f.restaurant.ID, f.menu[1].ID, 1); err == nil {
		t.Fatal("expected auth failure after logout")
	}

	st := f.store.State()
	if !st.IsAuthIssue || st.Err != "Please login to use cart." {
		t.Errorf("isAuthIssue=%v err=%q", st.IsAuthIssue, st.Err)
	}
	if st.Cart == nil || len(st.Cart.Items) != len(before.Items) {
		t.Error("cart payload must not mutate on a 401")
	}
}

func TestResetAndClearError(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	if err := f.store.Add(context.Background(), f.restaurant.ID, f.menu[0].ID, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	f.store.Reset()
	if st := f.store.State(); st.Cart != nil || st.Err != "" || st.IsAuthIssue {
		t.Errorf("state after reset = %+v", st)
	}

	f.logout(t)
	f.store.Fetch(context.Background())
	if !f.store.State().IsAuthIssue {
		t.Fatal("expected auth issue")
	}
	f.store.ClearError()
	if st := f.store.State(); st.Err != "" || st.IsAuthIssue {
		t.Errorf("state after clear = %+v", st)
	}
}

func TestSubscribeNotified(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	notified := 0
	f.store.Subscribe(func() { notified++ })

	if err := f.store.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	// Pending and completion both notify.
	if notified < 2 {
		t.Errorf("notified %d times, want at least 2", notified)
	}
}

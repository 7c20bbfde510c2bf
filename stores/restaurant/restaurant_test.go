package restaurantStore

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/junaidrashid-git/tomato-client/api"
	"github.com/junaidrashid-git/tomato-client/apitest"
	"github.com/junaidrashid-git/tomato-client/models"
)

func newStore(t *testing.T) (*apitest.Backend, *Store) {
	t.Helper()
	backend := apitest.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return backend, New(client)
}

func TestFetchAll(t *testing.T) {
	backend, store := newStore(t)
	backend.SeedRestaurant("Dosa Corner")
	backend.SeedRestaurant("Biryani House")

	if err := store.FetchAll(context.Background()); err != nil {
		t.Fatalf("fetch all: %v", err)
	}

	st := store.State()
	if len(st.List) != 2 {
		t.Fatalf("list = %d restaurants", len(st.List))
	}
	if st.List[0].Name != "Dosa Corner" || st.List[1].Name != "Biryani House" {
		t.Errorf("list = %q, %q", st.List[0].Name, st.List[1].Name)
	}
	if st.ListLoading || st.ListErr != "" {
		t.Errorf("state after success = %+v", st)
	}
}

func TestFetchDetails(t *testing.T) {
	backend, store := newStore(t)
	r := backend.SeedRestaurant("Dosa Corner")

	if err := store.FetchDetails(context.Background(), r.ID); err != nil {
		t.Fatalf("fetch details: %v", err)
	}

	st := store.State()
	if st.Selected == nil || st.Selected.ID != r.ID {
		t.Fatalf("selected = %+v", st.Selected)
	}
}

func TestFetchDetailsNotFound(t *testing.T) {
	_, store := newStore(t)

	if err := store.FetchDetails(context.Background(), "nope"); err == nil {
		t.Fatal("expected not found")
	}

	st := store.State()
	if st.DetailErr != "Restaurant not found" {
		t.Errorf("detailErr = %q", st.DetailErr)
	}
	if st.Selected != nil {
		t.Error("selected should stay nil")
	}
}

func TestFetchDetailsDropsPreviousSelection(t *testing.T) {
	backend, store := newStore(t)
	r := backend.SeedRestaurant("Dosa Corner")
	ctx := context.Background()

	if err := store.FetchDetails(ctx, r.ID); err != nil {
		t.Fatalf("fetch details: %v", err)
	}
	// A failed follow-up fetch must not leave the stale selection behind.
	if err := store.FetchDetails(ctx, "nope"); err == nil {
		t.Fatal("expected not found")
	}
	if st := store.State(); st.Selected != nil {
		t.Errorf("stale selection survived: %+v", st.Selected)
	}
}

func TestFetchMenu(t *testing.T) {
	backend, store := newStore(t)
	r := backend.SeedRestaurant("Dosa Corner",
		models.MenuItem{Name: "Masala Dosa", Price: 120},
		models.MenuItem{Name: "Filter Coffee", Price: 40},
	)

	if err := store.FetchMenu(context.Background(), r.ID); err != nil {
		t.Fatalf("fetch menu: %v", err)
	}

	st := store.State()
	if len(st.MenuItems) != 2 {
		t.Fatalf("menu = %d items", len(st.MenuItems))
	}
	if st.MenuItems[0].Name != "Masala Dosa" || st.MenuItems[0].Price != 120 {
		t.Errorf("item[0] = %+v", st.MenuItems[0])
	}
	if !st.MenuItems[1].Available {
		t.Error("seeded items should be available")
	}
}

func TestFetchAllTransportError(t *testing.T) {
	client, err := api.New("http://127.0.0.1:1", 200*time.Millisecond)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	store := New(client)

	if err := store.FetchAll(context.Background()); err == nil {
		t.Fatal("expected transport failure")
	}
	if st := store.State(); st.ListErr != "Failed to load restaurants" {
		t.Errorf("listErr = %q", st.ListErr)
	}
}

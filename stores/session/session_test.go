package sessionStore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/junaidrashid-git/tomato-client/api"
	"github.com/junaidrashid-git/tomato-client/apitest"
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

func TestRestoreColdStart(t *testing.T) {
	_, store := newStore(t)

	if restored := store.Restore(context.Background()); restored {
		t.Fatal("cold start should not restore a session")
	}

	st := store.State()
	if !st.Initialized {
		t.Error("initialized should be true after restore completes")
	}
	if st.IsAuthenticated || st.User != nil {
		t.Error("cold start should leave an anonymous session")
	}
	// An anonymous visit is a normal state, not a fault.
	if st.Err != "" {
		t.Errorf("restore failure must not surface an error, got %q", st.Err)
	}
	if st.Loading {
		t.Error("loading should be false")
	}
}

func TestInitializedLatchesOnce(t *testing.T) {
	backend, store := newStore(t)
	backend.SeedUser("Asha", "a@b.com", "secret1", "user")

	if err := store.Login(context.Background(), "a@b.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	// First restore succeeds with the live session.
	if !store.Restore(context.Background()) {
		t.Fatal("restore should find the session")
	}
	if !store.State().Initialized {
		t.Fatal("initialized should be true")
	}

	// The provider-redirect re-entry goes through the same path; however it
	// ends, initialized stays true.
	if err := store.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if store.Restore(context.Background()) {
		t.Fatal("restore after logout should fail")
	}

	st := store.State()
	if !st.Initialized {
		t.Error("initialized must never reset")
	}
	if st.IsAuthenticated || st.User != nil {
		t.Error("failed restore should clear identity")
	}
}

func TestLoginFulfilled(t *testing.T) {
	backend, store := newStore(t)
	seeded := backend.SeedUser("Asha", "a@b.com", "secret1", "user")

	if err := store.Login(context.Background(), "a@b.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	st := store.State()
	if !st.IsAuthenticated || st.User == nil {
		t.Fatal("expected authenticated state")
	}
	if st.User.ID != seeded.ID || st.User.Email != "a@b.com" {
		t.Errorf("user = %+v", st.User)
	}
	if st.Err != "" || st.Loading {
		t.Errorf("err = %q, loading = %v", st.Err, st.Loading)
	}
}

func TestLoginRejectedClearsStaleIdentity(t *testing.T) {
	backend, store := newStore(t)
	backend.SeedUser("Asha", "a@b.com", "secret1", "user")

	if err := store.Login(context.Background(), "a@b.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := store.Login(context.Background(), "a@b.com", "wrong"); err == nil {
		t.Fatal("expected login failure")
	}

	st := store.State()
	if st.User != nil || st.IsAuthenticated {
		t.Error("a failed login must not retain the previous identity")
	}
	if st.Err == "" {
		t.Error("expected a user-facing error")
	}
}

// fallbackServer answers without backend-supplied messages so the store's
// generic messages are observable.
func fallbackServer(t *testing.T, loginStatus, logoutStatus int) *Store {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			if loginStatus != http.StatusOK {
				w.WriteHeader(loginStatus)
				w.Write([]byte(`{}`))
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"user": map[string]any{"_id": "u-1", "name": "Asha", "email": "a@b.com", "role": "user"},
			})
		case "/api/auth/logout":
			w.WriteHeader(logoutStatus)
			w.Write([]byte(`{}`))
		case "/api/auth/register":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return New(client)
}

func TestLoginFallbackMessage(t *testing.T) {
	store := fallbackServer(t, http.StatusUnauthorized, http.StatusOK)

	if err := store.Login(context.Background(), "a@b.com", "x"); err == nil {
		t.Fatal("expected login failure")
	}

	st := store.State()
	if st.Err != "Login failed. Please check credentials." {
		t.Errorf("err = %q", st.Err)
	}
	if st.IsAuthenticated || st.User != nil {
		t.Error("expected anonymous state")
	}
}

func TestRegisterFallbackMessage(t *testing.T) {
	store := fallbackServer(t, http.StatusOK, http.StatusOK)

	if err := store.Register(context.Background(), "Asha", "a@b.com", "x"); err == nil {
		t.Fatal("expected register failure")
	}
	if st := store.State(); st.Err != "Registration failed. Please try again." {
		t.Errorf("err = %q", st.Err)
	}
}

func TestLogoutFailureRetainsSession(t *testing.T) {
	store := fallbackServer(t, http.StatusOK, http.StatusInternalServerError)

	if err := store.Login(context.Background(), "a@b.com", "x"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := store.Logout(context.Background()); err == nil {
		t.Fatal("expected logout failure")
	}

	st := store.State()
	if st.Err != "Logout failed. Please try again." {
		t.Errorf("err = %q", st.Err)
	}
	// The local session is retained on server failure; it is the caller's
	// decision whether to proceed as signed out anyway.
	if !st.IsAuthenticated || st.User == nil {
		t.Error("logout failure should retain the local session")
	}
}

func TestRegisterSignsIn(t *testing.T) {
	_, store := newStore(t)

	if err := store.Register(context.Background(), "Asha", "a@b.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	st := store.State()
	if !st.IsAuthenticated || st.User == nil || st.User.Email != "a@b.com" {
		t.Fatalf("state = %+v", st)
	}
}

func TestClearError(t *testing.T) {
	backend, store := newStore(t)
	backend.SeedUser("Asha", "a@b.com", "secret1", "user")

	store.Login(context.Background(), "a@b.com", "wrong")
	if store.State().Err == "" {
		t.Fatal("expected an error to clear")
	}

	store.ClearError()
	if st := store.State(); st.Err != "" {
		t.Errorf("err = %q after clear", st.Err)
	}
}

package restaurantStore

import (
	"context"
	"sync"

	"github.com/junaidrashid-git/tomato-client/api"
	"github.com/junaidrashid-git/tomato-client/models"
)

// Fallback messages shown when the backend supplies none.
const (
	msgListFailed   = "Failed to load restaurants"
	msgDetailFailed = "Failed to load restaurant details"
	msgMenuFailed   = "Failed to load menu items"
)

// State covers the public browse surface: the restaurant list, one selected
// restaurant, and its menu. No auth classification applies; these endpoints
// are anonymous.
type State struct {
	List        []models.Restaurant
	ListLoading bool
	ListErr     string

	Selected      *models.Restaurant
	DetailLoading bool
	DetailErr     string

	MenuItems   []models.MenuItem
	MenuLoading bool
	MenuErr     string
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
	st.List = append([]models.Restaurant(nil), s.state.List...)
	st.MenuItems = append([]models.MenuItem(nil), s.state.MenuItems...)
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

// FetchAll loads the restaurant list.
func (s *Store) FetchAll(ctx context.Context) error {
	s.update(func(st *State) {
		st.ListLoading = true
		st.ListErr = ""
	})

	var env struct {
		Restaurants []models.Restaurant `json:"restaurants"`
	}
	err := s.api.Get(ctx, "/api/restaurants", &env)

	s.update(func(st *State) {
		st.ListLoading = false
		if err != nil {
			st.ListErr = api.MessageOr(err, msgListFailed)
			return
		}
		st.List = env.Restaurants
	})
	return err
}

// FetchDetails loads one restaurant. The previous selection is dropped while
// the fetch is in flight.
func (s *Store) FetchDetails(ctx context.Context, restaurantID string) error {
	s.update(func(st *State) {
		st.DetailLoading = true
		st.DetailErr = ""
		st.Selected = nil
	})

	var env struct {
		Restaurant *models.Restaurant `json:"restaurant"`
	}
	err := s.api.Get(ctx, "/api/restaurants/"+restaurantID, &env)

	s.update(func(st *State) {
		st.DetailLoading = false
		if err != nil {
			st.DetailErr = api.MessageOr(err, msgDetailFailed)
			return
		}
		st.Selected = env.Restaurant
	})
	return err
}

// FetchMenu loads a restaurant's menu items.
func (s *Store) FetchMenu(ctx context.Context, restaurantID string) error {
	s.update(func(st *State) {
		st.MenuLoading = true
		st.MenuErr = ""
		st.MenuItems = nil
	})

	var env struct {
		Items []models.MenuItem `json:"items"`
	}
	err := s.api.Get(ctx, "/api/menu/"+restaurantID, &env)

	s.update(func(st *State) {
		st.MenuLoading = false
		if err != nil {
			st.MenuErr = api.MessageOr(err, msgMenuFailed)
			return
		}
		st.MenuItems = env.Items
	})
	return err
}

// ClearErrors drops every visible browse error.
func (s *Store) ClearErrors() {
	s.update(func(st *State) {
		st.ListErr = ""
		st.DetailErr = ""
		st.MenuErr = ""
	})
}

package handlers

import (
	"cmp"
	"slices"
	"strconv"
	"sync"
	"time"
)

type userStore struct {
	mu     sync.RWMutex
	users  map[string]User
	nextID int
}

var store = newUserStore()

func newUserStore() *userStore {
	now := time.Now().UTC()
	return &userStore{
		users: map[string]User{
			"1": {ID: "1", Name: "Alice", Email: "alice@example.com", Role: RoleAdmin, CreatedAt: now},
			"2": {ID: "2", Name: "Bob", Email: "bob@example.com", Role: RoleMember, CreatedAt: now},
		},
		nextID: 3,
	}
}

// Reset restores the seed users.
func Reset() {
	fresh := newUserStore()
	store.mu.Lock()
	defer store.mu.Unlock()
	store.users = fresh.users
	store.nextID = fresh.nextID
}

func (s *userStore) list(role Role) []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b User) int {
		ai, _ := strconv.Atoi(a.ID)
		bi, _ := strconv.Atoi(b.ID)
		return cmp.Compare(ai, bi)
	})
	return out
}

func (s *userStore) get(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *userStore) create(body CreateUserBody) User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := User{
		ID:        strconv.Itoa(s.nextID),
		Name:      body.Name,
		Email:     body.Email,
		Role:      cmp.Or(body.Role, RoleMember),
		CreatedAt: time.Now().UTC(),
	}
	s.nextID++
	s.users[u.ID] = u
	return u
}

func (s *userStore) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	return true
}

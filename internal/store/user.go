// internal/store/user.go
package store

import (
	"sync"

	"github.com/user/prakharai/internal/types"
)

// UserStore holds the cosmetic local identity.
type UserStore struct {
	snaps *Snapshots
	mu    sync.RWMutex
	user  *types.User
}

// NewUserStore loads the user snapshot; absence or corruption means no one
// is signed in.
func NewUserStore(snaps *Snapshots) *UserStore {
	u := &UserStore{snaps: snaps}
	var saved types.User
	if snaps.Load(KeyUser, &saved) && saved.Name != "" {
		u.user = &saved
	}
	return u
}

// Get returns the signed-in user, or nil.
func (u *UserStore) Get() *types.User {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.user
}

// Set signs the user in and persists the identity.
func (u *UserStore) Set(name string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.user = &types.User{Name: name}
	return u.snaps.Save(KeyUser, u.user)
}

// Clear signs the user out.
func (u *UserStore) Clear() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.user = nil
	return u.snaps.Save(KeyUser, &types.User{})
}

/*
Package chat contains the core logic of the room chat server.

This file defines the UserRegistry, the shared map from user id to live
connection. It is one of the two pieces of shared mutable state in the server
and must be safe under concurrent handler invocations.
*/
package chat

import (
	"sync"

	"roomcast/internal/pkg/errs"
)

// UserRegistry maps each online user id to the Client currently bound to it.
type UserRegistry struct {
	// mu protects concurrent access to the users map.
	mu sync.RWMutex

	users map[string]*Client
}

// NewUserRegistry constructs an empty UserRegistry.
func NewUserRegistry() *UserRegistry {
	return &UserRegistry{
		users: make(map[string]*Client),
	}
}

// Add binds userID to client, replacing any existing binding.
// Duplicate LOGIN is last-writer-wins; the earlier connection is orphaned.
func (u *UserRegistry) Add(userID string, client *Client) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.users[userID] = client
}

// Remove unbinds userID. Idempotent; a no-op if the id is absent.
func (u *UserRegistry) Remove(userID string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	delete(u.users, userID)
}

// RemoveConn unbinds userID only if it is still bound to client.
// Disconnect cleanup uses this so an orphaned connection (replaced by a later
// LOGIN under the same id) never evicts the newer binding. It reports whether
// a binding was removed.
func (u *UserRegistry) RemoveConn(userID string, client *Client) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	current, ok := u.users[userID]
	if !ok || current != client {
		return false
	}

	delete(u.users, userID)
	return true
}

// Lookup returns the Client bound to userID, or nil if the id is not online.
// An empty userID is an argument error.
func (u *UserRegistry) Lookup(userID string) (*Client, *errs.CustomError) {
	if userID == "" {
		return nil, errs.NewError(errs.ErrEmptyUserID)
	}

	u.mu.RLock()
	defer u.mu.RUnlock()

	return u.users[userID], nil
}

// Len returns the number of currently bound user ids.
func (u *UserRegistry) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()

	return len(u.users)
}

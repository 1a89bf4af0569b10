/*
Package chat contains the core logic of the room chat server.

This file defines the RoomRegistry, the shared map from room id to its
membership set. A room exists exactly as long as its set is non-empty; the
registry enforces that invariant on every mutation.
*/
package chat

import "sync"

// RoomRegistry maps each room id to the set of user ids currently in the room.
type RoomRegistry struct {
	// mu protects concurrent access to the rooms map and its member sets.
	mu sync.RWMutex

	rooms map[string]map[string]struct{}
}

// NewRoomRegistry constructs an empty RoomRegistry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[string]map[string]struct{}),
	}
}

// Join adds userID to the room's membership set, creating the room if needed.
// CREATE_ROOM and JOIN_ROOM share this behavior; only the reply string differs.
func (r *RoomRegistry) Join(roomID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[roomID] = members
	}
	members[userID] = struct{}{}
}

// Leave removes userID from the room; the room entry is deleted when its set
// empties. Idempotent for absent rooms and absent members.
func (r *RoomRegistry) Leave(roomID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return
	}

	delete(members, userID)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}
}

// LeaveAll removes userID from every room containing it, deleting rooms left
// empty. Used by LOGOUT and by disconnect cleanup.
func (r *RoomRegistry) LeaveAll(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for roomID, members := range r.rooms {
		if _, ok := members[userID]; !ok {
			continue
		}

		delete(members, userID)
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}
}

// Members returns a snapshot of the room's membership set, or an empty slice
// if the room is absent. The snapshot isolates fan-out iteration from
// concurrent join/leave.
func (r *RoomRegistry) Members(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[roomID]
	snapshot := make([]string, 0, len(members))
	for userID := range members {
		snapshot = append(snapshot, userID)
	}
	return snapshot
}

// Contains reports whether roomID currently exists in the registry.
func (r *RoomRegistry) Contains(roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[roomID]
	return ok
}

// Sizes returns a snapshot of every room's member count, keyed by room id.
// Used by the ops stats endpoint.
func (r *RoomRegistry) Sizes() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sizes := make(map[string]int, len(r.rooms))
	for roomID, members := range r.rooms {
		sizes[roomID] = len(members)
	}
	return sizes
}

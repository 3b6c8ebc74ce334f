package chat

import "fmt"

// MembershipTable tracks which users belong to which rooms and which live
// session currently represents which user. Like the Directory it carries
// no lock; the Coordinator owns the critical section.
type MembershipTable struct {
	roomUsers   map[string]map[string]struct{} // roomID -> set of userIDs
	sessionUser map[string]string              // sessionID -> userID
	userSession map[string]string              // userID -> sessionID
}

// NewMembershipTable creates an empty membership table.
func NewMembershipTable() *MembershipTable {
	return &MembershipTable{
		roomUsers:   make(map[string]map[string]struct{}),
		sessionUser: make(map[string]string),
		userSession: make(map[string]string),
	}
}

// Add inserts a user into a room's member set. Re-adding an existing
// member is a no-op, matching set semantics.
func (t *MembershipTable) Add(roomID, userID string) {
	if t.roomUsers[roomID] == nil {
		t.roomUsers[roomID] = make(map[string]struct{})
	}
	t.roomUsers[roomID][userID] = struct{}{}
}

// Remove deletes a user from a room's member set. Unlike Add, removing a
// non-member is an error.
func (t *MembershipTable) Remove(roomID, userID string) error {
	members, ok := t.roomUsers[roomID]
	if !ok {
		return fmt.Errorf("user %s is not in room %s: %w", userID, roomID, ErrNotMember)
	}
	if _, ok := members[userID]; !ok {
		return fmt.Errorf("user %s is not in room %s: %w", userID, roomID, ErrNotMember)
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(t.roomUsers, roomID)
	}
	return nil
}

// IsMember reports whether a user is in a room.
func (t *MembershipTable) IsMember(roomID, userID string) bool {
	_, ok := t.roomUsers[roomID][userID]
	return ok
}

// MembersOf returns the user IDs currently in a room.
func (t *MembershipTable) MembersOf(roomID string) []string {
	members := make([]string, 0, len(t.roomUsers[roomID]))
	for userID := range t.roomUsers[roomID] {
		members = append(members, userID)
	}
	return members
}

// RoomsContaining returns every room the user is a member of.
func (t *MembershipTable) RoomsContaining(userID string) []string {
	var rooms []string
	for roomID, members := range t.roomUsers {
		if _, ok := members[userID]; ok {
			rooms = append(rooms, roomID)
		}
	}
	return rooms
}

// BindSession records that a session represents a user. Rebinding either
// side replaces the previous association.
func (t *MembershipTable) BindSession(sessionID, userID string) {
	if prev, ok := t.sessionUser[sessionID]; ok {
		delete(t.userSession, prev)
	}
	if prev, ok := t.userSession[userID]; ok {
		delete(t.sessionUser, prev)
	}
	t.sessionUser[sessionID] = userID
	t.userSession[userID] = sessionID
}

// UnbindSession removes a session binding and returns the user it was
// bound to, if any.
func (t *MembershipTable) UnbindSession(sessionID string) (string, bool) {
	userID, ok := t.sessionUser[sessionID]
	if !ok {
		return "", false
	}
	delete(t.sessionUser, sessionID)
	if t.userSession[userID] == sessionID {
		delete(t.userSession, userID)
	}
	return userID, true
}

// UserFor returns the user currently bound to a session.
func (t *MembershipTable) UserFor(sessionID string) (string, bool) {
	userID, ok := t.sessionUser[sessionID]
	return userID, ok
}

// SessionFor returns the session currently bound to a user.
func (t *MembershipTable) SessionFor(userID string) (string, bool) {
	sessionID, ok := t.userSession[userID]
	return sessionID, ok
}

// SessionsFor resolves a set of user IDs to their bound sessions. Users
// without a live session are skipped.
func (t *MembershipTable) SessionsFor(userIDs []string) []string {
	sessions := make([]string, 0, len(userIDs))
	for _, userID := range userIDs {
		if sessionID, ok := t.userSession[userID]; ok {
			sessions = append(sessions, sessionID)
		}
	}
	return sessions
}

package chat

import (
	"errors"
	"sort"
	"testing"
)

func TestMembershipTable_AddIsIdempotent(t *testing.T) {
	m := NewMembershipTable()

	m.Add("room1", "user1")
	m.Add("room1", "user1")
	m.Add("room1", "user2")

	members := m.MembersOf("room1")
	if len(members) != 2 {
		t.Errorf("MembersOf() count = %d, want 2", len(members))
	}
}

func TestMembershipTable_Remove(t *testing.T) {
	m := NewMembershipTable()
	m.Add("room1", "user1")

	if err := m.Remove("room1", "user1"); err != nil {
		t.Fatalf("Remove() unexpected error: %v", err)
	}
	if len(m.MembersOf("room1")) != 0 {
		t.Error("MembersOf() should be empty after removal")
	}

	// Removing again is an error, unlike re-adding
	if err := m.Remove("room1", "user1"); !errors.Is(err, ErrNotMember) {
		t.Errorf("Remove() error = %v, want ErrNotMember", err)
	}
	if err := m.Remove("room2", "user1"); !errors.Is(err, ErrNotMember) {
		t.Errorf("Remove() from unknown room error = %v, want ErrNotMember", err)
	}
}

func TestMembershipTable_RoomsContaining(t *testing.T) {
	m := NewMembershipTable()
	m.Add("room1", "user1")
	m.Add("room2", "user1")
	m.Add("room3", "user2")

	rooms := m.RoomsContaining("user1")
	sort.Strings(rooms)
	if len(rooms) != 2 || rooms[0] != "room1" || rooms[1] != "room2" {
		t.Errorf("RoomsContaining() = %v, want [room1 room2]", rooms)
	}

	if rooms := m.RoomsContaining("user3"); len(rooms) != 0 {
		t.Errorf("RoomsContaining() for unknown user = %v, want empty", rooms)
	}
}

func TestMembershipTable_SessionBinding(t *testing.T) {
	m := NewMembershipTable()

	m.BindSession("sess1", "user1")

	if userID, ok := m.UserFor("sess1"); !ok || userID != "user1" {
		t.Errorf("UserFor() = %q, %v, want user1, true", userID, ok)
	}
	if sessionID, ok := m.SessionFor("user1"); !ok || sessionID != "sess1" {
		t.Errorf("SessionFor() = %q, %v, want sess1, true", sessionID, ok)
	}

	userID, ok := m.UnbindSession("sess1")
	if !ok || userID != "user1" {
		t.Errorf("UnbindSession() = %q, %v, want user1, true", userID, ok)
	}
	if _, ok := m.UserFor("sess1"); ok {
		t.Error("UserFor() after unbind should report no binding")
	}

	// Unbinding an unknown session is a no-op
	if _, ok := m.UnbindSession("sess1"); ok {
		t.Error("UnbindSession() of unknown session should return false")
	}
}

func TestMembershipTable_RebindReplacesPrevious(t *testing.T) {
	m := NewMembershipTable()

	m.BindSession("sess1", "user1")
	m.BindSession("sess1", "user2")

	if _, ok := m.SessionFor("user1"); ok {
		t.Error("SessionFor(user1) should be unbound after session rebind")
	}
	if userID, _ := m.UserFor("sess1"); userID != "user2" {
		t.Errorf("UserFor(sess1) = %q, want user2", userID)
	}

	// A user moving to a new session releases the old one
	m.BindSession("sess2", "user2")
	if _, ok := m.UserFor("sess1"); ok {
		t.Error("UserFor(sess1) should be unbound after user rebind")
	}
	if sessionID, _ := m.SessionFor("user2"); sessionID != "sess2" {
		t.Errorf("SessionFor(user2) = %q, want sess2", sessionID)
	}
}

func TestMembershipTable_SessionsFor(t *testing.T) {
	m := NewMembershipTable()
	m.BindSession("sess1", "user1")
	m.BindSession("sess2", "user2")

	sessions := m.SessionsFor([]string{"user1", "user2", "user3"})
	sort.Strings(sessions)
	if len(sessions) != 2 || sessions[0] != "sess1" || sessions[1] != "sess2" {
		t.Errorf("SessionsFor() = %v, want [sess1 sess2]", sessions)
	}
}

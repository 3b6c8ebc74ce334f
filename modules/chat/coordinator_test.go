package chat

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/chatroom-server/events"
)

func findDelivery(t *testing.T, plan []Delivery, kind string) Delivery {
	t.Helper()
	for _, d := range plan {
		if d.Kind == kind {
			return d
		}
	}
	t.Fatalf("plan %v has no %s delivery", plan, kind)
	return Delivery{}
}

func TestCoordinator_JoinSendDisconnect(t *testing.T) {
	c := NewCoordinator(100)

	alice, err := c.CreateUser("Alice", "")
	require.NoError(t, err)
	lobby, err := c.CreateRoom("Lobby")
	require.NoError(t, err)

	// Join
	plan, err := c.Join("sess-alice", lobby.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	joined := findDelivery(t, plan, DeliverRoomJoined).Payload.(events.RoomJoinedEvent)
	assert.Equal(t, []string{"sess-alice"}, joined.Targets, "room_joined confirms to the joining session only")
	assert.Equal(t, lobby.ID, joined.RoomID)
	assert.Equal(t, "Alice", joined.UserName)

	announced := findDelivery(t, plan, DeliverUserJoined).Payload.(events.UserJoinedEvent)
	assert.Contains(t, announced.Targets, "sess-alice", "user_joined includes the joiner")

	members, err := c.RoomMembers(lobby.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, alice.ID, members[0].ID)

	// Send
	plan, err = c.Send("sess-alice", lobby.ID, alice.ID, "hi")
	require.NoError(t, err)
	require.Len(t, plan, 1)

	sent := plan[0].Payload.(events.MessageSentEvent)
	assert.Equal(t, "hi", sent.Content)
	assert.Equal(t, "Alice", sent.UserName)
	assert.NotEmpty(t, sent.MessageID)
	assert.Equal(t, []string{"sess-alice"}, sent.Targets)

	history, err := c.History(lobby.ID, 50)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hi", history[0].Content)

	// Disconnect cascades: membership emptied, user gone, history kept
	plan = c.Disconnect("sess-alice")
	require.Len(t, plan, 1)
	left := plan[0].Payload.(events.UserLeftEvent)
	assert.Equal(t, "Alice", left.UserName)
	assert.Empty(t, left.Targets, "no members remain to notify")

	members, err = c.RoomMembers(lobby.ID)
	require.NoError(t, err)
	assert.Empty(t, members)

	_, err = c.GetUser(alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	history, err = c.History(lobby.ID, 50)
	require.NoError(t, err)
	assert.Len(t, history, 1, "history survives the author's departure")
}

func TestCoordinator_JoinMissingRoom(t *testing.T) {
	c := NewCoordinator(100)
	bob, err := c.CreateUser("Bob", "")
	require.NoError(t, err)

	_, err = c.Join("sess-bob", "no-such-room", bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Rejected joins leave no trace
	assert.Equal(t, 0, c.SessionCount())
	rooms := c.ListRooms()
	assert.Empty(t, rooms)
}

func TestCoordinator_JoinMissingUser(t *testing.T) {
	c := NewCoordinator(100)
	room, err := c.CreateRoom("Lobby")
	require.NoError(t, err)

	_, err = c.Join("sess-x", room.ID, "no-such-user")
	assert.ErrorIs(t, err, ErrNotFound)

	members, err := c.RoomMembers(room.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestCoordinator_JoinSwitchesRoom(t *testing.T) {
	c := NewCoordinator(100)
	alice, _ := c.CreateUser("Alice", "")
	bob, _ := c.CreateUser("Bob", "")
	lobby, _ := c.CreateRoom("Lobby")
	den, _ := c.CreateRoom("Den")

	_, err := c.Join("sess-bob", lobby.ID, bob.ID)
	require.NoError(t, err)
	_, err = c.Join("sess-alice", lobby.ID, alice.ID)
	require.NoError(t, err)

	// Alice moves to another room; the plan leaves Lobby first
	plan, err := c.Join("sess-alice", den.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, plan, 3)
	assert.Equal(t, DeliverUserLeft, plan[0].Kind, "implicit leave precedes the join")

	left := plan[0].Payload.(events.UserLeftEvent)
	assert.Equal(t, lobby.ID, left.RoomID)
	assert.Equal(t, []string{"sess-bob"}, left.Targets, "user_left excludes the leaver")

	members, err := c.RoomMembers(lobby.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, bob.ID, members[0].ID)

	members, err = c.RoomMembers(den.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, alice.ID, members[0].ID)
}

func TestCoordinator_RejoinSameRoom(t *testing.T) {
	c := NewCoordinator(100)
	alice, _ := c.CreateUser("Alice", "")
	lobby, _ := c.CreateRoom("Lobby")

	_, err := c.Join("sess-alice", lobby.ID, alice.ID)
	require.NoError(t, err)

	// Rejoining the current room emits no user_left
	plan, err := c.Join("sess-alice", lobby.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, DeliverRoomJoined, plan[0].Kind)

	members, err := c.RoomMembers(lobby.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestCoordinator_Leave(t *testing.T) {
	c := NewCoordinator(100)
	alice, _ := c.CreateUser("Alice", "")
	bob, _ := c.CreateUser("Bob", "")
	lobby, _ := c.CreateRoom("Lobby")

	_, err := c.Join("sess-alice", lobby.ID, alice.ID)
	require.NoError(t, err)
	_, err = c.Join("sess-bob", lobby.ID, bob.ID)
	require.NoError(t, err)

	plan, err := c.Leave("sess-alice", lobby.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, plan, 1)

	left := plan[0].Payload.(events.UserLeftEvent)
	assert.Equal(t, "Alice", left.UserName)
	assert.Equal(t, []string{"sess-bob"}, left.Targets)

	// Leaving again is rejected; add/remove asymmetry
	_, err = c.Leave("sess-alice", lobby.ID, alice.ID)
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestCoordinator_SendWithoutMembership(t *testing.T) {
	c := NewCoordinator(100)
	alice, _ := c.CreateUser("Alice", "")
	bob, _ := c.CreateUser("Bob", "")
	lobby, _ := c.CreateRoom("Lobby")

	_, err := c.Join("sess-bob", lobby.ID, bob.ID)
	require.NoError(t, err)

	// Alice never joined; the message still lands and reaches Bob
	plan, err := c.Send("sess-alice", lobby.ID, alice.ID, "drive-by")
	require.NoError(t, err)
	require.Len(t, plan, 1)

	sent := plan[0].Payload.(events.MessageSentEvent)
	assert.Equal(t, []string{"sess-bob"}, sent.Targets)

	history, err := c.History(lobby.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "drive-by", history[0].Content)
}

func TestCoordinator_SendValidation(t *testing.T) {
	c := NewCoordinator(100)
	alice, _ := c.CreateUser("Alice", "")
	lobby, _ := c.CreateRoom("Lobby")

	_, err := c.Send("s", lobby.ID, "no-such-user", "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Send("s", "no-such-room", alice.ID, "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Send("s", lobby.ID, alice.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	history, err := c.History(lobby.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, history, "rejected sends are not logged")
}

func TestCoordinator_DisconnectCascadesAcrossRooms(t *testing.T) {
	c := NewCoordinator(100)
	alice, _ := c.CreateUser("Alice", "")
	bob, _ := c.CreateUser("Bob", "")
	lobby, _ := c.CreateRoom("Lobby")
	den, _ := c.CreateRoom("Den")

	// Alice ends up a member of both rooms via direct table access the
	// session policy would normally prevent; the cascade must still
	// clean up everything it finds.
	_, err := c.Join("sess-alice", lobby.ID, alice.ID)
	require.NoError(t, err)
	c.membership.Add(den.ID, alice.ID)
	_, err = c.Join("sess-bob", den.ID, bob.ID)
	require.NoError(t, err)

	plan := c.Disconnect("sess-alice")
	require.Len(t, plan, 2)

	roomIDs := []string{
		plan[0].Payload.(events.UserLeftEvent).RoomID,
		plan[1].Payload.(events.UserLeftEvent).RoomID,
	}
	sort.Strings(roomIDs)
	assert.ElementsMatch(t, []string{lobby.ID, den.ID}, roomIDs)

	members, err := c.RoomMembers(lobby.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
	members, err = c.RoomMembers(den.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, bob.ID, members[0].ID)

	_, err = c.GetUser(alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCoordinator_DisconnectAnonymousSession(t *testing.T) {
	c := NewCoordinator(100)

	assert.Nil(t, c.Disconnect("never-identified"))
	// Idempotent
	assert.Nil(t, c.Disconnect("never-identified"))
}

func TestCoordinator_ConcurrentJoins(t *testing.T) {
	c := NewCoordinator(100)
	lobby, err := c.CreateRoom("Lobby")
	require.NoError(t, err)

	const n = 20
	userIDs := make([]string, n)
	for i := 0; i < n; i++ {
		user, err := c.CreateUser(string(rune('A'+i))+"-user", "")
		require.NoError(t, err)
		userIDs[i] = user.ID
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.Join("sess-"+userIDs[i], lobby.ID, userIDs[i])
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	members, err := c.RoomMembers(lobby.ID)
	require.NoError(t, err)
	assert.Len(t, members, n, "no join may be lost under contention")
	assert.Equal(t, n, c.SessionCount())
}

func TestCoordinator_ConcurrentSendsPreserveCount(t *testing.T) {
	c := NewCoordinator(1000)
	alice, _ := c.CreateUser("Alice", "")
	lobby, _ := c.CreateRoom("Lobby")
	_, err := c.Join("sess-alice", lobby.ID, alice.ID)
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Send("sess-alice", lobby.ID, alice.ID, "m")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	history, err := c.History(lobby.ID, 0)
	require.NoError(t, err)
	assert.Len(t, history, n)
}

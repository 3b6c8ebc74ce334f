package chat

import (
	"fmt"
	"sync"
	"time"

	domain "github.com/example/chatroom-server/domain/chat"
	"github.com/example/chatroom-server/events"
)

// Delivery kinds produced by the coordinator.
const (
	DeliverRoomJoined = "room_joined"
	DeliverUserJoined = "user_joined"
	DeliverUserLeft   = "user_left"
	DeliverMessage    = "message"
)

// Delivery is one instruction of a delivery plan: an event payload and
// the sessions it must reach. Payload is one of the events package
// structs with its Targets field already populated.
type Delivery struct {
	Kind    string
	Payload any
}

// Coordinator orchestrates the Directory, MembershipTable and MessageLog
// behind a single critical section. Every operation validates, mutates
// and computes its delivery plan under the lock, then returns; actual
// socket delivery happens elsewhere. Concurrent operations therefore
// never observe the three tables in disagreement.
//
// The coordinator additionally enforces a one-room-per-session policy:
// joining a room while already in another first applies leave semantics
// to the old room, even though the MembershipTable itself would permit
// multi-room membership.
type Coordinator struct {
	mu          sync.Mutex
	directory   *Directory
	membership  *MembershipTable
	log         *MessageLog
	sessionRoom map[string]string // sessionID -> current roomID
}

// NewCoordinator creates a coordinator with empty state.
func NewCoordinator(maxHistory int) *Coordinator {
	return &Coordinator{
		directory:   NewDirectory(),
		membership:  NewMembershipTable(),
		log:         NewMessageLog(maxHistory),
		sessionRoom: make(map[string]string),
	}
}

// CreateUser registers a new user.
func (c *Coordinator) CreateUser(name, description string) (*domain.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.directory.CreateUser(name, description)
}

// GetUser returns a user by ID.
func (c *Coordinator) GetUser(userID string) (*domain.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.directory.GetUser(userID)
}

// ListUsers returns all users in creation order.
func (c *Coordinator) ListUsers() []*domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.directory.ListUsers()
}

// CreateRoom registers a new room.
func (c *Coordinator) CreateRoom(name string) (*domain.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.directory.CreateRoom(name)
}

// GetRoom returns a room by ID.
func (c *Coordinator) GetRoom(roomID string) (*domain.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.directory.GetRoom(roomID)
}

// ListRooms returns all rooms in creation order.
func (c *Coordinator) ListRooms() []*domain.Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.directory.ListRooms()
}

// RoomMembers returns the users currently in a room.
func (c *Coordinator) RoomMembers(roomID string) ([]*domain.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.directory.RoomExists(roomID) {
		return nil, c.roomNotFound(roomID)
	}
	memberIDs := c.membership.MembersOf(roomID)
	members := make([]*domain.User, 0, len(memberIDs))
	for _, userID := range memberIDs {
		if user, err := c.directory.GetUser(userID); err == nil {
			members = append(members, user)
		}
	}
	return members, nil
}

// History returns up to limit most-recent messages of a room in
// chronological order; limit <= 0 returns all retained messages.
func (c *Coordinator) History(roomID string, limit int) ([]domain.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.directory.RoomExists(roomID) {
		return nil, c.roomNotFound(roomID)
	}
	return c.log.Tail(roomID, limit), nil
}

// Join adds a user to a room on behalf of a session. If the session is
// already in another room, leave semantics are applied to that room
// first. On success the plan confirms the join to the session and
// announces it to every room member, the joiner included.
func (c *Coordinator) Join(sessionID, roomID, userID string) ([]Delivery, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	user, err := c.directory.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if !c.directory.RoomExists(roomID) {
		return nil, c.roomNotFound(roomID)
	}

	now := time.Now()
	var plan []Delivery

	if oldRoom, ok := c.sessionRoom[sessionID]; ok && oldRoom != roomID {
		if oldUser, bound := c.membership.UserFor(sessionID); bound {
			if left, ok := c.leaveLocked(oldRoom, oldUser, now); ok {
				plan = append(plan, left)
			}
		}
	}

	c.membership.Add(roomID, userID)
	c.membership.BindSession(sessionID, userID)
	c.sessionRoom[sessionID] = roomID

	plan = append(plan,
		Delivery{
			Kind: DeliverRoomJoined,
			Payload: events.RoomJoinedEvent{
				Targets:  []string{sessionID},
				RoomID:   roomID,
				UserID:   userID,
				UserName: user.Name,
				JoinedAt: now,
			},
		},
		Delivery{
			Kind: DeliverUserJoined,
			Payload: events.UserJoinedEvent{
				Targets:  c.membership.SessionsFor(c.membership.MembersOf(roomID)),
				RoomID:   roomID,
				UserID:   userID,
				UserName: user.Name,
				JoinedAt: now,
			},
		},
	)
	return plan, nil
}

// Leave removes a user from a room and announces it to the remaining
// members.
func (c *Coordinator) Leave(sessionID, roomID, userID string) ([]Delivery, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.directory.GetUser(userID); err != nil {
		return nil, err
	}
	if !c.directory.RoomExists(roomID) {
		return nil, c.roomNotFound(roomID)
	}
	if !c.membership.IsMember(roomID, userID) {
		return nil, fmt.Errorf("user %s is not in room %s: %w", userID, roomID, ErrNotMember)
	}

	left, _ := c.leaveLocked(roomID, userID, time.Now())
	if c.sessionRoom[sessionID] == roomID {
		delete(c.sessionRoom, sessionID)
	}
	return []Delivery{left}, nil
}

// Send appends a message to the room's log and targets every current
// member. Membership of the sender is not required; existence of the
// sender and the room is.
func (c *Coordinator) Send(sessionID, roomID, userID, content string) ([]Delivery, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	user, err := c.directory.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if !c.directory.RoomExists(roomID) {
		return nil, c.roomNotFound(roomID)
	}

	msg, err := c.log.Append(roomID, userID, user.Name, content)
	if err != nil {
		return nil, err
	}

	return []Delivery{{
		Kind: DeliverMessage,
		Payload: events.MessageSentEvent{
			Targets:   c.membership.SessionsFor(c.membership.MembersOf(roomID)),
			MessageID: msg.ID,
			RoomID:    msg.RoomID,
			UserID:    msg.UserID,
			UserName:  msg.UserName,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		},
	}}, nil
}

// Disconnect tears down a session: the bound user is removed from every
// room they belong to, each room's remaining members are notified, and
// the user record itself is removed. There is no session resumption, so
// a lost connection means the identity is gone. Disconnecting a session
// that never identified is a no-op.
func (c *Coordinator) Disconnect(sessionID string) []Delivery {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.sessionRoom, sessionID)
	userID, ok := c.membership.UnbindSession(sessionID)
	if !ok {
		return nil
	}

	now := time.Now()
	var plan []Delivery
	for _, roomID := range c.membership.RoomsContaining(userID) {
		if left, ok := c.leaveLocked(roomID, userID, now); ok {
			plan = append(plan, left)
		}
	}
	c.directory.RemoveUser(userID)
	return plan
}

// SessionCount returns the number of sessions currently in a room.
func (c *Coordinator) SessionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessionRoom)
}

// leaveLocked removes the membership entry and builds the user_left
// delivery for the remaining members. Callers hold c.mu and have already
// validated whatever their operation requires.
func (c *Coordinator) leaveLocked(roomID, userID string, now time.Time) (Delivery, bool) {
	userName := "unknown"
	if user, err := c.directory.GetUser(userID); err == nil {
		userName = user.Name
	}

	if err := c.membership.Remove(roomID, userID); err != nil {
		return Delivery{}, false
	}

	return Delivery{
		Kind: DeliverUserLeft,
		Payload: events.UserLeftEvent{
			Targets:  c.membership.SessionsFor(c.membership.MembersOf(roomID)),
			RoomID:   roomID,
			UserID:   userID,
			UserName: userName,
			LeftAt:   now,
		},
	}, true
}

func (c *Coordinator) roomNotFound(roomID string) error {
	_, err := c.directory.GetRoom(roomID)
	return err
}

package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// Each event carries the target session set computed by the room
// coordinator. The broadcast module delivers the payload to exactly those
// sessions; a nil Targets slice means every connected session.

// RoomJoinedEvent confirms a join to the joining session only.
type RoomJoinedEvent struct {
	Targets  []string  `json:"targets"`
	RoomID   string    `json:"room_id"`
	UserID   string    `json:"user_id"`
	UserName string    `json:"user_name"`
	JoinedAt time.Time `json:"joined_at"`
}

// UserJoinedEvent is emitted to all room members when a user joins.
type UserJoinedEvent struct {
	Targets  []string  `json:"targets"`
	RoomID   string    `json:"room_id"`
	UserID   string    `json:"user_id"`
	UserName string    `json:"user_name"`
	JoinedAt time.Time `json:"joined_at"`
}

// UserLeftEvent is emitted to the remaining room members when a user
// leaves or disconnects.
type UserLeftEvent struct {
	Targets  []string  `json:"targets"`
	RoomID   string    `json:"room_id"`
	UserID   string    `json:"user_id"`
	UserName string    `json:"user_name"`
	LeftAt   time.Time `json:"left_at"`
}

// MessageSentEvent is emitted to all room members when a message is sent.
type MessageSentEvent struct {
	Targets   []string  `json:"targets"`
	MessageID string    `json:"message_id"`
	RoomID    string    `json:"room_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomCreatedEvent is emitted to every connected session when a new room
// is created.
type RoomCreatedEvent struct {
	Targets   []string  `json:"targets"`
	RoomID    string    `json:"room_id"`
	RoomName  string    `json:"room_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Event definitions for the chat domain.
var (
	RoomJoinedV1 = helper.EventDefinition[RoomJoinedEvent](
		"chat",
		"RoomJoined",
		"v1",
	)

	UserJoinedV1 = helper.EventDefinition[UserJoinedEvent](
		"chat",
		"UserJoined",
		"v1",
	)

	UserLeftV1 = helper.EventDefinition[UserLeftEvent](
		"chat",
		"UserLeft",
		"v1",
	)

	MessageSentV1 = helper.EventDefinition[MessageSentEvent](
		"chat",
		"MessageSent",
		"v1",
	)

	RoomCreatedV1 = helper.EventDefinition[RoomCreatedEvent](
		"chat",
		"RoomCreated",
		"v1",
	)
)

package chat

import (
	"time"

	domain "github.com/example/chatroom-server/domain/chat"
)

// Request/response types for the chat module's request-reply services.
// Responses carry a wire code instead of a transported Go error; the
// adapter maps codes back to the sentinel errors in errors.go.

// CreateUserRequest is the request for the create-user service.
type CreateUserRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateUserResponse is the response for the create-user service.
type CreateUserResponse struct {
	User  *domain.User `json:"user,omitempty"`
	Code  string       `json:"code,omitempty"`
	Error string       `json:"error,omitempty"`
}

// GetUserRequest is the request for the get-user service.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// GetUserResponse is the response for the get-user service.
type GetUserResponse struct {
	User  *domain.User `json:"user,omitempty"`
	Code  string       `json:"code,omitempty"`
	Error string       `json:"error,omitempty"`
}

// ListUsersRequest is the request for the list-users service.
type ListUsersRequest struct{}

// ListUsersResponse is the response for the list-users service.
type ListUsersResponse struct {
	Users []*domain.User `json:"users"`
}

// CreateRoomRequest is the request for the create-room service.
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// CreateRoomResponse is the response for the create-room service.
type CreateRoomResponse struct {
	Room  *domain.Room `json:"room,omitempty"`
	Code  string       `json:"code,omitempty"`
	Error string       `json:"error,omitempty"`
}

// GetRoomRequest is the request for the get-room service.
type GetRoomRequest struct {
	RoomID string `json:"room_id"`
}

// GetRoomResponse is the response for the get-room service.
type GetRoomResponse struct {
	Room  *domain.Room `json:"room,omitempty"`
	Code  string       `json:"code,omitempty"`
	Error string       `json:"error,omitempty"`
}

// ListRoomsRequest is the request for the list-rooms service.
type ListRoomsRequest struct{}

// ListRoomsResponse is the response for the list-rooms service.
type ListRoomsResponse struct {
	Rooms []*domain.Room `json:"rooms"`
}

// RoomMembersRequest is the request for the room-members service.
type RoomMembersRequest struct {
	RoomID string `json:"room_id"`
}

// RoomMembersResponse is the response for the room-members service.
type RoomMembersResponse struct {
	Members []*domain.User `json:"members,omitempty"`
	Code    string         `json:"code,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// RoomHistoryRequest is the request for the room-history service.
// Limit <= 0 requests all retained messages.
type RoomHistoryRequest struct {
	RoomID string `json:"room_id"`
	Limit  int    `json:"limit"`
}

// RoomHistoryResponse is the response for the room-history service.
type RoomHistoryResponse struct {
	Messages []domain.Message `json:"messages,omitempty"`
	Code     string           `json:"code,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// JoinRoomRequest is the request for the join-room service.
type JoinRoomRequest struct {
	SessionID string `json:"session_id"`
	RoomID    string `json:"room_id"`
	UserID    string `json:"user_id"`
}

// JoinRoomResponse is the response for the join-room service.
type JoinRoomResponse struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

// LeaveRoomRequest is the request for the leave-room service.
type LeaveRoomRequest struct {
	SessionID string `json:"session_id"`
	RoomID    string `json:"room_id"`
	UserID    string `json:"user_id"`
}

// LeaveRoomResponse is the response for the leave-room service.
type LeaveRoomResponse struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

// SendMessageRequest is the request for the send-message service.
type SendMessageRequest struct {
	SessionID string `json:"session_id"`
	RoomID    string `json:"room_id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
}

// SendMessageResponse is the response for the send-message service.
type SendMessageResponse struct {
	MessageID string    `json:"message_id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	Code      string    `json:"code,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// DisconnectRequest is the request for the disconnect service.
type DisconnectRequest struct {
	SessionID string `json:"session_id"`
}

// DisconnectResponse is the response for the disconnect service.
type DisconnectResponse struct{}

package api

import (
	"encoding/json"

	domain "github.com/example/chatroom-server/domain/chat"
)

// CreateUserRequest is the API request to create a user.
type CreateUserRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateRoomRequest is the API request to create a room.
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// UserListResponse is the API response for listing users.
type UserListResponse struct {
	Users []*domain.User `json:"users"`
	Total int            `json:"total"`
}

// RoomListResponse is the API response for listing rooms.
type RoomListResponse struct {
	Rooms []*domain.Room `json:"rooms"`
	Total int            `json:"total"`
}

// MemberListResponse is the API response for listing room members.
type MemberListResponse struct {
	RoomID  string         `json:"room_id"`
	Members []*domain.User `json:"members"`
	Total   int            `json:"total"`
}

// HistoryResponse is the API response for a room's message tail.
type HistoryResponse struct {
	RoomID   string           `json:"room_id"`
	Messages []domain.Message `json:"messages"`
	Total    int              `json:"total"`
}

// ErrorResponse is the API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the API health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Service string         `json:"service"`
	Details map[string]any `json:"details,omitempty"`
}

// WSRequest is an inbound WebSocket frame.
type WSRequest struct {
	Type    string          `json:"type"` // "join", "leave", "message"
	RoomID  string          `json:"room_id,omitempty"`
	UserID  string          `json:"user_id,omitempty"`
	Content string          `json:"content,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/chatroom-server/modules/broadcast"
	"github.com/example/chatroom-server/modules/chat"
)

const (
	maxNameLength       = 100
	maxMessageLength    = 4096
	defaultHistoryLimit = 50
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes() {
	// Health check
	m.app.Get("/health", m.healthHandler)

	// WebSocket endpoint
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.handleWebSocket))

	// REST API v1
	api := m.app.Group("/api/v1")

	api.Post("/users", m.createUser)
	api.Get("/users", m.listUsers)
	api.Get("/users/:id", m.getUser)

	api.Post("/rooms", m.createRoom)
	api.Get("/rooms", m.listRooms)
	api.Get("/rooms/:id", m.getRoom)
	api.Get("/rooms/:id/members", m.getRoomMembers)
	api.Get("/rooms/:id/messages", m.getRoomMessages)
}

// statusFor maps chat rejection categories to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, chat.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, chat.ErrDuplicateName):
		return fiber.StatusConflict
	case errors.Is(err, chat.ErrNotMember):
		return fiber.StatusConflict
	case errors.Is(err, chat.ErrInvalidArgument):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func rejectionResponse(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(ErrorResponse{
		Error:   chat.ErrorCode(err),
		Message: err.Error(),
	})
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "healthy",
		Service: "chatroom-server",
		Details: map[string]any{
			"connected_sessions": m.hub.SessionCount(),
		},
	})
}

// createUser handles POST /api/v1/users.
func (m *APIModule) createUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if len(req.Name) > maxNameLength {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "User name too long (max 100 characters)",
		})
	}

	user, err := m.chat.CreateUser(c.UserContext(), req.Name, req.Description)
	if err != nil {
		return rejectionResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// getUser handles GET /api/v1/users/:id.
func (m *APIModule) getUser(c *fiber.Ctx) error {
	user, err := m.chat.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return rejectionResponse(c, err)
	}
	return c.JSON(user)
}

// listUsers handles GET /api/v1/users.
func (m *APIModule) listUsers(c *fiber.Ctx) error {
	users, err := m.chat.ListUsers(c.UserContext())
	if err != nil {
		return rejectionResponse(c, err)
	}
	return c.JSON(UserListResponse{Users: users, Total: len(users)})
}

// createRoom handles POST /api/v1/rooms.
func (m *APIModule) createRoom(c *fiber.Ctx) error {
	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if len(req.Name) > maxNameLength {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Room name too long (max 100 characters)",
		})
	}

	room, err := m.chat.CreateRoom(c.UserContext(), req.Name)
	if err != nil {
		return rejectionResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(room)
}

// getRoom handles GET /api/v1/rooms/:id.
func (m *APIModule) getRoom(c *fiber.Ctx) error {
	room, err := m.chat.GetRoom(c.UserContext(), c.Params("id"))
	if err != nil {
		return rejectionResponse(c, err)
	}
	return c.JSON(room)
}

// listRooms handles GET /api/v1/rooms.
func (m *APIModule) listRooms(c *fiber.Ctx) error {
	rooms, err := m.chat.ListRooms(c.UserContext())
	if err != nil {
		return rejectionResponse(c, err)
	}
	return c.JSON(RoomListResponse{Rooms: rooms, Total: len(rooms)})
}

// getRoomMembers handles GET /api/v1/rooms/:id/members.
func (m *APIModule) getRoomMembers(c *fiber.Ctx) error {
	roomID := c.Params("id")
	members, err := m.chat.RoomMembers(c.UserContext(), roomID)
	if err != nil {
		return rejectionResponse(c, err)
	}
	return c.JSON(MemberListResponse{RoomID: roomID, Members: members, Total: len(members)})
}

// getRoomMessages handles GET /api/v1/rooms/:id/messages.
// limit defaults to 50; zero or negative means all retained messages.
func (m *APIModule) getRoomMessages(c *fiber.Ctx) error {
	roomID := c.Params("id")
	limit := c.QueryInt("limit", defaultHistoryLimit)

	messages, err := m.chat.RoomHistory(c.UserContext(), roomID, limit)
	if err != nil {
		return rejectionResponse(c, err)
	}
	return c.JSON(HistoryResponse{RoomID: roomID, Messages: messages, Total: len(messages)})
}

// handleWebSocket handles WebSocket connections at /ws. Each connection
// is one session; the session identity is assigned server-side.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	sessionID := uuid.New().String()
	limiter := newRateLimiter(burstSize, messagesPerSecond)

	m.hub.Register(&broadcast.Session{ID: sessionID, Conn: c})
	defer func() {
		// Cascade user removal before dropping the socket; the session
		// itself receives nothing, it is already gone.
		if err := m.chat.Disconnect(context.Background(), sessionID); err != nil {
			log.Printf("[api] Disconnect cleanup failed for session %s: %v", sessionID, err)
		}
		m.hub.Unregister(sessionID)
		log.Printf("[api] WebSocket session disconnected: %s", sessionID)
	}()

	log.Printf("[api] WebSocket session connected: %s", sessionID)

	m.hub.Send(sessionID, broadcast.WSEvent{
		Type:      "connected",
		SessionID: sessionID,
	})

	// Dispatch table: event kind -> handler. Handlers validate, call the
	// coordinator through the chat port and report rejections to the
	// originating session only.
	dispatch := map[string]func(sessionID string, req WSRequest, limiter *rateLimiter){
		"join":    m.wsJoin,
		"leave":   m.wsLeave,
		"message": m.wsMessage,
	}

	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[api] Session %s closed connection", sessionID)
			} else {
				log.Printf("[api] Read error from session %s: %v", sessionID, err)
			}
			break
		}

		var req WSRequest
		if err := json.Unmarshal(msgBytes, &req); err != nil {
			m.sendError(sessionID, "Invalid message format")
			continue
		}

		handler, ok := dispatch[req.Type]
		if !ok {
			m.sendError(sessionID, "Unknown message type: "+req.Type)
			continue
		}
		handler(sessionID, req, limiter)
	}
}

func (m *APIModule) wsJoin(sessionID string, req WSRequest, _ *rateLimiter) {
	if req.RoomID == "" || req.UserID == "" {
		m.sendError(sessionID, "room_id and user_id are required")
		return
	}
	if err := m.chat.JoinRoom(context.Background(), sessionID, req.RoomID, req.UserID); err != nil {
		m.sendError(sessionID, err.Error())
	}
}

func (m *APIModule) wsLeave(sessionID string, req WSRequest, _ *rateLimiter) {
	if req.RoomID == "" || req.UserID == "" {
		m.sendError(sessionID, "room_id and user_id are required")
		return
	}
	if err := m.chat.LeaveRoom(context.Background(), sessionID, req.RoomID, req.UserID); err != nil {
		m.sendError(sessionID, err.Error())
	}
}

func (m *APIModule) wsMessage(sessionID string, req WSRequest, limiter *rateLimiter) {
	if !limiter.allow() {
		m.sendError(sessionID, "Rate limit exceeded, please slow down")
		return
	}
	if req.RoomID == "" || req.UserID == "" || req.Content == "" {
		m.sendError(sessionID, "room_id, user_id and content are required")
		return
	}
	if len(req.Content) > maxMessageLength {
		m.sendError(sessionID, "Message too long")
		return
	}
	if _, _, err := m.chat.SendMessage(context.Background(), sessionID, req.RoomID, req.UserID, req.Content); err != nil {
		m.sendError(sessionID, err.Error())
	}
}

// sendError reports a rejection to the originating session only. It goes
// through the hub so writes stay serialized with broadcast deliveries.
func (m *APIModule) sendError(sessionID, message string) {
	m.hub.Send(sessionID, broadcast.WSEvent{
		Type:  "error",
		Error: message,
	})
}

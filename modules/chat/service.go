package chat

import (
	"context"
	"log"
	"time"

	"github.com/go-monolith/mono"

	"github.com/example/chatroom-server/events"
)

// handleCreateUser handles the create-user service request.
func (m *Module) handleCreateUser(_ context.Context, req CreateUserRequest, _ *mono.Msg) (CreateUserResponse, error) {
	user, err := m.coordinator.CreateUser(req.Name, req.Description)
	if err != nil {
		return CreateUserResponse{Code: ErrorCode(err), Error: err.Error()}, nil
	}
	log.Printf("[chat] Created user %s (%s)", user.Name, user.ID)
	return CreateUserResponse{User: user}, nil
}

// handleGetUser handles the get-user service request.
func (m *Module) handleGetUser(_ context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	user, err := m.coordinator.GetUser(req.UserID)
	if err != nil {
		return GetUserResponse{Code: ErrorCode(err), Error: err.Error()}, nil
	}
	return GetUserResponse{User: user}, nil
}

// handleListUsers handles the list-users service request.
func (m *Module) handleListUsers(_ context.Context, _ ListUsersRequest, _ *mono.Msg) (ListUsersResponse, error) {
	return ListUsersResponse{Users: m.coordinator.ListUsers()}, nil
}

// handleCreateRoom handles the create-room service request. Room
// creation is announced to every connected session.
func (m *Module) handleCreateRoom(_ context.Context, req CreateRoomRequest, _ *mono.Msg) (CreateRoomResponse, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	room, err := m.coordinator.CreateRoom(req.Name)
	if err != nil {
		return CreateRoomResponse{Code: ErrorCode(err), Error: err.Error()}, nil
	}

	if err := events.RoomCreatedV1.Publish(m.eventBus, events.RoomCreatedEvent{
		RoomID:    room.ID,
		RoomName:  room.Name,
		CreatedAt: room.CreatedAt,
	}, nil); err != nil {
		log.Printf("[chat] Failed to publish RoomCreated event: %v", err)
	}

	log.Printf("[chat] Created room %s (%s)", room.Name, room.ID)
	return CreateRoomResponse{Room: room}, nil
}

// handleGetRoom handles the get-room service request.
func (m *Module) handleGetRoom(_ context.Context, req GetRoomRequest, _ *mono.Msg) (GetRoomResponse, error) {
	room, err := m.coordinator.GetRoom(req.RoomID)
	if err != nil {
		return GetRoomResponse{Code: ErrorCode(err), Error: err.Error()}, nil
	}
	return GetRoomResponse{Room: room}, nil
}

// handleListRooms handles the list-rooms service request.
func (m *Module) handleListRooms(_ context.Context, _ ListRoomsRequest, _ *mono.Msg) (ListRoomsResponse, error) {
	return ListRoomsResponse{Rooms: m.coordinator.ListRooms()}, nil
}

// handleRoomMembers handles the room-members service request.
func (m *Module) handleRoomMembers(_ context.Context, req RoomMembersRequest, _ *mono.Msg) (RoomMembersResponse, error) {
	members, err := m.coordinator.RoomMembers(req.RoomID)
	if err != nil {
		return RoomMembersResponse{Code: ErrorCode(err), Error: err.Error()}, nil
	}
	return RoomMembersResponse{Members: members}, nil
}

// handleRoomHistory handles the room-history service request.
func (m *Module) handleRoomHistory(_ context.Context, req RoomHistoryRequest, _ *mono.Msg) (RoomHistoryResponse, error) {
	messages, err := m.coordinator.History(req.RoomID, req.Limit)
	if err != nil {
		return RoomHistoryResponse{Code: ErrorCode(err), Error: err.Error()}, nil
	}
	return RoomHistoryResponse{Messages: messages}, nil
}

// handleJoinRoom handles the join-room service request.
func (m *Module) handleJoinRoom(_ context.Context, req JoinRoomRequest, _ *mono.Msg) (JoinRoomResponse, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	plan, err := m.coordinator.Join(req.SessionID, req.RoomID, req.UserID)
	if err != nil {
		return JoinRoomResponse{Code: ErrorCode(err), Error: err.Error()}, nil
	}
	m.publishPlan(plan)
	log.Printf("[chat] User %s joined room %s (session %s)", req.UserID, req.RoomID, req.SessionID)
	return JoinRoomResponse{}, nil
}

// handleLeaveRoom handles the leave-room service request.
func (m *Module) handleLeaveRoom(_ context.Context, req LeaveRoomRequest, _ *mono.Msg) (LeaveRoomResponse, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	plan, err := m.coordinator.Leave(req.SessionID, req.RoomID, req.UserID)
	if err != nil {
		return LeaveRoomResponse{Code: ErrorCode(err), Error: err.Error()}, nil
	}
	m.publishPlan(plan)
	log.Printf("[chat] User %s left room %s", req.UserID, req.RoomID)
	return LeaveRoomResponse{}, nil
}

// handleSendMessage handles the send-message service request.
func (m *Module) handleSendMessage(_ context.Context, req SendMessageRequest, _ *mono.Msg) (SendMessageResponse, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	plan, err := m.coordinator.Send(req.SessionID, req.RoomID, req.UserID, req.Content)
	if err != nil {
		return SendMessageResponse{Code: ErrorCode(err), Error: err.Error()}, nil
	}
	m.publishPlan(plan)

	var msgID string
	var createdAt time.Time
	if len(plan) > 0 {
		if sent, ok := plan[0].Payload.(events.MessageSentEvent); ok {
			msgID = sent.MessageID
			createdAt = sent.CreatedAt
		}
	}
	return SendMessageResponse{MessageID: msgID, CreatedAt: createdAt}, nil
}

// handleDisconnect handles the disconnect service request. Disconnect is
// idempotent and never fails; a session that never identified produces
// an empty plan.
func (m *Module) handleDisconnect(_ context.Context, req DisconnectRequest, _ *mono.Msg) (DisconnectResponse, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	plan := m.coordinator.Disconnect(req.SessionID)
	m.publishPlan(plan)
	if len(plan) > 0 {
		log.Printf("[chat] Session %s disconnected, user removed from %d room(s)", req.SessionID, len(plan))
	}
	return DisconnectResponse{}, nil
}

// publishPlan publishes every delivery of a plan on the EventBus. A
// publish failure is logged and skipped; delivery is best-effort
// at-most-once and must never roll back committed state.
func (m *Module) publishPlan(plan []Delivery) {
	for _, d := range plan {
		var err error
		switch payload := d.Payload.(type) {
		case events.RoomJoinedEvent:
			err = events.RoomJoinedV1.Publish(m.eventBus, payload, nil)
		case events.UserJoinedEvent:
			err = events.UserJoinedV1.Publish(m.eventBus, payload, nil)
		case events.UserLeftEvent:
			err = events.UserLeftV1.Publish(m.eventBus, payload, nil)
		case events.MessageSentEvent:
			err = events.MessageSentV1.Publish(m.eventBus, payload, nil)
		default:
			log.Printf("[chat] Unknown delivery kind %q, dropping", d.Kind)
			continue
		}
		if err != nil {
			log.Printf("[chat] Failed to publish %s event: %v", d.Kind, err)
		}
	}
}

package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/chatroom-server/events"
)

// Service names registered in the service container.
const (
	ServiceCreateUser  = "create-user"
	ServiceGetUser     = "get-user"
	ServiceListUsers   = "list-users"
	ServiceCreateRoom  = "create-room"
	ServiceGetRoom     = "get-room"
	ServiceListRooms   = "list-rooms"
	ServiceRoomMembers = "room-members"
	ServiceRoomHistory = "room-history"
	ServiceJoinRoom    = "join-room"
	ServiceLeaveRoom   = "leave-room"
	ServiceSendMessage = "send-message"
	ServiceDisconnect  = "disconnect"
)

// Module is the chat core: it owns the room coordinator and exposes its
// operations as request-reply services. Mutating operations publish
// their delivery plans on the EventBus for the broadcast module.
type Module struct {
	coordinator *Coordinator
	eventBus    mono.EventBus

	// opMu serializes {coordinator mutation + plan publish} so that the
	// bus observes events in the same order the coordinator committed
	// them. Read-only services bypass it.
	opMu sync.Mutex
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the chat module. Per-room history capacity comes
// from CHAT_HISTORY_LIMIT when set.
func NewModule() *Module {
	maxHistory := defaultHistoryLimit
	if v := os.Getenv("CHAT_HISTORY_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			maxHistory = parsed
		}
	}
	return &Module{
		coordinator: NewCoordinator(maxHistory),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.RoomJoinedV1.ToBase(),
		events.UserJoinedV1.ToBase(),
		events.UserLeftV1.ToBase(),
		events.MessageSentV1.ToBase(),
		events.RoomCreatedV1.ToBase(),
	}
}

// RegisterServices registers all chat request-reply services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	registrations := []struct {
		name     string
		register func() error
	}{
		{ServiceCreateUser, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceCreateUser, json.Unmarshal, json.Marshal, m.handleCreateUser)
		}},
		{ServiceGetUser, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceGetUser, json.Unmarshal, json.Marshal, m.handleGetUser)
		}},
		{ServiceListUsers, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceListUsers, json.Unmarshal, json.Marshal, m.handleListUsers)
		}},
		{ServiceCreateRoom, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceCreateRoom, json.Unmarshal, json.Marshal, m.handleCreateRoom)
		}},
		{ServiceGetRoom, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceGetRoom, json.Unmarshal, json.Marshal, m.handleGetRoom)
		}},
		{ServiceListRooms, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceListRooms, json.Unmarshal, json.Marshal, m.handleListRooms)
		}},
		{ServiceRoomMembers, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceRoomMembers, json.Unmarshal, json.Marshal, m.handleRoomMembers)
		}},
		{ServiceRoomHistory, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceRoomHistory, json.Unmarshal, json.Marshal, m.handleRoomHistory)
		}},
		{ServiceJoinRoom, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceJoinRoom, json.Unmarshal, json.Marshal, m.handleJoinRoom)
		}},
		{ServiceLeaveRoom, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceLeaveRoom, json.Unmarshal, json.Marshal, m.handleLeaveRoom)
		}},
		{ServiceSendMessage, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceSendMessage, json.Unmarshal, json.Marshal, m.handleSendMessage)
		}},
		{ServiceDisconnect, func() error {
			return helper.RegisterTypedRequestReplyService(container, ServiceDisconnect, json.Unmarshal, json.Marshal, m.handleDisconnect)
		}},
	}

	for _, r := range registrations {
		if err := r.register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", r.name, err)
		}
	}

	log.Printf("[chat] Registered %d services", len(registrations))
	return nil
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[chat] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[chat] Module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"active_sessions": m.coordinator.SessionCount(),
			"rooms":           len(m.coordinator.ListRooms()),
			"users":           len(m.coordinator.ListUsers()),
		},
	}
}

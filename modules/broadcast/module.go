package broadcast

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/chatroom-server/events"
)

// BroadcastModule consumes chat delivery events and pushes them to the
// targeted WebSocket sessions.
type BroadcastModule struct {
	hub       *Hub
	cancelHub context.CancelFunc
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*BroadcastModule)(nil)
	_ mono.EventConsumerModule   = (*BroadcastModule)(nil)
	_ mono.HealthCheckableModule = (*BroadcastModule)(nil)
)

// NewModule creates a new BroadcastModule.
func NewModule() *BroadcastModule {
	return &BroadcastModule{
		hub: NewHub(),
	}
}

// Name returns the module name.
func (m *BroadcastModule) Name() string {
	return "broadcast"
}

// Start initializes the module and starts the hub.
func (m *BroadcastModule) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	log.Println("[broadcast] Module started - WebSocket hub running")
	return nil
}

// Stop shuts down the module.
func (m *BroadcastModule) Stop(_ context.Context) error {
	sessionCount := m.hub.SessionCount()
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	log.Printf("[broadcast] Module stopped - %d sessions were connected", sessionCount)
	return nil
}

// Health returns the health status.
func (m *BroadcastModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_sessions": m.hub.SessionCount(),
		},
	}
}

// GetHub returns the WebSocket hub for the API module to use.
func (m *BroadcastModule) GetHub() *Hub {
	return m.hub
}

// RegisterEventConsumers registers event handlers.
func (m *BroadcastModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomJoinedV1, m.handleRoomJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserJoinedV1, m.handleUserJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register UserJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserLeftV1, m.handleUserLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register UserLeft consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageSentV1, m.handleMessageSent, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageSent consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomCreatedV1, m.handleRoomCreated, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomCreated consumer: %w", err)
	}

	log.Println("[broadcast] Registered event consumers: RoomJoined, UserJoined, UserLeft, MessageSent, RoomCreated")
	return nil
}

// Event handlers

func (m *BroadcastModule) handleRoomJoined(_ context.Context, event events.RoomJoinedEvent, _ *mono.Msg) error {
	m.hub.Deliver(event.Targets, WSEvent{
		Type:      "room_joined",
		RoomID:    event.RoomID,
		UserID:    event.UserID,
		UserName:  event.UserName,
		CreatedAt: event.JoinedAt,
	})
	return nil
}

func (m *BroadcastModule) handleUserJoined(_ context.Context, event events.UserJoinedEvent, _ *mono.Msg) error {
	log.Printf("[broadcast] Delivering user_joined for %s in room %s to %d session(s)",
		event.UserName, event.RoomID, len(event.Targets))

	m.hub.Deliver(event.Targets, WSEvent{
		Type:      "user_joined",
		RoomID:    event.RoomID,
		UserID:    event.UserID,
		UserName:  event.UserName,
		CreatedAt: event.JoinedAt,
	})
	return nil
}

func (m *BroadcastModule) handleUserLeft(_ context.Context, event events.UserLeftEvent, _ *mono.Msg) error {
	log.Printf("[broadcast] Delivering user_left for %s from room %s to %d session(s)",
		event.UserName, event.RoomID, len(event.Targets))

	m.hub.Deliver(event.Targets, WSEvent{
		Type:      "user_left",
		RoomID:    event.RoomID,
		UserID:    event.UserID,
		UserName:  event.UserName,
		CreatedAt: event.LeftAt,
	})
	return nil
}

func (m *BroadcastModule) handleMessageSent(_ context.Context, event events.MessageSentEvent, _ *mono.Msg) error {
	m.hub.Deliver(event.Targets, WSEvent{
		Type:      "message",
		RoomID:    event.RoomID,
		MessageID: event.MessageID,
		UserID:    event.UserID,
		UserName:  event.UserName,
		Content:   event.Content,
		CreatedAt: event.CreatedAt,
	})
	return nil
}

func (m *BroadcastModule) handleRoomCreated(_ context.Context, event events.RoomCreatedEvent, _ *mono.Msg) error {
	// Nil targets: announce to every connected session.
	m.hub.Deliver(nil, WSEvent{
		Type:      "room_created",
		RoomID:    event.RoomID,
		RoomName:  event.RoomName,
		CreatedAt: event.CreatedAt,
	})
	return nil
}

// WSEvent is the frame structure written to WebSocket clients.
type WSEvent struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	RoomID    string    `json:"room_id,omitempty"`
	RoomName  string    `json:"room_name,omitempty"`
	MessageID string    `json:"message_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	UserName  string    `json:"user_name,omitempty"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	Error     string    `json:"error,omitempty"`
}

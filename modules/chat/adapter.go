package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/chatroom-server/domain/chat"
)

// ChatPort defines the chat operations available to other modules.
type ChatPort interface {
	CreateUser(ctx context.Context, name, description string) (*domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)

	CreateRoom(ctx context.Context, name string) (*domain.Room, error)
	GetRoom(ctx context.Context, roomID string) (*domain.Room, error)
	ListRooms(ctx context.Context) ([]*domain.Room, error)
	RoomMembers(ctx context.Context, roomID string) ([]*domain.User, error)
	RoomHistory(ctx context.Context, roomID string, limit int) ([]domain.Message, error)

	JoinRoom(ctx context.Context, sessionID, roomID, userID string) error
	LeaveRoom(ctx context.Context, sessionID, roomID, userID string) error
	SendMessage(ctx context.Context, sessionID, roomID, userID, content string) (string, time.Time, error)
	Disconnect(ctx context.Context, sessionID string) error
}

// chatAdapter wraps the chat module's ServiceContainer for type-safe
// cross-module calls.
type chatAdapter struct {
	container mono.ServiceContainer
}

// NewChatAdapter creates an adapter for the chat services. The container
// is the one received via SetDependencyServiceContainer.
func NewChatAdapter(container mono.ServiceContainer) ChatPort {
	if container == nil {
		panic("chat adapter requires non-nil ServiceContainer")
	}
	return &chatAdapter{container: container}
}

func (a *chatAdapter) call(ctx context.Context, service string, req, resp any) error {
	if err := helper.CallRequestReplyService[any, any](
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

// codeErr converts a wire code carried in a response into a sentinel
// error, keeping the server-side message.
func codeErr(code, message string) error {
	if code == "" {
		return nil
	}
	if message == "" {
		return CodeError(code)
	}
	return fmt.Errorf("%s: %w", message, CodeError(code))
}

func (a *chatAdapter) CreateUser(ctx context.Context, name, description string) (*domain.User, error) {
	req := CreateUserRequest{Name: name, Description: description}
	var resp CreateUserResponse
	if err := a.call(ctx, ServiceCreateUser, &req, &resp); err != nil {
		return nil, err
	}
	if err := codeErr(resp.Code, resp.Error); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (a *chatAdapter) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	req := GetUserRequest{UserID: userID}
	var resp GetUserResponse
	if err := a.call(ctx, ServiceGetUser, &req, &resp); err != nil {
		return nil, err
	}
	if err := codeErr(resp.Code, resp.Error); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (a *chatAdapter) ListUsers(ctx context.Context) ([]*domain.User, error) {
	req := ListUsersRequest{}
	var resp ListUsersResponse
	if err := a.call(ctx, ServiceListUsers, &req, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (a *chatAdapter) CreateRoom(ctx context.Context, name string) (*domain.Room, error) {
	req := CreateRoomRequest{Name: name}
	var resp CreateRoomResponse
	if err := a.call(ctx, ServiceCreateRoom, &req, &resp); err != nil {
		return nil, err
	}
	if err := codeErr(resp.Code, resp.Error); err != nil {
		return nil, err
	}
	return resp.Room, nil
}

func (a *chatAdapter) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	req := GetRoomRequest{RoomID: roomID}
	var resp GetRoomResponse
	if err := a.call(ctx, ServiceGetRoom, &req, &resp); err != nil {
		return nil, err
	}
	if err := codeErr(resp.Code, resp.Error); err != nil {
		return nil, err
	}
	return resp.Room, nil
}

func (a *chatAdapter) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	req := ListRoomsRequest{}
	var resp ListRoomsResponse
	if err := a.call(ctx, ServiceListRooms, &req, &resp); err != nil {
		return nil, err
	}
	return resp.Rooms, nil
}

func (a *chatAdapter) RoomMembers(ctx context.Context, roomID string) ([]*domain.User, error) {
	req := RoomMembersRequest{RoomID: roomID}
	var resp RoomMembersResponse
	if err := a.call(ctx, ServiceRoomMembers, &req, &resp); err != nil {
		return nil, err
	}
	if err := codeErr(resp.Code, resp.Error); err != nil {
		return nil, err
	}
	return resp.Members, nil
}

func (a *chatAdapter) RoomHistory(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	req := RoomHistoryRequest{RoomID: roomID, Limit: limit}
	var resp RoomHistoryResponse
	if err := a.call(ctx, ServiceRoomHistory, &req, &resp); err != nil {
		return nil, err
	}
	if err := codeErr(resp.Code, resp.Error); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (a *chatAdapter) JoinRoom(ctx context.Context, sessionID, roomID, userID string) error {
	req := JoinRoomRequest{SessionID: sessionID, RoomID: roomID, UserID: userID}
	var resp JoinRoomResponse
	if err := a.call(ctx, ServiceJoinRoom, &req, &resp); err != nil {
		return err
	}
	return codeErr(resp.Code, resp.Error)
}

func (a *chatAdapter) LeaveRoom(ctx context.Context, sessionID, roomID, userID string) error {
	req := LeaveRoomRequest{SessionID: sessionID, RoomID: roomID, UserID: userID}
	var resp LeaveRoomResponse
	if err := a.call(ctx, ServiceLeaveRoom, &req, &resp); err != nil {
		return err
	}
	return codeErr(resp.Code, resp.Error)
}

func (a *chatAdapter) SendMessage(ctx context.Context, sessionID, roomID, userID, content string) (string, time.Time, error) {
	req := SendMessageRequest{SessionID: sessionID, RoomID: roomID, UserID: userID, Content: content}
	var resp SendMessageResponse
	if err := a.call(ctx, ServiceSendMessage, &req, &resp); err != nil {
		return "", time.Time{}, err
	}
	if err := codeErr(resp.Code, resp.Error); err != nil {
		return "", time.Time{}, err
	}
	return resp.MessageID, resp.CreatedAt, nil
}

func (a *chatAdapter) Disconnect(ctx context.Context, sessionID string) error {
	req := DisconnectRequest{SessionID: sessionID}
	var resp DisconnectResponse
	return a.call(ctx, ServiceDisconnect, &req, &resp)
}

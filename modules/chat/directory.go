package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/example/chatroom-server/domain/chat"
)

// Directory owns the canonical user and room records. It is a plain data
// structure with no locking of its own; the Coordinator serializes access.
type Directory struct {
	users     map[string]*domain.User
	rooms     map[string]*domain.Room
	userOrder []string
	roomOrder []string
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		users: make(map[string]*domain.User),
		rooms: make(map[string]*domain.Room),
	}
}

// CreateUser registers a new user. Names are unique case-insensitively.
func (d *Directory) CreateUser(name, description string) (*domain.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("user name cannot be empty: %w", ErrInvalidArgument)
	}
	for _, u := range d.users {
		if strings.EqualFold(u.Name, name) {
			return nil, fmt.Errorf("user with name %q already exists: %w", name, ErrDuplicateName)
		}
	}

	user := &domain.User{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
	}
	d.users[user.ID] = user
	d.userOrder = append(d.userOrder, user.ID)
	return user, nil
}

// GetUser returns a user by ID.
func (d *Directory) GetUser(userID string) (*domain.User, error) {
	user, ok := d.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return user, nil
}

// UserExists reports whether a user is registered.
func (d *Directory) UserExists(userID string) bool {
	_, ok := d.users[userID]
	return ok
}

// ListUsers returns all users in creation order.
func (d *Directory) ListUsers() []*domain.User {
	users := make([]*domain.User, 0, len(d.userOrder))
	for _, id := range d.userOrder {
		if u, ok := d.users[id]; ok {
			users = append(users, u)
		}
	}
	return users
}

// RemoveUser deletes a user record. Removing an unknown user is a no-op;
// the Coordinator handles membership cleanup before calling this.
func (d *Directory) RemoveUser(userID string) {
	if _, ok := d.users[userID]; !ok {
		return
	}
	delete(d.users, userID)
	for i, id := range d.userOrder {
		if id == userID {
			d.userOrder = append(d.userOrder[:i], d.userOrder[i+1:]...)
			break
		}
	}
}

// CreateRoom registers a new room. Names must be non-empty after trimming
// and unique case-insensitively.
func (d *Directory) CreateRoom(name string) (*domain.Room, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("room name cannot be empty: %w", ErrInvalidArgument)
	}
	for _, r := range d.rooms {
		if strings.EqualFold(r.Name, name) {
			return nil, fmt.Errorf("room with name %q already exists: %w", name, ErrDuplicateName)
		}
	}

	room := &domain.Room{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	d.rooms[room.ID] = room
	d.roomOrder = append(d.roomOrder, room.ID)
	return room, nil
}

// GetRoom returns a room by ID.
func (d *Directory) GetRoom(roomID string) (*domain.Room, error) {
	room, ok := d.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	return room, nil
}

// RoomExists reports whether a room is registered.
func (d *Directory) RoomExists(roomID string) bool {
	_, ok := d.rooms[roomID]
	return ok
}

// ListRooms returns all rooms in creation order.
func (d *Directory) ListRooms() []*domain.Room {
	rooms := make([]*domain.Room, 0, len(d.roomOrder))
	for _, id := range d.roomOrder {
		if r, ok := d.rooms[id]; ok {
			rooms = append(rooms, r)
		}
	}
	return rooms
}

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/example/chatroom-server/domain/chat"
)

// defaultHistoryLimit is the number of messages kept per room when no
// explicit capacity is configured.
const defaultHistoryLimit = 100

// MessageLog keeps a bounded append-only message sequence per room.
// Insertion order is authoritative; CreatedAt is informational.
type MessageLog struct {
	messages   map[string][]domain.Message // roomID -> messages, oldest first
	maxHistory int
}

// NewMessageLog creates a message log keeping at most maxHistory messages
// per room.
func NewMessageLog(maxHistory int) *MessageLog {
	if maxHistory <= 0 {
		maxHistory = defaultHistoryLimit
	}
	return &MessageLog{
		messages:   make(map[string][]domain.Message),
		maxHistory: maxHistory,
	}
}

// Append stores a new message for a room and returns it. Room existence
// is the caller's responsibility.
func (l *MessageLog) Append(roomID, userID, userName, content string) (domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Message{}, fmt.Errorf("message content cannot be empty: %w", ErrInvalidArgument)
	}

	msg := domain.Message{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		UserID:    userID,
		UserName:  userName,
		Content:   content,
		CreatedAt: time.Now(),
	}

	log := append(l.messages[roomID], msg)
	if len(log) > l.maxHistory {
		log = log[len(log)-l.maxHistory:]
	}
	l.messages[roomID] = log
	return msg, nil
}

// Tail returns up to limit most-recent messages in chronological order.
// limit <= 0 returns everything the log still holds.
func (l *MessageLog) Tail(roomID string, limit int) []domain.Message {
	log := l.messages[roomID]
	if limit <= 0 || limit > len(log) {
		limit = len(log)
	}

	result := make([]domain.Message, limit)
	copy(result, log[len(log)-limit:])
	return result
}

package chat

import (
	"errors"
	"fmt"
	"testing"
)

func TestMessageLog_Append(t *testing.T) {
	l := NewMessageLog(100)

	msg, err := l.Append("room1", "user1", "Alice", "hello")
	if err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}
	if msg.ID == "" {
		t.Error("Append() message.ID should not be empty")
	}
	if msg.UserName != "Alice" || msg.Content != "hello" {
		t.Errorf("Append() message = %+v", msg)
	}
	if msg.CreatedAt.IsZero() {
		t.Error("Append() message.CreatedAt should not be zero")
	}
}

func TestMessageLog_AppendEmptyContent(t *testing.T) {
	l := NewMessageLog(100)

	for _, content := range []string{"", "   ", "\t\n"} {
		if _, err := l.Append("room1", "user1", "Alice", content); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Append(%q) error = %v, want ErrInvalidArgument", content, err)
		}
	}
}

func TestMessageLog_TailOrderAndLimit(t *testing.T) {
	l := NewMessageLog(100)

	const n = 10
	for i := 0; i < n; i++ {
		if _, err := l.Append("room1", "user1", "Alice", fmt.Sprintf("msg-%d", i)); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}

	tests := []struct {
		name      string
		limit     int
		wantCount int
		wantFirst string
	}{
		{"all with zero limit", 0, n, "msg-0"},
		{"all with negative limit", -1, n, "msg-0"},
		{"last three", 3, 3, "msg-7"},
		{"limit larger than log", 50, n, "msg-0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tail := l.Tail("room1", tt.limit)
			if len(tail) != tt.wantCount {
				t.Fatalf("Tail() count = %d, want %d", len(tail), tt.wantCount)
			}
			if tail[0].Content != tt.wantFirst {
				t.Errorf("Tail()[0].Content = %q, want %q", tail[0].Content, tt.wantFirst)
			}
			// Chronological order throughout
			for i := 1; i < len(tail); i++ {
				if tail[i-1].Content >= tail[i].Content {
					t.Errorf("Tail() out of order at %d: %q then %q", i, tail[i-1].Content, tail[i].Content)
				}
			}
		})
	}
}

func TestMessageLog_BoundedHistory(t *testing.T) {
	l := NewMessageLog(5)

	for i := 0; i < 12; i++ {
		if _, err := l.Append("room1", "user1", "Alice", fmt.Sprintf("msg-%02d", i)); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}

	tail := l.Tail("room1", 0)
	if len(tail) != 5 {
		t.Fatalf("Tail() count = %d, want 5 (ring capacity)", len(tail))
	}
	if tail[0].Content != "msg-07" || tail[4].Content != "msg-11" {
		t.Errorf("Tail() = [%s .. %s], want [msg-07 .. msg-11]", tail[0].Content, tail[4].Content)
	}
}

func TestMessageLog_TailDoesNotMutate(t *testing.T) {
	l := NewMessageLog(100)
	_, _ = l.Append("room1", "user1", "Alice", "original")

	tail := l.Tail("room1", 0)
	tail[0].Content = "mutated"

	again := l.Tail("room1", 0)
	if again[0].Content != "original" {
		t.Errorf("Tail() returned a view into the log; content = %q", again[0].Content)
	}
}

func TestMessageLog_EmptyRoom(t *testing.T) {
	l := NewMessageLog(100)
	if tail := l.Tail("room1", 10); len(tail) != 0 {
		t.Errorf("Tail() of empty room count = %d, want 0", len(tail))
	}
}

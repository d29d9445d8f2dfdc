package telegram

import (
	"slices"
	"strconv"
	"sync"
)

// ChatTracker remembers the chats that have talked to the bot, in the order
// they were first seen. It implements heartbeat.ChatSource.
type ChatTracker struct {
	allowed []string

	mu    sync.Mutex
	order []string
}

// NewChatTracker creates a tracker. A non-empty allowed list restricts which
// chats are tracked.
func NewChatTracker(allowed []string) *ChatTracker {
	return &ChatTracker{allowed: slices.Clone(allowed)}
}

// Allowed reports whether chatID may use the bot.
func (t *ChatTracker) Allowed(chatID int64) bool {
	if len(t.allowed) == 0 {
		return true
	}
	return slices.Contains(t.allowed, strconv.FormatInt(chatID, 10))
}

// Track records chatID and reports whether it is allowed.
func (t *ChatTracker) Track(chatID int64) bool {
	if !t.Allowed(chatID) {
		return false
	}

	id := strconv.FormatInt(chatID, 10)

	t.mu.Lock()
	defer t.mu.Unlock()
	if !slices.Contains(t.order, id) {
		t.order = append(t.order, id)
	}
	return true
}

// ActiveChats returns the tracked chat ids.
func (t *ChatTracker) ActiveChats() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.order)
}

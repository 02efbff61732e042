package services

import (
	"sync"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// ConversationMemory holds the most recent turns of a conversation, oldest
// first. When full, appending evicts the oldest turns.
type ConversationMemory struct {
	mu       sync.RWMutex
	capacity int
	turns    []domain.Turn
}

// NewConversationMemory creates a memory holding at most capacity turns.
// A non-positive capacity uses the default history length.
func NewConversationMemory(capacity int) *ConversationMemory {
	if capacity <= 0 {
		capacity = domain.DefaultHistoryLength
	}
	return &ConversationMemory{capacity: capacity}
}

// Capacity returns the maximum number of turns kept.
func (m *ConversationMemory) Capacity() int {
	return m.capacity
}

// Append adds turns in order, evicting the oldest beyond capacity.
func (m *ConversationMemory) Append(turns ...domain.Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turns...)
	if over := len(m.turns) - m.capacity; over > 0 {
		m.turns = append([]domain.Turn(nil), m.turns[over:]...)
	}
}

// Restore replaces the held turns, keeping the most recent ones.
func (m *ConversationMemory) Restore(turns []domain.Turn) {
	m.mu.Lock()
	m.turns = nil
	m.mu.Unlock()
	m.Append(turns...)
}

// Recent returns up to n of the newest turns, oldest first.
func (m *ConversationMemory) Recent(n int) []domain.Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	from := max(len(m.turns)-n, 0)
	return append([]domain.Turn(nil), m.turns[from:]...)
}

// Turns returns every held turn, oldest first.
func (m *ConversationMemory) Turns() []domain.Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Turn(nil), m.turns...)
}

// Len returns the number of held turns.
func (m *ConversationMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.turns)
}

// Clear drops every turn.
func (m *ConversationMemory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
}

// Stats counts the held turns by role.
func (m *ConversationMemory) Stats() domain.ConversationStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return statsOf(m.turns)
}

func statsOf(turns []domain.Turn) domain.ConversationStats {
	stats := domain.ConversationStats{TotalMessages: len(turns)}
	for _, t := range turns {
		switch t.Role {
		case domain.RoleUser:
			stats.UserMessages++
		case domain.RoleAssistant:
			stats.AssistantMessages++
		}
	}
	return stats
}

package models

import "strings"

// Turn is a single message in the intake conversation.
type Turn struct {
	Role    string `json:"role"` // "customer" or "assistant"
	Content string `json:"content"`
}

// ConversationState carries everything the pipeline needs between turns.
// The last confirmed draft travels alongside the display transcript rather
// than being re-parsed out of rendered text.
type ConversationState struct {
	SessionID string `json:"session_id"`
	History   []Turn `json:"history"`

	// DefaultAddress is the customer's profile address, injected into the
	// extraction prompt so phrases like "my shop" resolve to a concrete
	// address before validation ever runs.
	DefaultAddress string `json:"default_address,omitempty"`

	// LastConfirmed holds the draft from the previous turn; used to fill
	// gaps when a clarification round re-extracts a single field.
	LastConfirmed *DraftJob `json:"last_confirmed,omitempty"`
}

// Transcript renders the history as plain text for prompt inclusion.
func (s ConversationState) Transcript() string {
	var b strings.Builder
	for _, t := range s.History {
		b.WriteString(t.Role)
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// Append adds a turn to the history.
func (s *ConversationState) Append(role, content string) {
	s.History = append(s.History, Turn{Role: role, Content: content})
}

package domain

import "time"

// ChatID identifies a user on the chat side. It is the only key the bot
// ever uses to address a conversation.
type ChatID int64

// Step is a state of the registration dialog.
type Step string

const (
	StepIdle             Step = "idle"
	StepAwaitingUsername Step = "awaiting_username"
	StepAwaitingPassword Step = "awaiting_password"
)

// Scratch field names collected during a dialog.
const (
	ScratchUsername = "username"
)

// ConversationState is the persistent FSM record of a single user.
// A user has at most one; an absent record is equivalent to NewConversationState.
type ConversationState struct {
	ChatID      ChatID            `json:"chat_id"`
	CurrentStep Step              `json:"current_step"`
	Scratch     map[string]string `json:"scratch,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewConversationState returns the Idle default for a user.
func NewConversationState(chatID ChatID) ConversationState {
	return ConversationState{
		ChatID:      chatID,
		CurrentStep: StepIdle,
		Scratch:     map[string]string{},
	}
}

// With returns a copy advanced to the given step, with the scratch entry set.
// The original map is never shared: every Set is a full-state overwrite.
func (s ConversationState) With(step Step, key, value string) ConversationState {
	scratch := make(map[string]string, len(s.Scratch)+1)
	for k, v := range s.Scratch {
		scratch[k] = v
	}
	if key != "" {
		scratch[key] = value
	}
	return ConversationState{
		ChatID:      s.ChatID,
		CurrentStep: step,
		Scratch:     scratch,
	}
}

func (s ConversationState) IsIdle() bool {
	return s.CurrentStep == StepIdle || s.CurrentStep == ""
}

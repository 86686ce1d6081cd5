package domain

// Command is an inbound user event routed to the conversation engine.
// Every command carries the chat identity used for sharding and state lookup.
type Command interface {
	Chat() ChatID
}

// GreetCommand corresponds to the /start entry point.
type GreetCommand struct {
	ChatID    ChatID
	FirstName string
}

func (c GreetCommand) Chat() ChatID { return c.ChatID }

// StartRegistrationCommand begins the username/password dialog.
type StartRegistrationCommand struct {
	ChatID ChatID
}

func (c StartRegistrationCommand) Chat() ChatID { return c.ChatID }

// TextCommand is free text, interpreted against the current step.
type TextCommand struct {
	ChatID ChatID
	Text   string
}

func (c TextCommand) Chat() ChatID { return c.ChatID }

// CancelCommand aborts any dialog in progress. Idempotent from Idle.
type CancelCommand struct {
	ChatID ChatID
}

func (c CancelCommand) Chat() ChatID { return c.ChatID }

// ShowTasksCommand is a stateless read: it never consults the FSM.
type ShowTasksCommand struct {
	ChatID ChatID
	Filter TaskFilter
}

func (c ShowTasksCommand) Chat() ChatID { return c.ChatID }

//go:generate go run go.uber.org/mock/mockgen -source=engine.go -destination=../mocks/mock_engine.go -package=mocks
package engine

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"task-bot/domain"
	"task-bot/gateway"
	"task-bot/repositories"
	"task-bot/telegram"
)

// Reply texts. Prompts carry no keyboard, terminal replies re-attach the menu.
const (
	msgAskUsername    = "Enter your <b>username</b>:"
	msgAskPassword    = "Now enter your <b>password</b>:"
	msgCancelled      = "Action cancelled."
	msgIdleHint       = "Use the menu below to register or list your tasks."
	msgStoreDown      = "⚠️ Temporary problem on our side, your last action was not applied. Please try again."
	msgRegisterFailed = "❌ Registration failed. The username may already be taken."
	msgBackendDown    = "⚠️ The task service is unavailable right now. Try again later."
)

// IEngine interprets inbound commands against persistent conversation state.
type IEngine interface {
	Handle(ctx context.Context, cmd domain.Command)
}

// Engine is the registration state machine plus the stateless read commands.
// All collaborators are injected; the engine owns no goroutines and no
// process-wide state, so one instance serves every user.
type Engine struct {
	sessions  repositories.ISessionRepository
	backend   gateway.IBackendGateway
	transport telegram.ITransport
	log       *slog.Logger
}

func NewEngine(
	sessions repositories.ISessionRepository,
	backend gateway.IBackendGateway,
	transport telegram.ITransport,
	log *slog.Logger,
) *Engine {
	return &Engine{sessions: sessions, backend: backend, transport: transport, log: log}
}

// Handle processes one command to completion. Failures are terminal for the
// current attempt and always answered with a user-visible reply; Handle itself
// never returns an error because there is nobody upstream to retry.
func (e *Engine) Handle(ctx context.Context, cmd domain.Command) {
	switch c := cmd.(type) {
	case domain.GreetCommand:
		e.greet(ctx, c)
	case domain.StartRegistrationCommand:
		e.startRegistration(ctx, c)
	case domain.TextCommand:
		e.handleText(ctx, c)
	case domain.CancelCommand:
		e.cancel(ctx, c)
	case domain.ShowTasksCommand:
		e.showTasks(ctx, c)
	default:
		e.log.Warn("unroutable command", "type", fmt.Sprintf("%T", cmd))
	}
}

func (e *Engine) greet(ctx context.Context, cmd domain.GreetCommand) {
	name := cmd.FirstName
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("Hi, %s! I keep your todo list. Pick an action below.", html.EscapeString(name))
	e.replyWithMenu(ctx, cmd.ChatID, text)
}

// startRegistration is the Idle → AwaitingUsername transition. Any scratch
// left over from an abandoned dialog is dropped before the new one begins.
func (e *Engine) startRegistration(ctx context.Context, cmd domain.StartRegistrationCommand) {
	state := domain.NewConversationState(cmd.ChatID).
		With(domain.StepAwaitingUsername, "", "")

	if err := e.sessions.Set(ctx, state); err != nil {
		e.storeFailure(ctx, cmd.ChatID, err)
		return
	}
	e.reply(ctx, cmd.ChatID, msgAskUsername)
}

func (e *Engine) handleText(ctx context.Context, cmd domain.TextCommand) {
	state, err := e.sessions.Get(ctx, cmd.ChatID)
	if err != nil {
		e.storeFailure(ctx, cmd.ChatID, err)
		return
	}

	switch state.CurrentStep {
	case domain.StepAwaitingUsername:
		// Accepted as-is, even empty: username policy belongs to the backend.
		next := state.With(domain.StepAwaitingPassword, domain.ScratchUsername, cmd.Text)
		if err := e.sessions.Set(ctx, next); err != nil {
			e.storeFailure(ctx, cmd.ChatID, err)
			return
		}
		e.reply(ctx, cmd.ChatID, msgAskPassword)

	case domain.StepAwaitingPassword:
		e.completeRegistration(ctx, state, cmd.Text)

	default:
		e.replyWithMenu(ctx, cmd.ChatID, msgIdleHint)
	}
}

// completeRegistration is the AwaitingPassword → Idle transition. Whatever the
// backend answers, the machine ends Idle: a failed registration restarts from
// the beginning, it never resumes mid-flow.
func (e *Engine) completeRegistration(ctx context.Context, state domain.ConversationState, password string) {
	username := state.Scratch[domain.ScratchUsername]

	_, err := e.backend.CreateUserFromChat(ctx, username, password, state.ChatID)
	if err != nil {
		e.log.Warn("registration rejected by backend", "chat_id", state.ChatID, "err", err)
		if clearErr := e.sessions.Clear(ctx, state.ChatID); clearErr != nil {
			e.log.Error("failed to reset state after registration failure", "chat_id", state.ChatID, "err", clearErr)
		}
		e.replyWithMenu(ctx, state.ChatID, msgRegisterFailed)
		return
	}

	if err := e.sessions.Clear(ctx, state.ChatID); err != nil {
		e.storeFailure(ctx, state.ChatID, err)
		return
	}

	text := fmt.Sprintf("✅ Done! Your login: <b>%s</b>", html.EscapeString(username))
	e.replyWithMenu(ctx, state.ChatID, text)
}

// cancel clears unconditionally, from any state. Cancelling while Idle is a
// no-op that still confirms, so the user always gets the same answer.
func (e *Engine) cancel(ctx context.Context, cmd domain.CancelCommand) {
	if err := e.sessions.Clear(ctx, cmd.ChatID); err != nil {
		e.storeFailure(ctx, cmd.ChatID, err)
		return
	}
	e.replyWithMenu(ctx, cmd.ChatID, msgCancelled)
}

// showTasks is stateless: it never reads or writes ConversationState, so a
// listing requested mid-registration leaves the dialog exactly where it was.
func (e *Engine) showTasks(ctx context.Context, cmd domain.ShowTasksCommand) {
	tasks, err := e.backend.ListTasks(ctx, cmd.ChatID, cmd.Filter)
	if err != nil {
		e.log.Warn("task listing failed", "chat_id", cmd.ChatID, "filter", cmd.Filter, "err", err)
		e.replyWithMenu(ctx, cmd.ChatID, msgBackendDown)
		return
	}
	e.replyWithMenu(ctx, cmd.ChatID, telegram.RenderTaskList(cmd.Filter, tasks))
}

func (e *Engine) storeFailure(ctx context.Context, chatID domain.ChatID, err error) {
	e.log.Error("session store failure", "chat_id", chatID, "err", err)
	e.reply(ctx, chatID, msgStoreDown)
}

func (e *Engine) reply(ctx context.Context, chatID domain.ChatID, text string) {
	e.send(ctx, telegram.OutboundMessage{ChatID: chatID, Text: text, ParseMode: telegram.ParseModeHTML})
}

func (e *Engine) replyWithMenu(ctx context.Context, chatID domain.ChatID, text string) {
	e.send(ctx, telegram.OutboundMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: telegram.ParseModeHTML,
		Keyboard:  telegram.MainKeyboard(),
	})
}

// send is best-effort: a lost reply never rolls anything back.
func (e *Engine) send(ctx context.Context, msg telegram.OutboundMessage) {
	if err := e.transport.Send(ctx, msg); err != nil {
		e.log.Warn("reply delivery failed", "chat_id", msg.ChatID, "err", err)
	}
}

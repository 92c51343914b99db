package handlers

import (
	"context"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/bot/keyboard"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/conversation"
)

// ExpenseHandlers glues the transport to the conversation flow: it converts
// updates into flow inputs and renders the returned replies.
type ExpenseHandlers struct {
	flow *conversation.Flow
	log  *slog.Logger
}

func NewExpenseHandlers(flow *conversation.Flow, log *slog.Logger) *ExpenseHandlers {
	if log == nil {
		log = slog.Default()
	}

	return &ExpenseHandlers{flow: flow, log: log}
}

// Start opens a new entry session, from the menu button or a reminder button.
func (h *ExpenseHandlers) Start(c tele.Context) error {
	u, ok := CurrentUser(c)
	if !ok {
		return nil
	}

	reply, err := h.flow.Start(context.Background(), u)

	return renderResult(c, reply, err)
}

// Text forwards a free-form message to whichever step the session is on.
func (h *ExpenseHandlers) Text(c tele.Context) error {
	u, ok := CurrentUser(c)
	if !ok {
		return nil
	}

	reply, err := h.flow.HandleInput(context.Background(), u, conversation.TextInput{Text: c.Text()})

	return renderResult(c, reply, err)
}

// Callback forwards category and confirmation button presses.
func (h *ExpenseHandlers) Callback(c tele.Context) error {
	u, ok := CurrentUser(c)
	if !ok {
		return nil
	}

	reply, err := h.flow.HandleInput(context.Background(), u, conversation.CallbackInput{Data: CallbackData(c)})

	return renderResult(c, reply, err)
}

// renderResult sends the flow's reply. Flow errors already went through the
// central error handler and carry their user message in the reply, so they
// are not propagated to the error middleware a second time.
func renderResult(c tele.Context, reply conversation.Reply, err error) error {
	if err != nil && reply.Text == "" {
		return err
	}

	return SendReply(c, reply)
}

// CallbackData returns the callback payload normalized to its unique name:
// inline buttons arrive as "\funique|payload".
func CallbackData(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}

	data := strings.TrimPrefix(cb.Data, "\f")
	if unique, _, found := strings.Cut(data, "|"); found {
		return unique
	}

	return data
}

// SendReply renders a flow reply with its keyboard.
func SendReply(c tele.Context, reply conversation.Reply) error {
	opts := []any{tele.ModeHTML}

	switch reply.Keyboard {
	case conversation.KeyboardMainMenu:
		opts = append(opts, keyboard.MainMenu())
	case conversation.KeyboardCategories:
		opts = append(opts, keyboard.Categories())
	case conversation.KeyboardConfirmation:
		opts = append(opts, keyboard.Confirmation())
	case conversation.KeyboardCompleted:
		opts = append(opts, keyboard.Completed())
	}

	return c.Send(reply.Text, opts...)
}

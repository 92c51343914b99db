package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/domain"
	apperrors "github.com/kutkeldi-dev/telegram-financial-bot/internal/errors"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/state"
)

// Callback payloads understood by the confirmation step.
const (
	CallbackConfirmYes = "confirm_yes"
	CallbackConfirmNo  = "confirm_no"
)

// Committer persists a finished draft. The flow never touches storage
// directly; a commit failure keeps the session alive so the operator can
// retry the confirmation.
type Committer interface {
	Commit(ctx context.Context, user *domain.User, draft *domain.ExpenseDraft) error
	CommitZero(ctx context.Context, user *domain.User) error
}

// Flow drives one operator through the expense-entry conversation. It is
// transport-free: inputs come in as Input values and every step returns a
// Reply for the bot layer to render.
type Flow struct {
	fsm       state.StateMachine
	committer Committer
	errs      *apperrors.Handler
	log       *slog.Logger
	now       func() time.Time
	loc       *time.Location
}

func NewFlow(fsm state.StateMachine, committer Committer, errs *apperrors.Handler, log *slog.Logger, loc *time.Location) *Flow {
	if log == nil {
		log = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}

	return &Flow{
		fsm:       fsm,
		committer: committer,
		errs:      errs,
		log:       log,
		now:       time.Now,
		loc:       loc,
	}
}

func (f *Flow) today() time.Time {
	return domain.Day(f.now().In(f.loc))
}

// Start opens a new entry session, replacing any session left over from a
// previous, unfinished attempt.
func (f *Flow) Start(ctx context.Context, user *domain.User) (Reply, error) {
	if err := f.fsm.ClearState(ctx, user.ID); err != nil {
		msg, _ := f.errs.Handle(ctx, apperrors.NewStateError(fmt.Sprintf("start: clear state for user %d: %v", user.ID, err)))
		return Reply{Text: msg}, err
	}
	if err := f.fsm.SetState(ctx, user.ID, state.StateAwaitingAmount, nil); err != nil {
		msg, _ := f.errs.Handle(ctx, apperrors.NewStateError(fmt.Sprintf("start: enter awaiting_amount for user %d: %v", user.ID, err)))
		return Reply{Text: msg}, err
	}

	return Reply{
		Text: fmt.Sprintf(txtAskAmount, FormatDay(f.today())),
	}, nil
}

// Cancel abandons the current session and its draft.
func (f *Flow) Cancel(ctx context.Context, user *domain.User) (Reply, error) {
	if err := f.fsm.ClearState(ctx, user.ID); err != nil {
		msg, _ := f.errs.Handle(ctx, apperrors.NewStateError(fmt.Sprintf("cancel: clear state for user %d: %v", user.ID, err)))
		return Reply{Text: msg}, err
	}

	return Reply{Text: txtCancelled, Keyboard: KeyboardMainMenu}, nil
}

// HandleInput routes an input to the handler for the user's current state.
// Inputs of the wrong shape for a state re-prompt instead of advancing.
func (f *Flow) HandleInput(ctx context.Context, user *domain.User, in Input) (Reply, error) {
	current, draft := f.currentState(ctx, user.ID)

	switch current {
	case state.StateAwaitingAmount:
		text, ok := in.(TextInput)
		if !ok {
			return Reply{Text: txtErrAmountFormat}, nil
		}
		return f.handleAmount(ctx, user, text.Text)

	case state.StateAwaitingCategory:
		cb, ok := in.(CallbackInput)
		if !ok {
			return Reply{Text: fmt.Sprintf(txtChooseCategory, FormatAmount(draft.Amount)), Keyboard: KeyboardCategories}, nil
		}
		return f.handleCategory(ctx, user, draft, cb.Data)

	case state.StateAwaitingPurpose:
		text, ok := in.(TextInput)
		if !ok {
			return Reply{Text: txtErrPurposeEmpty}, nil
		}
		return f.handlePurpose(ctx, user, draft, text.Text)

	case state.StateAwaitingConfirmation:
		cb, ok := in.(CallbackInput)
		if !ok {
			return Reply{Text: confirmText(draft, f.today()), Keyboard: KeyboardConfirmation}, nil
		}
		return f.handleConfirmation(ctx, user, draft, cb.Data)

	default:
		return Reply{Text: txtIdleHint, Keyboard: KeyboardMainMenu}, nil
	}
}

// currentState resolves the user's session, treating a missing record as an
// idle session with no draft.
func (f *Flow) currentState(ctx context.Context, userID int64) (state.State, *domain.ExpenseDraft) {
	us, err := f.fsm.GetState(ctx, userID)
	if err != nil || us == nil {
		return state.StateIdle, nil
	}
	if us.Draft == nil {
		return us.CurrentState, &domain.ExpenseDraft{}
	}

	return us.CurrentState, us.Draft
}

func (f *Flow) handleAmount(ctx context.Context, user *domain.User, raw string) (Reply, error) {
	amount, err := ParseAmount(raw)
	if err != nil {
		msg, _ := f.errs.Handle(ctx, err)
		return Reply{Text: msg}, nil
	}

	// Zero means "no expenses today": commit immediately, no category or
	// purpose steps.
	if amount.IsZero() {
		if err := f.committer.CommitZero(ctx, user); err != nil {
			msg, _ := f.errs.Handle(ctx, err)
			return Reply{Text: msg}, err
		}
		if err := f.fsm.ClearState(ctx, user.ID); err != nil {
			f.log.Error("failed to clear session after zero report", "user_id", user.ID, "error", err)
		}

		return Reply{
			Text:      fmt.Sprintf(txtZeroSaved, FormatDay(f.today())),
			Keyboard:  KeyboardCompleted,
			Completed: true,
		}, nil
	}

	draft := &domain.ExpenseDraft{Amount: amount}
	if err := f.fsm.SetState(ctx, user.ID, state.StateAwaitingCategory, draft); err != nil {
		msg, _ := f.errs.Handle(ctx, apperrors.NewStateError(fmt.Sprintf("enter awaiting_category for user %d: %v", user.ID, err)))
		return Reply{Text: msg}, err
	}

	return Reply{
		Text:     fmt.Sprintf(txtChooseCategory, FormatAmount(amount)),
		Keyboard: KeyboardCategories,
	}, nil
}

func (f *Flow) handleCategory(ctx context.Context, user *domain.User, draft *domain.ExpenseDraft, token string) (Reply, error) {
	name, ok := domain.CategoryByToken(token)
	if !ok {
		return Reply{
			Text:     fmt.Sprintf(txtChooseCategory, FormatAmount(draft.Amount)),
			Keyboard: KeyboardCategories,
		}, nil
	}

	draft.Category = name
	if err := f.fsm.SetState(ctx, user.ID, state.StateAwaitingPurpose, draft); err != nil {
		msg, _ := f.errs.Handle(ctx, apperrors.NewStateError(fmt.Sprintf("enter awaiting_purpose for user %d: %v", user.ID, err)))
		return Reply{Text: msg}, err
	}

	return Reply{
		Text: fmt.Sprintf(txtAskPurpose, FormatAmount(draft.Amount), draft.Category),
	}, nil
}

func (f *Flow) handlePurpose(ctx context.Context, user *domain.User, draft *domain.ExpenseDraft, raw string) (Reply, error) {
	purpose, err := ValidatePurpose(raw)
	if err != nil {
		msg, _ := f.errs.Handle(ctx, err)
		return Reply{Text: msg}, nil
	}

	draft.Purpose = purpose
	if err := f.fsm.SetState(ctx, user.ID, state.StateAwaitingConfirmation, draft); err != nil {
		msg, _ := f.errs.Handle(ctx, apperrors.NewStateError(fmt.Sprintf("enter awaiting_confirmation for user %d: %v", user.ID, err)))
		return Reply{Text: msg}, err
	}

	return Reply{
		Text:     confirmText(draft, f.today()),
		Keyboard: KeyboardConfirmation,
	}, nil
}

func (f *Flow) handleConfirmation(ctx context.Context, user *domain.User, draft *domain.ExpenseDraft, data string) (Reply, error) {
	switch data {
	case CallbackConfirmNo:
		return f.Cancel(ctx, user)

	case CallbackConfirmYes:
		if err := f.committer.Commit(ctx, user, draft); err != nil {
			// The draft survives so the operator can press "Да" again.
			msg, _ := f.errs.Handle(ctx, err)
			return Reply{Text: msg}, err
		}
		if err := f.fsm.ClearState(ctx, user.ID); err != nil {
			f.log.Error("failed to clear session after commit", "user_id", user.ID, "error", err)
		}

		return Reply{
			Text:      fmt.Sprintf(txtSaved, FormatAmount(draft.Amount), draft.Category, draft.Purpose),
			Keyboard:  KeyboardCompleted,
			Completed: true,
		}, nil

	default:
		return Reply{
			Text:     confirmText(draft, f.today()),
			Keyboard: KeyboardConfirmation,
		}, nil
	}
}

package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/akhromov/domobot/core/logger"
	"github.com/akhromov/domobot/core/telegram/format"
	"github.com/akhromov/domobot/internal/domopult"
	"github.com/akhromov/domobot/internal/session"
)

// Upstream is the tenant API surface the engine depends on.
type Upstream interface {
	RequestSMSCode(ctx context.Context, phone string) error
	LoginByCode(ctx context.Context, phone, code string) (string, error)
	LoginByPassword(ctx context.Context, email, password string) (string, error)
	ConfigurationItems(ctx context.Context, token string) (*domopult.ConfigurationItems, error)
	PaymentsDetail(ctx context.Context, token, accountID string) (*domopult.PaymentsPage, error)
	Meters(ctx context.Context, token string, configItemID int64) ([]domopult.MeterEntry, error)
	SubmitMeterValue(ctx context.Context, token string, meterID int64, value string) error
	ReceiptPDF(ctx context.Context, token, accountID, date string) ([]byte, error)
}

// Credentials persists auth tokens and resolved account ids per user.
type Credentials interface {
	Save(ctx context.Context, userID int64, token string) error
	Token(ctx context.Context, userID int64) (string, bool, error)
	Delete(ctx context.Context, userID int64) error
	SetAccountID(ctx context.Context, userID int64, accountID string) error
	AccountID(ctx context.Context, userID int64) (string, bool, error)
}

// Engine drives the conversation state machines over the session store.
type Engine struct {
	sessions *session.Store
	upstream Upstream
	creds    Credentials
}

// NewEngine wires the engine to its collaborators.
func NewEngine(sessions *session.Store, upstream Upstream, creds Credentials) *Engine {
	return &Engine{sessions: sessions, upstream: upstream, creds: creds}
}

// InProgress reports whether the user is inside a flow.
func (e *Engine) InProgress(userID int64) bool {
	return e.sessions.InProgress(userID)
}

// Handle runs one event through the user's session and returns the actions
// to execute. Events of the same user are strictly serialized by the session
// store; different users proceed independently.
func (e *Engine) Handle(ctx context.Context, ev Event) []Action {
	var actions []Action
	e.sessions.Do(ev.UserID, func(s *session.Session) {
		s.ChatID = ev.ChatID
		actions = e.dispatch(ctx, s, ev)
	})
	return actions
}

func (e *Engine) dispatch(ctx context.Context, s *session.Session, ev Event) []Action {
	if ev.IsButton() {
		return e.handleButton(ctx, s, ev)
	}
	switch ev.Text {
	case "/start":
		return e.start(ctx, s, ev, false)
	case "/cancel":
		return e.cancel(ctx, s, false)
	}
	return e.handleText(ctx, s, ev)
}

func (e *Engine) handleButton(ctx context.Context, s *session.Session, ev Event) []Action {
	switch ev.Button {
	case ButtonStart:
		return e.start(ctx, s, ev, true)
	case ButtonCancel:
		return e.cancel(ctx, s, true)
	case ButtonTopUp:
		return e.topUp(s)
	case ButtonDetailed:
		return e.detailedInfo(ctx, s)
	case ButtonReceipt:
		return e.startReceipt(ctx, s)
	case ButtonCounters:
		return e.startMeters(ctx, s)
	}
	if strings.HasPrefix(ev.Button, meterButtonPrefix) {
		return e.selectMeter(ctx, s, ev)
	}
	if s.Flow == session.FlowAuth && s.State == StateAuthChoosing {
		return e.chooseMethod(ctx, s, ev)
	}
	logger.Debug(ctx, "fsm", "button.ignored",
		slog.Int64("user_id", ev.UserID),
		slog.String("flow", string(s.Flow)),
		slog.String("state", s.State))
	return nil
}

func (e *Engine) handleText(ctx context.Context, s *session.Session, ev Event) []Action {
	switch s.State {
	case StateAuthChoosing:
		return actions(SendText{Text: msgUnknownMethod, Mode: ModeMarkdown})
	case StateAuthPhone:
		return e.authPhone(ctx, s, ev)
	case StateAuthSMSCode:
		return e.authSMSCode(ctx, s, ev)
	case StateAuthEmail:
		return e.authEmail(ctx, s, ev)
	case StateAuthPassword:
		return e.authPassword(ctx, s, ev)
	case StateReceiptYear:
		return e.receiptYear(ctx, s, ev)
	case StateReceiptMonth:
		return e.receiptMonth(ctx, s, ev)
	case StateMeterReading:
		return e.meterReading(ctx, s, ev)
	}
	// Idle or selection states ignore free text. No upstream call happens.
	return nil
}

// start shows the account summary for authenticated users and the login
// method chooser otherwise. Entering start always leaves any previous flow.
func (e *Engine) start(ctx context.Context, s *session.Session, ev Event, edit bool) []Action {
	s.Reset()
	token, ok, err := e.creds.Token(ctx, ev.UserID)
	if err != nil {
		logger.Error(ctx, "fsm", "credential.lookup_failed",
			slog.Int64("user_id", ev.UserID), slog.Any("err", err))
		return reply(edit, msgTransportFail, ModeHTML, nil)
	}
	if ok {
		return e.accountSummary(ctx, s, ev, token, edit)
	}
	e.enter(ctx, s, session.FlowAuth, StateAuthChoosing)
	name := ev.FirstName
	if escaped, eerr := format.EscapeMarkdown(name, format.MarkdownV1, ""); eerr == nil {
		name = escaped
	}
	return reply(edit, fmt.Sprintf(msgWelcome, name), ModeMarkdown, [][]Button{
		{{Label: msgLoginViaPhone, Data: ButtonPhone}},
		{{Label: msgLoginViaEmail, Data: ButtonEmail}},
	})
}

// cancel aborts whatever flow the user is in.
func (e *Engine) cancel(ctx context.Context, s *session.Session, edit bool) []Action {
	logger.Info(ctx, "fsm", "flow.cancelled",
		slog.Int64("user_id", s.UserID),
		slog.String("flow", string(s.Flow)),
		slog.String("state", s.State))
	s.Reset()
	return reply(edit, msgAuthCancelled, ModeMarkdown, nil)
}

// enter transitions the session into a flow state with a log trail.
func (e *Engine) enter(ctx context.Context, s *session.Session, flow session.Flow, state string) {
	logger.Debug(ctx, "fsm", "flow.enter",
		slog.Int64("user_id", s.UserID),
		slog.String("from_state", s.State),
		slog.String("flow", string(flow)),
		slog.String("to_state", state))
	s.Enter(flow, state)
}

// advance moves within the current flow keeping scratch data.
func (e *Engine) advance(ctx context.Context, s *session.Session, state string) {
	logger.Debug(ctx, "fsm", "flow.advance",
		slog.Int64("user_id", s.UserID),
		slog.String("flow", string(s.Flow)),
		slog.String("from_state", s.State),
		slog.String("to_state", state))
	s.State = state
}

// finish resets the session after a terminal transition.
func (e *Engine) finish(ctx context.Context, s *session.Session, outcome string) {
	logger.Info(ctx, "fsm", "flow.finished",
		slog.Int64("user_id", s.UserID),
		slog.String("flow", string(s.Flow)),
		slog.String("state", s.State),
		slog.String("outcome", outcome))
	s.Reset()
}

// upstreamFailure maps an upstream error to user-visible actions. A 401
// deletes the stored credential so the next start re-runs authentication;
// other non-2xx responses surface status and body via statusFormat;
// transport failures get the generic retry notice.
func (e *Engine) upstreamFailure(ctx context.Context, userID int64, err error, statusFormat string, edit bool) []Action {
	if domopult.IsUnauthorized(err) {
		if derr := e.creds.Delete(ctx, userID); derr != nil {
			logger.Error(ctx, "fsm", "credential.delete_failed",
				slog.Int64("user_id", userID), slog.Any("err", derr))
		}
		return reply(edit, msgTokenExpired, ModeMarkdown, nil)
	}
	if status := domopult.StatusOf(err); status != 0 {
		return reply(edit, fmt.Sprintf(statusFormat, status, domopult.BodyOf(err)), ModeHTML, nil)
	}
	return reply(edit, msgTransportFail, ModeHTML, nil)
}

func reply(edit bool, text string, mode ParseMode, buttons [][]Button) []Action {
	if edit {
		return actions(EditText{Text: text, Mode: mode, Buttons: buttons})
	}
	return actions(SendText{Text: text, Mode: mode, Buttons: buttons})
}

func actions(list ...Action) []Action {
	return list
}

func backKeyboard() [][]Button {
	return [][]Button{{{Label: msgBtnBack, Data: ButtonStart}}}
}

func cancelKeyboard() [][]Button {
	return [][]Button{{{Label: msgBtnCancel, Data: ButtonCancel}}}
}

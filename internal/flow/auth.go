package flow

import (
	"context"
	"log/slog"

	"github.com/akhromov/domobot/core/logger"
	"github.com/akhromov/domobot/internal/domopult"
	"github.com/akhromov/domobot/internal/session"
)

// chooseMethod reacts to the login method chooser buttons.
func (e *Engine) chooseMethod(ctx context.Context, s *session.Session, ev Event) []Action {
	switch ev.Button {
	case ButtonPhone:
		e.advance(ctx, s, StateAuthPhone)
		return actions(EditText{Text: msgPhonePrompt, Mode: ModeMarkdown})
	case ButtonEmail:
		e.advance(ctx, s, StateAuthEmail)
		return actions(EditText{Text: msgEmailPrompt, Mode: ModeMarkdown})
	}
	return actions(EditText{Text: msgUnknownMethod, Mode: ModeMarkdown})
}

// authPhone validates the phone number and requests an SMS code. The typed
// number is deleted from the chat once the code is on its way.
func (e *Engine) authPhone(ctx context.Context, s *session.Session, ev Event) []Action {
	phone := ev.Text
	if !validPhone(phone) {
		return actions(SendText{Text: msgPhoneInvalid, Mode: ModeMarkdown})
	}
	if err := e.upstream.RequestSMSCode(ctx, phone); err != nil {
		logger.Warn(ctx, "fsm", "auth.sms_request_failed",
			slog.Int64("user_id", ev.UserID), slog.Any("err", err))
		return actions(SendText{Text: msgSMSSendFail, Mode: ModeMarkdown})
	}
	s.PutString(scratchPhone, phone)
	e.advance(ctx, s, StateAuthSMSCode)
	return actions(
		DeleteMessage{MessageID: ev.MessageID},
		SendText{Text: msgSMSSent, Mode: ModeMarkdown, Buttons: cancelKeyboard()},
	)
}

// authSMSCode exchanges the code for a token. A rejected code sends the user
// back to the phone prompt; a transport failure keeps the state so the same
// code can be retried.
func (e *Engine) authSMSCode(ctx context.Context, s *session.Session, ev Event) []Action {
	phone, ok := s.GetString(scratchPhone)
	if !ok || phone == "" {
		e.finish(ctx, s, "error")
		return actions(SendText{Text: msgAuthRestart, Mode: ModeMarkdown})
	}
	token, err := e.upstream.LoginByCode(ctx, phone, ev.Text)
	if err != nil {
		logger.Warn(ctx, "fsm", "auth.code_rejected",
			slog.Int64("user_id", ev.UserID), slog.Any("err", err))
		if domopult.StatusOf(err) != 0 {
			e.advance(ctx, s, StateAuthPhone)
			return actions(SendText{Text: msgCodeRejected, Mode: ModeMarkdown})
		}
		return actions(SendText{Text: msgTransportFail, Mode: ModeHTML})
	}
	if token == "" {
		e.advance(ctx, s, StateAuthPhone)
		return actions(SendText{Text: msgTokenEmpty, Mode: ModeMarkdown})
	}
	return e.completeLogin(ctx, s, ev, token)
}

// authEmail stores the address and asks for the password. The address is
// deleted from the chat like every other sensitive message.
func (e *Engine) authEmail(ctx context.Context, s *session.Session, ev Event) []Action {
	if !validEmail(ev.Text) {
		return actions(SendText{Text: msgEmailCyrillic, Mode: ModeMarkdown})
	}
	s.PutString(scratchEmail, ev.Text)
	e.advance(ctx, s, StateAuthPassword)
	return actions(
		DeleteMessage{MessageID: ev.MessageID},
		SendText{Text: msgPasswordPrompt, Mode: ModeMarkdown, Buttons: cancelKeyboard()},
	)
}

// authPassword performs the personal-office login.
func (e *Engine) authPassword(ctx context.Context, s *session.Session, ev Event) []Action {
	email, ok := s.GetString(scratchEmail)
	if !ok || email == "" {
		e.advance(ctx, s, StateAuthChoosing)
		return actions(SendText{Text: msgAuthRetry, Mode: ModeMarkdown})
	}
	token, err := e.upstream.LoginByPassword(ctx, email, ev.Text)
	if err != nil {
		logger.Warn(ctx, "fsm", "auth.password_rejected",
			slog.Int64("user_id", ev.UserID), slog.Any("err", err))
		if domopult.StatusOf(err) != 0 {
			e.advance(ctx, s, StateAuthEmail)
			return actions(SendText{Text: msgEmailRejected, Mode: ModeMarkdown})
		}
		return actions(SendText{Text: msgTransportFail, Mode: ModeHTML})
	}
	if token == "" {
		e.advance(ctx, s, StateAuthEmail)
		return actions(SendText{Text: msgTokenEmpty, Mode: ModeMarkdown})
	}
	return e.completeLogin(ctx, s, ev, token)
}

// completeLogin persists the token exactly once, scrubs the credential
// message and renders the account summary.
func (e *Engine) completeLogin(ctx context.Context, s *session.Session, ev Event, token string) []Action {
	if err := e.creds.Save(ctx, ev.UserID, token); err != nil {
		logger.Error(ctx, "fsm", "credential.save_failed",
			slog.Int64("user_id", ev.UserID), slog.Any("err", err))
		e.finish(ctx, s, "error")
		return actions(SendText{Text: msgAuthRestart, Mode: ModeMarkdown})
	}
	logger.Info(ctx, "fsm", "auth.completed", slog.Int64("user_id", ev.UserID))
	e.finish(ctx, s, "ok")
	out := actions(DeleteMessage{MessageID: ev.MessageID})
	return append(out, e.accountSummary(ctx, s, ev, token, false)...)
}

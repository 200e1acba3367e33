package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akhromov/domobot/core/logger"
	"github.com/akhromov/domobot/internal/domopult"
	"github.com/akhromov/domobot/internal/session"
)

// startReceipt enters the receipt flow by asking for the billing year.
func (e *Engine) startReceipt(ctx context.Context, s *session.Session) []Action {
	e.enter(ctx, s, session.FlowReceipt, StateReceiptYear)
	return actions(SendText{Text: msgReceiptAskYear, Mode: ModeMarkdown})
}

func (e *Engine) receiptYear(ctx context.Context, s *session.Session, ev Event) []Action {
	if !validYear(ev.Text) {
		return actions(SendText{Text: msgReceiptBadYear, Mode: ModeMarkdown})
	}
	s.PutString(scratchYear, ev.Text)
	e.advance(ctx, s, StateReceiptMonth)
	return actions(SendText{Text: msgReceiptAskMonth, Mode: ModeMarkdown})
}

func (e *Engine) receiptMonth(ctx context.Context, s *session.Session, ev Event) []Action {
	if !validMonth(ev.Text) {
		return actions(SendText{Text: msgReceiptBadMonth, Mode: ModeMarkdown})
	}
	s.PutString(scratchMonth, ev.Text)
	return e.sendReceipt(ctx, s, ev)
}

// sendReceipt fetches the PDF for the chosen period. The flow ends after a
// single fetch regardless of the outcome; a new period means re-entering
// through the receipts button.
func (e *Engine) sendReceipt(ctx context.Context, s *session.Session, ev Event) []Action {
	year, _ := s.GetString(scratchYear)
	month, _ := s.GetString(scratchMonth)

	token, hasToken, err := e.creds.Token(ctx, ev.UserID)
	if err != nil || !hasToken {
		e.finish(ctx, s, "error")
		return actions(SendText{Text: msgAuthIncomplete, Mode: ModeMarkdown})
	}
	accountID, hasAccount, err := e.creds.AccountID(ctx, ev.UserID)
	if err != nil || !hasAccount {
		e.finish(ctx, s, "error")
		return actions(SendText{Text: msgAuthIncomplete, Mode: ModeMarkdown})
	}

	date := fmt.Sprintf("%s-%s-01", year, month)
	pdf, err := e.upstream.ReceiptPDF(ctx, token, accountID, date)
	if err != nil {
		logger.Warn(ctx, "fsm", "receipt.fetch_failed",
			slog.Int64("user_id", ev.UserID),
			slog.String("period", date),
			slog.Any("err", err))
		out := e.receiptFailure(ctx, ev.UserID, err)
		e.finish(ctx, s, "error")
		return out
	}
	logger.Info(ctx, "fsm", "receipt.sent",
		slog.Int64("user_id", ev.UserID),
		slog.String("period", date),
		slog.Int("count", len(pdf)))
	e.finish(ctx, s, "ok")
	return actions(SendFile{Name: date + ".pdf", Data: pdf})
}

// receiptFailure tells a 400 (no receipt for the period) apart from the
// generic upstream failure taxonomy.
func (e *Engine) receiptFailure(ctx context.Context, userID int64, err error) []Action {
	if domopult.StatusOf(err) == 400 {
		return actions(SendText{Text: msgReceiptUnavailable, Mode: ModeMarkdown})
	}
	return e.upstreamFailure(ctx, userID, err, msgReceiptFail, false)
}

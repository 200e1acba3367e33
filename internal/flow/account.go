package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/akhromov/domobot/core/logger"
	"github.com/akhromov/domobot/core/telegram/format"
	"github.com/akhromov/domobot/internal/domopult"
	"github.com/akhromov/domobot/internal/session"
)

// accountSummary resolves the personal account, caches the payments payload
// for the detailed view and renders the cabinet message with the main menu.
// A failed meter fetch degrades to a notice line instead of failing the
// whole summary.
func (e *Engine) accountSummary(ctx context.Context, s *session.Session, ev Event, token string, edit bool) []Action {
	items, err := e.upstream.ConfigurationItems(ctx, token)
	if err != nil {
		return e.upstreamFailure(ctx, ev.UserID, err, msgClientInfoFail, edit)
	}
	if len(items.Items) == 0 {
		return reply(edit, msgNoClientData, ModeMarkdown, nil)
	}
	first := items.Items[0]
	if first.PersonalAccount == nil || first.PersonalAccount.ID == 0 {
		return reply(edit, msgNoAccountID, ModeMarkdown, nil)
	}
	accountID := strconv.FormatInt(first.PersonalAccount.ID, 10)
	if err := e.creds.SetAccountID(ctx, ev.UserID, accountID); err != nil {
		logger.Error(ctx, "fsm", "credential.account_store_failed",
			slog.Int64("user_id", ev.UserID), slog.Any("err", err))
	}

	page, err := e.upstream.PaymentsDetail(ctx, token, accountID)
	if err != nil {
		return e.upstreamFailure(ctx, ev.UserID, err, msgAccInfoFail, edit)
	}
	s.Put(scratchAccount, page)

	number := "Неизвестно"
	balance := "Неизвестно"
	house := ""
	var configItemID int64
	if len(page.Results) > 0 && page.Results[0].PersonalAccount != nil {
		pa := page.Results[0].PersonalAccount
		number = pa.Number
		balance = formatAmount(pa.UtilitiesBalance)
		if pa.ConfigurationItem != nil {
			house = pa.ConfigurationItem.Address.Location
			configItemID = pa.ConfigurationItem.ID
		}
	}

	metersInfo := msgMetersLineFail
	if configItemID != 0 {
		meters, merr := e.upstream.Meters(ctx, token, configItemID)
		if merr != nil {
			logger.Warn(ctx, "fsm", "summary.meters_failed",
				slog.Int64("user_id", ev.UserID),
				slog.Int64("config_item_id", configItemID),
				slog.Any("err", merr))
		} else {
			var b strings.Builder
			for _, entry := range meters {
				last := entry.Meter.LastReading()
				if last == "" {
					last = msgMeterNoReading
				}
				fmt.Fprintf(&b, msgMeterLine, entry.Meter.Type, entry.Meter.Number, last)
			}
			metersInfo = b.String()
		}
	}

	text := fmt.Sprintf(msgWelcomeBack, format.EscapeHTML(ev.FirstName)) +
		fmt.Sprintf(msgAccountInfo, number, balance, house) +
		msgMetersHeader + metersInfo + "\n"
	keyboard := [][]Button{
		{{Label: msgBtnTopUp, Data: ButtonTopUp}},
		{{Label: msgBtnReceipts, Data: ButtonReceipt}},
		{{Label: msgBtnCounters, Data: ButtonCounters}},
		{{Label: msgBtnDetailed, Data: ButtonDetailed}},
	}
	logger.Info(ctx, "fsm", "summary.rendered",
		slog.Int64("user_id", ev.UserID),
		slog.String("account_id", accountID))
	return reply(edit, text, ModeHTML, keyboard)
}

// topUp is a placeholder until the payment provider integration lands.
func (e *Engine) topUp(s *session.Session) []Action {
	return actions(EditText{Text: msgTopUpStub, Mode: ModeMarkdown, Buttons: backKeyboard()})
}

// detailedInfo formats the payments payload cached by the last summary.
// It never calls the upstream.
func (e *Engine) detailedInfo(ctx context.Context, s *session.Session) []Action {
	cached, ok := s.Get(scratchAccount)
	page, isPage := cached.(*domopult.PaymentsPage)
	if !ok || !isPage || page == nil {
		return actions(EditText{Text: msgDetailsMissing, Mode: ModeHTML})
	}
	text := "<pre>" + format.EscapeHTML(formatAccountDetails(page)) + "</pre>"
	return actions(EditText{Text: text, Mode: ModeHTML, Buttons: backKeyboard()})
}

// formatAccountDetails renders the monospace account dump. The account and
// client blocks come from the last payment row, which is where the API
// duplicates the freshest snapshot.
func formatAccountDetails(page *domopult.PaymentsPage) string {
	if len(page.Results) == 0 {
		return "Нет данных для отображения."
	}

	var payments strings.Builder
	for _, r := range page.Results {
		fmt.Fprintf(&payments,
			"  %s:\n"+
				"      ID: %d\n"+
				"      ID транзакции: %s\n"+
				"      Статус: %s\n"+
				"      Тип платежа: %s\n"+
				"      Тип сервиса: %s\n"+
				"      Баланс: %s ₽\n"+
				"      Сумма платежа: %s ₽\n"+
				"      Страхование: %s₽\n"+
				"      Сумма без страхования: %s ₽\n\n",
			formatCreationDate(r.CreationDate), r.ID, r.TransactionalID, r.Status,
			r.PaymentType, r.ServiceType, formatAmount(r.Balance),
			formatAmount(r.PaymentSum), formatAmount(r.PaymentInsurance),
			formatAmount(r.PaymentSumWithoutInsurance))
	}

	last := page.Results[len(page.Results)-1]
	account := last.PersonalAccount
	client := last.Client

	var b strings.Builder

	b.WriteString("Клиент:\n")
	if client != nil {
		email := "Не указан"
		mailing := false
		name, phone := "", ""
		if client.Contact != nil {
			name = client.Contact.Name
			phone = client.Contact.Phone
			mailing = client.Contact.AdvertisingMailing
			if len(client.Contact.Emails) > 0 {
				email = client.Contact.Emails[0].Email
			}
		}
		fmt.Fprintf(&b, "  ID: %d\n  Имя: %s\n  Телефон: %s\n  Email: %s\n  Рекламные рассылки: %s\n\n",
			client.ID, name, phone, email, yesNo(mailing))
	} else {
		b.WriteString("  Нет данных\n\n")
	}

	b.WriteString("Личный счет:\n")
	if account != nil {
		fmt.Fprintf(&b, "  ID: %d\n  Номер: %s\n  Баланс по коммунальным услугам: %s ₽\n  Баланс по ремонту: %s ₽\n  Активен: %s\n\n",
			account.ID, account.Number, formatAmount(account.UtilitiesBalance),
			formatAmount(account.RepairsBalance), yesNo(account.IsActive))
	} else {
		b.WriteString("  Нет данных\n\n")
	}

	b.WriteString("Информация о месте проживания:\n")
	if client != nil && client.Contact != nil && client.Contact.BasicConfigurationItem != nil {
		ci := client.Contact.BasicConfigurationItem
		meterKinds := ""
		if ci.MeterFlags != nil {
			if ci.MeterFlags.HotWaterAllowed {
				meterKinds += "Горячая вода "
			}
			if ci.MeterFlags.ColdWaterAllowed {
				meterKinds += "Холодная вода"
			}
		}
		creationMethod := last.CreationMethod
		if creationMethod == "" {
			creationMethod = "Не указан"
		}
		var loginMethods []string
		for _, m := range last.LoginMethods {
			loginMethods = append(loginMethods, m.Key)
		}
		loginMethodsLine := "Не указаны"
		if len(loginMethods) > 0 {
			loginMethodsLine = strings.Join(loginMethods, ", ")
		}
		debt := "Нет долгов"
		if last.DebtorInfo != nil && last.DebtorInfo.IsDebtor {
			debt = fmt.Sprintf("Общий долг: %s", formatAmount(last.DebtorInfo.ServiceOverallDebt))
		}
		fmt.Fprintf(&b, "  ID: %d\n  Название: %s\n  Адрес: %s\n  Категория: %s\n  Тип помещения: %s\n"+
			"  Парковка: %s\n  Игровая площадка: %s\n  Спортивная площадка: %s\n  Включены счетчики: %s\n"+
			"  Метод создания: %s\n  Методы входа: %s\n  Долговая информация: %s\n\n",
			ci.ID, ci.Name, ci.Address.Location, ci.Category.Name, ci.RoomType,
			yesNo(ci.HasParking), yesNo(ci.HasPlayground), yesNo(ci.HasSportsGround),
			strings.TrimSpace(meterKinds), creationMethod, loginMethodsLine, debt)
	} else {
		b.WriteString("  Нет данных\n\n")
	}

	b.WriteString("Недавние платежи:\n")
	b.WriteString(payments.String())

	groupsLine := "Нет групп CI"
	if account != nil && account.ConfigurationItem != nil && len(account.ConfigurationItem.CIGroups) > 0 {
		var lines []string
		for _, g := range account.ConfigurationItem.CIGroups {
			lines = append(lines, fmt.Sprintf("  ID: %d - Название: %s (%s)", g.ID, g.Name, g.Description))
		}
		groupsLine = strings.Join(lines, "\n")
	}
	fmt.Fprintf(&b, "Группы CI:\n%s\n\n", groupsLine)

	return b.String()
}

func formatCreationDate(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Format("02.01.2006 15:04:05")
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func yesNo(v bool) string {
	if v {
		return "Да"
	}
	return "Нет"
}

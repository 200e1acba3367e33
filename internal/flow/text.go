package flow

// User-facing copy. Markdown asterisks and the tree glyphs are part of the
// messages as shipped; whitespace oddities in some strings are deliberate.
const (
	msgWelcome        = " *👋 Добро пожаловать, %s!*\n└ Пожалуйста, выберите метод входа."
	msgLoginViaPhone  = "📞 Войти по номеру телефона"
	msgLoginViaEmail  = "📧 Войти по почте"
	msgUnknownMethod  = "*❌ Неизвестный метод авторизации.*\n└ Пожалуйста, выберите метод входа снова."
	msgAuthCancelled  = "*✅ Процесс авторизации отменен.*"
	msgAuthRestart    = "*❌ Ошибка.*\n└ Пожалуйста, начните процесс авторизации заново."
	msgAuthRetry      = "*❌ Ошибка. Пожалуйста, повторите попытку авторизации.*"
	msgAuthIncomplete = "*❌ Ваша авторизация не завершена.*\n└ Пожалуйста, пройдите процесс авторизации."
	msgTokenExpired   = "*❌ Токен истёк.*\n└ Пожалуйста, пройдите процесс авторизации заново."

	msgPhonePrompt  = "*🔐 Авторизация.*\n└ Пожалуйста, введите номер телефона, привязаннный к приложению в формате +7XXXXXXXXXX."
	msgPhoneInvalid = "*🔐 Авторизация.*\n└ Неверный формат номера. Пожалуйста, введите номер телефона, привязаннный к приложению в формате +7XXXXXXXXXX."
	msgSMSSent      = "*✅ Сообщение с кодом успешно отправлено.*\n└ Пожалуйста, введите полученный код."
	msgSMSSendFail  = "*❌ Ошибка при отправке СМС-кода.*\n└ Пожалуйста, попробуйте снова."
	msgCodeRejected = "*❌ Ошибка авторизации.*\n└ Пожалуйста, проверьте код и попробуйте снова."
	msgTokenEmpty   = "*❌ Ошибка получения токена.*\n└ Пожалуйста, попробуйте снова."

	msgEmailPrompt    = "*🔐 Авторизация.*\n└ Пожалуйста, введите свой адрес электронной почты, привязаннный к приложению."
	msgEmailCyrillic  = "*❌ Авторизация.*\n└ Пароль не должен содержать русские символы. Пожалуйста, введите пароль снова."
	msgPasswordPrompt = "*🔐 Авторизация.*\n└ Пожалуйста, введите ваш пароль, от аккаунта:"
	msgEmailRejected  = "*❌ Ошибка авторизации по почте.*\n└ Пожалуйста, проверьте почту/пароль и попробуйте снова."

	msgTransportFail = "<b>❌ Произошла ошибка при обработке запроса.</b>\n└ Пожалуйста, попробуйте снова."

	msgNoClientData   = "*❌ Нет данных о клиенте.*"
	msgNoAccountID    = "*❌ Не удалось найти идентификатор личного счета.*"
	msgClientInfoFail = "<b>❌ Ошибка при получении информации о клиенте.</b>\n├ Статус: %d\n└ Сообщение: %s"
	msgAccInfoFail    = "<b>❌ Ошибка при получении информации о счете.</b>\n├ Статус: %d\n└ Сообщение: %s"
	msgMetersLineFail = "Не удалось получить данные о счётчиках."
	msgWelcomeBack    = "<b>👋 Добро пожаловать в личный кабинет, %s!</b>\n\n"
	msgAccountInfo    = "<b>🧾 Лицевой счёт:</b> %s\n<b>💸 Баланс счёта:</b> %v ₽\n<b>🏠 Помещение:</b> %s\n\n"
	msgMetersHeader   = "<b>📊 Показания счётчиков:</b>\n"

	msgBtnTopUp    = "💸 Пополнить баланс"
	msgBtnReceipts = "📋 Квитанции"
	msgBtnCounters = "🧭 Счётчики"
	msgBtnDetailed = "⚙️ Подробная информация"
	msgBtnBack     = "🔙 Назад"
	msgBtnCancel   = "❌ Отмена"

	msgTopUpStub      = "*⚙️ Разработка*\n└ Сейчас эта функция недоступна, попробуйте зайти сюда позже."
	msgDetailsMissing = "❌ Данные не найдены. Пожалуйста, попробуйте позже."

	msgReceiptAskYear     = "*✨ Квитанции*\n└ Пожалуйста, введите год для получения квитанции:"
	msgReceiptBadYear     = "*✨ Квитанции\n*└ Пожалуйста, введите корректный год (например, 2023):"
	msgReceiptAskMonth    = "*✨ Квитанции\n*└ Пожалуйста, введите месяц для получения квитанции (например, 01 для января):"
	msgReceiptBadMonth    = "*✨ Квитанции\n*└ Пожалуйста, введите корректный месяц (например, 01 для января):"
	msgReceiptUnavailable = "*❌ Квитанции\n*└ Квитанция для выбранного периода недоступна, попробуйте позже."
	msgReceiptFail        = "<b>❌ Ошибка при получении квитанций.</b>\n├ Статус: %d\n└ Сообщение: %s"

	msgNoConfigItem   = "*❌ Не удалось найти идентификатор конфигурационного элемента.*"
	msgMetersFail     = "*❌ Не удалось получить данные о счётчиках.*"
	msgMeterBtn       = "⏱️ Внести показания для %s"
	msgReadingPrompt  = "*📊 Счётчики.*\n└ Пожалуйста, введите показания счётчика:"
	msgReadingNoDot   = "*❌ Счётчики.*\n└ Показания должны содержать точку. Пожалуйста, введите показания снова."
	msgReadingOK      = "*✅ Счётчики.*\n└ Показания успешно внесены."
	msgReadingFail    = "*❌ Счётчики.*\n└ Не удалось внести показания."
	msgMeterLine      = "<b>%s:</b> %s - Последнее показание: %s\n"
	msgCounterLine    = "<b>%s:</b> %s - Последнее, общее показание: %s\n"
	msgMeterNoReading = "Нет данных"
)

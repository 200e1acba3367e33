// Package flow implements the conversation state machines of the bot:
// authentication, account summary, receipt retrieval and meter readings.
//
// The engine is transport-free. It consumes Events (text or button presses
// already stripped of telebot specifics) and produces Actions (messages to
// send, edits, files, deletions) that the bot layer executes. This keeps
// every transition testable without a Telegram connection.
package flow

// Event is a single inbound user interaction.
type Event struct {
	UserID    int64
	ChatID    int64
	MessageID int
	Text      string
	Button    string
	FirstName string
}

// IsButton reports whether the event came from an inline keyboard press.
func (e Event) IsButton() bool {
	return e.Button != ""
}

// ParseMode selects how outbound text is rendered.
type ParseMode string

const (
	ModePlain    ParseMode = ""
	ModeMarkdown ParseMode = "markdown"
	ModeHTML     ParseMode = "html"
)

// Button is one inline keyboard button.
type Button struct {
	Label string
	Data  string
}

// Action is an outbound effect produced by a transition.
type Action interface {
	isAction()
}

// SendText sends a new message to the user's chat.
type SendText struct {
	Text    string
	Mode    ParseMode
	Buttons [][]Button
}

// EditText edits the message that carried the pressed button.
type EditText struct {
	Text    string
	Mode    ParseMode
	Buttons [][]Button
}

// SendFile sends a document to the user's chat.
type SendFile struct {
	Name string
	Data []byte
}

// DeleteMessage removes a message from the chat. Used to scrub phone
// numbers, codes and passwords the user typed in.
type DeleteMessage struct {
	MessageID int
}

func (SendText) isAction()      {}
func (EditText) isAction()      {}
func (SendFile) isAction()      {}
func (DeleteMessage) isAction() {}

// Button data values understood by the engine.
const (
	ButtonStart       = "start"
	ButtonCancel      = "cancel"
	ButtonPhone       = "phone"
	ButtonEmail       = "email"
	ButtonTopUp       = "top_up_balance"
	ButtonReceipt     = "download_receipt"
	ButtonCounters    = "counters"
	ButtonDetailed    = "detailed_info"
	meterButtonPrefix = "meter_"
)

// Flow states.
const (
	StateAuthChoosing = "auth.choosing_method"
	StateAuthPhone    = "auth.phone"
	StateAuthSMSCode  = "auth.sms_code"
	StateAuthEmail    = "auth.email"
	StateAuthPassword = "auth.password"

	StateReceiptYear  = "receipt.year"
	StateReceiptMonth = "receipt.month"

	StateMeterSelect  = "meter.select"
	StateMeterReading = "meter.reading"
)

// Scratch keys.
const (
	scratchPhone   = "phone"
	scratchEmail   = "email"
	scratchYear    = "selected_year"
	scratchMonth   = "selected_month"
	scratchMeterID = "meter_id"
	scratchAccount = "account_data"
)

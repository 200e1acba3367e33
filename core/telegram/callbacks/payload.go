package callbacks

import (
	"strconv"

	tele "gopkg.in/telebot.v4"
)

// PayloadInt64 parses the callback payload as a decimal int64. Meter
// buttons carry the meter id this way.
func PayloadInt64(c tele.Context) (int64, error) {
	return strconv.ParseInt(CallbackPayload(c), 10, 64)
}

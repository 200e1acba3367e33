package flow

import (
	"regexp"
	"strconv"
	"strings"
)

var cyrillicRe = regexp.MustCompile(`[а-яА-Я]`)

// validPhone accepts numbers of exactly 12 characters with a +7 prefix.
func validPhone(phone string) bool {
	return strings.HasPrefix(phone, "+7") && len(phone) == 12
}

// validEmail rejects input containing Cyrillic letters. The upstream does
// the real validation; this only catches the common wrong-layout typo.
func validEmail(email string) bool {
	return !cyrillicRe.MatchString(email)
}

// validYear accepts exactly four ASCII digits.
func validYear(year string) bool {
	return len(year) == 4 && allDigits(year)
}

// validMonth accepts exactly two ASCII digits in the range 01..12.
func validMonth(month string) bool {
	if len(month) != 2 || !allDigits(month) {
		return false
	}
	n, err := strconv.Atoi(month)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 12
}

// validReading requires a decimal point so whole numbers are not submitted
// by accident.
func validReading(reading string) bool {
	return strings.Contains(reading, ".")
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

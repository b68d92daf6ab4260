// Package id formats and parses transaction numbers.
//
// A number looks like "JE20240101-3": type prefix, posting date, then a
// sequence drawn from a durable per-company-per-day counter. The counter is
// what makes numbers collision-free under concurrent inserts; numbers are
// never derived from row counts.
package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "20060102"

// FormatNumber returns a transaction number like "JE20240101-1".
func FormatNumber(prefix string, date time.Time, seq int) string {
	return fmt.Sprintf("%s%s-%d", prefix, date.Format(dateLayout), seq)
}

// DayKey returns the per-company-per-day counter key for a prefix and date,
// e.g. "JE20240101".
func DayKey(prefix string, date time.Time) string {
	return prefix + date.Format(dateLayout)
}

// ParseNumber splits a transaction number into prefix, date, and sequence.
func ParseNumber(number string) (prefix string, date time.Time, seq int, err error) {
	dash := strings.LastIndexByte(number, '-')
	if dash < 0 {
		return "", time.Time{}, 0, fmt.Errorf("invalid transaction number %q: missing sequence", number)
	}

	seq, err = strconv.Atoi(number[dash+1:])
	if err != nil {
		return "", time.Time{}, 0, fmt.Errorf("invalid sequence in transaction number %q: %w", number, err)
	}

	base := number[:dash]
	if len(base) <= len(dateLayout) {
		return "", time.Time{}, 0, fmt.Errorf("invalid transaction number %q: missing prefix", number)
	}

	prefix = base[:len(base)-len(dateLayout)]
	date, err = time.Parse(dateLayout, base[len(prefix):])
	if err != nil {
		return "", time.Time{}, 0, fmt.Errorf("invalid date in transaction number %q: %w", number, err)
	}

	return prefix, date, seq, nil
}

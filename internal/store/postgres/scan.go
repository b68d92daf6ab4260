package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Numeric columns travel as text so shopspring decimals round-trip exactly.

func dec(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing numeric %q: %w", s, err)
	}
	return d, nil
}

// uuidArg maps uuid.Nil to NULL.
func uuidArg(u uuid.UUID) any {
	if u == uuid.Nil {
		return nil
	}
	return u
}

func uuidVal(p *uuid.UUID) uuid.UUID {
	if p == nil {
		return uuid.Nil
	}
	return *p
}

// timeArg maps the zero time to NULL.
func timeArg(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func timeVal(p *time.Time) time.Time {
	if p == nil {
		return time.Time{}
	}
	return *p
}

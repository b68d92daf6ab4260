package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFiscalPeriodOf(t *testing.T) {
	tests := []struct {
		month   time.Month
		quarter int
	}{
		{time.January, 1}, {time.March, 1},
		{time.April, 2}, {time.June, 2},
		{time.July, 3}, {time.September, 3},
		{time.October, 4}, {time.December, 4},
	}
	for _, tt := range tests {
		p := FiscalPeriodOf(time.Date(2024, tt.month, 15, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, 2024, p.Year)
		assert.Equal(t, int(tt.month), p.Month)
		assert.Equal(t, tt.quarter, p.Quarter, tt.month.String())
	}
}

package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRound_HalfUp(t *testing.T) {
	assert.True(t, Round(dec("1.005")).Equal(dec("1.01")))
	assert.True(t, Round(dec("1.004")).Equal(dec("1.00")))
	assert.True(t, Round(dec("2.675")).Equal(dec("2.68")))
}

func TestRatio(t *testing.T) {
	assert.True(t, Ratio(dec("1"), dec("3")).Equal(dec("0.3333")))
	assert.True(t, Ratio(dec("100"), dec("0")).IsZero(), "zero denominator yields zero")
}

func TestPercent(t *testing.T) {
	assert.True(t, Percent(dec("1200000"), dec("1000000")).Equal(dec("120.00")))
	assert.True(t, Percent(dec("1"), dec("3")).Equal(dec("33.33")))
	assert.True(t, Percent(dec("50"), dec("0")).IsZero(), "zero denominator yields zero")
}

func TestChangeRate(t *testing.T) {
	assert.True(t, ChangeRate(dec("120"), dec("100")).Equal(dec("20.00")))
	assert.True(t, ChangeRate(dec("80"), dec("100")).Equal(dec("-20.00")))
	assert.True(t, ChangeRate(dec("50"), dec("0")).IsZero())
}

package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/coach_bot/internal/service"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		input    string
		amount   float64
		currency string
	}{
		{"5000", 5000, service.DefaultCurrency},
		{"5 000", 5000, service.DefaultCurrency},
		{"12,50", 12.5, service.DefaultCurrency},
		{"20 usd", 20, "USD"},
		{" 1 500 EUR ", 1500, "EUR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			amount, currency, err := parseMoney(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.amount, amount, 0.001)
			assert.Equal(t, tt.currency, currency)
		})
	}
}

func TestParseMoneyInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "-5", "USD"} {
		_, _, err := parseMoney(input)
		var verr *service.ValidationError
		assert.ErrorAs(t, err, &verr, input)
	}
}

func TestParseDay(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)
	now := time.Date(2024, 6, 5, 14, 30, 0, 0, loc)

	day, err := parseDay("", now)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 6, 5, 0, 0, 0, 0, loc).Equal(day), day)

	day, err = parseDay("03.07", now)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 7, 3, 0, 0, 0, 0, loc).Equal(day), day)

	day, err = parseDay("01.01.2025", now)
	require.NoError(t, err)
	assert.True(t, time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Equal(day), day)

	_, err = parseDay("завтра", now)
	assert.Error(t, err)
}

func TestCommandArgs(t *testing.T) {
	assert.Equal(t, "", commandArgs("/day"))
	assert.Equal(t, "03.06 18:30", commandArgs("/newlesson  03.06 18:30 "))
	assert.Equal(t, "on", commandArgs("/digest on"))
}

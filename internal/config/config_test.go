package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestParseRate(t *testing.T) {
	log := zap.NewNop()

	tests := []struct {
		name string
		in   string
		want decimal.Decimal
	}{
		{"valid rate", "15.50", decimal.RequireFromString("15.50")},
		{"valid rate with spaces", " 20.00 ", decimal.RequireFromString("20.00")},
		{"zero is allowed", "0", decimal.Zero},
		{"empty falls back", "", DefaultRatePerHour},
		{"garbage falls back", "cheap", DefaultRatePerHour},
		{"negative falls back", "-5", DefaultRatePerHour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRate(tt.in, log)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

package format_test

import (
	"testing"
	"time"

	"github.com/rumahkopi/api/internal/format"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRupiah(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "Rp 0"},
		{"500", "Rp 500"},
		{"25000", "Rp 25.000"},
		{"1250000", "Rp 1.250.000"},
		{"1250000.49", "Rp 1.250.000"},
		{"-75000", "-Rp 75.000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, format.Rupiah(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestDates(t *testing.T) {
	// 23:30 UTC is already the next day in Jakarta.
	ts := time.Date(2026, 10, 18, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "19/10/2026", format.Date(ts))
	assert.Equal(t, "19 Oktober 2026", format.LongDate(ts))
	assert.Equal(t, "19/10/2026 06.30", format.DateTime(ts))
}

func TestDates_Zero(t *testing.T) {
	assert.Equal(t, "-", format.Date(time.Time{}))
	assert.Equal(t, "-", format.LongDate(time.Time{}))
	assert.Equal(t, "-", format.DateTime(time.Time{}))
}

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"2026-10-15", "2026-10-15", false},
		{" 2026-10-15 ", "2026-10-15", false},
		{"2026-10-15T14:00:00Z", "2026-10-15", false},
		{"15/10/2026", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDate(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatDate(got))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 3, 28, 0, 0, 0, 0, time.UTC)
	b := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 5, DaysBetween(a, b))
	assert.Equal(t, -5, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a.Add(23*time.Hour)))
	assert.Equal(t, b, AddDays(a, 5))
}

func TestMinMaxDate(t *testing.T) {
	a := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := a.AddDate(0, 0, 1)

	assert.Equal(t, b, MaxDate(a, b))
	assert.Equal(t, a, MinDate(a, b))
}

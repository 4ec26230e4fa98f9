package notifications_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribehub/notify/pkg/notifications"
)

func TestQuietHours_Contains(t *testing.T) {
	t.Parallel()

	overnight := notifications.QuietHours{Enabled: true, Start: "22:00", End: "08:00"}
	daytime := notifications.QuietHours{Enabled: true, Start: "13:00", End: "15:30"}

	tests := []struct {
		name string
		q    notifications.QuietHours
		at   string
		want bool
	}{
		{"overnight at start", overnight, "22:00", true},
		{"overnight late evening", overnight, "23:00", true},
		{"overnight midnight", overnight, "00:00", true},
		{"overnight early morning", overnight, "07:59", true},
		{"overnight at end", overnight, "08:00", true},
		{"overnight after end", overnight, "08:01", false},
		{"overnight before start", overnight, "21:59", false},
		{"overnight midday", overnight, "12:00", false},
		{"daytime inside", daytime, "14:00", true},
		{"daytime before", daytime, "12:59", false},
		{"daytime after", daytime, "15:31", false},
		{"disabled", notifications.QuietHours{Start: "00:00", End: "23:59"}, "12:00", false},
		{"malformed", notifications.QuietHours{Enabled: true, Start: "10pm", End: "08:00"}, "23:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.Contains(fixedClock(tt.at)()))
		})
	}
}

func TestQuietHours_UsesWallClockOfTheGivenTime(t *testing.T) {
	t.Parallel()

	q := notifications.QuietHours{Enabled: true, Start: "22:00", End: "08:00"}
	afternoonUTC := time.Date(2026, 6, 12, 14, 0, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*60*60)

	assert.False(t, q.Contains(afternoonUTC))
	assert.True(t, q.Contains(afternoonUTC.In(tokyo)))
}

func TestQuietHours_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, notifications.QuietHours{Start: "22:00", End: "08:00"}.Validate())

	for _, bad := range []notifications.QuietHours{
		{Start: "", End: "08:00"},
		{Start: "24:00", End: "08:00"},
		{Start: "22:60", End: "08:00"},
		{Start: "7:00", End: "08:00"},
		{Start: "22:00", End: "eight"},
	} {
		assert.ErrorIs(t, bad.Validate(), notifications.ErrInvalidQuietHours, "%+v", bad)
	}
}

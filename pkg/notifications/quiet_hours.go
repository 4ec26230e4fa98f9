package notifications

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// QuietHours is a daily local-time window during which push is suppressed.
// Start and End use HH:MM. A window with Start after End wraps midnight.
type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Validate checks the HH:MM format of both bounds.
func (q QuietHours) Validate() error {
	if _, err := parseClock(q.Start); err != nil {
		return fmt.Errorf("%w: start %q", ErrInvalidQuietHours, q.Start)
	}
	if _, err := parseClock(q.End); err != nil {
		return fmt.Errorf("%w: end %q", ErrInvalidQuietHours, q.End)
	}
	return nil
}

// Contains reports whether t's wall-clock minute falls inside the window.
// Both bounds are inclusive. A disabled or malformed window contains nothing.
func (q QuietHours) Contains(t time.Time) bool {
	if !q.Enabled {
		return false
	}
	start, err := parseClock(q.Start)
	if err != nil {
		return false
	}
	end, err := parseClock(q.End)
	if err != nil {
		return false
	}

	current := t.Hour()*60 + t.Minute()
	if start > end {
		return current >= start || current <= end
	}
	return start <= current && current <= end
}

// parseClock converts HH:MM into minutes since midnight.
func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, ErrInvalidQuietHours
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, ErrInvalidQuietHours
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, ErrInvalidQuietHours
	}
	return h*60 + m, nil
}

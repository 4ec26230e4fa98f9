package pgstore

import (
	"context"

	"github.com/tribehub/notify/pkg/notifications"
)

// EmailByUserID reads the address from auth.users. Users without one are
// reported as notifications.ErrNotFound.
func (s *Store) EmailByUserID(ctx context.Context, userID string) (string, error) {
	if err := s.requireService(); err != nil {
		return "", err
	}

	var email *string
	err := s.db.QueryRow(ctx, `SELECT email FROM auth.users WHERE id = $1`, userID).Scan(&email)
	if err != nil {
		return "", mapError(err, "look up user email")
	}
	if email == nil || *email == "" {
		return "", notifications.ErrNotFound
	}
	return *email, nil
}

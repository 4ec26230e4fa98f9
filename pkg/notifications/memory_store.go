package notifications

import (
	"cmp"
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements every store interface in memory. Suitable for
// development and testing.
type MemoryStore struct {
	mu            sync.RWMutex
	notifications map[string][]InboxRecord // userID -> records
	preferences   map[string]UserPreferences
	subscriptions map[string]PushSubscription // id -> subscription
	emails        map[string]string
	scheduled     map[string]ScheduledNotification
}

var (
	_ Inbox             = (*MemoryStore)(nil)
	_ PreferenceStore   = (*MemoryStore)(nil)
	_ SubscriptionStore = (*MemoryStore)(nil)
	_ EmailLookup       = (*MemoryStore)(nil)
	_ ScheduledStore    = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notifications: make(map[string][]InboxRecord),
		preferences:   make(map[string]UserPreferences),
		subscriptions: make(map[string]PushSubscription),
		emails:        make(map[string]string),
		scheduled:     make(map[string]ScheduledNotification),
	}
}

func (s *MemoryStore) CreateNotification(ctx context.Context, rec InboxRecord) error {
	if rec.ID == "" {
		return errors.New("notification ID is required")
	}
	if rec.UserID == "" {
		return errors.New("user ID is required")
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[rec.UserID] = append(s.notifications[rec.UserID], rec)
	return nil
}

func (s *MemoryStore) ListNotifications(ctx context.Context, userID string, opts ListOptions) ([]InboxRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []InboxRecord
	for _, rec := range s.notifications[userID] {
		if rec.Archived && !opts.IncludeArchived {
			continue
		}
		if opts.OnlyUnread && rec.Read {
			continue
		}
		out = append(out, rec)
	}
	slices.SortStableFunc(out, func(a, b InboxRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []InboxRecord{}, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	if out == nil {
		out = []InboxRecord{}
	}
	return out, nil
}

func (s *MemoryStore) MarkRead(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.notifications[userID]
	for i := range recs {
		if recs[i].ID != id {
			continue
		}
		if !recs[i].Read {
			now := time.Now()
			recs[i].Read = true
			recs[i].ReadAt = &now
			recs[i].UpdatedAt = now
		}
		return nil
	}
	return ErrNotFound
}

func (s *MemoryStore) MarkAllRead(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	n := 0
	recs := s.notifications[userID]
	for i := range recs {
		if recs[i].Read || recs[i].Archived {
			continue
		}
		recs[i].Read = true
		recs[i].ReadAt = &now
		recs[i].UpdatedAt = now
		n++
	}
	return n, nil
}

func (s *MemoryStore) UnreadCount(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, rec := range s.notifications[userID] {
		if !rec.Read && !rec.Archived {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) GetPreferences(ctx context.Context, userID string) (UserPreferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefs, ok := s.preferences[userID]
	if !ok {
		return UserPreferences{}, ErrNotFound
	}
	prefs.Channels = cloneChannels(prefs.Channels)
	return prefs, nil
}

func (s *MemoryStore) UpsertPreferences(ctx context.Context, prefs UserPreferences) error {
	if prefs.UserID == "" {
		return errors.New("user ID is required")
	}
	prefs.Channels = cloneChannels(prefs.Channels)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences[prefs.UserID] = prefs
	return nil
}

func cloneChannels(m map[Type][]Channel) map[Type][]Channel {
	out := maps.Clone(m)
	for t, chs := range out {
		out[t] = slices.Clone(chs)
	}
	return out
}

func (s *MemoryStore) ListSubscriptions(ctx context.Context, userID string) ([]PushSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []PushSubscription{}
	for _, sub := range s.subscriptions {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	slices.SortFunc(out, func(a, b PushSubscription) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// SaveSubscription inserts sub, replacing any subscription with the same
// endpoint.
func (s *MemoryStore) SaveSubscription(ctx context.Context, sub PushSubscription) error {
	if sub.UserID == "" || sub.Endpoint == "" {
		return errors.New("user ID and endpoint are required")
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.Mode == "" {
		sub.Mode = PushModeSoundAndVibration
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.subscriptions {
		if existing.Endpoint == sub.Endpoint {
			delete(s.subscriptions, id)
		}
	}
	s.subscriptions[sub.ID] = sub
	return nil
}

func (s *MemoryStore) DeleteSubscriptions(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.subscriptions, id)
	}
	return nil
}

// SetEmail registers the address EmailByUserID returns for userID.
func (s *MemoryStore) SetEmail(userID, address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails[userID] = address
}

func (s *MemoryStore) EmailByUserID(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	address, ok := s.emails[userID]
	if !ok || address == "" {
		return "", ErrNotFound
	}
	return address, nil
}

func (s *MemoryStore) CreateScheduled(ctx context.Context, sn ScheduledNotification) error {
	if sn.ID == "" {
		return errors.New("scheduled notification ID is required")
	}
	if sn.CreatedAt.IsZero() {
		sn.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled[sn.ID] = sn
	return nil
}

func (s *MemoryStore) CancelScheduled(ctx context.Context, userID string, t Type) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	n := 0
	for id, sn := range s.scheduled {
		if sn.UserID != userID || sn.Type != t || !sn.Pending() {
			continue
		}
		sn.CancelledAt = &now
		s.scheduled[id] = sn
		n++
	}
	return n, nil
}

func (s *MemoryStore) ClaimDue(ctx context.Context, now time.Time, limit, maxAttempts int, lease time.Duration) ([]ScheduledNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []ScheduledNotification
	for _, sn := range s.scheduled {
		if !sn.Pending() || sn.SendAt.After(now) || sn.Attempts >= maxAttempts {
			continue
		}
		if sn.LockedUntil != nil && sn.LockedUntil.After(now) {
			continue
		}
		due = append(due, sn)
	}
	slices.SortFunc(due, func(a, b ScheduledNotification) int {
		return cmp.Or(a.SendAt.Compare(b.SendAt), cmp.Compare(a.ID, b.ID))
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	until := now.Add(lease)
	for i := range due {
		due[i].Attempts++
		due[i].LockedUntil = &until
		s.scheduled[due[i].ID] = due[i]
	}
	return due, nil
}

func (s *MemoryStore) MarkSent(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sn, ok := s.scheduled[id]
	if !ok {
		return ErrNotFound
	}
	sn.SentAt = &at
	sn.LockedUntil = nil
	sn.LastError = ""
	s.scheduled[id] = sn
	return nil
}

func (s *MemoryStore) MarkFailed(ctx context.Context, id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sn, ok := s.scheduled[id]
	if !ok {
		return ErrNotFound
	}
	sn.LastError = reason
	sn.LockedUntil = nil
	s.scheduled[id] = sn
	return nil
}

// Scheduled returns the stored row with id.
func (s *MemoryStore) Scheduled(id string) (ScheduledNotification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sn, ok := s.scheduled[id]
	return sn, ok
}

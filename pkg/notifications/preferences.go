package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/tribehub/notify/pkg/logger"
)

// defaultChannels is the system default per type. Email appears only for
// types with an email template.
var defaultChannels = map[Type][]Channel{
	TypeRSVPConfirmation: {ChannelInApp, ChannelPush},
	TypeEventReminder24h: {ChannelInApp, ChannelPush},
	TypeEventReminder2h:  {ChannelInApp, ChannelPush},
	TypeWaitlistPromoted: {ChannelInApp, ChannelPush},
	TypeWaitlistPosition: {ChannelInApp},
	TypeNewRSVP:          {ChannelInApp},
	TypeFeedbackRequest:  {ChannelInApp, ChannelEmail},
	TypeEventInvitation:  {ChannelInApp, ChannelPush, ChannelEmail},
	TypeUserInvitation:   {ChannelEmail},
	TypeTribeJoinRequest: {ChannelInApp, ChannelPush},
	TypeTribeApproved:    {ChannelInApp, ChannelPush},
	TypeTribeRejected:    {ChannelInApp},
	TypeTribeNewEvent:    {ChannelInApp, ChannelPush},
	TypeEventComment:     {ChannelInApp, ChannelPush},
	TypeMomentComment:    {ChannelInApp, ChannelPush},
	TypeCommentReply:     {ChannelInApp, ChannelPush},
	TypeThreadActivity:   {ChannelEmail},
	TypeVideoReady:       {ChannelInApp, ChannelPush},
	TypeMomentReady:      {ChannelInApp},
	TypeNewFollower:      {ChannelInApp},
}

// DefaultChannels returns a copy of the default channel list for t.
// Unknown types get in-app only.
func DefaultChannels(t Type) []Channel {
	if chs, ok := defaultChannels[t]; ok {
		return slices.Clone(chs)
	}
	return []Channel{ChannelInApp}
}

// UserPreferences is a user's stored notification settings.
type UserPreferences struct {
	UserID       string             `json:"user_id"`
	Channels     map[Type][]Channel `json:"channels,omitempty"`
	EmailEnabled bool               `json:"email_enabled"`
	PushEnabled  bool               `json:"push_enabled"`
	InAppEnabled bool               `json:"in_app_enabled"`
	QuietHours   QuietHours         `json:"quiet_hours"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// DefaultPreferences is what a user without a stored row gets: every
// channel on, no overrides, quiet hours off.
func DefaultPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID:       userID,
		Channels:     map[Type][]Channel{},
		EmailEnabled: true,
		PushEnabled:  true,
		InAppEnabled: true,
		QuietHours:   QuietHours{Start: "22:00", End: "08:00"},
	}
}

// Enabled reports the master switch for ch.
func (p UserPreferences) Enabled(ch Channel) bool {
	switch ch {
	case ChannelInApp:
		return p.InAppEnabled
	case ChannelPush:
		return p.PushEnabled
	case ChannelEmail:
		return p.EmailEnabled
	}
	return false
}

// PreferencesUpdate is a partial update. Nil fields are left untouched.
// A Channels entry replaces the override for that type; a nil slice
// removes it and restores the default.
type PreferencesUpdate struct {
	Channels          map[Type][]Channel
	EmailEnabled      *bool
	PushEnabled       *bool
	InAppEnabled      *bool
	QuietHoursEnabled *bool
	QuietHoursStart   *string
	QuietHoursEnd     *string
}

// Apply returns p with u applied.
func (u PreferencesUpdate) Apply(p UserPreferences) (UserPreferences, error) {
	out := p
	out.Channels = maps.Clone(p.Channels)
	if out.Channels == nil {
		out.Channels = map[Type][]Channel{}
	}

	for t, chs := range u.Channels {
		if !t.Valid() {
			return p, fmt.Errorf("%w: %q", ErrUnknownType, t)
		}
		if chs == nil {
			delete(out.Channels, t)
			continue
		}
		clean := make([]Channel, 0, len(chs))
		for _, ch := range chs {
			if !ch.Valid() {
				return p, fmt.Errorf("%w: %q", ErrInvalidChannel, ch)
			}
			if !slices.Contains(clean, ch) {
				clean = append(clean, ch)
			}
		}
		out.Channels[t] = clean
	}

	if u.EmailEnabled != nil {
		out.EmailEnabled = *u.EmailEnabled
	}
	if u.PushEnabled != nil {
		out.PushEnabled = *u.PushEnabled
	}
	if u.InAppEnabled != nil {
		out.InAppEnabled = *u.InAppEnabled
	}
	if u.QuietHoursEnabled != nil {
		out.QuietHours.Enabled = *u.QuietHoursEnabled
	}
	if u.QuietHoursStart != nil {
		out.QuietHours.Start = *u.QuietHoursStart
	}
	if u.QuietHoursEnd != nil {
		out.QuietHours.End = *u.QuietHoursEnd
	}
	if err := out.QuietHours.Validate(); err != nil {
		return p, err
	}
	return out, nil
}

// Preferences resolves which channels a notification goes out on.
type Preferences struct {
	store   PreferenceStore
	now     func() time.Time
	loc     *time.Location
	timeout time.Duration
	logger  *slog.Logger
}

// PreferencesOption configures Preferences.
type PreferencesOption func(*Preferences)

// WithClock replaces time.Now. Quiet hours are evaluated against it.
func WithClock(now func() time.Time) PreferencesOption {
	return func(p *Preferences) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLocation sets the zone quiet hours are interpreted in. Default UTC.
func WithLocation(loc *time.Location) PreferencesOption {
	return func(p *Preferences) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithPreferencesTimeout bounds each store call.
func WithPreferencesTimeout(d time.Duration) PreferencesOption {
	return func(p *Preferences) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithPreferencesLogger sets the logger.
func WithPreferencesLogger(l *slog.Logger) PreferencesOption {
	return func(p *Preferences) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPreferences creates a resolver over store. A nil store behaves as if
// no user had saved preferences.
func NewPreferences(store PreferenceStore, opts ...PreferencesOption) *Preferences {
	p := &Preferences{
		store:   store,
		now:     time.Now,
		loc:     time.UTC,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the stored preferences, or the defaults when there are none.
func (p *Preferences) Get(ctx context.Context, userID string) (UserPreferences, error) {
	if p == nil || p.store == nil {
		return DefaultPreferences(userID), nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	prefs, err := p.store.GetPreferences(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return DefaultPreferences(userID), nil
	}
	if err != nil {
		return UserPreferences{}, fmt.Errorf("get preferences: %w", err)
	}
	if prefs.Channels == nil {
		prefs.Channels = map[Type][]Channel{}
	}
	return prefs, nil
}

// Update applies a partial update and upserts the result. The row is
// created on first write.
func (p *Preferences) Update(ctx context.Context, userID string, u PreferencesUpdate) (UserPreferences, error) {
	if p == nil || p.store == nil {
		return UserPreferences{}, ErrNilStore
	}
	current, err := p.Get(ctx, userID)
	if err != nil {
		return UserPreferences{}, err
	}
	next, err := u.Apply(current)
	if err != nil {
		return UserPreferences{}, err
	}
	next.UserID = userID
	next.UpdatedAt = p.now().UTC()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.store.UpsertPreferences(ctx, next); err != nil {
		return UserPreferences{}, fmt.Errorf("save preferences: %w", err)
	}
	return next, nil
}

// ChannelsFor resolves the channels for a notification of type t to
// userID at the current time. It never fails: if preferences can't be
// read the defaults are used.
func (p *Preferences) ChannelsFor(ctx context.Context, userID string, t Type) []Channel {
	prefs, err := p.Get(ctx, userID)
	if err != nil {
		p.logger.WarnContext(ctx, "using default notification channels",
			logger.UserID(userID),
			logger.NotificationType(t),
			logger.Error(err),
		)
		prefs = DefaultPreferences(userID)
	}
	now := time.Now()
	if p != nil {
		now = p.now().In(p.loc)
	}
	return Resolve(prefs, t, now)
}

// Resolve is the channel resolution algorithm: start from the default for
// t, replace it with the user's override, drop channels whose master switch
// is off, then drop push if now is within quiet hours.
func Resolve(prefs UserPreferences, t Type, now time.Time) []Channel {
	chs := DefaultChannels(t)
	if override, ok := prefs.Channels[t]; ok {
		chs = slices.Clone(override)
	}

	quiet := prefs.QuietHours.Contains(now)
	out := make([]Channel, 0, len(chs))
	for _, ch := range chs {
		if !prefs.Enabled(ch) {
			continue
		}
		if ch == ChannelPush && quiet {
			continue
		}
		out = append(out, ch)
	}
	return out
}

package inbox

import (
	"fmt"

	"github.com/tribehub/notify/handler"
	"github.com/tribehub/notify/pkg/notifications"
)

// maxPageSize caps GET / listings.
const maxPageSize = 100

type listRequest struct {
	Limit    int  `query:"limit"`
	Offset   int  `query:"offset"`
	Unread   bool `query:"unread"`
	Archived bool `query:"archived"`
}

func (r listRequest) options() (notifications.ListOptions, error) {
	verr := handler.NewValidationError()
	if r.Limit < 0 || r.Limit > maxPageSize {
		verr.Add("limit", fmt.Sprintf("must be between 0 and %d", maxPageSize))
	}
	if r.Offset < 0 {
		verr.Add("offset", "must not be negative")
	}
	if !verr.IsEmpty() {
		return notifications.ListOptions{}, verr
	}

	limit := r.Limit
	if limit == 0 {
		limit = maxPageSize
	}
	return notifications.ListOptions{
		Limit:           limit,
		Offset:          r.Offset,
		OnlyUnread:      r.Unread,
		IncludeArchived: r.Archived,
	}, nil
}

type idRequest struct {
	ID string `path:"id"`
}

type quietHoursRequest struct {
	Enabled *bool   `json:"enabled"`
	Start   *string `json:"start"`
	End     *string `json:"end"`
}

// preferencesRequest is a partial update; absent fields are kept. A null
// channel list removes the override for that type.
type preferencesRequest struct {
	Channels     map[string][]string `json:"channels"`
	EmailEnabled *bool               `json:"email_enabled"`
	PushEnabled  *bool               `json:"push_enabled"`
	InAppEnabled *bool               `json:"in_app_enabled"`
	QuietHours   *quietHoursRequest  `json:"quiet_hours"`
}

func (r preferencesRequest) update() (notifications.PreferencesUpdate, error) {
	verr := handler.NewValidationError()
	u := notifications.PreferencesUpdate{
		EmailEnabled: r.EmailEnabled,
		PushEnabled:  r.PushEnabled,
		InAppEnabled: r.InAppEnabled,
	}

	if len(r.Channels) > 0 {
		u.Channels = make(map[notifications.Type][]notifications.Channel, len(r.Channels))
	}
	for name, chs := range r.Channels {
		t := notifications.Type(name)
		if !t.Valid() {
			verr.Add("channels."+name, "unknown notification type")
			continue
		}
		if chs == nil {
			u.Channels[t] = nil
			continue
		}
		list := make([]notifications.Channel, 0, len(chs))
		for _, c := range chs {
			ch := notifications.Channel(c)
			if !ch.Valid() {
				verr.Add("channels."+name, fmt.Sprintf("unknown channel %q", c))
				continue
			}
			list = append(list, ch)
		}
		u.Channels[t] = list
	}

	if q := r.QuietHours; q != nil {
		u.QuietHoursEnabled = q.Enabled
		u.QuietHoursStart = q.Start
		u.QuietHoursEnd = q.End
		probe := notifications.QuietHours{Start: "00:00", End: "00:00"}
		if q.Start != nil {
			probe.Start = *q.Start
		}
		if q.End != nil {
			probe.End = *q.End
		}
		if err := probe.Validate(); err != nil {
			verr.Add("quiet_hours", err.Error())
		}
	}

	if !verr.IsEmpty() {
		return notifications.PreferencesUpdate{}, verr
	}
	return u, nil
}

type subscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// subscriptionRequest mirrors the browser's PushSubscription.toJSON() plus
// the device's alert mode.
type subscriptionRequest struct {
	Endpoint       string           `json:"endpoint"`
	ExpirationTime *int64           `json:"expirationTime"`
	Keys           subscriptionKeys `json:"keys"`
	Mode           string           `json:"notification_mode"`
}

func (r subscriptionRequest) subscription(userID, userAgent string) (notifications.PushSubscription, error) {
	verr := handler.NewValidationError()
	if r.Endpoint == "" {
		verr.Add("endpoint", "is required")
	}
	if r.Keys.P256dh == "" {
		verr.Add("keys.p256dh", "is required")
	}
	if r.Keys.Auth == "" {
		verr.Add("keys.auth", "is required")
	}
	mode := notifications.PushMode(r.Mode)
	if mode == "" {
		mode = notifications.PushModeSoundAndVibration
	}
	if !mode.Valid() {
		verr.Add("notification_mode", fmt.Sprintf("unknown mode %q", r.Mode))
	}
	if !verr.IsEmpty() {
		return notifications.PushSubscription{}, verr
	}

	return notifications.PushSubscription{
		UserID:    userID,
		Endpoint:  r.Endpoint,
		P256dh:    r.Keys.P256dh,
		Auth:      r.Keys.Auth,
		Mode:      mode,
		UserAgent: userAgent,
	}, nil
}

// Package notifications decides, for a typed business event, which channels
// to use, renders the content in the recipient's locale and delivers it to
// the in-app inbox, Web Push devices and email.
//
// # Overview
//
// A caller builds a Payload for one of the notification types and hands it
// to a Notifier:
//
//	res, err := notifier.Notify(ctx, notifications.RSVPConfirmation{
//	    Base:       notifications.To(userID, "fr-CA"),
//	    EventTitle: "Jazz Night",
//	    EventSlug:  "jazz-night",
//	})
//
// Notify resolves channels with Preferences, renders all content once with
// Renderer and runs one delivery per channel concurrently. A failing channel
// never prevents the others from running; res.Channels holds one
// ChannelResult per attempted channel and res.Success is true when any of
// them delivered. The returned error is reserved for programmer errors such
// as a nil payload.
//
// # Channel resolution
//
// Every type has a default channel list (DefaultChannels). A stored
// per-type override replaces it. Channels whose master switch is off are
// dropped, and push is dropped while the user's quiet hours are active.
// WithChannels and SkipPreferences bypass this.
//
// # Templates
//
// Copy is kept in embedded YAML files for en, fr and nl. Any other locale
// falls back to English. Feedback requests, event and user invitations and
// thread digests also render an email with HTML and plain-text bodies.
//
// # Storage
//
// MemoryStore implements every store interface for tests and local
// development. The pgstore subpackage implements them on PostgreSQL.
//
// # Scheduled notifications
//
// Scheduler stores payloads for later. Dispatcher claims due rows and
// notifies them, one attempt per claim.
package notifications

package notifications

// Type identifies the business event a notification is about.
type Type string

const (
	TypeRSVPConfirmation Type = "rsvp_confirmation"
	TypeEventReminder24h Type = "event_reminder_24h"
	TypeEventReminder2h  Type = "event_reminder_2h"
	TypeWaitlistPromoted Type = "waitlist_promoted"
	TypeWaitlistPosition Type = "waitlist_position"
	TypeNewRSVP          Type = "new_rsvp"
	TypeFeedbackRequest  Type = "feedback_request"
	TypeEventInvitation  Type = "event_invitation"
	TypeUserInvitation   Type = "user_invitation"
	TypeTribeJoinRequest Type = "tribe_join_request"
	TypeTribeApproved    Type = "tribe_approved"
	TypeTribeRejected    Type = "tribe_rejected"
	TypeTribeNewEvent    Type = "tribe_new_event"
	TypeEventComment     Type = "event_comment"
	TypeMomentComment    Type = "moment_comment"
	TypeCommentReply     Type = "comment_reply"
	TypeThreadActivity   Type = "thread_activity"
	TypeVideoReady       Type = "video_ready"
	TypeMomentReady      Type = "moment_ready"
	TypeNewFollower      Type = "new_follower"
)

var allTypes = []Type{
	TypeRSVPConfirmation,
	TypeEventReminder24h,
	TypeEventReminder2h,
	TypeWaitlistPromoted,
	TypeWaitlistPosition,
	TypeNewRSVP,
	TypeFeedbackRequest,
	TypeEventInvitation,
	TypeUserInvitation,
	TypeTribeJoinRequest,
	TypeTribeApproved,
	TypeTribeRejected,
	TypeTribeNewEvent,
	TypeEventComment,
	TypeMomentComment,
	TypeCommentReply,
	TypeThreadActivity,
	TypeVideoReady,
	TypeMomentReady,
	TypeNewFollower,
}

// AllTypes returns every notification type.
func AllTypes() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	for _, known := range allTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Channel is a delivery surface.
type Channel string

const (
	ChannelInApp Channel = "in_app"
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
)

// AllChannels returns the channels in their canonical order.
func AllChannels() []Channel {
	return []Channel{ChannelInApp, ChannelPush, ChannelEmail}
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelInApp, ChannelPush, ChannelEmail:
		return true
	}
	return false
}

// PushMode is the per-device setting the client uses to decide how to alert.
type PushMode string

const (
	PushModeSoundAndVibration PushMode = "sound_and_vibration"
	PushModeSound             PushMode = "sound"
	PushModeVibration         PushMode = "vibration"
	PushModeSilent            PushMode = "silent"
)

// Valid reports whether m is a known mode.
func (m PushMode) Valid() bool {
	switch m {
	case PushModeSoundAndVibration, PushModeSound, PushModeVibration, PushModeSilent:
		return true
	}
	return false
}

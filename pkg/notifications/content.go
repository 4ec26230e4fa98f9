package notifications

import (
	"strings"
	"unicode"
)

// Action is a labeled link shown with an in-app notification.
type Action struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// InAppContent is the plain-text inbox entry.
type InAppContent struct {
	Title           string
	Body            string
	Action          *Action
	SecondaryAction *Action
}

// PushContent is what the service worker displays. Tag collapses repeated
// notifications about the same subject.
type PushContent struct {
	Title string
	Body  string
	URL   string
	Tag   string
}

// EmailContent always carries both an HTML and a plain-text body.
type EmailContent struct {
	Subject string
	HTML    string
	Text    string
}

// Rendered is the per-channel content for one payload. Email is nil for
// types that are not sent by email.
type Rendered struct {
	Type  Type
	Lang  string
	InApp InAppContent
	Push  PushContent
	Email *EmailContent
}

// emailTypes are the types with an email template.
var emailTypes = map[Type]bool{
	TypeFeedbackRequest: true,
	TypeEventInvitation: true,
	TypeUserInvitation:  true,
	TypeThreadActivity:  true,
}

// HasEmailTemplate reports whether t can be sent over email.
func HasEmailTemplate(t Type) bool {
	return emailTypes[t]
}

// DedupTag returns the push tag for p. It depends only on the type family
// and the subject's natural key, so a 2h reminder replaces the 24h one.
func DedupTag(p Payload) string {
	switch v := p.(type) {
	case RSVPConfirmation:
		return "rsvp-" + v.EventSlug
	case EventReminder24h:
		return "reminder-" + v.EventSlug
	case EventReminder2h:
		return "reminder-" + v.EventSlug
	case WaitlistPromoted:
		return "waitlist-" + v.EventSlug
	case WaitlistPosition:
		return "waitlist-" + v.EventSlug
	case NewRSVP:
		return "new-rsvp-" + v.EventSlug
	case FeedbackRequest:
		return "feedback-" + v.EventSlug
	case EventInvitation:
		return "invite-" + v.EventSlug
	case UserInvitation:
		return "user-invite-" + tagKey(v.InviterName)
	case TribeJoinRequest:
		return "tribe-request-" + v.TribeSlug
	case TribeApproved:
		return "tribe-" + v.TribeSlug
	case TribeRejected:
		return "tribe-" + v.TribeSlug
	case TribeNewEvent:
		return "tribe-event-" + v.EventSlug
	case EventComment:
		return "comment-" + v.EventSlug
	case MomentComment:
		return "moment-comment-" + v.MomentID
	case CommentReply:
		if v.MomentID != "" {
			return "reply-moment-" + v.MomentID
		}
		return "reply-" + v.EventSlug
	case ThreadActivity:
		return "thread-" + v.EventSlug
	case VideoReady:
		return "video-" + v.MomentID
	case MomentReady:
		return "moment-" + v.MomentID
	case NewFollower:
		return "follower-" + v.FollowerUsername
	}
	return ""
}

// tagKey folds free text into a tag segment: lowercase letters and digits
// with single dashes between words.
func tagKey(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

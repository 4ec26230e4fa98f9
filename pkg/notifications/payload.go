package notifications

import (
	"encoding/json"
	"fmt"
)

// Payload is the typed fact a notification is rendered from. The set of
// implementations is closed: every variant lives in this file.
type Payload interface {
	NotificationType() Type
	Recipient() string
	Lang() string
	sealed()
}

// Base carries the fields common to every payload.
type Base struct {
	UserID string `json:"user_id"`
	Locale string `json:"locale"`
}

func (b Base) Recipient() string { return b.UserID }
func (b Base) Lang() string      { return b.Locale }
func (Base) sealed()             {}

// To builds a Base for userID in locale.
func To(userID, locale string) Base {
	return Base{UserID: userID, Locale: locale}
}

type RSVPConfirmation struct {
	Base
	EventTitle       string `json:"event_title"`
	EventSlug        string `json:"event_slug"`
	EventDescription string `json:"event_description,omitempty"`
}

func (RSVPConfirmation) NotificationType() Type { return TypeRSVPConfirmation }

// EventReminder24h is sent the day before an event the user is attending.
type EventReminder24h struct {
	Base
	EventTitle string `json:"event_title"`
	EventSlug  string `json:"event_slug"`
	EventTime  string `json:"event_time"`
	VenueName  string `json:"venue_name,omitempty"`
}

func (EventReminder24h) NotificationType() Type { return TypeEventReminder24h }

// EventReminder2h is sent shortly before an event starts.
type EventReminder2h struct {
	Base
	EventTitle string `json:"event_title"`
	EventSlug  string `json:"event_slug"`
	EventTime  string `json:"event_time"`
	VenueName  string `json:"venue_name,omitempty"`
}

func (EventReminder2h) NotificationType() Type { return TypeEventReminder2h }

type WaitlistPromoted struct {
	Base
	EventTitle string `json:"event_title"`
	EventSlug  string `json:"event_slug"`
}

func (WaitlistPromoted) NotificationType() Type { return TypeWaitlistPromoted }

type WaitlistPosition struct {
	Base
	EventTitle string `json:"event_title"`
	EventSlug  string `json:"event_slug"`
	Position   int    `json:"position"`
}

func (WaitlistPosition) NotificationType() Type { return TypeWaitlistPosition }

// NewRSVP tells an organizer that someone signed up.
type NewRSVP struct {
	Base
	EventTitle   string `json:"event_title"`
	EventSlug    string `json:"event_slug"`
	AttendeeName string `json:"attendee_name"`
}

func (NewRSVP) NotificationType() Type { return TypeNewRSVP }

type FeedbackRequest struct {
	Base
	EventTitle string `json:"event_title"`
	EventSlug  string `json:"event_slug"`
}

func (FeedbackRequest) NotificationType() Type { return TypeFeedbackRequest }

type EventInvitation struct {
	Base
	InviterName      string `json:"inviter_name"`
	EventTitle       string `json:"event_title"`
	EventSlug        string `json:"event_slug"`
	EventDate        string `json:"event_date"`
	EventDescription string `json:"event_description,omitempty"`
}

func (EventInvitation) NotificationType() Type { return TypeEventInvitation }

// UserInvitation invites someone to join the platform. Recipients are
// usually not users yet, so it is sent with SendEmailInvitation.
type UserInvitation struct {
	Base
	InviterName string `json:"inviter_name"`
	Message     string `json:"message,omitempty"`
}

func (UserInvitation) NotificationType() Type { return TypeUserInvitation }

type TribeJoinRequest struct {
	Base
	TribeName     string `json:"tribe_name"`
	TribeSlug     string `json:"tribe_slug"`
	RequesterName string `json:"requester_name"`
}

func (TribeJoinRequest) NotificationType() Type { return TypeTribeJoinRequest }

type TribeApproved struct {
	Base
	TribeName string `json:"tribe_name"`
	TribeSlug string `json:"tribe_slug"`
}

func (TribeApproved) NotificationType() Type { return TypeTribeApproved }

type TribeRejected struct {
	Base
	TribeName string `json:"tribe_name"`
	TribeSlug string `json:"tribe_slug"`
}

func (TribeRejected) NotificationType() Type { return TypeTribeRejected }

type TribeNewEvent struct {
	Base
	TribeName  string `json:"tribe_name"`
	EventTitle string `json:"event_title"`
	EventSlug  string `json:"event_slug"`
}

func (TribeNewEvent) NotificationType() Type { return TypeTribeNewEvent }

type EventComment struct {
	Base
	EventTitle     string `json:"event_title"`
	EventSlug      string `json:"event_slug"`
	CommenterName  string `json:"commenter_name"`
	CommentPreview string `json:"comment_preview,omitempty"`
}

func (EventComment) NotificationType() Type { return TypeEventComment }

type MomentComment struct {
	Base
	MomentID       string `json:"moment_id"`
	CommenterName  string `json:"commenter_name"`
	CommentPreview string `json:"comment_preview,omitempty"`
}

func (MomentComment) NotificationType() Type { return TypeMomentComment }

// CommentReply targets either an event thread (EventSlug) or a moment
// thread (MomentID). MomentID wins when both are set.
type CommentReply struct {
	Base
	ReplierName  string `json:"replier_name"`
	ReplyPreview string `json:"reply_preview,omitempty"`
	EventSlug    string `json:"event_slug,omitempty"`
	MomentID     string `json:"moment_id,omitempty"`
}

func (CommentReply) NotificationType() Type { return TypeCommentReply }

// ThreadActivity is a digest of new comments in a thread the user follows.
type ThreadActivity struct {
	Base
	EventTitle      string `json:"event_title"`
	EventSlug       string `json:"event_slug"`
	CommentCount    int    `json:"comment_count"`
	LatestCommenter string `json:"latest_commenter,omitempty"`
}

func (ThreadActivity) NotificationType() Type { return TypeThreadActivity }

type VideoReady struct {
	Base
	MomentID   string `json:"moment_id"`
	EventTitle string `json:"event_title,omitempty"`
}

func (VideoReady) NotificationType() Type { return TypeVideoReady }

type MomentReady struct {
	Base
	MomentID   string `json:"moment_id"`
	EventTitle string `json:"event_title,omitempty"`
}

func (MomentReady) NotificationType() Type { return TypeMomentReady }

type NewFollower struct {
	Base
	FollowerName     string `json:"follower_name"`
	FollowerUsername string `json:"follower_username"`
}

func (NewFollower) NotificationType() Type { return TypeNewFollower }

// envelope is the stored form of a payload.
type envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EncodePayload serializes p as {"type": ..., "data": ...}.
func EncodePayload(p Payload) ([]byte, error) {
	if p == nil {
		return nil, ErrUnknownType
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", p.NotificationType(), err)
	}
	return json.Marshal(envelope{Type: p.NotificationType(), Data: data})
}

// DecodePayload restores a payload produced by EncodePayload.
func DecodePayload(raw []byte) (Payload, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	p, err := decodeAs(env.Type, env.Data)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func decodeAs(t Type, data json.RawMessage) (Payload, error) {
	switch t {
	case TypeRSVPConfirmation:
		return decodeInto[RSVPConfirmation](data)
	case TypeEventReminder24h:
		return decodeInto[EventReminder24h](data)
	case TypeEventReminder2h:
		return decodeInto[EventReminder2h](data)
	case TypeWaitlistPromoted:
		return decodeInto[WaitlistPromoted](data)
	case TypeWaitlistPosition:
		return decodeInto[WaitlistPosition](data)
	case TypeNewRSVP:
		return decodeInto[NewRSVP](data)
	case TypeFeedbackRequest:
		return decodeInto[FeedbackRequest](data)
	case TypeEventInvitation:
		return decodeInto[EventInvitation](data)
	case TypeUserInvitation:
		return decodeInto[UserInvitation](data)
	case TypeTribeJoinRequest:
		return decodeInto[TribeJoinRequest](data)
	case TypeTribeApproved:
		return decodeInto[TribeApproved](data)
	case TypeTribeRejected:
		return decodeInto[TribeRejected](data)
	case TypeTribeNewEvent:
		return decodeInto[TribeNewEvent](data)
	case TypeEventComment:
		return decodeInto[EventComment](data)
	case TypeMomentComment:
		return decodeInto[MomentComment](data)
	case TypeCommentReply:
		return decodeInto[CommentReply](data)
	case TypeThreadActivity:
		return decodeInto[ThreadActivity](data)
	case TypeVideoReady:
		return decodeInto[VideoReady](data)
	case TypeMomentReady:
		return decodeInto[MomentReady](data)
	case TypeNewFollower:
		return decodeInto[NewFollower](data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

func decodeInto[P Payload](data json.RawMessage) (Payload, error) {
	var p P
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, nil
}

package notifications

import "context"

// NotifyRSVPConfirmation confirms an RSVP to the attendee.
func (n *Notifier) NotifyRSVPConfirmation(ctx context.Context, p RSVPConfirmation, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyEventReminder24h reminds an attendee the day before.
func (n *Notifier) NotifyEventReminder24h(ctx context.Context, p EventReminder24h, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyEventReminder2h reminds an attendee shortly before the start.
func (n *Notifier) NotifyEventReminder2h(ctx context.Context, p EventReminder2h, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyWaitlistPromoted tells a waitlisted user they got a spot.
func (n *Notifier) NotifyWaitlistPromoted(ctx context.Context, p WaitlistPromoted, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyWaitlistPosition reports a new waitlist position.
func (n *Notifier) NotifyWaitlistPosition(ctx context.Context, p WaitlistPosition, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyNewRSVP tells an organizer about a new attendee.
func (n *Notifier) NotifyNewRSVP(ctx context.Context, p NewRSVP, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyFeedbackRequest asks an attendee for feedback after an event.
func (n *Notifier) NotifyFeedbackRequest(ctx context.Context, p FeedbackRequest, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyEventInvitation invites a user to an event.
func (n *Notifier) NotifyEventInvitation(ctx context.Context, p EventInvitation, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyUserInvitation invites an existing account holder. Use SendEmailInvitation for addresses without an account.
func (n *Notifier) NotifyUserInvitation(ctx context.Context, p UserInvitation, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyTribeJoinRequest tells one tribe admin about a join request. See NotifyTribeAdmins.
func (n *Notifier) NotifyTribeJoinRequest(ctx context.Context, p TribeJoinRequest, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyTribeApproved tells a user their join request was approved.
func (n *Notifier) NotifyTribeApproved(ctx context.Context, p TribeApproved, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyTribeRejected tells a user their join request was declined. It is
// always sent in-app only.
func (n *Notifier) NotifyTribeRejected(ctx context.Context, p TribeRejected) (Result, error) {
	return n.Notify(ctx, p, WithChannels(ChannelInApp))
}

// NotifyTribeNewEvent tells a tribe member about a new event.
func (n *Notifier) NotifyTribeNewEvent(ctx context.Context, p TribeNewEvent, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyEventComment tells an organizer or attendee about a new event comment.
func (n *Notifier) NotifyEventComment(ctx context.Context, p EventComment, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyMomentComment tells a moment's author about a new comment.
func (n *Notifier) NotifyMomentComment(ctx context.Context, p MomentComment, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyCommentReply tells a commenter someone replied.
func (n *Notifier) NotifyCommentReply(ctx context.Context, p CommentReply, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyThreadActivity sends the digest of a followed thread.
func (n *Notifier) NotifyThreadActivity(ctx context.Context, p ThreadActivity, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyVideoReady tells an uploader their video finished processing.
func (n *Notifier) NotifyVideoReady(ctx context.Context, p VideoReady, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyMomentReady tells an uploader their moment is published.
func (n *Notifier) NotifyMomentReady(ctx context.Context, p MomentReady, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyNewFollower tells a user someone followed them.
func (n *Notifier) NotifyNewFollower(ctx context.Context, p NewFollower, opts ...NotifyOption) (Result, error) {
	return n.Notify(ctx, p, opts...)
}

// NotifyTribeAdmins sends req to every admin, each in their own locale.
// The Base of req is ignored.
func (n *Notifier) NotifyTribeAdmins(ctx context.Context, admins []Base, req TribeJoinRequest, opts ...NotifyOption) []UserResult {
	locales := make(map[string]string, len(admins))
	ids := make([]string, len(admins))
	for i, a := range admins {
		ids[i] = a.UserID
		locales[a.UserID] = a.Locale
	}
	return n.NotifyMultiple(ctx, ids, func(userID string) Payload {
		p := req
		p.Base = To(userID, locales[userID])
		return p
	}, opts...)
}

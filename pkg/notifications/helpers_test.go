package notifications_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tribehub/notify/pkg/email"
	"github.com/tribehub/notify/pkg/logger"
	"github.com/tribehub/notify/pkg/notifications"
	"github.com/tribehub/notify/pkg/webpush"
)

const testBaseURL = "https://tribehub.test"

func newRenderer(t *testing.T) *notifications.Renderer {
	t.Helper()
	r, err := notifications.NewRenderer(notifications.NewLinks(testBaseURL+"/"), notifications.WithRendererLogger(logger.Discard()))
	require.NoError(t, err)
	return r
}

// samplePayloads has one fully populated payload per type.
func samplePayloads(locale string) map[notifications.Type]notifications.Payload {
	b := notifications.To("u1", locale)
	return map[notifications.Type]notifications.Payload{
		notifications.TypeRSVPConfirmation: notifications.RSVPConfirmation{Base: b, EventTitle: "Jazz Night", EventSlug: "jazz-night", EventDescription: "Bring a friend"},
		notifications.TypeEventReminder24h: notifications.EventReminder24h{Base: b, EventTitle: "Jazz Night", EventSlug: "jazz-night", EventTime: "20:00", VenueName: "Blue Note"},
		notifications.TypeEventReminder2h:  notifications.EventReminder2h{Base: b, EventTitle: "Jazz Night", EventSlug: "jazz-night", EventTime: "20:00"},
		notifications.TypeWaitlistPromoted: notifications.WaitlistPromoted{Base: b, EventTitle: "Jazz Night", EventSlug: "jazz-night"},
		notifications.TypeWaitlistPosition: notifications.WaitlistPosition{Base: b, EventTitle: "Jazz Night", EventSlug: "jazz-night", Position: 3},
		notifications.TypeNewRSVP:          notifications.NewRSVP{Base: b, EventTitle: "Jazz Night", EventSlug: "jazz-night", AttendeeName: "Ana"},
		notifications.TypeFeedbackRequest:  notifications.FeedbackRequest{Base: b, EventTitle: "Jazz Night", EventSlug: "jazz-night"},
		notifications.TypeEventInvitation:  notifications.EventInvitation{Base: b, InviterName: "Ana", EventTitle: "Jazz Night", EventSlug: "jazz-night", EventDate: "Friday 12 June", EventDescription: "Live quartet"},
		notifications.TypeUserInvitation:   notifications.UserInvitation{Base: b, InviterName: "Ana", Message: "Come hang out with us"},
		notifications.TypeTribeJoinRequest: notifications.TribeJoinRequest{Base: b, TribeName: "Hikers", TribeSlug: "hikers", RequesterName: "Bo"},
		notifications.TypeTribeApproved:    notifications.TribeApproved{Base: b, TribeName: "Hikers", TribeSlug: "hikers"},
		notifications.TypeTribeRejected:    notifications.TribeRejected{Base: b, TribeName: "Hikers", TribeSlug: "hikers"},
		notifications.TypeTribeNewEvent:    notifications.TribeNewEvent{Base: b, TribeName: "Hikers", EventTitle: "Hike", EventSlug: "hike-1"},
		notifications.TypeEventComment:     notifications.EventComment{Base: b, EventTitle: "Jazz Night", EventSlug: "jazz-night", CommenterName: "Bo", CommentPreview: "Can't wait!"},
		notifications.TypeMomentComment:    notifications.MomentComment{Base: b, MomentID: "m1", CommenterName: "Bo", CommentPreview: "Great shot"},
		notifications.TypeCommentReply:     notifications.CommentReply{Base: b, ReplierName: "Bo", ReplyPreview: "Same here", EventSlug: "jazz-night"},
		notifications.TypeThreadActivity:   notifications.ThreadActivity{Base: b, EventTitle: "Jazz Night", EventSlug: "jazz-night", CommentCount: 4, LatestCommenter: "Bo"},
		notifications.TypeVideoReady:       notifications.VideoReady{Base: b, MomentID: "m1", EventTitle: "Jazz Night"},
		notifications.TypeMomentReady:      notifications.MomentReady{Base: b, MomentID: "m1"},
		notifications.TypeNewFollower:      notifications.NewFollower{Base: b, FollowerName: "Bo", FollowerUsername: "bo"},
	}
}

func jazzNight() notifications.RSVPConfirmation {
	return notifications.RSVPConfirmation{
		Base:             notifications.To("u1", "en"),
		EventTitle:       "Jazz Night",
		EventSlug:        "jazz-night",
		EventDescription: "Bring a friend",
	}
}

type sentPush struct {
	Endpoint string
	Message  notifications.PushMessage
	Urgency  webpush.Urgency
}

// fakePushClient answers per endpoint: gone endpoints get
// ErrSubscriptionGone, failing ones get their error.
type fakePushClient struct {
	mu      sync.Mutex
	gone    map[string]bool
	fail    map[string]error
	panics  bool
	delay   time.Duration
	sent    []sentPush
	inbound int
}

func (c *fakePushClient) Send(ctx context.Context, sub webpush.Subscription, payload []byte, urgency webpush.Urgency) error {
	c.mu.Lock()
	c.inbound++
	c.mu.Unlock()

	if c.panics {
		panic("push exploded")
	}
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", webpush.ErrDeliveryFailed, ctx.Err())
		}
	}
	if c.gone[sub.Endpoint] {
		return fmt.Errorf("%w: status 410", webpush.ErrSubscriptionGone)
	}
	if err := c.fail[sub.Endpoint]; err != nil {
		return err
	}

	var msg notifications.PushMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}
	c.mu.Lock()
	c.sent = append(c.sent, sentPush{Endpoint: sub.Endpoint, Message: msg, Urgency: urgency})
	c.mu.Unlock()
	return nil
}

func (c *fakePushClient) Sent() []sentPush {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentPush(nil), c.sent...)
}

func (c *fakePushClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inbound
}

// fakeMailer records what it was asked to send.
type fakeMailer struct {
	mu       sync.Mutex
	sent     []email.SendEmailParams
	batches  int
	err      error
	batchErr func(batch int) error
	rejectTo map[string]bool
}

func (m *fakeMailer) SendEmail(ctx context.Context, params email.SendEmailParams) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if err := params.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, params)
	return fmt.Sprintf("msg-%d", len(m.sent)), nil
}

func (m *fakeMailer) SendBatch(ctx context.Context, batch []email.SendEmailParams) ([]email.BatchResult, error) {
	if len(batch) > email.MaxBatchSize {
		return nil, email.ErrBatchTooLarge
	}
	m.mu.Lock()
	m.batches++
	n := m.batches
	m.mu.Unlock()
	if m.batchErr != nil {
		if err := m.batchErr(n); err != nil {
			return nil, err
		}
	}

	results := make([]email.BatchResult, len(batch))
	for i, params := range batch {
		results[i].SendTo = params.SendTo
		if m.rejectTo[params.SendTo] {
			results[i].Err = fmt.Errorf("%w: inactive recipient", email.ErrFailedToSendEmail)
			continue
		}
		results[i].MessageID, results[i].Err = m.SendEmail(ctx, params)
	}
	return results, nil
}

func (m *fakeMailer) Sent() []email.SendEmailParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]email.SendEmailParams(nil), m.sent...)
}

// countingInbox wraps a store and counts writes, optionally panicking.
type countingInbox struct {
	*notifications.MemoryStore
	mu      sync.Mutex
	creates int
	panics  bool
	err     error
}

func (c *countingInbox) CreateNotification(ctx context.Context, rec notifications.InboxRecord) error {
	c.mu.Lock()
	c.creates++
	c.mu.Unlock()
	if c.panics {
		panic("inbox exploded")
	}
	if c.err != nil {
		return c.err
	}
	return c.MemoryStore.CreateNotification(ctx, rec)
}

func (c *countingInbox) Creates() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creates
}

// brokenPreferences fails every read.
type brokenPreferences struct{}

func (brokenPreferences) GetPreferences(context.Context, string) (notifications.UserPreferences, error) {
	return notifications.UserPreferences{}, errors.New("connection refused")
}

func (brokenPreferences) UpsertPreferences(context.Context, notifications.UserPreferences) error {
	return errors.New("connection refused")
}

func fixedClock(hhmm string) func() time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2026-06-12 "+hhmm)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func ptr[T any](v T) *T { return &v }

func addDevice(t *testing.T, store *notifications.MemoryStore, id, userID, endpoint string, mode notifications.PushMode) {
	t.Helper()
	require.NoError(t, store.SaveSubscription(context.Background(), notifications.PushSubscription{
		ID:        id,
		UserID:    userID,
		Endpoint:  endpoint,
		P256dh:    "p256dh-" + id,
		Auth:      "auth-" + id,
		Mode:      mode,
		CreatedAt: time.Now(),
	}))
}

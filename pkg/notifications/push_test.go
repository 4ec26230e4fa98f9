package notifications_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribehub/notify/pkg/logger"
	"github.com/tribehub/notify/pkg/notifications"
	"github.com/tribehub/notify/pkg/webpush"
)

var jazzPush = notifications.PushContent{
	Title: `You're going to "Jazz Night"!`,
	Body:  "Remember: Bring a friend",
	URL:   testBaseURL + "/events/jazz-night",
	Tag:   "rsvp-jazz-night",
}

func TestPushSender_RemovesOnlyGoneSubscriptions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := notifications.NewMemoryStore()
	addDevice(t, store, "s1", "u1", "https://push.test/1", notifications.PushModeSoundAndVibration)
	addDevice(t, store, "s2", "u1", "https://push.test/2", notifications.PushModeSilent)
	addDevice(t, store, "s3", "u1", "https://push.test/3", notifications.PushModeSoundAndVibration)

	client := &fakePushClient{gone: map[string]bool{"https://push.test/2": true}}
	sender := notifications.NewPushSender(client, store, notifications.WithPushLogger(logger.Discard()))

	res := sender.Send(ctx, "u1", jazzPush, 2)
	assert.True(t, res.Success)
	assert.Equal(t, notifications.ChannelPush, res.Channel)
	assert.Equal(t, 3, client.Calls())

	subs, err := store.ListSubscriptions(ctx, "u1")
	require.NoError(t, err)
	ids := make([]string, len(subs))
	for i, s := range subs {
		ids[i] = s.ID
	}
	assert.ElementsMatch(t, []string{"s1", "s3"}, ids)

	sent := client.Sent()
	require.Len(t, sent, 2)
	for _, s := range sent {
		assert.Equal(t, jazzPush.Title, s.Message.Title)
		assert.Equal(t, jazzPush.Tag, s.Message.Tag)
		assert.Equal(t, 2, s.Message.Badge)
		assert.Equal(t, notifications.PushModeSoundAndVibration, s.Message.NotificationMode)
		assert.Equal(t, webpush.UrgencyNormal, s.Urgency)
	}
}

func TestPushSender_CarriesDeviceMode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := notifications.NewMemoryStore()
	addDevice(t, store, "s1", "u1", "https://push.test/1", notifications.PushModeSilent)

	client := &fakePushClient{}
	res := notifications.NewPushSender(client, store).Send(ctx, "u1", jazzPush, 0)
	require.True(t, res.Success)

	sent := client.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notifications.PushModeSilent, sent[0].Message.NotificationMode)
}

func TestPushSender_NoDevicesIsSuccess(t *testing.T) {
	t.Parallel()

	client := &fakePushClient{}
	res := notifications.NewPushSender(client, notifications.NewMemoryStore()).Send(context.Background(), "u1", jazzPush, 0)
	assert.True(t, res.Success)
	assert.Zero(t, client.Calls())
}

func TestPushSender_AllDevicesFail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := notifications.NewMemoryStore()
	addDevice(t, store, "s1", "u1", "https://push.test/1", "")
	addDevice(t, store, "s2", "u1", "https://push.test/2", "")

	client := &fakePushClient{
		gone: map[string]bool{"https://push.test/1": true},
		fail: map[string]error{"https://push.test/2": errors.New("connection reset")},
	}
	res := notifications.NewPushSender(client, store, notifications.WithPushLogger(logger.Discard())).Send(ctx, "u1", jazzPush, 0)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "all 2 devices")

	subs, err := store.ListSubscriptions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "s2", subs[0].ID, "transient failures keep the subscription")
}

func TestPushSender_PanickingClient(t *testing.T) {
	t.Parallel()

	store := notifications.NewMemoryStore()
	addDevice(t, store, "s1", "u1", "https://push.test/1", "")

	res := notifications.NewPushSender(&fakePushClient{panics: true}, store).Send(context.Background(), "u1", jazzPush, 0)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestPushSender_Timeout(t *testing.T) {
	t.Parallel()

	store := notifications.NewMemoryStore()
	addDevice(t, store, "s1", "u1", "https://push.test/1", "")

	client := &fakePushClient{delay: time.Second}
	sender := notifications.NewPushSender(client, store, notifications.WithPushTimeout(20*time.Millisecond))

	start := time.Now()
	res := sender.Send(context.Background(), "u1", jazzPush, 0)
	assert.False(t, res.Success)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestPushSender_SendBadge(t *testing.T) {
	t.Parallel()

	store := notifications.NewMemoryStore()
	addDevice(t, store, "s1", "u1", "https://push.test/1", "")

	client := &fakePushClient{}
	res := notifications.NewPushSender(client, store).SendBadge(context.Background(), "u1", 7)
	require.True(t, res.Success)

	sent := client.Sent()
	require.Len(t, sent, 1)
	assert.Empty(t, sent[0].Message.Title)
	assert.Equal(t, 7, sent[0].Message.Badge)
	assert.Equal(t, webpush.UrgencyLow, sent[0].Urgency)
}

func TestPushSender_NotConfigured(t *testing.T) {
	t.Parallel()

	var nilSender *notifications.PushSender
	for name, s := range map[string]*notifications.PushSender{
		"nil sender": nilSender,
		"nil client": notifications.NewPushSender(nil, notifications.NewMemoryStore()),
		"nil store":  notifications.NewPushSender(&fakePushClient{}, nil),
	} {
		res := s.Send(context.Background(), "u1", jazzPush, 0)
		assert.False(t, res.Success, name)
		assert.Equal(t, "push notifications are not configured", res.Error, name)
	}
}

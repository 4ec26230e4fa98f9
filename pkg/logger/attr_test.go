package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribehub/notify/pkg/logger"
)

type channel string

func TestGroup(t *testing.T) {
	attr := logger.Group("req", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "req", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	assert.Len(t, attr.Value.Group(), 2)
}

func TestErrors(t *testing.T) {
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	assert.True(t, logger.Errors(nil).Equal(slog.Attr{}))
}

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestNotificationAttrs(t *testing.T) {
	assert.Equal(t, "user_id", logger.UserID("u1").Key)
	assert.True(t, logger.UserID("").Equal(slog.Attr{}))

	assert.Equal(t, "notification_id", logger.NotificationID("n1").Key)
	assert.True(t, logger.NotificationID("").Equal(slog.Attr{}))

	attr := logger.Channel(channel("push"))
	assert.Equal(t, "channel", attr.Key)
	assert.Equal(t, "push", attr.Value.String())

	attr = logger.NotificationType(channel("rsvp_confirmation"))
	assert.Equal(t, "notification_type", attr.Key)
	assert.Equal(t, "rsvp_confirmation", attr.Value.String())

	attr = logger.Channels([]channel{"in_app", "push"})
	assert.Equal(t, "channels", attr.Key)
	assert.Equal(t, []string{"in_app", "push"}, attr.Value.Any())
}

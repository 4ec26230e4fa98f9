package inbox

import (
	"context"
	"log/slog"

	"github.com/tribehub/notify/pkg/broadcast"
	"github.com/tribehub/notify/pkg/logger"
	"github.com/tribehub/notify/pkg/notifications"
)

// Publisher returns an inbox observer that broadcasts every change to b,
// typically wired with notifications.WithInboxObserver. Broadcast failures
// are logged; the inbox write already succeeded.
func Publisher(b broadcast.Broadcaster[notifications.InboxEvent], log *slog.Logger) notifications.InboxObserver {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx context.Context, ev notifications.InboxEvent) {
		if err := b.Broadcast(context.WithoutCancel(ctx), broadcast.Message[notifications.InboxEvent]{Data: ev}); err != nil {
			log.WarnContext(ctx, "inbox event not broadcast",
				logger.UserID(ev.UserID),
				logger.NotificationID(ev.NotificationID),
				slog.String("kind", string(ev.Kind)),
				logger.Error(err),
			)
		}
	}
}

package inbox

import (
	"context"

	"github.com/tribehub/notify/handler"
	"github.com/tribehub/notify/pkg/broadcast"
	"github.com/tribehub/notify/pkg/logger"
	"github.com/tribehub/notify/pkg/notifications"
)

// stream pushes live inbox changes to a DataStar client. It sends the
// current unread count on connect, then prepends new items and refreshes
// the "unreadCount" signal on every change.
func (s *Service) stream(ctx handler.Context, _ struct{}) handler.Response {
	userID, denied := caller(ctx)
	if denied != nil {
		return denied
	}
	if s.events == nil {
		return handler.Error(handler.ErrServiceUnavailable)
	}

	return handler.SSE(func(stream handler.StreamContext) error {
		sub := s.events.Subscribe(stream, broadcast.WithFilter(func(ev notifications.InboxEvent) bool {
			return ev.UserID == userID
		}))
		defer sub.Close()

		log := s.logger.With(logger.UserID(userID), logger.Component("inbox_stream"))
		log.DebugContext(stream, "inbox stream opened")
		defer log.DebugContext(context.WithoutCancel(stream), "inbox stream closed")

		if err := s.sendCount(stream, userID); err != nil {
			return err
		}

		events := sub.Receive(stream)
		for {
			select {
			case <-stream.Done():
				return nil
			case <-s.done:
				return nil
			case msg, ok := <-events:
				if !ok {
					return nil
				}
				if err := s.push(stream, msg.Data); err != nil {
					return err
				}
			}
		}
	})
}

func (s *Service) push(stream handler.StreamContext, ev notifications.InboxEvent) error {
	if ev.Kind == notifications.InboxCreated && ev.Record != nil {
		if err := stream.SendComponent(Item(*ev.Record),
			handler.WithTarget(InboxSelector),
			handler.WithPatchMode(handler.PatchPrepend),
		); err != nil {
			return err
		}
	}
	return s.sendCount(stream, ev.UserID)
}

func (s *Service) sendCount(stream handler.StreamContext, userID string) error {
	n, err := s.inbox.UnreadCount(stream, userID)
	if err != nil {
		// A missed refresh is corrected by the next event.
		s.logger.WarnContext(stream, "unread count for stream failed",
			logger.UserID(userID),
			logger.Error(err),
			logger.Component("inbox_stream"),
		)
		return nil
	}
	return stream.SendSignals(map[string]any{"unreadCount": n})
}

package inbox

import (
	"errors"
	"net/http"

	"github.com/tribehub/notify/handler"
	"github.com/tribehub/notify/pkg/jwt"
	"github.com/tribehub/notify/pkg/logger"
	"github.com/tribehub/notify/pkg/notifications"
)

// apiError maps domain errors onto HTTP responses.
func apiError(err error) error {
	switch {
	case errors.Is(err, notifications.ErrNotFound):
		return handler.ErrNotFound
	case errors.Is(err, notifications.ErrInboxNotConfigured), errors.Is(err, notifications.ErrNilStore):
		return handler.ErrServiceUnavailable
	case errors.Is(err, notifications.ErrInvalidQuietHours):
		verr := handler.NewValidationError()
		verr.Add("quiet_hours", err.Error())
		return verr
	case errors.Is(err, notifications.ErrUnknownType), errors.Is(err, notifications.ErrInvalidChannel):
		verr := handler.NewValidationError()
		verr.Add("channels", err.Error())
		return verr
	}
	return err
}

// caller returns the authenticated user or an error response.
func caller(ctx handler.Context) (string, handler.Response) {
	userID := jwt.UserID(ctx)
	if userID == "" {
		return "", handler.Error(handler.ErrUnauthorized)
	}
	return userID, nil
}

func (s *Service) list(ctx handler.Context, req listRequest) handler.Response {
	userID, denied := caller(ctx)
	if denied != nil {
		return denied
	}
	opts, err := req.options()
	if err != nil {
		return handler.Error(err)
	}

	recs, err := s.inbox.List(ctx, userID, opts)
	if err != nil {
		return handler.Error(apiError(err))
	}
	return handler.JSON(recs, handler.WithJSONMeta(map[string]any{
		"limit":  opts.Limit,
		"offset": opts.Offset,
		"count":  len(recs),
	}))
}

func (s *Service) unreadCount(ctx handler.Context, _ struct{}) handler.Response {
	userID, denied := caller(ctx)
	if denied != nil {
		return denied
	}
	n, err := s.inbox.UnreadCount(ctx, userID)
	if err != nil {
		return handler.Error(apiError(err))
	}
	return handler.JSON(map[string]int{"unread_count": n})
}

func (s *Service) markRead(ctx handler.Context, req idRequest) handler.Response {
	userID, denied := caller(ctx)
	if denied != nil {
		return denied
	}
	if err := s.inbox.MarkRead(ctx, req.ID, userID); err != nil {
		return handler.Error(apiError(err))
	}
	return handler.Empty()
}

func (s *Service) markAllRead(ctx handler.Context, _ struct{}) handler.Response {
	userID, denied := caller(ctx)
	if denied != nil {
		return denied
	}
	changed, err := s.inbox.MarkAllRead(ctx, userID)
	if err != nil {
		return handler.Error(apiError(err))
	}
	return handler.JSON(map[string]int{"updated": changed})
}

func (s *Service) getPreferences(ctx handler.Context, _ struct{}) handler.Response {
	userID, denied := caller(ctx)
	if denied != nil {
		return denied
	}
	prefs, err := s.prefs.Get(ctx, userID)
	if err != nil {
		return handler.Error(apiError(err))
	}
	return handler.JSON(prefs)
}

func (s *Service) updatePreferences(ctx handler.Context, req preferencesRequest) handler.Response {
	userID, denied := caller(ctx)
	if denied != nil {
		return denied
	}
	u, err := req.update()
	if err != nil {
		return handler.Error(err)
	}

	prefs, err := s.prefs.Update(ctx, userID, u)
	if err != nil {
		return handler.Error(apiError(err))
	}
	s.logger.InfoContext(ctx, "notification preferences updated",
		logger.UserID(userID),
		logger.Component("inbox"),
	)
	return handler.JSON(prefs)
}

func (s *Service) saveSubscription(ctx handler.Context, req subscriptionRequest) handler.Response {
	userID, denied := caller(ctx)
	if denied != nil {
		return denied
	}
	if s.subs == nil {
		return handler.Error(handler.ErrServiceUnavailable)
	}
	sub, err := req.subscription(userID, ctx.Request().UserAgent())
	if err != nil {
		return handler.Error(err)
	}

	if err := s.subs.SaveSubscription(ctx, sub); err != nil {
		return handler.Error(apiError(err))
	}
	s.logger.InfoContext(ctx, "push subscription saved",
		logger.UserID(userID),
		logger.Component("inbox"),
	)
	return handler.JSON(map[string]string{"endpoint": sub.Endpoint}, handler.WithJSONStatus(http.StatusCreated))
}

package inbox

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/tribehub/notify/handler"
	"github.com/tribehub/notify/pkg/binder"
	"github.com/tribehub/notify/pkg/broadcast"
	"github.com/tribehub/notify/pkg/notifications"
)

// Reader is the inbox side the HTTP API needs. *notifications.InAppSender
// implements it.
type Reader interface {
	List(ctx context.Context, userID string, opts notifications.ListOptions) ([]notifications.InboxRecord, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// PreferenceManager reads and updates user preferences.
// *notifications.Preferences implements it.
type PreferenceManager interface {
	Get(ctx context.Context, userID string) (notifications.UserPreferences, error)
	Update(ctx context.Context, userID string, u notifications.PreferencesUpdate) (notifications.UserPreferences, error)
}

// SubscriptionSaver registers push devices.
type SubscriptionSaver interface {
	SaveSubscription(ctx context.Context, sub notifications.PushSubscription) error
}

// Service serves a signed-in user's inbox, preferences and devices. Every
// route expects the jwt middleware to have stored the caller's claims.
type Service struct {
	inbox        Reader
	prefs        PreferenceManager
	subs         SubscriptionSaver
	events       broadcast.Broadcaster[notifications.InboxEvent]
	logger       *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]

	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Service.
type Option func(*Service)

// WithEvents enables GET /stream. Without a broadcaster the route answers
// 503.
func WithEvents(b broadcast.Broadcaster[notifications.InboxEvent]) Option {
	return func(s *Service) {
		s.events = b
	}
}

// WithSubscriptions enables POST /push-subscriptions.
func WithSubscriptions(subs SubscriptionSaver) Option {
	return func(s *Service) {
		s.subs = subs
	}
}

// WithLogger sets the logger for request and stream logs.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithErrorHandler replaces the default handler.NewErrorHandler.
func WithErrorHandler(h handler.ErrorHandler[handler.Context]) Option {
	return func(s *Service) {
		if h != nil {
			s.errorHandler = h
		}
	}
}

// NewService creates the inbox API over inbox and prefs. Both should act
// with the caller's own privileges.
func NewService(inbox Reader, prefs PreferenceManager, opts ...Option) *Service {
	s := &Service{
		inbox:  inbox,
		prefs:  prefs,
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.errorHandler == nil {
		s.errorHandler = handler.NewErrorHandler(s.logger)
	}
	return s
}

// Close ends every open stream. Register it with the HTTP server's
// shutdown so streams don't hold up graceful shutdown.
func (s *Service) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Handle returns the router for the inbox routes, to be mounted at
// /notifications behind authentication.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.list,
		handler.WithBinders[handler.Context, listRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, listRequest](s.errorHandler),
	))
	r.Get("/unread-count", handler.Wrap(s.unreadCount,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Post("/read-all", handler.Wrap(s.markAllRead,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Post("/{id}/read", handler.Wrap(s.markRead,
		handler.WithBinders[handler.Context, idRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, idRequest](s.errorHandler),
	))

	r.Get("/preferences", handler.Wrap(s.getPreferences,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Patch("/preferences", handler.Wrap(s.updatePreferences,
		handler.WithBinders[handler.Context, preferencesRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, preferencesRequest](s.errorHandler),
	))

	r.Post("/push-subscriptions", handler.Wrap(s.saveSubscription,
		handler.WithBinders[handler.Context, subscriptionRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, subscriptionRequest](s.errorHandler),
	))

	r.Get("/stream", handler.Wrap(s.stream,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))

	return r
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/tribehub/notify/handler"
	"github.com/tribehub/notify/modules/inbox"
	"github.com/tribehub/notify/pkg/broadcast"
	"github.com/tribehub/notify/pkg/config"
	"github.com/tribehub/notify/pkg/email"
	"github.com/tribehub/notify/pkg/httpserver"
	"github.com/tribehub/notify/pkg/jwt"
	"github.com/tribehub/notify/pkg/logger"
	"github.com/tribehub/notify/pkg/notifications"
	"github.com/tribehub/notify/pkg/notifications/pgstore"
	"github.com/tribehub/notify/pkg/pg"
	"github.com/tribehub/notify/pkg/redis"
	"github.com/tribehub/notify/pkg/requestid"
	"github.com/tribehub/notify/pkg/webpush"
)

type appConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Service string `env:"APP_SERVICE" envDefault:"notifyd"`
}

type serviceConfig struct {
	App           appConfig
	Postgres      pg.Config
	Redis         redis.Config
	Email         email.Config
	Push          webpush.Config
	JWT           jwt.Config
	HTTP          httpserver.Config
	Notifications notifications.Config
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "vapid" {
		pub, priv, err := webpush.GenerateKeys()
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate VAPID keys: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", pub, priv)
		return
	}

	var cfg serviceConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.App.Env, cfg.App.Service),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("notifyd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg serviceConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.Postgres, pgstore.Migrations, pgstore.MigrationsDir, log); err != nil {
		return err
	}
	store := pgstore.New(pool, pgstore.ServiceRole)

	loc, err := cfg.Notifications.Location()
	if err != nil {
		return err
	}
	renderer, err := notifications.NewRenderer(
		notifications.NewLinks(cfg.Notifications.BaseURL),
		notifications.WithRendererLogger(log),
	)
	if err != nil {
		return err
	}
	prefs := notifications.NewPreferences(store,
		notifications.WithLocation(loc),
		notifications.WithPreferencesTimeout(cfg.Notifications.Timeout),
		notifications.WithPreferencesLogger(log),
	)

	mailer, err := newMailer(cfg.Email, cfg.App.Env, log)
	if err != nil {
		return err
	}
	emailSender := notifications.NewEmailSender(mailer,
		notifications.WithFooterPhrases(cfg.Notifications.Phrases()...),
		notifications.WithEmailTimeout(cfg.Email.Timeout),
	)

	var pushClient notifications.PushClient
	if cfg.Push.Configured() {
		c, err := webpush.NewClient(cfg.Push)
		if err != nil {
			return err
		}
		pushClient = c
	} else {
		log.Warn("VAPID keys not set; push notifications disabled")
	}
	pushSender := notifications.NewPushSender(pushClient, store,
		notifications.WithPushTimeout(cfg.Push.Timeout),
		notifications.WithPushLogger(log),
	)

	events, redisClient, err := newEvents(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer events.Close()
	if redisClient != nil {
		defer redisClient.Close()
	}

	inApp := notifications.NewInAppSender(store,
		notifications.WithInAppTimeout(cfg.Notifications.Timeout),
		notifications.WithInboxObserver(inbox.Publisher(events, log)),
	)

	notifier, err := notifications.NewNotifier(renderer, prefs, inApp, pushSender, emailSender, store,
		notifications.WithNotifierLogger(log),
		notifications.WithLookupTimeout(cfg.Notifications.Timeout),
	)
	if err != nil {
		return err
	}
	dispatcher, err := notifications.NewDispatcher(store, notifier,
		notifications.WithInterval(cfg.Notifications.DispatchInterval),
		notifications.WithBatchSize(cfg.Notifications.DispatchBatchSize),
		notifications.WithMaxAttempts(cfg.Notifications.DispatchMaxAttempts),
		notifications.WithLease(cfg.Notifications.DispatchLease),
		notifications.WithDispatcherLogger(log),
	)
	if err != nil {
		return err
	}

	tokens, err := jwt.NewFromConfig(cfg.JWT)
	if err != nil {
		return err
	}

	inboxSvc, _ := newInboxAPI(pool, cfg.Notifications, loc, events, log)

	checks := map[string]httpserver.Check{"postgres": pg.Healthcheck(pool)}
	if redisClient != nil {
		checks["redis"] = redis.Healthcheck(redisClient)
	}

	router := inbox.Router(inbox.RouterOptions{
		Inbox: inboxSvc,
		Auth: jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{
			Service: tokens,
			// EventSource cannot set headers, so the stream passes the token in the query.
			Extractor: jwt.ChainExtractors(jwt.BearerTokenExtractor, jwt.QueryTokenExtractor("access_token")),
		}),
		Health:      httpserver.HealthCheckHandler(log, 0, nil),
		Ready:       httpserver.HealthCheckHandler(log, 3*time.Second, checks),
		Middlewares: []func(http.Handler) http.Handler{requestid.Middleware},
	})

	server := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithOnShutdown(inboxSvc.Close),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, router)
	})
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	return g.Wait()
}

// newInboxAPI builds the user-facing inbox service. It runs on a UserRole
// store: the API acts for the signed-in caller only, while the senders keep
// the service role.
func newInboxAPI(db pgstore.DB, cfg notifications.Config, loc *time.Location, events broadcast.Broadcaster[notifications.InboxEvent], log *slog.Logger) (*inbox.Service, *pgstore.Store) {
	store := pgstore.New(db, pgstore.UserRole)
	reader := notifications.NewInAppSender(store,
		notifications.WithInAppTimeout(cfg.Timeout),
		notifications.WithInboxObserver(inbox.Publisher(events, log)),
	)
	prefs := notifications.NewPreferences(store,
		notifications.WithLocation(loc),
		notifications.WithPreferencesTimeout(cfg.Timeout),
		notifications.WithPreferencesLogger(log),
	)
	svc := inbox.NewService(reader, prefs,
		inbox.WithEvents(events),
		inbox.WithSubscriptions(store),
		inbox.WithLogger(log),
		inbox.WithErrorHandler(handler.NewErrorHandler(log)),
	)
	return svc, store
}

// newMailer picks the email provider. Without a Postmark token, mail is
// written to disk only in development or when EMAIL_DEV_OUTPUT_DIR is set;
// otherwise it returns nil and the email channel reports itself as not
// configured.
func newMailer(cfg email.Config, env string, log *slog.Logger) (email.BatchSender, error) {
	if cfg.PostmarkServerToken != "" {
		return email.NewPostmarkClient(cfg)
	}

	dir := cfg.DevOutputDir
	if dir == "" && env != logger.EnvDevelopment && env != "dev" {
		log.Warn("POSTMARK_SERVER_TOKEN not set; email delivery disabled", slog.String("env", env))
		return nil, nil
	}
	if dir == "" {
		dir = os.TempDir()
	}
	log.Warn("POSTMARK_SERVER_TOKEN not set; writing emails to disk", slog.String("dir", dir))
	return email.NewDevSender(dir), nil
}

// newEvents returns the inbox broadcaster. Redis fans events out across
// replicas; without it events stay in process.
func newEvents(ctx context.Context, cfg redis.Config, log *slog.Logger) (broadcast.Broadcaster[notifications.InboxEvent], *goredis.Client, error) {
	if !cfg.Enabled() {
		return broadcast.NewMemoryBroadcaster[notifications.InboxEvent](64), nil, nil
	}
	client, err := redis.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	b, err := broadcast.NewRedisBroadcaster[notifications.InboxEvent](ctx, client, cfg.Channel,
		broadcast.WithRedisLogger(log),
	)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return b, client, nil
}

// Package logger builds *slog.Logger values with functional options and
// provides attribute helpers so that every component of the notification
// engine logs the same keys.
//
//	log := logger.New(logger.WithEnvironment(os.Getenv("APP_ENV"), "notifyd"))
//	logger.SetAsDefault(log)
//
//	log.WarnContext(ctx, "push delivery failed",
//	    logger.UserID(userID),
//	    logger.Channel(notifications.ChannelPush),
//	    logger.Error(err),
//	)
//
// Helpers such as Error and UserID return an empty slog.Attr for zero values,
// which slog drops, so callers don't need nil checks.
package logger

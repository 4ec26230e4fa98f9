// Package requestid correlates log records that belong to one request or
// one background delivery.
//
// Middleware accepts a client supplied X-Request-ID when it is short and
// made of letters, digits, dashes and underscores, and generates a UUID
// otherwise. The id is echoed in the response header and stored in the
// context, where FromContext reads it. Ensure does the same for work that
// doesn't start from an HTTP request.
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
package requestid

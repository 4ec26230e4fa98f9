package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tribehub/notify/pkg/logger"
	"github.com/tribehub/notify/pkg/requestid"
)

// statusClientClosed is logged for requests whose client went away; no
// response is written for them.
const statusClientClosed = 499

// ErrorInfo contains classified error information
type ErrorInfo struct {
	StatusCode int
	LogLevel   slog.Level
}

func classifyError(err error) ErrorInfo {
	info := ErrorInfo{StatusCode: http.StatusInternalServerError}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		info.StatusCode = httpErr.Code
	}
	var validationErr ValidationError
	if errors.As(err, &validationErr) {
		info.StatusCode = http.StatusUnprocessableEntity
	}
	if errors.Is(err, context.Canceled) {
		info.StatusCode = statusClientClosed
	}

	info.LogLevel = slog.LevelError
	if info.StatusCode < http.StatusInternalServerError {
		info.LogLevel = slog.LevelWarn
	}
	return info
}

// NewErrorHandler creates the error handler shared by all services. Regular
// requests get a JSON error body; DataStar stream requests get the error
// patched into the "error" signal since their status line is already sent.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		requestID := requestid.FromContext(r.Context())
		info := classifyError(err)

		log.LogAttrs(r.Context(), info.LogLevel, "request error",
			logger.RequestID(requestID),
			logger.Error(err),
			logger.StatusCode(info.StatusCode),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Bool("is_datastar", IsDataStar(r)),
			logger.Component("error_handler"),
		)

		if info.StatusCode == statusClientClosed {
			return
		}

		status := info.StatusCode
		detail := errorToDetail(err, &status)

		if sse := ctx.SSE(); sse != nil {
			signals, mErr := json.Marshal(map[string]any{"error": detail})
			if mErr == nil {
				mErr = sse.PatchSignals(signals)
			}
			if mErr != nil {
				log.Error("failed to patch error signal",
					logger.RequestID(requestID),
					logger.Error(mErr),
					logger.Component("error_handler"),
				)
			}
			return
		}

		_ = JSONError(detail, WithJSONStatus(status)).Render(ctx.ResponseWriter(), r)
	}
}

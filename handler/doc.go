// Package handler provides type-safe HTTP request handling for the notify
// HTTP API.
//
// Handlers are generic functions that receive a bound request struct and
// return a Response:
//
//	type listRequest struct {
//		Limit  int  `query:"limit"`
//		Unread bool `query:"unread"`
//	}
//
//	func (s *Service) list(ctx handler.Context, req listRequest) handler.Response {
//		recs, err := s.inbox.List(ctx, jwt.UserID(ctx), notifications.ListOptions{Limit: req.Limit})
//		if err != nil {
//			return handler.Error(err)
//		}
//		return handler.JSON(recs)
//	}
//
//	r.Get("/", handler.Wrap(s.list,
//		handler.WithBinders[handler.Context, listRequest](binder.Query()),
//	))
//
// # Responses
//
//	handler.JSON(data)                            // 200 {"data": ...}
//	handler.JSON(data, handler.WithJSONStatus(201))
//	handler.JSONError(err)                        // {"error": {...}} with a status from err
//	handler.Empty()                               // 204
//	handler.Error(err)                            // hands err to the ErrorHandler
//	handler.SSE(func(stream handler.StreamContext) error { ... })
//
// JSONError maps HTTPError values to their status code and ValidationError
// to 422 with per-field details. Other errors become a 500 without their
// message.
//
// # Streaming
//
// SSE responses run for the lifetime of a DataStar connection and push
// signal and element patches:
//
//	return handler.SSE(func(stream handler.StreamContext) error {
//		return stream.SendSignals(map[string]any{"unreadCount": 3})
//	})
//
// # Errors
//
// Handlers return handler.Error so that failures reach the ErrorHandler
// instead of being written directly. NewErrorHandler logs every failure
// with the request ID and answers with the JSON error body, or with an
// "error" signal on a stream. Pass it to Wrap with WithErrorHandler.
package handler

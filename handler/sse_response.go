package handler

import (
	"errors"
	"net/http"
	"time"
)

// SSEHandler handles a Server-Sent Events stream. It runs for the lifetime
// of the connection and returns when the client disconnects.
//
//	handler.SSE(func(stream handler.StreamContext) error {
//		for {
//			select {
//			case <-stream.Done():
//				return nil
//			case ev := <-events:
//				if err := stream.SendSignals(map[string]any{"unreadCount": ev.Unread}); err != nil {
//					return err
//				}
//			}
//		}
//	})
type SSEHandler func(ctx StreamContext) error

type sseResponse struct {
	handler SSEHandler
}

// Render validates the DataStar connection, lifts the server write
// deadline for this response and runs the handler.
func (s sseResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if !IsDataStar(r) {
		return NewHTTPError(http.StatusBadRequest, "sse_required")
	}

	// Recorders and some wrappers cannot change deadlines; the stream then
	// lives within the server's WriteTimeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}

	base := NewContext(w, r)
	sse := base.SSE()
	if sse == nil {
		return ErrSSENotInitialized
	}
	return s.handler(&streamContext{Context: base, sse: sse})
}

// SSE creates a response that streams through the handler.
func SSE(handler SSEHandler) Response {
	return sseResponse{handler: handler}
}

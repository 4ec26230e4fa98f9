package broadcast

import "errors"

var (
	// ErrClosed is returned by Broadcast after Close.
	ErrClosed = errors.New("broadcast: broadcaster is closed")
	// ErrEncode wraps failures to serialise a message for a remote transport.
	ErrEncode = errors.New("broadcast: failed to encode message")
	// ErrPublish wraps transport failures.
	ErrPublish = errors.New("broadcast: failed to publish message")
)

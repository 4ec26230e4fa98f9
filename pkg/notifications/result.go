package notifications

// ChannelResult is the outcome of one delivery attempt on one channel.
type ChannelResult struct {
	Channel   Channel `json:"channel"`
	Success   bool    `json:"success"`
	Error     string  `json:"error,omitempty"`
	MessageID string  `json:"message_id,omitempty"`
}

func succeeded(ch Channel, messageID string) ChannelResult {
	return ChannelResult{Channel: ch, Success: true, MessageID: messageID}
}

func failed(ch Channel, reason string) ChannelResult {
	return ChannelResult{Channel: ch, Error: reason}
}

// Result is the outcome of a notify call.
type Result struct {
	// Success is true when at least one channel delivered, or when no
	// channel was selected.
	Success  bool            `json:"success"`
	Channels []ChannelResult `json:"channels"`
	// NotificationID is the in-app row id when the in-app channel succeeded.
	NotificationID string `json:"notification_id,omitempty"`
}

// AllSucceeded reports whether every attempted channel delivered.
func (r Result) AllSucceeded() bool {
	for _, ch := range r.Channels {
		if !ch.Success {
			return false
		}
	}
	return true
}

// Failed returns the results of channels that did not deliver.
func (r Result) Failed() []ChannelResult {
	var out []ChannelResult
	for _, ch := range r.Channels {
		if !ch.Success {
			out = append(out, ch)
		}
	}
	return out
}

// Channel returns the result for ch, if it was attempted.
func (r Result) Channel(ch Channel) (ChannelResult, bool) {
	for _, res := range r.Channels {
		if res.Channel == ch {
			return res, true
		}
	}
	return ChannelResult{}, false
}

func newResult(channels []ChannelResult) Result {
	r := Result{Channels: channels, Success: len(channels) == 0}
	for _, ch := range channels {
		if ch.Success {
			r.Success = true
			if ch.Channel == ChannelInApp {
				r.NotificationID = ch.MessageID
			}
		}
	}
	return r
}

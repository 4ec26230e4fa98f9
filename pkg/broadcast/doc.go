// Package broadcast fans typed messages out to many subscribers.
//
// MemoryBroadcaster keeps everything in process. RedisBroadcaster relays
// through a Redis pub/sub channel so that an event broadcast on one
// replica reaches subscribers on all of them. Both drop messages for
// subscribers whose buffer is full rather than block the sender, and both
// close a subscription when the context passed to Subscribe is done.
//
// The inbox live stream subscribes with a filter for the signed-in user:
//
//	sub := events.Subscribe(r.Context(), broadcast.WithFilter(func(ev notifications.InboxEvent) bool {
//	    return ev.UserID == userID
//	}))
//	defer sub.Close()
//
//	for msg := range sub.Receive(r.Context()) {
//	    // push msg.Data to the browser
//	}
package broadcast

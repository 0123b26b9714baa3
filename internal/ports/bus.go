package ports

import (
	"context"
	"errors"

	"github.com/hearthhub/hub/internal/domain"
)

// ErrSubscriptionClosed is returned by Subscription.Recv once the
// subscription has been closed and its remaining buffered events have
// been drained.
var ErrSubscriptionClosed = errors.New("subscription closed")

// Envelope wraps a delivered Event together with how many prior events
// were dropped for this subscriber because its ring filled up before it
// could keep up. Lagged is 0 on ordinary deliveries.
type Envelope struct {
	Event  domain.Event
	Lagged int
}

// Subscription is a subscriber's lazy view of the bus, yielding only
// events published after Subscribe was called.
type Subscription interface {
	// Recv blocks until the next event is available, the subscription is
	// closed (ErrSubscriptionClosed, after draining buffered events), or
	// ctx is done (ctx.Err()). Events are popped from the subscriber's
	// ring only here, so a paused subscriber retains exactly the newest
	// ring-capacity events and the first Recv after a pause reports the
	// full drop count.
	Recv(ctx context.Context) (Envelope, error)
	// Close releases the subscriber's ring. Safe to call more than once.
	Close()
}

// EventBus multiplexes a single stream of Events to N concurrent
// subscribers without backpressure on the publisher.
// Publish never blocks on a slow subscriber: a subscriber that falls
// more than the bus's ring capacity behind loses its oldest undelivered
// events, and its next delivery reports the loss via Envelope.Lagged.
type EventBus interface {
	// Publish delivers event to every current subscriber. Publishing
	// with zero subscribers silently drops the event.
	Publish(event domain.Event)
	// Subscribe registers a new subscriber and returns its Subscription.
	Subscribe() Subscription
}

package events

import "context"

// Publisher delivers envelopes to live subscribers. With redis enabled the
// relay is the publisher and the hub receives through its subscription;
// otherwise the hub publishes directly.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

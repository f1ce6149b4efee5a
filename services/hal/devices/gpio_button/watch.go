package gpio_button

import (
	"context"
	"time"

	"lampcode-go/bus"
	"lampcode-go/types"
	"lampcode-go/x/timex"
)

// TopicEvent carries classified presses as types.ButtonEvent.
var TopicEvent = bus.T("lamp", "button")

// Watch samples read every period until ctx is done and publishes each
// classified event on conn.
func Watch(ctx context.Context, conn *bus.Connection, c *Classifier, clock timex.Clock, period time.Duration, read func() bool) {
	tick := time.NewTicker(period)
	defer tick.Stop()

	// the first sample establishes the idle level
	c.Feed(read(), clock.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if ev := c.Feed(read(), clock.Now()); ev != types.ButtonNone {
				conn.Publish(conn.NewMessage(TopicEvent, ev, false))
			}
		}
	}
}

// README: Venue change notifications over NATS with an empty payload.
package notify

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// SubjectVenuesChanged carries "venue data changed, re-fetch" signals.
const SubjectVenuesChanged = "venues.changed"

type Bus struct {
	conn    *nats.Conn
	subject string
}

func NewBus(conn *nats.Conn) *Bus {
	return &Bus{conn: conn, subject: SubjectVenuesChanged}
}

// PublishChanged announces that venue data changed.
func (b *Bus) PublishChanged(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.conn.Publish(b.subject, nil); err != nil {
		return fmt.Errorf("publish %s: %w", b.subject, err)
	}
	return nil
}

// SubscribeChanged calls fn for every change signal until the returned
// unsubscribe func is called.
func (b *Bus) SubscribeChanged(fn func()) (func() error, error) {
	sub, err := b.conn.Subscribe(b.subject, func(*nats.Msg) { fn() })
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", b.subject, err)
	}
	return sub.Unsubscribe, nil
}

package tracker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/gamassss/utm-tracker/internal/logger"
	"github.com/nats-io/nats.go"
)

type envelope struct {
	RequestID string       `json:"requestId,omitempty"`
	Visit     domain.Visit `json:"visit"`
	SentAt    time.Time    `json:"sentAt"`
}

// NATSDispatcher publishes visits to a subject. Any process holding a queue
// subscription on that subject applies them.
type NATSDispatcher struct {
	conn    *nats.Conn
	subject string
}

func NewNATSDispatcher(conn *nats.Conn, subject string) *NATSDispatcher {
	return &NATSDispatcher{conn: conn, subject: subject}
}

func (d *NATSDispatcher) Dispatch(ctx context.Context, visit domain.Visit) bool {
	log := logger.FromContext(ctx)

	data, err := json.Marshal(envelope{
		RequestID: logger.RequestIDFromContext(ctx),
		Visit:     visit,
		SentAt:    time.Now().UTC(),
	})
	if err != nil {
		log.Error("failed to encode visit", "short_id", visit.ShortID, "error", err)
		return false
	}

	if err := d.conn.Publish(d.subject, data); err != nil {
		log.Warn("failed to publish visit", "short_id", visit.ShortID, "subject", d.subject, "error", err)
		return false
	}

	return true
}

// Close flushes buffered publishes. The connection itself belongs to the caller.
func (d *NATSDispatcher) Close(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return d.conn.Flush()
	}
	return d.conn.FlushWithContext(ctx)
}

// Subscribe joins queue on subject and feeds decoded visits to handle.
func Subscribe(conn *nats.Conn, subject, queue string, handle HandlerFunc, timeout time.Duration) (*nats.Subscription, error) {
	return conn.QueueSubscribe(subject, queue, MessageHandler(handle, timeout))
}

func MessageHandler(handle HandlerFunc, timeout time.Duration) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var env envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			logger.Get().Warn("discarding malformed visit message", "subject", msg.Subject, "error", err)
			return
		}

		ctx := context.Background()
		if env.RequestID != "" {
			ctx = logger.WithRequestID(ctx, env.RequestID)
		}

		run(ctx, handle, env.Visit, timeout)
	}
}

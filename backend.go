package mq

import (
	"context"
)

// ExchangeType represents a type of exchange.
type ExchangeType string

const (
	// ExchangeTypeDirect represents a direct exchange
	// this is where a message is posted to bound queues where the routing key matches exactly.
	ExchangeTypeDirect ExchangeType = "direct"
	// ExchangeTypeFanout represents a fanout exchange
	// this is where the routing key is ignored and all bound queues receive a copy of the message.
	ExchangeTypeFanout ExchangeType = "fanout"
	// ExchangeTypeTopic represents a topic exchange
	// this extends on top of a direct exchange by allowing the routing key to be pattern based rather
	// than having to match exactly.
	ExchangeTypeTopic ExchangeType = "topic"
	// ExchangeTypeHeaders represents a headers exchange
	// this is where one or more headers are used to route the message
	ExchangeTypeHeaders ExchangeType = "headers"
)

// ConsumerFunc is the callback invoked for each message dispatched to a
// registered consumer. The message has already been converted from the
// raw transport delivery.
type ConsumerFunc = func(Message)

// Backend represents a single logical channel to the broker.
//
// A channel is described as a lightweight connection which can be spawned from a single TCP
// connection source. A backend owns at most one channel, created lazily on first use; once a
// backend is closed it is never recreated. A backend is not safe for concurrent use, callers
// wanting parallel consumers are expected to create one backend per worker.
type Backend interface {
	// QueueExists probes the broker for a named queue without creating it.
	// A missing queue is reported as (false, nil), never as an error.
	QueueExists(ctx context.Context, queue string) (bool, error)
	// QueueDeclare attempts to declare a queue, returning the declare result.
	// When warnIfExists is set and the queue is already present, a non-fatal
	// advisory is logged; settings for pre-existing queues may be silently
	// ignored by the broker.
	QueueDeclare(ctx context.Context, name string, durable, exclusive, autoDelete, warnIfExists bool) (Queue, error)
	// ExchangeDeclare attempts to declare an exchange.
	ExchangeDeclare(ctx context.Context, name string, typ ExchangeType, durable, autoDelete bool) error
	// QueueBind attempts to bind a queue to an exchange under a routing key.
	// Binding the same queue multiple times with different keys is allowed.
	QueueBind(ctx context.Context, queue, exchange, routingKey string) error
	// QueuePurge discards all messages currently enqueued on the broker for
	// the queue, returning the number purged. Messages already delivered to
	// a consumer but unacked are unaffected.
	QueuePurge(ctx context.Context, queue string) (int, error)
	// QueueDelete removes a queue, returning the number of messages discarded.
	QueueDelete(ctx context.Context, queue string, ifUnused, ifEmpty bool) (int, error)
	// Qos sets the prefetch count and size for consumers on this channel.
	Qos(ctx context.Context, count, size int, global bool) error
	// Publish hands a prepared message to the broker for routing.
	// mandatory and immediate are broker-level routing guarantees, not local ones.
	Publish(ctx context.Context, msg Publishing, exchange, routingKey string, mandatory, immediate bool) error
	// Get performs a non-blocking single-message fetch. An empty queue is
	// reported as (nil, false, nil), never as an error.
	Get(ctx context.Context, queue string, noAck bool) (Message, bool, error)
	// DeclareConsumer registers fn as a consumer on the queue, returning the
	// consumer tag in use. An empty tag is replaced by a generated one. At
	// most one registration may be active per tag.
	DeclareConsumer(ctx context.Context, queue string, autoAck bool, fn ConsumerFunc, tag string, noWait bool) (string, error)
	// Consume drives the registered consumer callbacks, performing up to
	// limit blocking waits. Each completed wait emits one signal on the
	// returned channel; the channel is closed once the limit is reached,
	// ctx is done, or the backend closes. limit <= 0 means unbounded.
	Consume(ctx context.Context, limit int) (<-chan struct{}, error)
	// Cancel unregisters the named consumer. Calling Cancel when no channel
	// is open is a no-op, not an error. The consume loop does not terminate
	// on cancellation; it only stops dispatching for that tag.
	Cancel(ctx context.Context, tag string) error
	// Ack acknowledges one previously delivered message by delivery tag.
	Ack(tag uint64) error
	// Reject negatively acknowledges one message without requeueing it.
	Reject(tag uint64) error
	// Requeue negatively acknowledges one message, asking the broker to redeliver it.
	Requeue(tag uint64) error
	// Close releases the underlying channel. Close is idempotent; every
	// other operation on a closed backend fails.
	Close() error
}

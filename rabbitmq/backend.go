package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rabbitmq/amqp091-go"

	"github.com/queueops/mq"
)

// Backend implements the generic mq.Backend contract on top of a single
// amqp091 channel. The channel is created lazily on first use and never
// recreated once the backend is closed.
//
// A backend assumes external mutual exclusion: one goroutine drives one
// backend. Callers wanting parallel consumers create one backend per
// worker.
type Backend struct {
	mu sync.Mutex // guards channel, closed and consumers.

	conn *Connection
	log  *slog.Logger

	// dialChannel obtains a fresh raw channel from the connection. A field
	// rather than a direct call so tests can substitute the transport.
	dialChannel func() (amqp091Channel, error)

	channel amqp091Channel // the lazily created channel, nil until first use.
	closed  bool

	consumers  map[string]*registration
	deliveries chan amqp091.Delivery // merged stream of all consumer deliveries.
	done       chan struct{}         // closed once when the backend closes.
}

var _ mq.Backend = (*Backend)(nil)

// BackendOption configures optional backend behaviour.
type BackendOption func(*Backend)

// WithLogger sets the logger used for advisories and transport errors.
func WithLogger(log *slog.Logger) BackendOption {
	return func(b *Backend) {
		if log != nil {
			b.log = log
		}
	}
}

// NewBackend wraps a connection as an mq.Backend.
func NewBackend(conn *Connection, opts ...BackendOption) *Backend {
	b := &Backend{
		conn:       conn,
		log:        slog.Default(),
		consumers:  make(map[string]*registration),
		deliveries: make(chan amqp091.Delivery),
		done:       make(chan struct{}),
	}
	b.dialChannel = conn.channel

	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ensureChannel returns the backend's channel, creating it on first use.
// A closed backend never recreates its channel.
func (b *Backend) ensureChannel() (amqp091Channel, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, amqp091.ErrClosed
	}

	if b.channel != nil {
		return b.channel, nil
	}

	ch, err := b.dialChannel()
	if err != nil {
		return nil, err
	}

	b.channel = ch
	b.watchReturns(ch)
	return ch, nil
}

// onChannel helper function to perform an action on the raw amqp091 channel.
func (b *Backend) onChannel(ctx context.Context, fn func(ch amqp091Channel) error) error {
	ch, err := b.ensureChannel()
	if err != nil {
		return err
	}

	if err = fn(ch); err != nil {
		logError(ctx, b.log, err)
	}
	return err
}

// watchReturns logs publishes the broker could not route. mandatory and
// immediate are requests to the broker, a basic.return frame is the only
// signal that one was not honoured.
func (b *Backend) watchReturns(ch amqp091Channel) {
	returns := ch.NotifyReturn(make(chan amqp091.Return, 1))
	go func() {
		for r := range returns {
			b.log.Warn("message returned by broker",
				"code", r.ReplyCode,
				"reason", r.ReplyText,
				"exchange", r.Exchange,
				"routingKey", r.RoutingKey,
			)
		}
	}()
}

// QueueExists probes for a queue using a passive declare. A missing queue
// is reported as (false, nil), never as an error; any other channel fault
// propagates unchanged.
//
// The probe runs on a scratch channel: a channel-level not-found closes
// the channel it was raised on, which must not be the backend's own.
func (b *Backend) QueueExists(ctx context.Context, queue string) (bool, error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return false, amqp091.ErrClosed
	}

	ch, err := b.dialChannel()
	if err != nil {
		return false, err
	}

	if _, err = ch.QueueDeclarePassive(queue, false, false, false, false, nil); err != nil {
		// the broker closed the scratch channel with the fault already.
		if isNotFound(err) {
			return false, nil
		}
		logError(ctx, b.log, err)
		return false, err
	}

	logError(ctx, b.log, ch.Close())
	return true, nil
}

// QueueDeclare attempts to declare a queue, returning the declare result.
// With warnIfExists set, a queue which is already present is reported as a
// single non-fatal advisory before declaring as usual.
func (b *Backend) QueueDeclare(
	ctx context.Context,
	name string,
	durable, exclusive, autoDelete, warnIfExists bool,
) (mq.Queue, error) {
	if warnIfExists {
		exists, err := b.QueueExists(ctx, name)
		if err != nil {
			return mq.Queue{}, err
		}
		if exists {
			b.log.WarnContext(ctx, "queue already exists, recently changed settings such as the "+
				"routing key may be ignored unless the queue is renamed or the broker restarted",
				"queue", name,
			)
		}
	}

	var q amqp091.Queue
	err := b.onChannel(ctx, func(ch amqp091Channel) error {
		var qErr error
		q, qErr = ch.QueueDeclare(name, durable, autoDelete, exclusive, false, nil)
		return qErr
	})
	return mq.Queue{Name: q.Name, Messages: q.Messages, Consumers: q.Consumers}, err
}

// ExchangeDeclare attempts to declare an exchange.
func (b *Backend) ExchangeDeclare(ctx context.Context, name string, typ mq.ExchangeType, durable, autoDelete bool) error {
	return b.onChannel(ctx, func(ch amqp091Channel) error {
		return ch.ExchangeDeclare(name, string(typ), durable, autoDelete, false, false, nil)
	})
}

// QueueBind attempts to bind a queue to an exchange under a routing key.
// The same queue may be bound repeatedly under different keys.
func (b *Backend) QueueBind(ctx context.Context, queue, exchange, routingKey string) error {
	return b.onChannel(ctx, func(ch amqp091Channel) error {
		return ch.QueueBind(queue, routingKey, exchange, false, nil)
	})
}

// QueuePurge discards all messages currently held by the broker for the
// queue, returning the number purged. Messages already delivered to a
// consumer but not yet acked are unaffected.
func (b *Backend) QueuePurge(ctx context.Context, queue string) (int, error) {
	var n int
	err := b.onChannel(ctx, func(ch amqp091Channel) error {
		var pErr error
		n, pErr = ch.QueuePurge(queue, false)
		return pErr
	})
	return n, err
}

// QueueDelete removes a queue, returning the number of messages discarded
// with it.
func (b *Backend) QueueDelete(ctx context.Context, queue string, ifUnused, ifEmpty bool) (int, error) {
	var n int
	err := b.onChannel(ctx, func(ch amqp091Channel) error {
		var dErr error
		n, dErr = ch.QueueDelete(queue, ifUnused, ifEmpty, false)
		return dErr
	})
	return n, err
}

// Qos sets the prefetch count and size for consumers on this channel.
func (b *Backend) Qos(ctx context.Context, count, size int, global bool) error {
	return b.onChannel(ctx, func(ch amqp091Channel) error {
		return ch.Qos(count, size, global)
	})
}

// Publish hands a prepared message to the broker for routing. An empty
// content type is filled in by sniffing the body. mandatory and immediate
// are routing hints interpreted by the broker; an unroutable mandatory
// publish comes back on the return channel, see watchReturns.
func (b *Backend) Publish(ctx context.Context, msg mq.Publishing, exchange, routingKey string, mandatory, immediate bool) error {
	pub := amqp091.Publishing{
		Headers:         amqp091.Table(msg.Headers),
		ContentType:     msg.ContentType,
		ContentEncoding: msg.ContentEncoding,
		DeliveryMode:    uint8(msg.DeliveryMode),
		Priority:        msg.Priority,
		Body:            msg.Body,
	}

	if pub.ContentType == "" {
		pub.ContentType = mimetype.Detect(msg.Body).String()
	}

	return b.onChannel(ctx, func(ch amqp091Channel) error {
		return ch.PublishWithContext(ctx, exchange, routingKey, mandatory, immediate, pub)
	})
}

// Get performs a non-blocking single-message fetch. An empty queue is
// reported as (nil, false, nil), never as an error.
func (b *Backend) Get(ctx context.Context, queue string, noAck bool) (mq.Message, bool, error) {
	var (
		d  amqp091.Delivery
		ok bool
	)
	err := b.onChannel(ctx, func(ch amqp091Channel) error {
		var gErr error
		d, ok, gErr = ch.Get(queue, noAck)
		return gErr
	})

	if err != nil || !ok {
		return nil, false, err
	}
	return &message{backend: b, d: d}, true, nil
}

// DeclareConsumer registers fn as a consumer on the queue, returning the
// consumer tag in use. An empty tag is replaced by a generated one; a tag
// may have at most one active registration per backend.
func (b *Backend) DeclareConsumer(
	ctx context.Context,
	queue string,
	autoAck bool,
	fn mq.ConsumerFunc,
	tag string,
	noWait bool,
) (string, error) {
	if tag == "" {
		tag = generatedTag()
	}

	b.mu.Lock()
	if _, ok := b.consumers[tag]; ok {
		b.mu.Unlock()
		return "", fmt.Errorf("rabbitmq: consumer tag %q already registered", tag)
	}
	b.mu.Unlock()

	var dc <-chan amqp091.Delivery
	err := b.onChannel(ctx, func(ch amqp091Channel) error {
		var cErr error
		dc, cErr = ch.Consume(queue, tag, autoAck, false, false, noWait, nil)
		return cErr
	})
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	b.consumers[tag] = &registration{queue: queue, tag: tag, autoAck: autoAck, fn: fn}
	b.mu.Unlock()

	go b.forward(dc)
	return tag, nil
}

// forward merges one consumer's deliveries into the backend's shared
// stream, until either side shuts down.
func (b *Backend) forward(dc <-chan amqp091.Delivery) {
	for d := range dc {
		select {
		case b.deliveries <- d:
		case <-b.done:
			return
		}
	}
}

// Consume drives the registered consumer callbacks. Each iteration is one
// blocking wait on the transport; after a wait completes and its delivery
// is dispatched, one signal is emitted on the returned channel. The
// channel closes once limit waits have completed, ctx is done, or the
// backend closes.
//
// A limit of zero or below means unbounded; the loop then only stops via
// ctx or Close. Cancelling the only registered consumer does not stop the
// loop, callers guard against that with their own exit condition.
func (b *Backend) Consume(ctx context.Context, limit int) (<-chan struct{}, error) {
	if _, err := b.ensureChannel(); err != nil {
		return nil, err
	}

	progress := make(chan struct{})
	go func() {
		defer close(progress)
		for i := 0; limit <= 0 || i < limit; i++ {
			select {
			case <-ctx.Done():
				return
			case <-b.done:
				return
			case d := <-b.deliveries:
				b.dispatch(d)
				select {
				case progress <- struct{}{}:
				case <-ctx.Done():
					return
				case <-b.done:
					return
				}
			}
		}
	}()
	return progress, nil
}

// dispatch routes one delivery to its registered consumer. Deliveries for
// tags cancelled after the delivery was queued are dropped.
func (b *Backend) dispatch(d amqp091.Delivery) {
	b.mu.Lock()
	r, ok := b.consumers[d.ConsumerTag]
	b.mu.Unlock()
	if !ok {
		return
	}

	r.fn(&message{backend: b, d: d})
}

// Cancel unregisters the named consumer. Calling Cancel when no channel
// was ever opened, or after the backend closed, is a no-op rather than an
// error.
func (b *Backend) Cancel(ctx context.Context, tag string) error {
	b.mu.Lock()
	ch := b.channel
	if b.closed || ch == nil {
		b.mu.Unlock()
		return nil
	}
	delete(b.consumers, tag)
	b.mu.Unlock()

	err := ch.Cancel(tag, false)
	logError(ctx, b.log, err)
	return err
}

// Ack acknowledges one previously delivered message by delivery tag. A
// tag is only valid against the backend which issued it; anything else is
// answered by the broker with a channel fault.
func (b *Backend) Ack(tag uint64) error {
	ch, err := b.ensureChannel()
	if err != nil {
		return err
	}
	return ch.Ack(tag, false)
}

// Reject negatively acknowledges one message without requeueing it.
func (b *Backend) Reject(tag uint64) error {
	ch, err := b.ensureChannel()
	if err != nil {
		return err
	}
	return ch.Reject(tag, false)
}

// Requeue negatively acknowledges one message, asking the broker to
// redeliver it.
func (b *Backend) Requeue(tag uint64) error {
	ch, err := b.ensureChannel()
	if err != nil {
		return err
	}
	return ch.Reject(tag, true)
}

// Close releases the channel if one was opened. Closing is terminal: the
// backend never recreates its channel and every later operation except
// Close and Cancel fails.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}

	b.closed = true
	ch := b.channel
	b.channel = nil
	b.consumers = make(map[string]*registration)
	b.mu.Unlock()

	close(b.done)
	if ch == nil {
		return nil
	}
	return ch.Close()
}

package rabbitmq

import (
	"github.com/rabbitmq/amqp091-go"

	"github.com/queueops/mq"
)

// message implements the mq.Message envelope over a raw delivery. Fields
// the transport did not populate stay zero valued rather than failing.
type message struct {
	backend *Backend
	d       amqp091.Delivery
}

var _ mq.Message = (*message)(nil)

// Body returns the opaque message payload.
func (m *message) Body() []byte { return m.d.Body }

// ContentType returns the MIME content type, if supplied.
func (m *message) ContentType() string { return m.d.ContentType }

// ContentEncoding returns the content encoding, if supplied.
func (m *message) ContentEncoding() string { return m.d.ContentEncoding }

// DeliveryTag returns the broker-assigned correlation tag.
func (m *message) DeliveryTag() uint64 { return m.d.DeliveryTag }

// Exchange returns the exchange the message was published to.
func (m *message) Exchange() string { return m.d.Exchange }

// RoutingKey returns the routing key the message was published with.
func (m *message) RoutingKey() string { return m.d.RoutingKey }

// Redelivered whether the message has been redelivered previously.
func (m *message) Redelivered() bool { return m.d.Redelivered }

// Ack acknowledges the message on the backend which issued it.
func (m *message) Ack() error { return m.backend.Ack(m.d.DeliveryTag) }

// Reject negatively acknowledges the message without requeueing it.
func (m *message) Reject() error { return m.backend.Reject(m.d.DeliveryTag) }

// Requeue negatively acknowledges the message, asking for redelivery.
func (m *message) Requeue() error { return m.backend.Requeue(m.d.DeliveryTag) }

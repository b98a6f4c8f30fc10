package mq

// DeliveryMode describes the persistence of an outbound message.
type DeliveryMode uint8

const (
	// Transient means the broker may keep the message in memory only.
	Transient DeliveryMode = 1
	// Persistent asks the broker to write the message to disk on durable queues.
	Persistent DeliveryMode = 2
)

// Publishing represents an outbound message prepared for Backend.Publish.
type Publishing struct {
	Body            []byte
	DeliveryMode    DeliveryMode
	Priority        uint8
	ContentType     string
	ContentEncoding string
	Headers         map[string]interface{}
}

// Queue represents the result of declaring a queue.
type Queue struct {
	Name      string
	Messages  int
	Consumers int
}

// Message represents an inbound message envelope. It is immutable after
// construction; fields the transport did not supply are empty rather
// than an error.
type Message interface {
	// Body returns the opaque message payload.
	Body() []byte
	// ContentType returns the MIME content type, if supplied.
	ContentType() string
	// ContentEncoding returns the content encoding, if supplied.
	ContentEncoding() string
	// DeliveryTag returns the broker-assigned tag correlating this message
	// to the ack/reject operations on the backend which issued it. Using it
	// against a different or closed backend fails.
	DeliveryTag() uint64
	// Exchange returns the exchange the message was published to.
	Exchange() string
	// RoutingKey returns the routing key the message was published with.
	RoutingKey() string
	// Redelivered whether the message has been redelivered previously.
	Redelivered() bool

	// Ack acknowledges the message on its issuing backend.
	Ack() error
	// Reject negatively acknowledges the message without requeueing.
	Reject() error
	// Requeue negatively acknowledges the message, asking for redelivery.
	Requeue() error
}

package rabbitmq

import (
	"errors"

	"github.com/rabbitmq/amqp091-go"

	"github.com/queueops/mq"
)

// brokerError represents a wrapped amqp091.Error
type brokerError struct {
	*amqp091.Error
}

// Code returns the AMQP error code.
func (e *brokerError) Code() int {
	return e.Error.Code
}

// Reason returns the error description
func (e *brokerError) Reason() string {
	return e.Error.Reason
}

// Recover whether the error is recoverable.
func (e *brokerError) Recover() bool {
	return e.Error.Recover
}

// FromServer whether the fault originated from the client or server.
func (e *brokerError) FromServer() bool {
	return e.Error.Server
}

// AsBrokerError reports whether err carries a broker error frame,
// returning it behind the generic error interface when it does.
func AsBrokerError(err error) (mq.Error, bool) {
	var ae *amqp091.Error
	if !errors.As(err, &ae) {
		return nil, false
	}
	return &brokerError{ae}, true
}

// isNotFound reports whether err is the channel-level not-found reply.
func isNotFound(err error) bool {
	var ae *amqp091.Error
	return errors.As(err, &ae) && ae.Code == amqp091.NotFound
}

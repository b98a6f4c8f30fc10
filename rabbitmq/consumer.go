package rabbitmq

import (
	"github.com/google/uuid"

	"github.com/queueops/mq"
)

// registration represents one active consumer on a backend, keyed by its
// consumer tag. It lives from DeclareConsumer until Cancel or Close.
type registration struct {
	queue   string
	tag     string
	autoAck bool
	fn      mq.ConsumerFunc
}

// generatedTag produces a unique consumer tag for registrations which did
// not supply one. A generated tag is returned to the caller so the
// registration can still be cancelled.
func generatedTag() string {
	return "ctag-" + uuid.NewString()
}

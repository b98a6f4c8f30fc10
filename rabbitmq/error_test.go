package rabbitmq

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerError_Code(t *testing.T) {
	assert.Equal(t, 1, (&brokerError{&amqp091.Error{Code: 1}}).Code())
}

func TestBrokerError_FromServer(t *testing.T) {
	assert.True(t, (&brokerError{&amqp091.Error{Server: true}}).FromServer())
}

func TestBrokerError_Reason(t *testing.T) {
	assert.Equal(t, "unexpected error", (&brokerError{&amqp091.Error{Reason: "unexpected error"}}).Reason())
}

func TestBrokerError_Recover(t *testing.T) {
	assert.False(t, (&brokerError{&amqp091.Error{Recover: false}}).Recover())
}

func TestAsBrokerError(t *testing.T) {
	tt := []struct {
		Name     string
		Err      error
		Expected func(t *testing.T, e interface{ Code() int }, ok bool)
	}{
		{
			Name: "Direct",
			Err:  &amqp091.Error{Code: amqp091.PreconditionFailed},
			Expected: func(t *testing.T, e interface{ Code() int }, ok bool) {
				require.True(t, ok)
				assert.Equal(t, amqp091.PreconditionFailed, e.Code())
			},
		},
		{
			Name: "Wrapped",
			Err:  fmt.Errorf("publishing: %w", &amqp091.Error{Code: amqp091.NotFound}),
			Expected: func(t *testing.T, e interface{ Code() int }, ok bool) {
				require.True(t, ok)
				assert.Equal(t, amqp091.NotFound, e.Code())
			},
		},
		{
			Name: "NotABrokerError",
			Err:  errors.New("net: i/o timeout"),
			Expected: func(t *testing.T, e interface{ Code() int }, ok bool) {
				assert.False(t, ok)
				assert.Nil(t, e)
			},
		},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			e, ok := AsBrokerError(tc.Err)
			tc.Expected(t, e, ok)
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&amqp091.Error{Code: amqp091.NotFound}))
	assert.True(t, isNotFound(fmt.Errorf("probe: %w", &amqp091.Error{Code: amqp091.NotFound})))
	assert.False(t, isNotFound(&amqp091.Error{Code: amqp091.AccessRefused}))
	assert.False(t, isNotFound(errors.New("net: i/o timeout")))
	assert.False(t, isNotFound(nil))
}

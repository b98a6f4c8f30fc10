package rabbitmq

import (
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/queueops/mq"
)

// helper types exposed from the underlined SDK package.

type (
	Config         = amqp091.Config
	Authentication = amqp091.Authentication
	PlainAuth      = amqp091.PlainAuth
)

// DefaultPort is the broker port used when ConnectionInfo.Port is unset.
const DefaultPort = 5672

// ConnectionInfo describes one logical broker connection. It is owned by
// the caller and consumed once when dialling.
type ConnectionInfo struct {
	Host     string
	Port     int
	Username string
	Password string
	// VirtualHost is the broker namespace to operate in, the broker
	// default ("/") when empty.
	VirtualHost string
	// TLS dials the broker over amqps instead of amqp.
	TLS bool
	// Insist asked early brokers not to redirect the connection. The
	// protocol no longer carries it; the field is retained so existing
	// configuration keeps decoding and has no effect.
	Insist bool
	// ConnectTimeout bounds the initial dial. The transport default
	// applies when zero.
	ConnectTimeout time.Duration
}

// url builds the broker address. Credentials are handed over via SASL
// rather than embedded in the address.
func (i ConnectionInfo) url() string {
	scheme := "amqp"
	if i.TLS {
		scheme = "amqps"
	}

	port := i.Port
	if port == 0 {
		port = DefaultPort
	}

	return fmt.Sprintf("%s://%s:%d", scheme, i.Host, port)
}

// config builds the amqp091 config for the connection.
func (i ConnectionInfo) config() Config {
	c := Config{Vhost: i.VirtualHost}
	if i.Username != "" {
		c.SASL = []Authentication{&PlainAuth{
			Username: i.Username,
			Password: i.Password,
		}}
	}

	if i.ConnectTimeout > 0 {
		c.Dial = amqp091.DefaultDial(i.ConnectTimeout)
	}
	return c
}

// Connection wraps a single amqp091.Connection. It is the opaque handle
// backends spawn their channel from; it is exclusively owned by the
// caller and carries no reconnection logic, a closed connection stays
// closed.
type Connection struct {
	mu     sync.RWMutex // variable guard.
	closed bool         // whether the connection is closed.

	conn amqp091Connection // the connection.
}

var _ mq.Connection = (*Connection)(nil)

// Dial attempts to connect to the broker described by info.
func Dial(info ConnectionInfo) (*Connection, error) {
	conn, err := dialConfig(info.url(), info.config())
	if err != nil {
		return nil, err
	}

	return &Connection{conn: conn}, nil
}

// Close tears the connection down, and with it every channel spawned
// from it. Close is idempotent.
func (c *Connection) Close() error {
	if c.IsClosed() {
		return nil // already closed.
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	return c.conn.Close()
}

// IsClosed wraps the original IsClosed function.
func (c *Connection) IsClosed() bool {
	if c == nil {
		return true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return true
	}

	return c.conn == nil || c.conn.IsClosed()
}

// channel spawns a raw channel from the connection.
func (c *Connection) channel() (amqp091Channel, error) {
	if c.IsClosed() {
		return nil, amqp091.ErrClosed
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

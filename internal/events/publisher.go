// Package events publishes concluded match results to NATS.
package events

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"

	"geisha-game/internal/game"
)

// Publisher sends one message per concluded match on <prefix>.<reason>.
type Publisher struct {
	conn   *nats.Conn
	prefix string
}

// Connect dials the NATS server at url.
func Connect(url, prefix string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("geisha-server"),
		nats.MaxReconnects(10),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	log.Printf("Publishing match results to NATS %s under %s.*", nc.ConnectedUrl(), prefix)
	return &Publisher{conn: nc, prefix: prefix}, nil
}

// Subject returns the subject a result is published on.
func Subject(prefix string, r game.Result) string {
	return prefix + "." + r.Reason
}

// Encode returns the message body for a result.
func Encode(r game.Result) ([]byte, error) {
	return json.Marshal(r)
}

func (p *Publisher) Publish(r game.Result) error {
	data, err := Encode(r)
	if err != nil {
		return fmt.Errorf("encode result %s: %w", r.MatchID, err)
	}
	if err := p.conn.Publish(Subject(p.prefix, r), data); err != nil {
		return fmt.Errorf("publish result %s: %w", r.MatchID, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() error {
	return p.conn.Drain()
}

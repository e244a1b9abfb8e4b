// Package natssrc consumes the evaluation event stream from a NATS subject.
package natssrc

import (
	"context"
	"io"

	"github.com/nats-io/nats.go"

	"github.com/programme-lv/aggregator/api"
)

type Source struct {
	sub  *nats.Subscription
	msgs chan *nats.Msg
}

// New subscribes to the given subject. The producer serializes events into
// one ordered stream per evaluation; this source only decodes.
func New(nc *nats.Conn, subject string) (*Source, error) {
	msgs := make(chan *nats.Msg, 1024)
	sub, err := nc.ChanSubscribe(subject, msgs)
	if err != nil {
		return nil, err
	}
	return &Source{sub: sub, msgs: msgs}, nil
}

// Next returns the next event. It returns io.EOF after Close, and the
// context error if ctx ends first.
func (s *Source) Next(ctx context.Context) (api.Event, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-s.msgs:
		if !ok {
			return nil, io.EOF
		}
		return api.Decode(msg.Data)
	}
}

// Close unsubscribes and ends the stream.
func (s *Source) Close() error {
	err := s.sub.Unsubscribe()
	close(s.msgs)
	return err
}

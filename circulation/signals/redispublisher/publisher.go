// Package redispublisher forwards circulation signals to Redis pub/sub channels,
// one channel per signal kind, e.g. "circulation:item_at_desk".
package redispublisher

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/AntonStoeckl/library-circulation/circulation/signals"
)

// DefaultChannelPrefix is prepended to the signal kind to form the channel name.
const DefaultChannelPrefix = "circulation"

var (
	ErrNilClient      = errors.New("redis client must not be nil")
	ErrEncodingFailed = errors.New("encoding signal failed")
	ErrPublishFailed  = errors.New("publishing signal failed")
)

// Publisher is a signals.Subscriber publishing every signal as JSON.
type Publisher struct {
	client        *redis.Client
	channelPrefix string
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithChannelPrefix replaces DefaultChannelPrefix.
func WithChannelPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.channelPrefix = prefix
	}
}

func NewPublisher(client *redis.Client, options ...Option) (*Publisher, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	p := &Publisher{
		client:        client,
		channelPrefix: DefaultChannelPrefix,
	}

	for _, option := range options {
		option(p)
	}

	return p, nil
}

// Channel returns the channel a signal of the given kind is published to.
func (p *Publisher) Channel(kind signals.Kind) string {
	return p.channelPrefix + ":" + string(kind)
}

func (p *Publisher) Deliver(ctx context.Context, signal signals.Signal) error {
	payload, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(signal)
	if err != nil {
		return errors.Join(ErrEncodingFailed, err)
	}

	if err = p.client.Publish(ctx, p.Channel(signal.Kind), payload).Err(); err != nil {
		return errors.Join(ErrPublishFailed, fmt.Errorf("channel %s: %w", p.Channel(signal.Kind), err))
	}

	return nil
}

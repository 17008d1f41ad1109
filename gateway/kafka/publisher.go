package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ecociel/calcagent/domain"
	"github.com/ecociel/calcagent/lib/kafkaclient"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer defines the part of kgo.Client the publisher relies on.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type Publisher struct {
	client Producer
}

func New(client Producer) *Publisher {
	return &Publisher{client: client}
}

// Dial opens a new producer client and checks that a broker answers.
// The caller owns the returned Publisher and must Close it.
func Dial(ctx context.Context, cfg kafkaclient.Config, logger *slog.Logger) (*Publisher, error) {
	client, err := kafkaclient.NewProducer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create producer: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping brokers: %w", err)
	}
	return New(client), nil
}

func (p *Publisher) PublishSync(ctx context.Context, topic string, value []byte) error {
	record := eventToRec(topic, value)
	if err := p.client.ProduceSync(ctx, &record).FirstErr(); err != nil {
		return fmt.Errorf("publish event to %s: %w", topic, err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Close()
}

func eventToRec(topic string, value []byte) (rec kgo.Record) {
	rec.Topic = topic
	rec.Value = value
	rec.Headers = []kgo.RecordHeader{
		{Key: domain.HeaderEventType, Value: []byte(domain.EventTypeTriggerAction)},
		{Key: domain.HeaderContentType, Value: []byte(domain.ContentTypeJSON)},
	}
	return
}

// IsPermanent reports whether err is a broker error that franz-go marks
// as not retriable, such as failed authentication or authorization.
func IsPermanent(err error) bool {
	var ke *kerr.Error
	if errors.As(err, &ke) {
		return !ke.Retriable
	}
	return false
}

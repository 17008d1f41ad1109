package kafkaclient

import (
	"crypto/tls"
	"errors"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"github.com/twmb/franz-go/plugin/kslog"
)

var ErrNoBrokers = errors.New("no seed brokers configured")

type Config struct {
	HostPorts       []string
	ClientID        string
	DeliveryTimeout time.Duration
	SASLUser        string
	SASLPassword    string
	TLS             bool
}

// NewProducer creates a produce-only client. No connection is opened
// until the first request.
func NewProducer(cfg Config, logger *slog.Logger) (*kgo.Client, error) {
	if len(cfg.HostPorts) == 0 {
		return nil, ErrNoBrokers
	}
	return kgo.NewClient(options(cfg, logger)...)
}

func options(cfg Config, logger *slog.Logger) []kgo.Opt {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.HostPorts...),
		kgo.AllowAutoTopicCreation(),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	if cfg.DeliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(cfg.DeliveryTimeout))
	}
	if cfg.SASLUser != "" {
		opts = append(opts, kgo.SASL(plain.Auth{User: cfg.SASLUser, Pass: cfg.SASLPassword}.AsMechanism()))
	}
	if cfg.TLS {
		opts = append(opts, kgo.DialTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12}))
	}
	if logger != nil {
		opts = append(opts, kgo.WithLogger(kslog.New(logger)))
	}
	return opts
}

// task-publisher sends the calculation task to the agent topic and exits
// 0 once it was published, 1 when every attempt failed and 2 on a usage
// or configuration error.
//
// Usage: task-publisher [topic]
//
// Broker settings come from the environment, see Config.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/pflag"

	"github.com/ecociel/calcagent/domain"
	"github.com/ecociel/calcagent/gateway/kafka"
	"github.com/ecociel/calcagent/lib/kafkaclient"
	"github.com/ecociel/calcagent/metrics"
	"github.com/ecociel/calcagent/runner"
)

type Config struct {
	QueueHostPorts   []string      `required:"true" split_words:"true"`
	ClientId         string        `default:"task-publisher" split_words:"true"`
	MaxAttempts      int           `default:"10" split_words:"true"`
	RetryDelay       time.Duration `default:"1s" split_words:"true"`
	WarmUp           time.Duration `default:"5s" split_words:"true"`
	DeliveryTimeout  time.Duration `default:"10s" split_words:"true"`
	SaslUser         string        `split_words:"true"`
	SaslPassword     string        `split_words:"true"`
	Tls              bool
	AbortOnPermanent bool   `split_words:"true"`
	MetricsPushUrl   string `split_words:"true"`
	Debug            bool
}

// exitError carries the process exit code for main.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
func (e *exitError) ExitCode() int { return e.code }

func usage(format string, args ...any) error {
	return &exitError{code: 2, err: fmt.Errorf(format, args...)}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func parseTopic(args []string) (string, error) {
	flagSet := pflag.NewFlagSet("task-publisher", pflag.ContinueOnError)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return "", err
		}
		return "", usage("%v", err)
	}
	switch flagSet.NArg() {
	case 0:
		return domain.DefaultTopic, nil
	case 1:
		return flagSet.Arg(0), nil
	default:
		return "", usage("unexpected argument: %s", flagSet.Arg(1))
	}
}

func loadConfig() (Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return config, usage("load config: %v", err)
	}
	if len(config.QueueHostPorts) == 0 {
		return config, usage("QUEUE_HOST_PORTS must name at least one broker")
	}
	if config.MaxAttempts < 1 {
		return config, usage("MAX_ATTEMPTS must be at least 1, got %d", config.MaxAttempts)
	}
	return config, nil
}

func run(args []string) error {
	topic, err := parseTopic(args)
	if err != nil {
		return err
	}
	config, err := loadConfig()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if config.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With("service", "task-publisher")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	opts := []runner.Option{
		runner.WithMaxAttempts(config.MaxAttempts),
		runner.WithRetryDelay(config.RetryDelay),
		runner.WithWarmUp(config.WarmUp),
		runner.WithLogger(logger),
		runner.WithMetrics(metrics.NewPromMetrics(reg)),
	}
	if config.AbortOnPermanent {
		opts = append(opts, runner.WithAbortOn(kafka.IsPermanent))
	}

	r := runner.New(dialer(config, logger), topic, opts...)
	runErr := r.Run(ctx, domain.NewTaskMessage())

	if config.MetricsPushUrl != "" {
		if err := push.New(config.MetricsPushUrl, "task_publisher").Gatherer(reg).Push(); err != nil {
			logger.Warn("push metrics", "url", config.MetricsPushUrl, "err", err)
		}
	}

	if runErr != nil {
		return &exitError{code: 1, err: runErr}
	}
	return nil
}

func dialer(config Config, logger *slog.Logger) runner.Connector {
	cfg := kafkaclient.Config{
		HostPorts:       config.QueueHostPorts,
		ClientID:        config.ClientId,
		DeliveryTimeout: config.DeliveryTimeout,
		SASLUser:        config.SaslUser,
		SASLPassword:    config.SaslPassword,
		TLS:             config.Tls,
	}
	return func(ctx context.Context) (runner.Connection, error) {
		pub, err := kafka.Dial(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return pub, nil
	}
}

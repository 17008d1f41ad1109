// calculator-api serves add, subtract, multiply and divide over HTTP,
// together with a health probe, the OpenAPI document the calculator
// agent discovers its tools from, and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"

	"github.com/ecociel/calcagent/gateway/rest"
	"github.com/ecociel/calcagent/metrics"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	host        string
	port        int
	description string
	debug       bool
}

func parseFlags(args []string) (options, error) {
	var opts options

	flagSet := pflag.NewFlagSet("calculator-api", pflag.ContinueOnError)
	flagSet.StringVar(&opts.host, "host", "127.0.0.1", "host to run the server on")
	flagSet.IntVar(&opts.port, "port", 8000, "port to run the server on")
	flagSet.StringVar(&opts.description, "description", "Calculator API Service", "description for the API")
	flagSet.BoolVar(&opts.debug, "debug", false, "enable debug mode")

	if err := flagSet.Parse(args); err != nil {
		return opts, err
	}
	if flagSet.NArg() > 0 {
		return opts, fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}
	return opts, nil
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With("service", "calculator-api")

	restful.SetLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	if opts.debug {
		restful.TraceLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
		logger.Debug("debug mode enabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := rest.NewCalculatorService(logger, metrics.NewPromMetrics(reg))
	container := rest.NewContainer(rest.Config{
		Host:        opts.host,
		Port:        opts.port,
		Description: opts.description,
	}, svc, reg, logger)

	server := &http.Server{
		Addr:              net.JoinHostPort(opts.host, strconv.Itoa(opts.port)),
		Handler:           container,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

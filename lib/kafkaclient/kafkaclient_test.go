package kafkaclient

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestNewProducer_NoBrokers(t *testing.T) {
	client, err := NewProducer(Config{}, nil)
	if !errors.Is(err, ErrNoBrokers) {
		t.Fatalf("expected ErrNoBrokers, got %v", err)
	}
	if client != nil {
		t.Error("expected nil client")
	}
}

func TestNewProducer_DoesNotDial(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := NewProducer(Config{
		HostPorts:       []string{"127.0.0.1:1"},
		ClientID:        "test",
		DeliveryTimeout: time.Second,
		SASLUser:        "user",
		SASLPassword:    "secret",
	}, logger)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	client.Close()
}

func TestOptions(t *testing.T) {
	base := options(Config{HostPorts: []string{"localhost:9092"}}, nil)
	if len(base) != 2 {
		t.Errorf("expected 2 base options, got %d", len(base))
	}

	full := options(Config{
		HostPorts:       []string{"localhost:9092"},
		ClientID:        "task-publisher",
		DeliveryTimeout: 10 * time.Second,
		SASLUser:        "user",
		TLS:             true,
	}, slog.Default())
	if len(full) != 7 {
		t.Errorf("expected 7 options, got %d", len(full))
	}
}

package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ecociel/calcagent/domain"
	"github.com/ecociel/calcagent/lib/kafkaclient"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// mockClient mocks kgo.Client for testing
type mockClient struct {
	produceErr   error
	lastRecord   *kgo.Record
	produceCalls int
	closeCalls   int
}

func (m *mockClient) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	m.produceCalls++
	if len(rs) > 0 {
		m.lastRecord = rs[0]
	}

	if m.produceErr != nil {
		return kgo.ProduceResults{
			{
				Err: m.produceErr,
			},
		}
	}
	return kgo.ProduceResults{}
}

func (m *mockClient) Close() {
	m.closeCalls++
}

func TestPublishSync_Success(t *testing.T) {
	mock := &mockClient{}
	pub := New(mock)

	value := []byte(`{"task":"2 + 2"}`)
	err := pub.PublishSync(context.Background(), "agent-topic", value)

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if mock.produceCalls != 1 {
		t.Fatalf("expected 1 produce call, got: %d", mock.produceCalls)
	}

	rec := mock.lastRecord
	if rec.Topic != "agent-topic" {
		t.Errorf("expected topic agent-topic, got %s", rec.Topic)
	}
	if rec.Key != nil {
		t.Errorf("expected nil key, got %q", rec.Key)
	}
	if string(rec.Value) != string(value) {
		t.Errorf("expected value %s, got %s", value, rec.Value)
	}

	if len(rec.Headers) != 2 {
		t.Fatalf("expected 2 headers, got %d", len(rec.Headers))
	}
	headerMap := make(map[string]string)
	for _, h := range rec.Headers {
		headerMap[h.Key] = string(h.Value)
	}
	if headerMap[domain.HeaderEventType] != domain.EventTypeTriggerAction {
		t.Errorf("expected event type %s, got %q", domain.EventTypeTriggerAction, headerMap[domain.HeaderEventType])
	}
	if headerMap[domain.HeaderContentType] != domain.ContentTypeJSON {
		t.Errorf("expected content type %s, got %q", domain.ContentTypeJSON, headerMap[domain.HeaderContentType])
	}
}

func TestPublishSync_Error(t *testing.T) {
	expectedErr := errors.New("kafka connection failed")
	mock := &mockClient{produceErr: expectedErr}
	pub := New(mock)

	err := pub.PublishSync(context.Background(), "agent-topic", []byte(`{}`))

	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error to be %v, got %v", expectedErr, err)
	}

	if mock.produceCalls != 1 {
		t.Errorf("expected 1 produce call, got: %d", mock.produceCalls)
	}
}

func TestPublishSync_ContextCancellation(t *testing.T) {
	mock := &mockClient{produceErr: context.Canceled}
	pub := New(mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pub.PublishSync(ctx, "agent-topic", []byte(`{}`))

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled error, got %v", err)
	}
}

func TestClose(t *testing.T) {
	mock := &mockClient{}
	New(mock).Close()

	if mock.closeCalls != 1 {
		t.Errorf("expected 1 close call, got %d", mock.closeCalls)
	}
}

func TestEventToRec_SameBytesEveryTime(t *testing.T) {
	value := []byte(`{"task":"x"}`)

	first := eventToRec("t", value)
	second := eventToRec("t", value)

	if string(first.Value) != string(second.Value) {
		t.Errorf("expected identical values, got %s and %s", first.Value, second.Value)
	}
	if len(first.Headers) != len(second.Headers) {
		t.Errorf("expected identical header count")
	}
}

func TestDial_NoBrokers(t *testing.T) {
	_, err := Dial(context.Background(), kafkaclient.Config{}, nil)
	if !errors.Is(err, kafkaclient.ErrNoBrokers) {
		t.Errorf("expected ErrNoBrokers, got %v", err)
	}
}

func TestIsPermanent(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("dial tcp: connection refused"), false},
		{"sasl", kerr.SaslAuthenticationFailed, true},
		{"topic authorization", fmt.Errorf("publish event to t: %w", kerr.TopicAuthorizationFailed), true},
		{"not leader", kerr.NotLeaderForPartition, false},
		{"context", context.DeadlineExceeded, false},
	}

	for _, c := range cases {
		if got := IsPermanent(c.err); got != c.want {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}
}

package notify

import (
	"context"
	"errors"
	"testing"
)

type stubSink struct {
	id    string
	typ   string
	err   error
	calls int
}

func (s *stubSink) ID() string   { return s.id }
func (s *stubSink) Type() string { return s.typ }
func (s *stubSink) Deliver(context.Context, Event) error {
	s.calls++
	return s.err
}

func TestFanoutDeliverAggregatesErrors(t *testing.T) {
	fanout := NewFanout([]Sink{
		&stubSink{id: "ok", typ: "http"},
		&stubSink{id: "bad", typ: "http", err: errors.New("failed")},
	})

	count, err := fanout.Deliver(context.Background(), NewCacheFlushedEvent(""))
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
}

func TestFanoutDeliversToAllSinks(t *testing.T) {
	a := &stubSink{id: "a", typ: "http"}
	b := &stubSink{id: "b", typ: "sqs"}
	fanout := NewFanout([]Sink{a, b, nil})

	if fanout.Size() != 2 {
		t.Fatalf("expected nil sink dropped, size = %d", fanout.Size())
	}

	count, err := fanout.Deliver(context.Background(), NewCacheFlushedEvent("news:page=1"))
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if count != 2 || a.calls != 1 || b.calls != 1 {
		t.Fatalf("expected both sinks called once, count=%d a=%d b=%d", count, a.calls, b.calls)
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	sinks, err := BuildAll(context.Background(), reg, []SinkConfig{
		{ID: "hook", Type: TypeHTTP, HTTP: &HTTPSinkConfig{URL: "https://example.com"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(sinks) != 1 {
		t.Fatalf("expected 1 sink, got %d", len(sinks))
	}
}

package bootstrap

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"govengine/contexts/governance/proposal-engine/adapters/memory"
	"govengine/internal/platform/config"
	"govengine/internal/platform/messaging"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRelaySetPublishesToBusLast(t *testing.T) {
	client, err := messaging.NewRedisClient("redis://127.0.0.1:6379/0")
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer client.Close()

	store := memory.NewStore()
	relays := newRelaySet(config.Default(), store, store, client, discardLogger())

	fanout, ok := relays.outbox.Publisher.(messaging.Fanout)
	if !ok {
		t.Fatalf("expected a fanout publisher, got %T", relays.outbox.Publisher)
	}
	if len(fanout) != 2 {
		t.Fatalf("expected redis and bus publishers, got %d", len(fanout))
	}
	if _, ok := fanout[0].(*messaging.RedisStream); !ok {
		t.Fatalf("expected redis stream first, got %T", fanout[0])
	}
	bus, ok := fanout[1].(*messaging.Bus)
	if !ok {
		t.Fatalf("expected bus last, got %T", fanout[1])
	}
	if subscriber, _ := relays.execution.Subscriber.(*messaging.Bus); subscriber != bus {
		t.Fatalf("execution relay must consume from the same bus")
	}
}

func TestRelaySetWithoutRedisUsesBusOnly(t *testing.T) {
	store := memory.NewStore()
	relays := newRelaySet(config.Default(), store, store, nil, discardLogger())

	fanout := relays.outbox.Publisher.(messaging.Fanout)
	if len(fanout) != 1 {
		t.Fatalf("expected only the bus, got %d publishers", len(fanout))
	}
	if _, ok := fanout[0].(*messaging.Bus); !ok {
		t.Fatalf("expected bus, got %T", fanout[0])
	}
	if relays.interval != time.Second {
		t.Fatalf("expected default interval, got %s", relays.interval)
	}
}

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9090": ":9090", ":7000": ":7000", " 81 ": ":81"}
	for in, want := range cases {
		if got := normalizeAddr(in); got != want {
			t.Fatalf("normalizeAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

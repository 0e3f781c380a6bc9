package db

import (
	"context"
	"testing"
	"time"
)

func TestConnectRequiresDSN(t *testing.T) {
	if _, err := Connect("", Options{}); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	got := Options{MaxOpenConns: 4, MaxIdleConns: 10}.withDefaults()
	if got.MaxOpenConns != 4 {
		t.Fatalf("expected explicit max open conns to be kept, got %d", got.MaxOpenConns)
	}
	if got.MaxIdleConns != 4 {
		t.Fatalf("expected idle conns capped at max open, got %d", got.MaxIdleConns)
	}
	if got.ConnMaxLifetime != 30*time.Minute || got.PingTimeout != 5*time.Second {
		t.Fatalf("expected default lifetime and ping timeout, got %+v", got)
	}
}

func TestNilPostgresIsNotReady(t *testing.T) {
	var pg *Postgres
	if err := pg.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping on nil handle to fail")
	}
	if err := pg.Close(); err != nil {
		t.Fatalf("close on nil handle: %v", err)
	}
}

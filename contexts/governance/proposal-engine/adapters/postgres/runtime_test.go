package postgresadapter

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSystemClockMatchesTimestamptzPrecision(t *testing.T) {
	now := SystemClock{}.Now()
	if now.Location() != time.UTC {
		t.Fatalf("expected UTC, got %s", now.Location())
	}
	if now.Nanosecond()%int(time.Microsecond) != 0 {
		t.Fatalf("expected microsecond precision, got %d ns", now.Nanosecond())
	}
}

func TestUUIDGeneratorIssuesVersion7(t *testing.T) {
	first, err := UUIDGenerator{}.NewID(context.Background())
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	parsed, err := uuid.Parse(first)
	if err != nil {
		t.Fatalf("parse %q: %v", first, err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("expected version 7, got %d", parsed.Version())
	}
	second, _ := UUIDGenerator{}.NewID(context.Background())
	if second == first {
		t.Fatalf("expected distinct ids")
	}
}

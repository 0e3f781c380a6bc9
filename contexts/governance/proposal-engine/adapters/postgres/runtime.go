package postgresadapter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SystemClock reads wall time at the precision timestamptz stores, so a value
// read back from the database compares equal to the one that was written.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// UUIDGenerator issues UUIDv7 ids. They sort by creation time, which keeps
// outbox and vote primary keys roughly append-ordered in their indexes.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

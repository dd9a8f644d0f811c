package repository

import (
	"context"

	"ecogw/internal/domain/models"
)

// SignalSource performs the network round trip(s) of one provider and returns the raw payload.
type SignalSource interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// SignalDecoder maps a raw provider payload to daily signals. Pure: no state, no I/O.
type SignalDecoder func(payload []byte) ([]models.DailySignal, error)

// SignalFetcher returns the decoded signals of one provider, or a categorized failure.
type SignalFetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]models.DailySignal, error)
}

// RegisterStore is the shared register table as seen by producers and consumers.
type RegisterStore interface {
	Read(start, count uint16) ([]uint16, error)
	WriteBatch(values map[uint16]models.RegisterValue) error
}

// Publisher forwards freshly written windows to downstream consumers.
type Publisher interface {
	PublishWindow(ctx context.Context, w models.SignalWindow) error
	Close() error
}

type Metrics interface {
	RecordJobRun(job, outcome string)
	RecordFetchFailure(job, kind string)
	RecordFetchLatency(job string, seconds float64)
	RecordSignal(job string, day int, value uint16)
	RecordRegisterRead(result string)
}

package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"ecogw/internal/domain/models"
	"ecogw/internal/domain/repository"
	applogger "ecogw/pkg/logger"
)

const defaultFetchTimeout = 30 * time.Second

// Run outcomes, used as the metrics label.
const (
	OutcomeOK         = "ok"
	OutcomeFetchError = "fetch_error"
	OutcomeWriteError = "write_error"
)

// PollingJobOption configures PollingJob.
type PollingJobOption func(*PollingJob)

// WithFetchTimeout bounds each fetch.
func WithFetchTimeout(d time.Duration) PollingJobOption {
	return func(j *PollingJob) {
		if d > 0 {
			j.fetchTimeout = d
		}
	}
}

// WithPublisher forwards every written window to p.
func WithPublisher(p repository.Publisher) PollingJobOption {
	return func(j *PollingJob) { j.publisher = p }
}

// WithJobClock replaces time.Now, for tests.
func WithJobClock(now func() time.Time) PollingJobOption {
	return func(j *PollingJob) { j.now = now }
}

// PollingJob fetches one provider and rewrites its register block with the day window.
type PollingJob struct {
	fetcher      repository.SignalFetcher
	layout       Layout
	store        repository.RegisterStore
	metrics      repository.Metrics
	publisher    repository.Publisher
	logger       *applogger.Logger
	fetchTimeout time.Duration
	now          func() time.Time

	mu     sync.RWMutex
	latest *models.SignalWindow
}

// NewPollingJob creates a job named after its fetcher.
func NewPollingJob(
	fetcher repository.SignalFetcher,
	layout Layout,
	store repository.RegisterStore,
	metrics repository.Metrics,
	logger *applogger.Logger,
	opts ...PollingJobOption,
) *PollingJob {
	j := &PollingJob{
		fetcher:      fetcher,
		layout:       layout,
		store:        store,
		metrics:      metrics,
		logger:       logger.With(applogger.String("job", fetcher.Name())),
		fetchTimeout: defaultFetchTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *PollingJob) Name() string { return j.fetcher.Name() }

// Run performs one fetch-and-publish cycle. A failed fetch still writes the
// window, with every day set to no data.
func (j *PollingJob) Run(ctx context.Context) {
	runID := uuid.NewString()
	log := j.logger.With(applogger.String("run_id", runID))

	signals, fetchErr := j.fetch(ctx)
	if fetchErr != nil {
		kind := models.FailureKind(fetchErr)
		j.metrics.RecordFetchFailure(j.Name(), kind)
		log.Warn("fetch failed, publishing empty window",
			applogger.String("kind", kind),
			applogger.Error(fetchErr),
		)
	}

	now := j.now()
	window := models.SignalWindow{
		Job:       j.Name(),
		RunID:     runID,
		Generated: now,
		Fetched:   fetchErr == nil,
		Days:      BuildWindow(j.layout, j.layout.Today(now), signals),
	}

	if err := j.store.WriteBatch(Batch(window.Days)); err != nil {
		j.metrics.RecordJobRun(j.Name(), OutcomeWriteError)
		log.Error("register write failed", applogger.Error(err))
		return
	}

	for _, d := range window.Days {
		j.metrics.RecordSignal(j.Name(), d.Offset, d.Value)
	}
	j.setLatest(window)

	outcome := OutcomeOK
	if fetchErr != nil {
		outcome = OutcomeFetchError
	}
	j.metrics.RecordJobRun(j.Name(), outcome)
	log.Info("window written",
		applogger.Int("signals", len(signals)),
		applogger.Any("values", values(window.Days)),
	)

	if j.publisher != nil {
		if err := j.publisher.PublishWindow(ctx, window); err != nil {
			log.Warn("publish window failed", applogger.Error(err))
		}
	}
}

func (j *PollingJob) fetch(ctx context.Context) ([]models.DailySignal, error) {
	ctx, cancel := context.WithTimeout(ctx, j.fetchTimeout)
	defer cancel()

	start := time.Now()
	signals, err := j.fetcher.Fetch(ctx)
	j.metrics.RecordFetchLatency(j.Name(), time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	return signals, nil
}

// Latest returns a copy of the last window written, if any.
func (j *PollingJob) Latest() (models.SignalWindow, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.latest == nil {
		return models.SignalWindow{}, false
	}
	w := *j.latest
	w.Days = append([]models.WindowDay(nil), j.latest.Days...)
	return w, true
}

// BreakerState reports the circuit breaker state of the job's fetcher, or "disabled".
func (j *PollingJob) BreakerState() string {
	if br, ok := j.fetcher.(interface{ BreakerState() string }); ok {
		return br.BreakerState()
	}
	return "disabled"
}

func (j *PollingJob) setLatest(w models.SignalWindow) {
	j.mu.Lock()
	j.latest = &w
	j.mu.Unlock()
}

func values(days []models.WindowDay) []uint16 {
	out := make([]uint16, len(days))
	for i, d := range days {
		out[i] = d.Value
	}
	return out
}

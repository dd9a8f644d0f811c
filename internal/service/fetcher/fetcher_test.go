package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"ecogw/internal/domain/models"
	"ecogw/internal/service/ecogaz"
	"ecogw/pkg/cache"
)

type stubSource struct {
	payload []byte
	err     error
	calls   int
}

func (s *stubSource) Name() string { return "ecogaz" }

func (s *stubSource) Fetch(context.Context) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}

const payload = `[{"gas_day":"2024-03-02","color":"orange","indice_de_couleur":3}]`

func TestFetchDecodes(t *testing.T) {
	src := &stubSource{payload: []byte(payload)}
	f := New(src, ecogaz.Decode)

	signals, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, uint16(3), signals[0].Value)
	assert.Equal(t, "disabled", f.BreakerState())
}

func TestFetchFormatFailure(t *testing.T) {
	src := &stubSource{payload: []byte(`{"not":"an array"}`)}
	_, err := New(src, ecogaz.Decode).Fetch(context.Background())
	assert.ErrorIs(t, err, models.ErrFormat)
}

func TestCacheServesDecodablePayloadsOnly(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()

	bad := &stubSource{payload: []byte(`garbage`)}
	f := New(bad, ecogaz.Decode, WithCache(mc, time.Hour))
	_, err := f.Fetch(context.Background())
	require.ErrorIs(t, err, models.ErrFormat)

	_, err = mc.GetBytes(context.Background(), "ecogaz")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	good := &stubSource{payload: []byte(payload)}
	f = New(good, ecogaz.Decode, WithCache(mc, time.Hour))
	_, err = f.Fetch(context.Background())
	require.NoError(t, err)
	_, err = f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, good.calls)
}

func TestLimiterDenialIsTransport(t *testing.T) {
	src := &stubSource{payload: []byte(payload)}
	f := New(src, ecogaz.Decode, WithLimiter(rate.NewLimiter(rate.Every(15*time.Minute), 1)))

	_, err := f.Fetch(context.Background())
	require.NoError(t, err)

	_, err = f.Fetch(context.Background())
	assert.ErrorIs(t, err, models.ErrTransport)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 1, src.calls)
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	src := &stubSource{err: errors.New("connection refused")}
	f := New(src, ecogaz.Decode, WithBreaker(2, time.Hour))

	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background())
		require.Error(t, err)
	}
	assert.Equal(t, "open", f.BreakerState())

	_, err := f.Fetch(context.Background())
	assert.ErrorIs(t, err, models.ErrTransport)
	assert.Equal(t, 2, src.calls)
}

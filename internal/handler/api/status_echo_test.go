package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "ecogw/internal/domain/models"
	"ecogw/internal/registers"
	"ecogw/internal/scheduler"
	xlogger "ecogw/pkg/logger"
)

type tableReader struct{ t *registers.Table }

func (r tableReader) ReadHolding(addr, count uint16) ([]uint16, error) {
	return r.t.Read(addr, count)
}

type fixedWindow struct {
	name string
	w    *models.SignalWindow
}

func (f fixedWindow) Name() string { return f.name }

func (f fixedWindow) Latest() (models.SignalWindow, bool) {
	if f.w == nil {
		return models.SignalWindow{}, false
	}
	return *f.w, true
}

type staticJobs []scheduler.JobStatus

func (s staticJobs) Status() []scheduler.JobStatus { return s }

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	table, err := registers.NewTable(
		registers.Block{Name: "ecogaz", Start: 0, Size: 6},
		registers.Block{Name: "ecowatt", Start: 100, Size: 4},
	)
	require.NoError(t, err)
	require.NoError(t, table.WriteBatch(map[uint16]models.RegisterValue{
		0: models.Known(1), 1: models.Known(2), 2: models.Known(0),
		3: models.Known(0), 4: models.Known(0), 5: models.Known(0),
	}))

	ecogaz := &models.SignalWindow{Job: "ecogaz", RunID: "r1", Fetched: true, Generated: time.Unix(0, 0).UTC()}
	h := NewStatusEchoHandler(xlogger.Nop(), tableReader{table},
		staticJobs{{Name: "ecogaz", State: scheduler.StateIdle, Enabled: true, Interval: time.Hour}},
		fixedWindow{name: "ecogaz", w: ecogaz},
		fixedWindow{name: "ecowatt"},
	)

	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func get(t *testing.T, e *echo.Echo, target string) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestRegistersEndpoint(t *testing.T) {
	e := newTestEcho(t)

	code, env := get(t, e, "/api/registers?start=0&count=3")
	require.Equal(t, http.StatusOK, code)
	var res RegistersResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, []uint16{1, 2, 0}, res.Values)

	code, _ = get(t, e, "/api/registers?start=1")
	assert.Equal(t, http.StatusOK, code)
}

func TestRegistersUnavailable(t *testing.T) {
	e := newTestEcho(t)

	code, env := get(t, e, "/api/registers?start=100&count=4")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, http.StatusServiceUnavailable, env.Status)

	code, _ = get(t, e, "/api/registers?start=5&count=2")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestRegistersValidation(t *testing.T) {
	e := newTestEcho(t)

	for _, target := range []string{
		"/api/registers?count=0",
		"/api/registers?count=126",
		"/api/registers?start=70000",
		"/api/registers?start=abc",
	} {
		code, _ := get(t, e, target)
		assert.Equal(t, http.StatusBadRequest, code, target)
	}
}

func TestSignalsEndpoint(t *testing.T) {
	e := newTestEcho(t)

	code, env := get(t, e, "/api/signals")
	require.Equal(t, http.StatusOK, code)
	var windows []models.SignalWindow
	require.NoError(t, json.Unmarshal(env.Data, &windows))
	require.Len(t, windows, 1)
	assert.Equal(t, "r1", windows[0].RunID)

	code, _ = get(t, e, "/api/signals?job=ecowatt")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = get(t, e, "/api/signals?job=tempo")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestJobsAndHealth(t *testing.T) {
	e := newTestEcho(t)

	code, env := get(t, e, "/api/jobs")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"state":"idle"`)

	code, _ = get(t, e, "/healthz")
	assert.Equal(t, http.StatusOK, code)
}

type failingReader struct{}

func (failingReader) ReadHolding(uint16, uint16) ([]uint16, error) {
	return nil, errors.New("table layout mismatch")
}

type breakerWindow struct {
	fixedWindow
	state string
}

func (b breakerWindow) BreakerState() string { return b.state }

func TestRegistersInternalError(t *testing.T) {
	e := echo.New()
	NewStatusEchoHandler(xlogger.Nop(), failingReader{}, staticJobs{}).RegisterRoutes(e)

	code, env := get(t, e, "/api/registers?start=0&count=1")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, string(env.Data), `"ERR_INTERNAL"`)
	assert.NotContains(t, string(env.Data), "layout mismatch")
}

func TestJobsReportBreakerState(t *testing.T) {
	e := echo.New()
	NewStatusEchoHandler(xlogger.Nop(), failingReader{},
		staticJobs{
			{Name: "ecogaz", State: scheduler.StateIdle, Enabled: true, Interval: time.Hour},
			{Name: "debug", State: scheduler.StateIdle},
		},
		breakerWindow{fixedWindow: fixedWindow{name: "ecogaz"}, state: "open"},
	).RegisterRoutes(e)

	code, env := get(t, e, "/api/jobs")
	require.Equal(t, http.StatusOK, code)

	var jobs []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &jobs))
	require.Len(t, jobs, 2)
	assert.Equal(t, "ecogaz", jobs[0]["name"])
	assert.Equal(t, "open", jobs[0]["breaker"])
	_, hasBreaker := jobs[1]["breaker"]
	assert.False(t, hasBreaker)
}

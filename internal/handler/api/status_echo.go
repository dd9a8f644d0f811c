package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	models "ecogw/internal/domain/models"
	"ecogw/internal/scheduler"
	xhttp "ecogw/pkg/http"
	xlogger "ecogw/pkg/logger"
)

// RegisterReader is the read contract shared with the Modbus listener.
type RegisterReader interface {
	ReadHolding(addr, count uint16) ([]uint16, error)
}

// WindowSource exposes the last window a polling job wrote.
type WindowSource interface {
	Name() string
	Latest() (models.SignalWindow, bool)
}

// JobLister reports scheduling state.
type JobLister interface {
	Status() []scheduler.JobStatus
}

// BreakerReporter is implemented by window sources whose fetches go through a circuit breaker.
type BreakerReporter interface {
	BreakerState() string
}

// JobResponse is a job's schedule plus the breaker state of its fetcher, if any.
type JobResponse struct {
	scheduler.JobStatus
	Breaker string `json:"breaker,omitempty"`
}

type RegistersResponse struct {
	Start  int      `json:"start"`
	Count  int      `json:"count"`
	Values []uint16 `json:"values"`
}

// StatusEchoHandler serves the read-only status API.
type StatusEchoHandler struct {
	logger  *xlogger.Logger
	reader  RegisterReader
	windows []WindowSource
	jobs    JobLister
}

func NewStatusEchoHandler(logger *xlogger.Logger, reader RegisterReader, jobs JobLister, windows ...WindowSource) *StatusEchoHandler {
	return &StatusEchoHandler{logger: logger, reader: reader, jobs: jobs, windows: windows}
}

func (h *StatusEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/registers", h.Registers)
	g.GET("/signals", h.Signals)
	g.GET("/jobs", h.Jobs)
}

func (h *StatusEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// Registers reads holding registers with the same semantics as Modbus function 03.
func (h *StatusEchoHandler) Registers(c echo.Context) error {
	req := &models.RegisterRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	values, err := h.reader.ReadHolding(uint16(req.Start), uint16(req.Count))
	if err != nil {
		if errors.Is(err, models.ErrUnavailable) {
			return xhttp.AppErrorResponse(c, xhttp.UnavailableError("registers unavailable").
				WithParam("start", req.Start).
				WithParam("count", req.Count))
		}
		appErr := xhttp.NewAppError("ERR_INTERNAL", "register read failed", http.StatusInternalServerError).WithError(err)
		h.logger.Error("register read error", xlogger.Error(appErr))
		return xhttp.AppErrorResponse(c, appErr)
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, RegistersResponse{Start: req.Start, Count: req.Count, Values: values})
}

// Signals returns the latest window of each job, or of the job named in ?job=.
func (h *StatusEchoHandler) Signals(c echo.Context) error {
	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	out := make([]models.SignalWindow, 0, len(h.windows))
	for _, src := range h.windows {
		if req.Job != "" && src.Name() != req.Job {
			continue
		}
		if w, ok := src.Latest(); ok {
			out = append(out, w)
		}
	}

	if req.Job != "" && len(out) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no window for job %s yet", req.Job))
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *StatusEchoHandler) Jobs(c echo.Context) error {
	breakers := make(map[string]string, len(h.windows))
	for _, src := range h.windows {
		if br, ok := src.(BreakerReporter); ok {
			breakers[src.Name()] = br.BreakerState()
		}
	}

	statuses := h.jobs.Status()
	out := make([]JobResponse, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, JobResponse{JobStatus: st, Breaker: breakers[st.Name]})
	}
	return xhttp.SuccessResponse(c, out)
}

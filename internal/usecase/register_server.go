package usecase

import (
	"errors"

	"ecogw/internal/domain/models"
	"ecogw/internal/domain/repository"
)

const (
	ReadOK          = "ok"
	ReadUnavailable = "unavailable"
)

// RegisterServer is the read side of the register table, shared by the Modbus
// listener and the status API. Reads never zero-fill.
type RegisterServer struct {
	store   repository.RegisterStore
	metrics repository.Metrics
}

func NewRegisterServer(store repository.RegisterStore, metrics repository.Metrics) *RegisterServer {
	return &RegisterServer{store: store, metrics: metrics}
}

// ReadHolding returns count holding registers from addr, or models.ErrUnavailable.
func (s *RegisterServer) ReadHolding(addr, count uint16) ([]uint16, error) {
	values, err := s.store.Read(addr, count)
	if err != nil {
		s.metrics.RecordRegisterRead(ReadUnavailable)
		if !errors.Is(err, models.ErrUnavailable) {
			return nil, errors.Join(models.ErrUnavailable, err)
		}
		return nil, err
	}
	s.metrics.RecordRegisterRead(ReadOK)
	return values, nil
}

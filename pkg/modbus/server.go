package modbus

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	mbserver "github.com/simonvetter/modbus"

	applogger "ecogw/pkg/logger"
)

// HoldingReader serves holding register reads. Any error is answered with
// exception 02 (illegal data address).
type HoldingReader interface {
	ReadHolding(addr, count uint16) ([]uint16, error)
}

// Server is a read-only Modbus TCP server over a HoldingReader.
type Server struct {
	cfg    *Config
	srv    *mbserver.ModbusServer
	logger *applogger.Logger
}

// NewServer creates a server; nothing is bound until Start.
func NewServer(reader HoldingReader, logger *applogger.Logger, opts ...Option) (*Server, error) {
	cfg := &Config{
		Host:       "localhost",
		Port:       502,
		Timeout:    30 * time.Second,
		MaxClients: 16,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	h := &handler{reader: reader, logger: logger}
	srv, err := mbserver.NewServer(&mbserver.ServerConfiguration{
		URL:        "tcp://" + cfg.Addr(),
		Timeout:    cfg.Timeout,
		MaxClients: cfg.MaxClients,
	}, h)
	if err != nil {
		return nil, fmt.Errorf("modbus server: %w", err)
	}

	return &Server{cfg: cfg, srv: srv, logger: logger}, nil
}

// Addr returns host:port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Start binds the listener and accepts clients in the background.
func (s *Server) Start() error {
	if err := s.srv.Start(); err != nil {
		return fmt.Errorf("modbus listen %s: %w", s.cfg.Addr(), err)
	}
	s.logger.Info("modbus server listening", applogger.String("addr", s.cfg.Addr()))
	return nil
}

// Stop closes the listener and every client connection.
func (s *Server) Stop(context.Context) error {
	if err := s.srv.Stop(); err != nil {
		return fmt.Errorf("modbus stop: %w", err)
	}
	s.logger.Info("modbus server stopped")
	return nil
}

type handler struct {
	reader HoldingReader
	logger *applogger.Logger
}

func (h *handler) HandleHoldingRegisters(req *mbserver.HoldingRegistersRequest) ([]uint16, error) {
	if req.IsWrite {
		h.logger.Debug("modbus write rejected",
			applogger.String("client", req.ClientAddr),
			applogger.Int("addr", int(req.Addr)),
		)
		return nil, mbserver.ErrIllegalFunction
	}

	values, err := h.reader.ReadHolding(req.Addr, req.Quantity)
	if err != nil {
		h.logger.Debug("modbus read unavailable",
			applogger.String("client", req.ClientAddr),
			applogger.Int("addr", int(req.Addr)),
			applogger.Int("count", int(req.Quantity)),
			applogger.Error(err),
		)
		return nil, mbserver.ErrIllegalDataAddress
	}
	return values, nil
}

func (h *handler) HandleCoils(*mbserver.CoilsRequest) ([]bool, error) {
	return nil, mbserver.ErrIllegalDataAddress
}

func (h *handler) HandleDiscreteInputs(*mbserver.DiscreteInputsRequest) ([]bool, error) {
	return nil, mbserver.ErrIllegalDataAddress
}

func (h *handler) HandleInputRegisters(*mbserver.InputRegistersRequest) ([]uint16, error) {
	return nil, mbserver.ErrIllegalDataAddress
}

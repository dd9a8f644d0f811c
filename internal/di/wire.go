//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"ecogw/pkg/config"
	"ecogw/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure clients
		ProvideHTTPClient,
		ProvideCache,
		ProvidePublisher,

		// Domain
		ProvideRegisterTable,
		ProvidePollingJobs,
		ProvideScheduler,
		ProvideRegisterServer,

		// Front ends
		ProvideModbusServer,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}

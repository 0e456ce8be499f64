// Package app wires the application components together.
package app

import (
	"fmt"

	"github.com/oxsci/toolgate/internal/common"
	"github.com/oxsci/toolgate/internal/config"
	"github.com/oxsci/toolgate/internal/dispatch"
	"github.com/oxsci/toolgate/internal/forward"
	"github.com/oxsci/toolgate/internal/handlers"
	"github.com/oxsci/toolgate/internal/mcpbridge"
	"github.com/oxsci/toolgate/internal/registry"
	"github.com/oxsci/toolgate/internal/tools"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Registry   *registry.Registry
	Forwarder  *forward.Forwarder
	Dispatcher *dispatch.Dispatcher

	// HTTP handlers
	RootHandler    *handlers.RootHandler
	HealthHandler  *handlers.HealthHandler
	VersionHandler *handlers.VersionHandler
	ToolsHandler   *handlers.ToolsHandler
	MCPBridge      *mcpbridge.Bridge
}

// New initializes the application with all dependencies. Tool registration
// happens here, before the server listens; the registry is read-only after.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	a.Registry = registry.New()
	if err := tools.RegisterAll(a.Registry); err != nil {
		return nil, fmt.Errorf("tool registration failed: %w", err)
	}
	logger.Info().
		Int("tools", a.Registry.Len()).
		Int("discoverable", len(a.Registry.Discoverable())).
		Msg("tool registry populated")

	a.Forwarder = forward.NewForwarder(cfg.Downstream, logger)
	a.Dispatcher = dispatch.New(a.Registry, a.Forwarder, logger)

	a.initHandlers()

	logger.Info().Msg("application initialization complete")

	return a, nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.RootHandler = handlers.NewRootHandler(a.Config.ServiceName, a.Logger)
	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.ToolsHandler = handlers.NewToolsHandler(a.Dispatcher, a.Config.ServiceName, a.Logger)
	a.MCPBridge = mcpbridge.NewBridge(a.Config.ServiceName, a.Dispatcher, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close closes all application resources.
func (a *App) Close() error {
	return nil
}

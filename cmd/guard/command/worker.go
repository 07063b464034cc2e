package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-service"

	"github.com/pixil98/go-instanceguard/internal/commands"
	"github.com/pixil98/go-instanceguard/internal/driver"
	"github.com/pixil98/go-instanceguard/internal/guard"
	"github.com/pixil98/go-instanceguard/internal/listener"
	"github.com/pixil98/go-instanceguard/internal/messaging"
	"github.com/pixil98/go-instanceguard/internal/observability"
	"github.com/pixil98/go-instanceguard/internal/plugins"
	"github.com/pixil98/go-instanceguard/internal/plugins/instanceguard"
	"github.com/pixil98/go-instanceguard/internal/proxy"
	"github.com/pixil98/go-instanceguard/internal/storage"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	err := cfg.Log.apply()
	if err != nil {
		return nil, fmt.Errorf("configuring logging: %w", err)
	}

	backend, err := cfg.Storage.buildBackend()
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	publisher := messaging.NewNatsPublisher(natsServer)

	// Register plugins
	handler := commands.NewHandler()
	pluginManager := plugins.NewPluginManager(handler)

	if cfg.Guard.Enabled {
		p := instanceguard.New(cfg.Guard, backend, instanceguard.WithEventPublisher(publisher))
		err := pluginManager.Register(context.Background(), p)
		if err != nil {
			return nil, err
		}
	} else {
		slog.Warn("instance guard plugin disabled")
	}

	// Setup the proxy
	proxyOpts, err := cfg.Proxy.serverOpts()
	if err != nil {
		return nil, err
	}
	proxyOpts = append(proxyOpts,
		proxy.WithPermissions(cfg.Permissions),
		proxy.WithStartGate(natsServer.WaitReady),
	)
	proxyServer := proxy.NewServer(cfg.Proxy.Listen, cfg.Proxy.Upstream, pluginManager, handler, natsServer, proxyOpts...)

	// Create console listeners
	console := listener.NewConsole(handler)
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		w, err := l.BuildListener(console)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = w
	}

	// Setup the driver
	var driverOpts []driver.DriverOpt
	if d := cfg.tickInterval(); d > 0 {
		driverOpts = append(driverOpts, driver.WithTickLength(d))
	}
	tickDriver := driver.NewDriver([]driver.Manager{pluginManager}, driverOpts...)

	workers := service.WorkerList{
		"nats":      natsServer,
		"proxy":     proxyServer,
		"driver":    tickDriver,
		"storage":   &backendCloser{backend: backend},
		"listeners": &listeners,
	}

	if cfg.Metrics.Addr != "" {
		metrics := observability.NewServer(cfg.Metrics.Addr, func() bool {
			return proxyServer.Addr() != nil
		})
		guard.RegisterMetrics(metrics.Registerer())
		workers["metrics"] = metrics
	}

	return workers, nil
}

// backendCloser closes the storage backend when the app shuts down.
type backendCloser struct {
	backend storage.Backend
}

func (c *backendCloser) Start(ctx context.Context) error {
	<-ctx.Done()
	return c.backend.Close()
}

package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-instanceguard/internal/plugins/instanceguard"
	"github.com/pixil98/go-instanceguard/internal/proxy"
)

type Config struct {
	TickInterval string                `json:"tick_interval"`
	Log          LogConfig             `json:"log"`
	Storage      StorageConfig         `json:"storage"`
	Nats         NatsConfig            `json:"nats"`
	Proxy        ProxyConfig           `json:"proxy"`
	Listeners    []ListenerConfig      `json:"listeners"`
	Metrics      MetricsConfig         `json:"metrics"`
	Guard        instanceguard.Config  `json:"instance_guard"`
	Permissions  proxy.PermissionTable `json:"permissions"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d < time.Second {
			el.Add(fmt.Errorf("tick_interval must be at least 1 second"))
		}
	}

	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.Log.validate())
	el.Add(c.Storage.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Proxy.validate())
	el.Add(c.Metrics.validate())

	err := c.Guard.Validate()
	if err != nil {
		el.Add(fmt.Errorf("instance_guard: %w", err))
	}

	return el.Err()
}

func (c *Config) tickInterval() time.Duration {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return 0
	}
	return d
}

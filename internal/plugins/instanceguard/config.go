package instanceguard

import (
	"fmt"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-instanceguard/internal/display"
	"github.com/pixil98/go-instanceguard/internal/guard"
	"github.com/pixil98/go-instanceguard/internal/warp"
)

const DefaultTimeout = 60

type Config struct {
	Enabled        bool   `json:"enabled"`
	DefaultTimeout *int   `json:"default_timeout"`
	DenyMessage    string `json:"deny_message"`
	Fallback       string `json:"fallback"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.DefaultTimeout != nil && *c.DefaultTimeout < 0 {
		el.Add(fmt.Errorf("default_timeout must not be negative"))
	}

	if c.DenyMessage != "" {
		_, err := display.ParseTemplate("deny", c.DenyMessage)
		if err != nil {
			el.Add(fmt.Errorf("deny_message: %w", err))
		}
	}

	if c.Fallback != "" {
		_, err := warp.ParseAlias(c.Fallback)
		if err != nil {
			el.Add(fmt.Errorf("fallback: %w", err))
		}
	}

	return el.Err()
}

// defaultTimeout is the configured default, or DefaultTimeout when unset. An
// explicit zero is kept.
func (c *Config) defaultTimeout() int {
	if c.DefaultTimeout == nil {
		return DefaultTimeout
	}
	return *c.DefaultTimeout
}

func (c *Config) engineOpts() ([]guard.EngineOpt, error) {
	var opts []guard.EngineOpt

	if c.DenyMessage != "" {
		tmpl, err := display.ParseTemplate("deny", c.DenyMessage)
		if err != nil {
			return nil, err
		}
		opts = append(opts, guard.WithDenyMessage(tmpl))
	}

	if c.Fallback != "" {
		alias, err := warp.ParseAlias(c.Fallback)
		if err != nil {
			return nil, err
		}
		opts = append(opts, guard.WithFallback(alias))
	}

	return opts, nil
}

package command

import (
	"fmt"
	"net"
)

// MetricsConfig enables the metrics and health endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `json:"addr"`
}

func (c *MetricsConfig) validate() error {
	if c.Addr == "" {
		return nil
	}
	_, _, err := net.SplitHostPort(c.Addr)
	if err != nil {
		return fmt.Errorf("metrics: invalid addr %q: %w", c.Addr, err)
	}
	return nil
}

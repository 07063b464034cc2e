package command

import (
	"fmt"

	"github.com/pixil98/go-instanceguard/internal/logging"
)

const serviceName = "instance-guard"

type LogConfig struct {
	Format string `json:"format"`
	Level  string `json:"level"`
}

func (c *LogConfig) validate() error {
	switch c.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("log format must be json or text, got %q", c.Format)
	}

	_, err := logging.ParseLevel(c.Level)
	return err
}

func (c *LogConfig) apply() error {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	logging.SetDefault(serviceName, c.Format, level)
	return nil
}

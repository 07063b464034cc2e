package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-instanceguard/internal/proxy"
)

type CompressionConfig struct {
	Enabled     bool `json:"enabled"`
	SkipPackets int  `json:"skip_packets"`
}

type ProxyConfig struct {
	Listen      string            `json:"listen"`
	Upstream    string            `json:"upstream"`
	DialTimeout string            `json:"dial_timeout"`
	Compression CompressionConfig `json:"compression"`
}

func (c *ProxyConfig) validate() error {
	el := errors.NewErrorList()

	if c.Listen == "" {
		el.Add(fmt.Errorf("proxy: listen is required"))
	}
	if c.Upstream == "" {
		el.Add(fmt.Errorf("proxy: upstream is required"))
	}
	if c.DialTimeout != "" {
		_, err := time.ParseDuration(c.DialTimeout)
		if err != nil {
			el.Add(fmt.Errorf("proxy: parsing dial_timeout: %w", err))
		}
	}
	if c.Compression.SkipPackets < 0 {
		el.Add(fmt.Errorf("proxy: compression skip_packets must not be negative"))
	}

	return el.Err()
}

func (c *ProxyConfig) serverOpts() ([]proxy.ServerOpt, error) {
	var opts []proxy.ServerOpt

	if c.DialTimeout != "" {
		d, err := time.ParseDuration(c.DialTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing dial_timeout: %w", err)
		}
		opts = append(opts, proxy.WithDialTimeout(d))
	}
	if c.Compression.Enabled {
		opts = append(opts, proxy.WithCompression(c.Compression.SkipPackets))
	}

	return opts, nil
}

package proxy

import (
	"context"
	"time"
)

type ServerOpt func(*Server)

// WithDialTimeout bounds how long connecting to the upstream server may take
func WithDialTimeout(d time.Duration) ServerOpt {
	return func(s *Server) {
		s.dialTimeout = d
	}
}

// WithPermissions sets the command grants handed to each session
func WithPermissions(t PermissionTable) ServerOpt {
	return func(s *Server) {
		s.perms = t
	}
}

// WithCompression compresses the client-bound stream after the first
// skipPackets packets
func WithCompression(skipPackets int) ServerOpt {
	return func(s *Server) {
		s.compress = true
		s.skipPackets = skipPackets
	}
}

// WithStartGate delays listening until gate returns, e.g. until the notice
// bus is connected
func WithStartGate(gate func(context.Context) error) ServerOpt {
	return func(s *Server) {
		s.gate = gate
	}
}

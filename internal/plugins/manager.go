package plugins

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pixil98/go-instanceguard/internal/commands"
	"github.com/pixil98/go-instanceguard/internal/guard"
	"github.com/pixil98/go-instanceguard/internal/warp"
)

type Plugin interface {
	Key() string
	Init(context.Context, *PluginManager) error
	Tick(context.Context) error
}

// WarpInterceptor sees every warp a client requests before it reaches the
// server. Returning false suppresses the original packet. OnDisconnect is
// called once the player's connection has closed.
type WarpInterceptor interface {
	OnWarp(ctx context.Context, conn guard.Conn, ev warp.Event) bool
	OnDisconnect(ctx context.Context, player uuid.UUID)
}

type PluginManager struct {
	commands     *commands.Handler
	plugins      []Plugin
	interceptors []WarpInterceptor
}

func NewPluginManager(cmds *commands.Handler) *PluginManager {
	return &PluginManager{
		commands: cmds,
		plugins:  []Plugin{},
	}
}

// Register initializes p and adds it to the tick rotation.
func (m *PluginManager) Register(ctx context.Context, p Plugin) error {
	if p == nil {
		return fmt.Errorf("plugin is nil")
	}

	err := p.Init(ctx, m)
	if err != nil {
		return fmt.Errorf("initializing plugin %s: %w", p.Key(), err)
	}

	m.plugins = append(m.plugins, p)
	slog.InfoContext(ctx, "registered plugin", "key", p.Key())

	return nil
}

// RegisterCommand exposes a command to players and the operator console.
func (m *PluginManager) RegisterCommand(cmd *commands.Command) error {
	return m.commands.Register(cmd)
}

// RegisterWarpInterceptor adds i to the chain consulted by InterceptWarp.
func (m *PluginManager) RegisterWarpInterceptor(i WarpInterceptor) {
	m.interceptors = append(m.interceptors, i)
}

// InterceptWarp runs the interceptors in registration order and stops at the
// first one that suppresses the warp.
func (m *PluginManager) InterceptWarp(ctx context.Context, conn guard.Conn, ev warp.Event) bool {
	for _, i := range m.interceptors {
		if !i.OnWarp(ctx, conn, ev) {
			return false
		}
	}
	return true
}

// PlayerDisconnected tells every interceptor the player has gone.
func (m *PluginManager) PlayerDisconnected(ctx context.Context, player uuid.UUID) {
	for _, i := range m.interceptors {
		i.OnDisconnect(ctx, player)
	}
}

func (m *PluginManager) Tick(ctx context.Context) error {
	for _, p := range m.plugins {
		err := p.Tick(ctx)
		if err != nil {
			return fmt.Errorf("ticking %s: %w", p.Key(), err)
		}
	}

	return nil
}

package instanceguard

import (
	"context"
	"fmt"

	"github.com/pixil98/go-instanceguard/internal/guard"
	"github.com/pixil98/go-instanceguard/internal/plugins"
	"github.com/pixil98/go-instanceguard/internal/storage"
)

const (
	Key       = "instance_guard"
	namespace = "instance-guard"

	PermGuard   = "instance_guard.guard"
	PermUnguard = "instance_guard.unguard"
	PermGuards  = "instance_guard.guards"
)

// Plugin locks guarded instance worlds after their last player leaves and
// turns away anyone warping in before the cooldown ends.
type Plugin struct {
	config  Config
	backend storage.Backend
	clock   guard.Clock
	events  guard.EventPublisher

	registry *guard.Registry
	engine   *guard.Engine
}

type PluginOpt func(*Plugin)

// WithClock evaluates warps against c instead of the wall clock
func WithClock(c guard.Clock) PluginOpt {
	return func(p *Plugin) {
		p.clock = c
	}
}

// WithEventPublisher announces lock and reopen events through pub
func WithEventPublisher(pub guard.EventPublisher) PluginOpt {
	return func(p *Plugin) {
		p.events = pub
	}
}

func New(cfg Config, backend storage.Backend, opts ...PluginOpt) *Plugin {
	p := &Plugin{
		config:  cfg,
		backend: backend,
		clock:   guard.SystemClock,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Plugin) Key() string {
	return Key
}

func (p *Plugin) Init(ctx context.Context, m *plugins.PluginManager) error {
	kv, err := p.backend.Namespace(namespace)
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", namespace, err)
	}

	p.registry, err = guard.NewRegistry(kv)
	if err != nil {
		return err
	}

	cooldowns, err := guard.NewCooldowns(kv)
	if err != nil {
		return err
	}

	opts, err := p.config.engineOpts()
	if err != nil {
		return err
	}
	opts = append(opts, guard.WithClock(p.clock))
	if p.events != nil {
		opts = append(opts, guard.WithEventPublisher(p.events))
	}

	p.engine, err = guard.NewEngine(p.registry, cooldowns, opts...)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	m.RegisterWarpInterceptor(p.engine)

	for _, cmd := range p.commands() {
		err := m.RegisterCommand(cmd)
		if err != nil {
			return fmt.Errorf("registering %s: %w", cmd.Name, err)
		}
	}

	return nil
}

func (p *Plugin) Tick(ctx context.Context) error {
	return p.engine.Tick(ctx)
}

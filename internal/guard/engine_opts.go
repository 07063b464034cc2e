package guard

import (
	"text/template"

	"github.com/pixil98/go-instanceguard/internal/warp"
)

type EngineOpt func(*Engine)

// WithClock sets the clock warp events are evaluated against
func WithClock(c Clock) EngineOpt {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithEventPublisher publishes lock and reopen events to p
func WithEventPublisher(p EventPublisher) EngineOpt {
	return func(e *Engine) {
		e.events = p
	}
}

// WithFallback sets where denied players are sent
func WithFallback(a warp.Alias) EngineOpt {
	return func(e *Engine) {
		e.fallback = a
	}
}

// WithDenyMessage sets the notice template shown to denied players.
// The template receives .World and .Seconds.
func WithDenyMessage(tmpl *template.Template) EngineOpt {
	return func(e *Engine) {
		e.denyMsg = tmpl
	}
}

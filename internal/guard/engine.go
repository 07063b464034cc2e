package guard

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/pixil98/go-instanceguard/internal/display"
	"github.com/pixil98/go-instanceguard/internal/warp"
)

const (
	DefaultDenyMessage = "Sorry, this world is locked for restart. Try again in {{ .Seconds }} second{{ if ne .Seconds 1 }}s{{ end }}."

	SubjectLocked   = "instance_guard.locked"
	SubjectReopened = "instance_guard.reopened"
)

// Guards answers whether a world is guarded and with what timeout.
type Guards interface {
	Timeout(world string) (int, bool)
}

// Conn is the connection a warp arrived on.
type Conn interface {
	SendNotice(ctx context.Context, text string) error
	IssueWarp(ctx context.Context, alias warp.Alias) error
}

// EventPublisher receives lock and reopen notifications for other consumers.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

type Outcome int

const (
	Allow Outcome = iota
	Deny
)

func (o Outcome) String() string {
	if o == Deny {
		return OutcomeDeny
	}
	return OutcomeAllow
}

// Decision is the result of evaluating one warp event.
type Decision struct {
	Outcome   Outcome
	World     string        // guarded destination, empty for pass-through
	Remaining time.Duration // lockout left when denied
}

// LockEvent is published when a world locks or reopens.
type LockEvent struct {
	World     string    `json:"world"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

type denyMessageData struct {
	World   string
	Seconds int
}

// Engine decides whether each warp may proceed. Decisions are serialized by a
// single mutex and evaluated against one clock reading per event.
type Engine struct {
	mu        sync.Mutex
	guards    Guards
	occupancy *Occupancy
	cooldowns *Cooldowns

	clock    Clock
	events   EventPublisher
	fallback warp.Alias
	denyMsg  *template.Template
}

func NewEngine(guards Guards, cooldowns *Cooldowns, opts ...EngineOpt) (*Engine, error) {
	e := &Engine{
		guards:    guards,
		occupancy: NewOccupancy(),
		cooldowns: cooldowns,
		clock:     SystemClock,
		fallback:  warp.AliasOwnShip,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.denyMsg == nil {
		tmpl, err := display.ParseTemplate("deny", DefaultDenyMessage)
		if err != nil {
			return nil, err
		}
		e.denyMsg = tmpl
	}

	return e, nil
}

// OnWarp evaluates the event and, when it is denied, tells the player why and
// sends them to the fallback destination. It returns whether the original
// warp packet should be forwarded.
func (e *Engine) OnWarp(ctx context.Context, conn Conn, ev warp.Event) bool {
	now := e.clock.Now()
	d, pending := e.decide(ev, now)
	e.publish(ctx, pending)

	if d.World != "" {
		warpDecisions.WithLabelValues(d.Outcome.String()).Inc()
	}

	if d.Outcome == Allow {
		return true
	}

	slog.InfoContext(ctx, "warp denied", "player", ev.PlayerID, "world", d.World, "remaining", d.Remaining)
	e.reject(ctx, conn, ev.PlayerID, d)
	return false
}

// Decide evaluates the event at now and applies its occupancy and cooldown
// effects without any side effects on the connection.
func (e *Engine) Decide(ev warp.Event, now time.Time) Decision {
	d, _ := e.decide(ev, now)
	return d
}

func (e *Engine) decide(ev warp.Event, now time.Time) (Decision, []lockNotice) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var pending []lockNotice
	origin := ev.OriginId()
	dest := ev.Destination.WorldId()

	if origin != "" && origin != dest {
		pending = e.depart(pending, ev.PlayerID, origin, now)
	}
	// The server may never have confirmed the last allowed warp, leaving the
	// recorded world behind the reported origin.
	if recorded, ok := e.occupancy.Location(ev.PlayerID); ok && recorded != dest {
		pending = e.depart(pending, ev.PlayerID, recorded, now)
	}

	if dest == "" {
		return Decision{Outcome: Allow}, pending
	}
	if _, ok := e.guards.Timeout(dest); !ok {
		return Decision{Outcome: Allow}, pending
	}

	locked, remaining, cleared := e.cooldowns.check(dest, now)
	if locked {
		return Decision{Outcome: Deny, World: dest, Remaining: remaining}, pending
	}
	if cleared {
		pending = append(pending, lockNotice{subject: SubjectReopened, event: LockEvent{World: dest}})
	}

	e.occupancy.Arrive(ev.PlayerID, dest)
	return Decision{Outcome: Allow, World: dest}, pending
}

// depart removes the player from world and arms its cooldown when that
// emptied a guarded world.
func (e *Engine) depart(pending []lockNotice, player uuid.UUID, world string, now time.Time) []lockNotice {
	if !e.occupancy.Depart(player, world) {
		return pending
	}
	timeout, ok := e.guards.Timeout(world)
	if !ok {
		return pending
	}

	expiresAt := e.cooldowns.Arm(world, timeout, now)
	locksArmed.Inc()
	return append(pending, lockNotice{subject: SubjectLocked, event: LockEvent{World: world, ExpiresAt: expiresAt}})
}

// OnDisconnect treats a closed connection as leaving whatever world the
// player was recorded in.
func (e *Engine) OnDisconnect(ctx context.Context, player uuid.UUID) {
	now := e.clock.Now()

	e.mu.Lock()
	var pending []lockNotice
	if world, ok := e.occupancy.Location(player); ok {
		pending = e.depart(pending, player, world, now)
	}
	e.mu.Unlock()

	e.publish(ctx, pending)
}

// reject delivers the notice and the redirect. Neither is retried and a
// failure does not undo the decision.
func (e *Engine) reject(ctx context.Context, conn Conn, player uuid.UUID, d Decision) {
	msg, err := display.Render(e.denyMsg, denyMessageData{World: d.World, Seconds: display.Seconds(d.Remaining)})
	if err != nil {
		slog.ErrorContext(ctx, "rendering deny message", "world", d.World, "error", err)
	} else if err := conn.SendNotice(ctx, msg); err != nil {
		redirectFailures.WithLabelValues("notice").Inc()
		slog.WarnContext(ctx, "sending deny notice", "player", player, "world", d.World, "error", err)
	}

	if err := conn.IssueWarp(ctx, e.fallback); err != nil {
		redirectFailures.WithLabelValues("redirect").Inc()
		slog.WarnContext(ctx, "redirecting denied player", "player", player, "world", d.World, "alias", e.fallback, "error", err)
	}
}

type lockNotice struct {
	subject string
	event   LockEvent
}

func (e *Engine) publish(ctx context.Context, pending []lockNotice) {
	for _, n := range pending {
		if n.subject == SubjectLocked {
			slog.InfoContext(ctx, "world locked", "world", n.event.World, "expires_at", n.event.ExpiresAt)
		} else {
			slog.InfoContext(ctx, "world reopened", "world", n.event.World)
		}

		if e.events == nil {
			continue
		}
		data, err := json.Marshal(n.event)
		if err != nil {
			slog.ErrorContext(ctx, "encoding lock event", "world", n.event.World, "error", err)
			continue
		}
		if err := e.events.Publish(n.subject, data); err != nil {
			slog.WarnContext(ctx, "publishing lock event", "subject", n.subject, "world", n.event.World, "error", err)
		}
	}
}

// Locked returns every world still cooling down and how long it has left.
func (e *Engine) Locked() map[string]time.Duration {
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.cooldowns.Locked(now)
}

// Occupants returns the players currently recorded in the world.
func (e *Engine) Occupants(world string) []uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.occupancy.Players(world)
}

// Tick refreshes the locked and occupied world gauges.
func (e *Engine) Tick(ctx context.Context) error {
	now := e.clock.Now()

	e.mu.Lock()
	locked := e.cooldowns.Locked(now)
	counts := e.occupancy.Counts()
	e.mu.Unlock()

	lockedWorlds.Set(float64(len(locked)))
	occupiedWorlds.Reset()
	for world, n := range counts {
		occupiedWorlds.WithLabelValues(world).Set(float64(n))
	}
	return nil
}

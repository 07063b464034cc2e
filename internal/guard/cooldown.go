package guard

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-instanceguard/internal/storage"
)

const cooldownsKey = "cooldowns"

// Cooldowns holds the lockout expiry of each world that emptied while
// guarded. Entries are written through to the store when one is given so a
// lockout outlives a proxy restart. It is not safe for concurrent use; the
// Engine serializes access.
type Cooldowns struct {
	expires map[string]time.Time
	store   storage.KeyValue
}

// NewCooldowns loads any persisted lockouts from store. A nil store keeps
// cooldowns in memory only.
func NewCooldowns(store storage.KeyValue) (*Cooldowns, error) {
	c := &Cooldowns{
		expires: make(map[string]time.Time),
		store:   store,
	}

	if store == nil {
		return c, nil
	}

	_, err := store.Load(cooldownsKey, &c.expires)
	if err != nil {
		return nil, fmt.Errorf("loading cooldowns: %w", err)
	}
	if c.expires == nil {
		c.expires = make(map[string]time.Time)
	}

	return c, nil
}

// Arm locks the world until now + timeoutSeconds, replacing any earlier entry.
func (c *Cooldowns) Arm(world string, timeoutSeconds int, now time.Time) time.Time {
	expiresAt := now.Add(time.Duration(timeoutSeconds) * time.Second)
	c.expires[world] = expiresAt
	c.persist()
	return expiresAt
}

// IsLocked reports whether the world is still cooling down at now. An entry
// found expired is removed.
func (c *Cooldowns) IsLocked(world string, now time.Time) (bool, time.Duration) {
	locked, remaining, _ := c.check(world, now)
	return locked, remaining
}

// check is IsLocked that also reports whether an expired entry was cleared.
func (c *Cooldowns) check(world string, now time.Time) (locked bool, remaining time.Duration, cleared bool) {
	expiresAt, ok := c.expires[world]
	if !ok {
		return false, 0, false
	}

	if !now.Before(expiresAt) {
		delete(c.expires, world)
		c.persist()
		return false, 0, true
	}

	return true, expiresAt.Sub(now), false
}

// Locked returns the remaining lockout of every world still cooling down at
// now. Expired entries are left for IsLocked to clear.
func (c *Cooldowns) Locked(now time.Time) map[string]time.Duration {
	out := make(map[string]time.Duration)
	for world, expiresAt := range c.expires {
		if now.Before(expiresAt) {
			out[world] = expiresAt.Sub(now)
		}
	}
	return out
}

func (c *Cooldowns) persist() {
	if c.store == nil {
		return
	}

	err := c.store.Save(cooldownsKey, c.expires)
	if err != nil {
		slog.Warn("persisting cooldowns", "error", err)
	}
}

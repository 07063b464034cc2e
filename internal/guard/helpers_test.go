package guard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pixil98/go-instanceguard/internal/warp"
)

var errStoreDown = errors.New("store down")

// memoryKV is an in-memory storage.KeyValue that can be told to fail writes.
type memoryKV struct {
	mu       sync.Mutex
	values   map[string][]byte
	failSave bool
	saves    int
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: map[string][]byte{}}
}

func (m *memoryKV) Load(key string, out any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (m *memoryKV) Save(key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSave {
		return errStoreDown
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.values[key] = raw
	m.saves++
	return nil
}

// fakeClock is a settable Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// recordingConn captures notices and redirects sent to a player.
type recordingConn struct {
	notices   []string
	redirects []warp.Alias

	noticeErr   error
	redirectErr error
}

func (c *recordingConn) SendNotice(_ context.Context, text string) error {
	if c.noticeErr != nil {
		return c.noticeErr
	}
	c.notices = append(c.notices, text)
	return nil
}

func (c *recordingConn) IssueWarp(_ context.Context, alias warp.Alias) error {
	if c.redirectErr != nil {
		return c.redirectErr
	}
	c.redirects = append(c.redirects, alias)
	return nil
}

// recordingPublisher captures published lock events.
type recordingPublisher struct {
	subjects []string
	events   []LockEvent
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	var ev LockEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, ev)
	return nil
}

func instance(name string) string {
	return "InstanceWorld:" + name + ":-:-"
}

func warpTo(player uuid.UUID, from, to string) warp.Event {
	return warp.Event{
		PlayerID:     player,
		CurrentWorld: from,
		Destination:  warp.Action{Type: warp.ToWorld, World: to},
	}
}

func warpHome(player uuid.UUID, from string) warp.Event {
	return warp.Event{
		PlayerID:     player,
		CurrentWorld: from,
		Destination:  warp.Action{Type: warp.ToAlias, Alias: warp.AliasOwnShip},
	}
}

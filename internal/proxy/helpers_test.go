package proxy

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pixil98/go-instanceguard/internal/commands"
	"github.com/pixil98/go-instanceguard/internal/guard"
	"github.com/pixil98/go-instanceguard/internal/warp"
)

// lockedBuffer is a bytes.Buffer safe for concurrent writers.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) packets() []Packet {
	b.mu.Lock()
	data := append([]byte(nil), b.buf.Bytes()...)
	b.mu.Unlock()

	var out []Packet
	r := NewPacketReader(bytes.NewReader(data))
	for {
		p, err := r.Read()
		if err != nil {
			return out
		}
		out = append(out, p)
	}
}

// memBus delivers published messages synchronously to subscribers.
type memBus struct {
	mu   sync.Mutex
	subs map[string][]func([]byte)
}

func newMemBus() *memBus {
	return &memBus{subs: map[string][]func([]byte){}}
}

func (b *memBus) Subscribe(subject string, handler func([]byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[subject] = append(b.subs[subject], handler)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, subject)
	}, nil
}

func (b *memBus) Publish(subject string, data []byte) error {
	b.mu.Lock()
	handlers := append([]func([]byte){}, b.subs[subject]...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(data)
	}
	return nil
}

// denyInterceptor rejects warps to one world and records every event.
type denyInterceptor struct {
	mu     sync.Mutex
	deny   string
	events []warp.Event
	gone   []uuid.UUID
}

func (i *denyInterceptor) InterceptWarp(ctx context.Context, conn guard.Conn, ev warp.Event) bool {
	i.mu.Lock()
	i.events = append(i.events, ev)
	i.mu.Unlock()

	if ev.Destination.WorldId() != i.deny || i.deny == "" {
		return true
	}
	_ = conn.SendNotice(ctx, "locked")
	_ = conn.IssueWarp(ctx, warp.AliasOwnShip)
	return false
}

func (i *denyInterceptor) PlayerDisconnected(_ context.Context, player uuid.UUID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.gone = append(i.gone, player)
}

func (i *denyInterceptor) disconnected() []uuid.UUID {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]uuid.UUID{}, i.gone...)
}

// stubCommands owns the commands in known and fails the ones in failing.
type stubCommands struct {
	known   map[string]error
	callers []commands.Caller
}

func (c *stubCommands) Has(name string) bool {
	_, ok := c.known[name]
	return ok
}

func (c *stubCommands) ExecLine(ctx context.Context, caller commands.Caller, line string) error {
	c.callers = append(c.callers, caller)
	name := strings.Fields(strings.TrimPrefix(line, "/"))[0]
	if err := c.known[name]; err != nil {
		return err
	}
	return caller.Reply(ctx, "ran "+name)
}

func packetLine(typ, data string) string {
	return `{"type":"` + typ + `","data":` + data + "}\n"
}

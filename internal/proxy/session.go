package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pixil98/go-instanceguard/internal/commands"
	"github.com/pixil98/go-instanceguard/internal/guard"
	"github.com/pixil98/go-instanceguard/internal/messaging"
	"github.com/pixil98/go-instanceguard/internal/warp"
)

// Interceptor decides whether a client's warp reaches the server and hears
// when the player's session ends.
type Interceptor interface {
	InterceptWarp(ctx context.Context, conn guard.Conn, ev warp.Event) bool
	PlayerDisconnected(ctx context.Context, player uuid.UUID)
}

// CommandRunner executes a chat command line on behalf of a caller.
type CommandRunner interface {
	Has(name string) bool
	ExecLine(ctx context.Context, caller commands.Caller, line string) error
}

// Bus carries per-player notices between sessions.
type Bus interface {
	Subscribe(subject string, handler func(data []byte)) (func(), error)
	Publish(subject string, data []byte) error
}

// Session is one player's connection through the proxy. It implements
// guard.Conn for the warp interceptors and commands.Caller for chat
// commands.
type Session struct {
	id    uuid.UUID
	name  string
	perms commands.Permissions

	client   *PacketWriter
	upstream *PacketWriter

	interceptor Interceptor
	commands    CommandRunner
	bus         Bus

	mu       sync.RWMutex
	location string
}

var (
	_ guard.Conn      = (*Session)(nil)
	_ commands.Caller = (*Session)(nil)
)

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) Name() string {
	return s.name
}

func (s *Session) Location() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.location
}

func (s *Session) setLocation(loc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = loc
}

func (s *Session) Permissions() commands.Permissions {
	return s.perms
}

// Reply writes a chat line straight to the player.
func (s *Session) Reply(_ context.Context, text string) error {
	return s.client.Send(PacketChatReceived, ChatReceived{Text: text})
}

// SendNotice routes text through the player's notice subject so it reaches
// them on whichever session they hold.
func (s *Session) SendNotice(_ context.Context, text string) error {
	return s.bus.Publish(messaging.PlayerSubject(s.id), []byte(text))
}

// IssueWarp asks the server to move the player to alias as though the client
// had requested it.
func (s *Session) IssueWarp(_ context.Context, alias warp.Alias) error {
	return s.upstream.Send(PacketPlayerWarp, PlayerWarp{
		Action: warp.Action{Type: warp.ToAlias, Alias: alias},
	})
}

// Run pumps packets in both directions until either side closes or ctx ends.
func (s *Session) Run(ctx context.Context, fromClient, fromServer *PacketReader) error {
	unsubscribe, err := s.bus.Subscribe(messaging.PlayerSubject(s.id), func(data []byte) {
		err := s.Reply(ctx, string(data))
		if err != nil {
			slog.WarnContext(ctx, "delivering notice", "player", s.id, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribing to notices: %w", err)
	}
	defer unsubscribe()
	// ctx is usually done by the time the session ends
	defer s.interceptor.PlayerDisconnected(context.WithoutCancel(ctx), s.id)

	errs := make(chan error, 2)
	go func() { errs <- s.pumpServer(ctx, fromServer) }()
	go func() { errs <- s.pumpClient(ctx, fromClient) }()

	select {
	case err = <-errs:
	case <-ctx.Done():
	}

	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Session) pumpClient(ctx context.Context, r *PacketReader) error {
	for {
		p, err := r.Read()
		if err != nil {
			return err
		}

		forward := true
		switch p.Type {
		case PacketPlayerWarp:
			forward = s.onWarp(ctx, p)
		case PacketChatSent:
			forward = s.onChat(ctx, p)
		}

		if !forward {
			continue
		}
		err = s.upstream.Forward(p)
		if err != nil {
			return err
		}
	}
}

func (s *Session) pumpServer(ctx context.Context, r *PacketReader) error {
	for {
		p, err := r.Read()
		if err != nil {
			return err
		}

		if p.Type == PacketWorldStart {
			var ws WorldStart
			if err := p.Decode(&ws); err != nil {
				slog.WarnContext(ctx, "ignoring world start", "player", s.id, "error", err)
			} else {
				s.setLocation(ws.Location)
			}
		}

		err = s.client.Forward(p)
		if err != nil {
			return err
		}
	}
}

func (s *Session) onWarp(ctx context.Context, p Packet) bool {
	var pw PlayerWarp
	err := p.Decode(&pw)
	if err != nil {
		// Let the server reject what it cannot parse either
		slog.WarnContext(ctx, "undecodable warp", "player", s.id, "error", err)
		return true
	}

	return s.interceptor.InterceptWarp(ctx, s, warp.Event{
		PlayerID:     s.id,
		CurrentWorld: s.Location(),
		Destination:  pw.Action,
	})
}

func (s *Session) onChat(ctx context.Context, p Packet) bool {
	var chat ChatSent
	err := p.Decode(&chat)
	if err != nil || !strings.HasPrefix(chat.Text, "/") {
		return true
	}

	// Commands the proxy does not own belong to the server
	fields := strings.Fields(strings.TrimPrefix(chat.Text, "/"))
	if len(fields) == 0 || !s.commands.Has(fields[0]) {
		return true
	}

	err = s.commands.ExecLine(ctx, s, chat.Text)
	if err == nil {
		return false
	}

	var userErr *commands.UserError
	if errors.As(err, &userErr) {
		s.reply(ctx, userErr.Message)
		return false
	}

	slog.ErrorContext(ctx, "running command", "player", s.id, "command", chat.Text, "error", err)
	s.reply(ctx, "Something went wrong running that command.")
	return false
}

func (s *Session) reply(ctx context.Context, text string) {
	if err := s.Reply(ctx, text); err != nil {
		slog.WarnContext(ctx, "replying to player", "player", s.id, "error", err)
	}
}

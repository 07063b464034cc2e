package proxy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pixil98/go-instanceguard/internal/commands"
)

const DefaultDialTimeout = 5 * time.Second

// PermissionTable grants command permissions by player uuid or lowercase
// name. The "default" entry applies to every player.
type PermissionTable map[string]commands.Permissions

// For returns the default grants plus any granted to the player.
func (t PermissionTable) For(id uuid.UUID, name string) commands.Permissions {
	perms := append(commands.Permissions{}, t["default"]...)
	perms = append(perms, t[id.String()]...)
	if name != "" {
		perms = append(perms, t[strings.ToLower(name)]...)
	}
	return perms
}

// Server accepts game clients, dials the upstream game server for each and
// runs a Session between them.
type Server struct {
	listenAddr   string
	upstreamAddr string
	dialTimeout  time.Duration

	interceptor Interceptor
	commands    CommandRunner
	bus         Bus
	perms       PermissionTable

	compress    bool
	skipPackets int
	gate        func(context.Context) error

	mu   sync.Mutex
	addr net.Addr
}

func NewServer(listenAddr, upstreamAddr string, interceptor Interceptor, cmds CommandRunner, bus Bus, opts ...ServerOpt) *Server {
	s := &Server{
		listenAddr:   listenAddr,
		upstreamAddr: upstreamAddr,
		dialTimeout:  DefaultDialTimeout,
		interceptor:  interceptor,
		commands:     cmds,
		bus:          bus,
		perms:        PermissionTable{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Addr returns the bound listen address once Start is accepting, or nil.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *Server) Start(ctx context.Context) error {
	if s.gate != nil {
		err := s.gate(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("waiting to start: %w", err)
		}
	}

	listener, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.listenAddr, err)
	}

	s.mu.Lock()
	s.addr = listener.Addr()
	s.mu.Unlock()

	slog.InfoContext(ctx, "proxy listening", "addr", listener.Addr(), "upstream", s.upstreamAddr)

	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	// Close the listener when the parent context is canceled
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			// Check if shutdown was requested
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			slog.ErrorContext(ctx, "accepting client connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConnection(connCtx, conn)
		}()
	}
}

func (s *Server) handleConnection(ctx context.Context, client net.Conn) {
	defer client.Close()

	remote := client.RemoteAddr()
	err := s.serve(ctx, client)
	if err != nil {
		slog.WarnContext(ctx, "proxy session", "remote", remote, "error", err)
		return
	}
	slog.InfoContext(ctx, "proxy session closed", "remote", remote)
}

func (s *Server) serve(ctx context.Context, client net.Conn) error {
	fromClient := NewPacketReader(client)

	first, err := fromClient.Read()
	if err != nil {
		return fmt.Errorf("reading handshake: %w", err)
	}
	if first.Type != PacketClientConnect {
		return fmt.Errorf("expected %s, got %s", PacketClientConnect, first.Type)
	}
	var hello ClientConnect
	err = first.Decode(&hello)
	if err != nil {
		return err
	}
	if hello.PlayerID == uuid.Nil {
		return fmt.Errorf("handshake missing player uuid")
	}

	dialer := net.Dialer{Timeout: s.dialTimeout}
	upstream, err := dialer.DialContext(ctx, "tcp", s.upstreamAddr)
	if err != nil {
		return fmt.Errorf("dialing upstream %s: %w", s.upstreamAddr, err)
	}
	defer upstream.Close()

	var clientOut io.Writer = client
	if s.compress {
		zw, err := NewZstdFrameWriter(client, s.skipPackets)
		if err != nil {
			return err
		}
		defer zw.Close()
		clientOut = zw
	}

	sess := &Session{
		id:          hello.PlayerID,
		name:        hello.Name,
		perms:       s.perms.For(hello.PlayerID, hello.Name),
		client:      NewPacketWriter(clientOut),
		upstream:    NewPacketWriter(upstream),
		interceptor: s.interceptor,
		commands:    s.commands,
		bus:         s.bus,
	}

	err = sess.upstream.Forward(first)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "player connected", "player", sess.id, "name", sess.name, "remote", client.RemoteAddr())

	// Closing both legs unblocks whichever pump is still reading
	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-sessCtx.Done()
		client.Close()
		upstream.Close()
	}()

	return sess.Run(sessCtx, fromClient, NewPacketReader(upstream))
}

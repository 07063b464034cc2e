package proxy

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-testutil"
)

// fakeUpstream accepts one connection and exposes its packets.
type fakeUpstream struct {
	listener net.Listener
	conns    chan net.Conn
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	u := &fakeUpstream{listener: l, conns: make(chan net.Conn, 1)}
	go func() {
		conn, err := l.Accept()
		if err == nil {
			u.conns <- conn
		}
	}()
	t.Cleanup(func() { l.Close() })
	return u
}

func (u *fakeUpstream) accept(t *testing.T) net.Conn {
	t.Helper()
	select {
	case c := <-u.conns:
		t.Cleanup(func() { c.Close() })
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("upstream never received a connection")
		return nil
	}
}

func startProxy(t *testing.T, s *Server) net.Addr {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if addr := s.Addr(); addr != nil {
			return addr
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("proxy never started listening")
	return nil
}

func readPacket(t *testing.T, r *PacketReader, conn net.Conn) Packet {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	p, err := r.Read()
	if err != nil {
		t.Fatalf("reading packet: %v", err)
	}
	return p
}

func TestServer_ProxiesSession(t *testing.T) {
	upstream := newFakeUpstream(t)
	interceptor := &denyInterceptor{deny: "m1"}
	s := NewServer("127.0.0.1:0", upstream.listener.Addr().String(), interceptor, &stubCommands{}, newMemBus(),
		WithDialTimeout(time.Second))
	addr := startProxy(t, s)

	client, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatalf("dialing proxy: %v", err)
	}
	defer client.Close()
	fromProxy := NewPacketReader(client)

	player := uuid.New()
	_, _ = client.Write([]byte(packetLine(PacketClientConnect, `{"player_uuid":"`+player.String()+`","name":"Nova"}`)))

	server := upstream.accept(t)
	fromClient := NewPacketReader(server)
	hello := readPacket(t, fromClient, server)
	testutil.AssertEqual(t, "handshake", hello.Type, PacketClientConnect)

	_, _ = server.Write([]byte(packetLine(PacketWorldStart, `{"location":"InstanceWorld:m2:-:-"}`)))
	start := readPacket(t, fromProxy, client)
	testutil.AssertEqual(t, "world start", start.Type, PacketWorldStart)

	_, _ = client.Write([]byte(packetLine(PacketPlayerWarp, `{"warp_action":{"warp_type":1,"world_id":"InstanceWorld:m1:-:-"}}`)))

	redirect := readPacket(t, fromClient, server)
	var pw PlayerWarp
	if err := redirect.Decode(&pw); err != nil {
		t.Fatalf("decoding redirect: %v", err)
	}
	testutil.AssertEqual(t, "redirect alias", pw.Action.Alias.String(), "own_ship")

	notice := readPacket(t, fromProxy, client)
	testutil.AssertEqual(t, "notice", notice.Type, PacketChatReceived)

	interceptor.mu.Lock()
	defer interceptor.mu.Unlock()
	testutil.AssertEqual(t, "events", len(interceptor.events), 1)
	testutil.AssertEqual(t, "player", interceptor.events[0].PlayerID, player)
	testutil.AssertEqual(t, "origin", interceptor.events[0].CurrentWorld, "InstanceWorld:m2:-:-")
}

func TestServer_RejectsBadHandshake(t *testing.T) {
	upstream := newFakeUpstream(t)
	s := NewServer("127.0.0.1:0", upstream.listener.Addr().String(), &denyInterceptor{}, &stubCommands{}, newMemBus())
	addr := startProxy(t, s)

	client, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatalf("dialing proxy: %v", err)
	}
	defer client.Close()

	_, _ = client.Write([]byte(packetLine(PacketChatSent, `{"text":"hi"}`)))

	_ = client.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err = bufio.NewReader(client).ReadByte()
	if err == nil {
		t.Fatal("expected the proxy to close the connection")
	}
}

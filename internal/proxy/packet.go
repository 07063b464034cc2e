package proxy

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/pixil98/go-instanceguard/internal/warp"
)

const maxPacketSize = 1 << 20

const (
	PacketClientConnect = "client_connect"
	PacketPlayerWarp    = "player_warp"
	PacketChatSent      = "chat_sent"
	PacketChatReceived  = "chat_received"
	PacketWorldStart    = "world_start"
)

// Packet is one newline-delimited JSON message on either leg of the proxy.
// Data is kept raw so packets the proxy does not inspect pass through
// untouched.
type Packet struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Decode unmarshals the packet payload into out.
func (p Packet) Decode(out any) error {
	if len(p.Data) == 0 {
		return fmt.Errorf("%s packet has no data", p.Type)
	}
	err := json.Unmarshal(p.Data, out)
	if err != nil {
		return fmt.Errorf("decoding %s packet: %w", p.Type, err)
	}
	return nil
}

type ClientConnect struct {
	PlayerID uuid.UUID `json:"player_uuid"`
	Name     string    `json:"name"`
}

type PlayerWarp struct {
	Action warp.Action `json:"warp_action"`
}

type ChatSent struct {
	Text string `json:"text"`
}

type ChatReceived struct {
	Text string `json:"text"`
	From string `json:"from,omitempty"`
}

type WorldStart struct {
	Location string `json:"location"`
}

// PacketReader reads packets from a stream.
type PacketReader struct {
	scanner *bufio.Scanner
}

func NewPacketReader(r io.Reader) *PacketReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), maxPacketSize)
	return &PacketReader{scanner: s}
}

// Read returns the next packet, skipping blank lines. It returns io.EOF when
// the stream ends cleanly.
func (r *PacketReader) Read() (Packet, error) {
	for r.scanner.Scan() {
		line := r.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var p Packet
		err := json.Unmarshal(line, &p)
		if err != nil {
			return Packet{}, fmt.Errorf("decoding packet: %w", err)
		}
		if p.Type == "" {
			return Packet{}, fmt.Errorf("packet type not set")
		}
		return p, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Packet{}, err
	}
	return Packet{}, io.EOF
}

// PacketWriter writes packets to a stream. Each packet is written with a
// single Write call, and writes from multiple goroutines are serialized.
type PacketWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewPacketWriter(w io.Writer) *PacketWriter {
	return &PacketWriter{w: w}
}

// Send encodes payload as a packet of the given type.
func (w *PacketWriter) Send(typ string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", typ, err)
	}
	return w.Forward(Packet{Type: typ, Data: data})
}

// Forward writes p unchanged.
func (w *PacketWriter) Forward(p Packet) error {
	line, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding %s packet: %w", p.Type, err)
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	_, err = w.w.Write(line)
	if err != nil {
		return fmt.Errorf("writing %s packet: %w", p.Type, err)
	}
	return nil
}

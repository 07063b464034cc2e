package proxy

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-instanceguard/internal/warp"
)

func TestPacketReader_Read(t *testing.T) {
	tests := map[string]struct {
		input    string
		expTypes []string
		expErr   string
	}{
		"single packet": {
			input:    packetLine(PacketWorldStart, `{"location":"InstanceWorld:m1:-:-"}`),
			expTypes: []string{PacketWorldStart},
		},
		"blank lines skipped": {
			input:    "\n" + packetLine(PacketChatSent, `{"text":"hi"}`) + "\n\n" + packetLine(PacketChatSent, `{"text":"bye"}`),
			expTypes: []string{PacketChatSent, PacketChatSent},
		},
		"invalid json": {
			input:  "not json\n",
			expErr: "decoding packet",
		},
		"missing type": {
			input:  `{"data":{}}` + "\n",
			expErr: "packet type not set",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewPacketReader(strings.NewReader(tt.input))

			var types []string
			for {
				p, err := r.Read()
				if errors.Is(err, io.EOF) {
					break
				}
				if tt.expErr != "" {
					testutil.AssertErrorContains(t, err, tt.expErr)
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				types = append(types, p.Type)
			}

			if tt.expErr != "" {
				t.Fatalf("expected error containing %q", tt.expErr)
			}
			testutil.AssertEqual(t, "count", len(types), len(tt.expTypes))
			for i := range types {
				testutil.AssertEqual(t, "type", types[i], tt.expTypes[i])
			}
		})
	}
}

func TestPacketWriter_Send(t *testing.T) {
	var buf bytes.Buffer
	w := NewPacketWriter(&buf)

	err := w.Send(PacketPlayerWarp, PlayerWarp{Action: warp.Action{Type: warp.ToAlias, Alias: warp.AliasOwnShip}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := NewPacketReader(&buf).Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "type", p.Type, PacketPlayerWarp)

	var pw PlayerWarp
	if err := p.Decode(&pw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "warp type", pw.Action.Type, warp.ToAlias)
	testutil.AssertEqual(t, "alias", pw.Action.Alias, warp.AliasOwnShip)
}

func TestPacket_Decode_NoData(t *testing.T) {
	var ws WorldStart
	err := Packet{Type: PacketWorldStart}.Decode(&ws)
	testutil.AssertErrorContains(t, err, "world_start packet has no data")
}

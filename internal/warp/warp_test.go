package warp

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestInstanceName(t *testing.T) {
	tests := map[string]struct {
		location string
		expName  string
		expOk    bool
	}{
		"full instance location": {
			location: "InstanceWorld:outpost:5c6e3b5a9a3f4b1f:-",
			expName:  "outpost",
			expOk:    true,
		},
		"name only": {
			location: "InstanceWorld:M1",
			expName:  "M1",
			expOk:    true,
		},
		"empty name": {
			location: "InstanceWorld::abc",
		},
		"celestial world": {
			location: "CelestialWorld:1:2:3:4:5",
		},
		"ship world": {
			location: "ClientShipWorld:0f1e2d",
		},
		"bare prefix": {
			location: "InstanceWorld",
		},
		"empty": {},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := InstanceName(tt.location)
			testutil.AssertEqual(t, "name", got, tt.expName)
			testutil.AssertEqual(t, "ok", ok, tt.expOk)
		})
	}
}

func TestAction_WorldId(t *testing.T) {
	tests := map[string]struct {
		action Action
		exp    string
	}{
		"instance world": {
			action: Action{Type: ToWorld, World: "InstanceWorld:dungeon:-:-"},
			exp:    "dungeon",
		},
		"non instance world": {
			action: Action{Type: ToWorld, World: "CelestialWorld:1:2:3:4"},
			exp:    "",
		},
		"alias": {
			action: Action{Type: ToAlias, Alias: AliasOwnShip},
			exp:    "",
		},
		"player": {
			action: Action{Type: ToPlayer},
			exp:    "",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "world id", tt.action.WorldId(), tt.exp)
		})
	}
}

func TestParseAlias(t *testing.T) {
	tests := map[string]struct {
		in     string
		exp    Alias
		expErr string
	}{
		"own ship":      {in: "own_ship", exp: AliasOwnShip},
		"return":        {in: "return", exp: AliasReturn},
		"orbited world": {in: "orbited_world", exp: AliasOrbitedWorld},
		"unknown":       {in: "home", expErr: `unknown warp alias "home"`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseAlias(tt.in)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "alias", got, tt.exp)
		})
	}
}

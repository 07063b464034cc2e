package warp

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ActionType is the kind of warp a player requested.
type ActionType int

const (
	ToWorld  ActionType = 1
	ToPlayer ActionType = 2
	ToAlias  ActionType = 3
)

// Alias names a fixed destination relative to the player.
type Alias int

const (
	AliasReturn       Alias = 0
	AliasOrbitedWorld Alias = 1
	AliasOwnShip      Alias = 2
)

func (a Alias) String() string {
	switch a {
	case AliasReturn:
		return "return"
	case AliasOrbitedWorld:
		return "orbited_world"
	case AliasOwnShip:
		return "own_ship"
	default:
		return "unknown"
	}
}

const instancePrefix = "InstanceWorld"

// Action is the destination half of a warp request.
type Action struct {
	Type   ActionType `json:"warp_type"`
	World  string     `json:"world_id,omitempty"`
	Player uuid.UUID  `json:"player_id,omitempty"`
	Alias  Alias      `json:"alias_id,omitempty"`
}

// WorldId returns the guardable world identifier of the destination, or ""
// when the destination is not an instanced world.
func (a Action) WorldId() string {
	if a.Type != ToWorld {
		return ""
	}
	name, _ := InstanceName(a.World)
	return name
}

// Event is a warp request observed before it reaches the game server.
type Event struct {
	PlayerID     uuid.UUID
	CurrentWorld string // location string, may be empty
	Destination  Action
}

// OriginId returns the guardable world identifier the player is leaving.
func (e Event) OriginId() string {
	name, _ := InstanceName(e.CurrentWorld)
	return name
}

// InstanceName extracts the instance name from a location string of the form
// InstanceWorld:<name>[:<uuid>[:<level>]].
func InstanceName(location string) (string, bool) {
	parts := strings.Split(location, ":")
	if len(parts) < 2 || parts[0] != instancePrefix || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// ParseAlias converts an alias name as produced by Alias.String.
func ParseAlias(s string) (Alias, error) {
	for _, a := range []Alias{AliasReturn, AliasOrbitedWorld, AliasOwnShip} {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown warp alias %q", s)
}

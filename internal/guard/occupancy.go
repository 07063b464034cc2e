package guard

import (
	"slices"

	"github.com/google/uuid"
)

// Occupancy records which players are present in which guarded worlds. A
// player is recorded in at most one world at a time.
// It is not safe for concurrent use; the Engine serializes access.
type Occupancy struct {
	worlds map[string]map[uuid.UUID]struct{}
	where  map[uuid.UUID]string
}

func NewOccupancy() *Occupancy {
	return &Occupancy{
		worlds: make(map[string]map[uuid.UUID]struct{}),
		where:  make(map[uuid.UUID]string),
	}
}

// Arrive adds the player to the world, creating the entry if needed. A player
// still recorded elsewhere is moved; callers that care whether the old world
// emptied must Depart it first.
func (o *Occupancy) Arrive(player uuid.UUID, world string) {
	if prev, ok := o.where[player]; ok && prev != world {
		o.Depart(player, prev)
	}
	o.where[player] = world

	players, ok := o.worlds[world]
	if !ok {
		players = make(map[uuid.UUID]struct{})
		o.worlds[world] = players
	}
	players[player] = struct{}{}
}

// Depart removes the player from the world and reports whether that left the
// world empty. The entry is dropped as soon as it empties. Departing a world
// that is not tracked, or that the player is not in, does nothing.
func (o *Occupancy) Depart(player uuid.UUID, world string) bool {
	players, ok := o.worlds[world]
	if !ok {
		return false
	}
	if _, present := players[player]; !present {
		return false
	}

	delete(players, player)
	delete(o.where, player)
	if len(players) > 0 {
		return false
	}

	delete(o.worlds, world)
	return true
}

// Location returns the world the player is recorded in.
func (o *Occupancy) Location(player uuid.UUID) (string, bool) {
	world, ok := o.where[player]
	return world, ok
}

// Players returns the world's occupants in a stable order.
func (o *Occupancy) Players(world string) []uuid.UUID {
	players := o.worlds[world]
	out := make([]uuid.UUID, 0, len(players))
	for p := range players {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})
	return out
}

// Counts returns the number of occupants per tracked world.
func (o *Occupancy) Counts() map[string]int {
	out := make(map[string]int, len(o.worlds))
	for world, players := range o.worlds {
		out[world] = len(players)
	}
	return out
}

package commands

import (
	"context"
	"strings"
)

// Caller is whoever issued a command: a player in game or an operator at the
// console.
type Caller interface {
	Name() string
	// Location is the caller's current world location string, empty when the
	// caller is not in a world.
	Location() string
	Permissions() Permissions
	Reply(ctx context.Context, text string) error
}

// Permissions is the set of permission grants a caller holds. A grant of "*"
// allows everything and "prefix.*" allows every permission under prefix.
type Permissions []string

// Allows reports whether any grant covers perm. An empty perm is always
// allowed.
func (p Permissions) Allows(perm string) bool {
	if perm == "" {
		return true
	}
	for _, grant := range p {
		if grant == "*" || grant == perm {
			return true
		}
		if prefix, ok := strings.CutSuffix(grant, ".*"); ok && strings.HasPrefix(perm, prefix+".") {
			return true
		}
	}
	return false
}

// ParsedInput represents a validated and parsed command input.
type ParsedInput struct {
	Spec  *InputSpec
	Raw   string // Original user input
	Value any    // int for number, string for string
}

// Call is a single invocation of a command.
type Call struct {
	Caller Caller
	Inputs map[string]ParsedInput
}

// Number returns the named number input and whether it was supplied.
func (c *Call) Number(name string) (int, bool) {
	in, ok := c.Inputs[name]
	if !ok {
		return 0, false
	}
	n, ok := in.Value.(int)
	return n, ok
}

// String returns the named string input, or "" when it was omitted.
func (c *Call) String(name string) string {
	in, ok := c.Inputs[name]
	if !ok {
		return ""
	}
	s, _ := in.Value.(string)
	return s
}

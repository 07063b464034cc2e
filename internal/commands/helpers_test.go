package commands

import (
	"context"
	"strings"
)

type testCaller struct {
	name     string
	location string
	perms    Permissions
	replies  []string
}

func (c *testCaller) Name() string             { return c.name }
func (c *testCaller) Location() string         { return c.location }
func (c *testCaller) Permissions() Permissions { return c.perms }

func (c *testCaller) Reply(_ context.Context, text string) error {
	c.replies = append(c.replies, text)
	return nil
}

func (c *testCaller) lastReply() string {
	if len(c.replies) == 0 {
		return ""
	}
	return c.replies[len(c.replies)-1]
}

// echoCommand replies with its joined inputs.
func echoCommand(name, perm string, inputs ...InputSpec) *Command {
	return &Command{
		Name:       name,
		Permission: perm,
		Inputs:     inputs,
		Run: func(ctx context.Context, call *Call) error {
			parts := []string{name}
			for _, in := range inputs {
				if p, ok := call.Inputs[in.Name]; ok {
					parts = append(parts, p.Raw)
				}
			}
			return call.Caller.Reply(ctx, strings.Join(parts, " "))
		},
	}
}

package commands

import (
	"context"
	"testing"

	"github.com/pixil98/go-testutil"
)

func noop(context.Context, *Call) error { return nil }

func TestCommand_Validate(t *testing.T) {
	tests := map[string]struct {
		cmd    Command
		expErr string
	}{
		"empty name": {
			cmd:    Command{Run: noop},
			expErr: "command name not set",
		},
		"name with space": {
			cmd:    Command{Name: "two words", Run: noop},
			expErr: `command "two words": name must be a single word`,
		},
		"missing run": {
			cmd:    Command{Name: "guard"},
			expErr: `command "guard": run function not set`,
		},
		"valid command with no inputs": {
			cmd: Command{Name: "guards", Run: noop},
		},
		"valid command with inputs": {
			cmd: Command{
				Name: "guard",
				Run:  noop,
				Inputs: []InputSpec{
					{Name: "timeout", Type: InputTypeNumber},
				},
			},
		},
		"input missing name": {
			cmd: Command{
				Name:   "test",
				Run:    noop,
				Inputs: []InputSpec{{Type: InputTypeString}},
			},
			expErr: "input 0: name is required",
		},
		"input missing type": {
			cmd: Command{
				Name:   "test",
				Run:    noop,
				Inputs: []InputSpec{{Name: "foo"}},
			},
			expErr: `input "foo": type is required`,
		},
		"input unknown type": {
			cmd: Command{
				Name:   "test",
				Run:    noop,
				Inputs: []InputSpec{{Name: "foo", Type: "bogus"}},
			},
			expErr: `input "foo": unknown type "bogus"`,
		},
		"rest input not last": {
			cmd: Command{
				Name: "test",
				Run:  noop,
				Inputs: []InputSpec{
					{Name: "first", Type: InputTypeString, Rest: true},
					{Name: "second", Type: InputTypeString},
				},
			},
			expErr: `input "first": only the last input can have rest=true`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.cmd.Validate()

			if tt.expErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestCommand_Usage(t *testing.T) {
	cmd := Command{
		Name: "give",
		Inputs: []InputSpec{
			{Name: "item", Type: InputTypeString, Required: true},
			{Name: "count", Type: InputTypeNumber},
		},
	}
	testutil.AssertEqual(t, "usage", cmd.Usage(), "give <item> [count]")
}

func TestPermissions_Allows(t *testing.T) {
	tests := map[string]struct {
		perms Permissions
		perm  string
		exp   bool
	}{
		"empty permission":    {perms: nil, perm: "", exp: true},
		"no grants":           {perms: nil, perm: "instance_guard.guard", exp: false},
		"exact grant":         {perms: Permissions{"instance_guard.guard"}, perm: "instance_guard.guard", exp: true},
		"other grant":         {perms: Permissions{"instance_guard.guards"}, perm: "instance_guard.guard", exp: false},
		"global wildcard":     {perms: Permissions{"*"}, perm: "instance_guard.unguard", exp: true},
		"prefix wildcard":     {perms: Permissions{"instance_guard.*"}, perm: "instance_guard.unguard", exp: true},
		"prefix must be full": {perms: Permissions{"instance.*"}, perm: "instance_guard.unguard", exp: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "allows", tt.perms.Allows(tt.perm), tt.exp)
		})
	}
}

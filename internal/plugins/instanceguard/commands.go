package instanceguard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/pixil98/go-instanceguard/internal/commands"
	"github.com/pixil98/go-instanceguard/internal/display"
	"github.com/pixil98/go-instanceguard/internal/warp"
)

const category = "instance"

func (p *Plugin) commands() []*commands.Command {
	return []*commands.Command{
		{
			Name:        "guard",
			Description: "Lock this instance world for a cooldown once everyone leaves it.",
			Category:    category,
			Permission:  PermGuard,
			Inputs: []commands.InputSpec{
				{Name: "timeout", Type: commands.InputTypeNumber},
			},
			Run: p.guard,
		},
		{
			Name:        "unguard",
			Description: "Stop guarding this instance world.",
			Category:    category,
			Permission:  PermUnguard,
			Run:         p.unguard,
		},
		{
			Name:        "guards",
			Description: "List guarded worlds and any that are locked.",
			Category:    category,
			Permission:  PermGuards,
			Run:         p.guards,
		},
	}
}

// currentWorld resolves the instance the caller is standing in.
func currentWorld(caller commands.Caller) (string, error) {
	world, ok := warp.InstanceName(caller.Location())
	if !ok {
		return "", commands.NewUserError("You must be inside an instance world to use this command.")
	}
	return world, nil
}

func (p *Plugin) guard(ctx context.Context, call *commands.Call) error {
	world, err := currentWorld(call.Caller)
	if err != nil {
		return err
	}

	timeout, ok := call.Number("timeout")
	if !ok {
		timeout = p.config.defaultTimeout()
	}
	if timeout < 0 {
		return commands.NewUserError("Timeout must not be negative.")
	}

	err = p.registry.Set(world, timeout)
	if err != nil {
		slog.ErrorContext(ctx, "saving guard", "world", world, "caller", call.Caller.Name(), "error", err)
		return commands.NewUserError(fmt.Sprintf("Failed to guard %s; nothing was changed.", world))
	}

	slog.InfoContext(ctx, "world guarded", "world", world, "timeout", timeout, "caller", call.Caller.Name())
	return call.Caller.Reply(ctx, fmt.Sprintf("%s is now guarded with a %d second cooldown.", world, timeout))
}

func (p *Plugin) unguard(ctx context.Context, call *commands.Call) error {
	world, err := currentWorld(call.Caller)
	if err != nil {
		return err
	}

	existed, err := p.registry.Remove(world)
	if err != nil {
		slog.ErrorContext(ctx, "removing guard", "world", world, "caller", call.Caller.Name(), "error", err)
		return commands.NewUserError(fmt.Sprintf("Failed to unguard %s; nothing was changed.", world))
	}
	if !existed {
		return call.Caller.Reply(ctx, fmt.Sprintf("%s is already unguarded.", world))
	}

	slog.InfoContext(ctx, "world unguarded", "world", world, "caller", call.Caller.Name())
	return call.Caller.Reply(ctx, fmt.Sprintf("%s is no longer guarded.", world))
}

func (p *Plugin) guards(ctx context.Context, call *commands.Call) error {
	guarded := p.registry.List()
	locked := p.engine.Locked()

	if len(guarded) == 0 && len(locked) == 0 {
		return call.Caller.Reply(ctx, "No worlds are guarded.")
	}

	worlds := make([]string, 0, len(guarded))
	for world := range guarded {
		worlds = append(worlds, world)
	}
	sort.Strings(worlds)

	lines := []string{"Guarded worlds:"}
	for _, world := range worlds {
		line := fmt.Sprintf("  %s: %ds cooldown", world, guarded[world])
		if remaining, ok := locked[world]; ok {
			line += fmt.Sprintf(", locked for %ds", display.Seconds(remaining))
		}
		lines = append(lines, line)
	}

	// Worlds unguarded while cooling down keep their lock until it expires.
	var stale []string
	for world, remaining := range locked {
		if _, ok := guarded[world]; !ok {
			stale = append(stale, fmt.Sprintf("%s (%ds)", world, display.Seconds(remaining)))
		}
	}
	if len(stale) > 0 {
		sort.Strings(stale)
		lines = append(lines, display.Wrap("Still locked: "+strings.Join(stale, ", ")))
	}

	return call.Caller.Reply(ctx, strings.Join(lines, "\n"))
}

package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

func (h *Handler) helpCommand() *Command {
	return &Command{
		Name:        "help",
		Description: "List the commands you can use, or describe one.",
		Category:    "general",
		Inputs: []InputSpec{
			{Name: "command", Type: InputTypeString},
		},
		Run: func(ctx context.Context, call *Call) error {
			if name := call.String("command"); name != "" {
				return h.showCommand(ctx, call.Caller, name)
			}
			return h.listCommands(ctx, call.Caller)
		},
	}
}

// listCommands displays the caller's commands grouped by category.
func (h *Handler) listCommands(ctx context.Context, caller Caller) error {
	groups := make(map[string][]string)
	for _, cmd := range h.Available(caller) {
		category := cmd.Category
		if category == "" {
			category = "other"
		}
		groups[category] = append(groups[category], cmd.Name)
	}

	categories := make([]string, 0, len(groups))
	for cat := range groups {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	lines := []string{"Available commands:"}
	for _, cat := range categories {
		label := strings.ToUpper(cat[:1]) + cat[1:]
		lines = append(lines, fmt.Sprintf("  %s: %s", label, strings.Join(groups[cat], ", ")))
	}

	return caller.Reply(ctx, strings.Join(lines, "\n"))
}

// showCommand displays detailed help for a specific command.
func (h *Handler) showCommand(ctx context.Context, caller Caller, name string) error {
	h.mu.RLock()
	cmd, ok := h.commands[strings.ToLower(name)]
	h.mu.RUnlock()

	if !ok || !caller.Permissions().Allows(cmd.Permission) {
		return NewUserError(fmt.Sprintf("Command %q is unknown.", name))
	}

	lines := []string{fmt.Sprintf("%s: %s", cmd.Name, cmd.Description)}
	if len(cmd.Inputs) > 0 {
		lines = append(lines, fmt.Sprintf("Usage: %s", cmd.Usage()))
	}

	return caller.Reply(ctx, strings.Join(lines, "\n"))
}

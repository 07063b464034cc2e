package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

type Handler struct {
	mu       sync.RWMutex
	commands map[string]*Command
}

func NewHandler() *Handler {
	h := &Handler{
		commands: make(map[string]*Command),
	}
	// Register built-in commands
	_ = h.Register(h.helpCommand())
	return h
}

// Register adds a command. Names are case-insensitive and must be unique.
func (h *Handler) Register(cmd *Command) error {
	if cmd == nil {
		return fmt.Errorf("command cannot be nil")
	}
	if err := cmd.Validate(); err != nil {
		return err
	}

	name := strings.ToLower(cmd.Name)

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.commands[name]; exists {
		return fmt.Errorf("command %q already registered", name)
	}
	h.commands[name] = cmd
	return nil
}

// Has reports whether a command with the given name is registered.
func (h *Handler) Has(name string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.commands[strings.ToLower(name)]
	return ok
}

// Available returns the commands caller is permitted to run, sorted by name.
func (h *Handler) Available(caller Caller) []*Command {
	h.mu.RLock()
	defer h.mu.RUnlock()

	perms := caller.Permissions()
	out := make([]*Command, 0, len(h.commands))
	for _, cmd := range h.commands {
		if perms.Allows(cmd.Permission) {
			out = append(out, cmd)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ExecLine splits a line of input into a command name and arguments and runs
// it. A leading "/" is ignored.
func (h *Handler) ExecLine(ctx context.Context, caller Caller, line string) error {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	if len(fields) == 0 {
		return nil
	}
	return h.Exec(ctx, caller, fields[0], fields[1:]...)
}

// Exec executes a command with the given arguments.
func (h *Handler) Exec(ctx context.Context, caller Caller, cmdName string, rawArgs ...string) error {
	h.mu.RLock()
	cmd, ok := h.commands[strings.ToLower(cmdName)]
	h.mu.RUnlock()

	if !ok {
		return NewUserError(fmt.Sprintf("Unknown command: %s", cmdName))
	}

	if !caller.Permissions().Allows(cmd.Permission) {
		return NewUserError(fmt.Sprintf("You don't have permission to use %s.", cmd.Name))
	}

	inputs, err := h.parseInputs(cmd.Inputs, rawArgs)
	if err != nil {
		return err
	}

	call := &Call{
		Caller: caller,
		Inputs: make(map[string]ParsedInput, len(inputs)),
	}
	for _, in := range inputs {
		call.Inputs[in.Spec.Name] = in
	}

	return cmd.Run(ctx, call)
}

// parseInputs validates raw string arguments against input specs.
func (h *Handler) parseInputs(specs []InputSpec, rawArgs []string) ([]ParsedInput, error) {
	// Count required inputs (rest inputs only need 1 word minimum)
	requiredCount := 0
	for _, spec := range specs {
		if spec.Required {
			requiredCount++
		}
	}

	if len(rawArgs) < requiredCount {
		// Prefer the first missing input's custom message
		if spec := specs[len(rawArgs)]; spec.Required && spec.Missing != "" {
			return nil, NewUserError(spec.Missing)
		}
		return nil, NewUserError(fmt.Sprintf("Expected at least %d argument(s), got %d.", requiredCount, len(rawArgs)))
	}

	// If no rest input, check we don't have too many args
	hasRest := len(specs) > 0 && specs[len(specs)-1].Rest
	if !hasRest && len(rawArgs) > len(specs) {
		return nil, NewUserError(fmt.Sprintf("Expected at most %d argument(s), got %d.", len(specs), len(rawArgs)))
	}

	inputs := make([]ParsedInput, 0, len(specs))
	argIndex := 0

	for i := range specs {
		spec := &specs[i]

		if argIndex >= len(rawArgs) {
			if spec.Required {
				return nil, NewUserError(fmt.Sprintf("Missing required input: %s.", spec.Name))
			}
			continue
		}

		var raw string
		if spec.Rest {
			// Consume all remaining args joined with spaces
			raw = strings.Join(rawArgs[argIndex:], " ")
			argIndex = len(rawArgs)
		} else {
			raw = rawArgs[argIndex]
			argIndex++
		}

		value, err := h.parseValue(spec.Type, raw)
		if err != nil {
			return nil, err
		}

		inputs = append(inputs, ParsedInput{
			Spec:  spec,
			Raw:   raw,
			Value: value,
		})
	}

	return inputs, nil
}

// parseValue parses a raw string into the appropriate type.
func (h *Handler) parseValue(inputType InputType, raw string) (any, error) {
	switch inputType {
	case InputTypeString:
		return raw, nil

	case InputTypeNumber:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, NewUserError(fmt.Sprintf("%q is not a valid number.", raw))
		}
		return n, nil

	default:
		return nil, fmt.Errorf("unknown parameter type %q", inputType)
	}
}

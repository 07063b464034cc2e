package commands

import (
	"context"
	"fmt"
	"strings"
)

// InputType represents the type of a command input parameter.
type InputType string

const (
	InputTypeString InputType = "string" // Text input (single word if rest=false, multi-word if rest=true)
	InputTypeNumber InputType = "number" // Integer
)

// InputSpec defines an input parameter that a command accepts from user input.
type InputSpec struct {
	Name     string    `json:"name"`
	Type     InputType `json:"type"`
	Required bool      `json:"required"`
	Rest     bool      `json:"rest"`              // If true, captures all remaining input
	Missing  string    `json:"missing,omitempty"` // Shown instead of the generic message when a required input is absent
}

// CommandFunc runs a command once its permission and inputs have been checked.
type CommandFunc func(ctx context.Context, call *Call) error

// Command is a chat or console command registered by a plugin.
type Command struct {
	Name        string
	Description string
	Category    string
	Permission  string // empty means anyone may run it
	Inputs      []InputSpec
	Run         CommandFunc
}

func (c *Command) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("command name not set")
	}
	if strings.ContainsAny(c.Name, " \t") {
		return fmt.Errorf("command %q: name must be a single word", c.Name)
	}
	if c.Run == nil {
		return fmt.Errorf("command %q: run function not set", c.Name)
	}

	for i, input := range c.Inputs {
		if input.Name == "" {
			return fmt.Errorf("input %d: name is required", i)
		}
		if input.Type == "" {
			return fmt.Errorf("input %q: type is required", input.Name)
		}
		switch input.Type {
		case InputTypeString, InputTypeNumber:
		default:
			return fmt.Errorf("input %q: unknown type %q", input.Name, input.Type)
		}
		// Only the last input can have rest=true
		if input.Rest && i != len(c.Inputs)-1 {
			return fmt.Errorf("input %q: only the last input can have rest=true", input.Name)
		}
	}

	return nil
}

// Usage renders the command's argument synopsis, e.g. "guard [timeout]".
func (c *Command) Usage() string {
	parts := []string{c.Name}
	for _, input := range c.Inputs {
		if input.Required {
			parts = append(parts, fmt.Sprintf("<%s>", input.Name))
		} else {
			parts = append(parts, fmt.Sprintf("[%s]", input.Name))
		}
	}
	return strings.Join(parts, " ")
}

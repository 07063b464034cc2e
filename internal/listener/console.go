package listener

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pixil98/go-instanceguard/internal/commands"
)

const prompt = "> "

// CommandRunner executes a line of console input.
type CommandRunner interface {
	ExecLine(ctx context.Context, caller commands.Caller, line string) error
}

// Console serves operator sessions. Operators hold every permission but are
// not standing in any world.
type Console struct {
	commands CommandRunner
}

func NewConsole(cmds CommandRunner) *Console {
	return &Console{commands: cmds}
}

// AcceptConnection runs one operator session until the peer disconnects,
// types quit, or ctx ends.
func (c *Console) AcceptConnection(ctx context.Context, rw io.ReadWriter) {
	if err := c.run(ctx, rw); err != nil {
		slog.WarnContext(ctx, "console session", "error", err)
	}
}

func (c *Console) run(ctx context.Context, rw io.ReadWriter) error {
	op := &operator{w: rw}
	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		scanner := bufio.NewScanner(rw)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	_ = op.Reply(ctx, "Instance guard console. Type help for commands.")

	for {
		if _, err := io.WriteString(rw, prompt); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case line := <-lines:
			line = strings.TrimSpace(line)
			switch line {
			case "":
				continue
			case "quit", "exit":
				return op.Reply(ctx, "Goodbye.")
			}
			c.exec(ctx, op, line)
		}
	}
}

func (c *Console) exec(ctx context.Context, op *operator, line string) {
	err := c.commands.ExecLine(ctx, op, line)
	if err == nil {
		return
	}

	var userErr *commands.UserError
	if errors.As(err, &userErr) {
		_ = op.Reply(ctx, userErr.Message)
		return
	}

	slog.ErrorContext(ctx, "running console command", "command", line, "error", err)
	_ = op.Reply(ctx, fmt.Sprintf("Command failed: %s", err))
}

type operator struct {
	w io.Writer
}

func (o *operator) Name() string {
	return "console"
}

func (o *operator) Location() string {
	return ""
}

func (o *operator) Permissions() commands.Permissions {
	return commands.Permissions{"*"}
}

func (o *operator) Reply(_ context.Context, text string) error {
	_, err := io.WriteString(o.w, text+"\n")
	return err
}

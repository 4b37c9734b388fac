package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand] for the edit-parse-retry loop of
// a multi-line script. It writes the script to a temp file, opens the
// user's editor, and parses the result. On a parse error the user is
// prompted to re-edit; declining returns [ErrEditDeclined].
type editCommand struct {
	ctx    context.Context
	logger log.Logger
	script string // initial content, then the accepted result
	done   bool   // whether script holds an accepted edit
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. An emptied file cancels the edit, leaving
// done unset.
func (c *editCommand) Run() error {
	f, err := os.CreateTemp("", "molang-repl-*.molang")
	if err != nil {
		return err
	}

	path := f.Name()
	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	content := c.script

	for {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(c.ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		content = string(data)
		if strings.TrimSpace(content) == "" {
			return nil
		}

		_, parseErr := lang.Parse(content)
		c.logger.TraceContext(c.ctx, "editor parse attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", parseErr == nil),
		)

		if parseErr == nil {
			c.script, c.done = content, true

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", parseErr)

		var le *lang.Error
		if errors.As(parseErr, &le) {
			fmt.Fprint(c.stderr, le.Snippet())
		}

		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// runEditor runs $EDITOR, or vi, on the file at path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	// EDITOR may carry arguments, as in "code --wait".
	args := strings.Fields(os.Getenv("EDITOR"))
	if len(args) == 0 {
		args = []string{defaultEditor}
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}

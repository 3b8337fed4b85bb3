package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/withblock/lang"
	"github.com/ardnew/withblock/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand] for the multi-line
// edit-rewrite-retry loop. It writes the seed text to a temp file, opens
// the user's editor, and rewrites the result. On a rewrite error the user
// is prompted to re-edit; declining returns [ErrEditDeclined].
type editCommand struct {
	seed    string
	ctxFunc func() context.Context
	opts    []lang.Option
	logger  log.Logger

	// input and result are set after a successful rewrite. Both stay
	// empty when the user cleared the file.
	input  string
	result *lang.Expansion

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

// Run executes the edit-rewrite-retry loop.
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp(os.TempDir(), "withblock-repl-*.rs")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	f.Close()

	content := c.seed

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		content = string(data)

		// Empty file: the user cancelled the edit.
		if strings.TrimSpace(content) == "" {
			return nil
		}

		result, rewriteErr := lang.RewriteString(ctx, content, c.opts...)

		c.logger.TraceContext(
			ctx,
			"editor rewrite attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", rewriteErr == nil),
		)

		if rewriteErr == nil {
			c.input, c.result = content, result

			return nil
		}

		fmt.Fprintf(c.stderr, "\nRewrite error: %s\n", rewriteErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}
	}
}

// runEditor launches the user's editor on the given file path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	// EDITOR may carry arguments, e.g. "code --wait".
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

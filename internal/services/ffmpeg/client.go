package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Result captures the output streams of a completed ffmpeg invocation.
type Result struct {
	Stdout string
	Stderr string
}

// Client defines the ffmpeg behaviour the batch pipeline depends on.
type Client interface {
	Version(ctx context.Context) (string, error)
	Encoders(ctx context.Context) (string, error)
	Run(ctx context.Context, args []string) (Result, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Binary returns the configured binary name.
func (c *CLI) Binary() string {
	return c.binary
}

// Version runs the availability check and returns the first line of the
// version banner. A missing binary surfaces as an error satisfying IsNotFound.
func (c *CLI) Version(ctx context.Context) (string, error) {
	cmd := commandContext(ctx, c.binary, "-version") //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg version: %w", err)
	}
	line := strings.TrimSpace(stdout.String())
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	return line, nil
}

// Encoders returns the encoder listing used for capability probing.
func (c *CLI) Encoders(ctx context.Context) (string, error) {
	cmd := commandContext(ctx, c.binary, "-encoders") //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg encoders: %w", err)
	}
	return stdout.String(), nil
}

// Run executes ffmpeg with the provided arguments. Both output streams are
// captured and returned even when the command fails.
func (c *CLI) Run(ctx context.Context, args []string) (Result, error) {
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		return result, fmt.Errorf("ffmpeg run: %w", err)
	}
	return result, nil
}

// IsNotFound reports whether err indicates the configured binary is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

var _ Client = (*CLI)(nil)

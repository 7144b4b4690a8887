package plugins

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/smy-101/vibe-sync/internal/config"
)

// RunResult is the outcome of one tool invocation.
type RunResult struct {
	Succeeded bool
	TimedOut  bool
}

// Tool is the external plugin-management executable.
type Tool interface {
	// Probe reports whether the tool is reachable.
	Probe(ctx context.Context) bool
	// Run invokes the tool with args.
	Run(ctx context.Context, args []string) RunResult
}

// CLITool runs the plugin tool as a subprocess attached to the operator's
// terminal. Arguments are passed as an argv array, never through a shell.
type CLITool struct {
	Executable   string
	Timeout      time.Duration
	ProbeTimeout time.Duration

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewCLITool creates a CLITool from cfg wired to the process's stdio.
func NewCLITool(cfg config.PluginToolConfig) *CLITool {
	return &CLITool{
		Executable:   cfg.Executable,
		Timeout:      cfg.Timeout,
		ProbeTimeout: cfg.ProbeTimeout,
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}
}

func (t *CLITool) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, t.ProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.Executable, "--version")
	return cmd.Run() == nil
}

func (t *CLITool) Run(ctx context.Context, args []string) RunResult {
	ctx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.Executable, args...)
	cmd.Stdin = t.Stdin
	cmd.Stdout = t.Stdout
	cmd.Stderr = t.Stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return RunResult{TimedOut: true}
	}
	return RunResult{Succeeded: err == nil}
}

// Unavailable is a Tool that is never reachable.
type Unavailable struct{}

func (Unavailable) Probe(context.Context) bool              { return false }
func (Unavailable) Run(context.Context, []string) RunResult { return RunResult{} }

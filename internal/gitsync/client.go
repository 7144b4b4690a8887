// Package gitsync wraps the git operations behind init, push and pull. The
// git CLI is driven directly; every command targets the sync directory with
// "git -C <dir>".
package gitsync

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Remote is one configured git remote.
type Remote struct {
	Name     string
	FetchURL string
}

// VersionControl is the set of git operations the sync workflow needs.
type VersionControl interface {
	Init(ctx context.Context) error
	AddRemote(ctx context.Context, name, url string) error
	SetRemoteURL(ctx context.Context, name, url string) error
	Remotes(ctx context.Context) ([]Remote, error)
	CurrentBranch(ctx context.Context) (string, error)
	RenameBranch(ctx context.Context, name string) error
	Pull(ctx context.Context) error
	PullFrom(ctx context.Context, remote, branch string) error
	SetUpstream(ctx context.Context, remote, branch string) error
	AddAll(ctx context.Context) error
	IsClean(ctx context.Context) (bool, error)
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context, remote, branch string) error
	Fetch(ctx context.Context, remote string) error
	Stash(ctx context.Context) error
	ResetHard(ctx context.Context, ref string) error
}

// ShellClient implements VersionControl by shelling out to git.
type ShellClient struct {
	dir string
}

// NewShellClient creates a client for the repository at dir.
func NewShellClient(dir string) *ShellClient {
	return &ShellClient{dir: dir}
}

// Dir returns the repository directory.
func (c *ShellClient) Dir() string {
	return c.dir
}

func (c *ShellClient) Init(ctx context.Context) error {
	_, err := c.run(ctx, "init")
	return err
}

func (c *ShellClient) AddRemote(ctx context.Context, name, url string) error {
	_, err := c.run(ctx, "remote", "add", name, url)
	return err
}

func (c *ShellClient) SetRemoteURL(ctx context.Context, name, url string) error {
	_, err := c.run(ctx, "remote", "set-url", name, url)
	return err
}

// Remotes parses "git remote -v", keeping the fetch URL of each remote.
func (c *ShellClient) Remotes(ctx context.Context) ([]Remote, error) {
	out, err := c.run(ctx, "remote", "-v")
	if err != nil {
		return nil, err
	}
	return parseRemotes(out), nil
}

func parseRemotes(out string) []Remote {
	var remotes []Remote
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[2] != "(fetch)" {
			continue
		}
		remotes = append(remotes, Remote{Name: fields[0], FetchURL: fields[1]})
	}
	return remotes
}

func (c *ShellClient) CurrentBranch(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		// An unborn branch has no HEAD commit yet.
		out, err = c.run(ctx, "symbolic-ref", "--short", "HEAD")
		if err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(out), nil
}

func (c *ShellClient) RenameBranch(ctx context.Context, name string) error {
	if _, err := c.run(ctx, "branch", "-M", name); err != nil {
		// Older git cannot rename an unborn branch; point HEAD at it instead.
		_, err = c.run(ctx, "symbolic-ref", "HEAD", "refs/heads/"+name)
		return err
	}
	return nil
}

func (c *ShellClient) Pull(ctx context.Context) error {
	_, err := c.run(ctx, "pull")
	return err
}

func (c *ShellClient) PullFrom(ctx context.Context, remote, branch string) error {
	_, err := c.run(ctx, "pull", remote, branch)
	return err
}

func (c *ShellClient) SetUpstream(ctx context.Context, remote, branch string) error {
	_, err := c.run(ctx, "branch", "--set-upstream-to="+remote+"/"+branch)
	return err
}

func (c *ShellClient) AddAll(ctx context.Context) error {
	_, err := c.run(ctx, "add", "-A")
	return err
}

func (c *ShellClient) IsClean(ctx context.Context) (bool, error) {
	out, err := c.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "", nil
}

func (c *ShellClient) Commit(ctx context.Context, message string) error {
	_, err := c.run(ctx, "commit", "-m", message)
	return err
}

func (c *ShellClient) Push(ctx context.Context, remote, branch string) error {
	_, err := c.run(ctx, "push", "-u", remote, branch)
	return err
}

func (c *ShellClient) Fetch(ctx context.Context, remote string) error {
	_, err := c.run(ctx, "fetch", remote)
	return err
}

func (c *ShellClient) Stash(ctx context.Context) error {
	_, err := c.run(ctx, "stash", "push", "--include-untracked", "-m", "vibe-sync: before reset")
	return err
}

func (c *ShellClient) ResetHard(ctx context.Context, ref string) error {
	_, err := c.run(ctx, "reset", "--hard", ref)
	return err
}

// run executes git in the repository and returns stdout. Stderr is folded
// into the error on failure.
func (c *ShellClient) run(ctx context.Context, args ...string) (string, error) {
	fullArgs := append([]string{"-C", c.dir}, args...)
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w (stderr: %s)",
			strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Package gitinfo collects best-effort repository metadata for session
// records. Every probe is timeout-bounded and failure is never surfaced:
// a field that cannot be determined is simply absent.
package gitinfo

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// probeTimeout bounds each git subprocess independently so an unresponsive
// repository (network filesystem, huge index) cannot stall the caller.
const probeTimeout = 5 * time.Second

// GitInfo is the repository metadata attached to session records. All
// fields are independently optional; absence means "could not determine".
type GitInfo struct {
	CommitHash    string `json:"commit_hash,omitempty"`
	Branch        string `json:"branch,omitempty"`
	RepositoryURL string `json:"repository_url,omitempty"`
}

// Runner executes one subprocess query in a working directory and reports
// its exit status and captured stdout. The default runner shells out; tests
// substitute their own.
type Runner interface {
	Run(ctx context.Context, args []string, cwd string) (exitCode int, output string, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, args []string, cwd string) (int, string, error) {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = cwd
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), string(out), nil
		}
		return -1, "", err
	}
	return 0, string(out), nil
}

// Collect gathers repository metadata for cwd using the default subprocess
// runner. It returns nil when cwd is not inside a git repository. The
// commit hash, branch, and remote URL probes run concurrently, each as an
// isolated subprocess with its own timeout; a timeout or nonzero exit
// leaves that field empty.
func Collect(ctx context.Context, cwd string) *GitInfo {
	return CollectWith(ctx, cwd, execRunner{})
}

// CollectWith is Collect with an explicit subprocess runner.
func CollectWith(ctx context.Context, cwd string, runner Runner) *GitInfo {
	if _, ok := runGit(ctx, runner, cwd, "rev-parse", "--git-dir"); !ok {
		return nil
	}

	info := &GitInfo{}
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		if out, ok := runGit(ctx, runner, cwd, "rev-parse", "HEAD"); ok {
			info.CommitHash = out
		}
	}()
	go func() {
		defer wg.Done()
		// rev-parse prints the literal "HEAD" on a detached head; that is
		// the absence of a branch, not a branch named HEAD.
		if out, ok := runGit(ctx, runner, cwd, "rev-parse", "--abbrev-ref", "HEAD"); ok && out != "HEAD" {
			info.Branch = out
		}
	}()
	go func() {
		defer wg.Done()
		if out, ok := runGit(ctx, runner, cwd, "config", "--get", "remote.origin.url"); ok {
			info.RepositoryURL = out
		}
	}()

	wg.Wait()
	return info
}

// runGit executes one git query, bounded by probeTimeout, and returns its
// trimmed stdout. Any failure reports ok=false.
func runGit(ctx context.Context, runner Runner, cwd string, args ...string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	code, out, err := runner.Run(ctx, append([]string{"git"}, args...), cwd)
	if err != nil || code != 0 {
		slog.Debug("git probe failed", "args", args, "exit_code", code, "error", err)
		return "", false
	}
	return strings.TrimSpace(out), true
}

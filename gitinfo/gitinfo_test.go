package gitinfo

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var commitHashRe = regexp.MustCompile(`^[0-9a-f]{40}$`)

func gitOrSkip(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

// initRepo creates a repository with a single commit on branch main and
// remote origin set, returning its path.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	run("init", "-b", "main")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test User")
	run("remote", "add", "origin", "https://example.com/repo.git")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("hello\n"), 0o644))
	run("add", "README")
	run("commit", "-m", "initial")
	return dir
}

func TestCollect_NonRepository(t *testing.T) {
	gitOrSkip(t)
	info := Collect(context.Background(), t.TempDir())
	assert.Nil(t, info)
}

func TestCollect_Repository(t *testing.T) {
	gitOrSkip(t)
	dir := initRepo(t)

	info := Collect(context.Background(), dir)
	require.NotNil(t, info)
	assert.Regexp(t, commitHashRe, info.CommitHash)
	assert.Equal(t, "main", info.Branch)
	assert.Equal(t, "https://example.com/repo.git", info.RepositoryURL)
}

func TestCollect_DetachedHead(t *testing.T) {
	gitOrSkip(t)
	dir := initRepo(t)

	cmd := exec.Command("git", "checkout", "--detach", "HEAD")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "%s", out)

	info := Collect(context.Background(), dir)
	require.NotNil(t, info)
	assert.Regexp(t, commitHashRe, info.CommitHash)
	assert.Empty(t, info.Branch, "detached head must not report a branch")
}

func TestCollect_NoRemote(t *testing.T) {
	gitOrSkip(t)
	dir := initRepo(t)

	cmd := exec.Command("git", "remote", "remove", "origin")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())

	info := Collect(context.Background(), dir)
	require.NotNil(t, info)
	assert.Empty(t, info.RepositoryURL)
	assert.Regexp(t, commitHashRe, info.CommitHash)
}

// stubRunner answers git queries from a canned table keyed by the
// subcommand arguments.
type stubRunner struct {
	responses map[string]stubResponse
}

type stubResponse struct {
	exitCode int
	output   string
	err      error
}

func (s stubRunner) Run(_ context.Context, args []string, _ string) (int, string, error) {
	resp, ok := s.responses[strings.Join(args[1:], " ")]
	if !ok {
		return 1, "", nil
	}
	return resp.exitCode, resp.output, resp.err
}

func TestCollectWith_MapsProbeOutput(t *testing.T) {
	runner := stubRunner{responses: map[string]stubResponse{
		"rev-parse --git-dir":            {output: ".git\n"},
		"rev-parse HEAD":                 {output: "0123456789abcdef0123456789abcdef01234567\n"},
		"rev-parse --abbrev-ref HEAD":    {output: "feature/x\n"},
		"config --get remote.origin.url": {output: "git@example.com:org/repo.git\n"},
	}}

	info := CollectWith(context.Background(), "/work", runner)
	require.NotNil(t, info)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", info.CommitHash)
	assert.Equal(t, "feature/x", info.Branch)
	assert.Equal(t, "git@example.com:org/repo.git", info.RepositoryURL)
}

func TestCollectWith_DetachedHeadLiteral(t *testing.T) {
	runner := stubRunner{responses: map[string]stubResponse{
		"rev-parse --git-dir":         {output: ".git\n"},
		"rev-parse HEAD":              {output: "0123456789abcdef0123456789abcdef01234567\n"},
		"rev-parse --abbrev-ref HEAD": {output: "HEAD\n"},
	}}

	info := CollectWith(context.Background(), "/work", runner)
	require.NotNil(t, info)
	assert.Empty(t, info.Branch)
}

func TestCollectWith_ProbeFailuresLeaveFieldsEmpty(t *testing.T) {
	runner := stubRunner{responses: map[string]stubResponse{
		"rev-parse --git-dir":         {output: ".git\n"},
		"rev-parse HEAD":              {exitCode: 128},
		"rev-parse --abbrev-ref HEAD": {err: errors.New("spawn failed")},
	}}

	info := CollectWith(context.Background(), "/work", runner)
	require.NotNil(t, info)
	assert.Empty(t, info.CommitHash)
	assert.Empty(t, info.Branch)
	assert.Empty(t, info.RepositoryURL)
}

func TestCollectWith_OutsideRepository(t *testing.T) {
	runner := stubRunner{responses: map[string]stubResponse{}}
	assert.Nil(t, CollectWith(context.Background(), "/work", runner))
}

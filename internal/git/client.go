// Package git runs the git subcommands behind rael's branch, commit, pull,
// push and log commands. Every call shells out to the git executable in
// RepoDir; failures carry git's own stderr.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

// DefaultRemote is the remote consulted for branch checks and deletes
const DefaultRemote = "origin"

var conventionalCommit = regexp.MustCompile(`^(feat|fix|docs|style|refactor|test|chore|build|ci|perf|revert)(\(\w+\))?: .+$`)

// ErrInvalidCommitMessage is returned for messages outside the Conventional
// Commits format
var ErrInvalidCommitMessage = errors.New(`invalid commit message; use the Conventional Commits format, e.g. "feat(login): add remember me option" or "fix: handle empty input"`)

// ErrNotRepository is returned when RepoDir is not inside a work tree
var ErrNotRepository = errors.New("not a git repository; run 'git init' first")

// Client runs git in a repository directory
type Client struct {
	RepoDir string // empty means the process working directory
	GitPath string
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
}

// NewClient creates a client for the current directory
func NewClient() *Client {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		gitPath = "git"
	}

	return &Client{
		GitPath: gitPath,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Logger:  slog.Default(),
	}
}

// NewClientForRepo creates a client for a specific repository
func NewClientForRepo(repoDir string) *Client {
	c := NewClient()
	c.RepoDir = repoDir

	return c
}

// Command creates a git command without attaching stdio
func (c *Client) Command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.GitPath, args...)

	if c.RepoDir != "" {
		cmd.Dir = c.RepoDir
	}

	return cmd
}

// output runs git and returns its trimmed stdout
func (c *Client) output(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := c.Command(ctx, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.log().Debug("git", slog.Any("args", args), slog.String("dir", c.RepoDir))

	if err := cmd.Run(); err != nil {
		return "", NewGitError(args, stderr.String(), err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// stream runs git with its output forwarded to the client writers. Stderr
// is also captured for the error.
func (c *Client) stream(ctx context.Context, args ...string) error {
	var stderr bytes.Buffer

	cmd := c.Command(ctx, args...)
	cmd.Stdout = c.stdout()
	cmd.Stderr = io.MultiWriter(c.stderr(), &stderr)

	c.log().Debug("git", slog.Any("args", args), slog.String("dir", c.RepoDir))

	if err := cmd.Run(); err != nil {
		return NewGitError(args, stderr.String(), err)
	}

	return nil
}

// EnsureRepository fails unless RepoDir is inside a work tree
func (c *Client) EnsureRepository(ctx context.Context) error {
	out, err := c.output(ctx, "rev-parse", "--is-inside-work-tree")

	switch {
	case IsNotRepository(err):
		return ErrNotRepository
	case err != nil:
		return err
	case out != "true":
		return ErrNotRepository
	default:
		return nil
	}
}

// CurrentBranch returns the checked-out branch, empty on a detached HEAD
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	return c.output(ctx, "branch", "--show-current")
}

// HasLocalBranch reports whether refs/heads/name exists
func (c *Client) HasLocalBranch(ctx context.Context, name string) (bool, error) {
	out, err := c.output(ctx, "branch", "--list", name)
	if err != nil {
		return false, err
	}

	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "* ")) == name {
			return true, nil
		}
	}

	return false, nil
}

// HasRemote reports whether a remote is configured
func (c *Client) HasRemote(ctx context.Context, remote string) bool {
	_, err := c.output(ctx, "remote", "get-url", remote)
	return err == nil
}

// HasRemoteBranch asks the remote whether it has the branch. A repository
// without the remote has no remote branches.
func (c *Client) HasRemoteBranch(ctx context.Context, remote, name string) (bool, error) {
	if !c.HasRemote(ctx, remote) {
		return false, nil
	}

	out, err := c.output(ctx, "ls-remote", "--heads", remote, name)
	if err != nil {
		return false, err
	}

	return out != "", nil
}

// CreateBranch creates and checks out name. It refuses a name that exists
// locally or on the default remote.
func (c *Client) CreateBranch(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("branch name is required")
	}

	if err := c.EnsureRepository(ctx); err != nil {
		return err
	}

	local, err := c.HasLocalBranch(ctx, name)
	if err != nil {
		return err
	}

	if local {
		return fmt.Errorf("branch %q already exists locally", name)
	}

	remote, err := c.HasRemoteBranch(ctx, DefaultRemote, name)
	if err != nil {
		return fmt.Errorf("checking remote branches: %w", err)
	}

	if remote {
		return fmt.Errorf("branch %q already exists on the remote repository", name)
	}

	_, err = c.output(ctx, "checkout", "-b", name)

	return err
}

// BranchDeletion reports what DeleteBranch removed
type BranchDeletion struct {
	Local  bool
	Forced bool
	Remote bool

	// RemoteErr is set when the remote branch existed but could not be
	// deleted; the local deletion still stands
	RemoteErr error
}

// DeleteBranch removes name locally and from the default remote, whichever
// has it. An unmerged local branch is force-deleted. The current branch is
// never deleted.
func (c *Client) DeleteBranch(ctx context.Context, name string) (*BranchDeletion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("branch name is required")
	}

	if err := c.EnsureRepository(ctx); err != nil {
		return nil, err
	}

	current, err := c.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}

	if current == name {
		return nil, fmt.Errorf("cannot delete the branch %q because it is the current branch", name)
	}

	result := &BranchDeletion{}

	local, err := c.HasLocalBranch(ctx, name)
	if err != nil {
		return nil, err
	}

	if local {
		_, err := c.output(ctx, "branch", "-d", name)
		if IsNotFullyMerged(err) {
			c.log().Info("branch not fully merged, forcing deletion", slog.String("branch", name))

			result.Forced = true
			_, err = c.output(ctx, "branch", "-D", name)
		}

		if err != nil {
			return nil, err
		}

		result.Local = true
	}

	remote, err := c.HasRemoteBranch(ctx, DefaultRemote, name)
	if err != nil {
		result.RemoteErr = err
		return result, nil
	}

	if remote {
		if _, err := c.output(ctx, "push", DefaultRemote, "--delete", name); err != nil {
			result.RemoteErr = err
		} else {
			result.Remote = true
		}
	}

	return result, nil
}

// Commit stages every change and commits it with message. It reports false
// without committing when the work tree is clean.
func (c *Client) Commit(ctx context.Context, message string) (bool, error) {
	message = strings.TrimSpace(message)
	if !conventionalCommit.MatchString(message) {
		return false, ErrInvalidCommitMessage
	}

	if err := c.EnsureRepository(ctx); err != nil {
		return false, err
	}

	status, err := c.output(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}

	if status == "" {
		return false, nil
	}

	if _, err := c.output(ctx, "add", "-A"); err != nil {
		return false, fmt.Errorf("staging changes: %w", err)
	}

	if _, err := c.output(ctx, "commit", "-m", message); err != nil {
		return false, err
	}

	return true, nil
}

// ValidCommitMessage reports whether message follows Conventional Commits
func ValidCommitMessage(message string) bool {
	return conventionalCommit.MatchString(strings.TrimSpace(message))
}

// Pull pulls the current branch from its upstream
func (c *Client) Pull(ctx context.Context) error {
	if err := c.EnsureRepository(ctx); err != nil {
		return err
	}

	return c.stream(ctx, "pull")
}

// PushOptions configures push behavior
type PushOptions struct {
	SetUpstream bool
	Force       bool
}

// Push pushes the current branch. With SetUpstream the branch is pushed to
// the default remote and tracked.
func (c *Client) Push(ctx context.Context, opts PushOptions) error {
	if err := c.EnsureRepository(ctx); err != nil {
		return err
	}

	args := []string{"push"}

	if opts.Force {
		args = append(args, "--force-with-lease")
	}

	if opts.SetUpstream {
		branch, err := c.CurrentBranch(ctx)
		if err != nil {
			return err
		}

		if branch == "" {
			return errors.New("cannot set upstream on a detached HEAD")
		}

		args = append(args, "-u", DefaultRemote, branch)
	}

	return c.stream(ctx, args...)
}

// LogEntry is one commit of the history
type LogEntry struct {
	Hash    string
	Author  string
	When    string // relative, e.g. "2 hours ago"
	Subject string
}

// String renders the entry as "hash - author, when : subject"
func (e LogEntry) String() string {
	return fmt.Sprintf("%s - %s, %s : %s", e.Hash, e.Author, e.When, e.Subject)
}

const logFieldSep = "\x1f"

// Log returns up to limit commits of the current branch, newest first. A
// limit of 0 returns the whole history. A repository without commits has
// an empty log.
func (c *Client) Log(ctx context.Context, limit int) ([]LogEntry, error) {
	if err := c.EnsureRepository(ctx); err != nil {
		return nil, err
	}

	args := []string{"log", "--pretty=format:%h" + logFieldSep + "%an" + logFieldSep + "%ar" + logFieldSep + "%s"}
	if limit > 0 {
		args = append(args, fmt.Sprintf("-n%d", limit))
	}

	out, err := c.output(ctx, args...)
	if err != nil {
		if IsNoCommits(err) {
			return []LogEntry{}, nil
		}

		return nil, err
	}

	return parseLog(out), nil
}

func parseLog(out string) []LogEntry {
	entries := make([]LogEntry, 0)

	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(line, logFieldSep, 4)
		if len(fields) != 4 {
			continue
		}

		entries = append(entries, LogEntry{
			Hash:    fields[0],
			Author:  fields[1],
			When:    fields[2],
			Subject: fields[3],
		})
	}

	return entries
}

func (c *Client) log() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}

	return c.Logger
}

func (c *Client) stdout() io.Writer {
	if c.Stdout == nil {
		return io.Discard
	}

	return c.Stdout
}

func (c *Client) stderr() io.Writer {
	if c.Stderr == nil {
		return io.Discard
	}

	return c.Stderr
}

// Package gitops publishes formula changes to the tap repository by
// shelling out to git. File mutation is the durable unit of success;
// everything here is best-effort on top of it.
package gitops

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrPushFailed marks a publish step that could not reach the remote.
// The already-verified local state is left in place.
var ErrPushFailed = errors.New("failed to push to tap remote")

// defaultBranches are tried in order when pushing.
var defaultBranches = []string{"main", "master"}

// Runner executes git with the given arguments in dir. It exists so tests
// can record invocations without a git binary.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	logrus.WithField("args", args).Debug("running git")

	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "git %s: %s", strings.Join(args, " "), strings.TrimSpace(buf.String()))
	}

	return strings.TrimSpace(buf.String()), nil
}

// Repo is a local clone of the tap repository.
type Repo struct {
	runner Runner
	remote string
	dir    string
}

// NewRepo returns a Repo backed by the git binary.
func NewRepo(remote, dir string) *Repo {
	return NewRepoWithRunner(remote, dir, execRunner{})
}

// NewRepoWithRunner returns a Repo with a caller-supplied Runner.
func NewRepoWithRunner(remote, dir string, runner Runner) *Repo {
	return &Repo{
		runner: runner,
		remote: remote,
		dir:    dir,
	}
}

// Dir returns the local clone path.
func (r *Repo) Dir() string {
	return r.dir
}

// Ensure clones the remote into the local path if no clone exists there
// yet, and fast-forwards an existing clone otherwise.
func (r *Repo) Ensure(ctx context.Context) error {
	if _, err := os.Stat(r.dir + "/.git"); os.IsNotExist(err) {
		if _, err := r.runner.Run(ctx, "", "clone", r.remote, r.dir); err != nil {
			return errors.Wrapf(err, "failed to clone %s", r.remote)
		}
		return nil
	}

	if _, err := r.runner.Run(ctx, r.dir, "pull", "--ff-only"); err != nil {
		return errors.Wrap(err, "failed to update tap clone")
	}

	return nil
}

// Publish stages path, commits with message, and pushes. Branch names are
// tried in order until the remote accepts one; when none does the error
// wraps ErrPushFailed.
func (r *Repo) Publish(ctx context.Context, path, message string) error {
	if _, err := r.runner.Run(ctx, r.dir, "add", path); err != nil {
		return errors.Wrapf(err, "failed to stage %s", path)
	}

	// Nothing staged means a concurrent run already committed this
	// change; publishing is then a no-op.
	if _, err := r.runner.Run(ctx, r.dir, "diff", "--cached", "--quiet"); err == nil {
		logrus.Debug("nothing staged, skipping commit")
		return nil
	}

	if _, err := r.runner.Run(ctx, r.dir, "commit", "-m", message); err != nil {
		return errors.Wrap(err, "failed to commit formula change")
	}

	var lastErr error
	for _, branch := range defaultBranches {
		if _, err := r.runner.Run(ctx, r.dir, "push", "origin", "HEAD:"+branch); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return errors.Wrapf(ErrPushFailed, "%v", lastErr)
}

// Package svnclient reads Subversion working copies through the local svn binary.
package svnclient

import (
	"bytes"
	"context"
	"io"
	"iter"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/huangsam/revstamp/internal/contract"
	"github.com/huangsam/revstamp/schema"
)

// Error codes svn reports for paths outside a working copy.
var notWorkingCopyCodes = []string{"E155007", "W155007", "W155010", "E155010"}

// LocalSVNClient implements the VCSClient interface by executing the
// local 'svn' binary installed on the machine.
type LocalSVNClient struct {
	binary string
}

var _ contract.VCSClient = &LocalSVNClient{} // Compile-time check

// NewLocalSVNClient creates a client for the given binary, or "svn" when empty.
func NewLocalSVNClient(binary string) *LocalSVNClient {
	if binary == "" {
		binary = "svn"
	}
	return &LocalSVNClient{binary: binary}
}

// Kind implements the VCSClient interface.
func (c *LocalSVNClient) Kind() schema.BackendKind { return schema.SVNVCS }

// Run executes an svn command and returns its stdout.
func (c *LocalSVNClient) Run(ctx context.Context, args ...string) ([]byte, error) {
	fullArgs := append([]string{"--non-interactive"}, args...)
	cmd := exec.CommandContext(ctx, c.binary, fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, &commandError{args: fullArgs, stderr: strings.TrimSpace(string(exitErr.Stderr))}
	} else if err != nil {
		return nil, errors.Wrapf(err, "svn '%v' unknown", strings.Join(fullArgs, " "))
	}
	return out, nil
}

// commandError keeps svn's own diagnostic text.
type commandError struct {
	args   []string
	stderr string
}

func (e *commandError) Error() string {
	return "svn '" + strings.Join(e.args, " ") + "' exit: " + e.stderr
}

func (e *commandError) notWorkingCopy() bool {
	for _, code := range notWorkingCopyCodes {
		if strings.Contains(e.stderr, code) {
			return true
		}
	}
	return false
}

// IsVersionedDirectory implements the VCSClient interface by executing 'svn info'.
func (c *LocalSVNClient) IsVersionedDirectory(ctx context.Context, dir string) (bool, error) {
	_, err := c.Run(ctx, "info", "--xml", dir)
	if err == nil {
		return true, nil
	}
	var cmdErr *commandError
	if errors.As(err, &cmdErr) && cmdErr.notWorkingCopy() {
		return false, nil
	}
	return false, contract.BackendError(err, "cannot inspect %s", dir)
}

// ResolveRootAndPath implements the VCSClient interface.
func (c *LocalSVNClient) ResolveRootAndPath(ctx context.Context, dir string) (string, string, error) {
	out, err := c.Run(ctx, "info", "--xml", dir)
	if err != nil {
		return "", "", contract.BackendError(err, "cannot read info of %s", dir)
	}
	entry, err := parseInfo(out)
	if err != nil {
		return "", "", contract.BackendError(err, "cannot read info of %s", dir)
	}
	return entry.Repository.Root, entry.relativePath(), nil
}

// StreamStatus implements the VCSClient interface by streaming 'svn status --xml'.
// Entries are decoded as svn prints them, so large working copies are never held in memory.
func (c *LocalSVNClient) StreamStatus(ctx context.Context, dir string, opts contract.StatusOptions) iter.Seq2[schema.StatusRecord, error] {
	return func(yield func(schema.StatusRecord, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		args := append([]string{"--non-interactive"}, statusArgs(dir, opts)...)
		cmd := exec.CommandContext(ctx, c.binary, args...)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			yield(schema.StatusRecord{}, contract.BackendError(err, "cannot run svn status"))
			return
		}
		if err := cmd.Start(); err != nil {
			yield(schema.StatusRecord{}, contract.BackendError(err, "cannot run svn status"))
			return
		}

		var decodeErr error
		stopped := false
		for record, err := range DecodeStatus(stdout, dir) {
			if err != nil {
				decodeErr = err
				break
			}
			if !yield(record, nil) {
				stopped = true
				break
			}
		}
		if stopped {
			cancel()
			_, _ = io.Copy(io.Discard, stdout)
			_ = cmd.Wait()
			return
		}
		_, _ = io.Copy(io.Discard, stdout)
		waitErr := cmd.Wait()
		switch {
		case waitErr != nil:
			cause := &commandError{args: args, stderr: strings.TrimSpace(stderr.String())}
			yield(schema.StatusRecord{}, contract.BackendError(cause, "status of %s failed", dir))
		case decodeErr != nil:
			yield(schema.StatusRecord{}, contract.BackendError(decodeErr, "status of %s failed", dir))
		}
	}
}

// statusArgs builds the status command line for the requested options.
func statusArgs(dir string, opts contract.StatusOptions) []string {
	args := []string{"status", "--xml", "--verbose", "--depth", "infinity"}
	if opts.ContactRemote {
		args = append(args, "--show-updates")
	}
	if opts.IncludeIgnored {
		args = append(args, "--no-ignore")
	}
	return append(args, dir)
}

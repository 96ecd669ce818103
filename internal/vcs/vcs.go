// Package vcs picks the version-control backend for a working copy.
package vcs

import (
	"context"
	"iter"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/huangsam/revstamp/internal/contract"
	"github.com/huangsam/revstamp/internal/gitclient"
	"github.com/huangsam/revstamp/internal/svnclient"
	"github.com/huangsam/revstamp/schema"
)

var errNotVersioned = errors.New("directory is not under version control")

// NewClient returns the client for the given backend kind.
func NewClient(kind schema.BackendKind) (contract.VCSClient, error) {
	switch kind {
	case schema.GitVCS:
		return gitclient.NewGoGitClient(), nil
	case schema.SVNVCS:
		return svnclient.NewLocalSVNClient(""), nil
	case schema.AutoVCS, "":
		return NewAutoClient(gitclient.NewGoGitClient(), svnclient.NewLocalSVNClient("")), nil
	default:
		return nil, contract.ConfigError("unknown backend '%s'. must be auto, svn, git", kind)
	}
}

// AutoClient delegates to the first candidate that reports a directory as versioned.
// Candidates are probed in order, once per directory.
type AutoClient struct {
	candidates []contract.VCSClient

	mu       sync.Mutex
	resolved map[string]contract.VCSClient
}

var _ contract.VCSClient = &AutoClient{} // Compile-time check

// NewAutoClient creates an auto-detecting client over the given candidates.
func NewAutoClient(candidates ...contract.VCSClient) *AutoClient {
	return &AutoClient{candidates: candidates, resolved: make(map[string]contract.VCSClient)}
}

// Kind implements the VCSClient interface.
func (c *AutoClient) Kind() schema.BackendKind { return schema.AutoVCS }

// Detect returns the backend owning dir, or nil when no candidate versions it.
// A failing candidate is skipped; the failure is returned only when every candidate failed.
func (c *AutoClient) Detect(ctx context.Context, dir string) (contract.VCSClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.resolved[dir]; ok {
		return client, nil
	}
	var firstErr error
	answered := false
	for _, candidate := range c.candidates {
		ok, err := candidate.IsVersionedDirectory(ctx, dir)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			c.resolved[dir] = candidate
			return candidate, nil
		}
		answered = true
	}
	if answered {
		return nil, nil
	}
	return nil, firstErr
}

// IsVersionedDirectory implements the VCSClient interface.
func (c *AutoClient) IsVersionedDirectory(ctx context.Context, dir string) (bool, error) {
	client, err := c.Detect(ctx, dir)
	if client != nil {
		return true, nil
	}
	return false, err
}

// ResolveRootAndPath implements the VCSClient interface.
func (c *AutoClient) ResolveRootAndPath(ctx context.Context, dir string) (string, string, error) {
	client, err := c.Detect(ctx, dir)
	if err != nil {
		return "", "", err
	}
	if client == nil {
		return "", "", contract.BackendError(errNotVersioned, "cannot resolve %s", dir)
	}
	return client.ResolveRootAndPath(ctx, dir)
}

// StreamStatus implements the VCSClient interface.
func (c *AutoClient) StreamStatus(ctx context.Context, dir string, opts contract.StatusOptions) iter.Seq2[schema.StatusRecord, error] {
	return func(yield func(schema.StatusRecord, error) bool) {
		client, err := c.Detect(ctx, dir)
		if err == nil && client == nil {
			err = contract.BackendError(errNotVersioned, "cannot read status of %s", dir)
		}
		if err != nil {
			yield(schema.StatusRecord{}, err)
			return
		}
		for record, err := range client.StreamStatus(ctx, dir, opts) {
			if !yield(record, err) {
				return
			}
		}
	}
}

// Resolved returns the backend kind chosen for dir, or auto when none was chosen yet.
func (c *AutoClient) Resolved(dir string) schema.BackendKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.resolved[dir]; ok {
		return client.Kind()
	}
	return schema.AutoVCS
}

// Package gitclient reads git working copies in-process with go-git.
package gitclient

import (
	"context"
	"io"
	"iter"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/huangsam/revstamp/internal/contract"
	"github.com/huangsam/revstamp/schema"
)

// GoGitClient implements the VCSClient interface on top of go-git, so no git binary is needed.
type GoGitClient struct{}

var _ contract.VCSClient = &GoGitClient{} // Compile-time check

// NewGoGitClient creates a new instance of the go-git client.
func NewGoGitClient() *GoGitClient {
	return &GoGitClient{}
}

// Kind implements the VCSClient interface.
func (c *GoGitClient) Kind() schema.BackendKind { return schema.GitVCS }

// workingCopy is an opened repository plus the location of dir inside it.
type workingCopy struct {
	repo   *git.Repository
	wt     *git.Worktree
	root   string // worktree root, symlinks resolved
	prefix string // dir relative to root, slash separated, "" at the root
}

func open(dir string) (*workingCopy, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	root, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve worktree root")
	}
	target, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve %s", dir)
	}
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return nil, errors.Wrapf(err, "%s is outside worktree %s", dir, root)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		rel = ""
	}
	return &workingCopy{repo: repo, wt: wt, root: root, prefix: rel}, nil
}

// IsVersionedDirectory implements the VCSClient interface.
func (c *GoGitClient) IsVersionedDirectory(_ context.Context, dir string) (bool, error) {
	_, err := open(dir)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, git.ErrRepositoryNotExists), errors.Is(err, git.ErrIsBareRepository):
		return false, nil
	default:
		return false, contract.BackendError(err, "cannot open %s", dir)
	}
}

// ResolveRootAndPath implements the VCSClient interface.
// The root is the URL of "origin", else of the first remote, else the worktree as a file URL.
func (c *GoGitClient) ResolveRootAndPath(_ context.Context, dir string) (string, string, error) {
	wc, err := open(dir)
	if err != nil {
		return "", "", contract.BackendError(err, "cannot open %s", dir)
	}
	url, err := wc.repositoryURL()
	if err != nil {
		return "", "", contract.BackendError(err, "cannot read remotes of %s", dir)
	}
	return url, wc.prefix, nil
}

func (wc *workingCopy) repositoryURL() (string, error) {
	remotes, err := wc.repo.Remotes()
	if err != nil {
		return "", err
	}
	slices.SortFunc(remotes, func(a, b *git.Remote) int {
		return strings.Compare(a.Config().Name, b.Config().Name)
	})
	for _, r := range remotes {
		if r.Config().Name == git.DefaultRemoteName && len(r.Config().URLs) > 0 {
			return r.Config().URLs[0], nil
		}
	}
	for _, r := range remotes {
		if len(r.Config().URLs) > 0 {
			return r.Config().URLs[0], nil
		}
	}
	return "file://" + filepath.ToSlash(wc.root), nil
}

// headState is HEAD's commit and its revision number, the count of reachable commits.
type headState struct {
	ref      *plumbing.Reference
	commit   *object.Commit
	revision int64
}

func (wc *workingCopy) head() (headState, error) {
	ref, err := wc.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return headState{}, nil
	}
	if err != nil {
		return headState{}, err
	}
	commit, err := wc.repo.CommitObject(ref.Hash())
	if err != nil {
		return headState{}, err
	}
	commits, err := wc.repo.Log(&git.LogOptions{From: ref.Hash()})
	if err != nil {
		return headState{}, err
	}
	defer commits.Close()
	var count int64
	if err := commits.ForEach(func(*object.Commit) error {
		count++
		return nil
	}); err != nil {
		return headState{}, err
	}
	return headState{ref: ref, commit: commit, revision: count}, nil
}

// remoteMoved reports whether the tracked remote branch points somewhere other than HEAD.
func (wc *workingCopy) remoteMoved(ctx context.Context, head headState) (bool, error) {
	if head.ref == nil || !head.ref.Name().IsBranch() {
		return false, nil
	}
	remote, err := wc.repo.Remote(git.DefaultRemoteName)
	if errors.Is(err, git.ErrRemoteNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return false, err
	}
	for _, ref := range refs {
		if ref.Name() == head.ref.Name() {
			return ref.Hash() != head.ref.Hash(), nil
		}
	}
	return false, nil
}

// StreamStatus implements the VCSClient interface.
// Every committed file under dir is reported, with worktree changes layered on top.
func (c *GoGitClient) StreamStatus(ctx context.Context, dir string, opts contract.StatusOptions) iter.Seq2[schema.StatusRecord, error] {
	return func(yield func(schema.StatusRecord, error) bool) {
		fail := func(err error) {
			yield(schema.StatusRecord{}, contract.BackendError(err, "status of %s failed", dir))
		}
		wc, err := open(dir)
		if err != nil {
			fail(err)
			return
		}
		head, err := wc.head()
		if err != nil {
			fail(err)
			return
		}
		status, err := wc.wt.Status()
		if err != nil {
			fail(err)
			return
		}

		root := schema.StatusRecord{
			Path:                 ".",
			Revision:             head.revision,
			ContentStatus:        schema.StatusNormal,
			PropertyStatus:       schema.StatusNone,
			RemoteContentStatus:  schema.StatusNone,
			RemotePropertyStatus: schema.StatusNone,
		}
		if opts.ContactRemote {
			moved, err := wc.remoteMoved(ctx, head)
			if err != nil {
				fail(err)
				return
			}
			if moved {
				root.RemoteContentStatus = schema.StatusModified
			}
		}
		if !yield(root, nil) {
			return
		}

		seen := make(map[string]struct{})
		if head.commit != nil {
			tree, err := head.commit.Tree()
			if err != nil {
				fail(err)
				return
			}
			files := tree.Files()
			defer files.Close()
			for {
				if err := ctx.Err(); err != nil {
					fail(err)
					return
				}
				f, err := files.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					fail(err)
					return
				}
				rel, ok := wc.relative(f.Name)
				if !ok {
					continue
				}
				seen[f.Name] = struct{}{}
				if !yield(fileRecord(rel, head.revision, status[f.Name]), nil) {
					return
				}
			}
		}

		// Paths that only exist in the index or the worktree.
		extra := make([]string, 0)
		for name := range status {
			if _, ok := seen[name]; ok {
				continue
			}
			if _, ok := wc.relative(name); ok {
				extra = append(extra, name)
			}
		}
		slices.Sort(extra)
		for _, name := range extra {
			rel, _ := wc.relative(name)
			record := fileRecord(rel, head.revision, status[name])
			if record.ContentStatus == schema.StatusNormal {
				continue
			}
			if !yield(record, nil) {
				return
			}
		}
	}
}

// relative maps a repository path to a path under dir.
func (wc *workingCopy) relative(name string) (string, bool) {
	if wc.prefix == "" {
		return name, true
	}
	rest, ok := strings.CutPrefix(name, wc.prefix+"/")
	return rest, ok
}

// fileRecord converts a go-git file status into a record.
func fileRecord(path string, revision int64, fs *git.FileStatus) schema.StatusRecord {
	record := schema.StatusRecord{
		Path:                 path,
		Revision:             revision,
		ContentStatus:        schema.StatusNormal,
		PropertyStatus:       schema.StatusNone,
		RemoteContentStatus:  schema.StatusNone,
		RemotePropertyStatus: schema.StatusNone,
	}
	if fs == nil {
		return record
	}
	record.ContentStatus = kindOf(fs.Staging, fs.Worktree)
	switch record.ContentStatus {
	case schema.StatusUnversioned:
		record.Revision = -1
	case schema.StatusAdded:
		record.Revision = 0
	}
	return record
}

func kindOf(staging, worktree git.StatusCode) schema.StatusKind {
	switch {
	case staging == git.UpdatedButUnmerged || worktree == git.UpdatedButUnmerged:
		return schema.StatusConflicted
	case staging == git.Untracked || worktree == git.Untracked:
		return schema.StatusUnversioned
	case staging == git.Added || staging == git.Copied:
		return schema.StatusAdded
	case staging == git.Deleted:
		return schema.StatusDeleted
	case staging == git.Renamed:
		return schema.StatusReplaced
	case worktree == git.Deleted:
		return schema.StatusMissing
	case staging == git.Modified || worktree == git.Modified:
		return schema.StatusModified
	default:
		return schema.StatusNormal
	}
}

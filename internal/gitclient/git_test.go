package gitclient

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/huangsam/revstamp/internal/contract"
	"github.com/huangsam/revstamp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var signature = &object.Signature{
	Name:  "Builder",
	Email: "builder@example.org",
	When:  time.Date(2026, 3, 2, 10, 15, 0, 0, time.UTC),
}

// repoFixture is a scratch repository for tests.
type repoFixture struct {
	t    *testing.T
	dir  string
	repo *git.Repository
	wt   *git.Worktree
}

func newRepo(t *testing.T) *repoFixture {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return &repoFixture{t: t, dir: dir, repo: repo, wt: wt}
}

func (f *repoFixture) write(name, content string) {
	f.t.Helper()
	path := filepath.Join(f.dir, filepath.FromSlash(name))
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0o644))
}

func (f *repoFixture) commit(msg string, names ...string) {
	f.t.Helper()
	for _, name := range names {
		_, err := f.wt.Add(name)
		require.NoError(f.t, err)
	}
	_, err := f.wt.Commit(msg, &git.CommitOptions{Author: signature})
	require.NoError(f.t, err)
}

func statusOf(t *testing.T, dir string, opts contract.StatusOptions) map[string]schema.StatusRecord {
	t.Helper()
	out := make(map[string]schema.StatusRecord)
	for r, err := range NewGoGitClient().StreamStatus(context.Background(), dir, opts) {
		require.NoError(t, err)
		out[r.Path] = r
	}
	return out
}

func TestIsVersionedDirectory(t *testing.T) {
	ctx := context.Background()
	client := NewGoGitClient()
	assert.Equal(t, schema.GitVCS, client.Kind())

	ok, err := client.IsVersionedDirectory(ctx, t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)

	f := newRepo(t)
	f.write("src/main.go", "package main\n")
	ok, err = client.IsVersionedDirectory(ctx, f.dir)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.IsVersionedDirectory(ctx, filepath.Join(f.dir, "src"))
	require.NoError(t, err)
	assert.True(t, ok, "subdirectories are detected through the parent .git")
}

func TestResolveRootAndPath(t *testing.T) {
	ctx := context.Background()
	f := newRepo(t)
	f.write("services/api/main.go", "package main\n")

	root, path, err := NewGoGitClient().ResolveRootAndPath(ctx, f.dir)
	require.NoError(t, err)
	assert.Equal(t, "file://"+filepath.ToSlash(f.dir), root)
	assert.Equal(t, "", path)

	_, err = f.repo.CreateRemote(&config.RemoteConfig{Name: "upstream", URLs: []string{"https://example.org/upstream.git"}})
	require.NoError(t, err)
	root, _, err = NewGoGitClient().ResolveRootAndPath(ctx, f.dir)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/upstream.git", root)

	_, err = f.repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{"https://example.org/app.git"}})
	require.NoError(t, err)
	root, path, err = NewGoGitClient().ResolveRootAndPath(ctx, filepath.Join(f.dir, "services", "api"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/app.git", root, "origin wins over other remotes")
	assert.Equal(t, "services/api", path)
}

func TestStreamStatus_UnbornHead(t *testing.T) {
	f := newRepo(t)
	f.write("README", "hello\n")

	records := statusOf(t, f.dir, contract.StatusOptions{})
	require.Contains(t, records, ".")
	assert.Equal(t, int64(0), records["."].Revision)
	assert.Equal(t, schema.StatusUnversioned, records["README"].ContentStatus)
	assert.Equal(t, int64(-1), records["README"].Revision)
}

func TestStreamStatus_WorkingTreeChanges(t *testing.T) {
	f := newRepo(t)
	f.write("a.txt", "a\n")
	f.write("b.txt", "b\n")
	f.write("c.txt", "c\n")
	f.write("d.txt", "d\n")
	f.commit("first", "a.txt", "b.txt")
	f.commit("second", "c.txt", "d.txt")

	f.write("a.txt", "changed\n")
	require.NoError(t, os.Remove(filepath.Join(f.dir, "b.txt")))
	_, err := f.wt.Remove("c.txt")
	require.NoError(t, err)
	f.write("e.txt", "staged\n")
	_, err = f.wt.Add("e.txt")
	require.NoError(t, err)
	f.write("f.txt", "untracked\n")

	records := statusOf(t, f.dir, contract.StatusOptions{})

	assert.Equal(t, int64(2), records["."].Revision, "revision counts reachable commits")
	assert.Equal(t, schema.StatusModified, records["a.txt"].ContentStatus)
	assert.Equal(t, schema.StatusMissing, records["b.txt"].ContentStatus)
	assert.Equal(t, schema.StatusDeleted, records["c.txt"].ContentStatus)
	assert.Equal(t, schema.StatusNormal, records["d.txt"].ContentStatus)
	assert.Equal(t, int64(2), records["d.txt"].Revision)
	assert.Equal(t, schema.StatusAdded, records["e.txt"].ContentStatus)
	assert.Equal(t, int64(0), records["e.txt"].Revision)
	assert.Equal(t, schema.StatusUnversioned, records["f.txt"].ContentStatus)

	for _, r := range records {
		assert.Equal(t, schema.StatusNone, r.PropertyStatus, r.Path)
		assert.False(t, r.HasRemoteChanges(), r.Path)
	}
}

func TestStreamStatus_Subdirectory(t *testing.T) {
	f := newRepo(t)
	f.write("docs/guide.md", "guide\n")
	f.write("src/main.go", "package main\n")
	f.commit("init", "docs/guide.md", "src/main.go")
	f.write("src/extra.go", "package main\n")
	f.write("docs/draft.md", "draft\n")

	records := statusOf(t, filepath.Join(f.dir, "src"), contract.StatusOptions{})
	assert.Len(t, records, 3)
	assert.Contains(t, records, ".")
	assert.Equal(t, schema.StatusNormal, records["main.go"].ContentStatus)
	assert.Equal(t, schema.StatusUnversioned, records["extra.go"].ContentStatus)
	assert.NotContains(t, records, "docs/draft.md")
}

func TestStreamStatus_StopsEarly(t *testing.T) {
	f := newRepo(t)
	for _, name := range []string{"1", "2", "3", "4"} {
		f.write(name, name)
	}
	f.commit("init", "1", "2", "3", "4")

	count := 0
	for range NewGoGitClient().StreamStatus(context.Background(), f.dir, contract.StatusOptions{}) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestStreamStatus_NotARepository(t *testing.T) {
	var gotErr error
	for _, err := range NewGoGitClient().StreamStatus(context.Background(), t.TempDir(), contract.StatusOptions{}) {
		gotErr = err
	}
	assert.Error(t, gotErr)
}

func TestStreamStatus_RemoteMoved(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("local file transport needs git on PATH")
	}
	upstream := newRepo(t)
	upstream.write("README", "v1\n")
	upstream.commit("v1", "README")

	cloneDir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	_, err = git.PlainClone(cloneDir, false, &git.CloneOptions{URL: upstream.dir})
	require.NoError(t, err)

	records := statusOf(t, cloneDir, contract.StatusOptions{ContactRemote: true})
	assert.False(t, records["."].HasRemoteChanges())

	upstream.write("README", "v2\n")
	upstream.commit("v2", "README")

	records = statusOf(t, cloneDir, contract.StatusOptions{ContactRemote: true})
	assert.Equal(t, schema.StatusModified, records["."].RemoteContentStatus)

	records = statusOf(t, cloneDir, contract.StatusOptions{})
	assert.False(t, records["."].HasRemoteChanges(), "remote is only contacted on request")
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		staging, worktree git.StatusCode
		want              schema.StatusKind
	}{
		{git.Unmodified, git.Unmodified, schema.StatusNormal},
		{git.Untracked, git.Untracked, schema.StatusUnversioned},
		{git.Added, git.Unmodified, schema.StatusAdded},
		{git.Copied, git.Unmodified, schema.StatusAdded},
		{git.Deleted, git.Unmodified, schema.StatusDeleted},
		{git.Unmodified, git.Deleted, schema.StatusMissing},
		{git.Renamed, git.Unmodified, schema.StatusReplaced},
		{git.Modified, git.Unmodified, schema.StatusModified},
		{git.Unmodified, git.Modified, schema.StatusModified},
		{git.UpdatedButUnmerged, git.Modified, schema.StatusConflicted},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, kindOf(tt.staging, tt.worktree), "%q%q", tt.staging, tt.worktree)
	}
}

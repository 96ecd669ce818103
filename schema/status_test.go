package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusKind_IsNoneAndQuiet(t *testing.T) {
	assert.True(t, StatusKind("").IsNone())
	assert.True(t, StatusNone.IsNone())
	assert.False(t, StatusNormal.IsNone())

	assert.True(t, StatusNormal.IsQuiet())
	assert.True(t, StatusKind("").IsQuiet())
	assert.False(t, StatusModified.IsQuiet())
	assert.False(t, StatusKind("merged").IsQuiet())
}

func TestStatusKind_IsKnown(t *testing.T) {
	for _, k := range KnownStatusKinds {
		assert.True(t, k.IsKnown(), "%s should be known", k)
	}
	assert.False(t, StatusKind("merged").IsKnown())
}

func TestStatusKind_Code(t *testing.T) {
	tests := map[StatusKind]byte{
		StatusNone:        ' ',
		StatusNormal:      ' ',
		StatusModified:    'M',
		StatusUnversioned: '?',
		StatusMissing:     '!',
		StatusObstructed:  '~',
		StatusIncomplete:  ':',
		"merged":          ' ',
	}
	for kind, want := range tests {
		assert.Equal(t, want, kind.Code(), "code for %q", kind)
	}
}

func TestStatusRecord_HasRemoteChanges(t *testing.T) {
	assert.False(t, StatusRecord{}.HasRemoteChanges())
	assert.False(t, StatusRecord{RemoteContentStatus: StatusNone, RemotePropertyStatus: StatusNone}.HasRemoteChanges())
	assert.True(t, StatusRecord{RemoteContentStatus: StatusModified}.HasRemoteChanges())
	assert.True(t, StatusRecord{RemotePropertyStatus: StatusModified}.HasRemoteChanges())
}

func TestStatusRecord_TraceLine(t *testing.T) {
	r := StatusRecord{
		Path:           "src/main.go",
		Revision:       42,
		ContentStatus:  StatusModified,
		PropertyStatus: StatusNormal,
	}
	assert.Equal(t, "M       42 src/main.go", r.TraceLine())

	r = StatusRecord{
		Path:                "pom.xml",
		Revision:            -1,
		ContentStatus:       StatusUnversioned,
		PropertyStatus:      StatusNone,
		RemoteContentStatus: StatusModified,
	}
	assert.Equal(t, "? *     -1 pom.xml", r.TraceLine())
}

func TestRevision(t *testing.T) {
	assert.False(t, NoRevision.IsSet())
	assert.Equal(t, "", NoRevision.String())
	assert.Nil(t, NoRevision.Pointer())

	r := NoRevision.Max(5)
	n, ok := r.Get()
	assert.True(t, ok)
	assert.Equal(t, int64(5), n)

	assert.Equal(t, RevisionOf(7), r.Max(7))
	assert.Equal(t, RevisionOf(5), r.Max(3))
	assert.Equal(t, RevisionOf(3), r.Min(3))
	assert.Equal(t, RevisionOf(5), r.Min(9))
	assert.Equal(t, RevisionOf(9), NoRevision.Min(9))
	assert.Equal(t, "5", r.String())
	assert.Equal(t, int64(5), *r.Pointer())
}

func TestDefaultReportConfig(t *testing.T) {
	cfg := DefaultReportConfig()
	assert.True(t, cfg.ReportMixedRevisions)
	assert.True(t, cfg.ReportStatus)
	assert.True(t, cfg.ReportUnversioned)
	assert.False(t, cfg.ReportIgnored)
	assert.False(t, cfg.ReportOutOfDate)
	assert.False(t, cfg.Verbose)
}

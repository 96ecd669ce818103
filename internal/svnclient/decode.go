package svnclient

import (
	"encoding/xml"
	"io"
	"iter"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/huangsam/revstamp/schema"
)

// infoEntry is the part of 'svn info --xml' the client needs.
type infoEntry struct {
	Path       string `xml:"path,attr"`
	Revision   string `xml:"revision,attr"`
	URL        string `xml:"url"`
	Repository struct {
		Root string `xml:"root"`
		UUID string `xml:"uuid"`
	} `xml:"repository"`
}

// relativePath strips the repository root from the entry URL.
func (e infoEntry) relativePath() string {
	rel := strings.TrimPrefix(e.URL, e.Repository.Root)
	return strings.TrimPrefix(rel, "/")
}

func parseInfo(data []byte) (infoEntry, error) {
	var doc struct {
		Entries []infoEntry `xml:"entry"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return infoEntry{}, errors.Wrap(err, "malformed svn info output")
	}
	if len(doc.Entries) == 0 {
		return infoEntry{}, errors.New("svn info returned no entry")
	}
	return doc.Entries[0], nil
}

// itemStatus is the item/props pair shared by wc-status and repos-status.
type itemStatus struct {
	Item     string `xml:"item,attr"`
	Props    string `xml:"props,attr"`
	Revision string `xml:"revision,attr"`
}

type statusEntry struct {
	Path   string      `xml:"path,attr"`
	Local  itemStatus  `xml:"wc-status"`
	Remote *itemStatus `xml:"repos-status"`
}

// DecodeStatus lazily decodes 'svn status --xml' output into records.
// Paths are reported relative to dir, using forward slashes.
func DecodeStatus(r io.Reader, dir string) iter.Seq2[schema.StatusRecord, error] {
	return func(yield func(schema.StatusRecord, error) bool) {
		dec := xml.NewDecoder(r)
		for {
			tok, err := dec.Token()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(schema.StatusRecord{}, errors.Wrap(err, "malformed svn status output"))
				return
			}
			start, ok := tok.(xml.StartElement)
			if !ok || start.Name.Local != "entry" {
				continue
			}
			var entry statusEntry
			if err := dec.DecodeElement(&entry, &start); err != nil {
				yield(schema.StatusRecord{}, errors.Wrap(err, "malformed svn status entry"))
				return
			}
			record, err := entry.record(dir)
			if err != nil {
				yield(schema.StatusRecord{}, err)
				return
			}
			if !yield(record, nil) {
				return
			}
		}
	}
}

func (e statusEntry) record(dir string) (schema.StatusRecord, error) {
	revision := int64(-1)
	if e.Local.Revision != "" {
		n, err := strconv.ParseInt(e.Local.Revision, 10, 64)
		if err != nil {
			return schema.StatusRecord{}, errors.Wrapf(err, "bad revision %q for %s", e.Local.Revision, e.Path)
		}
		revision = n
	}
	record := schema.StatusRecord{
		Path:                 relativeTo(dir, e.Path),
		Revision:             revision,
		ContentStatus:        kindOf(e.Local.Item),
		PropertyStatus:       kindOf(e.Local.Props),
		RemoteContentStatus:  schema.StatusNone,
		RemotePropertyStatus: schema.StatusNone,
	}
	if e.Remote != nil {
		record.RemoteContentStatus = kindOf(e.Remote.Item)
		record.RemotePropertyStatus = kindOf(e.Remote.Props)
	}
	return record, nil
}

func kindOf(s string) schema.StatusKind {
	if s == "" {
		return schema.StatusNone
	}
	return schema.StatusKind(s)
}

func relativeTo(dir, path string) string {
	if dir == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

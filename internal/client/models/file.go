// Package models defines the client-side data shapes exchanged with the
// storage backend and held by the dashboard services.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// RecordID is a backend identifier. The backend may send it as a JSON
// string or number; both decode to the same textual form.
type RecordID string

func (id *RecordID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

// RemoteFileRecord is a file as listed by the backend. The client only
// ever holds a read-only copy.
type RemoteFileRecord struct {
	ID         RecordID `json:"id"`
	FileName   string   `json:"fileName"`
	FileURL    string   `json:"fileURL"`
	UploadDate string   `json:"uploadDate"`
}

var uploadDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006, 3:04:05 PM",
	"1/2/2006",
}

// UploadTime parses UploadDate using the layouts the backend is known to
// emit. ok is false when none matches.
func (r RemoteFileRecord) UploadTime() (t time.Time, ok bool) {
	s := strings.TrimSpace(r.UploadDate)
	for _, layout := range uploadDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

// DownloadName is the local file name used when saving the record: the
// last path element of its URL, falling back to the display name.
func (r RemoteFileRecord) DownloadName() string {
	u := r.FileURL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	name := path.Base(u)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if name == "." || name == "/" || name == "" {
		name = r.FileName
	}
	if name == "" {
		name = string(r.ID)
	}
	return name
}

// Kind classifies the record by its file name extension.
func (r RemoteFileRecord) Kind() FileKind {
	return KindOf(r.FileName)
}

// PendingFile is a local file chosen for upload. Content is read from Path
// when the batch is submitted.
type PendingFile struct {
	Path string
	Name string
	Size int64
}

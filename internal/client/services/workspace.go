package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/clouddash/internal/client/client"
	"github.com/dmitrijs2005/clouddash/internal/client/models"
	"github.com/dmitrijs2005/clouddash/internal/filex"
	"github.com/dmitrijs2005/clouddash/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Upload limits used when the configuration leaves them unset.
const (
	DefaultMaxFileBytes   int64 = 200 << 20
	DefaultThresholdBytes int64 = 10 << 20
)

// UploadPolicy decides which files may be uploaded and where they go.
type UploadPolicy struct {
	MaxFileBytes      int64
	ThresholdBytes    int64
	PrimaryEndpoint   string
	SecondaryEndpoint string
}

// EndpointFor routes a batch by the size of its first file: anything below
// the threshold goes to the primary endpoint.
func (p UploadPolicy) EndpointFor(firstSize int64) string {
	if firstSize < p.ThresholdBytes || p.SecondaryEndpoint == "" {
		return p.PrimaryEndpoint
	}
	return p.SecondaryEndpoint
}

// Exclusion names a candidate that Select refused and why.
type Exclusion struct {
	Name string
	Err  error
}

type SortKey string

const (
	SortByName SortKey = "name"
	SortByDate SortKey = "date"
)

type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// DownloadResult is the outcome for one record of DownloadFiles.
type DownloadResult struct {
	Record models.RemoteFileRecord
	Path   string
	Err    error
}

// Workspace holds the pending upload batch and the cached remote listing.
type Workspace struct {
	api    client.FilesAPI
	policy UploadPolicy
	user   func() string
	log    logging.Logger

	mu          sync.Mutex
	pending     []models.PendingFile
	batchGen    uint64
	files       []models.RemoteFileRecord
	uploading   bool
	downloading map[models.RecordID]struct{}
	deleting    map[models.RecordID]struct{}
}

// NewWorkspace builds a workspace. user supplies the user name sent with
// list and upload calls and may be nil.
func NewWorkspace(api client.FilesAPI, policy UploadPolicy, user func() string, log logging.Logger) *Workspace {
	if policy.MaxFileBytes <= 0 {
		policy.MaxFileBytes = DefaultMaxFileBytes
	}
	if policy.ThresholdBytes <= 0 {
		policy.ThresholdBytes = DefaultThresholdBytes
	}
	if user == nil {
		user = func() string { return "" }
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Workspace{
		api:         api,
		policy:      policy,
		user:        user,
		log:         log.With("component", "workspace"),
		downloading: make(map[models.RecordID]struct{}),
		deleting:    make(map[models.RecordID]struct{}),
	}
}

func (w *Workspace) Policy() UploadPolicy { return w.policy }

// Select adds the given local paths to the pending batch. Paths that cannot
// be read, are not regular files, or exceed MaxFileBytes are skipped one by
// one and reported; the rest are still added.
func (w *Workspace) Select(paths []string) []Exclusion {
	var (
		accepted []models.PendingFile
		excluded []Exclusion
	)
	for _, p := range paths {
		name := filepath.Base(p)
		fi, err := os.Stat(p)
		switch {
		case err != nil:
			excluded = append(excluded, Exclusion{Name: name, Err: err})
		case !fi.Mode().IsRegular():
			excluded = append(excluded, Exclusion{Name: name, Err: ErrNotAFile})
		case fi.Size() > w.policy.MaxFileBytes:
			excluded = append(excluded, Exclusion{
				Name: name,
				Err:  fmt.Errorf("%w: %s", ErrFileTooLarge, filex.HumanSize(fi.Size())),
			})
		default:
			accepted = append(accepted, models.PendingFile{Path: p, Name: name, Size: fi.Size()})
		}
	}

	w.mu.Lock()
	w.pending = append(w.pending, accepted...)
	w.mu.Unlock()

	for _, e := range excluded {
		w.log.Debug(context.Background(), "file excluded", "name", e.Name, "error", e.Err)
	}
	return excluded
}

// Reset empties the pending batch. An upload already in flight no longer
// owns any part of the batch afterwards.
func (w *Workspace) Reset() {
	w.mu.Lock()
	w.pending = nil
	w.batchGen++
	w.mu.Unlock()
}

// Pending returns a copy of the pending batch.
func (w *Workspace) Pending() []models.PendingFile {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.PendingFile(nil), w.pending...)
}

// Files returns a copy of the cached listing.
func (w *Workspace) Files() []models.RemoteFileRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.RemoteFileRecord(nil), w.files...)
}

// Find looks a record up in the cached listing.
func (w *Workspace) Find(id models.RecordID) (models.RemoteFileRecord, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, f := range w.files {
		if f.ID == id {
			return f, true
		}
	}
	return models.RemoteFileRecord{}, false
}

// Busy reports the operations currently running on a record.
func (w *Workspace) Busy(id models.RecordID) (downloading, deleting bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, downloading = w.downloading[id]
	_, deleting = w.deleting[id]
	return downloading, deleting
}

// ListFiles fetches the listing and replaces the cache with it. On failure
// the cache keeps its previous content.
func (w *Workspace) ListFiles(ctx context.Context) ([]models.RemoteFileRecord, error) {
	files, err := w.api.ListFiles(ctx, w.user())
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	w.mu.Lock()
	w.files = files
	w.mu.Unlock()

	return append([]models.RemoteFileRecord(nil), files...), nil
}

// SubmitUpload sends the pending batch in one request. On success the sent
// files leave the batch and the listing is refreshed; on failure the batch
// is kept as it was.
func (w *Workspace) SubmitUpload(ctx context.Context, progress client.ProgressFunc) error {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return ErrNothingSelected
	}
	if w.uploading {
		w.mu.Unlock()
		return ErrOperationInProgress
	}
	batch := append([]models.PendingFile(nil), w.pending...)
	gen := w.batchGen
	w.uploading = true
	w.mu.Unlock()

	endpoint := w.policy.EndpointFor(batch[0].Size)
	w.log.Info(ctx, "upload started", "files", len(batch), "endpoint", endpoint)

	err := w.api.Upload(ctx, endpoint, client.UploadBatch{Files: batch, UserName: w.user()}, progress)

	w.mu.Lock()
	w.uploading = false
	// Select only appends, so while gen is unchanged the batch is still the
	// prefix of pending. After a Reset everything pending was selected later.
	if err == nil && w.batchGen == gen {
		w.pending = append([]models.PendingFile(nil), w.pending[len(batch):]...)
	}
	w.mu.Unlock()

	if err != nil {
		w.log.Warn(ctx, "upload failed", "error", err)
		return fmt.Errorf("upload: %w", err)
	}

	if _, err := w.ListFiles(ctx); err != nil {
		w.log.Warn(ctx, "refresh after upload failed", "error", err)
	}
	return nil
}

func (w *Workspace) begin(flags map[models.RecordID]struct{}, id models.RecordID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, busy := flags[id]; busy {
		return ErrOperationInProgress
	}
	flags[id] = struct{}{}
	return nil
}

func (w *Workspace) end(flags map[models.RecordID]struct{}, id models.RecordID) {
	w.mu.Lock()
	delete(flags, id)
	w.mu.Unlock()
}

// DownloadFile saves rec into dir under the last element of its URL and
// returns the written path. A second download of the same record while
// the first runs fails with ErrOperationInProgress.
func (w *Workspace) DownloadFile(ctx context.Context, rec models.RemoteFileRecord, dir string) (string, error) {
	if err := w.begin(w.downloading, rec.ID); err != nil {
		return "", err
	}
	defer w.end(w.downloading, rec.ID)

	dir, err := filex.EnsureDir(dir)
	if err != nil {
		return "", err
	}
	f, path, err := createFree(dir, rec.DownloadName())
	if err != nil {
		return "", err
	}

	start := time.Now()
	n, err := w.api.Download(ctx, rec.FileURL, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("download %s: %w", rec.FileName, err)
	}

	w.log.Info(ctx, "downloaded", "id", rec.ID, "path", path, "bytes", n, "took", time.Since(start))
	return path, nil
}

// DownloadFiles downloads several records concurrently, at most limit at a
// time (unbounded when limit <= 0). Results keep the order of recs.
func (w *Workspace) DownloadFiles(ctx context.Context, recs []models.RemoteFileRecord, dir string, limit int) []DownloadResult {
	results := make([]DownloadResult, len(recs))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, rec := range recs {
		g.Go(func() error {
			path, err := w.DownloadFile(ctx, rec, dir)
			results[i] = DownloadResult{Record: rec, Path: path, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// DeleteFile removes a record on the backend and then refreshes the
// listing whatever the outcome. The cache is never edited locally.
func (w *Workspace) DeleteFile(ctx context.Context, id models.RecordID) error {
	if err := w.begin(w.deleting, id); err != nil {
		return err
	}

	err := w.api.DeleteFile(ctx, id)
	w.end(w.deleting, id)

	if _, lerr := w.ListFiles(ctx); lerr != nil {
		w.log.Warn(ctx, "refresh after delete failed", "error", lerr)
	}
	if err != nil {
		w.log.Warn(ctx, "delete failed", "id", id, "error", err)
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// View filters and sorts a copy of the cached listing. query matches file
// names case-insensitively, either as a substring or as a subsequence.
func (w *Workspace) View(query string, key SortKey, order SortOrder) []models.RemoteFileRecord {
	all := w.Files()

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.RemoteFileRecord, 0, len(all))
	for _, f := range all {
		if q == "" || matches(strings.ToLower(f.FileName), q) {
			out = append(out, f)
		}
	}

	less := func(a, b models.RemoteFileRecord) bool {
		return strings.ToLower(a.FileName) < strings.ToLower(b.FileName)
	}
	if key == SortByDate {
		less = func(a, b models.RemoteFileRecord) bool {
			ta, _ := a.UploadTime()
			tb, _ := b.UploadTime()
			return ta.Before(tb)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order == Descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func matches(name, q string) bool {
	if strings.Contains(name, q) {
		return true
	}
	rest := []rune(q)
	for _, r := range name {
		if len(rest) == 0 {
			break
		}
		if r == rest[0] {
			rest = rest[1:]
		}
	}
	return len(rest) == 0
}

// createFree opens a new file in dir named after name, picking "name (n)"
// variants when the name is taken.
func createFree(dir, name string) (*os.File, string, error) {
	name = filepath.Base(name)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		name = "download"
	}
	for {
		path := filex.FreePath(dir, name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("create %s: %w", path, err)
		}
	}
}

// ParseSort reads user-supplied sort options, falling back to name/asc.
func ParseSort(key, order string) (SortKey, SortOrder) {
	k := SortByName
	if strings.EqualFold(key, string(SortByDate)) {
		k = SortByDate
	}
	o := Ascending
	if strings.EqualFold(order, string(Descending)) {
		o = Descending
	}
	return k, o
}

package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/clouddash/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mib = 1 << 20

var testPolicy = UploadPolicy{
	MaxFileBytes:      200 * mib,
	ThresholdBytes:    10 * mib,
	PrimaryEndpoint:   "https://primary.example/api/upload",
	SecondaryEndpoint: "https://secondary.example/api/upload",
}

// sparseFile creates a file of the given size without writing its content.
func sparseFile(t *testing.T, dir, name string, size int64) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return p
}

func newWorkspace(t *testing.T) (*Workspace, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{Listing: []models.RemoteFileRecord{
		{ID: "1", FileName: "Report.pdf", FileURL: "https://cdn.example/u/report.pdf", UploadDate: "2024-05-02T09:00:00Z"},
		{ID: "2", FileName: "photo.png", FileURL: "https://cdn.example/u/photo.png", UploadDate: "2024-05-01T09:00:00Z"},
		{ID: "3", FileName: "notes.txt", FileURL: "https://cdn.example/u/notes.txt", UploadDate: "2024-05-03T09:00:00Z"},
	}}
	w := NewWorkspace(api, testPolicy, func() string { return "alice" }, nil)
	return w, api
}

func TestSelect_ExcludesOversizedFile(t *testing.T) {
	w, _ := newWorkspace(t)
	dir := t.TempDir()
	small := sparseFile(t, dir, "small.bin", 5*mib)
	big := sparseFile(t, dir, "big.bin", 250*mib)

	excluded := w.Select([]string{small, big})

	pending := w.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "small.bin", pending[0].Name)
	assert.EqualValues(t, 5*mib, pending[0].Size)

	require.Len(t, excluded, 1)
	assert.Equal(t, "big.bin", excluded[0].Name)
	assert.ErrorIs(t, excluded[0].Err, ErrFileTooLarge)
}

func TestSelect_ExactlyMaxIsAccepted(t *testing.T) {
	w, _ := newWorkspace(t)
	p := sparseFile(t, t.TempDir(), "edge.bin", 200*mib)

	assert.Empty(t, w.Select([]string{p}))
	assert.Len(t, w.Pending(), 1)
}

func TestSelect_MissingAndDirectory(t *testing.T) {
	w, _ := newWorkspace(t)
	dir := t.TempDir()

	excluded := w.Select([]string{filepath.Join(dir, "nope.txt"), dir})
	require.Len(t, excluded, 2)
	assert.ErrorIs(t, excluded[0].Err, os.ErrNotExist)
	assert.ErrorIs(t, excluded[1].Err, ErrNotAFile)
	assert.Empty(t, w.Pending())
}

func TestSelect_AppendsAndReset(t *testing.T) {
	w, _ := newWorkspace(t)
	dir := t.TempDir()

	w.Select([]string{sparseFile(t, dir, "a", 1)})
	w.Select([]string{sparseFile(t, dir, "b", 2)})
	assert.Len(t, w.Pending(), 2)

	w.Reset()
	assert.Empty(t, w.Pending())
}

func TestSubmitUpload_EmptyBatchMakesNoCalls(t *testing.T) {
	w, api := newWorkspace(t)

	err := w.SubmitUpload(context.Background(), nil)
	require.ErrorIs(t, err, ErrNothingSelected)
	assert.Empty(t, api.Uploads)
	assert.Zero(t, api.ListCalls)
}

func TestSubmitUpload_RoutesByFirstFileSize(t *testing.T) {
	cases := []struct {
		name  string
		sizes []int64
		want  string
	}{
		{"small goes primary", []int64{5 * mib}, testPolicy.PrimaryEndpoint},
		{"large goes secondary", []int64{15 * mib}, testPolicy.SecondaryEndpoint},
		{"threshold is secondary", []int64{10 * mib}, testPolicy.SecondaryEndpoint},
		{"first file decides", []int64{1 * mib, 50 * mib}, testPolicy.PrimaryEndpoint},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, api := newWorkspace(t)
			dir := t.TempDir()
			var paths []string
			for i, s := range tc.sizes {
				paths = append(paths, sparseFile(t, dir, string(rune('a'+i))+".bin", s))
			}
			require.Empty(t, w.Select(paths))

			require.NoError(t, w.SubmitUpload(context.Background(), nil))
			require.Len(t, api.Uploads, 1)
			assert.Equal(t, tc.want, api.Uploads[0].Endpoint)
		})
	}
}

func TestSubmitUpload_SuccessClearsBatchAndRelists(t *testing.T) {
	w, api := newWorkspace(t)
	dir := t.TempDir()
	w.Select([]string{sparseFile(t, dir, "a.txt", 3), sparseFile(t, dir, "b.txt", 4)})

	var progress []int
	require.NoError(t, w.SubmitUpload(context.Background(), func(p int) { progress = append(progress, p) }))

	assert.Empty(t, w.Pending())
	assert.Equal(t, 1, api.ListCalls)
	assert.Len(t, w.Files(), 3)
	assert.Equal(t, []int{10, 55, 100}, progress)

	sent := api.Uploads[0].Batch
	assert.Equal(t, "alice", sent.UserName)
	require.Len(t, sent.Files, 2)
	assert.Equal(t, "a.txt", sent.Files[0].Name)
}

func TestSubmitUpload_FailureKeepsBatch(t *testing.T) {
	w, api := newWorkspace(t)
	api.UploadErr = errBackend
	w.Select([]string{sparseFile(t, t.TempDir(), "a.txt", 3)})

	err := w.SubmitUpload(context.Background(), nil)
	require.ErrorIs(t, err, errBackend)
	assert.Len(t, w.Pending(), 1)
	assert.Zero(t, api.ListCalls)

	// no automatic retry
	assert.Len(t, api.Uploads, 1)
}

func pendingNames(w *Workspace) []string {
	var names []string
	for _, f := range w.Pending() {
		names = append(names, f.Name)
	}
	return names
}

func TestSubmitUpload_SelectDuringUploadStaysPending(t *testing.T) {
	w, _ := newWorkspace(t)
	dir := t.TempDir()
	w.Select([]string{sparseFile(t, dir, "a.txt", 3), sparseFile(t, dir, "b.txt", 4)})
	late := sparseFile(t, dir, "c.txt", 5)

	selected := false
	require.NoError(t, w.SubmitUpload(context.Background(), func(int) {
		if !selected {
			selected = true
			w.Select([]string{late})
		}
	}))

	assert.Equal(t, []string{"c.txt"}, pendingNames(w))
}

func TestSubmitUpload_ResetDuringUpload(t *testing.T) {
	w, api := newWorkspace(t)
	dir := t.TempDir()
	w.Select([]string{sparseFile(t, dir, "a.txt", 3), sparseFile(t, dir, "b.txt", 4)})

	require.NotPanics(t, func() {
		require.NoError(t, w.SubmitUpload(context.Background(), func(p int) {
			if p == 10 {
				w.Reset()
			}
		}))
	})

	assert.Empty(t, w.Pending())
	assert.Equal(t, 1, api.ListCalls)
}

func TestSubmitUpload_ResetThenSelectDuringUpload(t *testing.T) {
	w, _ := newWorkspace(t)
	dir := t.TempDir()
	w.Select([]string{sparseFile(t, dir, "a.txt", 3), sparseFile(t, dir, "b.txt", 4)})
	next := []string{
		sparseFile(t, dir, "c.txt", 5),
		sparseFile(t, dir, "d.txt", 6),
		sparseFile(t, dir, "e.txt", 7),
	}

	require.NoError(t, w.SubmitUpload(context.Background(), func(p int) {
		if p == 10 {
			w.Reset()
			w.Select(next)
		}
	}))

	assert.Equal(t, []string{"c.txt", "d.txt", "e.txt"}, pendingNames(w))

	// the next upload sends only the reselected files
	require.NoError(t, w.SubmitUpload(context.Background(), nil))
	assert.Empty(t, w.Pending())
}

func TestListFiles_ReplacesCache(t *testing.T) {
	w, api := newWorkspace(t)
	ctx := context.Background()

	_, err := w.ListFiles(ctx)
	require.NoError(t, err)
	assert.Len(t, w.Files(), 3)
	assert.Equal(t, []string{"alice"}, api.ListUsers)

	api.Listing = api.Listing[:1]
	_, err = w.ListFiles(ctx)
	require.NoError(t, err)
	assert.Len(t, w.Files(), 1)
}

func TestListFiles_FailureKeepsCache(t *testing.T) {
	w, api := newWorkspace(t)
	ctx := context.Background()
	_, err := w.ListFiles(ctx)
	require.NoError(t, err)

	api.ListErr = errBackend
	_, err = w.ListFiles(ctx)
	require.ErrorIs(t, err, errBackend)
	assert.Len(t, w.Files(), 3)
}

func TestDeleteFile_FailureLeavesRecordListed(t *testing.T) {
	w, api := newWorkspace(t)
	ctx := context.Background()
	_, err := w.ListFiles(ctx)
	require.NoError(t, err)

	api.DeleteErr = errBackend
	err = w.DeleteFile(ctx, "2")
	require.ErrorIs(t, err, errBackend)

	_, ok := w.Find("2")
	assert.True(t, ok)
	assert.Equal(t, 2, api.ListCalls)

	_, deleting := w.Busy("2")
	assert.False(t, deleting)
}

func TestDeleteFile_SuccessRelists(t *testing.T) {
	w, api := newWorkspace(t)
	ctx := context.Background()
	_, err := w.ListFiles(ctx)
	require.NoError(t, err)

	require.NoError(t, w.DeleteFile(ctx, "2"))
	_, ok := w.Find("2")
	assert.False(t, ok)
	assert.Equal(t, []models.RecordID{"2"}, api.Deletes)
}

func TestDownloadFile_WritesToURLBaseName(t *testing.T) {
	w, _ := newWorkspace(t)
	dir := t.TempDir()
	rec := models.RemoteFileRecord{ID: "1", FileName: "Report", FileURL: "https://cdn.example/u/report.pdf"}

	path, err := w.DownloadFile(context.Background(), rec, dir)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", filepath.Base(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data:"+rec.FileURL, string(b))

	// a second download does not overwrite the first
	path2, err := w.DownloadFile(context.Background(), rec, dir)
	require.NoError(t, err)
	assert.Equal(t, "report (1).pdf", filepath.Base(path2))
}

func TestDownloadFile_FailureRemovesPartialFile(t *testing.T) {
	w, api := newWorkspace(t)
	api.DownloadFn = func(context.Context, string, io.Writer) (int64, error) { return 0, errBackend }
	dir := t.TempDir()

	_, err := w.DownloadFile(context.Background(), models.RemoteFileRecord{ID: "1", FileURL: "/x/a.bin"}, dir)
	require.ErrorIs(t, err, errBackend)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloadFile_SameRecordRejectedWhileRunning(t *testing.T) {
	w, api := newWorkspace(t)
	started := make(chan struct{})
	release := make(chan struct{})
	api.DownloadFn = func(_ context.Context, url string, wr io.Writer) (int64, error) {
		if url == "/x/slow.bin" {
			close(started)
			<-release
		}
		n, err := io.WriteString(wr, "ok")
		return int64(n), err
	}
	dir := t.TempDir()
	slow := models.RemoteFileRecord{ID: "1", FileURL: "/x/slow.bin"}
	other := models.RemoteFileRecord{ID: "2", FileURL: "/x/other.bin"}

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = w.DownloadFile(context.Background(), slow, dir)
	}()
	<-started

	downloading, _ := w.Busy("1")
	assert.True(t, downloading)

	_, err := w.DownloadFile(context.Background(), slow, dir)
	require.ErrorIs(t, err, ErrOperationInProgress)

	_, err = w.DownloadFile(context.Background(), other, dir)
	require.NoError(t, err)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)

	downloading, _ = w.Busy("1")
	assert.False(t, downloading)
}

func TestDownloadFiles_Parallel(t *testing.T) {
	w, _ := newWorkspace(t)
	dir := t.TempDir()
	recs := []models.RemoteFileRecord{
		{ID: "1", FileURL: "/x/a.bin"},
		{ID: "2", FileURL: "/x/b.bin"},
		{ID: "3", FileURL: "/x/a.bin"},
	}

	results := w.DownloadFiles(context.Background(), recs, dir, 2)
	require.Len(t, results, 3)
	seen := map[string]bool{}
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, recs[i].ID, r.Record.ID)
		assert.False(t, seen[r.Path], "duplicate path %s", r.Path)
		seen[r.Path] = true
	}
}

func TestView_FilterAndSort(t *testing.T) {
	w, _ := newWorkspace(t)
	_, err := w.ListFiles(context.Background())
	require.NoError(t, err)

	names := func(rs []models.RemoteFileRecord) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.FileName)
		}
		return out
	}

	assert.Equal(t, []string{"notes.txt", "photo.png", "Report.pdf"}, names(w.View("", SortByName, Ascending)))
	assert.Equal(t, []string{"Report.pdf", "photo.png", "notes.txt"}, names(w.View("", SortByName, Descending)))
	assert.Equal(t, []string{"photo.png", "Report.pdf", "notes.txt"}, names(w.View("", SortByDate, Ascending)))
	assert.Equal(t, []string{"notes.txt", "Report.pdf", "photo.png"}, names(w.View("", SortByDate, Descending)))

	assert.Equal(t, []string{"Report.pdf"}, names(w.View("REP", SortByName, Ascending)))
	// subsequence match: p..n..g
	assert.Equal(t, []string{"photo.png"}, names(w.View("png", SortByName, Ascending)))
	assert.Equal(t, []string{"Report.pdf"}, names(w.View("rpdf", SortByName, Ascending)))
	assert.Empty(t, w.View("zzz", SortByName, Ascending))

	// the cache itself is untouched
	assert.Equal(t, "Report.pdf", w.Files()[0].FileName)
}

func TestParseSort(t *testing.T) {
	k, o := ParseSort("DATE", "desc")
	assert.Equal(t, SortByDate, k)
	assert.Equal(t, Descending, o)

	k, o = ParseSort("", "whatever")
	assert.Equal(t, SortByName, k)
	assert.Equal(t, Ascending, o)
}

func TestUploadPolicy_NoSecondaryFallsBackToPrimary(t *testing.T) {
	p := UploadPolicy{ThresholdBytes: 10, PrimaryEndpoint: "p"}
	assert.Equal(t, "p", p.EndpointFor(100))
}

package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/clouddash/internal/client/client"
	"github.com/dmitrijs2005/clouddash/internal/client/models"
)

// ---- fake clock ----

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// Advance moves time forward and runs every timer that came due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

// Live counts armed timers.
func (c *fakeClock) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// ---- fake session store ----

type memStore struct {
	mu       sync.Mutex
	sess     *models.Session
	saves    int
	clears   int
	SaveErr  error
	ClearErr error
	LoadErr  error
}

func (m *memStore) Load(context.Context) (models.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return models.Session{}, false, m.LoadErr
	}
	if m.sess == nil {
		return models.Session{}, false, nil
	}
	return *m.sess, true, nil
}

func (m *memStore) Save(_ context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.sess = &s
	return nil
}

func (m *memStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.sess = nil
	return nil
}

func (m *memStore) stored() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

// ---- fake backend client ----

type uploadCall struct {
	Endpoint string
	Batch    client.UploadBatch
}

type fakeAPI struct {
	mu sync.Mutex

	AuthFn      func(username, password string) (models.AuthResult, error)
	Listing     []models.RemoteFileRecord
	ListErr     error
	UploadErr   error
	DeleteErr   error
	DownloadFn  func(ctx context.Context, url string, w io.Writer) (int64, error)
	Stats       models.Statistics
	StatsErr    error
	Formats     []models.FormatCount
	FormatsErr  error
	Notes       []models.Note
	NotesErr    error
	MutateErr   error
	WeatherResp models.Weather

	AuthCalls     int
	ListCalls     int
	ListUsers     []string
	Uploads       []uploadCall
	Deletes       []models.RecordID
	Downloads     []string
	FormatsCalls  int
	NoteMutations []string
	WeatherCalls  int
}

var _ client.Client = (*fakeAPI)(nil)

var errBackend = errors.New("backend exploded")

func (f *fakeAPI) Authenticate(_ context.Context, username, password string) (models.AuthResult, error) {
	f.mu.Lock()
	f.AuthCalls++
	fn := f.AuthFn
	f.mu.Unlock()
	if fn != nil {
		return fn(username, password)
	}
	if username == "alice" && password == "secret" {
		return models.AuthResult{Success: true, User: &models.UserInfo{Name: "Alice", Email: "alice@example.com", Username: "alice"}}, nil
	}
	return models.AuthResult{Authenticated: false, Message: "wrong password"}, nil
}

func (f *fakeAPI) ListFiles(_ context.Context, userName string) ([]models.RemoteFileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	f.ListUsers = append(f.ListUsers, userName)
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]models.RemoteFileRecord(nil), f.Listing...), nil
}

func (f *fakeAPI) Upload(_ context.Context, endpoint string, batch client.UploadBatch, progress client.ProgressFunc) error {
	f.mu.Lock()
	f.Uploads = append(f.Uploads, uploadCall{Endpoint: endpoint, Batch: batch})
	err := f.UploadErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	if progress != nil {
		for _, p := range []int{10, 55, 100} {
			progress(p)
		}
	}
	return nil
}

func (f *fakeAPI) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	f.mu.Lock()
	f.Downloads = append(f.Downloads, url)
	fn := f.DownloadFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, url, w)
	}
	n, err := io.Copy(w, strings.NewReader("data:"+url))
	return n, err
}

func (f *fakeAPI) DeleteFile(_ context.Context, id models.RecordID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deletes = append(f.Deletes, id)
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	kept := f.Listing[:0:0]
	for _, r := range f.Listing {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	f.Listing = kept
	return nil
}

func (f *fakeAPI) Statistics(context.Context) (models.Statistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Stats, f.StatsErr
}

func (f *fakeAPI) FileFormats(context.Context) ([]models.FormatCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FormatsCalls++
	return f.Formats, f.FormatsErr
}

func (f *fakeAPI) ListNotes(context.Context) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NotesErr != nil {
		return nil, f.NotesErr
	}
	return append([]models.Note(nil), f.Notes...), nil
}

func (f *fakeAPI) CreateNote(_ context.Context, n models.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.NoteMutations = append(f.NoteMutations, "create")
	if f.MutateErr != nil {
		return f.MutateErr
	}
	n.ID = models.RecordID("n" + string(rune('0'+len(f.Notes))))
	f.Notes = append(f.Notes, n)
	return nil
}

func (f *fakeAPI) UpdateNote(_ context.Context, id models.RecordID, n models.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.NoteMutations = append(f.NoteMutations, "update")
	if f.MutateErr != nil {
		return f.MutateErr
	}
	for i := range f.Notes {
		if f.Notes[i].ID == id {
			f.Notes[i].Title, f.Notes[i].Text = n.Title, n.Text
		}
	}
	return nil
}

func (f *fakeAPI) DeleteNote(_ context.Context, id models.RecordID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.NoteMutations = append(f.NoteMutations, "delete")
	if f.MutateErr != nil {
		return f.MutateErr
	}
	kept := f.Notes[:0:0]
	for _, n := range f.Notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	f.Notes = kept
	return nil
}

func (f *fakeAPI) Weather(context.Context, float64, float64) (models.Weather, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.WeatherCalls++
	return f.WeatherResp, nil
}

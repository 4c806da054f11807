package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/clouddash/internal/client/models"
)

// ProgressFunc receives upload progress as a whole percentage in [0,100].
// Calls are monotonically non-decreasing and may come from a transport
// goroutine.
type ProgressFunc func(percent int)

// AuthAPI validates credentials.
type AuthAPI interface {
	Authenticate(ctx context.Context, username, password string) (models.AuthResult, error)
}

// FilesAPI lists, uploads, downloads and deletes stored files.
type FilesAPI interface {
	ListFiles(ctx context.Context, userName string) ([]models.RemoteFileRecord, error)
	Upload(ctx context.Context, endpoint string, batch UploadBatch, progress ProgressFunc) error
	Download(ctx context.Context, fileURL string, w io.Writer) (int64, error)
	DeleteFile(ctx context.Context, id models.RecordID) error
}

// StatsAPI reads usage statistics.
type StatsAPI interface {
	Statistics(ctx context.Context) (models.Statistics, error)
	FileFormats(ctx context.Context) ([]models.FormatCount, error)
}

// NotesAPI is CRUD over notes.
type NotesAPI interface {
	ListNotes(ctx context.Context) ([]models.Note, error)
	CreateNote(ctx context.Context, n models.Note) error
	UpdateNote(ctx context.Context, id models.RecordID, n models.Note) error
	DeleteNote(ctx context.Context, id models.RecordID) error
}

// WeatherAPI proxies the backend weather pass-through.
type WeatherAPI interface {
	Weather(ctx context.Context, latitude, longitude float64) (models.Weather, error)
}

// Client is the full backend surface used by the dashboard.
type Client interface {
	AuthAPI
	FilesAPI
	StatsAPI
	NotesAPI
	WeatherAPI
}

// UploadBatch is one multipart submission.
type UploadBatch struct {
	Files    []models.PendingFile
	UserName string
}

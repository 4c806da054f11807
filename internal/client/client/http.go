package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/clouddash/internal/client/models"
	"github.com/dmitrijs2005/clouddash/internal/logging"
	"github.com/google/uuid"
)

// RequestIDHeader carries a per-call id so backend logs can be correlated.
const RequestIDHeader = "X-Request-ID"

// HTTPClient talks to the REST backend.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	log     logging.Logger
}

// NewHTTPClient builds a client for baseURL. A zero timeout leaves the
// transport defaults in place.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if log == nil {
		log = logging.Nop()
	}
	return &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		log:     log.With("component", "api"),
	}, nil
}

func (c *HTTPClient) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = u.Path + path
	u.RawQuery = query.Encode()
	return u.String()
}

// resolve turns a possibly relative file URL into an absolute one.
func (c *HTTPClient) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse file url: %w", err)
	}
	return c.baseURL.ResolveReference(u).String(), nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	id := uuid.NewString()
	req, err := http.NewRequestWithContext(logging.WithRequestID(ctx, id), method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(RequestIDHeader, id)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// doJSON sends in (if any) as JSON and decodes the response into out (if any).
func (c *HTTPClient) doJSON(ctx context.Context, method, target string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, target, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

// send executes req and maps transport failures and non-2xx statuses to
// the package sentinel errors. On success the caller owns resp.Body.
func (c *HTTPClient) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log.Debug(req.Context(), "request failed",
			"method", req.Method, "url", req.URL.Redacted(), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.log.Debug(req.Context(), "request done",
		"method", req.Method, "url", req.URL.Redacted(), "status", resp.StatusCode,
		"took", time.Since(start))

	if err := statusError(resp); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	default:
		return fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}
}

func (c *HTTPClient) Authenticate(ctx context.Context, username, password string) (models.AuthResult, error) {
	var res models.AuthResult
	in := map[string]string{"username": username, "password": password}
	err := c.doJSON(ctx, http.MethodPost, c.endpoint("/api/authenticate", nil), in, &res)
	return res, err
}

func (c *HTTPClient) ListFiles(ctx context.Context, userName string) ([]models.RemoteFileRecord, error) {
	q := url.Values{}
	if userName != "" {
		q.Set("user_name", userName)
	}

	var files []models.RemoteFileRecord
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("/api/files", q), nil, &files); err != nil {
		return nil, err
	}
	if files == nil {
		files = []models.RemoteFileRecord{}
	}
	return files, nil
}

func (c *HTTPClient) DeleteFile(ctx context.Context, id models.RecordID) error {
	return c.doJSON(ctx, http.MethodDelete, c.endpoint("/api/files/"+url.PathEscape(string(id)), nil), nil, nil)
}

// Download streams the file at fileURL into w and returns the byte count.
func (c *HTTPClient) Download(ctx context.Context, fileURL string, w io.Writer) (int64, error) {
	target, err := c.resolve(fileURL)
	if err != nil {
		return 0, err
	}
	req, err := c.newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.send(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download body: %w", err)
	}
	return n, nil
}

func (c *HTTPClient) Statistics(ctx context.Context) (models.Statistics, error) {
	var s models.Statistics
	err := c.doJSON(ctx, http.MethodGet, c.endpoint("/api/statistics", nil), nil, &s)
	return s, err
}

func (c *HTTPClient) FileFormats(ctx context.Context) ([]models.FormatCount, error) {
	var ff models.FileFormats
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("/api/file-formats", nil), nil, &ff); err != nil {
		return nil, err
	}
	return ff.Formats, nil
}

func (c *HTTPClient) ListNotes(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("/api/notes", nil), nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *HTTPClient) CreateNote(ctx context.Context, n models.Note) error {
	in := map[string]string{"title": n.Title, "text": n.Text}
	return c.doJSON(ctx, http.MethodPost, c.endpoint("/api/notes", nil), in, nil)
}

func (c *HTTPClient) UpdateNote(ctx context.Context, id models.RecordID, n models.Note) error {
	in := map[string]string{"title": n.Title, "text": n.Text}
	return c.doJSON(ctx, http.MethodPut, c.endpoint("/api/notes/"+url.PathEscape(string(id)), nil), in, nil)
}

func (c *HTTPClient) DeleteNote(ctx context.Context, id models.RecordID) error {
	return c.doJSON(ctx, http.MethodDelete, c.endpoint("/api/notes/"+url.PathEscape(string(id)), nil), nil, nil)
}

func (c *HTTPClient) Weather(ctx context.Context, latitude, longitude float64) (models.Weather, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))

	var w models.Weather
	err := c.doJSON(ctx, http.MethodGet, c.endpoint("/api/weather", q), nil, &w)
	return w, err
}

// IsTransport reports whether err came from the network or server side
// rather than from a request the server rejected as invalid.
func IsTransport(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrBadStatus) || errors.Is(err, ErrBadResponse)
}

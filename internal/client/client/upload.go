package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"sync"

	"github.com/dmitrijs2005/clouddash/internal/client/models"
	"golang.org/x/sync/errgroup"
)

// Multipart field names expected by the upload endpoints.
const (
	FieldFiles     = "files"
	FieldFileNames = "fileNames"
	FieldUserName  = "user_name"
)

// Upload sends batch as one multipart/form-data request to endpoint.
//
// The body is streamed from disk through a pipe, so memory use does not
// grow with the batch size. Its length is measured up front so progress
// can be reported as a percentage.
func (c *HTTPClient) Upload(ctx context.Context, endpoint string, batch UploadBatch, progress ProgressFunc) error {
	if len(batch.Files) == 0 {
		return errors.New("empty upload batch")
	}
	target, err := c.resolve(endpoint)
	if err != nil {
		return err
	}

	parts, err := statParts(batch.Files)
	if err != nil {
		return err
	}

	// boundary is shared by the dry run and the real writer
	boundary := multipart.NewWriter(io.Discard).Boundary()

	var counter countingWriter
	if err := writeMultipart(&counter, boundary, parts, batch.UserName, false); err != nil {
		return fmt.Errorf("measure body: %w", err)
	}
	total := counter.n

	pr, pw := io.Pipe()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := writeMultipart(pw, boundary, parts, batch.UserName, true)
		pw.CloseWithError(err)
		if errors.Is(err, io.ErrClosedPipe) {
			// reader side gave up; the request goroutine reports why
			return nil
		}
		return err
	})

	g.Go(func() error {
		defer pr.Close()

		req, err := c.newRequest(gctx, http.MethodPost, target, &progressReader{r: pr, total: total, fn: progress})
		if err != nil {
			return err
		}
		req.ContentLength = total
		req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)

		resp, err := c.send(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	})

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}

	if progress != nil {
		progress(100)
	}
	c.log.Info(ctx, "upload finished", "files", len(parts), "bytes", total, "endpoint", target)
	return nil
}

type uploadPart struct {
	path string
	name string
	size int64
}

// statParts re-reads the sizes so that the measured length matches what is
// streamed even if a file changed after selection.
func statParts(files []models.PendingFile) ([]uploadPart, error) {
	parts := make([]uploadPart, 0, len(files))
	for _, f := range files {
		fi, err := os.Stat(f.Path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", f.Name, err)
		}
		parts = append(parts, uploadPart{path: f.Path, name: f.Name, size: fi.Size()})
	}
	return parts, nil
}

// writeMultipart renders the form to w. With withContent false the file
// bodies are only counted, not read.
func writeMultipart(w io.Writer, boundary string, parts []uploadPart, userName string, withContent bool) error {
	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(boundary); err != nil {
		return err
	}

	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = p.name

		fw, err := mw.CreateFormFile(FieldFiles, p.name)
		if err != nil {
			return err
		}
		if !withContent {
			if cw, ok := w.(*countingWriter); ok {
				cw.n += p.size
			}
			continue
		}
		if err := copyFile(fw, p); err != nil {
			return err
		}
	}

	namesJSON, err := json.Marshal(names)
	if err != nil {
		return err
	}
	if err := mw.WriteField(FieldFileNames, string(namesJSON)); err != nil {
		return err
	}
	if userName != "" {
		if err := mw.WriteField(FieldUserName, userName); err != nil {
			return err
		}
	}
	return mw.Close()
}

func copyFile(w io.Writer, p uploadPart) error {
	f, err := os.Open(p.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", p.name, err)
	}
	defer f.Close()

	n, err := io.CopyN(w, f, p.size)
	if err != nil {
		return fmt.Errorf("read %s: %w", p.name, err)
	}
	if n != p.size {
		return fmt.Errorf("read %s: short read", p.name)
	}
	return nil
}

type countingWriter struct {
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

// progressReader reports the share of total read so far. Reported values
// never decrease and never exceed 100.
type progressReader struct {
	r     io.Reader
	total int64
	fn    ProgressFunc

	mu   sync.Mutex
	read int64
	last int
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.fn != nil {
		p.advance(int64(n))
	}
	return n, err
}

func (p *progressReader) advance(n int64) {
	p.mu.Lock()
	p.read += n
	pct := 100
	if p.total > 0 {
		pct = int(p.read * 100 / p.total)
	}
	if pct > 100 {
		pct = 100
	}
	report := pct > p.last
	if report {
		p.last = pct
	}
	p.mu.Unlock()

	if report {
		p.fn(pct)
	}
}

package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/clouddash/internal/client/models"
	"github.com/dmitrijs2005/clouddash/internal/client/services"
	"github.com/dmitrijs2005/clouddash/internal/filex"
)

// refresh reloads the listing, keeping the old one if that fails.
func (a *App) refresh(ctx context.Context) {
	if _, err := a.files.ListFiles(ctx); err != nil {
		a.log.Warn(ctx, "error fetching files", "error", err)
		a.println("Could not refresh the file list; showing cached entries.")
	}
}

// List refreshes and prints the remote files.
//
//	list [-s name|date] [-o asc|desc] [query]
func (a *App) List(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	sortKey := fs.String("s", string(services.SortByName), "sort by name or date")
	order := fs.String("o", string(services.Ascending), "asc or desc")
	if err := fs.Parse(args); err != nil {
		a.println("Usage: list [-s name|date] [-o asc|desc] [query]")
		return err
	}

	a.refresh(ctx)

	key, ord := services.ParseSort(*sortKey, *order)
	files := a.files.View(strings.Join(fs.Args(), " "), key, ord)
	if len(files) == 0 {
		a.println("No files.")
		return nil
	}

	a.outMu.Lock()
	defer a.outMu.Unlock()
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKIND\tUPLOADED\tSTATUS")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.FileName, f.Kind(), uploaded(f), a.busyLabel(f.ID))
	}
	return tw.Flush()
}

func uploaded(f models.RemoteFileRecord) string {
	if t, ok := f.UploadTime(); ok {
		return t.Local().Format("2006-01-02 15:04")
	}
	return f.UploadDate
}

func (a *App) busyLabel(id models.RecordID) string {
	downloading, deleting := a.files.Busy(id)
	switch {
	case deleting:
		return "deleting"
	case downloading:
		return "downloading"
	default:
		return ""
	}
}

func (a *App) Select(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: select <path>...")
		return nil
	}

	for _, e := range a.files.Select(args) {
		switch {
		case errors.Is(e.Err, services.ErrFileTooLarge):
			a.printf("Skipped %s: larger than %s\n", e.Name, filex.HumanSize(a.files.Policy().MaxFileBytes))
		default:
			a.printf("Skipped %s: %v\n", e.Name, e.Err)
		}
	}
	return a.Selected(ctx)
}

func (a *App) Selected(context.Context) error {
	pending := a.files.Pending()
	if len(pending) == 0 {
		a.println("No files selected.")
		return nil
	}

	var total int64
	a.printf("%d file(s) selected:\n", len(pending))
	for _, p := range pending {
		a.printf("  %s (%s)\n", p.Name, filex.HumanSize(p.Size))
		total += p.Size
	}
	a.printf("Total: %s\n", filex.HumanSize(total))
	return nil
}

func (a *App) Reset(context.Context) error {
	a.files.Reset()
	a.println("Selection cleared.")
	return nil
}

func (a *App) Upload(ctx context.Context) error {
	err := a.files.SubmitUpload(ctx, func(p int) {
		a.printf("\rUploading... %3d%%", p)
	})
	switch {
	case errors.Is(err, services.ErrNothingSelected):
		a.println("No files selected for upload.")
		return err
	case errors.Is(err, services.ErrOperationInProgress):
		a.println("An upload is already running.")
		return err
	case err != nil:
		a.println()
		a.println("Upload failed; the selection was kept. Try again with 'upload'.")
		a.log.Warn(ctx, "error during file upload", "error", err)
		return err
	}
	a.println()
	a.println("Upload complete.")
	return nil
}

// resolve finds records by id in the cached listing, refreshing once if
// any is missing.
func (a *App) resolve(ctx context.Context, ids []string) ([]models.RemoteFileRecord, []string) {
	lookup := func() ([]models.RemoteFileRecord, []string) {
		var found []models.RemoteFileRecord
		var missing []string
		for _, id := range ids {
			if rec, ok := a.files.Find(models.RecordID(id)); ok {
				found = append(found, rec)
			} else {
				missing = append(missing, id)
			}
		}
		return found, missing
	}

	found, missing := lookup()
	if len(missing) > 0 {
		a.refresh(ctx)
		found, missing = lookup()
	}
	return found, missing
}

func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: download <id>...")
		return nil
	}

	recs, missing := a.resolve(ctx, args)
	for _, id := range missing {
		a.printf("No file with id %s.\n", id)
	}

	var failed error
	for _, r := range a.files.DownloadFiles(ctx, recs, a.config.DownloadDir, downloadParallelism) {
		switch {
		case errors.Is(r.Err, services.ErrOperationInProgress):
			a.printf("%s is already downloading.\n", r.Record.FileName)
			failed = r.Err
		case r.Err != nil:
			a.printf("Error downloading %s: %v\n", r.Record.FileName, r.Err)
			failed = r.Err
		default:
			a.printf("Saved %s to %s\n", r.Record.FileName, r.Path)
		}
	}
	return failed
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: delete <id>")
		return nil
	}

	recs, missing := a.resolve(ctx, args)
	if len(missing) > 0 {
		a.printf("No file with id %s.\n", missing[0])
		return nil
	}
	rec := recs[0]
	if !Confirm(a.reader, fmt.Sprintf("Delete %s?", rec.FileName), a.out) {
		a.println("Cancelled.")
		return nil
	}

	err := a.files.DeleteFile(ctx, rec.ID)
	switch {
	case errors.Is(err, services.ErrOperationInProgress):
		a.printf("%s is already being deleted.\n", rec.FileName)
		return err
	case err != nil:
		a.printf("Error deleting %s; it is still listed.\n", rec.FileName)
		a.log.Warn(ctx, "error deleting file", "id", rec.ID, "error", err)
		return err
	}
	a.printf("Deleted %s.\n", rec.FileName)
	return nil
}

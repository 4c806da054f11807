package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/clouddash/internal/client/models"
	"github.com/dmitrijs2005/clouddash/internal/client/services"
	"github.com/dmitrijs2005/clouddash/internal/filex"
)

const notePreviewLen = 100

func (a *App) Stats(ctx context.Context) error {
	r, err := a.stats.Fetch(ctx)
	if err != nil {
		a.println("Error fetching statistics.")
		a.log.Warn(ctx, "error fetching statistics", "error", err)
		return err
	}

	a.printf("Total files:   %d\n", r.Stats.TotalFiles)
	a.printf("Storage used:  %s\n", filex.HumanSize(r.Stats.StorageUsed))
	a.printf("Downloads:     %d\n", r.Stats.Downloads)

	if r.FormatsErr != nil {
		a.println("File formats unavailable.")
		return r.FormatsErr
	}
	if len(r.Formats) == 0 {
		return nil
	}

	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, "File formats:")
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, f := range r.Formats {
		fmt.Fprintf(tw, "  %s\t%d\t%.1f%%\n", f.Extension, f.Count, f.Percent)
	}
	return tw.Flush()
}

func (a *App) printNotes(notes []models.Note) {
	if len(notes) == 0 {
		a.println("No notes.")
		return
	}
	for _, n := range notes {
		a.printf("[%s] %s\n    %s\n", n.ID, n.Title, n.Preview(notePreviewLen))
	}
}

func (a *App) Notes(ctx context.Context) error {
	a.printNotes(a.notes.List(ctx))
	return nil
}

func (a *App) readNote(titlePrompt string) (string, string, error) {
	title, err := GetSimpleText(a.reader, titlePrompt, a.out)
	if err != nil {
		return "", "", err
	}
	text, err := GetMultiline(a.reader, "-Enter note text", a.out)
	if err != nil {
		return "", "", err
	}
	return title, text, nil
}

func (a *App) reportNote(ctx context.Context, verb string, notes []models.Note, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		a.println("Both title and note text are required.")
		return err
	case err != nil:
		a.printf("Error: note not %s.\n", verb)
		a.log.Warn(ctx, "note mutation failed", "op", verb, "error", err)
	default:
		a.printf("Note %s.\n", verb)
	}
	a.printNotes(notes)
	return err
}

func (a *App) AddNote(ctx context.Context) error {
	title, text, err := a.readNote("-Enter note title")
	if err != nil {
		return err
	}
	notes, err := a.notes.Create(ctx, title, text)
	return a.reportNote(ctx, "saved", notes, err)
}

func (a *App) EditNote(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: editnote <id>")
		return nil
	}
	title, text, err := a.readNote("-Enter new title")
	if err != nil {
		return err
	}
	notes, err := a.notes.Update(ctx, models.RecordID(args[0]), title, text)
	return a.reportNote(ctx, "updated", notes, err)
}

func (a *App) DeleteNote(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: delnote <id>")
		return nil
	}
	notes, err := a.notes.Delete(ctx, models.RecordID(args[0]))
	return a.reportNote(ctx, "deleted", notes, err)
}

func (a *App) Weather(ctx context.Context, args []string) error {
	if len(args) != 2 {
		a.println("Usage: weather <latitude> <longitude>")
		return nil
	}
	lat, err1 := strconv.ParseFloat(args[0], 64)
	lon, err2 := strconv.ParseFloat(args[1], 64)
	if err1 != nil || err2 != nil {
		a.println("Coordinates must be numbers.")
		return services.ErrValidation
	}

	w, err := a.weather.Current(ctx, lat, lon)
	switch {
	case errors.Is(err, services.ErrValidation):
		a.println(err)
		return err
	case err != nil:
		a.println("Error fetching weather.")
		a.log.Warn(ctx, "error fetching weather", "error", err)
		return err
	}

	c := w.Current
	a.printf("%s, %s: %s\n", w.Location.Name, w.Location.Country, c.Condition.Text)
	a.printf("Temperature %.1f°C (feels like %.1f°C), humidity %.0f%%\n", c.TempC, c.FeelsLikeC, c.Humidity)
	a.printf("Wind %.1f mph (gusts %.1f), pressure %.0f mb, UV %.1f\n", c.WindMph, c.GustMph, c.PressureMb, c.UV)
	return nil
}

func (a *App) Diag(context.Context) error {
	d := a.diag.Collect()

	a.outMu.Lock()
	defer a.outMu.Unlock()
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"OS", d.OS + "/" + d.Arch},
		{"CPUs", strconv.Itoa(d.CPUs)},
		{"Go", d.GoVersion},
		{"Host", d.Hostname},
		{"Server", d.ServerEndpoint},
		{"Upload (small)", d.PrimaryEndpoint},
		{"Upload (large)", d.SecondaryEndpoint},
		{"Large from", filex.HumanSize(d.ThresholdBytes)},
		{"Max file", filex.HumanSize(d.MaxFileBytes)},
		{"Idle timeout", d.IdleTimeout.String()},
		{"Session", d.Session},
	}
	if d.User != "" {
		rows = append(rows, [2]string{"User", d.User})
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}

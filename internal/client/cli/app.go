package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/clouddash/internal/client/client"
	"github.com/dmitrijs2005/clouddash/internal/client/config"
	"github.com/dmitrijs2005/clouddash/internal/client/services"
	"github.com/dmitrijs2005/clouddash/internal/logging"
)

// downloadParallelism bounds concurrent downloads of a multi-file command.
const downloadParallelism = 4

type App struct {
	config *config.Config
	log    logging.Logger
	repos  *client.Repositories

	guard   *services.SessionGuard
	files   *services.Workspace
	stats   *services.StatsService
	notes   *services.NotesService
	weather *services.WeatherService
	diag    *services.DiagnosticsService

	reader *bufio.Reader

	outMu sync.Mutex
	out   io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, c.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	repos, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DBPath, "error", err)
		return nil, err
	}

	api, err := client.NewHTTPClient(c.ServerEndpointAddr, c.RequestTimeout, logger)
	if err != nil {
		repos.Close()
		return nil, err
	}

	a := &App{
		config: c,
		log:    logger,
		repos:  repos,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	a.wire(api, services.NewLocalSessionStore(repos.Local), services.SystemClock)
	return a, nil
}

// wire builds the services on top of api and store.
func (a *App) wire(api client.Client, store services.SessionStore, clock services.Clock) {
	a.guard = services.NewSessionGuard(api, store,
		services.WithClock(clock),
		services.WithIdleTimeout(a.config.IdleTimeout),
		services.WithGuardLogger(a.log),
		services.WithOnLogout(a.onLogout),
	)

	primary, secondary := a.config.UploadURLs()
	policy := services.UploadPolicy{
		MaxFileBytes:      a.config.MaxFileBytes,
		ThresholdBytes:    a.config.UploadThresholdBytes,
		PrimaryEndpoint:   primary,
		SecondaryEndpoint: secondary,
	}
	a.files = services.NewWorkspace(api, policy, a.userName, a.log)

	a.stats = services.NewStatsService(api, a.repos.Local, a.log)
	a.notes = services.NewNotesService(api, a.log)
	a.weather = services.NewWeatherService(api)
	a.diag = services.NewDiagnosticsService(a.config.ServerEndpointAddr, a.files.Policy(), a.guard)
}

// userName is sent with list and upload calls. A configured name wins
// over the one reported at login.
func (a *App) userName() string {
	if a.config.UserName != "" {
		return a.config.UserName
	}
	return a.guard.UserName()
}

// onLogout runs for explicit and idle logouts alike. The pending batch
// belongs to the session that selected it.
func (a *App) onLogout(reason services.LogoutReason) {
	a.files.Reset()
	if reason == services.ReasonIdleTimeout {
		a.printf("\nYou have been logged out after %s of inactivity.\n", a.guard.IdleTimeout())
	}
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

// Run restores a saved session, then serves the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.repos.Close(); err != nil {
			a.log.Warn(ctx, "closing database", "error", err)
		}
	}()

	a.println("Welcome to the cloud dashboard CLI (type 'help' for commands)")
	if a.guard.Restore(ctx) {
		a.printf("Session restored for %s\n", a.userName())
		a.refresh(ctx)
	}

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.guard.IsAuthenticated()
}

func (a *App) touch() {
	a.guard.Touch()
}

func (a *App) status() string {
	if !a.isLoggedIn() {
		return "(logged out)"
	}
	if u := a.userName(); u != "" {
		return "(" + u + ")"
	}
	return "(logged in)"
}

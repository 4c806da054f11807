package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	touch()

	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Select(ctx context.Context, args []string) error
	Selected(ctx context.Context) error
	Reset(ctx context.Context) error
	Upload(ctx context.Context) error
	Download(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Notes(ctx context.Context) error
	AddNote(ctx context.Context) error
	EditNote(ctx context.Context, args []string) error
	DeleteNote(ctx context.Context, args []string) error
	Weather(ctx context.Context, args []string) error
	Diag(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login, diag, help, exit"
	helpLoggedIn  = "Available commands: (l)ist [-s name|date] [-o asc|desc] [query], select <path>..., selected, reset, upload, " +
		"download <id>..., delete <id>, stats, notes, addnote, editnote <id>, delnote <id>, weather <lat> <lon>, diag, logout, help, exit"
)

// runREPL starts a simple read–eval–print loop for the dashboard CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Every non-empty line counts as user activity
// and restarts the idle timer before the command runs. Commands other than
// login, diag, help and exit require a session. The loop exits on EOF or
// when the user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("dash %s > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		a.touch()

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "login":
			_ = a.Login(ctx)
			continue
		case "diag":
			_ = a.Diag(ctx)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !a.isLoggedIn() {
			if isKnown(cmd) {
				printlnFn("Please log in first.")
			} else {
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "logout":
			_ = a.Logout(ctx)
		case "l", "list":
			_ = a.List(ctx, args)
		case "select":
			_ = a.Select(ctx, args)
		case "selected":
			_ = a.Selected(ctx)
		case "reset":
			_ = a.Reset(ctx)
		case "upload":
			_ = a.Upload(ctx)
		case "download":
			_ = a.Download(ctx, args)
		case "delete":
			_ = a.Delete(ctx, args)
		case "stats":
			_ = a.Stats(ctx)
		case "notes":
			_ = a.Notes(ctx)
		case "addnote":
			_ = a.AddNote(ctx)
		case "editnote":
			_ = a.EditNote(ctx, args)
		case "delnote":
			_ = a.DeleteNote(ctx, args)
		case "weather":
			_ = a.Weather(ctx, args)
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

var knownCommands = map[string]struct{}{
	"logout": {}, "l": {}, "list": {}, "select": {}, "selected": {}, "reset": {}, "upload": {},
	"download": {}, "delete": {}, "stats": {}, "notes": {}, "addnote": {}, "editnote": {},
	"delnote": {}, "weather": {},
}

func isKnown(cmd string) bool {
	_, ok := knownCommands[cmd]
	return ok
}

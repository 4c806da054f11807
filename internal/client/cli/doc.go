// Package cli provides the interactive dashboard command-line client.
//
// It wires configuration, local storage, the REST client and the services,
// and runs a REPL in which every entered command counts as user activity
// for the idle-logout timer.
//
// Key features:
//   - Login / Logout, with the session restored on the next start
//   - List, filter and sort remote files; download and delete them
//   - Select local files into a batch and upload it with progress
//   - Statistics, notes, weather and diagnostics views
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli

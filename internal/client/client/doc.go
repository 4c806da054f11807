// Package client contains the client-side building blocks for the cloud
// file dashboard.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface and the
//     narrower AuthAPI, FilesAPI, StatsAPI, NotesAPI and WeatherAPI) for the
//     REST backend.
//  2. A concrete HTTP implementation (see HTTPClient) that tags every call
//     with an X-Request-ID, streams multipart uploads with progress, and maps
//     HTTP statuses to sentinel errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations)
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound, ErrBadStatus,
// ErrBadResponse.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation and the configured timeout.
package client

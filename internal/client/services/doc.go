// Package services contains the application services of the dashboard
// client.
//
// SessionGuard owns the login lifecycle and the idle-logout timer.
// Workspace owns the pending upload batch, the cached remote listing and
// the per-record download/delete markers. StatsService, NotesService,
// WeatherService and Diagnostics back the remaining views.
//
// Services talk to the backend through the narrow interfaces of package
// client and never decide how results are presented.
package services

package services

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics_Collect(t *testing.T) {
	g, _, _, _, _ := newGuard(t)
	d := NewDiagnosticsService("https://api.example", testPolicy, g)
	d.hostname = func() (string, error) { return "box", nil }

	got := d.Collect()
	assert.Equal(t, runtime.GOOS, got.OS)
	assert.Equal(t, runtime.NumCPU(), got.CPUs)
	assert.Equal(t, "box", got.Hostname)
	assert.Equal(t, testPolicy.SecondaryEndpoint, got.SecondaryEndpoint)
	assert.Equal(t, "logged out", got.Session)
	assert.Equal(t, DefaultIdleTimeout, got.IdleTimeout)

	require.NoError(t, g.SubmitCredentials(context.Background(), "alice", "secret"))
	got = d.Collect()
	assert.Equal(t, "logged in", got.Session)
	assert.Equal(t, "Alice", got.User)
}

func TestDiagnostics_HostnameError(t *testing.T) {
	d := NewDiagnosticsService("", UploadPolicy{}, nil)
	d.hostname = func() (string, error) { return "", errors.New("no") }
	got := d.Collect()
	assert.Equal(t, "unknown", got.Hostname)
	assert.Equal(t, "logged out", got.Session)
}

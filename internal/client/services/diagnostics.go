package services

import (
	"os"
	"runtime"
	"time"
)

// Diagnostics describes the machine and client configuration.
type Diagnostics struct {
	OS        string
	Arch      string
	CPUs      int
	GoVersion string
	Hostname  string

	ServerEndpoint    string
	PrimaryEndpoint   string
	SecondaryEndpoint string
	ThresholdBytes    int64
	MaxFileBytes      int64
	IdleTimeout       time.Duration

	Session string
	User    string
}

// DiagnosticsService gathers Diagnostics on demand.
type DiagnosticsService struct {
	server   string
	policy   UploadPolicy
	guard    *SessionGuard
	hostname func() (string, error)
}

func NewDiagnosticsService(server string, policy UploadPolicy, guard *SessionGuard) *DiagnosticsService {
	return &DiagnosticsService{server: server, policy: policy, guard: guard, hostname: os.Hostname}
}

func (s *DiagnosticsService) Collect() Diagnostics {
	host, err := s.hostname()
	if err != nil {
		host = "unknown"
	}

	d := Diagnostics{
		OS:                runtime.GOOS,
		Arch:              runtime.GOARCH,
		CPUs:              runtime.NumCPU(),
		GoVersion:         runtime.Version(),
		Hostname:          host,
		ServerEndpoint:    s.server,
		PrimaryEndpoint:   s.policy.PrimaryEndpoint,
		SecondaryEndpoint: s.policy.SecondaryEndpoint,
		ThresholdBytes:    s.policy.ThresholdBytes,
		MaxFileBytes:      s.policy.MaxFileBytes,
		Session:           StateLoggedOut.String(),
	}
	if s.guard != nil {
		d.Session = s.guard.State().String()
		d.User = s.guard.UserName()
		d.IdleTimeout = s.guard.IdleTimeout()
	}
	return d
}

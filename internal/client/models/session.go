package models

import "time"

// UserInfo is the profile returned by the richer authenticate response.
type UserInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// AuthResult is the decoded authenticate response. Older backends answer
// {"authenticated": bool}, newer ones {"success": bool, "user": {...}}.
type AuthResult struct {
	Authenticated bool      `json:"authenticated"`
	Success       bool      `json:"success"`
	Message       string    `json:"message,omitempty"`
	User          *UserInfo `json:"user,omitempty"`
}

// OK reports whether either response form is affirmative.
func (r AuthResult) OK() bool {
	return r.Authenticated || r.Success
}

// Session is the client's view of the current login.
type Session struct {
	Authenticated  bool
	User           UserInfo
	LastActivityAt time.Time
}

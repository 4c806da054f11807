package client

import "errors"

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrBadStatus    = errors.New("unexpected response status")
	ErrBadResponse  = errors.New("malformed response")
)

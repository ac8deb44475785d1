package apiclient

import "errors"

var (
	ErrTransport    = errors.New("api unreachable")
	ErrUnauthorized = errors.New("api rejected credentials")
	ErrNotFound     = errors.New("resource not found")
	ErrUpstream     = errors.New("api returned an error")
)

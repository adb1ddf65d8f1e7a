package tui

import "errors"

// ErrMissingPorts is returned when required services are not wired.
var ErrMissingPorts = errors.New("tui: required ports not configured")

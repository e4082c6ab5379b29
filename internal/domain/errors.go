package domain

import "errors"

var (
	// ErrTransient marks a network or store failure worth trying again later.
	ErrTransient = errors.New("transient failure")
	// ErrNotFound marks a missing movie or interaction record.
	ErrNotFound = errors.New("not found")
	// ErrUnconfigured marks a collaborator that lacks required configuration.
	ErrUnconfigured = errors.New("not configured")
	// ErrAlreadyExists marks a duplicate favorite or watchlist entry.
	ErrAlreadyExists = errors.New("already exists")
)

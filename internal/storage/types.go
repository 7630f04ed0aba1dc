package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// defaultLimit applies when RecentTransitions is called with limit <= 0.
const defaultLimit = 20

// Config configures storage.
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Kind is the direction of a transition.
type Kind string

const (
	Opened Kind = "opened"
	Closed Kind = "closed"
)

// Transition records one opening or closing fired by a cron job.
type Transition struct {
	At       time.Time
	Schedule string
	Kind     Kind
	Cron     string
}

// Package tui is the interactive terminal front end: pick a PDF, process
// it, then ask questions and browse the chunks each answer came from.
package tui

import (
	"errors"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

var (
	// ErrMissingSession means the TUI was started without a session.
	ErrMissingSession = errors.New("tui: session is required")

	// ErrInvalidPorts means Validate was called on nil Ports.
	ErrInvalidPorts = errors.New("tui: invalid ports configuration")
)

// Ports are the core services the TUI drives. Settings may be nil, in
// which case the settings screen reports it as unavailable.
type Ports struct {
	Session  driving.Session
	Settings driving.SettingsService
}

// NewPorts bundles the services.
func NewPorts(session driving.Session, settings driving.SettingsService) *Ports {
	return &Ports{Session: session, Settings: settings}
}

// Validate checks that the session is set.
func (p *Ports) Validate() error {
	switch {
	case p == nil:
		return ErrInvalidPorts
	case p.Session == nil:
		return ErrMissingSession
	}
	return nil
}

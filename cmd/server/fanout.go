package main

import (
	"errors"

	"dungeonsim.ai/internal/sim/world"
)

// fanoutTickLogger writes each tick to every sink. A failing sink does not
// stop the others.
type fanoutTickLogger []world.TickLogger

func (f fanoutTickLogger) WriteTick(entry world.TickLogEntry) error {
	var errs []error
	for _, l := range f {
		if l == nil {
			continue
		}
		if err := l.WriteTick(entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type fanoutAuditLogger []world.AuditLogger

func (f fanoutAuditLogger) WriteAudit(entry world.AuditEntry) error {
	var errs []error
	for _, l := range f {
		if l == nil {
			continue
		}
		if err := l.WriteAudit(entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

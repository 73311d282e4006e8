package instances

import (
	"errors"

	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/terrain/store"
)

var (
	ErrInvalidInstance = catalogs.ErrInvalidInstance
	ErrUnknownName     = catalogs.ErrUnknownName
	ErrSweepGuard      = store.ErrSweepGuard

	// ErrStaleReference marks a task, target or room that no longer matches
	// what the creature stored.
	ErrStaleReference = errors.New("stale reference")

	ErrInstanceBusy = errors.New("instance already active")
)

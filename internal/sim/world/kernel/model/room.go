package model

import "dungeonsim.ai/internal/sim/catalogs"

type Room struct {
	ID    RoomID
	Kind  catalogs.RoomKind
	Owner PlayerID

	// ClaimResistance must be worn down to 1 before the room changes hands.
	ClaimResistance int

	// FirstSlab is the head of the slab chain in the slab map; -1 when empty.
	FirstSlab int
	SlabCount int
	Central   SlabPos

	NextOfOwner RoomID

	StorageCapacity int64
	StorageUsed     int64
}

// MaxRooms bounds walks over an owner's room chain.
const MaxRooms = 255

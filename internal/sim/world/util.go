package world

import "sort"

func sortedThingIDs(m map[ThingID]*Thing) []ThingID {
	ids := make([]ThingID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedCreatureIDs(m map[ThingID]*Creature) []ThingID {
	ids := make([]ThingID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedRoomIDs(m map[RoomID]*Room) []RoomID {
	ids := make([]RoomID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedObserverIDs(m map[string]*observerClient) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

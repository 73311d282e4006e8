package world

import "dungeonsim.ai/internal/sim/world/kernel/model"

// MaxEvents bounds the live event list; the oldest event is evicted first.
const MaxEvents = 100

// raiseEvent creates an event, or refreshes a live one of the same kind and
// owner within the merge radius.
func (w *World) raiseEvent(kind model.EventKind, pos SlabPos, owner PlayerID, target int) {
	if owner == model.PlayerNeutral {
		return
	}
	now := w.tick.Load()
	expires := now + uint64(w.cfg.EventLifetimeTicks)
	for _, ev := range w.events {
		if ev.Kind != kind || ev.Owner != owner || ev.ExpiresAt <= now {
			continue
		}
		if ev.Pos.Dist(pos) > w.cfg.EventMergeRadius {
			continue
		}
		ev.UpdatedAt = now
		ev.ExpiresAt = expires
		ev.Refreshes++
		w.tickEvents = append(w.tickEvents, eventRecord(ev, true))
		return
	}
	if len(w.events) >= MaxEvents {
		w.events = append(w.events[:0], w.events[1:]...)
	}
	w.nextEvent++
	ev := &model.Event{
		ID:        w.nextEvent,
		Kind:      kind,
		Owner:     owner,
		Pos:       pos,
		Target:    target,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: expires,
	}
	w.events = append(w.events, ev)
	w.tickEvents = append(w.tickEvents, eventRecord(ev, false))
}

func (w *World) expireEvents(nowTick uint64) {
	kept := w.events[:0]
	for _, ev := range w.events {
		if ev.ExpiresAt > nowTick {
			kept = append(kept, ev)
		}
	}
	for i := len(kept); i < len(w.events); i++ {
		w.events[i] = nil
	}
	w.events = kept
}

func eventRecord(ev *model.Event, refreshed bool) EventRecord {
	return EventRecord{
		ID:        ev.ID,
		Kind:      string(ev.Kind),
		Owner:     int(ev.Owner),
		Pos:       [2]int{ev.Pos.X, ev.Pos.Y},
		Refreshed: refreshed,
	}
}

package instances

import (
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
)

// Destroy claims the slab under the creature: enemy or neutral rooms are worn
// down and taken over, other foreign ground is neutralised.
func Destroy(env Env, cr *model.Creature, _ int) Outcome {
	m := env.Slabs()
	x, y := cr.Pos.X, cr.Pos.Y
	slb, ok := m.Get(x, y)
	if !ok {
		return OutcomeContinue
	}
	prevOwner := slb.Owner

	if room := env.Room(slb.RoomID); room != nil && prevOwner != cr.Owner {
		if room.ClaimResistance > 1 {
			room.ClaimResistance--
			return OutcomeContinue
		}
		env.ClearDigOnRoomSlabs(room, cr.Owner)
		if room.Owner == model.PlayerNeutral {
			env.ClaimNeutralRoom(room, cr)
		} else {
			env.Event(model.EventRoomLost, room.Central, room.Owner, int(room.ID))
			env.ClaimEnemyRoom(room, cr)
		}
		env.PlaySound(cr, sndClaim, 1)
		env.EffectsOnRoomSlabs(room, model.EffectSpangle, cr.Owner)
		return OutcomeCompleted
	}

	if slb.Health > 1 {
		m.SetHealth(x, y, slb.Health-1)
		return OutcomeContinue
	}
	if prevOwner != model.PlayerNeutral {
		if pd := env.Dungeon(prevOwner); pd != nil {
			pd.Stats.TerritoryLost++
		}
	}
	env.ChangeArea(prevOwner, -1)
	env.NeutraliseEnemyBlock(x, y, cr.Owner)
	env.RemoveTrapsAround(x, y)
	if d := env.Dungeon(cr.Owner); d != nil {
		d.Stats.TerritoryDestroyed++
	}
	return OutcomeCompleted
}

// PrettyPath claims the ground under the creature for its owner.
func PrettyPath(env Env, cr *model.Creature, _ int) Outcome {
	m := env.Slabs()
	x, y := cr.Pos.X, cr.Pos.Y
	if _, ok := m.Get(x, y); !ok {
		return OutcomeContinue
	}
	env.Effect(model.EffectSpangle, cr.Pos, cr.Owner, model.HitTypeNone)
	env.PlaySound(cr, sndClaim, 1)
	m.Place(x, y, catalogs.SlabClaimed, cr.Owner)
	env.ChangeArea(cr.Owner, 1)
	if d := env.Dungeon(cr.Owner); d != nil {
		d.Stats.AreaClaimed++
	}
	env.Event(model.EventClaimed, cr.Pos, cr.Owner, 0)
	return OutcomeCompleted
}

// AttackRoomSlab wears down the room slab the creature stands on and destroys
// it once its health is spent.
func AttackRoomSlab(env Env, cr *model.Creature, _ int) Outcome {
	m := env.Slabs()
	x, y := cr.Pos.X, cr.Pos.Y
	slb, ok := m.Get(x, y)
	if !ok {
		return OutcomeContinue
	}
	room := env.Room(slb.RoomID)
	if room == nil {
		return OutcomeContinue
	}
	if dmg := env.Params().RoomSlabHitDamage; slb.Health > dmg {
		m.SetHealth(x, y, slb.Health-dmg)
		env.PlaySound(cr, sndRoomHit, 1)
		env.Effect(model.EffectRoomHit, cr.Pos, cr.Owner, model.HitTypeNone)
		if room.Owner != model.PlayerNeutral {
			env.Event(model.EventRoomAttacked, room.Central, room.Owner, int(room.ID))
		}
		return OutcomeCompleted
	}
	if room.Owner != model.PlayerNeutral {
		if d := env.Dungeon(room.Owner); d != nil {
			d.Stats.RoomsDestroyed++
		}
	}
	env.DeleteRoomSlab(x, y)
	env.Effect(model.EffectExplosion, cr.Pos, cr.Owner, model.HitTypeNone)
	return OutcomeCompleted
}

// FirstPersonDoImpTask is the possessed imp's single action key.
func FirstPersonDoImpTask(env Env, cr *model.Creature, _ int) Outcome {
	if env.CanPrettify(cr, cr.Pos.X, cr.Pos.Y) {
		PrettyPath(env, cr, 0)
	} else {
		FireShot(env, cr, FirstPersonShot)
	}
	return OutcomeCompleted
}

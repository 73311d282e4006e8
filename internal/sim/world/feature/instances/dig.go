package instances

import (
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
)

// Sound sample bases and variant counts.
const (
	sndDigHit       = 63
	sndDigDone      = 72
	sndClaim        = 76
	sndTunnel       = 69
	sndReinforce    = 1005
	sndReinforceEnd = 41
	sndWallHit      = 128
	sndRoomHit      = 133
	sndFart         = 94
)

// Dig works the creature's assigned dig task.
func Dig(env Env, cr *model.Creature, _ int) Outcome {
	d := env.Dungeon(cr.Owner)
	task, ok := d.Task(cr.DigTask)
	if !ok || task.Target != cr.DigTarget {
		env.Logf("dig: creature %d task %d: %v", cr.ID, cr.DigTask, ErrStaleReference)
		return OutcomeContinue
	}
	m := env.Slabs()
	x, y := task.Target.X, task.Target.Y
	slb, ok := m.Get(x, y)
	if !ok {
		return OutcomeContinue
	}

	damage := env.DigDamage(cr, slb)
	if slb.Health > damage {
		if slb.Kind != catalogs.SlabGems {
			m.SetHealth(x, y, slb.Health-damage)
		}
		env.PlaySound(cr, sndDigHit, 6)
		env.Effect(model.EffectDigHit, cr.Pos, cr.Owner, model.HitTypeNone)
		if task.Kind == model.TaskMineGold {
			creditGold(cr, d, env.GoldYield(cr, slb, damage))
		}
		return OutcomeContinue
	}

	// The hit finishes the slab; only the health left is worth gold.
	d.RemoveTask(cr.DigTask)
	switch task.Kind {
	case model.TaskMineGold:
		creditGold(cr, d, env.GoldYield(cr, slb, slb.Health))
		m.ConvertToFloor(x, y)
		revealCheck(env, x, y, cr.Owner)
	case model.TaskDigEarth:
		m.ConvertToFloor(x, y)
		revealCheck(env, x, y, cr.Owner)
	}
	env.CheckMapExplored(cr, x, y)
	env.PlaySound(cr, sndDigDone, 3)
	return OutcomeCompleted
}

func creditGold(cr *model.Creature, d *model.Dungeon, gold int64) {
	if gold <= 0 {
		return
	}
	cr.GoldCarried += gold
	if d != nil {
		d.Stats.GoldMined += gold
	}
}

func revealCheck(env Env, x, y int, owner model.PlayerID) {
	if env.DigHasRevealedArea(x, y, owner) {
		env.Event(model.EventAreaDiscovered, model.SlabPos{X: x, Y: y}, owner, 0)
	}
}

// Tunnel chips at the navigation dig target one point per hit.
func Tunnel(env Env, cr *model.Creature, _ int) Outcome {
	m := env.Slabs()
	x, y := cr.TunnelTarget.X, cr.TunnelTarget.Y
	slb, ok := m.Get(x, y)
	if !ok {
		return OutcomeContinue
	}
	env.PlaySound(cr, sndTunnel, 3)
	if slb.Health > 1 {
		m.SetHealth(x, y, slb.Health-1)
		return OutcomeCompleted
	}
	m.ConvertToFloor(x, y)
	return OutcomeCompleted
}

func DamageWall(env Env, cr *model.Creature, _ int) Outcome {
	m := env.Slabs()
	x, y := cr.DamageWallTarget.X, cr.DamageWallTarget.Y
	slb, ok := m.Get(x, y)
	if !ok {
		return OutcomeContinue
	}
	if dmg := env.Params().WallHitDamage; slb.Health > dmg {
		m.SetHealth(x, y, slb.Health-dmg)
	} else {
		m.ConvertToEarth(x, y)
	}
	env.PlaySound(cr, sndWallHit, 1)
	env.Effect(model.EffectWallHit, cr.DamageWallTarget, cr.Owner, model.HitTypeNone)
	return OutcomeCompleted
}

// Reinforce builds a wall on the dig target after ReinforceSteps hits. It never
// reports completion; the job ends when the slab stops qualifying.
func Reinforce(env Env, cr *model.Creature, _ int) Outcome {
	m := env.Slabs()
	x, y := cr.DigTarget.X, cr.DigTarget.Y
	slb, ok := m.Get(x, y)
	if !ok {
		return OutcomeContinue
	}
	if slb.Kind != catalogs.SlabEarth && slb.Kind != catalogs.SlabTorchDirt {
		return OutcomeContinue
	}
	if !m.OwnsGroundNear(x, y, cr.Owner) {
		return OutcomeContinue
	}
	if cr.ReinforceProgress <= env.Params().ReinforceSteps {
		cr.ReinforceProgress++
		env.PlaySound(cr, sndReinforce, 7)
		return OutcomeContinue
	}
	cr.ReinforceProgress = 0
	m.Place(x, y, catalogs.SlabWall, cr.Owner)
	env.Effect(model.EffectSpangle, cr.DigTarget, cr.Owner, model.HitTypeNone)
	env.PlaySound(cr, sndReinforceEnd, 1)
	return OutcomeContinue
}

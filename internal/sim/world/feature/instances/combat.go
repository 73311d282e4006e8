package instances

import "dungeonsim.ai/internal/sim/world/kernel/model"

// shotHitType picks the hit profile from the combat target relation. Possessed
// creatures may hit their own side.
func shotHitType(cr *model.Creature, class model.ThingClass, owner model.PlayerID, hasTarget bool) int {
	switch {
	case !hasTarget && cr.Possessed:
		return model.HitTypeCrtrsNObjcts
	case !hasTarget:
		return model.HitTypeCrtrsOnlyNotOwn
	case class == model.ClassObject:
		return model.HitTypeCrtrsNObjcts
	case cr.Possessed || owner == cr.Owner:
		return model.HitTypeCrtrsOnly
	default:
		return model.HitTypeCrtrsOnlyNotOwn
	}
}

// FireShot launches shot kind param at the current combat target. Flight and
// impact belong to the projectile system.
func FireShot(env Env, cr *model.Creature, param int) Outcome {
	target := cr.CombatTarget
	var (
		class model.ThingClass
		owner model.PlayerID
	)
	if target != 0 {
		var ok bool
		class, owner, ok = env.Target(target)
		if !ok {
			env.Logf("fire shot: creature %d target %d: %v", cr.ID, target, ErrStaleReference)
			return OutcomeContinue
		}
	}
	env.CreateShot(cr, target, param, shotHitType(cr, class, owner, target != 0))
	return OutcomeContinue
}

// CastSpell casts spell param at the combat target when the spell wants a
// thing and one exists, otherwise at the stored target position.
func CastSpell(env Env, cr *model.Creature, param int) Outcome {
	spell, ok := env.Spell(param)
	if !ok {
		env.Logf("cast spell: creature %d spell %d: %v", cr.ID, param, ErrStaleReference)
		return OutcomeContinue
	}
	if spell.CastAtThing && cr.CombatTarget != 0 {
		if _, _, ok := env.Target(cr.CombatTarget); ok {
			env.CastSpellAtThing(cr, cr.CombatTarget, param)
			return OutcomeContinue
		}
	}
	env.CastSpellAtPos(cr, cr.TargetPos, param)
	return OutcomeContinue
}

// Fart releases gas that only hurts other keepers' creatures. The cooldown
// starts when the gas is released.
func Fart(env Env, cr *model.Creature, _ int) Outcome {
	env.Effect(model.EffectGas, cr.Pos, cr.Owner, model.HitTypeCrtrsOnlyNotOwn)
	env.PlaySound(cr, sndFart, 6)
	if id := int(cr.Inst.Active); id > 0 && id < len(cr.Inst.LastUsedTick) {
		cr.Inst.LastUsedTick[id] = env.NowTick()
	}
	return OutcomeCompleted
}

package instances

import (
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
)

type Handler func(env Env, cr *model.Creature, param int) Outcome

// handlerTable is indexed by catalogs.FuncKind. The null and none kinds have
// no handler.
var handlerTable = [catalogs.FuncKindCount]Handler{
	catalogs.FuncNull:                 nil,
	catalogs.FuncAttackRoomSlab:       AttackRoomSlab,
	catalogs.FuncCastSpell:            CastSpell,
	catalogs.FuncFireShot:             FireShot,
	catalogs.FuncDamageWall:           DamageWall,
	catalogs.FuncDestroy:              Destroy,
	catalogs.FuncDig:                  Dig,
	catalogs.FuncEat:                  Eat,
	catalogs.FuncFart:                 Fart,
	catalogs.FuncFirstPersonDoImpTask: FirstPersonDoImpTask,
	catalogs.FuncPrettyPath:           PrettyPath,
	catalogs.FuncReinforce:            Reinforce,
	catalogs.FuncTortured:             Tortured,
	catalogs.FuncTunnel:               Tunnel,
	catalogs.FuncNone:                 nil,
}

func handlerFor(k catalogs.FuncKind) Handler {
	if k < 0 || k >= catalogs.FuncKindCount {
		return nil
	}
	return handlerTable[k]
}

// Tortured has no effect here; torture progress lives in creature state.
func Tortured(_ Env, _ *model.Creature, _ int) Outcome {
	return OutcomeCompleted
}

func Eat(env Env, cr *model.Creature, _ int) Outcome {
	if cr.HungerAmount > 0 {
		cr.HungerAmount--
	}
	heal(cr, env.Params().FoodHealthGain)
	cr.HungerLevel = 0
	return OutcomeCompleted
}

func heal(cr *model.Creature, amount int) {
	if amount <= 0 || cr.Health <= 0 {
		return
	}
	cr.Health += amount
	if cr.MaxHealth > 0 && cr.Health > cr.MaxHealth {
		cr.Health = cr.MaxHealth
	}
}

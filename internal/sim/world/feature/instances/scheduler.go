package instances

import (
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
)

// Result reports what one Advance call did, for journaling.
type Result struct {
	Fired    catalogs.InstanceID
	Outcome  Outcome
	Retired  bool
	Extended bool
}

// Advance steps the creature's active instance by one tick. It must be called
// exactly once per creature per world tick.
func Advance(env Env, cr *model.Creature, nowTick uint64) Result {
	var res Result
	st := &cr.Inst
	if st.Active == catalogs.InstNone {
		return res
	}
	st.Elapsed++
	if st.Elapsed == st.TriggerTick {
		info := instanceInfo(env, st.Active)
		if h := handlerFor(info.Kind); h != nil {
			res.Fired = st.Active
			res.Outcome = h(env, cr, info.FuncParam)
		}
	}
	if st.Elapsed == st.CompletionTick {
		if st.InterruptRequested {
			st.Elapsed--
			st.InterruptRequested = false
			res.Extended = true
			return res
		}
		if int(st.Active) < len(st.LastUsedTick) {
			st.LastUsedTick[st.Active] = nowTick
		}
		st.Active = catalogs.InstNone
		res.Retired = true
	}
	st.InterruptRequested = false
	return res
}

// instanceInfo never fails: unknown ids log and fall back to the empty entry.
func instanceInfo(env Env, id catalogs.InstanceID) catalogs.InstanceInfo {
	cat := env.Instances()
	info, err := cat.Describe(id)
	if err != nil {
		env.Logf("instances: %v; using empty descriptor", err)
		return cat.Empty()
	}
	return info
}

// SetInstance starts instance id. Possessed creatures use the first-person
// timings.
func SetInstance(cr *model.Creature, info catalogs.InstanceInfo) error {
	if cr.Inst.Active != catalogs.InstNone {
		return ErrInstanceBusy
	}
	if info.ID == catalogs.InstNone {
		return nil
	}
	trigger, completion := info.ActionTime, info.Time
	if cr.Possessed {
		trigger, completion = info.FPActionTime, info.FPTime
	}
	// A zero completion would never match the elapsed counter.
	if completion < 1 {
		completion = 1
	}
	cr.Inst.Active = info.ID
	cr.Inst.Elapsed = 0
	cr.Inst.TriggerTick = trigger
	cr.Inst.CompletionTick = completion
	cr.Inst.InterruptRequested = false
	return nil
}

// InstanceAvailable reports whether the creature has learned the instance and
// its cooldown has run out.
func InstanceAvailable(cr *model.Creature, info catalogs.InstanceInfo, nowTick uint64) bool {
	id := int(info.ID)
	if id <= 0 || id >= len(cr.Instances) || cr.Instances[id] == 0 {
		return false
	}
	reset := info.ResetTime
	if cr.Possessed {
		reset = info.FPResetTime
	}
	last := uint64(0)
	if id < len(cr.Inst.LastUsedTick) {
		last = cr.Inst.LastUsedTick[id]
	}
	return last == 0 || nowTick >= last+uint64(reset)
}

// CreatureHasRangedWeapon scans the learned-instance table on every call.
func CreatureHasRangedWeapon(cr *model.Creature) bool {
	if cr == nil {
		return false
	}
	for i := 1; i < len(cr.Instances); i++ {
		if cr.Instances[i] > 0 && catalogs.IsRangedWeapon(catalogs.InstanceID(i)) {
			return true
		}
	}
	return false
}

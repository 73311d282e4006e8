package world

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`

	Creatures int `json:"creatures"`
	Rooms     int `json:"rooms"`
	Things    int `json:"things"`
	Events    int `json:"events"`
	Observers int `json:"observers"`

	QueueDepths QueueDepths `json:"queue_depths"`

	StepMS        float64 `json:"step_ms"`
	FiredLastTick int     `json:"fired_last_tick"`
	SoundsLast    int     `json:"sounds_last_tick"`

	Dungeons []DungeonStat `json:"dungeons"`
}

type QueueDepths struct {
	Commands int `json:"commands"`
	Admin    int `json:"admin"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}

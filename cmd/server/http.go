package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"strconv"
	"strings"
	"time"

	"dungeonsim.ai/internal/persistence/indexdb"
	"dungeonsim.ai/internal/sim/world"
	"dungeonsim.ai/internal/transport/observer"
)

type httpDeps struct {
	cfg   serverConfig
	world *world.World
	index *indexdb.SQLiteIndex
	obs   *observer.Server
}

func newMux(d httpDeps) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", d.metricsHandler)

	if d.obs != nil {
		mux.Handle("/v1/", d.obs.Handler())
	}

	if d.cfg.EnableAdminHTTP {
		mux.HandleFunc("/admin/v1/state", d.loopbackOnly(d.stateHandler))
		mux.HandleFunc("/admin/v1/snapshot", d.loopbackOnly(d.snapshotHandler))
		mux.HandleFunc("/admin/v1/history", d.loopbackOnly(d.historyHandler))
		mux.HandleFunc("/admin/v1/fired", d.loopbackOnly(d.firedHandler))
	}
	if d.cfg.EnablePprofHTTP {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	return mux
}

func (d httpDeps) metricsHandler(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

	m := d.world.Metrics()
	run := d.cfg.RunID

	// Minimal Prometheus exposition format.
	gauge(rw, "dsim_world_tick", "Next tick to simulate.", run, float64(m.Tick))
	gauge(rw, "dsim_world_creatures", "Live creatures.", run, float64(m.Creatures))
	gauge(rw, "dsim_world_rooms", "Rooms on the map.", run, float64(m.Rooms))
	gauge(rw, "dsim_world_things", "Things (gold hoards, shots) on the map.", run, float64(m.Things))
	gauge(rw, "dsim_world_events", "Active keeper events.", run, float64(m.Events))
	gauge(rw, "dsim_world_observers", "Connected observers.", run, float64(m.Observers))
	gauge(rw, "dsim_world_step_ms", "Last tick step duration in milliseconds.", run, m.StepMS)
	gauge(rw, "dsim_world_fired_last_tick", "Instances fired in the last tick.", run, float64(m.FiredLastTick))

	fmt.Fprintf(rw, "# HELP dsim_world_queue_depth Channel backlog depth.\n")
	fmt.Fprintf(rw, "# TYPE dsim_world_queue_depth gauge\n")
	fmt.Fprintf(rw, "dsim_world_queue_depth{run=%q,queue=%q} %d\n", run, "commands", m.QueueDepths.Commands)
	fmt.Fprintf(rw, "dsim_world_queue_depth{run=%q,queue=%q} %d\n", run, "admin", m.QueueDepths.Admin)

	fmt.Fprintf(rw, "# HELP dsim_dungeon_gold Gold owned per keeper.\n")
	fmt.Fprintf(rw, "# TYPE dsim_dungeon_gold gauge\n")
	for _, ds := range m.Dungeons {
		fmt.Fprintf(rw, "dsim_dungeon_gold{run=%q,owner=\"%d\"} %d\n", run, ds.Owner, ds.Gold)
	}
	fmt.Fprintf(rw, "# HELP dsim_dungeon_area Claimed area per keeper.\n")
	fmt.Fprintf(rw, "# TYPE dsim_dungeon_area gauge\n")
	for _, ds := range m.Dungeons {
		fmt.Fprintf(rw, "dsim_dungeon_area{run=%q,owner=\"%d\"} %d\n", run, ds.Owner, ds.TotalArea)
	}

	if d.index != nil {
		fmt.Fprintf(rw, "# HELP dsim_index_dropped_total Index rows dropped under backpressure.\n")
		fmt.Fprintf(rw, "# TYPE dsim_index_dropped_total counter\n")
		fmt.Fprintf(rw, "dsim_index_dropped_total{run=%q} %d\n", run, d.index.Dropped())
	}
}

func gauge(rw http.ResponseWriter, name, help, run string, v float64) {
	fmt.Fprintf(rw, "# HELP %s %s\n", name, help)
	fmt.Fprintf(rw, "# TYPE %s gauge\n", name)
	fmt.Fprintf(rw, "%s{run=%q} %g\n", name, run, v)
}

func (d httpDeps) stateHandler(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, http.StatusOK, struct {
		RunID   string             `json:"run_id"`
		Tick    uint64             `json:"tick"`
		Metrics world.WorldMetrics `json:"metrics"`
	}{
		RunID:   d.cfg.RunID,
		Tick:    d.world.CurrentTick(),
		Metrics: d.world.Metrics(),
	})
}

func (d httpDeps) snapshotHandler(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	tick, err := d.world.RequestSnapshot(ctx)
	if err != nil {
		writeJSON(rw, http.StatusServiceUnavailable, map[string]any{"ok": false, "tick": tick, "error": err.Error()})
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"ok": true, "tick": tick})
}

type historyPoint struct {
	Tick uint64 `json:"tick"`
	world.DungeonStat
}

func (d httpDeps) historyHandler(rw http.ResponseWriter, r *http.Request) {
	if d.index == nil {
		http.Error(rw, "index disabled", http.StatusServiceUnavailable)
		return
	}
	owner, err := strconv.Atoi(r.URL.Query().Get("owner"))
	if err != nil {
		http.Error(rw, "bad owner", http.StatusBadRequest)
		return
	}
	stats, ticks, err := d.index.DungeonHistory(r.Context(), owner)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]historyPoint, len(stats))
	for i := range stats {
		out[i] = historyPoint{Tick: ticks[i], DungeonStat: stats[i]}
	}
	writeJSON(rw, http.StatusOK, out)
}

func (d httpDeps) firedHandler(rw http.ResponseWriter, r *http.Request) {
	if d.index == nil {
		http.Error(rw, "index disabled", http.StatusServiceUnavailable)
		return
	}
	q := r.URL.Query()
	creature, err := strconv.ParseUint(q.Get("creature"), 10, 32)
	if err != nil {
		http.Error(rw, "bad creature", http.StatusBadRequest)
		return
	}
	limit := 100
	if s := q.Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil || limit <= 0 {
			http.Error(rw, "bad limit", http.StatusBadRequest)
			return
		}
	}
	rows, err := d.index.FiredByCreature(r.Context(), uint32(creature), limit)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(rw, http.StatusOK, rows)
}

func (d httpDeps) loopbackOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		h(rw, r)
	}
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

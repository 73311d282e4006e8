package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	persistlog "dungeonsim.ai/internal/persistence/log"
	"dungeonsim.ai/internal/persistence/snapshot"
	"dungeonsim.ai/internal/protocol"
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/tuning"
	"dungeonsim.ai/internal/sim/world"
)

func main() {
	var (
		snapPath  = flag.String("snapshot", "", "path to .snap.zst (empty: start from a fresh world with -seed)")
		runDir    = flag.String("run", "", "run directory containing journal/ (optional)")
		configDir = flag.String("configs", "./configs", "config directory")
		seed      = flag.Int64("seed", 0, "world seed when replaying from tick 0")
		fromTick  = flag.Uint64("from_tick", 0, "start verifying from tick (inclusive, optional)")
		toTick    = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	if *snapPath == "" && *runDir == "" {
		fmt.Fprintln(os.Stderr, "need -snapshot and/or -run")
		os.Exit(2)
	}

	var snap *snapshot.SnapshotV1
	if *snapPath != "" {
		s, err := snapshot.ReadSnapshot(*snapPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read snapshot:", err)
			os.Exit(1)
		}
		snap = &s
		fmt.Printf("snapshot v%d run=%s tick=%d seed=%d map=%dx%d players=%d creatures=%d rooms=%d things=%d events=%d\n",
			s.Header.Version, s.Header.RunID, s.Header.Tick, s.Seed, s.Width, s.Height, s.Players,
			len(s.Creatures), len(s.Rooms), len(s.Things), len(s.Events))
		if *runDir == "" {
			return
		}
	}

	tu, err := tuning.Load(filepath.Join(*configDir, "tuning.yaml"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "load tuning:", err)
		os.Exit(1)
	}
	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalogs:", err)
		os.Exit(1)
	}

	cfg := world.ConfigFromTuning("replay", *seed, tu)
	if snap != nil {
		cfg = world.ConfigFromTuning(snap.Header.RunID, snap.Seed, tu)
		cfg.Width, cfg.Height, cfg.Players = snap.Width, snap.Height, snap.Players
	}
	w, err := world.New(cfg, cats)
	if err != nil {
		fmt.Fprintln(os.Stderr, "world:", err)
		os.Exit(1)
	}
	if snap != nil {
		if err := w.ImportSnapshot(*snap); err != nil {
			fmt.Fprintln(os.Stderr, "import snapshot:", err)
			os.Exit(1)
		}
	}

	r := newReplayer(w, *fromTick, *toTick)
	if err := persistlog.ReadTicks(*runDir, r.apply); err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	r.report(os.Stdout)
}

type replayer struct {
	w          *world.World
	startTick  uint64
	verifyFrom uint64
	toTick     uint64

	checked  uint64
	commands int
	fired    map[string]int
	outcomes map[string]int
}

func newReplayer(w *world.World, fromTick, toTick uint64) *replayer {
	start := w.CurrentTick()
	if fromTick < start {
		fromTick = start
	}
	return &replayer{
		w:          w,
		startTick:  start,
		verifyFrom: fromTick,
		toTick:     toTick,
		fired:      map[string]int{},
		outcomes:   map[string]int{},
	}
}

func (r *replayer) apply(entry world.TickLogEntry) error {
	if entry.Tick < r.startTick {
		return nil
	}
	if r.toTick != 0 && entry.Tick > r.toTick {
		return persistlog.ErrStop
	}
	if entry.Tick != r.w.CurrentTick() {
		return fmt.Errorf("tick gap: want=%d got=%d", r.w.CurrentTick(), entry.Tick)
	}

	cmds := make([]protocol.CommandReq, 0, len(entry.Commands))
	for _, rc := range entry.Commands {
		cmds = append(cmds, rc.Cmd)
	}
	tick, digest := r.w.StepOnce(cmds)
	if tick != entry.Tick {
		return fmt.Errorf("internal tick mismatch: stepped=%d entry=%d", tick, entry.Tick)
	}
	r.commands += len(cmds)
	for _, f := range entry.Fired {
		r.fired[f.Instance]++
		r.outcomes[f.Outcome]++
	}

	if tick >= r.verifyFrom {
		r.checked++
		if digest != entry.Digest {
			return fmt.Errorf("%w at tick %d: got=%s want=%s", errDigestMismatch, tick, digest, entry.Digest)
		}
	}
	return nil
}

var errDigestMismatch = errors.New("digest mismatch")

func (r *replayer) report(out io.Writer) {
	fmt.Fprintf(out, "replay ok: checked=%d ticks commands=%d (from tick=%d, now=%d)\n",
		r.checked, r.commands, r.startTick, r.w.CurrentTick())
	for _, name := range sortedKeys(r.fired) {
		fmt.Fprintf(out, "  fired %-24s %d\n", name, r.fired[name])
	}
	for _, name := range sortedKeys(r.outcomes) {
		fmt.Fprintf(out, "  outcome %-22s %d\n", name, r.outcomes[name])
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

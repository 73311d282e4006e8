package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dungeonsim.ai/internal/persistence/archive"
	"dungeonsim.ai/internal/persistence/indexdb"
	persistlog "dungeonsim.ai/internal/persistence/log"
	"dungeonsim.ai/internal/persistence/snapshot"
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/tuning"
	"dungeonsim.ai/internal/sim/world"
	"dungeonsim.ai/internal/transport/observer"
)

func main() {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := loadServerConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if strings.TrimSpace(cfg.RunID) == "" {
		cfg.RunID = uuid.NewString()
	}
	runDir := cfg.runDir()
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		logger.Fatalf("run dir: %v", err)
	}

	cats, err := catalogs.Load(cfg.ConfigDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}
	tune, err := tuning.Load(cfg.TuningPath)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}

	snapshotToLoad := strings.TrimSpace(cfg.SnapshotPath)
	if snapshotToLoad == "" && cfg.LoadLatest {
		if snapshotToLoad, err = archive.Latest(runDir); err != nil {
			logger.Fatalf("list snapshots: %v", err)
		}
	}
	w, err := buildWorld(cfg, tune, cats, snapshotToLoad, logger)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	w.SetLogger(logger)

	// Optional read-model index; it never feeds back into the simulation.
	var idx *indexdb.SQLiteIndex
	if !cfg.DisableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(runDir, "index.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(cfg.ConfigDir, cats, tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
		wc := w.Config()
		for k, v := range map[string]string{
			"run_id":  cfg.RunID,
			"seed":    strconv.FormatInt(wc.Seed, 10),
			"width":   strconv.Itoa(wc.Width),
			"height":  strconv.Itoa(wc.Height),
			"players": strconv.Itoa(wc.Players),
		} {
			if err := idx.SetMeta(k, v); err != nil {
				logger.Printf("index: meta %s: %v", k, err)
			}
		}
	}

	journal := persistlog.NewTickJournal(runDir)
	audit := persistlog.NewAuditLog(runDir)
	defer journal.Close()
	defer audit.Close()
	ticks := fanoutTickLogger{journal}
	audits := fanoutAuditLogger{audit}
	if idx != nil {
		ticks = append(ticks, idx)
		audits = append(audits, idx)
	}
	w.SetTickLogger(ticks)
	w.SetAuditLogger(audits)

	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	sw := snapshotWriter{
		runDir:       runDir,
		keep:         cfg.KeepSnaps,
		archiveEvery: cfg.ArchiveEvery,
		logger:       logger,
	}
	if idx != nil {
		sw.index = idx
	}

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: newMux(httpDeps{
			cfg:   cfg,
			world: w,
			index: idx,
			obs:   observer.NewServer(w, logger),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := w.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error { return sw.run(gctx, snapCh) })
	g.Go(func() error {
		logger.Printf("run=%s tick=%d listening on %s", cfg.RunID, w.CurrentTick(), cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		logger.Printf("stopped: %v", err)
	}
	if idx != nil {
		fctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := idx.Flush(fctx); err != nil {
			logger.Printf("index flush: %v", err)
		}
		cancel()
	}
	logger.Printf("run=%s stopped at tick=%d", cfg.RunID, w.CurrentTick())
}

// buildWorld creates a fresh world from tuning, or resumes one from a snapshot.
func buildWorld(cfg serverConfig, tune tuning.Tuning, cats *catalogs.Catalogs, snapPath string, logger *log.Logger) (*world.World, error) {
	if snapPath == "" {
		logger.Printf("fresh world seed=%d map=%dx%d players=%d", cfg.Seed, tune.MapWidth, tune.MapHeight, tune.Players)
		return world.New(world.ConfigFromTuning(cfg.RunID, cfg.Seed, tune), cats)
	}

	snap, err := snapshot.ReadSnapshot(snapPath)
	if err != nil {
		return nil, err
	}
	if snap.Header.RunID != "" && snap.Header.RunID != cfg.RunID {
		logger.Printf("snapshot run id %s differs from %s; continuing under %s", snap.Header.RunID, cfg.RunID, cfg.RunID)
	}
	wc := world.ConfigFromTuning(cfg.RunID, snap.Seed, tune)
	wc.Width, wc.Height, wc.Players = snap.Width, snap.Height, snap.Players
	w, err := world.New(wc, cats)
	if err != nil {
		return nil, err
	}
	snap.Header.RunID = cfg.RunID
	if err := w.ImportSnapshot(snap); err != nil {
		return nil, err
	}
	logger.Printf("resumed from snapshot=%s tick=%d", filepath.Base(snapPath), w.CurrentTick())
	return w, nil
}

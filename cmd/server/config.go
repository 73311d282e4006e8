package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// serverConfig holds process settings. DSIM_* variables set the defaults and
// command-line flags override them.
type serverConfig struct {
	Addr       string `env:"DSIM_ADDR" envDefault:":8080"`
	ConfigDir  string `env:"DSIM_CONFIGS" envDefault:"./configs"`
	TuningPath string `env:"DSIM_TUNING"`
	DataDir    string `env:"DSIM_DATA" envDefault:"./data"`
	RunID      string `env:"DSIM_RUN_ID"`
	Seed       int64  `env:"DSIM_SEED" envDefault:"1337"`

	SnapshotPath string `env:"DSIM_SNAPSHOT"`
	LoadLatest   bool   `env:"DSIM_LOAD_LATEST_SNAPSHOT" envDefault:"true"`
	KeepSnaps    int    `env:"DSIM_KEEP_SNAPSHOTS" envDefault:"10"`
	ArchiveEvery uint64 `env:"DSIM_ARCHIVE_EVERY_TICKS" envDefault:"72000"`

	DisableDB       bool `env:"DSIM_DISABLE_DB"`
	EnableAdminHTTP bool `env:"DSIM_ENABLE_ADMIN_HTTP" envDefault:"true"`
	EnablePprofHTTP bool `env:"DSIM_ENABLE_PPROF_HTTP"`
}

func loadServerConfig(fs *flag.FlagSet, args []string) (serverConfig, error) {
	var cfg serverConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "http listen address")
	fs.StringVar(&cfg.ConfigDir, "configs", cfg.ConfigDir, "config directory")
	fs.StringVar(&cfg.TuningPath, "tuning", cfg.TuningPath, "path to tuning.yaml (default: <configs>/tuning.yaml)")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "runtime data directory")
	fs.StringVar(&cfg.RunID, "run", cfg.RunID, "run id to resume or create (default: new uuid)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world seed (used only when starting a fresh world)")
	fs.StringVar(&cfg.SnapshotPath, "snapshot", cfg.SnapshotPath, "path to snapshot to load (optional)")
	fs.BoolVar(&cfg.LoadLatest, "load_latest_snapshot", cfg.LoadLatest, "resume from the run's latest snapshot when -snapshot is empty")
	fs.IntVar(&cfg.KeepSnaps, "keep_snapshots", cfg.KeepSnaps, "snapshots kept per run (0 keeps all)")
	fs.Uint64Var(&cfg.ArchiveEvery, "archive_every_ticks", cfg.ArchiveEvery, "copy snapshots at this tick period into archives/ (0 disables)")
	fs.BoolVar(&cfg.DisableDB, "disable_db", cfg.DisableDB, "disable the sqlite index")
	fs.BoolVar(&cfg.EnableAdminHTTP, "admin_http", cfg.EnableAdminHTTP, "serve loopback admin endpoints")
	fs.BoolVar(&cfg.EnablePprofHTTP, "pprof_http", cfg.EnablePprofHTTP, "serve /debug/pprof")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if strings.TrimSpace(cfg.TuningPath) == "" {
		cfg.TuningPath = filepath.Join(cfg.ConfigDir, "tuning.yaml")
	}
	if cfg.KeepSnaps < 0 {
		return cfg, fmt.Errorf("keep_snapshots must be >= 0")
	}
	return cfg, nil
}

func (c serverConfig) runDir() string {
	return filepath.Join(c.DataDir, "runs", c.RunID)
}

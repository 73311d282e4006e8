package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"dungeonsim.ai/internal/persistence/snapshot"
)

const (
	SnapshotDir = "snapshots"
	ArchiveDir  = "archives"
	snapSuffix  = ".snap.zst"
)

type MilestoneMeta struct {
	Tick      uint64            `json:"tick"`
	RunID     string            `json:"run_id"`
	Seed      int64             `json:"seed"`
	Snapshot  string            `json:"snapshot"`
	CreatedAt string            `json:"created_at"`
	Creatures int               `json:"creatures"`
	Rooms     int               `json:"rooms"`
	Catalogs  map[string]string `json:"catalog_digests,omitempty"`
}

// SnapshotPath is where the snapshot for tick lives under runDir.
func SnapshotPath(runDir string, tick uint64) string {
	return filepath.Join(runDir, SnapshotDir, fmt.Sprintf("%012d%s", tick, snapSuffix))
}

// ArchiveMilestone copies a snapshot into runDir/archives/tick_<N>/ when the
// tick after it is a multiple of every. Milestones are never pruned.
func ArchiveMilestone(runDir, snapshotPath string, snap snapshot.SnapshotV1, every uint64) (string, bool, error) {
	if every == 0 || (snap.Header.Tick+1)%every != 0 {
		return "", false, nil
	}
	dir := filepath.Join(runDir, ArchiveDir, fmt.Sprintf("tick_%012d", snap.Header.Tick))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, err
	}
	dst := filepath.Join(dir, filepath.Base(snapshotPath))
	if err := copyFile(snapshotPath, dst); err != nil {
		return "", false, err
	}

	meta := MilestoneMeta{
		Tick:      snap.Header.Tick,
		RunID:     snap.Header.RunID,
		Seed:      snap.Seed,
		Snapshot:  filepath.Base(dst),
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Creatures: len(snap.Creatures),
		Rooms:     len(snap.Rooms),
		Catalogs:  snap.CatalogDigests,
	}
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return dst, true, err
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), b, 0o644); err != nil {
		return dst, true, err
	}
	return dst, true, nil
}

// List returns the ticks of all snapshots under runDir/snapshots, ascending.
func List(runDir string) ([]uint64, error) {
	ents, err := os.ReadDir(filepath.Join(runDir, SnapshotDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ticks []uint64
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, snapSuffix) {
			continue
		}
		t, err := strconv.ParseUint(strings.TrimSuffix(name, snapSuffix), 10, 64)
		if err != nil {
			continue
		}
		ticks = append(ticks, t)
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })
	return ticks, nil
}

// Latest returns the newest snapshot path, or "" when the run has none.
func Latest(runDir string) (string, error) {
	ticks, err := List(runDir)
	if err != nil || len(ticks) == 0 {
		return "", err
	}
	return SnapshotPath(runDir, ticks[len(ticks)-1]), nil
}

// Prune keeps the newest keep snapshots and removes the rest. It returns the
// removed paths.
func Prune(runDir string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	ticks, err := List(runDir)
	if err != nil || len(ticks) <= keep {
		return nil, err
	}
	var removed []string
	for _, t := range ticks[:len(ticks)-keep] {
		p := SnapshotPath(runDir, t)
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed = append(removed, p)
	}
	return removed, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

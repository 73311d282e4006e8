package main

import (
	"context"
	"log"

	"dungeonsim.ai/internal/persistence/archive"
	"dungeonsim.ai/internal/persistence/snapshot"
)

type snapshotRecorder interface {
	RecordSnapshot(path string, snap snapshot.SnapshotV1)
}

// snapshotWriter persists snapshots handed over by the world loop.
type snapshotWriter struct {
	runDir       string
	keep         int
	archiveEvery uint64
	index        snapshotRecorder
	logger       *log.Logger
}

func (s snapshotWriter) run(ctx context.Context, ch <-chan snapshot.SnapshotV1) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-ch:
			s.write(snap)
		}
	}
}

func (s snapshotWriter) write(snap snapshot.SnapshotV1) {
	path := archive.SnapshotPath(s.runDir, snap.Header.Tick)
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		s.logger.Printf("snapshot write: %v", err)
		return
	}
	s.logger.Printf("snapshot tick=%d creatures=%d rooms=%d path=%s", snap.Header.Tick, len(snap.Creatures), len(snap.Rooms), path)
	if s.index != nil {
		s.index.RecordSnapshot(path, snap)
	}

	if dst, ok, err := archive.ArchiveMilestone(s.runDir, path, snap, s.archiveEvery); err != nil {
		s.logger.Printf("archive snapshot: %v", err)
	} else if ok {
		s.logger.Printf("archived tick=%d to %s", snap.Header.Tick, dst)
	}
	if removed, err := archive.Prune(s.runDir, s.keep); err != nil {
		s.logger.Printf("prune snapshots: %v", err)
	} else if len(removed) > 0 {
		s.logger.Printf("pruned %d snapshots", len(removed))
	}
}

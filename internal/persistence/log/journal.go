package log

import (
	"path/filepath"

	"dungeonsim.ai/internal/sim/world"
)

const (
	JournalDir    = "journal"
	JournalPrefix = "ticks"
	AuditDir      = "audit"
	AuditPrefix   = "audit"
)

// TickJournal records one line per simulated tick: the commands applied, the
// instances fired and the state digest. It is the input of cmd/replay.
type TickJournal struct{ w *RotatingWriter }

func NewTickJournal(runDir string) *TickJournal {
	return &TickJournal{w: NewRotatingWriter(filepath.Join(runDir, JournalDir), JournalPrefix)}
}

func (j *TickJournal) WriteTick(e world.TickLogEntry) error { return j.w.Write(e) }
func (j *TickJournal) Close() error                         { return j.w.Close() }

// AuditLog records terrain changes.
type AuditLog struct{ w *RotatingWriter }

func NewAuditLog(runDir string) *AuditLog {
	return &AuditLog{w: NewRotatingWriter(filepath.Join(runDir, AuditDir), AuditPrefix)}
}

func (l *AuditLog) WriteAudit(e world.AuditEntry) error { return l.w.Write(e) }
func (l *AuditLog) Close() error                        { return l.w.Close() }

var (
	_ world.TickLogger  = (*TickJournal)(nil)
	_ world.AuditLogger = (*AuditLog)(nil)
)

package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

type statements struct {
	tick, command, fired, event, stat, audit, snapshot *sql.Stmt
}

func (s *SQLiteIndex) prepare() statements {
	p := func(q string) *sql.Stmt {
		st, _ := s.db.Prepare(q)
		return st
	}
	return statements{
		tick:     p(`INSERT OR REPLACE INTO ticks(tick,digest,commands,fired,events,raw_json) VALUES(?,?,?,?,?,?)`),
		command:  p(`INSERT OR REPLACE INTO commands(tick,seq,cmd_id,op,creature,owner,code,ref,raw_json) VALUES(?,?,?,?,?,?,?,?,?)`),
		fired:    p(`INSERT OR REPLACE INTO fired(tick,seq,creature,instance,outcome) VALUES(?,?,?,?,?)`),
		event:    p(`INSERT OR REPLACE INTO events(tick,seq,event_id,kind,owner,x,y,refreshed) VALUES(?,?,?,?,?,?,?,?)`),
		stat:     p(`INSERT OR REPLACE INTO dungeon_stats(tick,owner,gold,offmap_gold,total_area,room_area,gold_mined,area_claimed,rooms_lost,rooms_claimed) VALUES(?,?,?,?,?,?,?,?,?,?)`),
		audit:    p(`INSERT OR REPLACE INTO audits(tick,seq,actor,action,x,y,from_kind,to_kind,owner,reason,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?)`),
		snapshot: p(`INSERT OR REPLACE INTO snapshots(tick,path,seed,width,height,players,creatures,rooms,things) VALUES(?,?,?,?,?,?,?,?,?)`),
	}
}

func (st statements) close() {
	for _, s := range []*sql.Stmt{st.tick, st.command, st.fired, st.event, st.stat, st.audit, st.snapshot} {
		if s != nil {
			_ = s.Close()
		}
	}
}

// loop is the single writer. It batches rows into transactions committed
// every commitEvery rows or commitMaxWait, whichever comes first.
func (s *SQLiteIndex) loop() {
	ctx := context.Background()
	st := s.prepare()
	defer st.close()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second

		lastAuditTick uint64
		auditSeq      int
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	end := func(ok bool) {
		if tx == nil {
			return
		}
		if ok {
			_ = tx.Commit()
		} else {
			_ = tx.Rollback()
		}
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(stmt *sql.Stmt, args ...any) bool {
		if stmt == nil || tx == nil {
			return false
		}
		if _, err := tx.Stmt(stmt).Exec(args...); err != nil {
			end(false)
			return false
		}
		opCount++
		return true
	}

	for r := range s.ch {
		if r.kind == reqFlush {
			end(true)
			close(r.done)
			continue
		}
		begin()
		if tx == nil {
			s.dropped.Add(1)
			continue
		}
		switch r.kind {
		case reqTick:
			s.writeTick(st, exec, r)
		case reqAudit:
			a := r.audit
			if a.Tick != lastAuditTick {
				lastAuditTick = a.Tick
				auditSeq = 0
			}
			raw, _ := json.Marshal(a)
			exec(st.audit, int64(a.Tick), auditSeq, int64(a.Actor), a.Action, a.Pos[0], a.Pos[1],
				int64(a.From), int64(a.To), a.Owner, a.Reason, string(raw))
			auditSeq++
		case reqSnapshot:
			sn := r.snapshot
			exec(st.snapshot, int64(sn.Tick), sn.Path, sn.Seed, sn.Width, sn.Height, sn.Players,
				sn.Creatures, sn.Rooms, sn.Things)
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			end(true)
		}
	}
	end(true)
}

func (s *SQLiteIndex) writeTick(st statements, exec func(*sql.Stmt, ...any) bool, r req) {
	e := r.tick
	tick := int64(e.Tick)
	raw, _ := json.Marshal(e)
	if !exec(st.tick, tick, e.Digest, len(e.Commands), len(e.Fired), len(e.Events), string(raw)) {
		return
	}
	for i, c := range e.Commands {
		cj, _ := json.Marshal(c.Cmd)
		if !exec(st.command, tick, i, c.Cmd.ID, c.Cmd.Op, int64(c.Cmd.Creature), c.Cmd.Owner, c.Code, c.Ref, string(cj)) {
			return
		}
	}
	for i, f := range e.Fired {
		if !exec(st.fired, tick, i, int64(f.Creature), f.Instance, f.Outcome) {
			return
		}
	}
	for i, ev := range e.Events {
		if !exec(st.event, tick, i, int64(ev.ID), ev.Kind, ev.Owner, ev.Pos[0], ev.Pos[1], boolInt(ev.Refreshed)) {
			return
		}
	}
	for _, d := range e.Dungeons {
		if !exec(st.stat, tick, d.Owner, d.Gold, d.OffmapGold, d.TotalArea, d.RoomArea, d.GoldMined,
			d.AreaClaimed, d.RoomsLost, d.RoomsClaimed) {
			return
		}
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

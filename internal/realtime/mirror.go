package realtime

import (
	"encoding/json"
	"sort"
	"sync"
	"time"
)

type rowKey struct {
	table string
	id    int64
}

type mirrorRow struct {
	at      time.Time
	deleted bool
	row     json.RawMessage
}

// Mirror keeps a local copy of rows built from change events. Each
// (table, row id) is last-write-wins by event time; events older than the
// stored version are ignored, deletes included.
type Mirror struct {
	mu   sync.RWMutex
	rows map[rowKey]mirrorRow
}

func NewMirror() *Mirror {
	return &Mirror{rows: make(map[rowKey]mirrorRow)}
}

// Apply merges ev and reports whether it changed the mirror.
func (m *Mirror) Apply(ev Event) bool {
	k := rowKey{ev.Table, ev.RowID}
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.rows[k]; ok && ev.At.Before(cur.at) {
		return false
	}
	m.rows[k] = mirrorRow{at: ev.At, deleted: ev.Op == OpDelete, row: ev.Row}
	return true
}

// Get returns the current row; deleted and unknown rows report false.
func (m *Mirror) Get(table string, id int64) (json.RawMessage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rows[rowKey{table, id}]
	if !ok || r.deleted {
		return nil, false
	}
	return r.row, true
}

// IDs lists the live row ids of a table in ascending order.
func (m *Mirror) IDs(table string) []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []int64
	for k, r := range m.rows {
		if k.table == table && !r.deleted {
			ids = append(ids, k.id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

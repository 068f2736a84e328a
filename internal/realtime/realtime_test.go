package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func (b *LocalBroker) listeners() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

func startHub(t *testing.T) (*Hub, *LocalBroker) {
	t.Helper()
	b := NewLocalBroker()
	h := NewHub(b, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = h.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	require.Eventually(t, func() bool { return b.listeners() == 1 }, time.Second, time.Millisecond)
	return h, b
}

func TestNewEvent(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	ev, err := NewEvent(TableCareLogs, OpInsert, 1, 7, map[string]string{"type": "3:morning"}, at)
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.JSONEq(t, `{"type":"3:morning"}`, string(ev.Row))

	del, err := NewEvent(TableCareLogs, OpDelete, 1, 7, map[string]string{"x": "y"}, at)
	require.NoError(t, err)
	assert.Nil(t, del.Row)
	assert.NotEqual(t, ev.ID, del.ID)
}

func TestHub_FansOutByHousehold(t *testing.T) {
	h, _ := startHub(t)
	mine := h.Subscribe(1)
	defer mine.Close()
	other := h.Subscribe(2)
	defer other.Close()

	ev, err := NewEvent(TableInventory, OpUpdate, 1, 4, nil, time.Now())
	require.NoError(t, err)
	require.NoError(t, h.Publish(context.Background(), ev))

	select {
	case got := <-mine.C:
		assert.Equal(t, ev.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	select {
	case got := <-other.C:
		t.Fatalf("unexpected event for other household: %+v", got)
	default:
	}
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h, _ := startHub(t)
	s := h.Subscribe(1)
	defer s.Close()

	for i := 0; i < subscriberBuffer+10; i++ {
		ev, err := NewEvent(TableCareLogs, OpInsert, 1, int64(i), nil, time.Now())
		require.NoError(t, err)
		require.NoError(t, h.Publish(context.Background(), ev))
	}
	assert.Len(t, s.C, subscriberBuffer)
}

func TestSubscription_CloseTwice(t *testing.T) {
	h := NewHub(NewLocalBroker(), zap.NewNop())
	s := h.Subscribe(5)
	assert.Equal(t, 1, h.Subscribers(5))
	s.Close()
	s.Close()
	assert.Equal(t, 0, h.Subscribers(5))
	_, open := <-s.C
	assert.False(t, open)
}

func TestMirror_LastWriteWins(t *testing.T) {
	m := NewMirror()
	t0 := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	row := func(v string) json.RawMessage { return json.RawMessage(`"` + v + `"`) }

	assert.True(t, m.Apply(Event{Table: TableInventory, Op: OpInsert, RowID: 1, At: t0, Row: row("a")}))
	assert.True(t, m.Apply(Event{Table: TableInventory, Op: OpUpdate, RowID: 1, At: t0.Add(time.Minute), Row: row("b")}))
	assert.False(t, m.Apply(Event{Table: TableInventory, Op: OpUpdate, RowID: 1, At: t0.Add(30 * time.Second), Row: row("stale")}))

	got, ok := m.Get(TableInventory, 1)
	require.True(t, ok)
	assert.Equal(t, `"b"`, string(got))

	assert.True(t, m.Apply(Event{Table: TableInventory, Op: OpDelete, RowID: 1, At: t0.Add(2 * time.Minute)}))
	assert.False(t, m.Apply(Event{Table: TableInventory, Op: OpUpdate, RowID: 1, At: t0.Add(time.Minute), Row: row("late")}))
	_, ok = m.Get(TableInventory, 1)
	assert.False(t, ok)
}

func TestMirror_IDsPerTable(t *testing.T) {
	m := NewMirror()
	now := time.Now()
	m.Apply(Event{Table: TableIncidents, Op: OpInsert, RowID: 3, At: now})
	m.Apply(Event{Table: TableIncidents, Op: OpInsert, RowID: 1, At: now})
	m.Apply(Event{Table: TableCareLogs, Op: OpInsert, RowID: 2, At: now})
	assert.Equal(t, []int64{1, 3}, m.IDs(TableIncidents))
}

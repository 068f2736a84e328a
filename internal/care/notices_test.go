package care

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "nekocare/internal/domain"
)

func noticeDefs() []dom.NoticeDef {
	return []dom.NoticeDef{
		{ID: 1, Title: "食欲", Category: dom.CategoryEating, InputType: dom.InputChoice, Enabled: true},
		{ID: 2, Title: "うんち", Category: dom.CategoryToilet, InputType: dom.InputChoice, Enabled: true},
		{ID: 3, Title: "元気", Category: dom.CategoryBehavior, InputType: dom.InputOKNotice, Enabled: true},
		{ID: 4, Title: "old", Category: dom.CategoryOther, Enabled: false},
		{ID: 5, Title: "体重", Kind: "measure", Category: dom.CategoryHealth, Enabled: true},
	}
}

func obs(id, catID int64, typ, value string, when time.Time) dom.Observation {
	return dom.Observation{ID: id, CatID: catID, Type: typ, Value: value, RecordedAt: when}
}

func TestChoices_CategoryDefaults(t *testing.T) {
	assert.Equal(t, []string{"完食", "半分", "少し", "なし"}, Choices(dom.NoticeDef{Category: dom.CategoryEating}))
	assert.Equal(t, []string{"普通", "ゆるい", "硬い", "なし"}, Choices(dom.NoticeDef{Category: dom.CategoryToilet, Title: "うんちの状態"}))
	assert.Equal(t, []string{"普通", "ゆるい", "硬い", "なし"}, Choices(dom.NoticeDef{Category: dom.CategoryToilet, Title: "便"}))
	assert.Equal(t, []string{"普通", "多め", "少なめ", "気になる"}, Choices(dom.NoticeDef{Category: dom.CategoryToilet, Title: "おしっこ"}))
	assert.Equal(t, []string{"普通", "多め", "気になる"}, Choices(dom.NoticeDef{Category: dom.CategoryBehavior}))
	assert.Equal(t, []string{"あり", "なし"}, Choices(dom.NoticeDef{Category: dom.CategoryHealth}))
	assert.Equal(t, []string{"a", "b"}, Choices(dom.NoticeDef{Category: dom.CategoryEating, Choices: []string{"a", "b"}}))
}

func TestIsAbnormal(t *testing.T) {
	def := dom.NoticeDef{ID: 1, Category: dom.CategoryEating}
	assert.False(t, IsAbnormal(def, NormalToken))
	assert.False(t, IsAbnormal(def, ""))
	assert.False(t, IsAbnormal(def, "  "))
	for _, v := range []string{"完食", "半分", "なし", "記録した", "x"} {
		assert.True(t, IsAbnormal(def, v), v)
	}

	custom := dom.NoticeDef{ID: 2, NormalValues: []string{"完食"}}
	assert.False(t, IsAbnormal(custom, "完食"))
	assert.True(t, IsAbnormal(custom, NormalToken))
}

func TestAcceptsValue(t *testing.T) {
	choice := dom.NoticeDef{Category: dom.CategoryEating, InputType: dom.InputChoice}
	assert.True(t, AcceptsValue(choice, "半分"))
	assert.True(t, AcceptsValue(choice, NormalToken))
	assert.False(t, AcceptsValue(choice, "たくさん"))
	assert.False(t, AcceptsValue(choice, ""))

	count := dom.NoticeDef{InputType: dom.InputCount}
	assert.True(t, AcceptsValue(count, "3"))
	assert.False(t, AcceptsValue(count, "three"))

	free := dom.NoticeDef{InputType: dom.InputOKNotice}
	assert.True(t, AcceptsValue(free, "なんでも"))
}

func TestResolveNotices(t *testing.T) {
	today := at(2024, 6, 2, 0, 0)
	observations := []dom.Observation{
		obs(1, 10, "1", "完食", at(2024, 6, 2, 8, 0)),
		obs(2, 10, "1", NormalToken, at(2024, 6, 2, 19, 0)),
		obs(3, 10, "2", "ゆるい", at(2024, 6, 2, 9, 0)),
		obs(4, 11, "3", NormalToken, at(2024, 6, 2, 9, 0)),
		// before today's reset
		obs(5, 10, "3", "気になる", at(2024, 6, 2, 3, 0)),
	}

	got := ResolveNotices(noticeDefs(), observations, 10, today, opts4())
	require.Len(t, got, 3)

	assert.True(t, got[0].Done)
	assert.Equal(t, NormalToken, got[0].Value, "latest observation wins")
	assert.Equal(t, int64(2), got[0].ObservationID)
	assert.False(t, got[0].Abnormal)

	assert.True(t, got[1].Done)
	assert.True(t, got[1].Abnormal)
	assert.Equal(t, []string{"普通", "ゆるい", "硬い", "なし"}, got[1].Choices)

	assert.False(t, got[2].Done, "other cat and previous business day are ignored")
	assert.False(t, got[2].Abnormal)
}

func TestResolveNotices_NoCat(t *testing.T) {
	assert.Nil(t, ResolveNotices(noticeDefs(), nil, 0, at(2024, 6, 2, 0, 0), opts4()))
}

func TestResolveNotices_Acknowledged(t *testing.T) {
	ackAt := at(2024, 6, 2, 10, 0)
	o := obs(1, 10, "2", "ゆるい", at(2024, 6, 2, 9, 0))
	o.AcknowledgedAt = &ackAt

	got := ResolveNotices(noticeDefs(), []dom.Observation{o}, 10, at(2024, 6, 2, 0, 0), opts4())
	require.Len(t, got, 3)
	assert.True(t, got[1].Abnormal)
	assert.True(t, got[1].Acknowledged)
}

func TestResolveNotices_OptimisticOverlay(t *testing.T) {
	today := at(2024, 6, 2, 0, 0)
	key := NoticeKey(10, 2)
	old := []dom.Observation{obs(1, 10, "2", NormalToken, at(2024, 6, 2, 8, 0))}
	pendingAt := at(2024, 6, 2, 12, 0)

	o := opts4()
	o.Overlay = Overlay{}.Begin(key, "ゆるい", pendingAt)

	got := ResolveNotices(noticeDefs(), old, 10, today, o)
	assert.Equal(t, "ゆるい", got[1].Value)
	assert.True(t, got[1].Abnormal)
	assert.True(t, got[1].Optimistic)

	// write failed: backend value shows again
	failed := o
	failed.Overlay = o.Overlay.Fail(key)
	got = ResolveNotices(noticeDefs(), old, 10, today, failed)
	assert.Equal(t, NormalToken, got[1].Value)
	assert.False(t, got[1].Abnormal)

	// backend confirmed: reconciliation clears the entry, confirmed value remains
	confirmed := append(old, obs(2, 10, "2", "ゆるい", pendingAt.Add(time.Second)))
	snap := Snapshot{Settings: dom.Settings{DayStartHour: 4}, Observations: confirmed}
	o.Overlay = Reconcile(o.Overlay, snap.Authority(pendingAt.Add(time.Minute)))
	assert.Empty(t, o.Overlay)
	got = ResolveNotices(noticeDefs(), confirmed, 10, today, o)
	assert.Equal(t, "ゆるい", got[1].Value)
	assert.False(t, got[1].Optimistic)
	assert.Equal(t, int64(2), got[1].ObservationID)
}

func TestResolveNotices_NewOptimisticValueClearsAcknowledgement(t *testing.T) {
	ackAt := at(2024, 6, 2, 10, 0)
	o := obs(1, 10, "2", "ゆるい", at(2024, 6, 2, 9, 0))
	o.AcknowledgedAt = &ackAt

	opt := opts4()
	opt.Overlay = Overlay{}.Begin(NoticeKey(10, 2), "硬い", at(2024, 6, 2, 11, 0))
	got := ResolveNotices(noticeDefs(), []dom.Observation{o}, 10, at(2024, 6, 2, 0, 0), opt)
	assert.False(t, got[1].Acknowledged)
	assert.True(t, got[1].Abnormal)
}

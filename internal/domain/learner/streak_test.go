package learner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC)
}

func TestStreakUpdate_FirstActivity(t *testing.T) {
	p := newTestProfile(t)
	tracker := NewStreakTracker(NewXPLedger(nil), nil)

	upd := tracker.Update(p, day(1))

	assert.Equal(t, 1, upd.Current)
	assert.Equal(t, 1, upd.Longest)
	assert.True(t, upd.Extended)
	assert.False(t, upd.Reset)
}

func TestStreakUpdate_SameDayIsIdempotent(t *testing.T) {
	p := newTestProfile(t)
	tracker := NewStreakTracker(NewXPLedger(nil), nil)

	tracker.Update(p, day(1))
	// Второй вызов в те же сутки, даже поздно вечером.
	late := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	upd := tracker.Update(p, late)

	assert.True(t, upd.AlreadyCounted)
	assert.Equal(t, 1, upd.Current)
	assert.Equal(t, 1, p.Streak.Current)
}

func TestStreakUpdate_ConsecutiveDaysExtend(t *testing.T) {
	p := newTestProfile(t)
	tracker := NewStreakTracker(NewXPLedger(nil), nil)

	// 23:59 и 00:01 следующего дня - два подряд идущих дня.
	tracker.Update(p, time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC))
	upd := tracker.Update(p, time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC))

	assert.True(t, upd.Extended)
	assert.Equal(t, 2, upd.Current)
	assert.Equal(t, 2, upd.Longest)
}

func TestStreakUpdate_MissedDayResetsToOne(t *testing.T) {
	p := newTestProfile(t)
	tracker := NewStreakTracker(NewXPLedger(nil), nil)

	tracker.Update(p, day(1))
	tracker.Update(p, day(2))
	upd := tracker.Update(p, day(4)) // день 3 пропущен

	assert.True(t, upd.Reset)
	assert.Equal(t, 1, upd.Current)
	assert.Equal(t, 2, upd.Longest, "лучшая серия сохраняется после сброса")
}

func TestStreakUpdate_MilestoneAtThreeDays(t *testing.T) {
	p := newTestProfile(t)
	n := &recordingNotifier{}
	tracker := NewStreakTracker(NewXPLedger(n), n)

	tracker.Update(p, day(1))
	tracker.Update(p, day(2))
	upd := tracker.Update(p, day(3))

	require.Len(t, upd.MilestonesHit, 1)
	assert.Equal(t, 3, upd.MilestonesHit[0].Days)
	assert.Equal(t, XP(50), upd.MilestonesHit[0].RewardXP)
	assert.Equal(t, XP(50), upd.MilestoneXP)
	assert.True(t, p.HasBadge(BadgeStreak3))
	assert.Equal(t, XP(50), p.XP.TotalXPEarned)
	assert.Equal(t, []int{3}, n.milestones)

	// Рубеж срабатывает один раз: сброс и повторный набор трёх дней
	// не выдаёт его заново.
	tracker.Update(p, day(5))
	tracker.Update(p, day(6))
	upd = tracker.Update(p, day(7))
	assert.Empty(t, upd.MilestonesHit)
}

func TestStreakUpdate_BadgeUsesInjectedClock(t *testing.T) {
	p := newTestProfile(t)
	tracker := NewStreakTracker(NewXPLedger(nil), nil)

	tracker.Update(p, day(1))
	tracker.Update(p, day(2))
	tracker.Update(p, day(3))

	require.Len(t, p.Badges, 1)
	assert.Equal(t, BadgeStreak3, p.Badges[0].ID)
	assert.Equal(t, day(3), p.Badges[0].AwardedAt,
		"значок датируется переданным временем, а не часами машины")
}

func TestStreakIsBroken(t *testing.T) {
	p := newTestProfile(t)
	tracker := NewStreakTracker(NewXPLedger(nil), nil)

	// Нет активности - ломать нечего.
	assert.False(t, tracker.IsBroken(p, day(10)))

	tracker.Update(p, day(1))
	assert.False(t, tracker.IsBroken(p, day(1)), "сегодня занимался")
	assert.False(t, tracker.IsBroken(p, day(2)), "вчерашняя активность ещё держит серию")
	assert.True(t, tracker.IsBroken(p, day(3)), "пропущен целый день")
}

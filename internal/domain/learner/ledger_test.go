package learner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProfile(t *testing.T) *Profile {
	t.Helper()
	p, err := NewProfile(NewProfileParams{UserID: "learner-1", DisplayName: "Ada"})
	require.NoError(t, err)
	return p
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	xpGained     []XP
	levelUps     []Level
	milestones   []int
	achievements []AchievementID
}

func (r *recordingNotifier) XPGained(_ LearnerID, amount XP, _ string) {
	r.xpGained = append(r.xpGained, amount)
}

func (r *recordingNotifier) LevelUp(_ LearnerID, newLevel Level) {
	r.levelUps = append(r.levelUps, newLevel)
}

func (r *recordingNotifier) StreakMilestone(_ LearnerID, days int, _ XP) {
	r.milestones = append(r.milestones, days)
}

func (r *recordingNotifier) AchievementUnlocked(_ LearnerID, id AchievementID, _ string, _ XP) {
	r.achievements = append(r.achievements, id)
}

func TestXPForLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  XP
	}{
		{1, 100},
		{2, 150},
		{3, 225},
		{4, 337},
		{5, 506},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, XPForLevel(tt.level), "level %d", tt.level)
	}

	// Уровни ниже первого приводятся к первому.
	assert.Equal(t, XP(100), XPForLevel(0))
}

func TestTotalXPForLevel(t *testing.T) {
	assert.Equal(t, XP(0), TotalXPForLevel(1))
	assert.Equal(t, XP(100), TotalXPForLevel(2))
	assert.Equal(t, XP(250), TotalXPForLevel(3))
	assert.Equal(t, XP(475), TotalXPForLevel(4))
}

func TestNewProfileStartsAtLevelOne(t *testing.T) {
	p := newTestProfile(t)

	assert.Equal(t, Level(1), p.Level)
	assert.Equal(t, XP(0), p.XP.CurrentXP)
	assert.Equal(t, XP(100), p.XP.XPToNextLevel)
}

func TestAward_LevelUpAtExactThreshold(t *testing.T) {
	p := newTestProfile(t)
	ledger := NewXPLedger(nil)

	gain := ledger.Award(p, 100, ReasonTopicCompleted)

	assert.True(t, gain.LeveledUp)
	assert.Equal(t, 1, gain.LevelsGained)
	assert.Equal(t, Level(2), p.Level)
	assert.Equal(t, XP(0), p.XP.CurrentXP)
	assert.Equal(t, XP(100), p.XP.TotalXPEarned)
	assert.Equal(t, XP(150), p.XP.XPToNextLevel)
}

func TestAward_StreakBonus(t *testing.T) {
	p := newTestProfile(t)
	p.Streak.Current = 5
	ledger := NewXPLedger(nil)

	gain := ledger.Award(p, 50, ReasonQuizCompleted)

	assert.Equal(t, XP(50), gain.BaseAmount)
	assert.Equal(t, XP(25), gain.BonusAmount)
	assert.Equal(t, XP(75), gain.FinalAmount)
	assert.InDelta(t, 1.5, gain.Multiplier, 1e-9)
}

func TestAward_StreakBonusCapped(t *testing.T) {
	p := newTestProfile(t)
	p.Streak.Current = 50 // ставка была бы 5.0, капится на 2.0
	ledger := NewXPLedger(nil)

	gain := ledger.Award(p, 100, ReasonTopicCompleted)

	assert.Equal(t, XP(300), gain.FinalAmount)
	assert.InDelta(t, 3.0, gain.Multiplier, 1e-9)
}

func TestAward_NegativeBaseClampedToZero(t *testing.T) {
	p := newTestProfile(t)
	n := &recordingNotifier{}
	ledger := NewXPLedger(n)

	gain := ledger.Award(p, -40, ReasonTopicCompleted)

	assert.Equal(t, XP(0), gain.FinalAmount)
	assert.False(t, gain.LeveledUp)
	assert.Equal(t, XP(0), p.XP.TotalXPEarned)
	assert.Empty(t, n.xpGained, "нулевое начисление не должно уведомлять")
}

func TestAward_MultiLevelJump(t *testing.T) {
	p := newTestProfile(t)
	n := &recordingNotifier{}
	ledger := NewXPLedger(n)

	// 250 XP закрывает первый (100) и второй (150) уровни подряд.
	gain := ledger.Award(p, 250, ReasonTopicCompleted)

	assert.Equal(t, 2, gain.LevelsGained)
	assert.Equal(t, Level(3), p.Level)
	assert.Equal(t, XP(0), p.XP.CurrentXP)
	assert.Equal(t, XP(225), p.XP.XPToNextLevel)
	assert.Equal(t, []Level{2, 3}, n.levelUps)
}

func TestAward_AccumulatesAcrossCalls(t *testing.T) {
	p := newTestProfile(t)
	ledger := NewXPLedger(nil)

	ledger.Award(p, 60, ReasonTopicCompleted)
	assert.Equal(t, Level(1), p.Level)
	assert.Equal(t, XP(40), p.XP.XPToNextLevel)

	ledger.Award(p, 60, ReasonTopicCompleted)
	assert.Equal(t, Level(2), p.Level)
	assert.Equal(t, XP(20), p.XP.CurrentXP)
	assert.Equal(t, XP(120), p.XP.TotalXPEarned)
	assert.Equal(t, XP(130), p.XP.XPToNextLevel)
}

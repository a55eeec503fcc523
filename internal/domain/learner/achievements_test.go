package learner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAchievementCheck_FirstTopicUnlocksFirstSteps(t *testing.T) {
	p := newTestProfile(t)
	n := &recordingNotifier{}
	eval := NewAchievementEvaluator(NewXPLedger(n), n)

	p.Stats.TopicsCompleted = 1
	unlocked := eval.Check(p, time.Now())

	require.Len(t, unlocked, 1)
	assert.Equal(t, AchievementFirstSteps, unlocked[0].ID)
	assert.True(t, p.HasAchievement(AchievementFirstSteps))
	assert.Equal(t, XP(50), p.XP.TotalXPEarned, "награда начислена через леджер")
	assert.Equal(t, []AchievementID{AchievementFirstSteps}, n.achievements)
}

func TestAchievementCheck_IsIdempotent(t *testing.T) {
	p := newTestProfile(t)
	eval := NewAchievementEvaluator(NewXPLedger(nil), nil)

	p.Stats.TopicsCompleted = 1
	first := eval.Check(p, time.Now())
	second := eval.Check(p, time.Now())

	assert.Len(t, first, 1)
	assert.Empty(t, second, "повторная проверка без изменений ничего не выдаёт")
	assert.Len(t, p.Achievements, 1)
}

func TestAchievementCheck_AllRequirementsMustHold(t *testing.T) {
	p := newTestProfile(t)
	eval := NewAchievementEvaluator(NewXPLedger(nil), nil)

	// quiz_master требует И средний балл 90+, И 5 завершённых тем.
	p.Stats.AverageQuizScore = 95
	p.Stats.TopicsCompleted = 4
	unlocked := eval.Check(p, time.Now())
	for _, a := range unlocked {
		assert.NotEqual(t, AchievementQuizMaster, a.ID)
	}

	p.Stats.TopicsCompleted = 5
	unlocked = eval.Check(p, time.Now())

	ids := make([]AchievementID, 0, len(unlocked))
	for _, a := range unlocked {
		ids = append(ids, a.ID)
	}
	assert.Contains(t, ids, AchievementQuizMaster)
}

func TestAchievementCheck_MultipleAtOnceInCatalogOrder(t *testing.T) {
	p := newTestProfile(t)
	eval := NewAchievementEvaluator(NewXPLedger(nil), nil)

	p.Stats.TopicsCompleted = 5
	p.Streak.Current = 7
	p.Streak.Longest = 7
	unlocked := eval.Check(p, time.Now())

	require.GreaterOrEqual(t, len(unlocked), 3)
	assert.Equal(t, AchievementFirstSteps, unlocked[0].ID)
	assert.Equal(t, AchievementGettingSerious, unlocked[1].ID)
	assert.Equal(t, AchievementWeekWarrior, unlocked[2].ID)
}

func TestAchievementProgress(t *testing.T) {
	p := newTestProfile(t)
	eval := NewAchievementEvaluator(NewXPLedger(nil), nil)

	p.Stats.TopicsCompleted = 3
	progress := eval.Progress(p)

	byID := make(map[AchievementID]AchievementProgress, len(progress))
	for _, ap := range progress {
		byID[ap.ID] = ap
	}

	assert.InDelta(t, 100, byID[AchievementFirstSteps].Percent, 1e-9)
	assert.InDelta(t, 60, byID[AchievementGettingSerious].Percent, 1e-9)
	assert.InDelta(t, 20, byID[AchievementDeepDiver].Percent, 1e-9)
	assert.False(t, byID[AchievementGettingSerious].Unlocked)

	// После выдачи прогресс фиксируется на 100%.
	eval.Check(p, time.Now())
	progress = eval.Progress(p)
	for _, ap := range progress {
		if ap.ID == AchievementFirstSteps {
			assert.True(t, ap.Unlocked)
			assert.InDelta(t, 100, ap.Percent, 1e-9)
		}
	}
}

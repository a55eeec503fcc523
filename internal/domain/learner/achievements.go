package learner

import (
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT CATALOG
// ══════════════════════════════════════════════════════════════════════════════

// AchievementID представляет идентификатор достижения.
type AchievementID string

const (
	// AchievementFirstSteps - первая завершённая тема.
	AchievementFirstSteps AchievementID = "first_steps"
	// AchievementGettingSerious - 5 завершённых тем.
	AchievementGettingSerious AchievementID = "getting_serious"
	// AchievementDeepDiver - 15 завершённых тем.
	AchievementDeepDiver AchievementID = "deep_diver"
	// AchievementWeekWarrior - серия 7 дней.
	AchievementWeekWarrior AchievementID = "week_warrior"
	// AchievementUnstoppable - серия 30 дней.
	AchievementUnstoppable AchievementID = "unstoppable"
	// AchievementQuizMaster - средний результат квизов не ниже 90 при 5+ темах.
	AchievementQuizMaster AchievementID = "quiz_master"
	// AchievementPerfectionist - 3 квиза со 100% результатом.
	AchievementPerfectionist AchievementID = "perfectionist"
	// AchievementMarathoner - 600 минут обучения.
	AchievementMarathoner AchievementID = "marathoner"
	// AchievementRisingStar - достиг 5 уровня.
	AchievementRisingStar AchievementID = "rising_star"
	// AchievementVeteran - достиг 10 уровня.
	AchievementVeteran AchievementID = "veteran"
)

// RequirementType определяет, по какому полю статистики проверяется требование.
type RequirementType string

const (
	// RequirementTopicsCompleted - количество завершённых тем.
	RequirementTopicsCompleted RequirementType = "topics_completed"
	// RequirementCurrentStreak - текущая серия дней.
	RequirementCurrentStreak RequirementType = "current_streak"
	// RequirementLongestStreak - лучшая серия дней.
	RequirementLongestStreak RequirementType = "longest_streak"
	// RequirementAverageQuizScore - средний результат квизов.
	RequirementAverageQuizScore RequirementType = "average_quiz_score"
	// RequirementTotalStudyMinutes - суммарное время обучения.
	RequirementTotalStudyMinutes RequirementType = "total_study_minutes"
	// RequirementPerfectQuizCount - количество идеальных квизов.
	RequirementPerfectQuizCount RequirementType = "perfect_quiz_count"
	// RequirementLevel - текущий уровень.
	RequirementLevel RequirementType = "level"
)

// Requirement - одно пороговое требование достижения.
// Требование выполнено, когда значение поля >= Threshold.
type Requirement struct {
	Type      RequirementType
	Threshold float64
}

// AchievementDefinition описывает достижение из каталога.
// Все требования должны быть выполнены одновременно (логическое И).
type AchievementDefinition struct {
	ID           AchievementID
	Name         string
	Description  string
	XPReward     XP
	Requirements []Requirement
}

// AchievementCatalog возвращает фиксированный каталог достижений
// в стабильном порядке. Порядок определяет порядок выдачи
// при одновременном выполнении нескольких достижений.
func AchievementCatalog() []AchievementDefinition {
	return []AchievementDefinition{
		{
			ID: AchievementFirstSteps, Name: "Первые шаги",
			Description: "Завершена первая тема", XPReward: 50,
			Requirements: []Requirement{{RequirementTopicsCompleted, 1}},
		},
		{
			ID: AchievementGettingSerious, Name: "Серьёзный настрой",
			Description: "Завершено 5 тем", XPReward: 150,
			Requirements: []Requirement{{RequirementTopicsCompleted, 5}},
		},
		{
			ID: AchievementDeepDiver, Name: "Глубокое погружение",
			Description: "Завершено 15 тем", XPReward: 400,
			Requirements: []Requirement{{RequirementTopicsCompleted, 15}},
		},
		{
			ID: AchievementWeekWarrior, Name: "Неделя огня",
			Description: "7 дней подряд", XPReward: 200,
			Requirements: []Requirement{{RequirementCurrentStreak, 7}},
		},
		{
			ID: AchievementUnstoppable, Name: "Неудержимый",
			Description: "30 дней подряд", XPReward: 1000,
			Requirements: []Requirement{{RequirementCurrentStreak, 30}},
		},
		{
			ID: AchievementQuizMaster, Name: "Мастер квизов",
			Description: "Средний результат 90%+ при 5 завершённых темах", XPReward: 300,
			Requirements: []Requirement{
				{RequirementAverageQuizScore, 90},
				{RequirementTopicsCompleted, 5},
			},
		},
		{
			ID: AchievementPerfectionist, Name: "Перфекционист",
			Description: "Три квиза на 100%", XPReward: 250,
			Requirements: []Requirement{{RequirementPerfectQuizCount, 3}},
		},
		{
			ID: AchievementMarathoner, Name: "Марафонец",
			Description: "600 минут обучения", XPReward: 350,
			Requirements: []Requirement{{RequirementTotalStudyMinutes, 600}},
		},
		{
			ID: AchievementRisingStar, Name: "Восходящая звезда",
			Description: "Достигнут 5 уровень", XPReward: 200,
			Requirements: []Requirement{{RequirementLevel, 5}},
		},
		{
			ID: AchievementVeteran, Name: "Ветеран",
			Description: "Достигнут 10 уровень", XPReward: 500,
			Requirements: []Requirement{{RequirementLevel, 10}},
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// EVALUATOR
// ══════════════════════════════════════════════════════════════════════════════

// AchievementProgress - информационный прогресс по одному достижению (0-100%).
type AchievementProgress struct {
	ID       AchievementID
	Name     string
	Unlocked bool
	Percent  float64
}

// AchievementEvaluator проверяет профиль против каталога достижений.
//
// Уже полученные достижения пропускаются: повторный вызов Check без
// изменений профиля ничего не выдаёт. Достижения никогда не отзываются.
type AchievementEvaluator struct {
	catalog  []AchievementDefinition
	ledger   *XPLedger
	notifier Notifier
}

// NewAchievementEvaluator создаёт эвалюатор со стандартным каталогом.
func NewAchievementEvaluator(ledger *XPLedger, notifier Notifier) *AchievementEvaluator {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &AchievementEvaluator{
		catalog:  AchievementCatalog(),
		ledger:   ledger,
		notifier: notifier,
	}
}

// Check проверяет все достижения каталога и выдаёт выполненные.
// Возвращает только новые достижения в порядке каталога.
// Выдача начисляет XPReward через леджер.
func (e *AchievementEvaluator) Check(p *Profile, now time.Time) []AchievementDefinition {
	var unlocked []AchievementDefinition

	for _, def := range e.catalog {
		if p.HasAchievement(def.ID) {
			continue
		}
		if !e.satisfied(p, def.Requirements) {
			continue
		}

		p.Achievements = append(p.Achievements, UnlockedAchievement{
			ID:         def.ID,
			UnlockedAt: now.UTC(),
		})
		unlocked = append(unlocked, def)

		if e.ledger != nil && def.XPReward > 0 {
			e.ledger.Award(p, def.XPReward, ReasonAchievement)
		}
		e.notifier.AchievementUnlocked(p.UserID, def.ID, def.Name, def.XPReward)
	}

	if len(unlocked) > 0 {
		p.Touch(now)
	}
	return unlocked
}

// Progress возвращает информационный прогресс по всем достижениям каталога.
// Процент - минимум по требованиям; выданное достижение всегда 100%.
func (e *AchievementEvaluator) Progress(p *Profile) []AchievementProgress {
	out := make([]AchievementProgress, 0, len(e.catalog))

	for _, def := range e.catalog {
		ap := AchievementProgress{ID: def.ID, Name: def.Name}

		if p.HasAchievement(def.ID) {
			ap.Unlocked = true
			ap.Percent = 100
			out = append(out, ap)
			continue
		}

		minPct := 100.0
		for _, req := range def.Requirements {
			pct := 100.0
			if req.Threshold > 0 {
				pct = e.value(p, req.Type) / req.Threshold * 100
			}
			if pct > 100 {
				pct = 100
			}
			if pct < minPct {
				minPct = pct
			}
		}
		ap.Percent = minPct
		out = append(out, ap)
	}

	return out
}

// satisfied проверяет, что все требования выполнены (логическое И).
func (e *AchievementEvaluator) satisfied(p *Profile, reqs []Requirement) bool {
	for _, req := range reqs {
		if e.value(p, req.Type) < req.Threshold {
			return false
		}
	}
	return true
}

// value извлекает значение поля профиля для типа требования.
func (e *AchievementEvaluator) value(p *Profile, t RequirementType) float64 {
	switch t {
	case RequirementTopicsCompleted:
		return float64(p.Stats.TopicsCompleted)
	case RequirementCurrentStreak:
		return float64(p.Streak.Current)
	case RequirementLongestStreak:
		return float64(p.Streak.Longest)
	case RequirementAverageQuizScore:
		return p.Stats.AverageQuizScore
	case RequirementTotalStudyMinutes:
		return float64(p.Stats.TotalStudyMinutes)
	case RequirementPerfectQuizCount:
		return float64(p.Stats.PerfectQuizCount)
	case RequirementLevel:
		return float64(p.Level)
	default:
		return 0
	}
}

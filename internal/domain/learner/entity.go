package learner

import (
	"errors"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// LearnerID представляет уникальный идентификатор ученика (UUID в строковом формате).
type LearnerID string

// IsValid проверяет, что идентификатор непустой.
func (id LearnerID) IsValid() bool {
	return strings.TrimSpace(string(id)) != ""
}

// String возвращает строковое представление идентификатора.
func (id LearnerID) String() string {
	return string(id)
}

// XP представляет очки опыта ученика.
type XP int

// IsValid проверяет, что XP неотрицательный.
func (x XP) IsValid() bool {
	return x >= 0
}

// Add складывает XP.
func (x XP) Add(delta XP) XP {
	return x + delta
}

// Level представляет уровень ученика. Минимальный уровень - 1.
type Level int

// IsValid проверяет, что уровень не меньше первого.
func (l Level) IsValid() bool {
	return l >= 1
}

// QuizScore представляет результат квиза в процентах (0-100).
type QuizScore float64

// IsValid проверяет, что результат в допустимом диапазоне.
func (q QuizScore) IsValid() bool {
	return q >= 0 && q <= 100
}

// IsPerfect возвращает true для идеального результата.
func (q QuizScore) IsPerfect() bool {
	return q >= 100
}

// ══════════════════════════════════════════════════════════════════════════════
// XP STATE
// ══════════════════════════════════════════════════════════════════════════════

// XPState содержит текущее состояние опыта ученика.
// Инвариант: после любого начисления CurrentXP < XPToNextLevel.
type XPState struct {
	// CurrentXP - XP, накопленный внутри текущего уровня.
	CurrentXP XP

	// TotalXPEarned - суммарный XP за всё время (никогда не уменьшается).
	TotalXPEarned XP

	// XPToNextLevel - сколько XP нужно набрать для перехода на следующий уровень.
	XPToNextLevel XP
}

// ══════════════════════════════════════════════════════════════════════════════
// STREAK
// ══════════════════════════════════════════════════════════════════════════════

// Milestone описывает рубеж серии активных дней.
type Milestone struct {
	// Days - длина серии, на которой рубеж срабатывает.
	Days int

	// RewardXP - бонусный XP за рубеж.
	RewardXP XP

	// BadgeID - значок, выдаваемый вместе с рубежом.
	BadgeID BadgeID

	// Achieved - рубеж уже пройден (повторно не срабатывает).
	Achieved bool
}

// Streak представляет серию активных дней ученика.
// Серия считается по календарным суткам UTC.
type Streak struct {
	// Current - текущая серия дней.
	Current int

	// Longest - лучшая серия за всё время. Инвариант: Longest >= Current.
	Longest int

	// LastActivityDate - дата последней активности (начало суток UTC).
	// Нулевое значение - активности ещё не было.
	LastActivityDate time.Time

	// Milestones - рубежи серии в порядке возрастания Days.
	Milestones []Milestone
}

// DefaultMilestones возвращает стандартный набор рубежей серии.
func DefaultMilestones() []Milestone {
	return []Milestone{
		{Days: 3, RewardXP: 50, BadgeID: BadgeStreak3},
		{Days: 7, RewardXP: 150, BadgeID: BadgeStreak7},
		{Days: 14, RewardXP: 350, BadgeID: BadgeStreak14},
		{Days: 30, RewardXP: 1000, BadgeID: BadgeStreak30},
		{Days: 100, RewardXP: 5000, BadgeID: BadgeStreak100},
	}
}

// IsActive возвращает true, если серия не пуста.
func (s *Streak) IsActive() bool {
	return s.Current > 0
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGES
// ══════════════════════════════════════════════════════════════════════════════

// BadgeID представляет идентификатор значка.
type BadgeID string

const (
	// BadgeStreak3 - серия 3 дня.
	BadgeStreak3 BadgeID = "streak_3"
	// BadgeStreak7 - серия 7 дней.
	BadgeStreak7 BadgeID = "streak_7"
	// BadgeStreak14 - серия 14 дней.
	BadgeStreak14 BadgeID = "streak_14"
	// BadgeStreak30 - серия 30 дней.
	BadgeStreak30 BadgeID = "streak_30"
	// BadgeStreak100 - серия 100 дней.
	BadgeStreak100 BadgeID = "streak_100"
)

// Badge представляет полученный значок.
type Badge struct {
	// ID - идентификатор значка.
	ID BadgeID

	// AwardedAt - когда получен.
	AwardedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// STATS
// ══════════════════════════════════════════════════════════════════════════════

// Stats содержит накопительную статистику ученика.
// По этим полям проверяются требования достижений.
type Stats struct {
	// TopicsCompleted - количество завершённых тем (учебных сессий).
	TopicsCompleted int

	// TotalStudyMinutes - суммарное время обучения в минутах.
	TotalStudyMinutes int

	// AverageQuizScore - средний результат квизов (0-100).
	AverageQuizScore float64

	// QuizCount - количество пройденных квизов (для пересчёта среднего).
	QuizCount int

	// PerfectQuizCount - количество квизов со 100% результатом.
	PerfectQuizCount int
}

// RecordQuiz пересчитывает средний результат с учётом нового квиза.
func (st *Stats) RecordQuiz(score QuizScore) {
	total := st.AverageQuizScore*float64(st.QuizCount) + float64(score)
	st.QuizCount++
	st.AverageQuizScore = total / float64(st.QuizCount)

	if score.IsPerfect() {
		st.PerfectQuizCount++
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// UNLOCKED ACHIEVEMENTS
// ══════════════════════════════════════════════════════════════════════════════

// UnlockedAchievement представляет полученное достижение.
// Достижения никогда не отзываются и не пересматриваются.
type UnlockedAchievement struct {
	// ID - идентификатор достижения из каталога.
	ID AchievementID

	// UnlockedAt - когда получено.
	UnlockedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidLearnerID - невалидный идентификатор ученика.
	ErrInvalidLearnerID = errors.New("invalid learner id: must be non-empty")

	// ErrInvalidDisplayName - невалидное отображаемое имя.
	ErrInvalidDisplayName = errors.New("invalid display name: must be 1-100 chars")

	// ErrInvalidXP - невалидное значение XP.
	ErrInvalidXP = errors.New("invalid xp: must be non-negative")

	// ErrInvalidLevel - невалидный уровень.
	ErrInvalidLevel = errors.New("invalid level: must be at least 1")

	// ErrLearnerNotFound - ученик не найден.
	ErrLearnerNotFound = errors.New("learner not found")

	// ErrLearnerAlreadyExists - ученик уже существует.
	ErrLearnerAlreadyExists = errors.New("learner already exists")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// Profile - центральная сущность прогресса, представляющая ученика DSAPath.
type Profile struct {
	// UserID - уникальный идентификатор ученика.
	UserID LearnerID

	// DisplayName - отображаемое имя.
	DisplayName string

	// Level - текущий уровень (начиная с 1).
	Level Level

	// XP - состояние опыта.
	XP XPState

	// Streak - серия активных дней.
	Streak Streak

	// Achievements - полученные достижения в порядке получения, без дублей.
	Achievements []UnlockedAchievement

	// Badges - полученные значки в порядке получения.
	Badges []Badge

	// Stats - накопительная статистика.
	Stats Stats

	// CreatedAt - время создания профиля.
	CreatedAt time.Time

	// UpdatedAt - время последнего изменения.
	UpdatedAt time.Time
}

// NewProfileParams содержит параметры для создания нового профиля.
type NewProfileParams struct {
	UserID      LearnerID
	DisplayName string
}

// NewProfile создаёт профиль нового ученика с валидацией полей.
// Новый ученик начинает с первого уровня и пустой серии.
func NewProfile(params NewProfileParams) (*Profile, error) {
	if !params.UserID.IsValid() {
		return nil, ErrInvalidLearnerID
	}

	displayName := strings.TrimSpace(params.DisplayName)
	if len(displayName) == 0 || len(displayName) > 100 {
		return nil, ErrInvalidDisplayName
	}

	now := time.Now().UTC()

	return &Profile{
		UserID:      params.UserID,
		DisplayName: displayName,
		Level:       1,
		XP: XPState{
			CurrentXP:     0,
			TotalXPEarned: 0,
			XPToNextLevel: XPForLevel(1),
		},
		Streak: Streak{
			Current:    0,
			Longest:    0,
			Milestones: DefaultMilestones(),
		},
		Achievements: nil,
		Badges:       nil,
		Stats:        Stats{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// HasAchievement проверяет, получено ли достижение.
func (p *Profile) HasAchievement(id AchievementID) bool {
	for _, a := range p.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

// HasBadge проверяет, получен ли значок.
func (p *Profile) HasBadge(id BadgeID) bool {
	for _, b := range p.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

// AwardBadge выдаёт значок. Повторная выдача - no-op.
func (p *Profile) AwardBadge(id BadgeID, at time.Time) bool {
	if p.HasBadge(id) {
		return false
	}
	p.Badges = append(p.Badges, Badge{ID: id, AwardedAt: at})
	p.Touch(at)
	return true
}

// RecordTopicCompletion обновляет статистику после завершения темы.
// quizScore == nil означает сессию без квиза.
func (p *Profile) RecordTopicCompletion(durationMinutes int, quizScore *QuizScore, at time.Time) {
	p.Stats.TopicsCompleted++
	p.Stats.TotalStudyMinutes += durationMinutes

	if quizScore != nil {
		p.Stats.RecordQuiz(*quizScore)
	}
	p.Touch(at)
}

// Touch обновляет время последнего изменения.
func (p *Profile) Touch(at time.Time) {
	p.UpdatedAt = at.UTC()
}

// Validate проверяет инварианты профиля. Используется при загрузке
// из хранилища, чтобы повреждённые данные не попали в домен.
func (p *Profile) Validate() error {
	if !p.UserID.IsValid() {
		return ErrInvalidLearnerID
	}
	if !p.Level.IsValid() {
		return ErrInvalidLevel
	}
	if !p.XP.CurrentXP.IsValid() || !p.XP.TotalXPEarned.IsValid() {
		return ErrInvalidXP
	}
	if p.Streak.Longest < p.Streak.Current {
		return errors.New("invalid streak: longest is less than current")
	}
	return nil
}

// Clone возвращает глубокую копию профиля. Нужен хранилищу в памяти
// и командному слою, чтобы мутации не утекали между вызовами.
func (p *Profile) Clone() *Profile {
	cp := *p

	cp.Streak.Milestones = make([]Milestone, len(p.Streak.Milestones))
	copy(cp.Streak.Milestones, p.Streak.Milestones)

	cp.Achievements = make([]UnlockedAchievement, len(p.Achievements))
	copy(cp.Achievements, p.Achievements)

	cp.Badges = make([]Badge, len(p.Badges))
	copy(cp.Badges, p.Badges)

	return &cp
}

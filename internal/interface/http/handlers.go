package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dsapath/dsapath-progress-core/internal/application/command"
	"github.com/dsapath/dsapath-progress-core/internal/application/query"
	"github.com/dsapath/dsapath-progress-core/internal/domain/catalog"
	"github.com/dsapath/dsapath-progress-core/internal/domain/insight"
	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
	"github.com/dsapath/dsapath-progress-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// mapError translates domain and application errors to HTTP responses.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case shared.IsValidation(err):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, learner.ErrLearnerNotFound):
		writeError(w, http.StatusNotFound, "learner_not_found", "Learner profile not found")
	case errors.Is(err, catalog.ErrTopicNotFound) || shared.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsStorage(err):
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "Storage is temporarily unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSIONS
// ══════════════════════════════════════════════════════════════════════════════

// recordSessionRequest is the POST /api/v1/sessions body.
type recordSessionRequest struct {
	LearnerID          string    `json:"learner_id"`
	TopicID            string    `json:"topic_id"`
	DurationMinutes    int       `json:"duration_minutes"`
	QuizScore          *float64  `json:"quiz_score,omitempty"`
	Activities         []string  `json:"activities,omitempty"`
	StartedAt          time.Time `json:"started_at,omitempty"`
	ConceptsUnderstood []string  `json:"concepts_understood,omitempty"`
	StruggledConcepts  []string  `json:"struggled_concepts,omitempty"`
}

// recordSessionResponse is the combined outcome returned to the client.
type recordSessionResponse struct {
	SessionID            string            `json:"session_id"`
	XPGained             int               `json:"xp_gained"`
	XPBonus              int               `json:"xp_bonus"`
	TotalXPGained        int               `json:"total_xp_gained"`
	LeveledUp            bool              `json:"leveled_up"`
	NewLevel             int               `json:"new_level"`
	StreakDay            int               `json:"streak_day"`
	StreakExtended       bool              `json:"streak_extended"`
	AchievementsUnlocked []achievementDTO  `json:"achievements_unlocked"`
	RecommendedTopics    []string          `json:"recommended_topics"`
	Skills               *skillAnalysisDTO `json:"skills,omitempty"`
}

type achievementDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	XPReward    int    `json:"xp_reward"`
}

func (s *Server) handleRecordSession(w http.ResponseWriter, r *http.Request) {
	var req recordSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return
	}

	cmd := command.RecordCompletionCommand{
		LearnerID:          req.LearnerID,
		TopicID:            req.TopicID,
		DurationMinutes:    req.DurationMinutes,
		QuizScore:          req.QuizScore,
		Activities:         req.Activities,
		StartedAt:          req.StartedAt,
		ConceptsUnderstood: req.ConceptsUnderstood,
		StruggledConcepts:  req.StruggledConcepts,
		CorrelationID:      requestIDFrom(r.Context()),
	}

	result, err := s.deps.RecordCompletion.Handle(r.Context(), cmd)
	if err != nil {
		mapError(w, err)
		return
	}

	resp := recordSessionResponse{
		SessionID:            result.SessionID,
		XPGained:             int(result.XPGained.FinalAmount),
		XPBonus:              int(result.XPGained.BonusAmount),
		TotalXPGained:        int(result.TotalXPGained),
		LeveledUp:            result.LeveledUp,
		NewLevel:             int(result.NewLevel),
		StreakDay:            result.StreakDay,
		StreakExtended:       result.StreakExtended,
		AchievementsUnlocked: make([]achievementDTO, 0, len(result.AchievementsUnlocked)),
		RecommendedTopics:    topicIDs(result.RecommendedTopics),
		Skills:               skillAnalysisToDTO(result.Analysis),
	}
	for _, a := range result.AchievementsUnlocked {
		resp.AchievementsUnlocked = append(resp.AchievementsUnlocked, achievementDTO{
			ID:          string(a.ID),
			Name:        a.Name,
			Description: a.Description,
			XPReward:    int(a.XPReward),
		})
	}

	writeJSON(w, http.StatusCreated, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

type progressResponse struct {
	LearnerID     string `json:"learner_id"`
	DisplayName   string `json:"display_name"`
	Level         int    `json:"level"`
	CurrentXP     int    `json:"current_xp"`
	TotalXPEarned int    `json:"total_xp_earned"`
	XPToNextLevel int    `json:"xp_to_next_level"`

	StreakCurrent      int        `json:"streak_current"`
	StreakLongest      int        `json:"streak_longest"`
	StreakLastActivity *time.Time `json:"streak_last_activity,omitempty"`

	TopicsCompleted   int     `json:"topics_completed"`
	TotalStudyMinutes int     `json:"total_study_minutes"`
	AverageQuizScore  float64 `json:"average_quiz_score"`
	PerfectQuizzes    int     `json:"perfect_quizzes"`
	TotalSessions     int     `json:"total_sessions"`

	Badges       []badgeDTO               `json:"badges"`
	Achievements []achievementProgressDTO `json:"achievements"`
	Today        dailySnapshotDTO         `json:"today"`
}

type badgeDTO struct {
	ID        string    `json:"id"`
	AwardedAt time.Time `json:"awarded_at"`
}

type achievementProgressDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Unlocked bool    `json:"unlocked"`
	Percent  float64 `json:"percent"`
}

type dailySnapshotDTO struct {
	Date         time.Time `json:"date"`
	Sessions     int       `json:"sessions"`
	StudyMinutes int       `json:"study_minutes"`
	Topics       []string  `json:"topics"`
	Quizzes      int       `json:"quizzes"`
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.GetProgress.Handle(r.Context(), query.GetProgressQuery{
		LearnerID: r.PathValue("id"),
	})
	if err != nil {
		mapError(w, err)
		return
	}

	resp := progressResponse{
		LearnerID:         view.LearnerID,
		DisplayName:       view.DisplayName,
		Level:             int(view.Level),
		CurrentXP:         int(view.CurrentXP),
		TotalXPEarned:     int(view.TotalXPEarned),
		XPToNextLevel:     int(view.XPToNextLevel),
		StreakCurrent:     view.StreakCurrent,
		StreakLongest:     view.StreakLongest,
		TopicsCompleted:   view.Stats.TopicsCompleted,
		TotalStudyMinutes: view.Stats.TotalStudyMinutes,
		AverageQuizScore:  view.Stats.AverageQuizScore,
		PerfectQuizzes:    view.Stats.PerfectQuizCount,
		TotalSessions:     view.TotalSessions,
		Badges:            make([]badgeDTO, 0, len(view.Badges)),
		Achievements:      make([]achievementProgressDTO, 0, len(view.Achievements)),
		Today: dailySnapshotDTO{
			Date:         view.Today.Date,
			Sessions:     view.Today.SessionsToday,
			StudyMinutes: view.Today.StudyMinutesToday,
			Topics:       view.Today.TopicsToday,
			Quizzes:      view.Today.QuizzesToday,
		},
	}
	if !view.StreakLastActivity.IsZero() {
		t := view.StreakLastActivity
		resp.StreakLastActivity = &t
	}
	for _, b := range view.Badges {
		resp.Badges = append(resp.Badges, badgeDTO{
			ID:        string(b.ID),
			AwardedAt: b.AwardedAt,
		})
	}
	for _, a := range view.Achievements {
		resp.Achievements = append(resp.Achievements, achievementProgressDTO{
			ID:       string(a.ID),
			Name:     a.Name,
			Unlocked: a.Unlocked,
			Percent:  a.Percent,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMENDATIONS
// ══════════════════════════════════════════════════════════════════════════════

type skillAnalysisDTO struct {
	Skills     map[string]float64 `json:"skills"`
	Overall    float64            `json:"overall"`
	AnalyzedAt time.Time          `json:"analyzed_at"`
}

type recommendationsResponse struct {
	LearnerID            string            `json:"learner_id"`
	WeakAreas            []string          `json:"weak_areas"`
	StrongAreas          []string          `json:"strong_areas"`
	DifficultyAdjustment string            `json:"difficulty_adjustment"`
	RecommendedTopics    []string          `json:"recommended_topics"`
	Skills               *skillAnalysisDTO `json:"skills"`
}

func skillAnalysisToDTO(a *insight.SkillAnalysis) *skillAnalysisDTO {
	if a == nil {
		return nil
	}
	skills := make(map[string]float64, len(a.Skills))
	for cat, v := range a.Skills {
		skills[string(cat)] = v
	}
	return &skillAnalysisDTO{
		Skills:     skills,
		Overall:    a.Overall,
		AnalyzedAt: a.AnalyzedAt,
	}
}

func topicIDs(ids []catalog.TopicID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

func categories(cats []catalog.Category) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, string(c))
	}
	return out
}

func (s *Server) handleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	insights, err := s.deps.GetRecommendations.Handle(r.Context(), query.GetRecommendationsQuery{
		LearnerID: r.PathValue("id"),
	})
	if err != nil {
		mapError(w, err)
		return
	}

	resp := recommendationsResponse{
		LearnerID: r.PathValue("id"),
		Skills:    skillAnalysisToDTO(insights.Analysis),
	}
	if path := insights.Path; path != nil {
		resp.WeakAreas = categories(path.WeakAreas)
		resp.StrongAreas = categories(path.StrongAreas)
		resp.DifficultyAdjustment = string(path.DifficultyAdjustment)
		resp.RecommendedTopics = topicIDs(path.RecommendedTopics)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDY BRIEF
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleGetStudyBrief(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetStudyBrief == nil {
		writeError(w, http.StatusNotFound, "not_found", "Study briefs are not enabled")
		return
	}

	brief, err := s.deps.GetStudyBrief.Handle(r.Context(), query.GetStudyBriefQuery{
		LearnerID: r.PathValue("id"),
		TopicID:   r.URL.Query().Get("topic"),
	})
	if err != nil {
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, brief)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD
// ══════════════════════════════════════════════════════════════════════════════

type leaderboardEntryDTO struct {
	Rank        int    `json:"rank"`
	LearnerID   string `json:"learner_id"`
	DisplayName string `json:"display_name"`
	TotalXP     int    `json:"total_xp"`
}

type leaderboardResponse struct {
	Entries       []leaderboardEntryDTO `json:"entries"`
	RequesterRank int                   `json:"requester_rank,omitempty"`
}

func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetLeaderboard.Handle(r.Context(), query.GetLeaderboardQuery{
		Limit:     queryParamInt(r, "limit", 10),
		LearnerID: r.URL.Query().Get("learner_id"),
	})
	if err != nil {
		mapError(w, err)
		return
	}

	resp := leaderboardResponse{
		Entries:       make([]leaderboardEntryDTO, 0, len(result.Entries)),
		RequesterRank: result.RequesterRank,
	}
	for _, e := range result.Entries {
		resp.Entries = append(resp.Entries, leaderboardEntryDTO{
			Rank:        e.Rank,
			LearnerID:   e.LearnerID,
			DisplayName: e.DisplayName,
			TotalXP:     e.TotalXP,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not_found", "Unknown endpoint")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "dsapath-progress-core",
		"status":  "ok",
	})
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	for name, checker := range s.deps.HealthChecks {
		if err := checker.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "not_ready", name+" is unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(s.deps.HealthChecks))
	healthy := true
	for name, checker := range s.deps.HealthChecks {
		if err := checker.Ping(r.Context()); err != nil {
			checks[name] = "down"
			healthy = false
			continue
		}
		checks[name] = "up"
	}

	status := http.StatusOK
	overall := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	writeJSON(w, status, map[string]any{
		"status": overall,
		"uptime": s.Uptime().String(),
		"checks": checks,
	})
}

package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles with optional gradual rollout.
// Rollout assignment is stable per learner: the same learner always
// falls on the same side of the percentage.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	// learnerOverrides pins a flag for specific learners, for debugging.
	learnerOverrides map[string]map[string]bool
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// RolloutPercent (0-100); learners are assigned by ID hash.
	RolloutPercent int
}

// Predefined feature flag names.
const (
	// Gamification
	FeatureStreaks      = "gamification.streaks"
	FeatureAchievements = "gamification.achievements"
	FeatureStreakBonus  = "gamification.streak_bonus"

	// Insights
	FeatureRecommendations = "insights.recommendations"
	FeatureInsightCache    = "insights.cache"

	// Leaderboard
	FeatureLeaderboard = "leaderboard.enabled"

	// Notifications
	FeatureNotifications = "notify.enabled"

	// Content
	FeatureStudyBriefs = "content.study_briefs"
)

var defaultFeatures = []Feature{
	{Name: FeatureStreaks, Description: "Daily streak tracking and milestones", Enabled: true, RolloutPercent: 100},
	{Name: FeatureAchievements, Description: "Achievement unlocks and XP rewards", Enabled: true, RolloutPercent: 100},
	{Name: FeatureStreakBonus, Description: "Streak-based XP multiplier", Enabled: true, RolloutPercent: 100},
	{Name: FeatureRecommendations, Description: "Skill analysis and learning path", Enabled: true, RolloutPercent: 100},
	{Name: FeatureInsightCache, Description: "Redis caching of skill analyses", Enabled: true, RolloutPercent: 100},
	{Name: FeatureLeaderboard, Description: "XP leaderboard", Enabled: true, RolloutPercent: 100},
	{Name: FeatureNotifications, Description: "Progress notifications", Enabled: true, RolloutPercent: 100},
	{Name: FeatureStudyBriefs, Description: "Generated study briefs for recommended topics", Enabled: false, RolloutPercent: 0},
}

// LoadFeatureFlags loads feature flags from environment variables.
// FEATURE_<NAME>=false disables a flag, FEATURE_<NAME>_ROLLOUT=50
// limits it to half the learners. Dots become underscores.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:         make(map[string]*Feature),
		learnerOverrides: make(map[string]map[string]bool),
	}

	for _, def := range defaultFeatures {
		f := def
		envKey := "FEATURE_" + strings.ToUpper(strings.ReplaceAll(f.Name, ".", "_"))

		if val := os.Getenv(envKey); val != "" {
			if enabled, err := strconv.ParseBool(val); err == nil {
				f.Enabled = enabled
			}
		}
		if val := os.Getenv(envKey + "_ROLLOUT"); val != "" {
			if pct, err := strconv.Atoi(val); err == nil && pct >= 0 && pct <= 100 {
				f.RolloutPercent = pct
			}
		}

		ff.features[f.Name] = &f
	}

	return ff
}

// IsEnabled reports whether a flag is globally on.
func (ff *FeatureFlags) IsEnabled(name string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	f, ok := ff.features[name]
	return ok && f.Enabled
}

// IsEnabledFor reports whether a flag is on for a specific learner,
// honoring overrides and the rollout percentage.
func (ff *FeatureFlags) IsEnabledFor(name, learnerID string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	if overrides, ok := ff.learnerOverrides[learnerID]; ok {
		if enabled, ok := overrides[name]; ok {
			return enabled
		}
	}

	f, ok := ff.features[name]
	if !ok || !f.Enabled {
		return false
	}
	if f.RolloutPercent >= 100 {
		return true
	}
	if f.RolloutPercent <= 0 {
		return false
	}

	return rolloutBucket(name, learnerID) < f.RolloutPercent
}

// SetOverride pins a flag for one learner.
func (ff *FeatureFlags) SetOverride(learnerID, name string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if ff.learnerOverrides[learnerID] == nil {
		ff.learnerOverrides[learnerID] = make(map[string]bool)
	}
	ff.learnerOverrides[learnerID][name] = enabled
}

// ClearOverrides removes all overrides for one learner.
func (ff *FeatureFlags) ClearOverrides(learnerID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.learnerOverrides, learnerID)
}

// All returns a copy of all flags, for diagnostics.
func (ff *FeatureFlags) All() []Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	out := make([]Feature, 0, len(ff.features))
	for _, f := range ff.features {
		out = append(out, *f)
	}
	return out
}

// rolloutBucket maps (flag, learner) to a stable bucket in [0, 100).
func rolloutBucket(name, learnerID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte(":"))
	_, _ = h.Write([]byte(learnerID))
	return int(h.Sum32() % 100)
}

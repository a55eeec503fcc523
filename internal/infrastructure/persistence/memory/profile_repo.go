// Package memory provides in-memory repository implementations.
// Used by tests and by the server when it runs without a database
// (storage driver "memory").
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
)

// ProfileRepository is a thread-safe in-memory learner.Repository.
type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[learner.LearnerID]*learner.Profile
}

// NewProfileRepository creates an empty in-memory profile repository.
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{
		profiles: make(map[learner.LearnerID]*learner.Profile),
	}
}

var _ learner.Repository = (*ProfileRepository)(nil)

// Create stores a new profile.
func (r *ProfileRepository) Create(_ context.Context, p *learner.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[p.UserID]; exists {
		return learner.ErrLearnerAlreadyExists
	}
	r.profiles[p.UserID] = p.Clone()
	return nil
}

// GetByID returns a copy of the stored profile.
func (r *ProfileRepository) GetByID(_ context.Context, id learner.LearnerID) (*learner.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, learner.ErrLearnerNotFound
	}
	return p.Clone(), nil
}

// Update replaces the stored profile.
func (r *ProfileRepository) Update(_ context.Context, p *learner.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[p.UserID]; !ok {
		return learner.ErrLearnerNotFound
	}
	r.profiles[p.UserID] = p.Clone()
	return nil
}

// GetAll returns profiles ordered by creation time.
func (r *ProfileRepository) GetAll(_ context.Context, opts learner.ListOptions) ([]*learner.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts = opts.Normalize()

	all := make([]*learner.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].UserID < all[j].UserID
	})

	if opts.Offset >= len(all) {
		return nil, nil
	}
	end := opts.Offset + opts.Limit
	if end > len(all) {
		end = len(all)
	}

	out := make([]*learner.Profile, 0, end-opts.Offset)
	for _, p := range all[opts.Offset:end] {
		out = append(out, p.Clone())
	}
	return out, nil
}

// Count returns the number of stored profiles.
func (r *ProfileRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles), nil
}

// Exists checks profile existence.
func (r *ProfileRepository) Exists(_ context.Context, id learner.LearnerID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.profiles[id]
	return ok, nil
}

// FindWithActiveStreak returns profiles with a non-empty streak whose last
// activity predates the cutoff.
func (r *ProfileRepository) FindWithActiveStreak(_ context.Context, lastActiveBefore time.Time) ([]*learner.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*learner.Profile
	for _, p := range r.profiles {
		if p.Streak.Current > 0 && !p.Streak.LastActivityDate.IsZero() &&
			p.Streak.LastActivityDate.Before(lastActiveBefore) {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

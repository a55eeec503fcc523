package command

import (
	"hash/fnv"
	"sync"

	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
)

// learnerLocks serializes writes per learner. All read-modify-write
// sequences over one profile must run under that learner's lock.
// Striping keeps memory bounded: two learners may share a stripe,
// which costs contention but never correctness.
type learnerLocks struct {
	stripes []sync.Mutex
}

const defaultLockStripes = 256

// newLearnerLocks creates a striped lock set. Stripe count is rounded
// up to a power of two for cheap masking.
func newLearnerLocks(stripes int) *learnerLocks {
	if stripes <= 0 {
		stripes = defaultLockStripes
	}
	n := 1
	for n < stripes {
		n <<= 1
	}
	return &learnerLocks{stripes: make([]sync.Mutex, n)}
}

// Lock acquires the stripe for the learner and returns the unlock func.
func (l *learnerLocks) Lock(id learner.LearnerID) func() {
	m := &l.stripes[l.stripeFor(id)]
	m.Lock()
	return m.Unlock
}

func (l *learnerLocks) stripeFor(id learner.LearnerID) int {
	h := fnv.New32a()
	h.Write([]byte(id))
	return int(h.Sum32()) & (len(l.stripes) - 1)
}

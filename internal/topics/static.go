package topics

import (
	"fmt"
	"math/rand/v2"
)

// Static picks topics from a fixed list.
type Static struct {
	topics []string
	rng    *rand.Rand
}

// NewStatic creates a selector over topics. A nil rng uses a randomly seeded source.
func NewStatic(topics []string, rng *rand.Rand) *Static {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Static{topics: append([]string(nil), topics...), rng: rng}
}

// Select returns k distinct topics chosen uniformly at random without replacement.
func (s *Static) Select(k int) ([]string, error) {
	if k <= 0 {
		return nil, fmt.Errorf("topic count must be positive, got %d", k)
	}
	if k > len(s.topics) {
		return nil, fmt.Errorf("cannot select %d topics from %d", k, len(s.topics))
	}

	perm := s.rng.Perm(len(s.topics))
	out := make([]string, 0, k)
	for _, idx := range perm[:k] {
		out = append(out, s.topics[idx])
	}
	return out, nil
}

package infra

import (
	"context"
	"sync"

	"enlistment-gateway/enlistment/domain"
)

type Counters struct {
	Enlisted  int64
	Cancelled int64
	Rejected  int64
}

func (c *Counters) add(o domain.Outcome) {
	switch o {
	case domain.OutcomeEnlisted:
		c.Enlisted++
	case domain.OutcomeCancelled:
		c.Cancelled++
	default:
		c.Rejected++
	}
}

// MemoryStatsStore guarda contadores em memória.
// Útil para testes, para o cmd/enlist-race e para rodar sem Redis.
//
// Não faz expiração.
type MemoryStatsStore struct {
	mu        sync.Mutex
	total     Counters
	bySection map[string]Counters
	byOutcome map[domain.Outcome]int64
	byStudent map[int]Counters
	// sectionOutcomes espelha o hash <prefix>:section:<id> do RedisStatsStore
	sectionOutcomes map[string]map[domain.Outcome]int64

	trackStudents bool
}

var (
	_ domain.StatsStore  = (*MemoryStatsStore)(nil)
	_ domain.StatsReader = (*MemoryStatsStore)(nil)
)

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackStudents(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackStudents = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		bySection: make(map[string]Counters),
		byOutcome: make(map[domain.Outcome]int64),
		byStudent: make(map[int]Counters),

		sectionOutcomes: make(map[string]map[domain.Outcome]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Outcome)
	s.byOutcome[ev.Outcome]++

	c := s.bySection[ev.SectionID]
	c.add(ev.Outcome)
	s.bySection[ev.SectionID] = c

	so, ok := s.sectionOutcomes[ev.SectionID]
	if !ok {
		so = make(map[domain.Outcome]int64)
		s.sectionOutcomes[ev.SectionID] = so
	}
	so[ev.Outcome]++

	if s.trackStudents {
		k := s.byStudent[ev.StudentID]
		k.add(ev.Outcome)
		s.byStudent[ev.StudentID] = k
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) BySection() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.bySection))
	for k, v := range s.bySection {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByOutcome() map[domain.Outcome]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.Outcome]int64, len(s.byOutcome))
	for k, v := range s.byOutcome {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByStudent() map[int]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]Counters, len(s.byStudent))
	for k, v := range s.byStudent {
		out[k] = v
	}
	return out
}

// SectionCounts implementa domain.StatsReader.
func (s *MemoryStatsStore) SectionCounts(_ context.Context, sectionID string) (map[domain.Outcome]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.Outcome]int64, len(s.sectionOutcomes[sectionID]))
	for k, v := range s.sectionOutcomes[sectionID] {
		out[k] = v
	}
	return out, nil
}

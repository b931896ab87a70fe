package infra

import (
	"context"
	"sync"
	"time"

	"enlistment-gateway/enlistment/domain"

	"golang.org/x/time/rate"
)

// Store guarda um token bucket (x/time/rate) por chave de throttle.
//
// A taxa de cada bucket vem da classe da chave (domain.Key.Class): tentativas
// de um aluno ("student:<id>") e registros anônimos ("ip:<host>") podem ter
// limites diferentes. Classe sem taxa própria usa a padrão. Buckets sem uso
// por idleTTL são descartados pelo janitor.
type Store struct {
	mu      sync.Mutex
	buckets map[domain.Key]*bucket

	def     classRate
	classes map[string]classRate

	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type classRate struct {
	limit rate.Limit
	burst int
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

var _ domain.LimiterStore = (*Store)(nil)

type StoreOption func(*Store)

func WithIdleTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

// WithClassRate define a taxa das chaves da classe (ex: "ip").
func WithClassRate(class string, rps float64, burst int) StoreOption {
	return func(s *Store) {
		s.classes[class] = classRate{limit: rate.Limit(rps), burst: burst}
	}
}

// NewStore cria o store com a taxa padrão rps/burst.
func NewStore(rps float64, burst int, opts ...StoreOption) *Store {
	s := &Store{
		buckets:      make(map[domain.Key]*bucket),
		def:          classRate{limit: rate.Limit(rps), burst: burst},
		classes:      make(map[string]classRate),
		idleTTL:      30 * time.Minute,
		cleanupEvery: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RateFor retorna rps e burst aplicados à chave.
func (s *Store) RateFor(key domain.Key) (float64, int) {
	r := s.rateFor(key)
	return float64(r.limit), r.burst
}

func (s *Store) rateFor(key domain.Key) classRate {
	if r, ok := s.classes[key.Class()]; ok {
		return r
	}
	return s.def
}

// Get implementa domain.LimiterStore.
func (s *Store) Get(key domain.Key) domain.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		r := s.rateFor(key)
		b = &bucket{lim: rate.NewLimiter(r.limit, r.burst)}
		s.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// Cleanup descarta buckets parados há mais de idleTTL. Um aluno que volta
// depois disso recomeça com o burst cheio.
func (s *Store) Cleanup() {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, b := range s.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(s.buckets, k)
		}
	}
}

// StartJanitor roda Cleanup a cada cleanupEvery até o ctx encerrar.
func (s *Store) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

package infra

import (
	"context"
	"sync"

	"enlistment-gateway/enlistment/domain"
)

// SectionGate é um domain.AdmissionGate com um semáforo (channel) por turma.
//
// O semáforo de uma turma nasce na primeira tentativa sobre ela. Quem chama
// passa só IDs já resolvidos no catálogo, então o mapa fica limitado ao
// número de turmas.
type SectionGate struct {
	mu     sync.Mutex
	limit  int
	queues map[string]chan struct{}
}

var _ domain.AdmissionGate = (*SectionGate)(nil)

// NewSectionGate cria o gate com até limit tentativas simultâneas por turma.
// limit <= 0 desliga o gate.
func NewSectionGate(limit int) *SectionGate {
	return &SectionGate{limit: limit, queues: make(map[string]chan struct{})}
}

func (g *SectionGate) Limit() int { return g.limit }

func (g *SectionGate) Enter(ctx context.Context, sectionID string) (func(), bool) {
	if g == nil || g.limit <= 0 {
		return func() {}, true
	}
	q := g.queue(sectionID)

	// vaga livre entra mesmo com ctx já encerrado
	select {
	case q <- struct{}{}:
	default:
		select {
		case q <- struct{}{}:
		case <-ctx.Done():
			return nil, false
		}
	}

	var once sync.Once
	return func() { once.Do(func() { <-q }) }, true
}

func (g *SectionGate) queue(sectionID string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	q, ok := g.queues[sectionID]
	if !ok {
		q = make(chan struct{}, g.limit)
		g.queues[sectionID] = q
	}
	return q
}

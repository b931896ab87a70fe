package domain

import (
	"context"
	"time"
)

// StatsEvent representa o resultado de uma tentativa sobre uma turma.
//
// Observação: StudentID tem alta cardinalidade; stores que indexam por aluno
// devem deixar isso opcional.
type StatsEvent struct {
	ID        string
	StudentID int
	SectionID string
	Outcome   Outcome

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de matrícula.
//
// Implementações podem armazenar em Redis, memória, etc.
// Quem registra trata erro como best-effort (não derruba a matrícula).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

// StatsReader é implementado pelos stores que conseguem devolver os
// contadores por turma. Record continua sendo o único requisito de StatsStore.
type StatsReader interface {
	SectionCounts(ctx context.Context, sectionID string) (map[Outcome]int64, error)
}

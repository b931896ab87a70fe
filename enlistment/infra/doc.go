// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - Catalog / Roster: turmas e alunos em memória
//   - LoadCatalog / LoadStudents: carga inicial a partir de CSV (gocsv)
//   - Store: token bucket por chave (aluno ou IP) usando golang.org/x/time/rate
//   - SectionGate: fila limitada de tentativas por turma (semáforo em channel)
//   - MemoryStatsStore / RedisStatsStore: contadores de resultado por turma
package infra

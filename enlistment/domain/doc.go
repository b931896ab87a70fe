// Package domain define os tipos e contratos do núcleo de matrícula:
// horários, disciplinas, salas, turmas e alunos.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A única regra com estado compartilhado é a ocupação de uma turma
// (Section), protegida pelo mutex da própria turma.
package domain

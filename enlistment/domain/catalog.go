package domain

import "context"

// Catalog resolve turmas e disciplinas já construídas. É dado de leitura:
// só a ocupação das turmas muda ao longo da vida do processo.
type Catalog interface {
	Section(id string) (*Section, bool)
	Subject(id string) (*Subject, bool)
	Sections() []*Section
}

// Roster guarda os alunos registrados.
//
// WithStudent executa fn com acesso exclusivo ao aluno: duas chamadas para o
// mesmo aluno nunca rodam ao mesmo tempo. Chamadas para alunos diferentes
// rodam em paralelo.
type Roster interface {
	Register(st *Student) error
	WithStudent(id int, fn func(*Student) error) error
}

// AdmissionGate limita quantas tentativas ficam esperando o lock de uma mesma
// turma. Quando a fila da turma está cheia a tentativa volta como busy em vez
// de acumular goroutines no mutex.
//
// Enter bloqueia até abrir vaga na fila de sectionID ou até o ctx encerrar.
// Com ok == true, leave deve ser chamado exatamente uma vez.
type AdmissionGate interface {
	Enter(ctx context.Context, sectionID string) (leave func(), ok bool)
}

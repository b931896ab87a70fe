package domain

import (
	"fmt"
	"sort"
)

// Student guarda as turmas em que o aluno está matriculado e as disciplinas
// já cursadas.
//
// Não é seguro para uso concorrente sobre o mesmo aluno; quem expõe alunos a
// várias goroutines (ver Roster) deve serializar as chamadas por aluno. A
// disputa entre alunos diferentes acontece só no lock de cada Section.
type Student struct {
	id        int
	sections  map[SectionKey]*Section
	completed map[string]*Subject
}

func NewStudent(id int, completed ...*Subject) (*Student, error) {
	if id < 0 {
		return nil, fmt.Errorf("%w: student id cannot be negative, was %d", ErrInvalidArgument, id)
	}
	st := &Student{
		id:        id,
		sections:  make(map[SectionKey]*Section),
		completed: make(map[string]*Subject, len(completed)),
	}
	for _, s := range completed {
		if s != nil {
			st.completed[s.ID()] = s
		}
	}
	return st, nil
}

func (st *Student) ID() int { return st.id }

func (st *Student) String() string { return fmt.Sprintf("student#%d", st.id) }

// Enlist matricula o aluno na turma.
//
// Conflitos e pré-requisitos são checados antes de disputar o lock da turma;
// dentro do lock fica só a admissão e a inclusão no conjunto do aluno.
func (st *Student) Enlist(section *Section) error {
	if section == nil {
		return fmt.Errorf("%w: section cannot be nil", ErrInvalidArgument)
	}
	for _, current := range st.Sections() {
		if err := current.CheckForConflict(section); err != nil {
			return err
		}
	}
	if err := section.Subject().CheckPrerequisites(st.completed); err != nil {
		return err
	}

	section.Lock()
	defer section.Unlock()

	if err := section.AdmitStudent(); err != nil {
		return err
	}
	st.sections[section.Key()] = section
	return nil
}

// CancelEnlistment desfaz a matrícula. Cancelar uma turma em que o aluno não
// está matriculado é erro.
func (st *Student) CancelEnlistment(section *Section) error {
	if section == nil {
		return fmt.Errorf("%w: section cannot be nil", ErrInvalidArgument)
	}
	enlisted, ok := st.sections[section.Key()]
	if !ok {
		return fmt.Errorf("%w: %s in %s", ErrNotEnlisted, st, section.ID())
	}

	enlisted.Lock()
	defer enlisted.Unlock()

	enlisted.ReleaseStudent()
	delete(st.sections, section.Key())
	return nil
}

func (st *Student) IsEnlisted(section *Section) bool {
	if section == nil {
		return false
	}
	_, ok := st.sections[section.Key()]
	return ok
}

// Sections retorna uma cópia das turmas atuais, ordenada por ID.
func (st *Student) Sections() []*Section {
	out := make([]*Section, 0, len(st.sections))
	for _, s := range st.sections {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// CompletedSubjects retorna uma cópia das disciplinas cursadas, ordenada por ID.
func (st *Student) CompletedSubjects() []*Subject {
	out := make([]*Subject, 0, len(st.completed))
	for _, s := range st.completed {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

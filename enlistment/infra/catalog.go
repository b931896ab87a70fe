package infra

import (
	"fmt"
	"sort"
	"sync"

	"enlistment-gateway/enlistment/domain"
)

// Catalog guarda turmas e disciplinas em memória.
//
// As inclusões acontecem na carga inicial; depois disso o catálogo é só
// leitura e a ocupação de cada turma fica sob o lock da própria turma.
type Catalog struct {
	mu       sync.RWMutex
	sections map[string]*domain.Section
	subjects map[string]*domain.Subject
}

var _ domain.Catalog = (*Catalog)(nil)

func NewCatalog() *Catalog {
	return &Catalog{
		sections: make(map[string]*domain.Section),
		subjects: make(map[string]*domain.Subject),
	}
}

// AddSubject registra a disciplina. Um ID já existente precisa apontar para a
// mesma instância.
func (c *Catalog) AddSubject(s *domain.Subject) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.subjects[s.ID()]; ok && cur != s {
		return fmt.Errorf("%w: duplicate subject %s", domain.ErrInvalidArgument, s.ID())
	}
	c.subjects[s.ID()] = s
	return nil
}

// AddSection registra a turma indexada só pelo ID. A identidade da turma no
// domínio é (ID, horário), mas o catálogo exige IDs únicos entre todos os
// horários: o mesmo ID em outro horário também é duplicata.
func (c *Catalog) AddSection(s *domain.Section) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sections[s.ID()]; ok {
		return fmt.Errorf("%w: duplicate section %s", domain.ErrInvalidArgument, s.ID())
	}
	if _, ok := c.subjects[s.Subject().ID()]; !ok {
		c.subjects[s.Subject().ID()] = s.Subject()
	}
	c.sections[s.ID()] = s
	return nil
}

func (c *Catalog) Section(id string) (*domain.Section, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sections[id]
	return s, ok
}

func (c *Catalog) Subject(id string) (*domain.Subject, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.subjects[id]
	return s, ok
}

// Sections retorna as turmas ordenadas por ID.
func (c *Catalog) Sections() []*domain.Section {
	c.mu.RLock()
	out := make([]*domain.Section, 0, len(c.sections))
	for _, s := range c.sections {
		out = append(out, s)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Roster guarda os alunos, cada um com seu próprio mutex.
type Roster struct {
	mu      sync.RWMutex
	entries map[int]*rosterEntry
}

type rosterEntry struct {
	mu      sync.Mutex
	student *domain.Student
}

var _ domain.Roster = (*Roster)(nil)

func NewRoster() *Roster {
	return &Roster{entries: make(map[int]*rosterEntry)}
}

func (r *Roster) Register(st *domain.Student) error {
	if st == nil {
		return fmt.Errorf("%w: student cannot be nil", domain.ErrInvalidArgument)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[st.ID()]; ok {
		return fmt.Errorf("%w: %s", domain.ErrStudentExists, st)
	}
	r.entries[st.ID()] = &rosterEntry{student: st}
	return nil
}

// WithStudent segura o mutex do aluno enquanto fn roda. O mapa só fica
// travado durante a busca.
func (r *Roster) WithStudent(id int, fn func(*domain.Student) error) error {
	r.mu.RLock()
	ent, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrUnknownStudent, id)
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()
	return fn(ent.student)
}

func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

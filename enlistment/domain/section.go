package domain

import (
	"fmt"
	"sync"
)

// SectionKey identifica uma turma: ID + horário.
type SectionKey struct {
	ID       string
	Schedule Schedule
}

// Section é uma oferta de uma disciplina numa sala e horário.
//
// O único campo mutável é enlisted, sempre protegido por mu. Cada turma tem
// seu próprio mutex: turmas que compartilham a mesma sala não se bloqueiam.
type Section struct {
	id       string
	schedule Schedule
	room     Room
	subject  *Subject

	mu       sync.Mutex
	enlisted int
}

func NewSection(id string, schedule Schedule, room Room, subject *Subject) (*Section, error) {
	if err := checkIdentifier("section id", id); err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, fmt.Errorf("%w: section %s has no subject", ErrInvalidArgument, id)
	}
	if err := checkIdentifier("room name", room.Name); err != nil {
		return nil, fmt.Errorf("section %s: %w", id, err)
	}
	if room.Capacity <= 0 {
		return nil, fmt.Errorf("%w: section %s has no room", ErrInvalidArgument, id)
	}
	if schedule == (Schedule{}) {
		return nil, fmt.Errorf("%w: section %s has no schedule", ErrInvalidArgument, id)
	}
	return &Section{id: id, schedule: schedule, room: room, subject: subject}, nil
}

func (s *Section) ID() string { return s.id }
func (s *Section) Schedule() Schedule { return s.schedule }
func (s *Section) Room() Room { return s.room }
func (s *Section) Subject() *Subject { return s.subject }
func (s *Section) Key() SectionKey { return SectionKey{ID: s.id, Schedule: s.schedule} }
func (s *Section) String() string { return s.id }
func (s *Section) Equal(o *Section) bool { return o != nil && s.Key() == o.Key() }

// CheckForConflict compara a turma atual com other. Horário igual tem
// precedência sobre disciplina igual. Não altera estado.
func (s *Section) CheckForConflict(other *Section) error {
	if s.schedule == other.schedule {
		return fmt.Errorf("%w: section %s and section %s both meet at %s", ErrScheduleConflict, s.id, other.id, s.schedule)
	}
	if s.subject.Equal(other.subject) {
		return fmt.Errorf("%w: section %s and section %s both teach %s", ErrSubjectConflict, s.id, other.id, s.subject)
	}
	return nil
}

// Lock adquire o mutex da turma. Bloqueia sem timeout: a seção crítica é O(1).
func (s *Section) Lock() { s.mu.Lock() }
func (s *Section) Unlock() { s.mu.Unlock() }

// AdmitStudent deve ser chamado com o lock da turma adquirido.
// Checagem e incremento acontecem juntos sob o mesmo lock.
func (s *Section) AdmitStudent() error {
	if !s.room.CanAdmit(s.enlisted) {
		return fmt.Errorf("%w: section %s reached capacity %d", ErrCapacity, s.id, s.room.Capacity)
	}
	s.enlisted++
	return nil
}

// ReleaseStudent deve ser chamado com o lock da turma adquirido.
func (s *Section) ReleaseStudent() {
	if s.enlisted > 0 {
		s.enlisted--
	}
}

// Enlisted retorna a ocupação atual.
func (s *Section) Enlisted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enlisted
}

// Available retorna quantas vagas restam no momento da leitura.
func (s *Section) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Capacity - s.enlisted
}

package domain

import (
	"fmt"
	"strings"
)

// Subject é uma disciplina com seus pré-requisitos. Imutável após a construção.
//
// A igualdade é pelo ID: duas instâncias com o mesmo ID representam a mesma
// disciplina para fins de conflito e de pré-requisito.
type Subject struct {
	id            string
	prerequisites []*Subject
}

func NewSubject(id string, prerequisites ...*Subject) (*Subject, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: subject id cannot be blank", ErrInvalidArgument)
	}
	prereqs := make([]*Subject, 0, len(prerequisites))
	seen := make(map[string]bool, len(prerequisites))
	for _, p := range prerequisites {
		if p == nil || seen[p.id] {
			continue
		}
		if p.id == id {
			return nil, fmt.Errorf("%w: subject %s cannot require itself", ErrInvalidArgument, id)
		}
		seen[p.id] = true
		prereqs = append(prereqs, p)
	}
	return &Subject{id: id, prerequisites: prereqs}, nil
}

func (s *Subject) ID() string { return s.id }

// Prerequisites retorna uma cópia da lista de pré-requisitos.
func (s *Subject) Prerequisites() []*Subject {
	out := make([]*Subject, len(s.prerequisites))
	copy(out, s.prerequisites)
	return out
}

func (s *Subject) Equal(other *Subject) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.id == other.id
}

func (s *Subject) String() string { return s.id }

// PrerequisiteError lista os pré-requisitos ausentes, na ordem declarada.
type PrerequisiteError struct {
	Subject string
	Missing []string
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("%s: %s requires %s", ErrMissingPrerequisite, e.Subject, strings.Join(e.Missing, ", "))
}

// Is faz o erro casar tanto com ErrMissingPrerequisite quanto com
// ErrInvalidArgument.
func (e *PrerequisiteError) Is(target error) bool {
	return target == ErrMissingPrerequisite || target == ErrInvalidArgument
}

// CheckPrerequisites falha se algum pré-requisito não estiver em completed
// (conjunto indexado pelo ID da disciplina).
func (s *Subject) CheckPrerequisites(completed map[string]*Subject) error {
	var missing []string
	for _, p := range s.prerequisites {
		if _, ok := completed[p.id]; !ok {
			missing = append(missing, p.id)
		}
	}
	if len(missing) > 0 {
		return &PrerequisiteError{Subject: s.id, Missing: missing}
	}
	return nil
}

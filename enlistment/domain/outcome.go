package domain

import (
	"errors"
	"time"
)

// Outcome é o resultado nomeado de uma tentativa de matrícula ou cancelamento.
// Permite ao chamador decidir sem inspecionar o erro.
type Outcome string

const (
	OutcomeEnlisted            Outcome = "enlisted"
	OutcomeCancelled           Outcome = "cancelled"
	OutcomeScheduleConflict    Outcome = "schedule_conflict"
	OutcomeSubjectConflict     Outcome = "subject_conflict"
	OutcomeMissingPrerequisite Outcome = "missing_prerequisite"
	OutcomeFull                Outcome = "full"
	OutcomeNotEnlisted         Outcome = "not_enlisted"
	OutcomeBusy                Outcome = "busy"
	OutcomeUnknown             Outcome = "unknown"
	OutcomeInvalid             Outcome = "invalid"
)

// OutcomeOf classifica um erro de Enlist/CancelEnlistment.
// err == nil não tem classificação única (enlisted ou cancelled); quem chama
// sabe qual operação executou.
func OutcomeOf(err error) Outcome {
	switch {
	case errors.Is(err, ErrScheduleConflict):
		return OutcomeScheduleConflict
	case errors.Is(err, ErrSubjectConflict):
		return OutcomeSubjectConflict
	case errors.Is(err, ErrMissingPrerequisite):
		return OutcomeMissingPrerequisite
	case errors.Is(err, ErrCapacity):
		return OutcomeFull
	case errors.Is(err, ErrNotEnlisted):
		return OutcomeNotEnlisted
	case errors.Is(err, ErrSectionBusy):
		return OutcomeBusy
	case errors.Is(err, ErrUnknownSection), errors.Is(err, ErrUnknownStudent):
		return OutcomeUnknown
	default:
		return OutcomeInvalid
	}
}

// Succeeded reporta se a operação alterou estado.
func (o Outcome) Succeeded() bool {
	return o == OutcomeEnlisted || o == OutcomeCancelled
}

// Receipt registra uma tentativa, com ou sem sucesso.
type Receipt struct {
	ID        string    `json:"id"`
	StudentID int       `json:"student_id"`
	SectionID string    `json:"section_id"`
	Outcome   Outcome   `json:"outcome"`
	At        time.Time `json:"at"`
}

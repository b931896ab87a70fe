package application

import (
	"context"
	"fmt"
	"log"
	"time"

	"enlistment-gateway/enlistment/domain"

	"github.com/google/uuid"
)

// SectionView é a leitura de uma turma, com a ocupação no momento da consulta.
type SectionView struct {
	ID       string `json:"id"`
	Subject  string `json:"subject"`
	Room     string `json:"room"`
	Days     string `json:"days"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Enlisted int    `json:"enlisted"`
	Capacity int    `json:"capacity"`
}

func viewOf(sec *domain.Section) SectionView {
	sched := sec.Schedule()
	return SectionView{
		ID:       sec.ID(),
		Subject:  sec.Subject().ID(),
		Room:     sec.Room().Name,
		Days:     string(sched.Days),
		Start:    sched.Period.Start.String(),
		End:      sched.Period.End.String(),
		Enlisted: sec.Enlisted(),
		Capacity: sec.Room().Capacity,
	}
}

// SectionStats são os contadores de resultado de uma turma junto com a
// ocupação atual.
type SectionStats struct {
	SectionView
	Outcomes map[domain.Outcome]int64 `json:"outcomes"`
}

// EnlistmentService orquestra matrícula e cancelamento sobre o catálogo e os
// alunos registrados.
//
// Cada tentativa gera um Receipt e um StatsEvent. Stats é best-effort: falha
// ao registrar só vai para o log.
//
// Gate (opcional) limita quantas tentativas esperam pelo lock de cada turma.
// Com GateTimeout > 0 a espera na fila é limitada; sem ele dura até o ctx do
// chamador encerrar. Quem não entra recebe OutcomeBusy.
type EnlistmentService struct {
	Catalog domain.Catalog
	Roster  domain.Roster
	Stats   domain.StatsStore
	Logger  *log.Logger

	Gate        domain.AdmissionGate
	GateTimeout time.Duration

	Now   func() time.Time
	NewID func() string
}

// Register cria um aluno com as disciplinas já cursadas (IDs do catálogo).
func (s EnlistmentService) Register(_ context.Context, studentID int, completed []string) error {
	subjects := make([]*domain.Subject, 0, len(completed))
	for _, id := range completed {
		subj, ok := s.Catalog.Subject(id)
		if !ok {
			return fmt.Errorf("%w: unknown subject %q", domain.ErrInvalidArgument, id)
		}
		subjects = append(subjects, subj)
	}
	st, err := domain.NewStudent(studentID, subjects...)
	if err != nil {
		return err
	}
	return s.Roster.Register(st)
}

func (s EnlistmentService) Enlist(ctx context.Context, studentID int, sectionID string) (domain.Receipt, error) {
	return s.attempt(ctx, studentID, sectionID, domain.OutcomeEnlisted, (*domain.Student).Enlist)
}

func (s EnlistmentService) Cancel(ctx context.Context, studentID int, sectionID string) (domain.Receipt, error) {
	return s.attempt(ctx, studentID, sectionID, domain.OutcomeCancelled, (*domain.Student).CancelEnlistment)
}

// Sections lista as turmas do aluno.
func (s EnlistmentService) Sections(_ context.Context, studentID int) ([]SectionView, error) {
	var out []SectionView
	err := s.Roster.WithStudent(studentID, func(st *domain.Student) error {
		secs := st.Sections()
		out = make([]SectionView, 0, len(secs))
		for _, sec := range secs {
			out = append(out, viewOf(sec))
		}
		return nil
	})
	return out, err
}

// CatalogSections lista todas as turmas do catálogo.
func (s EnlistmentService) CatalogSections(_ context.Context) []SectionView {
	secs := s.Catalog.Sections()
	out := make([]SectionView, 0, len(secs))
	for _, sec := range secs {
		out = append(out, viewOf(sec))
	}
	return out
}

// SectionStats lê os contadores da turma no StatsStore. Stores que não
// implementam domain.StatsReader devolvem ErrStatsUnavailable.
func (s EnlistmentService) SectionStats(ctx context.Context, sectionID string) (SectionStats, error) {
	sec, ok := s.Catalog.Section(sectionID)
	if !ok {
		return SectionStats{}, fmt.Errorf("%w: %q", domain.ErrUnknownSection, sectionID)
	}
	reader, ok := s.Stats.(domain.StatsReader)
	if !ok {
		return SectionStats{}, domain.ErrStatsUnavailable
	}
	counts, err := reader.SectionCounts(ctx, sec.ID())
	if err != nil {
		return SectionStats{}, fmt.Errorf("%w: %v", domain.ErrStatsUnavailable, err)
	}
	return SectionStats{SectionView: viewOf(sec), Outcomes: counts}, nil
}

func (s EnlistmentService) attempt(
	ctx context.Context,
	studentID int,
	sectionID string,
	success domain.Outcome,
	op func(*domain.Student, *domain.Section) error,
) (domain.Receipt, error) {
	rc := domain.Receipt{
		ID:        s.newID(),
		StudentID: studentID,
		SectionID: sectionID,
		At:        s.now(),
	}

	err := s.run(ctx, studentID, sectionID, op)
	if err != nil {
		rc.Outcome = domain.OutcomeOf(err)
		s.logf("%s student=%d section=%s outcome=%s: %v", success, studentID, sectionID, rc.Outcome, err)
	} else {
		rc.Outcome = success
	}

	s.record(ctx, rc)
	return rc, err
}

func (s EnlistmentService) run(ctx context.Context, studentID int, sectionID string, op func(*domain.Student, *domain.Section) error) error {
	sec, ok := s.Catalog.Section(sectionID)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownSection, sectionID)
	}

	// ordem: fila da turma, aluno, lock da turma
	leave, err := s.enter(ctx, sec)
	if err != nil {
		return err
	}
	defer leave()

	return s.Roster.WithStudent(studentID, func(st *domain.Student) error {
		return op(st, sec)
	})
}

func (s EnlistmentService) enter(ctx context.Context, sec *domain.Section) (func(), error) {
	if s.Gate == nil {
		return func() {}, nil
	}
	if s.GateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.GateTimeout)
		defer cancel()
	}
	leave, ok := s.Gate.Enter(ctx, sec.ID())
	if !ok {
		return nil, fmt.Errorf("%w: %s has too many pending attempts", domain.ErrSectionBusy, sec)
	}
	return leave, nil
}

func (s EnlistmentService) record(ctx context.Context, rc domain.Receipt) {
	if s.Stats == nil {
		return
	}
	err := s.Stats.Record(ctx, domain.StatsEvent{
		ID:        rc.ID,
		StudentID: rc.StudentID,
		SectionID: rc.SectionID,
		Outcome:   rc.Outcome,
		At:        rc.At,
	})
	if err != nil {
		s.logf("stats record error: %v", err)
	}
}

func (s EnlistmentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s EnlistmentService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s EnlistmentService) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

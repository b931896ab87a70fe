package infra

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"enlistment-gateway/enlistment/domain"

	"github.com/gocarina/gocsv"
)

// SectionRow é uma linha do CSV de catálogo.
//
// Prerequisites lista IDs de disciplina separados por "|". Uma disciplina pode
// aparecer em várias linhas (uma por turma); os pré-requisitos valem a partir
// da primeira linha em que ela aparece.
type SectionRow struct {
	SectionID     string `csv:"section_id"`
	SubjectID     string `csv:"subject_id"`
	Prerequisites string `csv:"prerequisites"`
	Room          string `csv:"room"`
	Capacity      int    `csv:"capacity"`
	Days          string `csv:"days"`
	Start         string `csv:"start"`
	End           string `csv:"end"`
}

// StudentRow é uma linha do CSV de alunos.
type StudentRow struct {
	StudentID int    `csv:"student_id"`
	Completed string `csv:"completed"`
}

func csvReader(delim rune) func(io.Reader) gocsv.CSVReader {
	return func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = delim
		r.TrimLeadingSpace = true
		return r
	}
}

func splitIDs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "|") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadCatalog lê o CSV de turmas e monta um Catalog.
//
// Disciplinas citadas só como pré-requisito são criadas sem pré-requisitos.
// Referência circular entre disciplinas é erro.
func LoadCatalog(in io.Reader, delim rune) (*Catalog, error) {
	var rows []*SectionRow
	if err := gocsv.UnmarshalCSV(csvReader(delim)(in), &rows); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	declared := make(map[string][]string)
	for _, row := range rows {
		id := strings.TrimSpace(row.SubjectID)
		if _, ok := declared[id]; !ok {
			declared[id] = splitIDs(row.Prerequisites)
		}
	}

	b := subjectBuilder{declared: declared, built: make(map[string]*domain.Subject), visiting: make(map[string]bool)}
	cat := NewCatalog()
	for i, row := range rows {
		line := i + 2 // cabeçalho é a linha 1
		subj, err := b.build(strings.TrimSpace(row.SubjectID))
		if err != nil {
			return nil, fmt.Errorf("catalog line %d: %w", line, err)
		}
		sec, err := row.section(subj)
		if err != nil {
			return nil, fmt.Errorf("catalog line %d: %w", line, err)
		}
		if err := cat.AddSection(sec); err != nil {
			return nil, fmt.Errorf("catalog line %d: %w", line, err)
		}
	}
	for _, subj := range b.built {
		if err := cat.AddSubject(subj); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func (row *SectionRow) section(subj *domain.Subject) (*domain.Section, error) {
	days, err := domain.ParseDays(row.Days)
	if err != nil {
		return nil, err
	}
	start, err := domain.ParseClock(row.Start)
	if err != nil {
		return nil, err
	}
	end, err := domain.ParseClock(row.End)
	if err != nil {
		return nil, err
	}
	period, err := domain.NewPeriod(start, end)
	if err != nil {
		return nil, err
	}
	sched, err := domain.NewSchedule(days, period)
	if err != nil {
		return nil, err
	}
	room, err := domain.NewRoom(strings.TrimSpace(row.Room), row.Capacity)
	if err != nil {
		return nil, err
	}
	return domain.NewSection(strings.TrimSpace(row.SectionID), sched, room, subj)
}

type subjectBuilder struct {
	declared map[string][]string
	built    map[string]*domain.Subject
	visiting map[string]bool
}

func (b *subjectBuilder) build(id string) (*domain.Subject, error) {
	if s, ok := b.built[id]; ok {
		return s, nil
	}
	if b.visiting[id] {
		return nil, fmt.Errorf("%w: circular prerequisite at %s", domain.ErrInvalidArgument, id)
	}
	b.visiting[id] = true
	defer delete(b.visiting, id)

	var prereqs []*domain.Subject
	for _, pid := range b.declared[id] {
		p, err := b.build(pid)
		if err != nil {
			return nil, err
		}
		prereqs = append(prereqs, p)
	}
	s, err := domain.NewSubject(id, prereqs...)
	if err != nil {
		return nil, err
	}
	b.built[id] = s
	return s, nil
}

// LoadStudents lê o CSV de alunos e registra cada um no roster.
// As disciplinas cursadas precisam existir no catálogo.
func LoadStudents(in io.Reader, delim rune, cat domain.Catalog, roster domain.Roster) (int, error) {
	var rows []*StudentRow
	if err := gocsv.UnmarshalCSV(csvReader(delim)(in), &rows); err != nil {
		return 0, fmt.Errorf("parse students: %w", err)
	}

	for i, row := range rows {
		line := i + 2
		var completed []*domain.Subject
		for _, id := range splitIDs(row.Completed) {
			subj, ok := cat.Subject(id)
			if !ok {
				return i, fmt.Errorf("students line %d: %w: unknown subject %q", line, domain.ErrInvalidArgument, id)
			}
			completed = append(completed, subj)
		}
		st, err := domain.NewStudent(row.StudentID, completed...)
		if err != nil {
			return i, fmt.Errorf("students line %d: %w", line, err)
		}
		if err := roster.Register(st); err != nil {
			return i, fmt.Errorf("students line %d: %w", line, err)
		}
	}
	return len(rows), nil
}

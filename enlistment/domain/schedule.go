package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Days é o padrão de dias em que uma turma se reúne.
type Days string

const (
	MTH Days = "MTH"
	TF  Days = "TF"
	WS  Days = "WS"
)

func ParseDays(s string) (Days, error) {
	d := Days(strings.ToUpper(strings.TrimSpace(s)))
	switch d {
	case MTH, TF, WS:
		return d, nil
	}
	return "", fmt.Errorf("%w: unknown days %q", ErrInvalidArgument, s)
}

// Clock representa um horário do dia em minutos após a meia-noite.
type Clock int

// Janela de funcionamento (inclusiva).
const (
	OpeningTime Clock = 8*60 + 30
	ClosingTime Clock = 17*60 + 30

	slotMinutes = 30
)

func At(hour, minute int) Clock { return Clock(hour*60 + minute) }

// ParseClock aceita "HH:MM" (ex: "08:30", "9:00").
func ParseClock(s string) (Clock, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("%w: malformed time %q", ErrInvalidPeriod, s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: malformed hour in %q", ErrInvalidPeriod, s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: malformed minute in %q", ErrInvalidPeriod, s)
	}
	return At(hour, minute), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Period é uma janela de horário [Start, End) dentro do expediente.
//
// É um valor comparável: dois períodos são iguais quando Start e End coincidem.
type Period struct {
	Start Clock
	End   Clock
}

// NewPeriod valida que os dois horários caem em múltiplos de 30 minutos,
// ficam entre 08:30 e 17:30 e que End é estritamente depois de Start.
func NewPeriod(start, end Clock) (Period, error) {
	if start%slotMinutes != 0 || end%slotMinutes != 0 {
		return Period{}, fmt.Errorf("%w: %s-%s is not on a 30 minute increment", ErrInvalidPeriod, start, end)
	}
	if start < OpeningTime || start > ClosingTime || end < OpeningTime || end > ClosingTime {
		return Period{}, fmt.Errorf("%w: %s-%s is outside %s-%s", ErrInvalidPeriod, start, end, OpeningTime, ClosingTime)
	}
	if end <= start {
		return Period{}, fmt.Errorf("%w: end %s must be after start %s", ErrInvalidPeriod, end, start)
	}
	return Period{Start: start, End: end}, nil
}

func (p Period) String() string { return p.Start.String() + "-" + p.End.String() }

// Schedule combina dias e período. Duas turmas com Schedule igual (==)
// estão em conflito de horário.
type Schedule struct {
	Days   Days
	Period Period
}

// NewSchedule normaliza days ("mth", " MTH " viram MTH) para que a comparação
// por == enxergue o mesmo horário.
func NewSchedule(days Days, period Period) (Schedule, error) {
	d, err := ParseDays(string(days))
	if err != nil {
		return Schedule{}, err
	}
	if period == (Period{}) {
		return Schedule{}, fmt.Errorf("%w: empty period", ErrInvalidPeriod)
	}
	return Schedule{Days: d, Period: period}, nil
}

func (s Schedule) String() string { return string(s.Days) + " " + s.Period.String() }

package domain

import "errors"

var (
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrInvalidArgument = errors.New("invalid argument")

	ErrScheduleConflict    = errors.New("schedule conflict")
	ErrSubjectConflict     = errors.New("subject conflict")
	ErrMissingPrerequisite = errors.New("missing prerequisite")
	ErrCapacity            = errors.New("section is full")
	ErrNotEnlisted         = errors.New("student is not enlisted in section")
	ErrSectionBusy         = errors.New("section is busy")

	ErrUnknownSection = errors.New("unknown section")
	ErrUnknownStudent = errors.New("unknown student")
	ErrStudentExists  = errors.New("student already registered")

	ErrStatsUnavailable = errors.New("stats unavailable")
)

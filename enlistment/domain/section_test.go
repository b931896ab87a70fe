package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSchedule(t *testing.T, days Days, start, end Clock) Schedule {
	t.Helper()
	p, err := NewPeriod(start, end)
	require.NoError(t, err)
	s, err := NewSchedule(days, p)
	require.NoError(t, err)
	return s
}

func mustSubject(t *testing.T, id string, prereqs ...*Subject) *Subject {
	t.Helper()
	s, err := NewSubject(id, prereqs...)
	require.NoError(t, err)
	return s
}

func mustSection(t *testing.T, id string, sched Schedule, capacity int, subject *Subject) *Section {
	t.Helper()
	room, err := NewRoom("G303", capacity)
	require.NoError(t, err)
	sec, err := NewSection(id, sched, room, subject)
	require.NoError(t, err)
	return sec
}

func TestNewSection_Validates(t *testing.T) {
	sched := mustSchedule(t, MTH, At(8, 30), At(10, 0))
	room, _ := NewRoom("G303", 10)
	subj := mustSubject(t, "CS11")

	_, err := NewSection("", sched, room, subj)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewSection("A 1", sched, room, subj)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewSection("A", sched, room, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewSection("A", sched, Room{}, subj)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewSection("A", sched, Room{Capacity: 5}, subj)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewSection("A", sched, Room{Name: "G 303", Capacity: 5}, subj)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewSection("A", Schedule{}, room, subj)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSection_CheckForConflict(t *testing.T) {
	mth := mustSchedule(t, MTH, At(8, 30), At(10, 0))
	tf := mustSchedule(t, TF, At(8, 30), At(10, 0))
	cs11 := mustSubject(t, "CS11")
	cs12 := mustSubject(t, "CS12")

	a := mustSection(t, "A", mth, 10, cs11)
	sameSlot := mustSection(t, "B", mth, 10, cs12)
	sameSubject := mustSection(t, "C", tf, 10, mustSubject(t, "CS11"))
	unrelated := mustSection(t, "D", tf, 10, cs12)

	assert.ErrorIs(t, a.CheckForConflict(sameSlot), ErrScheduleConflict)
	assert.ErrorIs(t, sameSlot.CheckForConflict(a), ErrScheduleConflict)
	assert.ErrorIs(t, a.CheckForConflict(sameSubject), ErrSubjectConflict)
	assert.ErrorIs(t, sameSubject.CheckForConflict(a), ErrSubjectConflict)
	assert.NoError(t, a.CheckForConflict(unrelated))
}

func TestSection_ScheduleConflictTakesPrecedence(t *testing.T) {
	mth := mustSchedule(t, MTH, At(8, 30), At(10, 0))
	cs11 := mustSubject(t, "CS11")

	a := mustSection(t, "A", mth, 10, cs11)
	b := mustSection(t, "B", mth, 10, cs11)
	assert.ErrorIs(t, a.CheckForConflict(b), ErrScheduleConflict)
}

func TestSection_AdmitUntilFull(t *testing.T) {
	sec := mustSection(t, "A", mustSchedule(t, MTH, At(8, 30), At(10, 0)), 2, mustSubject(t, "CS11"))

	sec.Lock()
	require.NoError(t, sec.AdmitStudent())
	require.NoError(t, sec.AdmitStudent())
	err := sec.AdmitStudent()
	sec.Unlock()

	assert.ErrorIs(t, err, ErrCapacity)
	assert.Equal(t, 2, sec.Enlisted())
	assert.Equal(t, 0, sec.Available())
}

func TestSection_ReleaseNeverGoesNegative(t *testing.T) {
	sec := mustSection(t, "A", mustSchedule(t, MTH, At(8, 30), At(10, 0)), 1, mustSubject(t, "CS11"))

	sec.Lock()
	sec.ReleaseStudent()
	sec.Unlock()

	assert.Equal(t, 0, sec.Enlisted())
}

func TestSection_ConcurrentAdmitAndReleaseKeepCount(t *testing.T) {
	const capacity = 50
	sec := mustSection(t, "A", mustSchedule(t, MTH, At(8, 30), At(10, 0)), capacity, mustSubject(t, "CS11"))

	var wg sync.WaitGroup
	for i := 0; i < capacity; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sec.Lock()
			defer sec.Unlock()
			_ = sec.AdmitStudent()
		}()
		go func() {
			defer wg.Done()
			sec.Lock()
			defer sec.Unlock()
			if err := sec.AdmitStudent(); err == nil {
				sec.ReleaseStudent()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, capacity, sec.Enlisted())
}

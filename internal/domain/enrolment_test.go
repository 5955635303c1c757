package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnrolment_ExamRef(t *testing.T) {
	local := NewEnrolment(7, ExamRef{ID: 3}, at(9, 0))
	require.NotNil(t, local.ExamID)
	assert.Nil(t, local.CollaborativeExamID)
	assert.Equal(t, ExamRef{ID: 3}, local.ExamRef())
	assert.Equal(t, int64(7), *local.UserID)

	collab := NewEnrolment(7, ExamRef{ID: 5, Collaborative: true}, at(9, 0))
	require.NotNil(t, collab.CollaborativeExamID)
	assert.Nil(t, collab.ExamID)
	assert.Equal(t, ExamRef{ID: 5, Collaborative: true}, collab.ExamRef())

	pre := NewPreEnrolment("student@example.org", ExamRef{ID: 3}, at(9, 0))
	assert.Nil(t, pre.UserID)
	require.NotNil(t, pre.PreEnrolledUserEmail)
	assert.Equal(t, "student@example.org", *pre.PreEnrolledUserEmail)
}

func TestExamEnrolment_ReservationState(t *testing.T) {
	e := &ExamEnrolment{Reservation: &Reservation{StartAt: at(10, 0), EndAt: at(11, 0)}}

	assert.True(t, e.HasFutureReservation(at(9, 0)))
	assert.False(t, e.IsReservationInEffect(at(9, 0)))

	assert.True(t, e.IsReservationInEffect(at(10, 30)))
	assert.True(t, e.IsActive(at(10, 30)))

	assert.False(t, e.IsReservationInEffect(at(11, 0)))
	assert.False(t, e.IsActive(at(11, 0)))

	noReservation := &ExamEnrolment{}
	assert.True(t, noReservation.IsActive(at(12, 0)))
	assert.False(t, noReservation.HasReservation())
}

func TestExam_Rules(t *testing.T) {
	exam := &Exam{
		State:         ExamStatePublished,
		ExecutionType: ExecutionPublic,
		ActiveStart:   at(8, 0),
		ActiveEnd:     at(18, 0),
		Organisations: []string{"uni-a"},
	}

	assert.True(t, exam.IsPublished())
	assert.False(t, exam.IsPrivate())
	assert.True(t, exam.RequiresMachine())
	assert.False(t, exam.HasEnded(at(17, 59)))
	assert.True(t, exam.HasEnded(at(18, 0)))
	assert.True(t, exam.AllowsOrganisation("uni-a"))
	assert.False(t, exam.AllowsOrganisation("uni-b"))

	exam.ExecutionType = ExecutionPrintout
	assert.False(t, exam.IsPrivate())
	assert.False(t, exam.RequiresMachine())

	exam.ExecutionType = ExecutionMaturity
	assert.True(t, exam.IsPrivate())

	assert.True(t, IsFinishedAttemptState(ExamStateAborted))
	assert.False(t, IsFinishedAttemptState(ExamStateStudentStarted))
}

func TestExamMachine_Eligibility(t *testing.T) {
	m := &ExamMachine{
		SoftwareIDs:      []int64{1, 2},
		AccessibilityIDs: []int64{10},
		Reservations:     []*Reservation{{StartAt: at(10, 0), EndAt: at(11, 0)}},
	}

	assert.True(t, m.IsUsable())
	assert.True(t, m.HasRequiredSoftware(&Exam{SoftwareIDs: []int64{2}}))
	assert.False(t, m.HasRequiredSoftware(&Exam{SoftwareIDs: []int64{3}}))
	assert.True(t, m.HasAccessibilities(nil))
	assert.False(t, m.HasAccessibilities([]int64{10, 11}))
	assert.True(t, m.IsReservedDuring(window(9, 12)))
	assert.False(t, m.IsReservedDuring(window(11, 12)))

	m.Archived = true
	assert.False(t, m.IsUsable())
}

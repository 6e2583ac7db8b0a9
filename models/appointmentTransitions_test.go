package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionLegalMoves(t *testing.T) {
	cases := []struct {
		from   string
		action Action
		want   string
	}{
		{StatusRequested, ActionApprove, StatusApproved},
		{StatusApproved, ActionComplete, StatusCompleted},
		{StatusRequested, ActionCancel, StatusCancelled},
		{StatusApproved, ActionCancel, StatusCancelled},
		{StatusRequested, ActionReschedule, StatusRescheduled},
		{StatusApproved, ActionReschedule, StatusRescheduled},
		{StatusRequested, ActionAttachReport, StatusCompleted},
		{StatusApproved, ActionAttachReport, StatusCompleted},
		{StatusCompleted, ActionAttachReport, StatusCompleted},
	}
	for _, tc := range cases {
		got, err := Transition(tc.from, tc.action)
		require.NoError(t, err, "%s from %s", tc.action, tc.from)
		assert.Equal(t, tc.want, got)
	}
}

func TestTransitionRejectsTerminalSources(t *testing.T) {
	for _, from := range []string{StatusBlocked, StatusCancelled, StatusRescheduled} {
		for action := range transitions {
			_, err := Transition(from, action)
			var te *TransitionError
			require.True(t, errors.As(err, &te), "%s from %s should be illegal", action, from)
			assert.Equal(t, from, te.From)
		}
	}
}

func TestAttachReportKeepsRescheduleLineage(t *testing.T) {
	for _, from := range []string{StatusRescheduled, StatusCancelled, StatusBlocked} {
		to, err := Transition(from, ActionAttachReport)
		var te *TransitionError
		require.True(t, errors.As(err, &te), "attach_report from %s should be illegal", from)
		assert.Equal(t, ActionAttachReport, te.Action)
		assert.Empty(t, to)
	}
}

func TestTransitionRejectsSkippingApproval(t *testing.T) {
	_, err := Transition(StatusRequested, ActionComplete)
	assert.Error(t, err)

	_, err = Transition(StatusCompleted, ActionCancel)
	assert.Error(t, err)
}

func TestActionForStatus(t *testing.T) {
	a, ok := ActionForStatus(StatusApproved)
	assert.True(t, ok)
	assert.Equal(t, ActionApprove, a)

	for _, s := range []string{StatusRequested, StatusRescheduled, StatusBlocked, "done"} {
		_, ok := ActionForStatus(s)
		assert.False(t, ok, s)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(StatusRequested))
	assert.False(t, IsTerminal(StatusApproved))
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.True(t, IsTerminal(StatusRescheduled))
	assert.True(t, IsTerminal(StatusBlocked))
}

func TestDeriveDropsScheduleAndLineage(t *testing.T) {
	patient := "p1"
	parent := "a0"
	src := Appointment{
		ID: "a1", PatientID: &patient, DoctorID: "d1",
		AppointmentDate: "2025-03-10", StartTime: "09:00", EndTime: "09:30",
		Status: StatusApproved, Reason: "checkup", Report: "fine",
		IsRecurring: true, RecurrenceType: RecurrenceWeekly,
		ParentAppointmentID: &parent, CreatedBy: CreatedByPatient,
	}

	d := src.Derive()
	assert.Empty(t, d.ID)
	assert.Empty(t, d.AppointmentDate)
	assert.Empty(t, d.Status)
	assert.Empty(t, d.Report)
	assert.Nil(t, d.ParentAppointmentID)
	assert.Equal(t, "p1", *d.PatientID)
	assert.Equal(t, "d1", d.DoctorID)
	assert.Equal(t, "checkup", d.Reason)
	assert.True(t, d.IsWeekly())
}

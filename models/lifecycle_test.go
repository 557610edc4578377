package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIncidentTransitions(t *testing.T) {
	testCases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{IncidentStatusOpen, IncidentStatusInProgress, true},
		{IncidentStatusOpen, IncidentStatusResolved, false},
		{IncidentStatusInProgress, IncidentStatusResolved, true},
		{IncidentStatusResolved, IncidentStatusClosed, true},
		{IncidentStatusResolved, IncidentStatusOpen, false},
		{IncidentStatusClosed, IncidentStatusInProgress, false},
		{IncidentStatusClosed, IncidentStatusOpen, false},
		{IncidentStatusOpen, IncidentStatusOpen, true},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.allowed, CanIncidentTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestIncidentTransitionStampsResolution(t *testing.T) {
	incident := Incident{Status: IncidentStatusInProgress}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	err := incident.Transition(IncidentStatusResolved, 42, "fixed the pothole", now)
	assert.NoError(t, err)
	assert.Equal(t, IncidentStatusResolved, incident.Status)
	assert.NotNil(t, incident.ResolvedAt)
	assert.Equal(t, now, *incident.ResolvedAt)
	assert.NotNil(t, incident.AssignedTo)
	assert.Equal(t, uint(42), *incident.AssignedTo)
	assert.Equal(t, "fixed the pothole", incident.ResolutionNotes)
}

func TestIncidentTransitionRejected(t *testing.T) {
	incident := Incident{Status: IncidentStatusClosed}

	err := incident.Transition(IncidentStatusOpen, 1, "", time.Now())
	assert.Error(t, err)
	assert.Equal(t, IncidentStatusClosed, incident.Status)
}

func TestAppointmentLifecycle(t *testing.T) {
	mechanicID := uint(7)
	appointment := Appointment{Status: AppointmentStatusScheduled}

	assert.NoError(t, appointment.Confirm(&mechanicID))
	assert.Equal(t, AppointmentStatusConfirmed, appointment.Status)
	assert.Equal(t, uint(7), *appointment.MechanicID)

	assert.NoError(t, appointment.Start())
	assert.Equal(t, AppointmentStatusInProgress, appointment.Status)

	assert.NoError(t, appointment.Complete())
	assert.Equal(t, AppointmentStatusCompleted, appointment.Status)
}

func TestAppointmentCannotStartUnconfirmed(t *testing.T) {
	appointment := Appointment{Status: AppointmentStatusScheduled}
	assert.Error(t, appointment.Start())
	assert.Equal(t, AppointmentStatusScheduled, appointment.Status)
}

func TestAppointmentCancelFromActiveStates(t *testing.T) {
	for _, status := range []string{
		AppointmentStatusScheduled,
		AppointmentStatusConfirmed,
		AppointmentStatusInProgress,
	} {
		appointment := Appointment{Status: status}
		assert.NoError(t, appointment.Cancel(), "cancel from %s", status)
	}

	done := Appointment{Status: AppointmentStatusCompleted}
	assert.Error(t, done.Cancel())
}

func TestServiceRecordComplete(t *testing.T) {
	record := ServiceRecord{Status: RecordStatusScheduled}
	assert.NoError(t, record.Start())

	cost := 149.99
	now := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
	err := record.Complete(9, "replaced brake pads", &cost, now)
	assert.NoError(t, err)
	assert.Equal(t, RecordStatusCompleted, record.Status)
	assert.Equal(t, uint(9), *record.MechanicID)
	assert.Equal(t, "replaced brake pads", record.WorkPerformed)
	assert.Equal(t, 149.99, *record.ActualCost)
	assert.Equal(t, now, *record.CompletedAt)
}

func TestServiceRecordCannotCompleteTwice(t *testing.T) {
	record := ServiceRecord{Status: RecordStatusCompleted}
	assert.Error(t, record.Complete(1, "", nil, time.Now()))
}

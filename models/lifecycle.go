package models

import (
	"fmt"
	"time"
)

// Status transition graphs. A transition to the same status is always
// allowed; terminal statuses map to an empty set.

var incidentTransitions = map[string][]string{
	IncidentStatusOpen:       {IncidentStatusInProgress},
	IncidentStatusInProgress: {IncidentStatusResolved},
	IncidentStatusResolved:   {IncidentStatusClosed},
	IncidentStatusClosed:     {},
}

var appointmentTransitions = map[string][]string{
	AppointmentStatusScheduled:  {AppointmentStatusConfirmed, AppointmentStatusCancelled},
	AppointmentStatusConfirmed:  {AppointmentStatusInProgress, AppointmentStatusCancelled},
	AppointmentStatusInProgress: {AppointmentStatusCompleted, AppointmentStatusCancelled},
	AppointmentStatusCompleted:  {},
	AppointmentStatusCancelled:  {},
}

var recordTransitions = map[string][]string{
	RecordStatusScheduled:  {RecordStatusInProgress, RecordStatusCancelled},
	RecordStatusInProgress: {RecordStatusCompleted, RecordStatusCancelled},
	RecordStatusCompleted:  {},
	RecordStatusCancelled:  {},
}

func canTransition(graph map[string][]string, from, to string) bool {
	if from == to {
		return true
	}
	allowed, ok := graph[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// CanIncidentTransition reports whether an incident may move from one status
// to another
func CanIncidentTransition(from, to string) bool {
	return canTransition(incidentTransitions, from, to)
}

// CanAppointmentTransition reports whether an appointment may move from one
// status to another
func CanAppointmentTransition(from, to string) bool {
	return canTransition(appointmentTransitions, from, to)
}

// CanRecordTransition reports whether a service record may move from one
// status to another
func CanRecordTransition(from, to string) bool {
	return canTransition(recordTransitions, from, to)
}

// Transition moves the incident to a new status, stamping resolution fields
// when it becomes resolved. adminID identifies the actor for the resolution.
func (i *Incident) Transition(to string, adminID uint, notes string, now time.Time) error {
	if !CanIncidentTransition(i.Status, to) {
		return fmt.Errorf("invalid incident status transition: %s -> %s", i.Status, to)
	}
	becameResolved := to == IncidentStatusResolved && i.Status != IncidentStatusResolved
	i.Status = to
	if becameResolved {
		t := now
		i.ResolvedAt = &t
		i.AssignedTo = &adminID
		if notes != "" {
			i.ResolutionNotes = notes
		}
	}
	return nil
}

// Confirm moves the appointment to confirmed, optionally reassigning the
// mechanic.
func (a *Appointment) Confirm(mechanicID *uint) error {
	if err := a.transition(AppointmentStatusConfirmed); err != nil {
		return err
	}
	if mechanicID != nil {
		a.MechanicID = mechanicID
	}
	return nil
}

// Start moves the appointment to in_progress
func (a *Appointment) Start() error {
	return a.transition(AppointmentStatusInProgress)
}

// Complete moves the appointment to completed
func (a *Appointment) Complete() error {
	return a.transition(AppointmentStatusCompleted)
}

// Cancel moves the appointment to cancelled. Cancellation is reachable from
// any non-terminal status.
func (a *Appointment) Cancel() error {
	return a.transition(AppointmentStatusCancelled)
}

func (a *Appointment) transition(to string) error {
	if !CanAppointmentTransition(a.Status, to) {
		return fmt.Errorf("invalid appointment status transition: %s -> %s", a.Status, to)
	}
	a.Status = to
	return nil
}

// Start moves the record to in_progress
func (r *ServiceRecord) Start() error {
	return r.transition(RecordStatusInProgress)
}

// Complete marks the record completed, stamping completed_at and recording
// the mechanic, work performed and actual cost when provided.
func (r *ServiceRecord) Complete(mechanicID uint, workPerformed string, actualCost *float64, now time.Time) error {
	if err := r.transition(RecordStatusCompleted); err != nil {
		return err
	}
	if r.CompletedAt == nil {
		t := now
		r.CompletedAt = &t
	}
	if r.MechanicID == nil {
		r.MechanicID = &mechanicID
	}
	if workPerformed != "" {
		r.WorkPerformed = workPerformed
	}
	if actualCost != nil {
		r.ActualCost = actualCost
	}
	return nil
}

// Cancel moves the record to cancelled
func (r *ServiceRecord) Cancel() error {
	return r.transition(RecordStatusCancelled)
}

func (r *ServiceRecord) transition(to string) error {
	if !CanRecordTransition(r.Status, to) {
		return fmt.Errorf("invalid service record status transition: %s -> %s", r.Status, to)
	}
	r.Status = to
	return nil
}

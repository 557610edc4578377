package services

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Evian1k/VeloManage5/models"
	"gorm.io/gorm"
)

// Business hours and slot size for the appointment calendar
const (
	BusinessOpenHour    = 9
	BusinessCloseHour   = 17
	SlotDurationMinutes = 60
)

// SlotTimeLayout is the wire format for slot timestamps
const SlotTimeLayout = "2006-01-02T15:04:05"

// ErrSlotUnavailable is returned when a booking overlaps an existing
// scheduled or confirmed appointment.
var ErrSlotUnavailable = errors.New("requested slot conflicts with an existing appointment")

// SchedulingService generates available appointment slots and books
// appointments with an overlap check.
type SchedulingService struct {
	db *gorm.DB
}

// NewSchedulingService creates a SchedulingService
func NewSchedulingService(db *gorm.DB) *SchedulingService {
	return &SchedulingService{db: db}
}

// AvailableSlots enumerates the free slots on the given day. A slot is free
// when no scheduled or confirmed appointment overlaps its interval. The check
// is an interval overlap, not an exact-timestamp match, so appointments that
// start mid-slot or run long still block the slots they cover.
func (s *SchedulingService) AvailableSlots(day time.Time) ([]string, error) {
	open := time.Date(day.Year(), day.Month(), day.Day(), BusinessOpenHour, 0, 0, 0, day.Location())
	close := time.Date(day.Year(), day.Month(), day.Day(), BusinessCloseHour, 0, 0, 0, day.Location())

	appointments, err := s.activeAppointmentsBetween(s.db, open.Add(-24*time.Hour), close)
	if err != nil {
		return nil, err
	}

	slots := make([]string, 0)
	for start := open; start.Before(close); start = start.Add(SlotDurationMinutes * time.Minute) {
		end := start.Add(SlotDurationMinutes * time.Minute)
		if !anyOverlap(appointments, start, end, 0) {
			slots = append(slots, start.Format(SlotTimeLayout))
		}
	}
	return slots, nil
}

// Book creates the appointment after re-checking the overlap inside a
// serializable transaction, so two concurrent callers cannot both take the
// same slot. Returns ErrSlotUnavailable on conflict.
func (s *SchedulingService) Book(appointment *models.Appointment) error {
	start := appointment.AppointmentDate
	end := start.Add(time.Duration(appointment.DurationMinutes(SlotDurationMinutes)) * time.Minute)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.activeAppointmentsBetween(tx, start.Add(-24*time.Hour), end)
		if err != nil {
			return err
		}
		if anyOverlap(existing, start, end, appointment.ID) {
			return ErrSlotUnavailable
		}
		return tx.Create(appointment).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if isSerializationFailure(err) {
		// The losing transaction of two concurrent bookings aborts with a
		// serialization error; to the caller that is just a taken slot.
		return ErrSlotUnavailable
	}
	return err
}

// isSerializationFailure reports whether err is a serializable-isolation
// abort (Postgres SQLSTATE 40001).
func isSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sqlstate 40001") ||
		strings.Contains(msg, "could not serialize")
}

// activeAppointmentsBetween fetches scheduled/confirmed appointments that
// start in the window. The window's lower bound is padded by the caller so
// long-running appointments that started earlier are still considered.
func (s *SchedulingService) activeAppointmentsBetween(tx *gorm.DB, from, to time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := tx.
		Where("appointment_date >= ? AND appointment_date < ?", from, to).
		Where("status IN ?", []string{models.AppointmentStatusScheduled, models.AppointmentStatusConfirmed}).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func anyOverlap(appointments []models.Appointment, start, end time.Time, excludeID uint) bool {
	for i := range appointments {
		a := &appointments[i]
		if excludeID != 0 && a.ID == excludeID {
			continue
		}
		aStart := a.AppointmentDate
		aEnd := aStart.Add(time.Duration(a.DurationMinutes(SlotDurationMinutes)) * time.Minute)
		if aStart.Before(end) && aEnd.After(start) {
			return true
		}
	}
	return false
}

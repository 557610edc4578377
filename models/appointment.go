package models

import (
	"time"

	"gorm.io/gorm"
)

// Appointment statuses
const (
	AppointmentStatusScheduled  = "scheduled"
	AppointmentStatusConfirmed  = "confirmed"
	AppointmentStatusInProgress = "in_progress"
	AppointmentStatusCompleted  = "completed"
	AppointmentStatusCancelled  = "cancelled"
)

// Appointment represents a scheduled future service visit
type Appointment struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	CustomerID uint     `gorm:"not null;index" json:"customer_id"`
	Customer   *User    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	VehicleID  uint     `gorm:"not null;index" json:"vehicle_id"`
	Vehicle    *Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	ServiceID  uint     `gorm:"not null;index" json:"service_id"`
	Service    *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	MechanicID *uint    `gorm:"index" json:"mechanic_id"`
	Mechanic   *User    `gorm:"foreignKey:MechanicID" json:"mechanic,omitempty"`

	AppointmentDate   time.Time `gorm:"not null;index" json:"appointment_date"`
	EstimatedDuration *int      `json:"estimated_duration"` // minutes
	Status            string    `gorm:"size:20;not null;default:'scheduled'" json:"status"`

	Description     string `gorm:"type:text" json:"description"`
	SpecialRequests string `gorm:"type:text" json:"special_requests"`
	CustomerNotes   string `gorm:"type:text" json:"customer_notes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Appointment model
func (Appointment) TableName() string {
	return "appointments"
}

// Active reports whether the appointment still occupies its slot
func (a *Appointment) Active() bool {
	return a.Status == AppointmentStatusScheduled || a.Status == AppointmentStatusConfirmed
}

// DurationMinutes returns the estimated duration, falling back to fallback
// when none is set
func (a *Appointment) DurationMinutes(fallback int) int {
	if a.EstimatedDuration != nil && *a.EstimatedDuration > 0 {
		return *a.EstimatedDuration
	}
	return fallback
}

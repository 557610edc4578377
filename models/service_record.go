package models

import (
	"time"

	"gorm.io/gorm"
)

// ServiceRecord statuses
const (
	RecordStatusScheduled  = "scheduled"
	RecordStatusInProgress = "in_progress"
	RecordStatusCompleted  = "completed"
	RecordStatusCancelled  = "cancelled"
)

// ServiceRecord represents a historical record of a service performed on a vehicle
type ServiceRecord struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	VehicleID  uint     `gorm:"not null;index" json:"vehicle_id"`
	Vehicle    *Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	CustomerID uint     `gorm:"not null;index" json:"customer_id"`
	Customer   *User    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	ServiceID  uint     `gorm:"not null;index" json:"service_id"`
	Service    *Service `gorm:"foreignKey:ServiceID" json:"service_type,omitempty"`
	MechanicID *uint    `gorm:"index" json:"mechanic_id"`
	Mechanic   *User    `gorm:"foreignKey:MechanicID" json:"mechanic,omitempty"`

	ServiceDate      time.Time `gorm:"not null;index" json:"service_date"`
	MileageAtService int       `gorm:"not null" json:"mileage_at_service"`
	ActualDuration   *int      `json:"actual_duration"` // minutes
	ActualCost       *float64  `json:"actual_cost"`
	LaborCost        *float64  `json:"labor_cost"`
	PartsCost        *float64  `json:"parts_cost"`

	Status   string `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	Priority string `gorm:"size:20;not null;default:'normal'" json:"priority"` // low, normal, high, urgent

	Description        string     `gorm:"type:text" json:"description"`
	WorkPerformed      string     `gorm:"type:text" json:"work_performed"`
	Recommendations    string     `gorm:"type:text" json:"recommendations"`
	NextServiceMileage *int       `json:"next_service_mileage"`
	NextServiceDate    *time.Time `json:"next_service_date"`
	Images             StringList `gorm:"type:text" json:"images"`
	Notes              string     `gorm:"type:text" json:"notes"`

	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	UsedParts []ServiceRecordPart `gorm:"foreignKey:ServiceRecordID" json:"used_parts,omitempty"`
}

// TableName specifies the table name for the ServiceRecord model
func (ServiceRecord) TableName() string {
	return "service_records"
}

// TotalCost returns labor plus parts cost
func (r *ServiceRecord) TotalCost() float64 {
	var total float64
	if r.LaborCost != nil {
		total += *r.LaborCost
	}
	if r.PartsCost != nil {
		total += *r.PartsCost
	}
	return total
}

// ServiceRecordPart tracks a part consumed during a service
type ServiceRecordPart struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	ServiceRecordID uint     `gorm:"not null;index" json:"service_record_id"`
	PartID          uint     `gorm:"not null;index" json:"part_id"`
	Part            *Part    `gorm:"foreignKey:PartID" json:"part,omitempty"`
	QuantityUsed    int      `gorm:"not null" json:"quantity_used"`
	UnitCost        *float64 `json:"unit_cost"`
	TotalCost       *float64 `json:"total_cost"`
}

// TableName specifies the table name for the ServiceRecordPart model
func (ServiceRecordPart) TableName() string {
	return "service_record_parts"
}

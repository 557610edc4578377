package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Vehicle statuses
const (
	VehicleStatusAvailable   = "available"
	VehicleStatusInService   = "in_service"
	VehicleStatusSold        = "sold"
	VehicleStatusMaintenance = "maintenance"
)

// Vehicle represents a car in the fleet/customer inventory
type Vehicle struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	VIN                string         `gorm:"column:vin;uniqueIndex;size:17;not null" json:"vin"`
	Make               string         `gorm:"size:50;not null" json:"make"`
	Model              string         `gorm:"size:50;not null" json:"model"`
	Year               int            `gorm:"not null" json:"year"`
	Color              string         `gorm:"size:30" json:"color"`
	Mileage            int            `gorm:"default:0" json:"mileage"`
	FuelType           string         `gorm:"size:20" json:"fuel_type"`    // gasoline, diesel, electric, hybrid
	Transmission       string         `gorm:"size:20" json:"transmission"` // manual, automatic, cvt
	EngineSize         string         `gorm:"size:20" json:"engine_size"`
	LicensePlate       string         `gorm:"size:20" json:"license_plate"`
	RegistrationExpiry *time.Time     `json:"registration_expiry"`
	InsuranceExpiry    *time.Time     `json:"insurance_expiry"`
	Status             string         `gorm:"size:20;not null;default:'available'" json:"status"`
	Location           string         `gorm:"size:100" json:"location"`
	PurchasePrice      *float64       `json:"purchase_price"`
	CurrentValue       *float64       `json:"current_value"`
	SalePrice          *float64       `json:"sale_price"`
	OwnerID            *uint          `gorm:"index" json:"owner_id"`
	Owner              *User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	IsCompanyOwned     bool           `gorm:"default:false" json:"is_company_owned"`
	Features           StringList     `gorm:"type:text" json:"features"`
	Images             StringList     `gorm:"type:text" json:"images"`
	Notes              string         `gorm:"type:text" json:"notes"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Vehicle model
func (Vehicle) TableName() string {
	return "vehicles"
}

// FullName returns the "year make model" display name
func (v *Vehicle) FullName() string {
	return fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model)
}

// OwnedBy reports whether the vehicle belongs to the given user
func (v *Vehicle) OwnedBy(userID uint) bool {
	return v.OwnerID != nil && *v.OwnerID == userID
}

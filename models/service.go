package models

import (
	"time"

	"gorm.io/gorm"
)

// Service represents a catalog entry describing a type of maintenance work
type Service struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Name              string         `gorm:"size:100;not null" json:"name"`
	Description       string         `gorm:"type:text" json:"description"`
	Category          string         `gorm:"size:50;not null" json:"category"` // maintenance, repair, inspection, emergency
	EstimatedDuration *int           `json:"estimated_duration"`               // minutes
	EstimatedCost     *float64       `json:"estimated_cost"`
	MileageInterval   *int           `json:"mileage_interval"` // miles between services
	IsActive          bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	Parts []ServicePart `gorm:"foreignKey:ServiceID" json:"parts,omitempty"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}

// Part represents an inventory part used by services
type Part struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:100;not null" json:"name"`
	PartNumber    string         `gorm:"uniqueIndex;size:50" json:"part_number"`
	Description   string         `gorm:"type:text" json:"description"`
	Category      string         `gorm:"size:50" json:"category"` // engine, transmission, brakes, electrical, ...
	Manufacturer  string         `gorm:"size:100" json:"manufacturer"`
	UnitCost      *float64       `json:"unit_cost"`
	UnitPrice     *float64       `json:"unit_price"`
	StockQuantity int            `gorm:"default:0" json:"stock_quantity"`
	MinStockLevel int            `gorm:"default:5" json:"min_stock_level"`
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Part model
func (Part) TableName() string {
	return "parts"
}

// ApplyStockDelta adjusts the stock quantity by delta, never below zero
func (p *Part) ApplyStockDelta(delta int) {
	p.StockQuantity += delta
	if p.StockQuantity < 0 {
		p.StockQuantity = 0
	}
}

// IsLowStock reports whether the part is at or below its minimum stock level
func (p *Part) IsLowStock() bool {
	return p.StockQuantity <= p.MinStockLevel
}

// ServicePart links a service with a part it requires
type ServicePart struct {
	ID               uint  `gorm:"primaryKey" json:"id"`
	ServiceID        uint  `gorm:"not null;index" json:"service_id"`
	PartID           uint  `gorm:"not null;index" json:"part_id"`
	Part             *Part `gorm:"foreignKey:PartID" json:"part,omitempty"`
	QuantityRequired int   `gorm:"not null;default:1" json:"quantity_required"`
	IsOptional       bool  `gorm:"default:false" json:"is_optional"`
}

// TableName specifies the table name for the ServicePart model
func (ServicePart) TableName() string {
	return "service_parts"
}

package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Incident statuses
const (
	IncidentStatusOpen       = "open"
	IncidentStatusInProgress = "in_progress"
	IncidentStatusResolved   = "resolved"
	IncidentStatusClosed     = "closed"
)

// Incident priorities
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Vote types accepted by ApplyVote
const (
	VoteUp   = "upvote"
	VoteDown = "downvote"
)

// IncidentCategories is the fixed set of report categories
var IncidentCategories = []string{
	"infrastructure",
	"safety",
	"environmental",
	"traffic",
	"public_service",
	"other",
}

// Incident represents a civic issue report with location, category and status
type Incident struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Title       string  `gorm:"size:200;not null" json:"title"`
	Description string  `gorm:"type:text;not null" json:"description"`
	Category    string  `gorm:"size:50;not null" json:"category"`
	Status      string  `gorm:"size:20;not null;default:'open'" json:"status"`
	Priority    string  `gorm:"size:20;not null;default:'medium'" json:"priority"`
	Latitude    float64 `gorm:"not null" json:"latitude"`
	Longitude   float64 `gorm:"not null" json:"longitude"`
	Address     string  `gorm:"size:500" json:"address"`
	City        string  `gorm:"size:100" json:"city"`
	State       string  `gorm:"size:100" json:"state"`
	ZipCode     string  `gorm:"size:20" json:"zip_code"`

	Images             StringList `gorm:"type:text" json:"images"`
	ContactInfo        JSONMap    `gorm:"type:text" json:"contact_info"`
	EstimatedCost      *float64   `json:"estimated_cost"`
	EstimatedTimeframe string     `gorm:"size:100" json:"estimated_timeframe"`

	ReportedBy    uint  `gorm:"not null;index" json:"reported_by"`
	Reporter      *User `gorm:"foreignKey:ReportedBy" json:"reporter,omitempty"`
	AssignedTo    *uint `gorm:"index" json:"assigned_to"`
	AssignedAdmin *User `gorm:"foreignKey:AssignedTo" json:"assigned_admin,omitempty"`

	ResolvedAt      *time.Time `json:"resolved_at"`
	ResolutionNotes string     `gorm:"type:text" json:"resolution_notes"`

	Upvotes   int `gorm:"default:0" json:"upvotes"`
	Downvotes int `gorm:"default:0" json:"downvotes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Incident model
func (Incident) TableName() string {
	return "incidents"
}

// MarshalJSON adds the computed vote_count field to incident payloads
func (i Incident) MarshalJSON() ([]byte, error) {
	type alias Incident
	return json.Marshal(struct {
		alias
		VoteCount int `json:"vote_count"`
	}{alias(i), i.VoteCount()})
}

// VoteCount returns the net vote count. It is computed on read and never stored.
func (i *Incident) VoteCount() int {
	return i.Upvotes - i.Downvotes
}

// ApplyVote increments the counter matching voteType. The vote type must be
// "upvote" or "downvote"; anything else is an invalid argument.
func (i *Incident) ApplyVote(voteType string) error {
	switch voteType {
	case VoteUp:
		i.Upvotes++
	case VoteDown:
		i.Downvotes++
	default:
		return fmt.Errorf("vote type must be %q or %q", VoteUp, VoteDown)
	}
	return nil
}

// ValidIncidentCategory reports whether category is in the fixed set
func ValidIncidentCategory(category string) bool {
	for _, c := range IncidentCategories {
		if c == category {
			return true
		}
	}
	return false
}

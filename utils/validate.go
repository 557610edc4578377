package utils

import (
	"strings"

	"github.com/Evian1k/VeloManage5/models"
)

// Validators are pure and total: they take the submitted fields and return a
// list of human-readable problems. An empty list means the input is valid.

// UserInput holds the fields checked during registration and profile updates.
// Nil pointers mean "not submitted" and are skipped.
type UserInput struct {
	Email     *string
	Password  *string
	Username  *string
	FirstName *string
	LastName  *string
}

// ValidateUser checks registration/login fields
func ValidateUser(in UserInput) []string {
	var errs []string

	if in.Email != nil {
		if *in.Email == "" || !strings.Contains(*in.Email, "@") {
			errs = append(errs, "Valid email is required")
		}
	}
	if in.Password != nil {
		if len(*in.Password) < 6 {
			errs = append(errs, "Password must be at least 6 characters")
		}
	}
	if in.Username != nil {
		if len(*in.Username) < 3 {
			errs = append(errs, "Username must be at least 3 characters")
		}
	}
	if in.FirstName != nil && *in.FirstName == "" {
		errs = append(errs, "First name is required")
	}
	if in.LastName != nil && *in.LastName == "" {
		errs = append(errs, "Last name is required")
	}

	return errs
}

// IncidentInput holds the fields checked when reporting an incident.
// Latitude/Longitude are nil when the coordinates were absent or not numeric.
type IncidentInput struct {
	Title       string
	Description string
	Category    string
	Latitude    *float64
	Longitude   *float64
}

// ValidateIncident checks an incident report
func ValidateIncident(in IncidentInput) []string {
	var errs []string

	if len(in.Title) < 5 {
		errs = append(errs, "Title must be at least 5 characters")
	}
	if len(in.Description) < 10 {
		errs = append(errs, "Description must be at least 10 characters")
	}
	if in.Category == "" {
		errs = append(errs, "Category is required")
	} else if !models.ValidIncidentCategory(in.Category) {
		errs = append(errs, "Invalid category")
	}
	if in.Latitude == nil || in.Longitude == nil {
		errs = append(errs, "Location coordinates are required")
	} else {
		if *in.Latitude < -90 || *in.Latitude > 90 {
			errs = append(errs, "Invalid latitude")
		}
		if *in.Longitude < -180 || *in.Longitude > 180 {
			errs = append(errs, "Invalid longitude")
		}
	}

	return errs
}

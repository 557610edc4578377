package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestValidateUserValid(t *testing.T) {
	errs := ValidateUser(UserInput{
		Email:     strPtr("jane@example.com"),
		Password:  strPtr("secret123"),
		Username:  strPtr("jane"),
		FirstName: strPtr("Jane"),
		LastName:  strPtr("Doe"),
	})
	assert.Empty(t, errs)
}

func TestValidateUserCollectsAllErrors(t *testing.T) {
	errs := ValidateUser(UserInput{
		Email:    strPtr("not-an-email"),
		Password: strPtr("abc"),
		Username: strPtr("ab"),
	})
	assert.Contains(t, errs, "Valid email is required")
	assert.Contains(t, errs, "Password must be at least 6 characters")
	assert.Contains(t, errs, "Username must be at least 3 characters")
	assert.Len(t, errs, 3)
}

func TestValidateUserSkipsUnsubmittedFields(t *testing.T) {
	// nil fields mean the caller is doing a partial update
	errs := ValidateUser(UserInput{Email: strPtr("jane@example.com")})
	assert.Empty(t, errs)
}

func TestValidateIncidentValid(t *testing.T) {
	errs := ValidateIncident(IncidentInput{
		Title:       "Pothole on 5th Ave",
		Description: "Large pothole causing traffic issues near the intersection",
		Category:    "infrastructure",
		Latitude:    floatPtr(45.0),
		Longitude:   floatPtr(-120.0),
	})
	assert.Empty(t, errs)
}

func TestValidateIncidentErrors(t *testing.T) {
	testCases := []struct {
		name     string
		input    IncidentInput
		expected string
	}{
		{
			name: "short title",
			input: IncidentInput{
				Title:       "Bad",
				Description: "Long enough description here",
				Category:    "safety",
				Latitude:    floatPtr(45.0),
				Longitude:   floatPtr(-120.0),
			},
			expected: "Title must be at least 5 characters",
		},
		{
			name: "short description",
			input: IncidentInput{
				Title:       "Pothole!",
				Description: "Short",
				Category:    "safety",
				Latitude:    floatPtr(45.0),
				Longitude:   floatPtr(-120.0),
			},
			expected: "Description must be at least 10 characters",
		},
		{
			name: "unknown category",
			input: IncidentInput{
				Title:       "Pothole on 5th Ave",
				Description: "Large pothole causing issues",
				Category:    "weather",
				Latitude:    floatPtr(45.0),
				Longitude:   floatPtr(-120.0),
			},
			expected: "Invalid category",
		},
		{
			name: "missing coordinates",
			input: IncidentInput{
				Title:       "Pothole on 5th Ave",
				Description: "Large pothole causing issues",
				Category:    "safety",
			},
			expected: "Location coordinates are required",
		},
		{
			name: "latitude out of range",
			input: IncidentInput{
				Title:       "Pothole on 5th Ave",
				Description: "Large pothole causing issues",
				Category:    "safety",
				Latitude:    floatPtr(95.0),
				Longitude:   floatPtr(-120.0),
			},
			expected: "Invalid latitude",
		},
		{
			name: "longitude out of range",
			input: IncidentInput{
				Title:       "Pothole on 5th Ave",
				Description: "Large pothole causing issues",
				Category:    "safety",
				Latitude:    floatPtr(45.0),
				Longitude:   floatPtr(-200.0),
			},
			expected: "Invalid longitude",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateIncident(tc.input)
			assert.Contains(t, errs, tc.expected)
		})
	}
}

func TestValidateIncidentBoundaryCoordinates(t *testing.T) {
	errs := ValidateIncident(IncidentInput{
		Title:       "Issue at the pole",
		Description: "Something happened at the boundary",
		Category:    "other",
		Latitude:    floatPtr(90.0),
		Longitude:   floatPtr(-180.0),
	})
	assert.Empty(t, errs)
}

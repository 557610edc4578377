package services

import (
	"errors"

	"github.com/Evian1k/VeloManage5/models"
	"gorm.io/gorm"
)

// DefaultServiceDueMiles is the mileage accumulated since the last completed
// service after which a vehicle is considered due.
const DefaultServiceDueMiles = 3000

// DueForService reports whether a vehicle needs servicing. When the vehicle
// has a completed service record, it is due once the mileage delta since that
// service reaches the threshold; otherwise its total mileage is compared
// against the threshold directly.
func DueForService(currentMileage int, lastServiceMileage *int, threshold int) bool {
	if lastServiceMileage != nil {
		return currentMileage-*lastServiceMileage >= threshold
	}
	return currentMileage >= threshold
}

// ReminderService answers service-due questions against stored history
type ReminderService struct {
	db        *gorm.DB
	threshold int
}

// NewReminderService creates a ReminderService. threshold <= 0 selects the
// default.
func NewReminderService(db *gorm.DB, threshold int) *ReminderService {
	if threshold <= 0 {
		threshold = DefaultServiceDueMiles
	}
	return &ReminderService{db: db, threshold: threshold}
}

// LastCompletedService returns the vehicle's most recent completed service
// record by service date, or nil when there is none.
func (s *ReminderService) LastCompletedService(vehicleID uint) (*models.ServiceRecord, error) {
	var record models.ServiceRecord
	err := s.db.
		Where("vehicle_id = ? AND status = ?", vehicleID, models.RecordStatusCompleted).
		Order("service_date DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// VehicleDue reports whether the vehicle is due for service and returns the
// record the decision was based on (nil when the vehicle has no history).
func (s *ReminderService) VehicleDue(vehicle *models.Vehicle) (bool, *models.ServiceRecord, error) {
	last, err := s.LastCompletedService(vehicle.ID)
	if err != nil {
		return false, nil, err
	}
	var lastMileage *int
	if last != nil {
		lastMileage = &last.MileageAtService
	}
	return DueForService(vehicle.Mileage, lastMileage, s.threshold), last, nil
}

// VehiclesDue returns every vehicle currently due for service
func (s *ReminderService) VehiclesDue() ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := s.db.Find(&vehicles).Error; err != nil {
		return nil, err
	}

	due := make([]models.Vehicle, 0)
	for i := range vehicles {
		isDue, _, err := s.VehicleDue(&vehicles[i])
		if err != nil {
			return nil, err
		}
		if isDue {
			due = append(due, vehicles[i])
		}
	}
	return due, nil
}

package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Evian1k/VeloManage5/models"
	"github.com/Evian1k/VeloManage5/services"
)

// VehicleController handles vehicle CRUD and per-vehicle reporting
type VehicleController struct {
	DB        *gorm.DB
	Reminders *services.ReminderService
}

func NewVehicleController(db *gorm.DB, reminders *services.ReminderService) *VehicleController {
	return &VehicleController{DB: db, Reminders: reminders}
}

// GetVehicles lists vehicles visible to the caller. Customers see their own
// vehicles, mechanics and admins see everything.
func (vc *VehicleController) GetVehicles(c *gin.Context) {
	user, ok := loadCurrentUser(c, vc.DB)
	if !ok {
		return
	}

	query := vc.DB.Preload("Owner").Order("created_at DESC")
	if user.IsCustomer() {
		query = query.Where("owner_id = ?", user.ID)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if make := c.Query("make"); make != "" {
		query = query.Where("make = ?", make)
	}

	var vehicles []models.Vehicle
	if err := query.Find(&vehicles).Error; err != nil {
		respondServerError(c, "Failed to fetch vehicles")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    vehicles,
	})
}

// GetVehicle returns a single vehicle the caller is allowed to see
func (vc *VehicleController) GetVehicle(c *gin.Context) {
	user, ok := loadCurrentUser(c, vc.DB)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var vehicle models.Vehicle
	if err := vc.DB.Preload("Owner").First(&vehicle, id).Error; err != nil {
		respondNotFound(c, "VEHICLE_NOT_FOUND", "Vehicle not found")
		return
	}

	if user.IsCustomer() && !vehicle.OwnedBy(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have access to this vehicle",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    vehicle,
	})
}

type vehicleRequest struct {
	VIN                string            `json:"vin"`
	Make               string            `json:"make"`
	Model              string            `json:"model"`
	Year               int               `json:"year"`
	Color              string            `json:"color"`
	Mileage            int               `json:"mileage"`
	FuelType           string            `json:"fuel_type"`
	Transmission       string            `json:"transmission"`
	EngineSize         string            `json:"engine_size"`
	LicensePlate       string            `json:"license_plate"`
	RegistrationExpiry *time.Time        `json:"registration_expiry"`
	InsuranceExpiry    *time.Time        `json:"insurance_expiry"`
	Status             string            `json:"status"`
	Location           string            `json:"location"`
	PurchasePrice      *float64          `json:"purchase_price"`
	CurrentValue       *float64          `json:"current_value"`
	OwnerID            *uint             `json:"owner_id"`
	IsCompanyOwned     bool              `json:"is_company_owned"`
	Features           models.StringList `json:"features"`
	Images             models.StringList `json:"images"`
	Notes              string            `json:"notes"`
}

// CreateVehicle registers a new vehicle. Customers always become the owner
// of the vehicles they create.
func (vc *VehicleController) CreateVehicle(c *gin.Context) {
	user, ok := loadCurrentUser(c, vc.DB)
	if !ok {
		return
	}

	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request body",
			},
		})
		return
	}

	var errs []string
	if req.VIN == "" {
		errs = append(errs, "VIN is required")
	}
	if req.Make == "" {
		errs = append(errs, "Make is required")
	}
	if req.Model == "" {
		errs = append(errs, "Model is required")
	}
	if req.Year < 1900 || req.Year > time.Now().Year()+1 {
		errs = append(errs, "Invalid year")
	}
	if len(errs) > 0 {
		respondValidationErrors(c, errs)
		return
	}

	vehicle := models.Vehicle{
		VIN:                req.VIN,
		Make:               req.Make,
		Model:              req.Model,
		Year:               req.Year,
		Color:              req.Color,
		Mileage:            req.Mileage,
		FuelType:           req.FuelType,
		Transmission:       req.Transmission,
		EngineSize:         req.EngineSize,
		LicensePlate:       req.LicensePlate,
		RegistrationExpiry: req.RegistrationExpiry,
		InsuranceExpiry:    req.InsuranceExpiry,
		Status:             req.Status,
		Location:           req.Location,
		PurchasePrice:      req.PurchasePrice,
		CurrentValue:       req.CurrentValue,
		IsCompanyOwned:     req.IsCompanyOwned,
		Features:           req.Features,
		Images:             req.Images,
		Notes:              req.Notes,
	}
	if vehicle.Status == "" {
		vehicle.Status = models.VehicleStatusAvailable
	}

	if user.IsCustomer() {
		ownerID := user.ID
		vehicle.OwnerID = &ownerID
		vehicle.IsCompanyOwned = false
	} else {
		vehicle.OwnerID = req.OwnerID
	}

	if err := vc.DB.Create(&vehicle).Error; err != nil {
		if isDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VIN_EXISTS",
					"message": "A vehicle with this VIN already exists",
				},
			})
			return
		}
		logrus.WithError(err).Error("failed to create vehicle")
		respondServerError(c, "Failed to create vehicle")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    vehicle,
	})
}

type vehicleUpdateRequest struct {
	Color              *string            `json:"color"`
	Mileage            *int               `json:"mileage"`
	FuelType           *string            `json:"fuel_type"`
	Transmission       *string            `json:"transmission"`
	EngineSize         *string            `json:"engine_size"`
	LicensePlate       *string            `json:"license_plate"`
	RegistrationExpiry *time.Time         `json:"registration_expiry"`
	InsuranceExpiry    *time.Time         `json:"insurance_expiry"`
	Status             *string            `json:"status"`
	Location           *string            `json:"location"`
	CurrentValue       *float64           `json:"current_value"`
	SalePrice          *float64           `json:"sale_price"`
	Features           *models.StringList `json:"features"`
	Images             *models.StringList `json:"images"`
	Notes              *string            `json:"notes"`
}

// UpdateVehicle applies a partial update. Customers may only update their
// own vehicles.
func (vc *VehicleController) UpdateVehicle(c *gin.Context) {
	user, ok := loadCurrentUser(c, vc.DB)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var vehicle models.Vehicle
	if err := vc.DB.First(&vehicle, id).Error; err != nil {
		respondNotFound(c, "VEHICLE_NOT_FOUND", "Vehicle not found")
		return
	}

	if user.IsCustomer() && !vehicle.OwnedBy(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have access to this vehicle",
			},
		})
		return
	}

	var req vehicleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request body",
			},
		})
		return
	}

	if req.Color != nil {
		vehicle.Color = *req.Color
	}
	if req.Mileage != nil {
		if *req.Mileage < vehicle.Mileage {
			respondValidationErrors(c, []string{"Mileage cannot decrease"})
			return
		}
		vehicle.Mileage = *req.Mileage
	}
	if req.FuelType != nil {
		vehicle.FuelType = *req.FuelType
	}
	if req.Transmission != nil {
		vehicle.Transmission = *req.Transmission
	}
	if req.EngineSize != nil {
		vehicle.EngineSize = *req.EngineSize
	}
	if req.LicensePlate != nil {
		vehicle.LicensePlate = *req.LicensePlate
	}
	if req.RegistrationExpiry != nil {
		vehicle.RegistrationExpiry = req.RegistrationExpiry
	}
	if req.InsuranceExpiry != nil {
		vehicle.InsuranceExpiry = req.InsuranceExpiry
	}
	if req.Status != nil {
		vehicle.Status = *req.Status
	}
	if req.Location != nil {
		vehicle.Location = *req.Location
	}
	if req.CurrentValue != nil {
		vehicle.CurrentValue = req.CurrentValue
	}
	if req.SalePrice != nil {
		vehicle.SalePrice = req.SalePrice
	}
	if req.Features != nil {
		vehicle.Features = *req.Features
	}
	if req.Images != nil {
		vehicle.Images = *req.Images
	}
	if req.Notes != nil {
		vehicle.Notes = *req.Notes
	}

	if err := vc.DB.Save(&vehicle).Error; err != nil {
		respondServerError(c, "Failed to update vehicle")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    vehicle,
	})
}

// DeleteVehicle soft deletes a vehicle. Owner or admin.
func (vc *VehicleController) DeleteVehicle(c *gin.Context) {
	user, ok := loadCurrentUser(c, vc.DB)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var vehicle models.Vehicle
	if err := vc.DB.First(&vehicle, id).Error; err != nil {
		respondNotFound(c, "VEHICLE_NOT_FOUND", "Vehicle not found")
		return
	}

	if user.Role != models.RoleAdmin && (vehicle.OwnerID == nil || *vehicle.OwnerID != user.ID) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You can only delete your own vehicles",
			},
		})
		return
	}

	if err := vc.DB.Delete(&vehicle).Error; err != nil {
		respondServerError(c, "Failed to delete vehicle")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "Vehicle deleted successfully",
		},
	})
}

// GetServiceHistory returns a vehicle's service records, newest first
func (vc *VehicleController) GetServiceHistory(c *gin.Context) {
	user, ok := loadCurrentUser(c, vc.DB)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var vehicle models.Vehicle
	if err := vc.DB.First(&vehicle, id).Error; err != nil {
		respondNotFound(c, "VEHICLE_NOT_FOUND", "Vehicle not found")
		return
	}
	if user.IsCustomer() && !vehicle.OwnedBy(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have access to this vehicle",
			},
		})
		return
	}

	var records []models.ServiceRecord
	if err := vc.DB.Preload("Service").Preload("Mechanic").
		Where("vehicle_id = ?", vehicle.ID).
		Order("service_date DESC").
		Find(&records).Error; err != nil {
		respondServerError(c, "Failed to fetch service history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    records,
	})
}

// GetServiceReminder reports whether a vehicle is due for service based on
// mileage accumulated since its last completed service.
func (vc *VehicleController) GetServiceReminder(c *gin.Context) {
	user, ok := loadCurrentUser(c, vc.DB)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var vehicle models.Vehicle
	if err := vc.DB.First(&vehicle, id).Error; err != nil {
		respondNotFound(c, "VEHICLE_NOT_FOUND", "Vehicle not found")
		return
	}
	if user.IsCustomer() && !vehicle.OwnedBy(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have access to this vehicle",
			},
		})
		return
	}

	due, last, err := vc.Reminders.VehicleDue(&vehicle)
	if err != nil {
		respondServerError(c, "Failed to compute service reminder")
		return
	}

	data := gin.H{
		"vehicle_id":      vehicle.ID,
		"current_mileage": vehicle.Mileage,
		"due_for_service": due,
	}
	if last != nil {
		data["last_service_mileage"] = last.MileageAtService
		data["last_service_date"] = last.ServiceDate
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// SearchVehicles performs a text search over make, model and VIN
func (vc *VehicleController) SearchVehicles(c *gin.Context) {
	user, ok := loadCurrentUser(c, vc.DB)
	if !ok {
		return
	}

	term := c.Query("q")
	if term == "" {
		respondValidationErrors(c, []string{"Search query is required"})
		return
	}

	pattern := "%" + term + "%"
	query := vc.DB.Preload("Owner").
		Where("make LIKE ? OR model LIKE ? OR vin LIKE ?", pattern, pattern, pattern)
	if user.IsCustomer() {
		query = query.Where("owner_id = ?", user.ID)
	}

	var vehicles []models.Vehicle
	if err := query.Find(&vehicles).Error; err != nil {
		respondServerError(c, "Failed to search vehicles")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    vehicles,
	})
}

package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Evian1k/VeloManage5/models"
)

// ServiceController handles the service catalog, parts inventory and
// service records.
type ServiceController struct {
	DB *gorm.DB
}

func NewServiceController(db *gorm.DB) *ServiceController {
	return &ServiceController{DB: db}
}

// GetServices lists active catalog services
func (sc *ServiceController) GetServices(c *gin.Context) {
	query := sc.DB.Preload("Parts").Order("name")
	if c.Query("include_inactive") != "true" {
		query = query.Where("is_active = ?", true)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var services []models.Service
	if err := query.Find(&services).Error; err != nil {
		respondServerError(c, "Failed to fetch services")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    services,
	})
}

// GetService returns a single catalog service with its parts
func (sc *ServiceController) GetService(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var service models.Service
	if err := sc.DB.Preload("Parts").First(&service, id).Error; err != nil {
		respondNotFound(c, "SERVICE_NOT_FOUND", "Service not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    service,
	})
}

type serviceRequest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Category          string   `json:"category"`
	EstimatedDuration *int     `json:"estimated_duration"`
	EstimatedCost     *float64 `json:"estimated_cost"`
	MileageInterval   *int     `json:"mileage_interval"`
}

// CreateService adds a catalog service. Admin only.
func (sc *ServiceController) CreateService(c *gin.Context) {
	if _, ok := requireAdmin(c, sc.DB); !ok {
		return
	}

	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Service name is required",
			},
		})
		return
	}

	service := models.Service{
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		EstimatedDuration: req.EstimatedDuration,
		EstimatedCost:     req.EstimatedCost,
		MileageInterval:   req.MileageInterval,
		IsActive:          true,
	}

	if err := sc.DB.Create(&service).Error; err != nil {
		logrus.WithError(err).Error("failed to create service")
		respondServerError(c, "Failed to create service")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    service,
	})
}

type serviceUpdateRequest struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	Category          *string  `json:"category"`
	EstimatedDuration *int     `json:"estimated_duration"`
	EstimatedCost     *float64 `json:"estimated_cost"`
	MileageInterval   *int     `json:"mileage_interval"`
	IsActive          *bool    `json:"is_active"`
}

// UpdateService applies a partial update to a catalog service. Admin only.
func (sc *ServiceController) UpdateService(c *gin.Context) {
	if _, ok := requireAdmin(c, sc.DB); !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var service models.Service
	if err := sc.DB.First(&service, id).Error; err != nil {
		respondNotFound(c, "SERVICE_NOT_FOUND", "Service not found")
		return
	}

	var req serviceUpdateRequest
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

	if req.Name != nil {
		service.Name = *req.Name
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.Category != nil {
		service.Category = *req.Category
	}
	if req.EstimatedDuration != nil {
		service.EstimatedDuration = req.EstimatedDuration
	}
	if req.EstimatedCost != nil {
		service.EstimatedCost = req.EstimatedCost
	}
	if req.MileageInterval != nil {
		service.MileageInterval = req.MileageInterval
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}

	if err := sc.DB.Save(&service).Error; err != nil {
		respondServerError(c, "Failed to update service")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    service,
	})
}

// DeleteService deactivates a catalog service rather than removing it, so
// existing records keep their reference. Admin only.
func (sc *ServiceController) DeleteService(c *gin.Context) {
	if _, ok := requireAdmin(c, sc.DB); !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var service models.Service
	if err := sc.DB.First(&service, id).Error; err != nil {
		respondNotFound(c, "SERVICE_NOT_FOUND", "Service not found")
		return
	}

	if err := sc.DB.Model(&service).Update("is_active", false).Error; err != nil {
		respondServerError(c, "Failed to deactivate service")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "Service deactivated successfully",
		},
	})
}

// GetParts lists inventory parts with an optional low-stock filter
func (sc *ServiceController) GetParts(c *gin.Context) {
	query := sc.DB.Order("name")
	if c.Query("include_inactive") != "true" {
		query = query.Where("is_active = ?", true)
	}
	if c.Query("low_stock") == "true" {
		query = query.Where("stock_quantity <= min_stock_level")
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var parts []models.Part
	if err := query.Find(&parts).Error; err != nil {
		respondServerError(c, "Failed to fetch parts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    parts,
	})
}

// GetPart returns a single part by id
func (sc *ServiceController) GetPart(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var part models.Part
	if err := sc.DB.First(&part, id).Error; err != nil {
		respondNotFound(c, "PART_NOT_FOUND", "Part not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    part,
	})
}

type partRequest struct {
	Name          string   `json:"name"`
	PartNumber    string   `json:"part_number"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Manufacturer  string   `json:"manufacturer"`
	UnitCost      *float64 `json:"unit_cost"`
	UnitPrice     *float64 `json:"unit_price"`
	StockQuantity int      `json:"stock_quantity"`
	MinStockLevel int      `json:"min_stock_level"`
}

// CreatePart adds an inventory part. Admin only.
func (sc *ServiceController) CreatePart(c *gin.Context) {
	if _, ok := requireAdmin(c, sc.DB); !ok {
		return
	}

	var req partRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.PartNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Part name and part number are required",
			},
		})
		return
	}

	part := models.Part{
		Name:          req.Name,
		PartNumber:    req.PartNumber,
		Description:   req.Description,
		Category:      req.Category,
		Manufacturer:  req.Manufacturer,
		UnitCost:      req.UnitCost,
		UnitPrice:     req.UnitPrice,
		StockQuantity: req.StockQuantity,
		MinStockLevel: req.MinStockLevel,
		IsActive:      true,
	}
	if part.MinStockLevel == 0 {
		part.MinStockLevel = 5
	}

	if err := sc.DB.Create(&part).Error; err != nil {
		if isDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PART_NUMBER_EXISTS",
					"message": "A part with this part number already exists",
				},
			})
			return
		}
		logrus.WithError(err).Error("failed to create part")
		respondServerError(c, "Failed to create part")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    part,
	})
}

type partUpdateRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	Manufacturer  *string  `json:"manufacturer"`
	UnitCost      *float64 `json:"unit_cost"`
	UnitPrice     *float64 `json:"unit_price"`
	MinStockLevel *int     `json:"min_stock_level"`
	IsActive      *bool    `json:"is_active"`
}

// UpdatePart applies a partial update to a part. Admin only.
func (sc *ServiceController) UpdatePart(c *gin.Context) {
	if _, ok := requireAdmin(c, sc.DB); !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var part models.Part
	if err := sc.DB.First(&part, id).Error; err != nil {
		respondNotFound(c, "PART_NOT_FOUND", "Part not found")
		return
	}

	var req partUpdateRequest
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

	if req.Name != nil {
		part.Name = *req.Name
	}
	if req.Description != nil {
		part.Description = *req.Description
	}
	if req.Category != nil {
		part.Category = *req.Category
	}
	if req.Manufacturer != nil {
		part.Manufacturer = *req.Manufacturer
	}
	if req.UnitCost != nil {
		part.UnitCost = req.UnitCost
	}
	if req.UnitPrice != nil {
		part.UnitPrice = req.UnitPrice
	}
	if req.MinStockLevel != nil {
		part.MinStockLevel = *req.MinStockLevel
	}
	if req.IsActive != nil {
		part.IsActive = *req.IsActive
	}

	if err := sc.DB.Save(&part).Error; err != nil {
		respondServerError(c, "Failed to update part")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    part,
	})
}

type stockRequest struct {
	Delta int `json:"delta"`
}

// AdjustPartStock applies a stock delta, clamped at zero. Admin only.
func (sc *ServiceController) AdjustPartStock(c *gin.Context) {
	if _, ok := requireAdmin(c, sc.DB); !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var part models.Part
	if err := sc.DB.First(&part, id).Error; err != nil {
		respondNotFound(c, "PART_NOT_FOUND", "Part not found")
		return
	}

	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Delta == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "A non-zero delta is required",
			},
		})
		return
	}

	part.ApplyStockDelta(req.Delta)
	if err := sc.DB.Model(&part).Update("stock_quantity", part.StockQuantity).Error; err != nil {
		respondServerError(c, "Failed to adjust stock")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":             part.ID,
			"stock_quantity": part.StockQuantity,
			"low_stock":      part.IsLowStock(),
		},
	})
}

// GetServiceRecords lists service records visible to the caller
func (sc *ServiceController) GetServiceRecords(c *gin.Context) {
	user, ok := loadCurrentUser(c, sc.DB)
	if !ok {
		return
	}

	query := sc.DB.Preload("Vehicle").Preload("Service").Preload("Mechanic").
		Order("service_date DESC")
	switch {
	case user.IsCustomer():
		query = query.Where("customer_id = ?", user.ID)
	case user.IsMechanic():
		query = query.Where("mechanic_id = ?", user.ID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var records []models.ServiceRecord
	if err := query.Find(&records).Error; err != nil {
		respondServerError(c, "Failed to fetch service records")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    records,
	})
}

// GetServiceRecord returns a single service record
func (sc *ServiceController) GetServiceRecord(c *gin.Context) {
	user, ok := loadCurrentUser(c, sc.DB)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var record models.ServiceRecord
	if err := sc.DB.Preload("Vehicle").Preload("Service").Preload("Mechanic").
		Preload("UsedParts").Preload("UsedParts.Part").
		First(&record, id).Error; err != nil {
		respondNotFound(c, "RECORD_NOT_FOUND", "Service record not found")
		return
	}

	if user.IsCustomer() && record.CustomerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have access to this record",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    record,
	})
}

type serviceRecordRequest struct {
	VehicleID        uint       `json:"vehicle_id"`
	CustomerID       uint       `json:"customer_id"`
	ServiceID        uint       `json:"service_id"`
	MechanicID       *uint      `json:"mechanic_id"`
	ServiceDate      time.Time  `json:"service_date"`
	MileageAtService int        `json:"mileage_at_service"`
	Priority         string     `json:"priority"`
	Notes            string     `json:"notes"`
	NextServiceDate  *time.Time `json:"next_service_date"`
}

// CreateServiceRecord schedules a service record. Mechanic or admin only.
func (sc *ServiceController) CreateServiceRecord(c *gin.Context) {
	user, ok := loadCurrentUser(c, sc.DB)
	if !ok {
		return
	}
	if user.IsCustomer() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Mechanic or admin access required",
			},
		})
		return
	}

	var req serviceRecordRequest
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
	if req.VehicleID == 0 {
		errs = append(errs, "vehicle_id is required")
	}
	if req.CustomerID == 0 {
		errs = append(errs, "customer_id is required")
	}
	if req.ServiceID == 0 {
		errs = append(errs, "service_id is required")
	}
	if req.ServiceDate.IsZero() {
		errs = append(errs, "service_date is required")
	}
	if len(errs) > 0 {
		respondValidationErrors(c, errs)
		return
	}

	var vehicle models.Vehicle
	if err := sc.DB.First(&vehicle, req.VehicleID).Error; err != nil {
		respondNotFound(c, "VEHICLE_NOT_FOUND", "Vehicle not found")
		return
	}
	var service models.Service
	if err := sc.DB.First(&service, req.ServiceID).Error; err != nil {
		respondNotFound(c, "SERVICE_NOT_FOUND", "Service not found")
		return
	}

	record := models.ServiceRecord{
		VehicleID:        req.VehicleID,
		CustomerID:       req.CustomerID,
		ServiceID:        req.ServiceID,
		MechanicID:       req.MechanicID,
		ServiceDate:      req.ServiceDate,
		MileageAtService: req.MileageAtService,
		Status:           models.RecordStatusScheduled,
		Priority:         req.Priority,
		Notes:            req.Notes,
		NextServiceDate:  req.NextServiceDate,
	}
	if record.Priority == "" {
		record.Priority = "normal"
	}
	if record.MileageAtService == 0 {
		record.MileageAtService = vehicle.Mileage
	}

	if err := sc.DB.Create(&record).Error; err != nil {
		logrus.WithError(err).Error("failed to create service record")
		respondServerError(c, "Failed to create service record")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    record,
	})
}

type recordUpdateRequest struct {
	MechanicID      *uint      `json:"mechanic_id"`
	ServiceDate     *time.Time `json:"service_date"`
	Priority        *string    `json:"priority"`
	WorkPerformed   *string    `json:"work_performed"`
	Recommendations *string    `json:"recommendations"`
	LaborCost       *float64   `json:"labor_cost"`
	PartsCost       *float64   `json:"parts_cost"`
	Notes           *string    `json:"notes"`
	NextServiceDate *time.Time `json:"next_service_date"`
	NextServiceMi   *int       `json:"next_service_mileage"`
}

// UpdateServiceRecord applies a partial update. Mechanic or admin only.
func (sc *ServiceController) UpdateServiceRecord(c *gin.Context) {
	user, ok := loadCurrentUser(c, sc.DB)
	if !ok {
		return
	}
	if user.IsCustomer() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Mechanic or admin access required",
			},
		})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var record models.ServiceRecord
	if err := sc.DB.First(&record, id).Error; err != nil {
		respondNotFound(c, "RECORD_NOT_FOUND", "Service record not found")
		return
	}

	var req recordUpdateRequest
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

	if req.MechanicID != nil {
		record.MechanicID = req.MechanicID
	}
	if req.ServiceDate != nil {
		record.ServiceDate = *req.ServiceDate
	}
	if req.Priority != nil {
		record.Priority = *req.Priority
	}
	if req.WorkPerformed != nil {
		record.WorkPerformed = *req.WorkPerformed
	}
	if req.Recommendations != nil {
		record.Recommendations = *req.Recommendations
	}
	if req.LaborCost != nil {
		record.LaborCost = req.LaborCost
	}
	if req.PartsCost != nil {
		record.PartsCost = req.PartsCost
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}
	if req.NextServiceDate != nil {
		record.NextServiceDate = req.NextServiceDate
	}
	if req.NextServiceMi != nil {
		record.NextServiceMileage = req.NextServiceMi
	}

	if err := sc.DB.Save(&record).Error; err != nil {
		respondServerError(c, "Failed to update service record")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    record,
	})
}

// StartServiceRecord moves a scheduled record to in_progress
func (sc *ServiceController) StartServiceRecord(c *gin.Context) {
	user, ok := loadCurrentUser(c, sc.DB)
	if !ok {
		return
	}
	if user.IsCustomer() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Mechanic or admin access required",
			},
		})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var record models.ServiceRecord
	if err := sc.DB.First(&record, id).Error; err != nil {
		respondNotFound(c, "RECORD_NOT_FOUND", "Service record not found")
		return
	}

	if err := record.Start(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": err.Error(),
			},
		})
		return
	}

	if err := sc.DB.Save(&record).Error; err != nil {
		respondServerError(c, "Failed to update service record")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    record,
	})
}

type completeRecordRequest struct {
	WorkPerformed string   `json:"work_performed"`
	ActualCost    *float64 `json:"actual_cost"`
	UpdateMileage *int     `json:"update_mileage"`
}

// CompleteServiceRecord finishes an in-progress record and optionally
// bumps the vehicle mileage.
func (sc *ServiceController) CompleteServiceRecord(c *gin.Context) {
	user, ok := loadCurrentUser(c, sc.DB)
	if !ok {
		return
	}
	if user.IsCustomer() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Mechanic or admin access required",
			},
		})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var record models.ServiceRecord
	if err := sc.DB.First(&record, id).Error; err != nil {
		respondNotFound(c, "RECORD_NOT_FOUND", "Service record not found")
		return
	}

	var req completeRecordRequest
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

	if err := record.Complete(user.ID, req.WorkPerformed, req.ActualCost, time.Now()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": err.Error(),
			},
		})
		return
	}

	if err := sc.DB.Save(&record).Error; err != nil {
		respondServerError(c, "Failed to update service record")
		return
	}

	if req.UpdateMileage != nil {
		if err := sc.DB.Model(&models.Vehicle{}).
			Where("id = ? AND mileage < ?", record.VehicleID, *req.UpdateMileage).
			Update("mileage", *req.UpdateMileage).Error; err != nil {
			logrus.WithError(err).Warn("failed to update vehicle mileage")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    record,
	})
}

// CancelServiceRecord cancels a scheduled or in-progress record
func (sc *ServiceController) CancelServiceRecord(c *gin.Context) {
	user, ok := loadCurrentUser(c, sc.DB)
	if !ok {
		return
	}
	if user.IsCustomer() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Mechanic or admin access required",
			},
		})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var record models.ServiceRecord
	if err := sc.DB.First(&record, id).Error; err != nil {
		respondNotFound(c, "RECORD_NOT_FOUND", "Service record not found")
		return
	}

	if err := record.Cancel(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": err.Error(),
			},
		})
		return
	}

	if err := sc.DB.Save(&record).Error; err != nil {
		respondServerError(c, "Failed to update service record")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    record,
	})
}

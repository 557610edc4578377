package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Evian1k/VeloManage5/models"
	"github.com/Evian1k/VeloManage5/services"
)

// AppointmentController handles appointment booking and lifecycle
type AppointmentController struct {
	DB        *gorm.DB
	Scheduler *services.SchedulingService
}

func NewAppointmentController(db *gorm.DB, scheduler *services.SchedulingService) *AppointmentController {
	return &AppointmentController{DB: db, Scheduler: scheduler}
}

// GetAppointments lists appointments scoped to the caller's role
func (ap *AppointmentController) GetAppointments(c *gin.Context) {
	user, ok := loadCurrentUser(c, ap.DB)
	if !ok {
		return
	}

	query := ap.DB.Preload("Customer").Preload("Vehicle").Preload("Service").Preload("Mechanic").
		Order("appointment_date")
	switch {
	case user.IsCustomer():
		query = query.Where("customer_id = ?", user.ID)
	case user.IsMechanic():
		query = query.Where("mechanic_id = ?", user.ID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if from := c.Query("from"); from != "" {
		if day, err := time.ParseInLocation("2006-01-02", from, time.Local); err == nil {
			query = query.Where("appointment_date >= ?", day)
		}
	}
	if to := c.Query("to"); to != "" {
		if day, err := time.ParseInLocation("2006-01-02", to, time.Local); err == nil {
			query = query.Where("appointment_date < ?", day.AddDate(0, 0, 1))
		}
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		respondServerError(c, "Failed to fetch appointments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appointments,
	})
}

// GetAppointment returns a single appointment the caller may see
func (ap *AppointmentController) GetAppointment(c *gin.Context) {
	user, ok := loadCurrentUser(c, ap.DB)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var appointment models.Appointment
	if err := ap.DB.Preload("Customer").Preload("Vehicle").Preload("Service").Preload("Mechanic").
		First(&appointment, id).Error; err != nil {
		respondNotFound(c, "APPOINTMENT_NOT_FOUND", "Appointment not found")
		return
	}

	if user.IsCustomer() && appointment.CustomerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have access to this appointment",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appointment,
	})
}

type appointmentRequest struct {
	VehicleID         uint   `json:"vehicle_id"`
	ServiceID         uint   `json:"service_id"`
	AppointmentDate   string `json:"appointment_date"`
	EstimatedDuration *int   `json:"estimated_duration"`
	Description       string `json:"description"`
	SpecialRequests   string `json:"special_requests"`
	CustomerNotes     string `json:"customer_notes"`
}

// CreateAppointment books an appointment in a free slot
func (ap *AppointmentController) CreateAppointment(c *gin.Context) {
	user, ok := loadCurrentUser(c, ap.DB)
	if !ok {
		return
	}

	var req appointmentRequest
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
	if req.ServiceID == 0 {
		errs = append(errs, "service_id is required")
	}
	if req.AppointmentDate == "" {
		errs = append(errs, "appointment_date is required")
	}
	if len(errs) > 0 {
		respondValidationErrors(c, errs)
		return
	}

	when, err := time.ParseInLocation(services.SlotTimeLayout, req.AppointmentDate, time.Local)
	if err != nil {
		respondValidationErrors(c, []string{"appointment_date must use format " + services.SlotTimeLayout})
		return
	}
	if when.Before(time.Now()) {
		respondValidationErrors(c, []string{"appointment_date must be in the future"})
		return
	}

	var vehicle models.Vehicle
	if err := ap.DB.First(&vehicle, req.VehicleID).Error; err != nil {
		respondNotFound(c, "VEHICLE_NOT_FOUND", "Vehicle not found")
		return
	}
	if user.IsCustomer() && !vehicle.OwnedBy(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You can only book appointments for your own vehicles",
			},
		})
		return
	}

	var service models.Service
	if err := ap.DB.Where("is_active = ?", true).First(&service, req.ServiceID).Error; err != nil {
		respondNotFound(c, "SERVICE_NOT_FOUND", "Service not found")
		return
	}

	duration := req.EstimatedDuration
	if duration == nil {
		duration = service.EstimatedDuration
	}

	appointment := models.Appointment{
		CustomerID:        user.ID,
		VehicleID:         req.VehicleID,
		ServiceID:         req.ServiceID,
		AppointmentDate:   when,
		EstimatedDuration: duration,
		Status:            models.AppointmentStatusScheduled,
		Description:       req.Description,
		SpecialRequests:   req.SpecialRequests,
		CustomerNotes:     req.CustomerNotes,
	}

	if err := ap.Scheduler.Book(&appointment); err != nil {
		if errors.Is(err, services.ErrSlotUnavailable) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SLOT_UNAVAILABLE",
					"message": "The requested time slot is no longer available",
				},
			})
			return
		}
		logrus.WithError(err).Error("failed to book appointment")
		respondServerError(c, "Failed to book appointment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    appointment,
	})
}

type appointmentUpdateRequest struct {
	Description     *string `json:"description"`
	SpecialRequests *string `json:"special_requests"`
	CustomerNotes   *string `json:"customer_notes"`
	MechanicID      *uint   `json:"mechanic_id"`
}

// UpdateAppointment applies non-lifecycle edits to an appointment
func (ap *AppointmentController) UpdateAppointment(c *gin.Context) {
	user, ok := loadCurrentUser(c, ap.DB)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var appointment models.Appointment
	if err := ap.DB.First(&appointment, id).Error; err != nil {
		respondNotFound(c, "APPOINTMENT_NOT_FOUND", "Appointment not found")
		return
	}

	if user.IsCustomer() && appointment.CustomerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have access to this appointment",
			},
		})
		return
	}

	var req appointmentUpdateRequest
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

	if req.Description != nil {
		appointment.Description = *req.Description
	}
	if req.SpecialRequests != nil {
		appointment.SpecialRequests = *req.SpecialRequests
	}
	if req.CustomerNotes != nil {
		appointment.CustomerNotes = *req.CustomerNotes
	}
	if req.MechanicID != nil && !user.IsCustomer() {
		appointment.MechanicID = req.MechanicID
	}

	if err := ap.DB.Save(&appointment).Error; err != nil {
		respondServerError(c, "Failed to update appointment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appointment,
	})
}

// DeleteAppointment removes an appointment. Customers may delete their own
// while it is still active, admins may delete any.
func (ap *AppointmentController) DeleteAppointment(c *gin.Context) {
	user, ok := loadCurrentUser(c, ap.DB)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var appointment models.Appointment
	if err := ap.DB.First(&appointment, id).Error; err != nil {
		respondNotFound(c, "APPOINTMENT_NOT_FOUND", "Appointment not found")
		return
	}

	if !user.IsAdmin() {
		if appointment.CustomerID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "You can only delete your own appointments",
				},
			})
			return
		}
		if !appointment.Active() {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Only scheduled or confirmed appointments can be deleted",
				},
			})
			return
		}
	}

	if err := ap.DB.Delete(&appointment).Error; err != nil {
		respondServerError(c, "Failed to delete appointment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "Appointment deleted successfully",
		},
	})
}

type confirmRequest struct {
	MechanicID *uint `json:"mechanic_id"`
}

// ConfirmAppointment confirms a scheduled appointment. Mechanic or admin only.
func (ap *AppointmentController) ConfirmAppointment(c *gin.Context) {
	user, ok := loadCurrentUser(c, ap.DB)
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

	var appointment models.Appointment
	if err := ap.DB.First(&appointment, id).Error; err != nil {
		respondNotFound(c, "APPOINTMENT_NOT_FOUND", "Appointment not found")
		return
	}

	var req confirmRequest
	_ = c.ShouldBindJSON(&req)
	mechanicID := req.MechanicID
	if mechanicID == nil && user.IsMechanic() {
		id := user.ID
		mechanicID = &id
	}

	if err := appointment.Confirm(mechanicID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": err.Error(),
			},
		})
		return
	}

	if err := ap.DB.Save(&appointment).Error; err != nil {
		respondServerError(c, "Failed to update appointment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appointment,
	})
}

// StartAppointment moves a confirmed appointment to in_progress
func (ap *AppointmentController) StartAppointment(c *gin.Context) {
	ap.lifecycleStep(c, func(a *models.Appointment) error { return a.Start() })
}

// CompleteAppointment finishes an in-progress appointment
func (ap *AppointmentController) CompleteAppointment(c *gin.Context) {
	ap.lifecycleStep(c, func(a *models.Appointment) error { return a.Complete() })
}

// lifecycleStep runs a mechanic/admin-only appointment transition
func (ap *AppointmentController) lifecycleStep(c *gin.Context, step func(*models.Appointment) error) {
	user, ok := loadCurrentUser(c, ap.DB)
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

	var appointment models.Appointment
	if err := ap.DB.First(&appointment, id).Error; err != nil {
		respondNotFound(c, "APPOINTMENT_NOT_FOUND", "Appointment not found")
		return
	}

	if err := step(&appointment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": err.Error(),
			},
		})
		return
	}

	if err := ap.DB.Save(&appointment).Error; err != nil {
		respondServerError(c, "Failed to update appointment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appointment,
	})
}

// CancelAppointment cancels an active appointment. Customers may cancel
// their own, mechanics and admins any.
func (ap *AppointmentController) CancelAppointment(c *gin.Context) {
	user, ok := loadCurrentUser(c, ap.DB)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var appointment models.Appointment
	if err := ap.DB.First(&appointment, id).Error; err != nil {
		respondNotFound(c, "APPOINTMENT_NOT_FOUND", "Appointment not found")
		return
	}

	if user.IsCustomer() && appointment.CustomerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have access to this appointment",
			},
		})
		return
	}

	if err := appointment.Cancel(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": err.Error(),
			},
		})
		return
	}

	if err := ap.DB.Save(&appointment).Error; err != nil {
		respondServerError(c, "Failed to update appointment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appointment,
	})
}

// GetAvailableSlots lists free slot start times for a given day
func (ap *AppointmentController) GetAvailableSlots(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		respondValidationErrors(c, []string{"date query parameter is required"})
		return
	}

	day, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		respondValidationErrors(c, []string{"date must use format 2006-01-02"})
		return
	}

	slots, err := ap.Scheduler.AvailableSlots(day)
	if err != nil {
		respondServerError(c, "Failed to compute available slots")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"date":  dateStr,
			"slots": slots,
		},
	})
}

// GetUpcomingAppointments lists the caller's active future appointments
func (ap *AppointmentController) GetUpcomingAppointments(c *gin.Context) {
	user, ok := loadCurrentUser(c, ap.DB)
	if !ok {
		return
	}

	query := ap.DB.Preload("Vehicle").Preload("Service").
		Where("appointment_date > ?", time.Now()).
		Where("status IN ?", []string{models.AppointmentStatusScheduled, models.AppointmentStatusConfirmed}).
		Order("appointment_date")
	switch {
	case user.IsCustomer():
		query = query.Where("customer_id = ?", user.ID)
	case user.IsMechanic():
		query = query.Where("mechanic_id = ?", user.ID)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		respondServerError(c, "Failed to fetch appointments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appointments,
	})
}

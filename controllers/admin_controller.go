package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Evian1k/VeloManage5/models"
	"github.com/Evian1k/VeloManage5/services"
)

// AdminController handles the admin dashboard, user management and reports
type AdminController struct {
	DB        *gorm.DB
	Reminders *services.ReminderService
}

func NewAdminController(db *gorm.DB, reminders *services.ReminderService) *AdminController {
	return &AdminController{DB: db, Reminders: reminders}
}

// GetDashboard returns headline counts for the admin dashboard
func (ad *AdminController) GetDashboard(c *gin.Context) {
	if _, ok := requireAdmin(c, ad.DB); !ok {
		return
	}

	var totalUsers, customers, mechanics int64
	var totalVehicles, totalIncidents, openIncidents, activeServices int64
	var totalAppointments, upcomingAppointments, todayAppointments int64
	var totalRecords, pendingRecords, lowStockParts int64

	ad.DB.Model(&models.User{}).Count(&totalUsers)
	ad.DB.Model(&models.User{}).Where("role = ?", models.RoleCustomer).Count(&customers)
	ad.DB.Model(&models.User{}).Where("role = ?", models.RoleMechanic).Count(&mechanics)
	ad.DB.Model(&models.Vehicle{}).Count(&totalVehicles)
	ad.DB.Model(&models.Incident{}).Count(&totalIncidents)
	ad.DB.Model(&models.Incident{}).
		Where("status IN ?", []string{models.IncidentStatusOpen, models.IncidentStatusInProgress}).
		Count(&openIncidents)
	ad.DB.Model(&models.Service{}).Where("is_active = ?", true).Count(&activeServices)

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	ad.DB.Model(&models.Appointment{}).Count(&totalAppointments)
	ad.DB.Model(&models.Appointment{}).
		Where("appointment_date > ?", now).
		Where("status IN ?", []string{models.AppointmentStatusScheduled, models.AppointmentStatusConfirmed}).
		Count(&upcomingAppointments)
	ad.DB.Model(&models.Appointment{}).
		Where("appointment_date >= ? AND appointment_date < ?", dayStart, dayStart.AddDate(0, 0, 1)).
		Where("status <> ?", models.AppointmentStatusCancelled).
		Count(&todayAppointments)
	ad.DB.Model(&models.ServiceRecord{}).Count(&totalRecords)
	ad.DB.Model(&models.ServiceRecord{}).
		Where("status IN ?", []string{models.RecordStatusScheduled, models.RecordStatusInProgress}).
		Count(&pendingRecords)
	ad.DB.Model(&models.Part{}).
		Where("stock_quantity <= min_stock_level").
		Count(&lowStockParts)

	dueVehicles, err := ad.Reminders.VehiclesDue()
	if err != nil {
		respondServerError(c, "Failed to build dashboard")
		return
	}

	var recent []models.Appointment
	ad.DB.Preload("Customer").Preload("Vehicle").Preload("Service").
		Order("created_at DESC").Limit(5).Find(&recent)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"users": gin.H{
				"total":     totalUsers,
				"customers": customers,
				"mechanics": mechanics,
			},
			"vehicles": gin.H{
				"total":           totalVehicles,
				"due_for_service": len(dueVehicles),
			},
			"incidents": gin.H{
				"total": totalIncidents,
				"open":  openIncidents,
			},
			"services": gin.H{
				"active": activeServices,
			},
			"appointments": gin.H{
				"total":    totalAppointments,
				"upcoming": upcomingAppointments,
				"today":    todayAppointments,
			},
			"service_records": gin.H{
				"total":   totalRecords,
				"pending": pendingRecords,
			},
			"parts": gin.H{
				"low_stock": lowStockParts,
			},
			"recent_appointments": recent,
		},
	})
}

// GetUsers lists all users, optionally filtered by role
func (ad *AdminController) GetUsers(c *gin.Context) {
	if _, ok := requireAdmin(c, ad.DB); !ok {
		return
	}

	query := ad.DB.Order("created_at DESC")
	if role := c.Query("role"); role != "" {
		if !models.ValidRole(role) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_ROLE",
					"message": "Unknown role: " + role,
				},
			})
			return
		}
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		respondServerError(c, "Failed to fetch users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
	})
}

// GetUser returns a single user by id
func (ad *AdminController) GetUser(c *gin.Context) {
	if _, ok := requireAdmin(c, ad.DB); !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := ad.DB.First(&user, id).Error; err != nil {
		respondNotFound(c, "USER_NOT_FOUND", "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

type adminUserUpdateRequest struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

// UpdateUser changes a user's role, active flag or contact details
func (ad *AdminController) UpdateUser(c *gin.Context) {
	admin, ok := requireAdmin(c, ad.DB)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := ad.DB.First(&user, id).Error; err != nil {
		respondNotFound(c, "USER_NOT_FOUND", "User not found")
		return
	}

	var req adminUserUpdateRequest
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

	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_ROLE",
					"message": "Unknown role: " + *req.Role,
				},
			})
			return
		}
		if user.ID == admin.ID && *req.Role != models.RoleAdmin {
			respondValidationErrors(c, []string{"Admins cannot demote themselves"})
			return
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		if user.ID == admin.ID && !*req.IsActive {
			respondValidationErrors(c, []string{"Admins cannot deactivate themselves"})
			return
		}
		user.IsActive = *req.IsActive
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}

	if err := ad.DB.Save(&user).Error; err != nil {
		respondServerError(c, "Failed to update user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// DeleteUser soft deletes a user account
func (ad *AdminController) DeleteUser(c *gin.Context) {
	admin, ok := requireAdmin(c, ad.DB)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if id == admin.ID {
		respondValidationErrors(c, []string{"Admins cannot delete themselves"})
		return
	}

	var user models.User
	if err := ad.DB.First(&user, id).Error; err != nil {
		respondNotFound(c, "USER_NOT_FOUND", "User not found")
		return
	}

	if err := ad.DB.Delete(&user).Error; err != nil {
		respondServerError(c, "Failed to delete user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "User deleted successfully",
		},
	})
}

// GetAllVehicles lists every vehicle for the admin fleet view
func (ad *AdminController) GetAllVehicles(c *gin.Context) {
	if _, ok := requireAdmin(c, ad.DB); !ok {
		return
	}

	query := ad.DB.Preload("Owner").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
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

// GetAllServiceRecords lists every service record
func (ad *AdminController) GetAllServiceRecords(c *gin.Context) {
	if _, ok := requireAdmin(c, ad.DB); !ok {
		return
	}

	query := ad.DB.Preload("Vehicle").Preload("Service").Preload("Mechanic").
		Order("service_date DESC")
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

// GetAllAppointments lists every appointment
func (ad *AdminController) GetAllAppointments(c *gin.Context) {
	if _, ok := requireAdmin(c, ad.DB); !ok {
		return
	}

	query := ad.DB.Preload("Customer").Preload("Vehicle").Preload("Service").
		Order("appointment_date DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
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

// GetServiceSummaryReport aggregates completed service records per catalog
// service with record counts and revenue totals.
func (ad *AdminController) GetServiceSummaryReport(c *gin.Context) {
	if _, ok := requireAdmin(c, ad.DB); !ok {
		return
	}

	type row struct {
		ServiceID   uint
		ServiceName string
		Count       int64
		Revenue     float64
	}

	var rows []row
	if err := ad.DB.Model(&models.ServiceRecord{}).
		Select("service_records.service_id AS service_id, services.name AS service_name, COUNT(*) AS count, COALESCE(SUM(service_records.actual_cost), 0) AS revenue").
		Joins("JOIN services ON services.id = service_records.service_id").
		Where("service_records.status = ?", models.RecordStatusCompleted).
		Group("service_records.service_id, services.name").
		Scan(&rows).Error; err != nil {
		respondServerError(c, "Failed to build report")
		return
	}

	summaries := make([]gin.H, 0, len(rows))
	var totalRevenue float64
	for _, r := range rows {
		totalRevenue += r.Revenue
		summaries = append(summaries, gin.H{
			"service_id":   r.ServiceID,
			"service_name": r.ServiceName,
			"count":        r.Count,
			"revenue":      r.Revenue,
		})
	}

	var totalRecords, completedRecords int64
	ad.DB.Model(&models.ServiceRecord{}).Count(&totalRecords)
	ad.DB.Model(&models.ServiceRecord{}).
		Where("status = ?", models.RecordStatusCompleted).
		Count(&completedRecords)
	completionRate := 0.0
	if totalRecords > 0 {
		completionRate = float64(completedRecords) / float64(totalRecords)
	}

	type categoryRow struct {
		Category string
		Count    int64
		Revenue  float64
	}
	var categories []categoryRow
	ad.DB.Model(&models.ServiceRecord{}).
		Select("services.category AS category, COUNT(*) AS count, COALESCE(SUM(service_records.actual_cost), 0) AS revenue").
		Joins("JOIN services ON services.id = service_records.service_id").
		Where("service_records.status = ?", models.RecordStatusCompleted).
		Group("services.category").
		Scan(&categories)
	byCategory := make(map[string]gin.H, len(categories))
	for _, cr := range categories {
		byCategory[cr.Category] = gin.H{"count": cr.Count, "revenue": cr.Revenue}
	}

	type mechanicRow struct {
		MechanicID uint
		Username   string
		Count      int64
	}
	var topMechanics []mechanicRow
	ad.DB.Model(&models.ServiceRecord{}).
		Select("service_records.mechanic_id AS mechanic_id, users.username AS username, COUNT(*) AS count").
		Joins("JOIN users ON users.id = service_records.mechanic_id").
		Where("service_records.status = ?", models.RecordStatusCompleted).
		Where("service_records.mechanic_id IS NOT NULL").
		Group("service_records.mechanic_id, users.username").
		Order("count DESC").
		Limit(5).
		Scan(&topMechanics)
	mechanicsOut := make([]gin.H, 0, len(topMechanics))
	for _, mr := range topMechanics {
		mechanicsOut = append(mechanicsOut, gin.H{
			"mechanic_id":        mr.MechanicID,
			"username":           mr.Username,
			"completed_services": mr.Count,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"services":          summaries,
			"total_revenue":     totalRevenue,
			"total_records":     totalRecords,
			"completed_records": completedRecords,
			"completion_rate":   completionRate,
			"by_category":       byCategory,
			"top_mechanics":     mechanicsOut,
		},
	})
}

// GetVehicleStatusReport counts vehicles per status
func (ad *AdminController) GetVehicleStatusReport(c *gin.Context) {
	if _, ok := requireAdmin(c, ad.DB); !ok {
		return
	}

	type row struct {
		Status string
		Count  int64
	}

	var rows []row
	if err := ad.DB.Model(&models.Vehicle{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		respondServerError(c, "Failed to build report")
		return
	}

	counts := make(map[string]int64, len(rows))
	var total int64
	for _, r := range rows {
		counts[r.Status] = r.Count
		total += r.Count
	}

	type makeRow struct {
		Make  string
		Count int64
	}
	var makeRows []makeRow
	if err := ad.DB.Model(&models.Vehicle{}).
		Select("make, COUNT(*) AS count").
		Group("make").
		Scan(&makeRows).Error; err != nil {
		respondServerError(c, "Failed to build report")
		return
	}
	byMake := make(map[string]int64, len(makeRows))
	for _, r := range makeRows {
		byMake[r.Make] = r.Count
	}

	dueVehicles, err := ad.Reminders.VehiclesDue()
	if err != nil {
		respondServerError(c, "Failed to build report")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total":           total,
			"by_status":       counts,
			"by_make":         byMake,
			"due_for_service": len(dueVehicles),
		},
	})
}

// SendServiceReminders collects vehicles due for service and the owners to
// notify. Delivery itself is handled by an external notifier.
func (ad *AdminController) SendServiceReminders(c *gin.Context) {
	if _, ok := requireAdmin(c, ad.DB); !ok {
		return
	}

	vehicles, err := ad.Reminders.VehiclesDue()
	if err != nil {
		respondServerError(c, "Failed to compute service reminders")
		return
	}

	reminders := make([]gin.H, 0, len(vehicles))
	owners := make(map[uint]bool)
	for _, v := range vehicles {
		entry := gin.H{
			"vehicle_id":      v.ID,
			"vehicle":         v.FullName(),
			"current_mileage": v.Mileage,
		}
		if v.OwnerID != nil {
			entry["owner_id"] = *v.OwnerID
			owners[*v.OwnerID] = true
		}
		reminders = append(reminders, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"due_vehicles":     reminders,
			"total_due":        len(reminders),
			"owners_to_notify": len(owners),
		},
	})
}

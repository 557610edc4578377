package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Evian1k/VeloManage5/models"
	"github.com/Evian1k/VeloManage5/utils"
)

// degreesPerKm approximates the latitude degrees spanned by one kilometer.
const degreesPerKm = 1.0 / 111.0

// IncidentController handles incident reporting, voting and statistics
type IncidentController struct {
	DB *gorm.DB
}

func NewIncidentController(db *gorm.DB) *IncidentController {
	return &IncidentController{DB: db}
}

// GetIncidents lists incidents with filtering, text search, an optional
// geographic bounding box and pagination.
func (ic *IncidentController) GetIncidents(c *gin.Context) {
	page, perPage := parsePagination(c)

	query := ic.DB.Model(&models.Incident{}).Preload("Reporter").Preload("AssignedAdmin")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if priority := c.Query("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	// Bounding box around lat/lng, radius in kilometers. A degree of
	// latitude is roughly 111 km; good enough for city-scale filtering.
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			respondValidationErrors(c, []string{"Invalid coordinates"})
			return
		}
		radius := 10.0
		if r := c.Query("radius"); r != "" {
			if parsed, err := strconv.ParseFloat(r, 64); err == nil && parsed > 0 {
				radius = parsed
			}
		}
		delta := radius * degreesPerKm
		query = query.Where("latitude BETWEEN ? AND ?", lat-delta, lat+delta).
			Where("longitude BETWEEN ? AND ?", lng-delta, lng+delta)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondServerError(c, "Failed to count incidents")
		return
	}

	var incidents []models.Incident
	if err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&incidents).Error; err != nil {
		respondServerError(c, "Failed to fetch incidents")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"incidents": incidents,
			"pagination": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
				"pages":    (total + int64(perPage) - 1) / int64(perPage),
			},
		},
	})
}

// GetIncident returns a single incident with its reporter
func (ic *IncidentController) GetIncident(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var incident models.Incident
	if err := ic.DB.Preload("Reporter").Preload("AssignedAdmin").First(&incident, id).Error; err != nil {
		respondNotFound(c, "INCIDENT_NOT_FOUND", "Incident not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    incident,
	})
}

type incidentRequest struct {
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	Category           string            `json:"category"`
	Priority           string            `json:"priority"`
	Latitude           *float64          `json:"latitude"`
	Longitude          *float64          `json:"longitude"`
	Address            string            `json:"address"`
	City               string            `json:"city"`
	State              string            `json:"state"`
	ZipCode            string            `json:"zip_code"`
	Images             models.StringList `json:"images"`
	ContactInfo        models.JSONMap    `json:"contact_info"`
	EstimatedCost      *float64          `json:"estimated_cost"`
	EstimatedTimeframe string            `json:"estimated_timeframe"`
}

// CreateIncident files a new incident for the authenticated user
func (ic *IncidentController) CreateIncident(c *gin.Context) {
	user, ok := loadCurrentUser(c, ic.DB)
	if !ok {
		return
	}

	var req incidentRequest
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

	errs := utils.ValidateIncident(utils.IncidentInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if len(errs) > 0 {
		respondValidationErrors(c, errs)
		return
	}

	incident := models.Incident{
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		Status:             models.IncidentStatusOpen,
		Priority:           req.Priority,
		Latitude:           *req.Latitude,
		Longitude:          *req.Longitude,
		Address:            req.Address,
		City:               req.City,
		State:              req.State,
		ZipCode:            req.ZipCode,
		Images:             req.Images,
		ContactInfo:        req.ContactInfo,
		EstimatedCost:      req.EstimatedCost,
		EstimatedTimeframe: req.EstimatedTimeframe,
		ReportedBy:         user.ID,
	}
	if incident.Priority == "" {
		incident.Priority = models.PriorityMedium
	}

	if err := ic.DB.Create(&incident).Error; err != nil {
		logrus.WithError(err).Error("failed to create incident")
		respondServerError(c, "Failed to create incident")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    incident,
	})
}

type incidentUpdateRequest struct {
	Status             *string  `json:"status"`
	Priority           *string  `json:"priority"`
	AssignedTo         *uint    `json:"assigned_to"`
	ResolutionNotes    *string  `json:"resolution_notes"`
	EstimatedCost      *float64 `json:"estimated_cost"`
	EstimatedTimeframe *string  `json:"estimated_timeframe"`
}

// UpdateIncident applies admin updates, including status transitions
// through the incident state machine.
func (ic *IncidentController) UpdateIncident(c *gin.Context) {
	admin, ok := requireAdmin(c, ic.DB)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var incident models.Incident
	if err := ic.DB.First(&incident, id).Error; err != nil {
		respondNotFound(c, "INCIDENT_NOT_FOUND", "Incident not found")
		return
	}

	var req incidentUpdateRequest
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

	if req.Status != nil && *req.Status != incident.Status {
		notes := ""
		if req.ResolutionNotes != nil {
			notes = *req.ResolutionNotes
		}
		if err := incident.Transition(*req.Status, admin.ID, notes, time.Now()); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TRANSITION",
					"message": err.Error(),
				},
			})
			return
		}
	} else if req.ResolutionNotes != nil {
		incident.ResolutionNotes = *req.ResolutionNotes
	}

	if req.Priority != nil {
		incident.Priority = *req.Priority
	}
	if req.AssignedTo != nil {
		incident.AssignedTo = req.AssignedTo
	}
	if req.EstimatedCost != nil {
		incident.EstimatedCost = req.EstimatedCost
	}
	if req.EstimatedTimeframe != nil {
		incident.EstimatedTimeframe = *req.EstimatedTimeframe
	}

	if err := ic.DB.Save(&incident).Error; err != nil {
		respondServerError(c, "Failed to update incident")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    incident,
	})
}

// DeleteIncident removes an incident. The reporter may delete their own
// open incidents, admins may delete any.
func (ic *IncidentController) DeleteIncident(c *gin.Context) {
	user, ok := loadCurrentUser(c, ic.DB)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var incident models.Incident
	if err := ic.DB.First(&incident, id).Error; err != nil {
		respondNotFound(c, "INCIDENT_NOT_FOUND", "Incident not found")
		return
	}

	if !user.IsAdmin() {
		if incident.ReportedBy != user.ID {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "You can only delete your own incidents",
				},
			})
			return
		}
		if incident.Status != models.IncidentStatusOpen {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Only open incidents can be deleted",
				},
			})
			return
		}
	}

	if err := ic.DB.Delete(&incident).Error; err != nil {
		respondServerError(c, "Failed to delete incident")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "Incident deleted successfully",
		},
	})
}

// GetUserIncidents lists the authenticated user's own incidents
func (ic *IncidentController) GetUserIncidents(c *gin.Context) {
	user, ok := loadCurrentUser(c, ic.DB)
	if !ok {
		return
	}

	var incidents []models.Incident
	if err := ic.DB.Where("reported_by = ?", user.ID).
		Order("created_at DESC").
		Find(&incidents).Error; err != nil {
		respondServerError(c, "Failed to fetch incidents")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    incidents,
	})
}

type voteRequest struct {
	VoteType string `json:"vote_type"`
}

// VoteIncident records an upvote or downvote on an incident
func (ic *IncidentController) VoteIncident(c *gin.Context) {
	if _, ok := loadCurrentUser(c, ic.DB); !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var incident models.Incident
	if err := ic.DB.First(&incident, id).Error; err != nil {
		respondNotFound(c, "INCIDENT_NOT_FOUND", "Incident not found")
		return
	}

	var req voteRequest
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

	if err := incident.ApplyVote(req.VoteType); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_VOTE_TYPE",
				"message": err.Error(),
			},
		})
		return
	}

	// Increment in SQL so concurrent votes cannot overwrite each other.
	column := "upvotes"
	if req.VoteType == models.VoteDown {
		column = "downvotes"
	}
	if err := ic.DB.Model(&incident).
		Update(column, gorm.Expr(column+" + 1")).Error; err != nil {
		respondServerError(c, "Failed to record vote")
		return
	}
	if err := ic.DB.First(&incident, id).Error; err != nil {
		respondServerError(c, "Failed to record vote")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":         incident.ID,
			"upvotes":    incident.Upvotes,
			"downvotes":  incident.Downvotes,
			"vote_count": incident.VoteCount(),
		},
	})
}

// GetIncidentStats aggregates incident counts by status and category
func (ic *IncidentController) GetIncidentStats(c *gin.Context) {
	type bucket struct {
		Key   string
		Count int64
	}

	var byStatus []bucket
	if err := ic.DB.Model(&models.Incident{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		respondServerError(c, "Failed to compute statistics")
		return
	}

	var byCategory []bucket
	if err := ic.DB.Model(&models.Incident{}).
		Select("category AS key, COUNT(*) AS count").
		Group("category").
		Scan(&byCategory).Error; err != nil {
		respondServerError(c, "Failed to compute statistics")
		return
	}

	statusCounts := make(map[string]int64, len(byStatus))
	var total, resolved int64
	for _, b := range byStatus {
		statusCounts[b.Key] = b.Count
		total += b.Count
		if b.Key == models.IncidentStatusResolved || b.Key == models.IncidentStatusClosed {
			resolved += b.Count
		}
	}
	categoryCounts := make(map[string]int64, len(byCategory))
	for _, b := range byCategory {
		categoryCounts[b.Key] = b.Count
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total":       total,
			"resolved":    resolved,
			"by_status":   statusCounts,
			"by_category": categoryCounts,
		},
	})
}

type assignRequest struct {
	AssignedTo uint `json:"assigned_to"`
}

// AssignIncident assigns an incident to an admin for handling
func (ic *IncidentController) AssignIncident(c *gin.Context) {
	if _, ok := requireAdmin(c, ic.DB); !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var incident models.Incident
	if err := ic.DB.First(&incident, id).Error; err != nil {
		respondNotFound(c, "INCIDENT_NOT_FOUND", "Incident not found")
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AssignedTo == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "assigned_to is required",
			},
		})
		return
	}

	var assignee models.User
	if err := ic.DB.First(&assignee, req.AssignedTo).Error; err != nil {
		respondNotFound(c, "USER_NOT_FOUND", "Assignee not found")
		return
	}
	if !assignee.IsAdmin() {
		respondValidationErrors(c, []string{"Incidents can only be assigned to admins"})
		return
	}

	incident.AssignedTo = &assignee.ID
	if incident.Status == models.IncidentStatusOpen {
		incident.Status = models.IncidentStatusInProgress
	}

	if err := ic.DB.Save(&incident).Error; err != nil {
		respondServerError(c, "Failed to assign incident")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    incident,
	})
}

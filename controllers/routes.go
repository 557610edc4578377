package controllers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Evian1k/VeloManage5/config"
	"github.com/Evian1k/VeloManage5/middleware"
	"github.com/Evian1k/VeloManage5/services"
)

// Deps bundles the shared dependencies handed to every controller
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Tokens *services.TokenService
	Store  services.ObjectStore
}

// NewRouter builds the Gin engine with all API routes registered
func NewRouter(deps Deps) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if deps.Config.AllowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{deps.Config.AllowedOrigins}
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	reminders := services.NewReminderService(deps.DB, deps.Config.ServiceDueMiles)
	scheduler := services.NewSchedulingService(deps.DB)
	images := services.NewImageService(deps.Store)

	authCtrl := NewAuthController(deps.DB, deps.Tokens)
	vehicleCtrl := NewVehicleController(deps.DB, reminders)
	incidentCtrl := NewIncidentController(deps.DB)
	serviceCtrl := NewServiceController(deps.DB)
	appointmentCtrl := NewAppointmentController(deps.DB, scheduler)
	adminCtrl := NewAdminController(deps.DB, reminders)
	uploadCtrl := NewUploadController(deps.DB, images)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "VeloManage API is running",
		})
	})

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authCtrl.Register)
		auth.POST("/login", authCtrl.Login)
		auth.POST("/refresh", middleware.AuthenticateRefresh(deps.Tokens), authCtrl.Refresh)

		authed := auth.Group("", middleware.Authenticate(deps.Tokens))
		authed.GET("/profile", authCtrl.GetProfile)
		authed.PUT("/profile", authCtrl.UpdateProfile)
		authed.POST("/change-password", authCtrl.ChangePassword)
		authed.POST("/logout", authCtrl.Logout)
	}

	vehicles := api.Group("/vehicles", middleware.Authenticate(deps.Tokens))
	{
		vehicles.GET("", vehicleCtrl.GetVehicles)
		vehicles.GET("/search", vehicleCtrl.SearchVehicles)
		vehicles.GET("/:id", vehicleCtrl.GetVehicle)
		vehicles.POST("", vehicleCtrl.CreateVehicle)
		vehicles.PUT("/:id", vehicleCtrl.UpdateVehicle)
		vehicles.DELETE("/:id", vehicleCtrl.DeleteVehicle)
		vehicles.GET("/:id/service-history", vehicleCtrl.GetServiceHistory)
		vehicles.GET("/:id/service-reminder", vehicleCtrl.GetServiceReminder)
	}

	incidents := api.Group("/incidents")
	{
		incidents.GET("", incidentCtrl.GetIncidents)
		incidents.GET("/stats", incidentCtrl.GetIncidentStats)
		incidents.GET("/:id", incidentCtrl.GetIncident)

		authed := incidents.Group("", middleware.Authenticate(deps.Tokens))
		authed.POST("", incidentCtrl.CreateIncident)
		authed.PUT("/:id", incidentCtrl.UpdateIncident)
		authed.DELETE("/:id", incidentCtrl.DeleteIncident)
		authed.GET("/user/me", incidentCtrl.GetUserIncidents)
		authed.POST("/:id/vote", incidentCtrl.VoteIncident)
		authed.POST("/:id/assign", incidentCtrl.AssignIncident)
	}

	servicesGroup := api.Group("/services")
	{
		servicesGroup.GET("", serviceCtrl.GetServices)
		servicesGroup.GET("/:id", serviceCtrl.GetService)

		authed := servicesGroup.Group("", middleware.Authenticate(deps.Tokens))
		authed.POST("", serviceCtrl.CreateService)
		authed.PUT("/:id", serviceCtrl.UpdateService)
		authed.DELETE("/:id", serviceCtrl.DeleteService)

		parts := authed.Group("/parts")
		parts.GET("", serviceCtrl.GetParts)
		parts.GET("/:id", serviceCtrl.GetPart)
		parts.POST("", serviceCtrl.CreatePart)
		parts.PUT("/:id", serviceCtrl.UpdatePart)
		parts.POST("/:id/stock", serviceCtrl.AdjustPartStock)

		records := authed.Group("/records")
		records.GET("", serviceCtrl.GetServiceRecords)
		records.GET("/:id", serviceCtrl.GetServiceRecord)
		records.POST("", serviceCtrl.CreateServiceRecord)
		records.PUT("/:id", serviceCtrl.UpdateServiceRecord)
		records.POST("/:id/start", serviceCtrl.StartServiceRecord)
		records.POST("/:id/complete", serviceCtrl.CompleteServiceRecord)
		records.POST("/:id/cancel", serviceCtrl.CancelServiceRecord)
	}

	appointments := api.Group("/appointments", middleware.Authenticate(deps.Tokens))
	{
		appointments.GET("", appointmentCtrl.GetAppointments)
		appointments.GET("/available-slots", appointmentCtrl.GetAvailableSlots)
		appointments.GET("/upcoming", appointmentCtrl.GetUpcomingAppointments)
		appointments.GET("/:id", appointmentCtrl.GetAppointment)
		appointments.POST("", appointmentCtrl.CreateAppointment)
		appointments.PUT("/:id", appointmentCtrl.UpdateAppointment)
		appointments.DELETE("/:id", appointmentCtrl.DeleteAppointment)
		appointments.POST("/:id/confirm", appointmentCtrl.ConfirmAppointment)
		appointments.POST("/:id/start", appointmentCtrl.StartAppointment)
		appointments.POST("/:id/complete", appointmentCtrl.CompleteAppointment)
		appointments.POST("/:id/cancel", appointmentCtrl.CancelAppointment)
	}

	admin := api.Group("/admin", middleware.Authenticate(deps.Tokens))
	{
		admin.GET("/dashboard", adminCtrl.GetDashboard)
		admin.GET("/users", adminCtrl.GetUsers)
		admin.GET("/users/:id", adminCtrl.GetUser)
		admin.PUT("/users/:id", adminCtrl.UpdateUser)
		admin.DELETE("/users/:id", adminCtrl.DeleteUser)
		admin.GET("/vehicles", adminCtrl.GetAllVehicles)
		admin.GET("/service-records", adminCtrl.GetAllServiceRecords)
		admin.GET("/appointments", adminCtrl.GetAllAppointments)
		admin.GET("/reports/service-summary", adminCtrl.GetServiceSummaryReport)
		admin.GET("/reports/vehicle-status", adminCtrl.GetVehicleStatusReport)
		admin.POST("/notifications/service-reminders", adminCtrl.SendServiceReminders)
	}

	uploads := api.Group("/uploads", middleware.Authenticate(deps.Tokens))
	{
		uploads.POST("/images", uploadCtrl.UploadImage)
		uploads.GET("/images/url", uploadCtrl.GetImageURL)
		uploads.DELETE("/images", uploadCtrl.DeleteImage)
	}

	return router
}

package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appconfig "github.com/Evian1k/VeloManage5/config"
	"github.com/Evian1k/VeloManage5/controllers"
	"github.com/Evian1k/VeloManage5/models"
	"github.com/Evian1k/VeloManage5/services"
)

var dbCounter int64

// NewTestDB opens an isolated in-memory sqlite database with all models
// migrated. Each call gets its own database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.Incident{},
		&models.Service{},
		&models.Part{},
		&models.ServicePart{},
		&models.ServiceRecord{},
		&models.ServiceRecordPart{},
		&models.Appointment{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// TestConfig returns a configuration suitable for tests
func TestConfig() *appconfig.Config {
	return &appconfig.Config{
		Port:            "8080",
		GoEnv:           "test",
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 720 * time.Hour,
		AllowedOrigins:  "*",
		LogLevel:        "error",
		ServiceDueMiles: 3000,
	}
}

// NewTestRouter builds the full API router backed by the given database,
// a test token service and an in-memory object store.
func NewTestRouter(t *testing.T, db *gorm.DB) (*gin.Engine, *services.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := TestConfig()
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	router := controllers.NewRouter(controllers.Deps{
		DB:     db,
		Config: cfg,
		Tokens: tokens,
		Store:  services.NewMockObjectStore(),
	})
	return router, tokens
}

// CreateUser inserts a user with the given role and returns it
func CreateUser(t *testing.T, db *gorm.DB, username, email, role string) *models.User {
	t.Helper()

	user := &models.User{
		Username:  username,
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		IsActive:  true,
	}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// AccessToken issues an access token for the given user
func AccessToken(t *testing.T, tokens *services.TokenService, userID uint) string {
	t.Helper()

	token, err := tokens.GenerateAccessToken(userID)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

// CreateVehicle inserts a vehicle owned by the given user
func CreateVehicle(t *testing.T, db *gorm.DB, ownerID uint, vin string, mileage int) *models.Vehicle {
	t.Helper()

	vehicle := &models.Vehicle{
		VIN:     vin,
		Make:    "Toyota",
		Model:   "Corolla",
		Year:    2020,
		Mileage: mileage,
		Status:  models.VehicleStatusAvailable,
		OwnerID: &ownerID,
	}
	if err := db.Create(vehicle).Error; err != nil {
		t.Fatalf("failed to create vehicle: %v", err)
	}
	return vehicle
}

// CreateService inserts an active catalog service
func CreateService(t *testing.T, db *gorm.DB, name string, durationMinutes int) *models.Service {
	t.Helper()

	service := &models.Service{
		Name:              name,
		Category:          "maintenance",
		EstimatedDuration: &durationMinutes,
		IsActive:          true,
	}
	if err := db.Create(service).Error; err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service
}

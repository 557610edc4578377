package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/Evian1k/VeloManage5/models"
	"github.com/Evian1k/VeloManage5/services"
	"github.com/Evian1k/VeloManage5/tests/testutil"
)

// AdminIntegrationTestSuite exercises user management, catalog admin and
// reporting endpoints
type AdminIntegrationTestSuite struct {
	suite.Suite
	db            *gorm.DB
	router        *gin.Engine
	tokens        *services.TokenService
	customer      *models.User
	admin         *models.User
	customerToken string
	adminToken    string
}

func (suite *AdminIntegrationTestSuite) SetupTest() {
	suite.db = testutil.NewTestDB(suite.T())
	suite.router, suite.tokens = testutil.NewTestRouter(suite.T(), suite.db)

	suite.customer = testutil.CreateUser(suite.T(), suite.db, "cust", "cust@example.com", models.RoleCustomer)
	suite.admin = testutil.CreateUser(suite.T(), suite.db, "admin", "admin@example.com", models.RoleAdmin)
	suite.customerToken = testutil.AccessToken(suite.T(), suite.tokens, suite.customer.ID)
	suite.adminToken = testutil.AccessToken(suite.T(), suite.tokens, suite.admin.ID)
}

// TestDashboard tests the dashboard counters
func (suite *AdminIntegrationTestSuite) TestDashboard() {
	testutil.CreateVehicle(suite.T(), suite.db, suite.customer.ID, "VIN00000000000300", 1000)

	w, response := doJSON(suite.T(), suite.router, http.MethodGet, "/api/admin/dashboard", suite.adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	users := data["users"].(map[string]interface{})
	suite.Equal(float64(2), users["total"])
	suite.Equal(float64(1), users["customers"])
	suite.Equal(float64(0), users["mechanics"])
	vehicles := data["vehicles"].(map[string]interface{})
	suite.Equal(float64(1), vehicles["total"])
	suite.Equal(float64(0), vehicles["due_for_service"])
	parts := data["parts"].(map[string]interface{})
	suite.Equal(float64(0), parts["low_stock"])
	suite.Empty(data["recent_appointments"])
}

// TestDashboardForbiddenForCustomers tests admin gating
func (suite *AdminIntegrationTestSuite) TestDashboardForbiddenForCustomers() {
	w, _ := doJSON(suite.T(), suite.router, http.MethodGet, "/api/admin/dashboard", suite.customerToken, nil)
	suite.Equal(http.StatusForbidden, w.Code)
}

// TestPromoteUserToMechanic tests the role change flow
func (suite *AdminIntegrationTestSuite) TestPromoteUserToMechanic() {
	w, response := doJSON(suite.T(), suite.router, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", suite.customer.ID), suite.adminToken, map[string]interface{}{
		"role": models.RoleMechanic,
	})
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(models.RoleMechanic, dataField(response, "role"))
}

// TestInvalidRoleRejected tests the role validation
func (suite *AdminIntegrationTestSuite) TestInvalidRoleRejected() {
	w, response := doJSON(suite.T(), suite.router, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", suite.customer.ID), suite.adminToken, map[string]interface{}{
		"role": "superuser",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("INVALID_ROLE", errorCode(response))
}

// TestAdminCannotDemoteSelf tests the self-demotion guard
func (suite *AdminIntegrationTestSuite) TestAdminCannotDemoteSelf() {
	w, _ := doJSON(suite.T(), suite.router, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", suite.admin.ID), suite.adminToken, map[string]interface{}{
		"role": models.RoleCustomer,
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

// TestDeleteUserSoftDeletes tests that deletion is soft
func (suite *AdminIntegrationTestSuite) TestDeleteUserSoftDeletes() {
	w, _ := doJSON(suite.T(), suite.router, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", suite.customer.ID), suite.adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.User{}).Count(&count)
	suite.Equal(int64(1), count)

	// the row survives with deleted_at set
	suite.db.Unscoped().Model(&models.User{}).Count(&count)
	suite.Equal(int64(2), count)
}

// TestListUsersByRole tests the role filter
func (suite *AdminIntegrationTestSuite) TestListUsersByRole() {
	testutil.CreateUser(suite.T(), suite.db, "mech", "mech@example.com", models.RoleMechanic)

	w, response := doJSON(suite.T(), suite.router, http.MethodGet, "/api/admin/users?role=mechanic", suite.adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Len(response["data"].([]interface{}), 1)

	w, _ = doJSON(suite.T(), suite.router, http.MethodGet, "/api/admin/users?role=wizard", suite.adminToken, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

// TestPartsInventoryFlow tests part creation, duplicate detection and stock
// adjustment
func (suite *AdminIntegrationTestSuite) TestPartsInventoryFlow() {
	part := map[string]interface{}{
		"name":           "Brake Pad",
		"part_number":    "BP-1001",
		"stock_quantity": 10,
	}

	w, response := doJSON(suite.T(), suite.router, http.MethodPost, "/api/services/parts", suite.adminToken, part)
	suite.Equal(http.StatusCreated, w.Code)
	partID := uint(dataField(response, "id").(float64))

	w, response = doJSON(suite.T(), suite.router, http.MethodPost, "/api/services/parts", suite.adminToken, part)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("PART_NUMBER_EXISTS", errorCode(response))

	// consume more stock than available, clamped at zero
	w, response = doJSON(suite.T(), suite.router, http.MethodPost, fmt.Sprintf("/api/services/parts/%d/stock", partID), suite.adminToken, map[string]interface{}{
		"delta": -15,
	})
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(float64(0), dataField(response, "stock_quantity"))
	suite.Equal(true, dataField(response, "low_stock"))
}

// TestServiceCatalogAdminOnly tests catalog write gating
func (suite *AdminIntegrationTestSuite) TestServiceCatalogAdminOnly() {
	body := map[string]interface{}{"name": "Tire Rotation", "category": "maintenance"}

	w, _ := doJSON(suite.T(), suite.router, http.MethodPost, "/api/services", suite.customerToken, body)
	suite.Equal(http.StatusForbidden, w.Code)

	w, _ = doJSON(suite.T(), suite.router, http.MethodPost, "/api/services", suite.adminToken, body)
	suite.Equal(http.StatusCreated, w.Code)
}

// TestServiceSummaryReport tests the per-service revenue aggregation
func (suite *AdminIntegrationTestSuite) TestServiceSummaryReport() {
	vehicle := testutil.CreateVehicle(suite.T(), suite.db, suite.customer.ID, "VIN00000000000301", 20000)
	oilChange := testutil.CreateService(suite.T(), suite.db, "Oil Change", 60)
	brakes := testutil.CreateService(suite.T(), suite.db, "Brake Service", 90)

	costs := []struct {
		service *models.Service
		cost    float64
		status  string
	}{
		{oilChange, 49.99, models.RecordStatusCompleted},
		{oilChange, 54.99, models.RecordStatusCompleted},
		{brakes, 210.00, models.RecordStatusCompleted},
		{brakes, 999.99, models.RecordStatusCancelled},
	}
	for _, c := range costs {
		cost := c.cost
		suite.NoError(suite.db.Create(&models.ServiceRecord{
			VehicleID:        vehicle.ID,
			CustomerID:       suite.customer.ID,
			ServiceID:        c.service.ID,
			ServiceDate:      time.Now(),
			MileageAtService: 20000,
			Status:           c.status,
			ActualCost:       &cost,
		}).Error)
	}

	w, response := doJSON(suite.T(), suite.router, http.MethodGet, "/api/admin/reports/service-summary", suite.adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	suite.InDelta(314.98, data["total_revenue"].(float64), 0.01)
	suite.Len(data["services"].([]interface{}), 2)
	suite.Equal(float64(4), data["total_records"])
	suite.Equal(float64(3), data["completed_records"])
	suite.InDelta(0.75, data["completion_rate"].(float64), 0.001)

	byCategory := data["by_category"].(map[string]interface{})
	maintenance := byCategory["maintenance"].(map[string]interface{})
	suite.Equal(float64(3), maintenance["count"])
	suite.InDelta(314.98, maintenance["revenue"].(float64), 0.01)
}

// TestVehicleStatusReport tests the vehicle status aggregation
func (suite *AdminIntegrationTestSuite) TestVehicleStatusReport() {
	testutil.CreateVehicle(suite.T(), suite.db, suite.customer.ID, "VIN00000000000302", 1000)
	v := testutil.CreateVehicle(suite.T(), suite.db, suite.customer.ID, "VIN00000000000303", 2000)
	suite.NoError(suite.db.Model(&models.Vehicle{}).Where("id = ?", v.ID).Update("status", models.VehicleStatusInService).Error)

	w, response := doJSON(suite.T(), suite.router, http.MethodGet, "/api/admin/reports/vehicle-status", suite.adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	suite.Equal(float64(2), data["total"])
	byStatus := data["by_status"].(map[string]interface{})
	suite.Equal(float64(1), byStatus[models.VehicleStatusAvailable])
	suite.Equal(float64(1), byStatus[models.VehicleStatusInService])
	byMake := data["by_make"].(map[string]interface{})
	suite.Equal(float64(2), byMake["Toyota"])
	suite.Equal(float64(0), data["due_for_service"])
}

// TestServiceReminderNotifications tests the due-vehicle roundup
func (suite *AdminIntegrationTestSuite) TestServiceReminderNotifications() {
	testutil.CreateVehicle(suite.T(), suite.db, suite.customer.ID, "VIN00000000000304", 5000)
	testutil.CreateVehicle(suite.T(), suite.db, suite.customer.ID, "VIN00000000000305", 500)

	w, response := doJSON(suite.T(), suite.router, http.MethodPost, "/api/admin/notifications/service-reminders", suite.adminToken, nil)
	suite.Equal(http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	suite.Equal(float64(1), data["total_due"])
	suite.Equal(float64(1), data["owners_to_notify"])
}

func TestAdminIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AdminIntegrationTestSuite))
}

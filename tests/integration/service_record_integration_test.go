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

// ServiceRecordIntegrationTestSuite exercises the service record lifecycle
type ServiceRecordIntegrationTestSuite struct {
	suite.Suite
	db            *gorm.DB
	router        *gin.Engine
	tokens        *services.TokenService
	customer      *models.User
	mechanic      *models.User
	vehicle       *models.Vehicle
	service       *models.Service
	customerToken string
	mechanicToken string
}

func (suite *ServiceRecordIntegrationTestSuite) SetupTest() {
	suite.db = testutil.NewTestDB(suite.T())
	suite.router, suite.tokens = testutil.NewTestRouter(suite.T(), suite.db)

	suite.customer = testutil.CreateUser(suite.T(), suite.db, "cust", "cust@example.com", models.RoleCustomer)
	suite.mechanic = testutil.CreateUser(suite.T(), suite.db, "mech", "mech@example.com", models.RoleMechanic)
	suite.customerToken = testutil.AccessToken(suite.T(), suite.tokens, suite.customer.ID)
	suite.mechanicToken = testutil.AccessToken(suite.T(), suite.tokens, suite.mechanic.ID)

	suite.vehicle = testutil.CreateVehicle(suite.T(), suite.db, suite.customer.ID, "VIN00000000000400", 30000)
	suite.service = testutil.CreateService(suite.T(), suite.db, "Oil Change", 60)
}

func (suite *ServiceRecordIntegrationTestSuite) createRecord() uint {
	w, response := doJSON(suite.T(), suite.router, http.MethodPost, "/api/services/records", suite.mechanicToken, map[string]interface{}{
		"vehicle_id":   suite.vehicle.ID,
		"customer_id":  suite.customer.ID,
		"service_id":   suite.service.ID,
		"service_date": time.Now().Format(time.RFC3339),
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return uint(dataField(response, "id").(float64))
}

// TestCreateRecordDefaults tests scheduling a record with defaulted fields
func (suite *ServiceRecordIntegrationTestSuite) TestCreateRecordDefaults() {
	w, response := doJSON(suite.T(), suite.router, http.MethodPost, "/api/services/records", suite.mechanicToken, map[string]interface{}{
		"vehicle_id":   suite.vehicle.ID,
		"customer_id":  suite.customer.ID,
		"service_id":   suite.service.ID,
		"service_date": time.Now().Format(time.RFC3339),
	})

	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal(models.RecordStatusScheduled, dataField(response, "status"))
	suite.Equal("normal", dataField(response, "priority"))
	// mileage defaults to the vehicle's current reading
	suite.Equal(float64(30000), dataField(response, "mileage_at_service"))
}

// TestCustomerCannotCreateRecord tests role gating
func (suite *ServiceRecordIntegrationTestSuite) TestCustomerCannotCreateRecord() {
	w, _ := doJSON(suite.T(), suite.router, http.MethodPost, "/api/services/records", suite.customerToken, map[string]interface{}{
		"vehicle_id":   suite.vehicle.ID,
		"customer_id":  suite.customer.ID,
		"service_id":   suite.service.ID,
		"service_date": time.Now().Format(time.RFC3339),
	})
	suite.Equal(http.StatusForbidden, w.Code)
}

// TestRecordLifecycle drives a record from scheduled to completed
func (suite *ServiceRecordIntegrationTestSuite) TestRecordLifecycle() {
	id := suite.createRecord()
	base := fmt.Sprintf("/api/services/records/%d", id)

	w, response := doJSON(suite.T(), suite.router, http.MethodPost, base+"/start", suite.mechanicToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(models.RecordStatusInProgress, dataField(response, "status"))

	w, response = doJSON(suite.T(), suite.router, http.MethodPost, base+"/complete", suite.mechanicToken, map[string]interface{}{
		"work_performed": "changed oil and filter",
		"actual_cost":    49.99,
	})
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(models.RecordStatusCompleted, dataField(response, "status"))
	suite.Equal("changed oil and filter", dataField(response, "work_performed"))
	suite.Equal(49.99, dataField(response, "actual_cost"))
	suite.Equal(float64(suite.mechanic.ID), dataField(response, "mechanic_id"))
	suite.NotNil(dataField(response, "completed_at"))
}

// TestCompleteSkippingStartRejected tests the state machine guard
func (suite *ServiceRecordIntegrationTestSuite) TestCompleteSkippingStartRejected() {
	id := suite.createRecord()

	w, response := doJSON(suite.T(), suite.router, http.MethodPost, fmt.Sprintf("/api/services/records/%d/complete", id), suite.mechanicToken, map[string]interface{}{
		"work_performed": "nothing yet",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("INVALID_TRANSITION", errorCode(response))
}

// TestCompleteWithMileageUpdate tests the optional vehicle mileage bump
func (suite *ServiceRecordIntegrationTestSuite) TestCompleteWithMileageUpdate() {
	id := suite.createRecord()
	base := fmt.Sprintf("/api/services/records/%d", id)

	doJSON(suite.T(), suite.router, http.MethodPost, base+"/start", suite.mechanicToken, nil)
	w, _ := doJSON(suite.T(), suite.router, http.MethodPost, base+"/complete", suite.mechanicToken, map[string]interface{}{
		"work_performed": "full service",
		"update_mileage": 30500,
	})
	suite.Equal(http.StatusOK, w.Code)

	var vehicle models.Vehicle
	suite.NoError(suite.db.First(&vehicle, suite.vehicle.ID).Error)
	suite.Equal(30500, vehicle.Mileage)
}

// TestCancelRecord tests cancellation from scheduled
func (suite *ServiceRecordIntegrationTestSuite) TestCancelRecord() {
	id := suite.createRecord()

	w, response := doJSON(suite.T(), suite.router, http.MethodPost, fmt.Sprintf("/api/services/records/%d/cancel", id), suite.mechanicToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(models.RecordStatusCancelled, dataField(response, "status"))
}

// TestCustomerSeesOnlyOwnRecords tests list scoping
func (suite *ServiceRecordIntegrationTestSuite) TestCustomerSeesOnlyOwnRecords() {
	suite.createRecord()

	other := testutil.CreateUser(suite.T(), suite.db, "other", "other@example.com", models.RoleCustomer)
	otherVehicle := testutil.CreateVehicle(suite.T(), suite.db, other.ID, "VIN00000000000401", 1000)
	suite.NoError(suite.db.Create(&models.ServiceRecord{
		VehicleID:        otherVehicle.ID,
		CustomerID:       other.ID,
		ServiceID:        suite.service.ID,
		ServiceDate:      time.Now(),
		MileageAtService: 1000,
		Status:           models.RecordStatusScheduled,
	}).Error)

	w, response := doJSON(suite.T(), suite.router, http.MethodGet, "/api/services/records", suite.customerToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Len(response["data"].([]interface{}), 1)
}

func TestServiceRecordIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceRecordIntegrationTestSuite))
}

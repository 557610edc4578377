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

// AppointmentIntegrationTestSuite exercises slot listing and booking flows
type AppointmentIntegrationTestSuite struct {
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
	day           time.Time
}

func (suite *AppointmentIntegrationTestSuite) SetupTest() {
	suite.db = testutil.NewTestDB(suite.T())
	suite.router, suite.tokens = testutil.NewTestRouter(suite.T(), suite.db)

	suite.customer = testutil.CreateUser(suite.T(), suite.db, "cust", "cust@example.com", models.RoleCustomer)
	suite.mechanic = testutil.CreateUser(suite.T(), suite.db, "mech", "mech@example.com", models.RoleMechanic)
	suite.customerToken = testutil.AccessToken(suite.T(), suite.tokens, suite.customer.ID)
	suite.mechanicToken = testutil.AccessToken(suite.T(), suite.tokens, suite.mechanic.ID)

	suite.vehicle = testutil.CreateVehicle(suite.T(), suite.db, suite.customer.ID, "VIN00000000000100", 10000)
	suite.service = testutil.CreateService(suite.T(), suite.db, "Oil Change", 60)

	// a weekday far enough in the future that bookings are always valid
	suite.day = time.Now().AddDate(0, 1, 0).Truncate(24 * time.Hour)
}

func (suite *AppointmentIntegrationTestSuite) slot(hour int) string {
	d := suite.day
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.Local).Format(services.SlotTimeLayout)
}

func (suite *AppointmentIntegrationTestSuite) book(hour int) uint {
	w, response := doJSON(suite.T(), suite.router, http.MethodPost, "/api/appointments", suite.customerToken, map[string]interface{}{
		"vehicle_id":       suite.vehicle.ID,
		"service_id":       suite.service.ID,
		"appointment_date": suite.slot(hour),
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	id := dataField(response, "id").(float64)
	return uint(id)
}

// TestAvailableSlotsFullDay tests the slot endpoint on an empty calendar
func (suite *AppointmentIntegrationTestSuite) TestAvailableSlotsFullDay() {
	w, response := doJSON(suite.T(), suite.router, http.MethodGet, "/api/appointments/available-slots?date="+suite.day.Format("2006-01-02"), suite.customerToken, nil)

	suite.Equal(http.StatusOK, w.Code)
	slots := dataField(response, "slots").([]interface{})
	suite.Len(slots, 8)
}

// TestBookingRemovesSlot tests that a booked hour disappears from the list
func (suite *AppointmentIntegrationTestSuite) TestBookingRemovesSlot() {
	suite.book(10)

	w, response := doJSON(suite.T(), suite.router, http.MethodGet, "/api/appointments/available-slots?date="+suite.day.Format("2006-01-02"), suite.customerToken, nil)
	suite.Equal(http.StatusOK, w.Code)

	slots := dataField(response, "slots").([]interface{})
	suite.Len(slots, 7)
	suite.NotContains(slots, suite.slot(10))
}

// TestDoubleBookingConflict tests the slot conflict response
func (suite *AppointmentIntegrationTestSuite) TestDoubleBookingConflict() {
	suite.book(10)

	w, response := doJSON(suite.T(), suite.router, http.MethodPost, "/api/appointments", suite.customerToken, map[string]interface{}{
		"vehicle_id":       suite.vehicle.ID,
		"service_id":       suite.service.ID,
		"appointment_date": suite.slot(10),
	})
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("SLOT_UNAVAILABLE", errorCode(response))

	var count int64
	suite.db.Model(&models.Appointment{}).Count(&count)
	suite.Equal(int64(1), count)
}

// TestBookingPastDateRejected tests the past-date guard
func (suite *AppointmentIntegrationTestSuite) TestBookingPastDateRejected() {
	past := time.Now().AddDate(0, 0, -1).Format(services.SlotTimeLayout)
	w, response := doJSON(suite.T(), suite.router, http.MethodPost, "/api/appointments", suite.customerToken, map[string]interface{}{
		"vehicle_id":       suite.vehicle.ID,
		"service_id":       suite.service.ID,
		"appointment_date": past,
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("VALIDATION_ERROR", errorCode(response))
}

// TestBookingForeignVehicleForbidden tests vehicle ownership enforcement
func (suite *AppointmentIntegrationTestSuite) TestBookingForeignVehicleForbidden() {
	other := testutil.CreateUser(suite.T(), suite.db, "other", "other@example.com", models.RoleCustomer)
	otherVehicle := testutil.CreateVehicle(suite.T(), suite.db, other.ID, "VIN00000000000101", 5000)

	w, _ := doJSON(suite.T(), suite.router, http.MethodPost, "/api/appointments", suite.customerToken, map[string]interface{}{
		"vehicle_id":       otherVehicle.ID,
		"service_id":       suite.service.ID,
		"appointment_date": suite.slot(10),
	})
	suite.Equal(http.StatusForbidden, w.Code)
}

// TestAppointmentLifecycle drives an appointment through its full flow
func (suite *AppointmentIntegrationTestSuite) TestAppointmentLifecycle() {
	id := suite.book(10)
	base := fmt.Sprintf("/api/appointments/%d", id)

	w, response := doJSON(suite.T(), suite.router, http.MethodPost, base+"/confirm", suite.mechanicToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(models.AppointmentStatusConfirmed, dataField(response, "status"))
	suite.Equal(float64(suite.mechanic.ID), dataField(response, "mechanic_id"))

	w, response = doJSON(suite.T(), suite.router, http.MethodPost, base+"/start", suite.mechanicToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(models.AppointmentStatusInProgress, dataField(response, "status"))

	w, response = doJSON(suite.T(), suite.router, http.MethodPost, base+"/complete", suite.mechanicToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(models.AppointmentStatusCompleted, dataField(response, "status"))
}

// TestAppointmentIllegalTransition tests the state machine guard over HTTP
func (suite *AppointmentIntegrationTestSuite) TestAppointmentIllegalTransition() {
	id := suite.book(10)

	// cannot start before confirming
	w, response := doJSON(suite.T(), suite.router, http.MethodPost, fmt.Sprintf("/api/appointments/%d/start", id), suite.mechanicToken, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("INVALID_TRANSITION", errorCode(response))
}

// TestCustomerCannotConfirm tests role enforcement on lifecycle endpoints
func (suite *AppointmentIntegrationTestSuite) TestCustomerCannotConfirm() {
	id := suite.book(10)

	w, _ := doJSON(suite.T(), suite.router, http.MethodPost, fmt.Sprintf("/api/appointments/%d/confirm", id), suite.customerToken, nil)
	suite.Equal(http.StatusForbidden, w.Code)
}

// TestCustomerCanCancelOwn tests that customers can cancel their bookings
func (suite *AppointmentIntegrationTestSuite) TestCustomerCanCancelOwn() {
	id := suite.book(10)

	w, response := doJSON(suite.T(), suite.router, http.MethodPost, fmt.Sprintf("/api/appointments/%d/cancel", id), suite.customerToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(models.AppointmentStatusCancelled, dataField(response, "status"))
}

// TestCancelledSlotReusable tests that cancelling frees the slot
func (suite *AppointmentIntegrationTestSuite) TestCancelledSlotReusable() {
	id := suite.book(10)
	doJSON(suite.T(), suite.router, http.MethodPost, fmt.Sprintf("/api/appointments/%d/cancel", id), suite.customerToken, nil)

	suite.book(10)
}

// TestCustomerSeesOnlyOwnAppointments tests list scoping
func (suite *AppointmentIntegrationTestSuite) TestCustomerSeesOnlyOwnAppointments() {
	suite.book(10)

	other := testutil.CreateUser(suite.T(), suite.db, "other", "other@example.com", models.RoleCustomer)
	otherVehicle := testutil.CreateVehicle(suite.T(), suite.db, other.ID, "VIN00000000000102", 5000)
	otherToken := testutil.AccessToken(suite.T(), suite.tokens, other.ID)

	w, _ := doJSON(suite.T(), suite.router, http.MethodPost, "/api/appointments", otherToken, map[string]interface{}{
		"vehicle_id":       otherVehicle.ID,
		"service_id":       suite.service.ID,
		"appointment_date": suite.slot(14),
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w, response := doJSON(suite.T(), suite.router, http.MethodGet, "/api/appointments", suite.customerToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	appointments := response["data"].([]interface{})
	suite.Len(appointments, 1)
}

// TestUpcomingAppointments tests the upcoming filter
func (suite *AppointmentIntegrationTestSuite) TestUpcomingAppointments() {
	cancelledID := suite.book(10)
	doJSON(suite.T(), suite.router, http.MethodPost, fmt.Sprintf("/api/appointments/%d/cancel", cancelledID), suite.customerToken, nil)
	suite.book(14)

	w, response := doJSON(suite.T(), suite.router, http.MethodGet, "/api/appointments/upcoming", suite.customerToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	appointments := response["data"].([]interface{})
	suite.Len(appointments, 1)
}

func TestAppointmentIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AppointmentIntegrationTestSuite))
}

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Evian1k/VeloManage5/tests/testutil"
)

// TestHealthCheck verifies the health endpoint is public and well formed
func TestHealthCheck(t *testing.T) {
	db := testutil.NewTestDB(t)
	router, _ := testutil.NewTestRouter(t, db)

	w, response := doJSON(t, router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "VeloManage API is running", response["message"])
}

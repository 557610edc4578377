package integration

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/Evian1k/VeloManage5/models"
	"github.com/Evian1k/VeloManage5/services"
	"github.com/Evian1k/VeloManage5/tests/testutil"
)

// UploadIntegrationTestSuite exercises the image upload endpoints against
// the in-memory object store
type UploadIntegrationTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	tokens *services.TokenService
	token  string
}

func (suite *UploadIntegrationTestSuite) SetupTest() {
	suite.db = testutil.NewTestDB(suite.T())
	suite.router, suite.tokens = testutil.NewTestRouter(suite.T(), suite.db)

	user := testutil.CreateUser(suite.T(), suite.db, "cust", "cust@example.com", models.RoleCustomer)
	suite.token = testutil.AccessToken(suite.T(), suite.tokens, user.ID)
}

func (suite *UploadIntegrationTestSuite) uploadRequest(kind, filename string, content []byte) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if kind != "" {
		suite.NoError(writer.WriteField("kind", kind))
	}
	part, err := writer.CreateFormFile("image", filename)
	suite.NoError(err)
	_, err = part.Write(content)
	suite.NoError(err)
	suite.NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/images", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+suite.token)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// TestUploadImage tests a successful upload
func (suite *UploadIntegrationTestSuite) TestUploadImage() {
	w := suite.uploadRequest("incidents", "pothole.png", []byte("fake png bytes"))

	suite.Equal(http.StatusCreated, w.Code)

	var response map[string]interface{}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &response))
	key := dataField(response, "key").(string)
	suite.Contains(key, "incidents/")
	suite.Contains(key, "pothole.png")
}

// TestUploadRejectsUnknownKind tests the category guard
func (suite *UploadIntegrationTestSuite) TestUploadRejectsUnknownKind() {
	w := suite.uploadRequest("avatars", "me.png", []byte("fake"))
	suite.Equal(http.StatusBadRequest, w.Code)
}

// TestUploadRejectsBadExtension tests the file format guard
func (suite *UploadIntegrationTestSuite) TestUploadRejectsBadExtension() {
	w := suite.uploadRequest("incidents", "report.pdf", []byte("fake pdf"))

	suite.Equal(http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("INVALID_FILE_FORMAT", errorCode(response))
}

// TestUploadRequiresAuth tests the 401 without a token
func (suite *UploadIntegrationTestSuite) TestUploadRequiresAuth() {
	req := httptest.NewRequest(http.MethodPost, "/api/uploads/images", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

// TestGetImageURL tests presigned URL generation for an existing key
func (suite *UploadIntegrationTestSuite) TestGetImageURL() {
	w := suite.uploadRequest("vehicles", "car.jpg", []byte("fake jpg"))
	suite.Require().Equal(http.StatusCreated, w.Code)

	var response map[string]interface{}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &response))
	key := dataField(response, "key").(string)

	w2, urlResponse := doJSON(suite.T(), suite.router, http.MethodGet, "/api/uploads/images/url?key="+key, suite.token, nil)
	suite.Equal(http.StatusOK, w2.Code)
	suite.NotEmpty(dataField(urlResponse, "url"))
}

func TestUploadIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UploadIntegrationTestSuite))
}

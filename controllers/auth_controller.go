package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Evian1k/VeloManage5/models"
	"github.com/Evian1k/VeloManage5/services"
	"github.com/Evian1k/VeloManage5/utils"
)

// AuthController handles registration, login and profile management
type AuthController struct {
	DB     *gorm.DB
	Tokens *services.TokenService
}

func NewAuthController(db *gorm.DB, tokens *services.TokenService) *AuthController {
	return &AuthController{DB: db, Tokens: tokens}
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// Register creates a new customer account and returns a token pair
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
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

	errs := utils.ValidateUser(utils.UserInput{
		Email:     &req.Email,
		Password:  &req.Password,
		Username:  &req.Username,
		FirstName: &req.FirstName,
		LastName:  &req.LastName,
	})
	if len(errs) > 0 {
		respondValidationErrors(c, errs)
		return
	}

	var count int64
	ac.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMAIL_EXISTS",
				"message": "Email already registered",
			},
		})
		return
	}
	ac.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USERNAME_EXISTS",
				"message": "Username already taken",
			},
		})
		return
	}

	user := models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.RoleCustomer,
		Phone:     req.Phone,
		Address:   req.Address,
		IsActive:  true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		respondServerError(c, "Failed to hash password")
		return
	}

	if err := ac.DB.Create(&user).Error; err != nil {
		if isDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EMAIL_EXISTS",
					"message": "Email already registered",
				},
			})
			return
		}
		logrus.WithError(err).Error("failed to create user")
		respondServerError(c, "Failed to create user")
		return
	}

	accessToken, err := ac.Tokens.GenerateAccessToken(user.ID)
	if err != nil {
		respondServerError(c, "Failed to issue token")
		return
	}
	refreshToken, err := ac.Tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		respondServerError(c, "Failed to issue token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"user":          user,
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user by email and password
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Email and password are required",
			},
		})
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_CREDENTIALS",
				"message": "Invalid email or password",
			},
		})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ACCOUNT_DISABLED",
				"message": "Account is deactivated",
			},
		})
		return
	}

	if !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_CREDENTIALS",
				"message": "Invalid email or password",
			},
		})
		return
	}

	now := time.Now()
	user.LastLogin = &now
	if err := ac.DB.Model(&user).Update("last_login", now).Error; err != nil {
		logrus.WithError(err).Warn("failed to record last login")
	}

	accessToken, err := ac.Tokens.GenerateAccessToken(user.ID)
	if err != nil {
		respondServerError(c, "Failed to issue token")
		return
	}
	refreshToken, err := ac.Tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		respondServerError(c, "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user":          user,
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		},
	})
}

// Refresh issues a new access token from a valid refresh token
func (ac *AuthController) Refresh(c *gin.Context) {
	user, ok := loadCurrentUser(c, ac.DB)
	if !ok {
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ACCOUNT_DISABLED",
				"message": "Account is deactivated",
			},
		})
		return
	}

	accessToken, err := ac.Tokens.GenerateAccessToken(user.ID)
	if err != nil {
		respondServerError(c, "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"access_token": accessToken,
		},
	})
}

// GetProfile returns the authenticated user's profile
func (ac *AuthController) GetProfile(c *gin.Context) {
	user, ok := loadCurrentUser(c, ac.DB)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

// UpdateProfile applies partial updates to the authenticated user's profile
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	user, ok := loadCurrentUser(c, ac.DB)
	if !ok {
		return
	}

	var req updateProfileRequest
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

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}

	if err := ac.DB.Save(user).Error; err != nil {
		respondServerError(c, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword verifies the current password and sets a new one
func (ac *AuthController) ChangePassword(c *gin.Context) {
	user, ok := loadCurrentUser(c, ac.DB)
	if !ok {
		return
	}

	var req changePasswordRequest
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

	if !user.CheckPassword(req.CurrentPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_CREDENTIALS",
				"message": "Current password is incorrect",
			},
		})
		return
	}

	if len(req.NewPassword) < 6 {
		respondValidationErrors(c, []string{"Password must be at least 6 characters"})
		return
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		respondServerError(c, "Failed to hash password")
		return
	}
	if err := ac.DB.Model(user).Update("password_hash", user.PasswordHash).Error; err != nil {
		respondServerError(c, "Failed to update password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "Password updated successfully",
		},
	})
}

// Logout acknowledges the logout. Tokens are stateless, so clients discard
// them; nothing is stored server side.
func (ac *AuthController) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "Logged out successfully",
		},
	})
}

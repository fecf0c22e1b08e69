package handler

import (
	"errors"
	"linkhub/internal/apperror"
	"linkhub/internal/model"
	auth "linkhub/pkg/jwt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthHandler 运维账户登录
type AuthHandler struct {
	db         *gorm.DB
	jwtManager *auth.TokenManager
	Options
}

func NewAuthHandler(db *gorm.DB, jwtManager *auth.TokenManager, opts Options) *AuthHandler {
	return &AuthHandler{db: db, jwtManager: jwtManager, Options: opts}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"admin"`
}

// AuthResponse 登录成功后返回的令牌
type AuthResponse struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

var errBadCredentials = apperror.New(apperror.CodeUnauthorized, "Invalid username or password")

// Login godoc
// @Summary 运维账户登录
// @Description 使用用户名和密码获取 JWT 令牌
// @Tags Auth
// @Accept json
// @Produce json
// @Param account body LoginRequest true "登录凭据"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	var user model.User
	err := h.db.WithContext(c.Request.Context()).Where("username = ?", req.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.fail(c, errBadCredentials)
		return
	}
	if err != nil {
		h.fail(c, apperror.Internal(err, "Internal server error"))
		return
	}

	if !user.CheckPassword(req.Password) {
		h.fail(c, errBadCredentials)
		return
	}
	if !user.IsActive {
		h.fail(c, apperror.New(apperror.CodeForbidden, "Account is disabled"))
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		h.fail(c, apperror.Internal(err, "Failed to issue token"))
		return
	}

	if err := h.db.Model(&user).Update("last_login", time.Now()).Error; err != nil {
		zap.S().Warnw("更新最后登录时间失败", "username", user.Username, "error", err)
	}
	respond(c, http.StatusOK, AuthResponse{Token: token})
}

// GetCurrentUser godoc
// @Summary 当前登录用户
// @Tags Auth
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} model.User
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		h.fail(c, apperror.New(apperror.CodeUnauthorized, "Missing authentication token"))
		return
	}

	var user model.User
	err := h.db.WithContext(c.Request.Context()).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.fail(c, apperror.NotFound("User not found"))
		return
	}
	if err != nil {
		h.fail(c, apperror.Internal(err, "Internal server error"))
		return
	}
	respond(c, http.StatusOK, user)
}

// EnsureAdmin 按配置创建管理员账户，已存在时不做修改
func EnsureAdmin(db *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		zap.S().Warn("未配置管理员密码，跳过创建管理员账户")
		return nil
	}

	var count int64
	if err := db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := model.User{Username: username, Role: model.RoleAdmin, IsActive: true}
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	zap.S().Infow("管理员账户已创建", "username", username)
	return nil
}

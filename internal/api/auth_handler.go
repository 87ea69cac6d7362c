package api

import (
	"github.com/gin-gonic/gin"
	"github.com/wfunc/puzzle-planet/internal/middleware"
	"github.com/wfunc/puzzle-planet/internal/service"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	authService service.AuthService
	userService service.UserService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authService service.AuthService, userService service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Signup 用户注册
// @Summary 用户注册
// @Description 创建账号并自动开通个人星球
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body service.SignupRequest true "注册信息"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, resp)
}

// Login 用户登录
// @Summary 用户登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body service.LoginRequest true "登录信息"
// @Success 200 {object} Response
// @Failure 401 {object} Response
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, resp)
}

// RefreshToken 刷新令牌
// @Summary 刷新访问令牌
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} Response
// @Failure 401 {object} Response
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, resp)
}

// CheckUsername 检查用户名是否可用
// @Summary 检查用户名可用性
// @Tags Auth
// @Produce json
// @Param username query string true "用户名"
// @Success 200 {object} Response
// @Router /api/v1/auth/check-username [get]
func (h *AuthHandler) CheckUsername(c *gin.Context) {
	username := c.Query("username")
	available, err := h.authService.CheckUsername(c.Request.Context(), username)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"username": username, "available": available})
}

// GetProfile 获取当前用户信息
// @Summary 获取个人资料
// @Tags User
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /api/v1/users/me [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, user)
}

// UpdateNickname 修改昵称
// @Summary 修改昵称
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /api/v1/users/me/nickname [put]
func (h *AuthHandler) UpdateNickname(c *gin.Context) {
	var req struct {
		Nickname string `json:"nickname" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.userService.UpdateNickname(c.Request.Context(), userID, req.Nickname); err != nil {
		Fail(c, err)
		return
	}
	OK(c, nil)
}

// UpdatePassword 修改密码
// @Summary 修改密码
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /api/v1/users/me/password [put]
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.userService.UpdatePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		Fail(c, err)
		return
	}
	OK(c, nil)
}

// UpdateProfileImage 修改头像
// @Summary 修改头像
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /api/v1/users/me/profile-image [put]
func (h *AuthHandler) UpdateProfileImage(c *gin.Context) {
	var req struct {
		ImageURL string `json:"image_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.userService.UpdateProfileImage(c.Request.Context(), userID, req.ImageURL); err != nil {
		Fail(c, err)
		return
	}
	OK(c, nil)
}

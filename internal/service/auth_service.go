package service

import (
	"context"
	"regexp"

	apperrors "github.com/wfunc/puzzle-planet/internal/errors"
	"github.com/wfunc/puzzle-planet/internal/models"
	"github.com/wfunc/puzzle-planet/internal/repository"
	"github.com/wfunc/puzzle-planet/internal/utils"
	"go.uber.org/zap"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// authService 认证服务实现
type authService struct {
	repos      *repository.Manager
	jwtManager *utils.JWTManager
	log        *zap.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(repos *repository.Manager, jwtManager *utils.JWTManager, log *zap.Logger) AuthService {
	return &authService{
		repos:      repos,
		jwtManager: jwtManager,
		log:        log,
	}
}

// Signup 用户注册，用户、认证信息和星球在同一事务中创建
func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	if err := s.validateSignupRequest(req); err != nil {
		return nil, err
	}

	exists, err := s.repos.User().ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "查询用户失败")
	}
	if exists {
		return nil, apperrors.New(apperrors.ErrUsernameTaken)
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrUnknown, "密码加密失败")
	}

	user := &models.User{
		Username: req.Username,
		Nickname: req.Nickname,
	}

	err = s.repos.WithTransaction(ctx, func(tx *repository.Transaction) error {
		if err := tx.User().Create(ctx, user); err != nil {
			if repository.IsDuplicateKeyError(err) {
				return apperrors.New(apperrors.ErrUsernameTaken)
			}
			return apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "创建用户失败")
		}

		if err := tx.UserAuth().Create(ctx, &models.UserAuth{
			UserID:   user.ID,
			Password: hashedPassword,
		}); err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "创建认证信息失败")
		}

		// 每个用户注册即拥有自己的星球
		return tx.Planet().Create(ctx, &models.Planet{
			OwnerID: user.ID,
			Title:   user.Nickname + "的星球",
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user signed up",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username))

	return s.buildAuthResponse(user)
}

// Login 用户登录
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.repos.User().FindByUsername(ctx, req.Username)
	if err != nil {
		s.log.Warn("login failed: user not found", zap.String("username", req.Username))
		return nil, apperrors.New(apperrors.ErrPasswordMismatch)
	}

	if !user.CanLogin() {
		return nil, apperrors.New(apperrors.ErrUserFrozen)
	}

	auth, err := s.repos.UserAuth().FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrPasswordMismatch)
	}

	valid, err := utils.VerifyPassword(req.Password, auth.Password)
	if err != nil || !valid {
		s.log.Warn("login failed: invalid password", zap.Uint("user_id", user.ID))
		return nil, apperrors.New(apperrors.ErrPasswordMismatch)
	}

	_ = s.repos.User().UpdateLastLogin(ctx, user.ID)

	s.log.Info("user logged in",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username))

	return s.buildAuthResponse(user)
}

// RefreshToken 刷新访问令牌
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateToken(refreshToken)
	if err != nil {
		if err == utils.ErrExpiredToken {
			return nil, apperrors.New(apperrors.ErrTokenExpired)
		}
		return nil, apperrors.New(apperrors.ErrTokenInvalid)
	}
	if claims.TokenType != "refresh" {
		return nil, apperrors.New(apperrors.ErrTokenInvalid, "不是刷新令牌")
	}

	user, err := s.repos.User().FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrUserNotFound)
	}
	if !user.CanLogin() {
		return nil, apperrors.New(apperrors.ErrUserFrozen)
	}

	return s.buildAuthResponse(user)
}

// CheckUsername 检查用户名是否可用
func (s *authService) CheckUsername(ctx context.Context, username string) (bool, error) {
	if len(username) < 3 || len(username) > 20 || !usernamePattern.MatchString(username) {
		return false, apperrors.New(apperrors.ErrInvalidParam, "用户名格式不正确")
	}

	exists, err := s.repos.User().ExistsByUsername(ctx, username)
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "查询用户失败")
	}
	return !exists, nil
}

// ValidateToken 验证访问令牌
func (s *authService) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		if err == utils.ErrExpiredToken {
			return nil, apperrors.New(apperrors.ErrTokenExpired)
		}
		return nil, apperrors.New(apperrors.ErrTokenInvalid)
	}
	if claims.TokenType != "access" {
		return nil, apperrors.New(apperrors.ErrTokenInvalid, "不是访问令牌")
	}
	return claims, nil
}

// buildAuthResponse 生成令牌并组装响应
func (s *authService) buildAuthResponse(user *models.User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrUnknown, "生成访问令牌失败")
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrUnknown, "生成刷新令牌失败")
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.GetTokenExpiry("access").Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// validateSignupRequest 验证注册请求
func (s *authService) validateSignupRequest(req *SignupRequest) error {
	if len(req.Username) < 3 || len(req.Username) > 20 {
		return apperrors.New(apperrors.ErrInvalidParam, "用户名长度必须在3-20个字符之间")
	}
	if !usernamePattern.MatchString(req.Username) {
		return apperrors.New(apperrors.ErrInvalidParam, "用户名只能包含字母、数字和下划线")
	}
	if len(req.Password) < 6 {
		return apperrors.New(apperrors.ErrInvalidParam, "密码长度至少6个字符")
	}
	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		return apperrors.New(apperrors.ErrInvalidParam, "两次输入的密码不一致")
	}
	return nil
}

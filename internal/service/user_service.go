package service

import (
	"context"
	"strings"

	apperrors "github.com/wfunc/puzzle-planet/internal/errors"
	"github.com/wfunc/puzzle-planet/internal/models"
	"github.com/wfunc/puzzle-planet/internal/repository"
	"github.com/wfunc/puzzle-planet/internal/utils"
	"go.uber.org/zap"
)

// userService 用户服务实现
type userService struct {
	repos *repository.Manager
	log   *zap.Logger
}

// NewUserService 创建用户服务
func NewUserService(repos *repository.Manager, log *zap.Logger) UserService {
	return &userService{
		repos: repos,
		log:   log,
	}
}

// GetProfile 获取用户资料
func (s *userService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repos.User().FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrUserNotFound)
	}
	return user, nil
}

// GetByUsername 根据用户名获取用户
func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repos.User().FindByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrUserNotFound)
	}
	return user, nil
}

// UpdateNickname 更新昵称
func (s *userService) UpdateNickname(ctx context.Context, userID uint, nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || len(nickname) > 30 {
		return apperrors.New(apperrors.ErrInvalidParam, "昵称长度必须在1-30个字符之间")
	}

	if _, err := s.repos.User().FindByID(ctx, userID); err != nil {
		return apperrors.New(apperrors.ErrUserNotFound)
	}

	if err := s.repos.User().UpdateNickname(ctx, userID, nickname); err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseUpdate, "更新昵称失败")
	}

	s.log.Info("nickname updated", zap.Uint("user_id", userID))
	return nil
}

// UpdatePassword 更新密码，需验证旧密码
func (s *userService) UpdatePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return apperrors.New(apperrors.ErrInvalidParam, "密码长度至少6个字符")
	}

	auth, err := s.repos.UserAuth().FindByUserID(ctx, userID)
	if err != nil {
		return apperrors.New(apperrors.ErrUserNotFound)
	}

	valid, err := utils.VerifyPassword(oldPassword, auth.Password)
	if err != nil || !valid {
		return apperrors.New(apperrors.ErrPasswordMismatch, "旧密码不正确")
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrUnknown, "密码加密失败")
	}

	if err := s.repos.UserAuth().UpdatePassword(ctx, userID, hashed); err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseUpdate, "更新密码失败")
	}

	s.log.Info("password updated", zap.Uint("user_id", userID))
	return nil
}

// UpdateProfileImage 更新头像
func (s *userService) UpdateProfileImage(ctx context.Context, userID uint, imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.New(apperrors.ErrInvalidParam, "图片地址不能为空")
	}

	if _, err := s.repos.User().FindByID(ctx, userID); err != nil {
		return apperrors.New(apperrors.ErrUserNotFound)
	}

	if err := s.repos.User().UpdateProfileImage(ctx, userID, imageURL); err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseUpdate, "更新头像失败")
	}

	return nil
}

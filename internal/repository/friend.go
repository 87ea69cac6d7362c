package repository

import (
	"context"
	"errors"
	"time"

	"github.com/wfunc/puzzle-planet/internal/models"
	"gorm.io/gorm"
)

// FriendRequestRepository 好友请求仓储接口
type FriendRequestRepository interface {
	BaseRepository
	Create(ctx context.Context, request *models.FriendRequest) error
	FindByID(ctx context.Context, id uint) (*models.FriendRequest, error)
	FindPending(ctx context.Context, requesterID, targetID uint) (*models.FriendRequest, error)
	FindReceivedPending(ctx context.Context, targetID uint) ([]*models.FriendRequest, error)
	FindSentPending(ctx context.Context, requesterID uint) ([]*models.FriendRequest, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
}

// friendRequestRepo 好友请求仓储实现
type friendRequestRepo struct {
	*BaseRepo
}

// NewFriendRequestRepository 创建好友请求仓储
func NewFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &friendRequestRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建好友请求
func (r *friendRequestRepo) Create(ctx context.Context, request *models.FriendRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// FindByID 根据ID查找好友请求
func (r *friendRequestRepo) FindByID(ctx context.Context, id uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Target").
		First(&request, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("好友请求不存在")
		}
		return nil, err
	}
	return &request, nil
}

// FindPending 查找指定方向的待处理请求
func (r *friendRequestRepo) FindPending(ctx context.Context, requesterID, targetID uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND target_id = ? AND status = ?",
			requesterID, targetID, models.FriendRequestPending).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// FindReceivedPending 查找收到的待处理请求
func (r *friendRequestRepo) FindReceivedPending(ctx context.Context, targetID uint) ([]*models.FriendRequest, error) {
	var requests []*models.FriendRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Where("target_id = ? AND status = ?", targetID, models.FriendRequestPending).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// FindSentPending 查找发出的待处理请求
func (r *friendRequestRepo) FindSentPending(ctx context.Context, requesterID uint) ([]*models.FriendRequest, error) {
	var requests []*models.FriendRequest
	err := r.db.WithContext(ctx).
		Preload("Target").
		Where("requester_id = ? AND status = ?", requesterID, models.FriendRequestPending).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// UpdateStatus 更新请求状态并记录响应时间
func (r *friendRequestRepo) UpdateStatus(ctx context.Context, id uint, status string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"responded_at": now,
		}).Error
}

// WithTx 使用事务
func (r *friendRequestRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &friendRequestRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// FriendshipRepository 好友关系仓储接口
type FriendshipRepository interface {
	BaseRepository
	Create(ctx context.Context, friendship *models.Friendship) error
	Delete(ctx context.Context, userAID, userBID uint) error
	Exists(ctx context.Context, userAID, userBID uint) (bool, error)
	FindByUserID(ctx context.Context, userID uint) ([]*models.Friendship, error)
}

// friendshipRepo 好友关系仓储实现
type friendshipRepo struct {
	*BaseRepo
}

// NewFriendshipRepository 创建好友关系仓储
func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建好友关系
func (r *friendshipRepo) Create(ctx context.Context, friendship *models.Friendship) error {
	return r.db.WithContext(ctx).Create(friendship).Error
}

// Delete 删除好友关系（双向匹配）
func (r *friendshipRepo) Delete(ctx context.Context, userAID, userBID uint) error {
	result := r.db.WithContext(ctx).
		Where("(user_a_id = ? AND user_b_id = ?) OR (user_a_id = ? AND user_b_id = ?)",
			userAID, userBID, userBID, userAID).
		Delete(&models.Friendship{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("好友关系不存在")
	}
	return nil
}

// Exists 检查两名用户是否为好友
func (r *friendshipRepo) Exists(ctx context.Context, userAID, userBID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("(user_a_id = ? AND user_b_id = ?) OR (user_a_id = ? AND user_b_id = ?)",
			userAID, userBID, userBID, userAID).
		Count(&count).Error
	return count > 0, err
}

// FindByUserID 查找用户的所有好友关系
func (r *friendshipRepo) FindByUserID(ctx context.Context, userID uint) ([]*models.Friendship, error) {
	var friendships []*models.Friendship
	err := r.db.WithContext(ctx).
		Preload("UserA").
		Preload("UserB").
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&friendships).Error
	return friendships, err
}

// WithTx 使用事务
func (r *friendshipRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &friendshipRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

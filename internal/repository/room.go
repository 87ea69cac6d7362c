package repository

import (
	"context"
	"errors"

	"github.com/wfunc/puzzle-planet/internal/models"
	"gorm.io/gorm"
)

// RoomRepository 房间仓储接口
type RoomRepository interface {
	BaseRepository
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	FindByID(ctx context.Context, id uint) (*models.Room, error)
	FindActiveByCode(ctx context.Context, code string) (*models.Room, error)
	FindLatestByCode(ctx context.Context, code string) (*models.Room, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
	UpdateStatus(ctx context.Context, roomID uint, status string) error
}

// roomRepo 房间仓储实现
type roomRepo struct {
	*BaseRepo
}

// NewRoomRepository 创建房间仓储
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建房间
func (r *roomRepo) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// Update 更新房间
func (r *roomRepo) Update(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Save(room).Error
}

// FindByID 根据ID查找房间（带成员）
func (r *roomRepo) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Preload("Participants.User").
		First(&room, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("房间不存在")
		}
		return nil, err
	}
	return &room, nil
}

// FindActiveByCode 根据邀请码查找活跃房间（等待中或进行中）
func (r *roomRepo) FindActiveByCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Preload("Participants.User").
		Where("code = ? AND status IN ?", code,
			[]string{models.RoomStatusWaiting, models.RoomStatusPlaying}).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("房间不存在")
		}
		return nil, err
	}
	return &room, nil
}

// FindLatestByCode 根据邀请码查找最近的房间（不限状态）
func (r *roomRepo) FindLatestByCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Preload("Participants.User").
		Where("code = ?", code).
		Order("created_at DESC").
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("房间不存在")
		}
		return nil, err
	}
	return &room, nil
}

// CodeInUse 检查邀请码是否被活跃房间占用
func (r *roomRepo) CodeInUse(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("code = ? AND status IN ?", code,
			[]string{models.RoomStatusWaiting, models.RoomStatusPlaying}).
		Count(&count).Error
	return count > 0, err
}

// UpdateStatus 更新房间状态
func (r *roomRepo) UpdateStatus(ctx context.Context, roomID uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ?", roomID).
		Update("status", status).Error
}

// WithTx 使用事务
func (r *roomRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &roomRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// RoomParticipantRepository 房间成员仓储接口
type RoomParticipantRepository interface {
	BaseRepository
	Create(ctx context.Context, participant *models.RoomParticipant) error
	Delete(ctx context.Context, roomID, userID uint) error
	FindByRoomID(ctx context.Context, roomID uint) ([]*models.RoomParticipant, error)
	Find(ctx context.Context, roomID, userID uint) (*models.RoomParticipant, error)
	CountByRoomID(ctx context.Context, roomID uint) (int64, error)
	UpdateReady(ctx context.Context, roomID, userID uint, ready bool) error
}

// roomParticipantRepo 房间成员仓储实现
type roomParticipantRepo struct {
	*BaseRepo
}

// NewRoomParticipantRepository 创建房间成员仓储
func NewRoomParticipantRepository(db *gorm.DB) RoomParticipantRepository {
	return &roomParticipantRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建房间成员
func (r *roomParticipantRepo) Create(ctx context.Context, participant *models.RoomParticipant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

// Delete 删除房间成员
func (r *roomParticipantRepo) Delete(ctx context.Context, roomID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&models.RoomParticipant{}).Error
}

// FindByRoomID 查找房间的所有成员
func (r *roomParticipantRepo) FindByRoomID(ctx context.Context, roomID uint) ([]*models.RoomParticipant, error) {
	var participants []*models.RoomParticipant
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Find(&participants).Error
	return participants, err
}

// Find 查找指定成员
func (r *roomParticipantRepo) Find(ctx context.Context, roomID, userID uint) (*models.RoomParticipant, error) {
	var participant models.RoomParticipant
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("不是房间成员")
		}
		return nil, err
	}
	return &participant, nil
}

// CountByRoomID 统计房间成员数量
func (r *roomParticipantRepo) CountByRoomID(ctx context.Context, roomID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RoomParticipant{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	return count, err
}

// UpdateReady 更新成员准备状态
func (r *roomParticipantRepo) UpdateReady(ctx context.Context, roomID, userID uint, ready bool) error {
	return r.db.WithContext(ctx).
		Model(&models.RoomParticipant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Update("is_ready", ready).Error
}

// WithTx 使用事务
func (r *roomParticipantRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &roomParticipantRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
